package twist

import (
	"math"
	"testing"

	"story-engine-api/internal/domain/entity"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReadinessComponents(t *testing.T) {
	clues := []*entity.Clue{
		{Code: "dagger", RelatedTwist: "aldric_betrayal", RevealAct: 1},
		{Code: "letter", RelatedTwist: "aldric_betrayal", RevealAct: 2},
	}

	tests := []struct {
		name  string
		state State
		want  float64
	}{
		{
			name:  "nothing accumulated",
			state: State{CurrentAct: 1, TensionLevel: entity.TensionCalm},
			want:  0,
		},
		{
			name: "half clues only",
			state: State{
				CurrentAct:    1,
				RevealedClues: []string{"dagger"},
				TensionLevel:  entity.TensionCalm,
			},
			want: 0.2,
		},
		{
			name: "all components at maximum",
			state: State{
				CurrentAct:    2,
				RevealedClues: []string{"dagger", "letter"},
				TensionLevel:  entity.TensionClimax,
				Foreshadowed:  map[string]int{"aldric_betrayal": 5},
			},
			// 0.4 线索 + 0.2 铺垫(封顶) + 0.2 紧张度 + 0.1 幕推进
			want: 0.9,
		},
		{
			name: "act bonus capped",
			state: State{
				CurrentAct:   5,
				TensionLevel: entity.TensionCalm,
			},
			want: 0.2,
		},
	}

	e := NewEngine(3, 0.7)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Readiness("aldric_betrayal", clues, tt.state)
			if !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if got := e.Readiness("unknown_twist", clues, State{CurrentAct: 3}); got != 0 {
		t.Errorf("twist without clues should score 0, got %v", got)
	}
}

func TestReadyThreshold(t *testing.T) {
	clues := []*entity.Clue{
		{Code: "dagger", RelatedTwist: "aldric_betrayal", RevealAct: 1},
	}
	e := NewEngine(3, 0.7)

	low := State{CurrentAct: 1, TensionLevel: entity.TensionCalm}
	if e.Ready("aldric_betrayal", clues, low) {
		t.Error("bare state should not be ready")
	}

	high := State{
		CurrentAct:    2,
		RevealedClues: []string{"dagger"},
		TensionLevel:  entity.TensionClimax,
		Foreshadowed:  map[string]int{"aldric_betrayal": 3},
	}
	// 0.4 + 0.2 + 0.2 + 0.1 = 0.9
	if !e.Ready("aldric_betrayal", clues, high) {
		t.Error("fully accumulated state should be ready")
	}
}

func TestForeshadowHints(t *testing.T) {
	clues := []*entity.Clue{
		// near: 一半线索已揭示，优先铺垫
		{Code: "n1", RelatedTwist: "near", RevealAct: 1, ForeshadowHint: "a sealed vault"},
		{Code: "n2", RelatedTwist: "near", RevealAct: 1, ForeshadowHint: "shadow on the wall"},
		// fresh: 尚无进度
		{Code: "f1", RelatedTwist: "fresh", RevealAct: 1, ForeshadowHint: "a faint whisper"},
		// done: 就绪，不再铺垫
		{Code: "d1", RelatedTwist: "done", RevealAct: 1},
		{Code: "d2", RelatedTwist: "done", RevealAct: 1, ForeshadowHint: "should not appear"},
		// far: 两幕以外，暂不铺垫
		{Code: "x1", RelatedTwist: "far", RevealAct: 5, ForeshadowHint: "too early"},
	}
	state := State{
		CurrentAct:    2,
		RevealedClues: []string{"n1", "d1"},
		TensionLevel:  entity.TensionClimax,
		Foreshadowed:  map[string]int{"done": 3},
	}

	e := NewEngine(3, 0.7)
	hints := e.ForeshadowHints(clues, state)

	if len(hints) != 2 {
		t.Fatalf("expected 2 hints, got %d: %+v", len(hints), hints)
	}
	if hints[0].TwistCode != "near" || hints[0].Content != "shadow on the wall" || hints[0].Priority != 7 {
		t.Errorf("top hint = %+v, want near / shadow on the wall / 7", hints[0])
	}
	if hints[1].TwistCode != "fresh" || hints[1].Priority != 5 {
		t.Errorf("second hint = %+v, want fresh / 5", hints[1])
	}

	capped := NewEngine(1, 0.7).ForeshadowHints(clues, state)
	if len(capped) != 1 || capped[0].TwistCode != "near" {
		t.Errorf("cap should keep only the top hint, got %+v", capped)
	}
}

func TestForeshadowCountsFeedReadiness(t *testing.T) {
	clues := []*entity.Clue{
		{Code: "c1", RelatedTwist: "aldric_betrayal", RevealAct: 1},
		{Code: "c2", RelatedTwist: "aldric_betrayal", RevealAct: 1, ForeshadowHint: "a coin with two faces"},
	}
	e := NewEngine(3, 0.7)
	state := State{
		CurrentAct:    2,
		RevealedClues: []string{"c1"},
		TensionLevel:  entity.TensionClimax,
		Foreshadowed:  map[string]int{},
	}

	// 每轮给出的提示累计进铺垫计数；三轮后转折就绪，提示停止
	rounds := 0
	for i := 0; i < 10; i++ {
		hints := e.ForeshadowHints(clues, state)
		if len(hints) == 0 {
			break
		}
		rounds++
		for _, h := range hints {
			state.Foreshadowed[h.TwistCode]++
		}
	}

	if rounds != 3 {
		t.Errorf("hint rounds before readiness = %d, want 3", rounds)
	}
	if !e.Ready("aldric_betrayal", clues, state) {
		t.Error("accumulated foreshadowing should reach readiness")
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(0, 0)
	if e.maxHints != 3 || e.threshold != 0.7 {
		t.Errorf("defaults = %d / %v, want 3 / 0.7", e.maxHints, e.threshold)
	}
}
