package decision

import (
	"testing"

	"story-engine-api/internal/domain/entity"
	"story-engine-api/pkg/errors"
)

func sampleDecision() *entity.Decision {
	return &entity.Decision{
		Code: "courier_verdict",
		Options: []entity.DecisionOption{
			{
				ID:               "spare",
				KarmaEffect:      10,
				ConsequenceFlags: []string{"courier_spared"},
				NPCEffects:       map[string]int{"mira": 15, "faction:city_watch": -10},
				UnlocksSideStory: "couriers_route",
			},
			{
				ID:          "execute",
				KarmaEffect: -20,
				NextSceneID: 99,
			},
		},
	}
}

func TestResolveSplitsNPCAndFactionEffects(t *testing.T) {
	scene := &entity.Scene{NextSceneDefault: 7}
	outcome, err := Resolve(sampleDecision(), "spare", scene, State{Karma: 50})
	if err != nil {
		t.Fatal(err)
	}

	if outcome.DecisionCode != "courier_verdict" || outcome.OptionID != "spare" {
		t.Errorf("unexpected identity: %+v", outcome)
	}
	if outcome.KarmaEffect != 10 {
		t.Errorf("karma effect = %d, want 10", outcome.KarmaEffect)
	}
	if len(outcome.NewFlags) != 1 || outcome.NewFlags[0] != "courier_spared" {
		t.Errorf("new flags = %v", outcome.NewFlags)
	}
	if outcome.NPCEffects["mira"] != 15 {
		t.Errorf("npc effects = %v", outcome.NPCEffects)
	}
	if _, leaked := outcome.NPCEffects["faction:city_watch"]; leaked {
		t.Error("faction entry leaked into npc effects")
	}
	if outcome.FactionEffects["city_watch"] != -10 {
		t.Errorf("faction effects = %v", outcome.FactionEffects)
	}
	if outcome.NextSceneID != 7 {
		t.Errorf("next scene = %d, want default 7", outcome.NextSceneID)
	}
	if outcome.SideStory != "couriers_route" {
		t.Errorf("side story = %q, want couriers_route", outcome.SideStory)
	}
}

func TestResolveOptionWithoutSideStory(t *testing.T) {
	outcome, err := Resolve(sampleDecision(), "execute", nil, State{Karma: 50})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.SideStory != "" {
		t.Errorf("side story = %q, want empty", outcome.SideStory)
	}
}

func TestResolveOptionNextSceneWins(t *testing.T) {
	scene := &entity.Scene{
		BranchTriggers:   []entity.BranchTrigger{{Conditions: []string{"karma<100"}, NextSceneID: 3}},
		NextSceneDefault: 7,
	}
	outcome, err := Resolve(sampleDecision(), "execute", scene, State{Karma: 50})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.NextSceneID != 99 {
		t.Errorf("next scene = %d, want option override 99", outcome.NextSceneID)
	}
}

func TestResolveBranchTriggerSeesPostEffectState(t *testing.T) {
	// 触发器依赖选项刚写入的标志和 karma，必须用结算后的状态求值
	scene := &entity.Scene{
		BranchTriggers: []entity.BranchTrigger{
			{Conditions: []string{"flag:courier_spared", "karma>=60"}, NextSceneID: 42},
		},
		NextSceneDefault: 7,
	}
	outcome, err := Resolve(sampleDecision(), "spare", scene, State{Karma: 55, Flags: map[string]bool{}})
	if err != nil {
		t.Fatal(err)
	}
	if outcome.NextSceneID != 42 {
		t.Errorf("next scene = %d, want trigger target 42", outcome.NextSceneID)
	}
}

func TestResolveUnknownOption(t *testing.T) {
	state := State{Karma: 50, Flags: map[string]bool{"seen": true}}
	outcome, err := Resolve(sampleDecision(), "bribe", nil, state)
	if outcome != nil {
		t.Fatalf("expected nil outcome, got %+v", outcome)
	}
	if !errors.IsCode(err, errors.CodeInvalidOption) {
		t.Errorf("expected invalid option error, got %v", err)
	}
	if len(state.Flags) != 1 || !state.Flags["seen"] {
		t.Errorf("input state mutated: %v", state.Flags)
	}
}

func TestEval(t *testing.T) {
	state := State{
		Karma:     55,
		Flags:     map[string]bool{"courier_spared": true},
		Decisions: map[string]string{"courier_verdict": "spare"},
	}

	tests := []struct {
		condition string
		want      bool
	}{
		{"flag:courier_spared", true},
		{"flag:crown_destroyed", false},
		{"karma>=55", true},
		{"karma>=56", false},
		{"karma<56", true},
		{"karma<55", false},
		{"decision:courier_verdict:spare", true},
		{"decision:courier_verdict:execute", false},
		{"decision:courier_verdict", false},
		{" karma>=50 ", true},
		{"karma>=abc", false},
		{"hp>10", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Eval(tt.condition, state); got != tt.want {
			t.Errorf("Eval(%q) = %v, want %v", tt.condition, got, tt.want)
		}
	}
}

func TestEvalAllEmptyIsSatisfied(t *testing.T) {
	if !EvalAll(nil, State{}) {
		t.Error("empty condition list should be satisfied")
	}
	if EvalAll([]string{"flag:a", "flag:missing"}, State{Flags: map[string]bool{"a": true}}) {
		t.Error("AND combination should fail on any unmet condition")
	}
}

func TestNextSceneFallsBackToDefault(t *testing.T) {
	scene := &entity.Scene{
		BranchTriggers: []entity.BranchTrigger{
			{Conditions: []string{"flag:never"}, NextSceneID: 3},
			{Conditions: []string{"karma>=40"}, NextSceneID: 4},
		},
		NextSceneDefault: 9,
	}
	if got := NextScene(scene, State{Karma: 50}); got != 4 {
		t.Errorf("got %d, want first matching trigger 4", got)
	}
	if got := NextScene(scene, State{Karma: 10}); got != 9 {
		t.Errorf("got %d, want default 9", got)
	}
}

func TestFirstSatisfiedHidden(t *testing.T) {
	hidden := []*entity.Decision{
		{Code: "visible", IsHidden: false, HiddenConditions: []string{"karma>=0"}},
		{Code: "resolved", IsHidden: true, HiddenConditions: []string{"karma>=0"}},
		{Code: "no_conditions", IsHidden: true},
		{Code: "unmet", IsHidden: true, HiddenConditions: []string{"flag:never"}},
		{Code: "smuggler_pact", IsHidden: true, HiddenConditions: []string{"flag:courier_spared", "karma>=55"}},
	}
	state := State{
		Karma:     60,
		Flags:     map[string]bool{"courier_spared": true},
		Decisions: map[string]string{"resolved": "yes"},
	}

	got := FirstSatisfiedHidden(hidden, state)
	if got == nil || got.Code != "smuggler_pact" {
		t.Fatalf("got %+v, want smuggler_pact", got)
	}

	state.Decisions["smuggler_pact"] = "pact"
	if again := FirstSatisfiedHidden(hidden, state); again != nil {
		t.Errorf("resolved decision should not fire again, got %+v", again)
	}
}
