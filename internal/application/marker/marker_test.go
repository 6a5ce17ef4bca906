package marker

import (
	"strings"
	"testing"

	"story-engine-api/internal/domain/entity"
)

func TestParseValidMarkers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Effect
	}{
		{
			name: "karma positive",
			text: "[KARMA:+5]",
			want: Effect{Kind: KindKarma, Delta: 5},
		},
		{
			name: "karma negative",
			text: "[KARMA:-10]",
			want: Effect{Kind: KindKarma, Delta: -10},
		},
		{
			name: "hp without sign",
			text: "[HP:12]",
			want: Effect{Kind: KindHP, Delta: 12},
		},
		{
			name: "npc react without reason",
			text: "[NPC_REACT:mira:hostile]",
			want: Effect{Kind: KindNPCReact, NPCCode: "mira", State: entity.EmotionHostile},
		},
		{
			name: "npc react uppercase state and reason",
			text: "[NPC_REACT:mira:GRATEFUL:saved her crew]",
			want: Effect{Kind: KindNPCReact, NPCCode: "mira", State: entity.EmotionGrateful, Reason: "saved her crew"},
		},
		{
			name: "clue revealed",
			text: "[CLUE_REVEALED:vault_seal]",
			want: Effect{Kind: KindClueRevealed, ClueCode: "vault_seal"},
		},
		{
			name: "decision",
			text: "[DECISION:courier_verdict]",
			want: Effect{Kind: KindDecision, DecisionCode: "courier_verdict"},
		},
		{
			name: "item gain",
			text: "[ITEM:+silver key]",
			want: Effect{Kind: KindItem, ItemName: "silver key", ItemGain: true},
		},
		{
			name: "item loss",
			text: "[ITEM:-torch]",
			want: Effect{Kind: KindItem, ItemName: "torch", ItemGain: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.text)
			if len(result.Dropped) != 0 {
				t.Fatalf("unexpected drops: %+v", result.Dropped)
			}
			if len(result.Effects) != 1 {
				t.Fatalf("expected 1 effect, got %d", len(result.Effects))
			}
			got := result.Effects[0]
			got.Raw = ""
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDropsInvalidMarkers(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason DropReason
	}{
		{"karma non-numeric", "[KARMA:lots]", DropMalformed},
		{"npc react missing state", "[NPC_REACT:mira]", DropMalformed},
		{"npc react unknown state", "[NPC_REACT:mira:ecstatic]", DropMalformed},
		{"npc react bad code", "[NPC_REACT:mi ra:hostile]", DropMalformed},
		{"clue bad code", "[CLUE_REVEALED:vault seal!]", DropMalformed},
		{"item without sign", "[ITEM:rope]", DropMalformed},
		{"item empty name", "[ITEM:+ ]", DropMalformed},
		{"unknown kind", "[WEATHER:rain]", DropUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.text)
			if len(result.Effects) != 0 {
				t.Fatalf("unexpected effects: %+v", result.Effects)
			}
			if len(result.Dropped) != 1 {
				t.Fatalf("expected 1 drop, got %d", len(result.Dropped))
			}
			if result.Dropped[0].Reason != tt.reason {
				t.Errorf("got reason %q, want %q", result.Dropped[0].Reason, tt.reason)
			}
		})
	}
}

func TestParseStripsAllMarkerShapes(t *testing.T) {
	text := "The guard nods slowly. [KARMA:+5] [WEATHER:rain]\nHe waves you through. [NPC_REACT:mira:friendly] "
	result := Parse(text)

	if strings.Contains(result.CleanText, "[") || strings.Contains(result.CleanText, "]") {
		t.Fatalf("clean text still contains marker syntax: %q", result.CleanText)
	}
	want := "The guard nods slowly.\nHe waves you through."
	if result.CleanText != want {
		t.Errorf("got %q, want %q", result.CleanText, want)
	}
	if len(result.Effects) != 2 {
		t.Errorf("expected 2 effects, got %d", len(result.Effects))
	}
	if len(result.Dropped) != 1 {
		t.Errorf("expected 1 drop, got %d", len(result.Dropped))
	}
}

func TestParsePlainTextUntouched(t *testing.T) {
	text := "A quiet morning in the quarter. Nothing stirs."
	result := Parse(text)
	if result.CleanText != text {
		t.Errorf("got %q, want %q", result.CleanText, text)
	}
	if len(result.Effects) != 0 || len(result.Dropped) != 0 {
		t.Errorf("expected no effects or drops, got %+v / %+v", result.Effects, result.Dropped)
	}
}
