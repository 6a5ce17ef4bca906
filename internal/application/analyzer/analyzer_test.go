package analyzer

import (
	"math"
	"testing"
)

func TestAnalyzeEmptyMessage(t *testing.T) {
	a := NewAnalyzer()
	got := a.Analyze(Request{Message: "   "})

	if got.Intent != ActionUnclassified {
		t.Errorf("intent = %s, want unclassified", got.Intent)
	}
	if got.Alignment != AlignNeutral {
		t.Errorf("alignment = %s, want neutral", got.Alignment)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
	if got.Coherence != 1.0 {
		t.Errorf("coherence = %v, want 1.0", got.Coherence)
	}
}

func TestAnalyzeIntentClassification(t *testing.T) {
	a := NewAnalyzer()
	tests := []struct {
		message string
		want    ActionType
	}{
		{"I attack the cultist with my sword", ActionCombat},
		{"I talk to the innkeeper about the missing shipment", ActionDialogue},
		{"I sneak past the guards without being seen", ActionStealth},
		{"I investigate the letter for hidden clues", ActionInvestigation},
		{"I try to persuade the magistrate", ActionSocial},
		{"I cast a warding spell", ActionMagic},
		{"We rest at the camp until dawn", ActionRest},
		{"hmm", ActionUnclassified},
	}
	for _, tt := range tests {
		got := a.Analyze(Request{Message: tt.message})
		if got.Intent != tt.want {
			t.Errorf("%q: intent = %s, want %s", tt.message, got.Intent, tt.want)
		}
	}
}

func TestAnalyzeKarmaDetection(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze(Request{Message: "I help the innocent child cross the square"})
	if got.KarmaDelta != 10 {
		t.Errorf("karma delta = %d, want 10", got.KarmaDelta)
	}
	if len(got.KarmaActions) != 1 || got.KarmaActions[0].Code != "helped_innocent" {
		t.Errorf("karma actions = %+v", got.KarmaActions)
	}
	if got.Alignment != AlignGood {
		t.Errorf("alignment = %s, want good", got.Alignment)
	}

	got = a.Analyze(Request{Message: "I steal the merchant's purse"})
	if got.KarmaDelta != -8 {
		t.Errorf("karma delta = %d, want -8", got.KarmaDelta)
	}
	if got.Alignment != AlignSelfish {
		t.Errorf("alignment = %s, want selfish", got.Alignment)
	}

	got = a.Analyze(Request{Message: "I look around the chamber"})
	if got.KarmaDelta != 0 || len(got.KarmaActions) != 0 {
		t.Errorf("neutral action produced karma: %+v", got)
	}
}

func TestAnalyzeTargetNPCAndInteractions(t *testing.T) {
	a := NewAnalyzer()
	npcs := []string{"captain_aldric", "mira"}

	got := a.Analyze(Request{Message: "I kindly ask mira about her past", ActiveNPCs: npcs})
	if got.TargetNPC != "mira" {
		t.Errorf("target = %q, want mira", got.TargetNPC)
	}
	if got.NPCInteractions["mira"] != "friendly" {
		t.Errorf("interactions = %v, want friendly", got.NPCInteractions)
	}

	got = a.Analyze(Request{Message: "I confront captain_aldric about the seal", ActiveNPCs: npcs})
	if got.TargetNPC != "captain_aldric" {
		t.Errorf("target = %q, want captain_aldric", got.TargetNPC)
	}
	if got.NPCInteractions["captain_aldric"] != "confrontation" {
		t.Errorf("interactions = %v, want confrontation", got.NPCInteractions)
	}

	got = a.Analyze(Request{Message: "I speak with the barkeep", ActiveNPCs: npcs})
	if got.TargetNPC != "" || got.NPCInteractions != nil {
		t.Errorf("no active npc mentioned, got target %q / %v", got.TargetNPC, got.NPCInteractions)
	}
}

func TestAnalyzeCoherence(t *testing.T) {
	a := NewAnalyzer()
	tests := []struct {
		message   string
		sceneType string
		want      float64
	}{
		{"I attack the cultist with my sword", "combat", 1.0},
		{"I attack the cultist with my sword", "social", 0.6},
		{"I sneak past the guards without being seen", "social", 0.7},
		{"I talk to the priest", "combat", 0.9},
		{"hmm", "puzzle", 0.9},
		{"I attack the cultist with my sword", "", 1.0},
	}
	for _, tt := range tests {
		got := a.Analyze(Request{Message: tt.message, SceneType: tt.sceneType})
		if math.Abs(got.Coherence-tt.want) > 1e-9 {
			t.Errorf("%q in %q scene: coherence = %v, want %v", tt.message, tt.sceneType, got.Coherence, tt.want)
		}
	}
}
