package entity

import (
	"testing"
)

func TestNewNPCRelationshipDefaults(t *testing.T) {
	npc := &NPC{ID: 7, Code: "mira", RelationshipDefault: 120}
	rel := NewNPCRelationship(42, npc)

	if rel.RoomID != 42 || rel.NPCID != 7 || rel.NPCCode != "mira" {
		t.Errorf("identity fields wrong: %+v", rel)
	}
	if rel.RelationshipScore != 100 {
		t.Errorf("default score should clamp to 100, got %d", rel.RelationshipScore)
	}
	if rel.TrustLevel != 50 || rel.EmotionalState != EmotionNeutral {
		t.Errorf("initial state wrong: %+v", rel)
	}
}

func TestAdjustClamps(t *testing.T) {
	rel := &NPCRelationship{RelationshipScore: 95, TrustLevel: 5}

	rel.AdjustRelationship(20)
	if rel.RelationshipScore != 100 {
		t.Errorf("relationship = %d, want 100", rel.RelationshipScore)
	}
	rel.AdjustTrust(-20)
	if rel.TrustLevel != 0 {
		t.Errorf("trust = %d, want 0", rel.TrustLevel)
	}
}

func TestTriggerBetrayalMonotonic(t *testing.T) {
	rel := &NPCRelationship{EmotionalState: EmotionFriendly}

	if !rel.TriggerBetrayal() {
		t.Error("first trigger should succeed")
	}
	if rel.EmotionalState != EmotionBetrayed {
		t.Errorf("emotional state = %s, want betrayed", rel.EmotionalState)
	}
	if rel.TriggerBetrayal() {
		t.Error("betrayal must not trigger twice")
	}
	if !rel.BetrayalTriggered {
		t.Error("flag must stay set")
	}
}

func TestTriggerRedemptionMonotonic(t *testing.T) {
	rel := &NPCRelationship{}
	if !rel.TriggerRedemption() {
		t.Error("first trigger should succeed")
	}
	if rel.TriggerRedemption() {
		t.Error("redemption must not trigger twice")
	}
}

func TestLearnSecretIdempotent(t *testing.T) {
	rel := &NPCRelationship{}
	if !rel.LearnSecret("hidden_past") {
		t.Error("first learn should succeed")
	}
	if rel.LearnSecret("hidden_past") {
		t.Error("repeated learn must be a no-op")
	}
	if !rel.KnowsSecret("hidden_past") || rel.KnowsSecret("other") {
		t.Error("secret check wrong")
	}
}

func TestRecordInteraction(t *testing.T) {
	rel := &NPCRelationship{}
	rel.RecordInteraction()
	rel.RecordInteraction()
	if rel.InteractionsCount != 2 {
		t.Errorf("interactions = %d, want 2", rel.InteractionsCount)
	}
}
