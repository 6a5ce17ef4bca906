package npcbrain

import (
	"testing"

	"story-engine-api/internal/domain/entity"
)

// plainNPC 返回无性格修正、无秘密的 NPC
func plainNPC(code string) *entity.NPC {
	return &entity.NPC{Code: code}
}

func neutralRel() *entity.NPCRelationship {
	return &entity.NPCRelationship{
		RelationshipScore: 50,
		TrustLevel:        50,
		EmotionalState:    entity.EmotionNeutral,
	}
}

func TestReactBaseValues(t *testing.T) {
	b := NewBrain()
	tests := []struct {
		action    string
		wantRel   int
		wantTrust int
	}{
		{"helped", 10, 8},
		{"saved", 25, 20},
		{"attacked", -20, -25},
		{"betrayed", -30, -40},
		{"neutral", 0, 0},
	}
	for _, tt := range tests {
		r := b.React(plainNPC("mira"), neutralRel(), tt.action)
		if r.RelationshipChange != tt.wantRel || r.TrustChange != tt.wantTrust {
			t.Errorf("%s: got %d/%d, want %d/%d",
				tt.action, r.RelationshipChange, r.TrustChange, tt.wantRel, tt.wantTrust)
		}
	}
}

func TestReactTraitScaling(t *testing.T) {
	b := NewBrain()

	compassionate := &entity.NPC{Code: "edwin", Personality: entity.Personality{Compassion: 100}}
	r := b.React(compassionate, neutralRel(), "helped")
	// 基准 10/8，compassion 权重 0.4（信任按 0.8 折算）
	if r.RelationshipChange != 14 {
		t.Errorf("relationship change = %d, want 14", r.RelationshipChange)
	}
	if r.TrustChange != 10 {
		t.Errorf("trust change = %d, want 10", r.TrustChange)
	}

	loyal := &entity.NPC{Code: "aldric", Personality: entity.Personality{Loyalty: 100}}
	r = b.React(loyal, neutralRel(), "betrayed")
	// 忠诚减轻背叛冲击：-30×0.5 / -40×0.6
	if r.RelationshipChange != -15 || r.TrustChange != -24 {
		t.Errorf("got %d/%d, want -15/-24", r.RelationshipChange, r.TrustChange)
	}
}

func TestReactEmotionalTransitions(t *testing.T) {
	b := NewBrain()
	tests := []struct {
		current entity.EmotionalState
		action  string
		want    entity.EmotionalState
	}{
		{entity.EmotionNeutral, "attacked", entity.EmotionSuspicious},
		{entity.EmotionNeutral, "saved", entity.EmotionGrateful},
		{entity.EmotionNeutral, "threatened", entity.EmotionFearful},
		{entity.EmotionHostile, "helped", entity.EmotionSuspicious},
		{entity.EmotionFriendly, "betrayed", entity.EmotionHostile},
		{entity.EmotionNeutral, "professional", entity.EmotionNeutral}, // 无触发器且变化微小
	}
	for _, tt := range tests {
		rel := neutralRel()
		rel.EmotionalState = tt.current
		r := b.React(plainNPC("mira"), rel, tt.action)
		if r.NewEmotion != tt.want {
			t.Errorf("%s + %s: got %s, want %s", tt.current, tt.action, r.NewEmotion, tt.want)
		}
	}
}

func TestReactSecretReveal(t *testing.T) {
	b := NewBrain()
	npc := &entity.NPC{Code: "mira", Secrets: []string{"hidden_past", "second_secret"}}

	// 深度信任动作 + 信任达到 80
	rel := neutralRel()
	rel.TrustLevel = 75
	r := b.React(npc, rel, "trusted")
	if r.RevealsSecret != "hidden_past" {
		t.Errorf("deep trust path: got %q, want hidden_past", r.RevealsSecret)
	}

	// 熟识路径：信任 70 以上且交互 ≥ 5
	rel = neutralRel()
	rel.TrustLevel = 68
	rel.InteractionsCount = 5
	r = b.React(npc, rel, "helped")
	if r.RevealsSecret != "hidden_past" {
		t.Errorf("familiar path: got %q, want hidden_past", r.RevealsSecret)
	}

	// 交互不足时不揭示
	rel = neutralRel()
	rel.TrustLevel = 68
	rel.InteractionsCount = 2
	if r = b.React(npc, rel, "helped"); r.RevealsSecret != "" {
		t.Errorf("insufficient interactions: got %q", r.RevealsSecret)
	}

	// 已知秘密跳过，取下一条未知的
	rel = neutralRel()
	rel.TrustLevel = 75
	rel.KnownSecrets = []string{"hidden_past"}
	if r = b.React(npc, rel, "trusted"); r.RevealsSecret != "second_secret" {
		t.Errorf("known secret skipped: got %q, want second_secret", r.RevealsSecret)
	}

	if r = b.React(plainNPC("edwin"), neutralRel(), "saved"); r.RevealsSecret != "" {
		t.Errorf("npc without secrets revealed %q", r.RevealsSecret)
	}
}

func betrayerNPC() *entity.NPC {
	return &entity.NPC{
		Code:                "aldric",
		ApparentRole:        "Captain of the Watch",
		TrueRole:            "Cult Infiltrator",
		BetrayalThreshold:   35,
		RedemptionThreshold: 80,
	}
}

func TestReactBetrayalTrigger(t *testing.T) {
	b := NewBrain()

	r := b.React(betrayerNPC(), neutralRel(), "betrayed")
	// 50 - 30 = 20 < 35
	if !r.TriggersBetrayal {
		t.Error("crossing betrayal threshold should trigger")
	}

	rel := neutralRel()
	rel.BetrayalTriggered = true
	if r = b.React(betrayerNPC(), rel, "betrayed"); r.TriggersBetrayal {
		t.Error("already triggered betrayal must not fire again")
	}

	if r = b.React(plainNPC("edwin"), neutralRel(), "betrayed"); r.TriggersBetrayal {
		t.Error("npc without hidden role cannot betray")
	}
}

func TestReactRedemptionTrigger(t *testing.T) {
	b := NewBrain()

	rel := neutralRel()
	rel.RelationshipScore = 60
	r := b.React(betrayerNPC(), rel, "saved")
	// 60 + 25 = 85 >= 80
	if !r.TriggersRedemption {
		t.Error("crossing redemption threshold should trigger")
	}

	rel = neutralRel()
	rel.RelationshipScore = 60
	rel.RedemptionTriggered = true
	if r = b.React(betrayerNPC(), rel, "saved"); r.TriggersRedemption {
		t.Error("already triggered redemption must not fire again")
	}
}
