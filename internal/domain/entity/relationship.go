package entity

import (
	"time"
)

// NPCRelationship 房间内单个 NPC 的关系状态，(room, npc) 唯一
// BetrayalTriggered 一旦置位即单调保持，绝不回退；
// 救赎通过独立的 RedemptionTriggered 建模。
type NPCRelationship struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomID  int64  `json:"room_id" gorm:"uniqueIndex:uq_room_npc;not null"`
	NPCID   int64  `json:"npc_id" gorm:"uniqueIndex:uq_room_npc;not null"`
	NPCCode string `json:"npc_code" gorm:"type:varchar(64);not null"`

	RelationshipScore int            `json:"relationship_score" gorm:"default:50"`
	TrustLevel        int            `json:"trust_level" gorm:"default:50"`
	EmotionalState    EmotionalState `json:"emotional_state" gorm:"type:varchar(32);default:'neutral'"`

	KnownSecrets      []string `json:"known_secrets" gorm:"type:jsonb;serializer:json"`
	InteractionsCount int      `json:"interactions_count" gorm:"default:0"`

	BetrayalTriggered   bool `json:"betrayal_triggered" gorm:"default:false"`
	RedemptionTriggered bool `json:"redemption_triggered" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (NPCRelationship) TableName() string {
	return "room_npc_relationships"
}

// NewNPCRelationship 以模板默认值创建关系
func NewNPCRelationship(roomID int64, npc *NPC) *NPCRelationship {
	now := time.Now()
	return &NPCRelationship{
		RoomID:            roomID,
		NPCID:             npc.ID,
		NPCCode:           npc.Code,
		RelationshipScore: clampScore(npc.RelationshipDefault),
		TrustLevel:        50,
		EmotionalState:    EmotionNeutral,
		KnownSecrets:      []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// AdjustRelationship 调整关系分并钳制到 [0,100]
func (r *NPCRelationship) AdjustRelationship(delta int) {
	r.RelationshipScore = clampScore(r.RelationshipScore + delta)
	r.UpdatedAt = time.Now()
}

// AdjustTrust 调整信任度并钳制到 [0,100]
func (r *NPCRelationship) AdjustTrust(delta int) {
	r.TrustLevel = clampScore(r.TrustLevel + delta)
	r.UpdatedAt = time.Now()
}

// SetEmotionalState 更新情绪状态
func (r *NPCRelationship) SetEmotionalState(state EmotionalState) {
	r.EmotionalState = state
	r.UpdatedAt = time.Now()
}

// TriggerBetrayal 置位背叛标记，只能从 false 到 true
func (r *NPCRelationship) TriggerBetrayal() bool {
	if r.BetrayalTriggered {
		return false
	}
	r.BetrayalTriggered = true
	r.EmotionalState = EmotionBetrayed
	r.UpdatedAt = time.Now()
	return true
}

// TriggerRedemption 置位救赎标记，只能从 false 到 true
func (r *NPCRelationship) TriggerRedemption() bool {
	if r.RedemptionTriggered {
		return false
	}
	r.RedemptionTriggered = true
	r.UpdatedAt = time.Now()
	return true
}

// LearnSecret 记录玩家获知的秘密，需属于模板秘密集合
func (r *NPCRelationship) LearnSecret(secret string) bool {
	for _, s := range r.KnownSecrets {
		if s == secret {
			return false
		}
	}
	r.KnownSecrets = append(r.KnownSecrets, secret)
	r.UpdatedAt = time.Now()
	return true
}

// KnowsSecret 检查玩家是否已获知秘密
func (r *NPCRelationship) KnowsSecret(secret string) bool {
	for _, s := range r.KnownSecrets {
		if s == secret {
			return true
		}
	}
	return false
}

// RecordInteraction 累计交互次数
func (r *NPCRelationship) RecordInteraction() {
	r.InteractionsCount++
	r.UpdatedAt = time.Now()
}
