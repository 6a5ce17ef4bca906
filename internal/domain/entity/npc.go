package entity

import (
	"time"
)

// EmotionalState NPC 情绪状态
type EmotionalState string

const (
	EmotionNeutral    EmotionalState = "neutral"
	EmotionFriendly   EmotionalState = "friendly"
	EmotionHappy      EmotionalState = "happy"
	EmotionGrateful   EmotionalState = "grateful"
	EmotionCautious   EmotionalState = "cautious"
	EmotionSuspicious EmotionalState = "suspicious"
	EmotionFearful    EmotionalState = "fearful"
	EmotionAngry      EmotionalState = "angry"
	EmotionHostile    EmotionalState = "hostile"
	EmotionBetrayed   EmotionalState = "betrayed"
)

// Personality NPC 性格特质，每项取值 0-100
type Personality struct {
	Cunning    int `json:"cunning"`
	Loyalty    int `json:"loyalty"`
	Patience   int `json:"patience"`
	Pride      int `json:"pride"`
	Cruelty    int `json:"cruelty"`
	Compassion int `json:"compassion"`
	Courage    int `json:"courage"`
	Greed      int `json:"greed"`
	Honor      int `json:"honor"`
	Wisdom     int `json:"wisdom"`
}

// DefaultPersonality 各特质取中间值的性格
func DefaultPersonality() Personality {
	return Personality{
		Cunning: 50, Loyalty: 50, Patience: 50, Pride: 50, Cruelty: 50,
		Compassion: 50, Courage: 50, Greed: 50, Honor: 50, Wisdom: 50,
	}
}

// NPC 角色模板（运行时只读）
// ApparentRole 是玩家与模型可见的表面身份；TrueRole 与 Secrets
// 只用于控制揭示时机，绝不回显到玩家可见文本。
type NPC struct {
	ID                  int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	CampaignID          int64       `json:"campaign_id" gorm:"index;not null"`
	Code                string      `json:"code" gorm:"type:varchar(64);not null"`
	Name                string      `json:"name" gorm:"type:varchar(255);not null"`
	ApparentRole        string      `json:"apparent_role" gorm:"type:varchar(255)"`
	TrueRole            string      `json:"-" gorm:"type:varchar(255)"`
	Description         string      `json:"description,omitempty" gorm:"type:text"`
	DialogueStyle       string      `json:"dialogue_style,omitempty" gorm:"type:varchar(255)"`
	Personality         Personality `json:"personality" gorm:"type:jsonb;serializer:json"`
	Secrets             []string    `json:"-" gorm:"type:jsonb;serializer:json"`
	SecretAgenda        string      `json:"-" gorm:"type:text"`
	RelationshipDefault int         `json:"relationship_default" gorm:"default:50"`
	BetrayalThreshold   int         `json:"betrayal_threshold" gorm:"default:30"`
	RedemptionThreshold int         `json:"redemption_threshold" gorm:"default:80"`
	IsMajor             bool        `json:"is_major" gorm:"default:false"`
	CreatedAt           time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (NPC) TableName() string {
	return "story_npcs"
}

// HasSecret 检查秘密是否属于该 NPC 模板
func (n *NPC) HasSecret(secret string) bool {
	for _, s := range n.Secrets {
		if s == secret {
			return true
		}
	}
	return false
}

// CanBetray NPC 是否具有背叛潜质（表里身份不一致）
func (n *NPC) CanBetray() bool {
	return n.TrueRole != "" && n.TrueRole != n.ApparentRole
}
