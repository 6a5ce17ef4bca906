package entity

import (
	"time"
)

// DecisionOption 决策选项
// NPCEffects 键为 NPC 代码（或 faction:<name>），值为关系/阵营变化量。
type DecisionOption struct {
	ID               string         `json:"id"`
	Label            string         `json:"label"`
	Description      string         `json:"description,omitempty"`
	KarmaEffect      int            `json:"karma_effect"`
	ConsequenceFlags []string       `json:"consequence_flags,omitempty"`
	NPCEffects       map[string]int `json:"npc_effects,omitempty"`
	NextSceneID      int64          `json:"next_scene_id,omitempty"`
	UnlocksSideStory string         `json:"unlocks_side_story,omitempty"`
}

// Decision 关键剧情决策
// 隐式决策（IsHidden）由引擎依据累计状态自动触发，不向玩家展示菜单；
// HiddenConditions 使用与 BranchTrigger 相同的条件表达式。
type Decision struct {
	ID               int64            `json:"id" gorm:"primaryKey;autoIncrement"`
	SceneID          int64            `json:"scene_id" gorm:"index;not null"`
	Code             string           `json:"code" gorm:"type:varchar(64);uniqueIndex;not null"`
	Title            string           `json:"title" gorm:"type:varchar(255);not null"`
	Description      string           `json:"description,omitempty" gorm:"type:text"`
	Options          []DecisionOption `json:"options" gorm:"type:jsonb;serializer:json"`
	AffectsEnding    bool             `json:"affects_ending" gorm:"default:false"`
	IsHidden         bool             `json:"is_hidden" gorm:"default:false"`
	HiddenConditions []string         `json:"hidden_conditions,omitempty" gorm:"type:jsonb;serializer:json"`
	TimeoutTurns     int              `json:"timeout_turns,omitempty"`
	DefaultOption    string           `json:"default_option,omitempty" gorm:"type:varchar(64)"`
	CreatedAt        time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Decision) TableName() string {
	return "story_decisions"
}

// Option 按 ID 查找选项
func (d *Decision) Option(optionID string) (DecisionOption, bool) {
	for _, opt := range d.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return DecisionOption{}, false
}
