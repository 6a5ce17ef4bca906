package entity

import (
	"time"
)

// SceneType 场景类型
type SceneType string

const (
	SceneNarrative  SceneType = "narrative"
	SceneCombat     SceneType = "combat"
	ScenePuzzle     SceneType = "puzzle"
	SceneSocial     SceneType = "social"
	SceneRevelation SceneType = "revelation"
	SceneDecision   SceneType = "decision"
)

// TensionLevel 场景紧张度
type TensionLevel string

const (
	TensionCalm     TensionLevel = "calm"
	TensionNormal   TensionLevel = "normal"
	TensionElevated TensionLevel = "elevated"
	TensionHigh     TensionLevel = "high"
	TensionClimax   TensionLevel = "climax"
)

// BranchTrigger 场景分支触发器
// Condition 为条件表达式，多个条件以 AND 组合，
// 支持 flag:<name>、karma>=<n>、karma<<n>、decision:<code>:<option>。
type BranchTrigger struct {
	Conditions  []string `json:"conditions"`
	NextSceneID int64    `json:"next_scene_id"`
}

// Scene 场景实体
// SecretInstructions 只进入模型提示词的保密段落，绝不出现在玩家可见文本中。
type Scene struct {
	ID                 int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	ChapterID          int64           `json:"chapter_id" gorm:"index;not null"`
	SceneOrder         int             `json:"scene_order" gorm:"column:scene_order;not null"`
	Type               SceneType       `json:"type" gorm:"type:varchar(32);default:'narrative'"`
	Title              string          `json:"title" gorm:"type:varchar(255);not null"`
	OpeningNarration   string          `json:"opening_narration,omitempty" gorm:"type:text"`
	AIContext          string          `json:"ai_context,omitempty" gorm:"column:ai_context;type:text"`
	SecretInstructions string          `json:"-" gorm:"type:text"`
	TensionLevel       TensionLevel    `json:"tension_level" gorm:"type:varchar(32);default:'normal'"`
	Objectives         []string        `json:"objectives,omitempty" gorm:"type:jsonb;serializer:json"`
	BranchTriggers     []BranchTrigger `json:"branch_triggers,omitempty" gorm:"type:jsonb;serializer:json"`
	NextSceneDefault   int64           `json:"next_scene_default,omitempty"`
	CreatedAt          time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Scene) TableName() string {
	return "story_scenes"
}
