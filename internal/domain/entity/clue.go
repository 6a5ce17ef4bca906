package entity

import (
	"time"
)

// Clue 线索实体
// ForeshadowHint 是在揭示前提供给模型的铺垫提示；
// RevealAct 标记关联转折计划揭示的幕。
type Clue struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CampaignID     int64     `json:"campaign_id" gorm:"index;not null"`
	Code           string    `json:"code" gorm:"type:varchar(64);uniqueIndex;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	RelatedTwist   string    `json:"related_twist,omitempty" gorm:"type:varchar(64)"`
	ForeshadowHint string    `json:"foreshadow_hint,omitempty" gorm:"type:text"`
	RevealAct      int       `json:"reveal_act" gorm:"default:1"`
	IsRequired     bool      `json:"is_required" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Clue) TableName() string {
	return "story_clues"
}
