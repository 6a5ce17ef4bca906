package entity

import (
	"time"
)

// EndingRequirements 结局达成条件
// KarmaMin 为 nil 表示无业力要求；Decisions 键为决策代码、值为要求的选项。
type EndingRequirements struct {
	Flags     []string          `json:"flags,omitempty"`
	KarmaMin  *int              `json:"karma_min,omitempty"`
	Decisions map[string]string `json:"decisions,omitempty"`
}

// Ending 结局模板
type Ending struct {
	ID           int64              `json:"id" gorm:"primaryKey;autoIncrement"`
	CampaignID   int64              `json:"campaign_id" gorm:"index;not null"`
	Code         string             `json:"code" gorm:"type:varchar(64);uniqueIndex;not null"`
	Title        string             `json:"title" gorm:"type:varchar(255);not null"`
	Description  string             `json:"description,omitempty" gorm:"type:text"`
	Requirements EndingRequirements `json:"requirements" gorm:"type:jsonb;serializer:json"`
	IsGoodEnding bool               `json:"is_good_ending" gorm:"default:false"`
	CreatedAt    time.Time          `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Ending) TableName() string {
	return "story_endings"
}
