// Package entity 定义领域实体
package entity

import (
	"time"
)

// CampaignTone 剧本基调
type CampaignTone string

const (
	ToneDark    CampaignTone = "dark"
	ToneHeroic  CampaignTone = "heroic"
	ToneMystery CampaignTone = "mystery"
	ToneComedy  CampaignTone = "comedy"
)

// Campaign 剧本实体（运行时只读模板）
type Campaign struct {
	ID          int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	Code        string       `json:"code" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name        string       `json:"name" gorm:"type:varchar(255);not null"`
	Description string       `json:"description,omitempty" gorm:"type:text"`
	Tone        CampaignTone `json:"tone" gorm:"type:varchar(32);default:'heroic'"`
	Difficulty  string       `json:"difficulty,omitempty" gorm:"type:varchar(32)"`
	TotalActs   int          `json:"total_acts" gorm:"default:1"`
	IsActive    bool         `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}

// Act 幕实体，每个剧本拥有有序的若干幕
type Act struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CampaignID int64     `json:"campaign_id" gorm:"index;not null"`
	Number     int       `json:"number" gorm:"not null"`
	Title      string    `json:"title" gorm:"type:varchar(255);not null"`
	Objectives []string  `json:"objectives,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Act) TableName() string {
	return "story_acts"
}
