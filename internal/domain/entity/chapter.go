package entity

import (
	"time"
)

// Chapter 章节实体，每幕拥有有序的若干章节
type Chapter struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ActID       int64     `json:"act_id" gorm:"index;not null"`
	Number      int       `json:"number" gorm:"not null"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	KeyNPCCodes []string  `json:"key_npc_codes,omitempty" gorm:"column:key_npc_codes;type:jsonb;serializer:json"`
	IsOptional  bool      `json:"is_optional" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "story_chapters"
}
