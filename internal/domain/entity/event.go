package entity

import (
	"time"
)

// StoryEventType 剧情事件类型
type StoryEventType string

const (
	EventKarmaChanged        StoryEventType = "karma_changed"
	EventNPCReaction         StoryEventType = "npc_reaction"
	EventClueRevealed        StoryEventType = "clue_revealed"
	EventDecisionResolved    StoryEventType = "decision_resolved"
	EventDecisionActivated   StoryEventType = "decision_activated"
	EventBetrayalTriggered   StoryEventType = "betrayal_triggered"
	EventRedemptionTriggered StoryEventType = "redemption_triggered"
	EventSecretRevealed      StoryEventType = "secret_revealed"
	EventSceneAdvanced       StoryEventType = "scene_advanced"
	EventSideStoryCompleted  StoryEventType = "side_story_completed"
	EventProgressInitialized StoryEventType = "progress_initialized"
)

// StoryEvent 剧情事件日志，由事件流落库形成回合审计记录
type StoryEvent struct {
	ID         int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomID     int64          `json:"room_id" gorm:"index;not null"`
	CampaignID int64          `json:"campaign_id" gorm:"index"`
	Type       StoryEventType `json:"type" gorm:"type:varchar(64);not null"`
	Payload    map[string]any `json:"payload,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (StoryEvent) TableName() string {
	return "story_events"
}
