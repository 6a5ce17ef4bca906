package postgres

import (
	"context"
	"fmt"

	"story-engine-api/internal/domain/entity"
)

// EventRepository 剧情事件仓储实现
type EventRepository struct {
	client *Client
}

// NewEventRepository 创建事件仓储
func NewEventRepository(client *Client) *EventRepository {
	return &EventRepository{client: client}
}

// Create 追加事件记录
func (r *EventRepository) Create(ctx context.Context, event *entity.StoryEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.EventRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(event).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create story event: %w", err)
	}
	return nil
}

// ListByRoom 获取房间最近的事件
func (r *EventRepository) ListByRoom(ctx context.Context, roomID int64, limit int) ([]*entity.StoryEvent, error) {
	ctx, span := tracer.Start(ctx, "postgres.EventRepository.ListByRoom")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var events []*entity.StoryEvent
	if err := db.Where("room_id = ?", roomID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list story events: %w", err)
	}
	return events, nil
}
