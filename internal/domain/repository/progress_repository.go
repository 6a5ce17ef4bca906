package repository

import (
	"context"

	"story-engine-api/internal/domain/entity"
)

// ProgressRepository 房间剧情进度仓储接口
type ProgressRepository interface {
	// Create 创建进度记录
	Create(ctx context.Context, progress *entity.RoomProgress) error

	// GetByRoom 获取房间进度，不存在时返回 (nil, nil)
	GetByRoom(ctx context.Context, roomID int64) (*entity.RoomProgress, error)

	// Update 整体更新进度记录
	Update(ctx context.Context, progress *entity.RoomProgress) error

	// DeleteByRoom 删除房间进度（房间销毁时级联）
	DeleteByRoom(ctx context.Context, roomID int64) error

	// TopKarmaByCampaign 按业力排序获取剧本内房间排行
	TopKarmaByCampaign(ctx context.Context, campaignID int64, limit int) ([]*entity.RoomProgress, error)
}

// RelationshipRepository 房间 NPC 关系仓储接口
type RelationshipRepository interface {
	// Upsert 创建或更新关系记录
	Upsert(ctx context.Context, rel *entity.NPCRelationship) error

	// GetByRoomAndNPC 获取单个关系，不存在时返回 (nil, nil)
	GetByRoomAndNPC(ctx context.Context, roomID, npcID int64) (*entity.NPCRelationship, error)

	// ListByRoom 获取房间的全部关系
	ListByRoom(ctx context.Context, roomID int64) ([]*entity.NPCRelationship, error)

	// DeleteByRoom 删除房间的全部关系
	DeleteByRoom(ctx context.Context, roomID int64) error
}

// EventRepository 剧情事件仓储接口
type EventRepository interface {
	// Create 追加事件记录
	Create(ctx context.Context, event *entity.StoryEvent) error

	// ListByRoom 获取房间最近的事件（按时间倒序）
	ListByRoom(ctx context.Context, roomID int64, limit int) ([]*entity.StoryEvent, error)
}
