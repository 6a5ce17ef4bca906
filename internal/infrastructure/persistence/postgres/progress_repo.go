package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"story-engine-api/internal/domain/entity"
)

// ProgressRepository 房间剧情进度仓储实现
type ProgressRepository struct {
	client *Client
}

// NewProgressRepository 创建进度仓储
func NewProgressRepository(client *Client) *ProgressRepository {
	return &ProgressRepository{client: client}
}

// Create 创建进度记录
func (r *ProgressRepository) Create(ctx context.Context, progress *entity.RoomProgress) error {
	ctx, span := tracer.Start(ctx, "postgres.ProgressRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(progress).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create room progress: %w", err)
	}
	return nil
}

// GetByRoom 获取房间进度
func (r *ProgressRepository) GetByRoom(ctx context.Context, roomID int64) (*entity.RoomProgress, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProgressRepository.GetByRoom")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var progress entity.RoomProgress
	if err := db.First(&progress, "room_id = ?", roomID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get room progress: %w", err)
	}
	return &progress, nil
}

// Update 整体更新进度记录
func (r *ProgressRepository) Update(ctx context.Context, progress *entity.RoomProgress) error {
	ctx, span := tracer.Start(ctx, "postgres.ProgressRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(progress).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update room progress: %w", err)
	}
	return nil
}

// DeleteByRoom 删除房间进度
func (r *ProgressRepository) DeleteByRoom(ctx context.Context, roomID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.ProgressRepository.DeleteByRoom")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.RoomProgress{}, "room_id = ?", roomID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete room progress: %w", err)
	}
	return nil
}

// TopKarmaByCampaign 按业力排序获取剧本内房间排行
func (r *ProgressRepository) TopKarmaByCampaign(ctx context.Context, campaignID int64, limit int) ([]*entity.RoomProgress, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProgressRepository.TopKarmaByCampaign")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var rows []*entity.RoomProgress
	if err := db.Where("campaign_id = ?", campaignID).
		Order("karma DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get karma ranking: %w", err)
	}
	return rows, nil
}
