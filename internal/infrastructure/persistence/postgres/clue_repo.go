package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"story-engine-api/internal/domain/entity"
)

// ClueRepository 线索仓储实现
type ClueRepository struct {
	client *Client
}

// NewClueRepository 创建线索仓储
func NewClueRepository(client *Client) *ClueRepository {
	return &ClueRepository{client: client}
}

// GetByCode 根据代码获取线索
func (r *ClueRepository) GetByCode(ctx context.Context, campaignID int64, code string) (*entity.Clue, error) {
	ctx, span := tracer.Start(ctx, "postgres.ClueRepository.GetByCode")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var clue entity.Clue
	if err := db.First(&clue, "campaign_id = ? AND code = ?", campaignID, code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get clue: %w", err)
	}
	return &clue, nil
}

// ListByCampaign 获取剧本的全部线索
func (r *ClueRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]*entity.Clue, error) {
	ctx, span := tracer.Start(ctx, "postgres.ClueRepository.ListByCampaign")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var clues []*entity.Clue
	if err := db.Where("campaign_id = ?", campaignID).
		Order("id ASC").
		Find(&clues).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list clues: %w", err)
	}
	return clues, nil
}

// EndingRepository 结局仓储实现
type EndingRepository struct {
	client *Client
}

// NewEndingRepository 创建结局仓储
func NewEndingRepository(client *Client) *EndingRepository {
	return &EndingRepository{client: client}
}

// ListByCampaign 获取剧本的全部结局
func (r *EndingRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]*entity.Ending, error) {
	ctx, span := tracer.Start(ctx, "postgres.EndingRepository.ListByCampaign")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var endings []*entity.Ending
	if err := db.Where("campaign_id = ?", campaignID).
		Order("id ASC").
		Find(&endings).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list endings: %w", err)
	}
	return endings, nil
}
