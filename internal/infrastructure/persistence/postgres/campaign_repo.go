// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"story-engine-api/internal/domain/entity"
	"story-engine-api/internal/domain/repository"
)

// CampaignRepository 剧本目录仓储实现
type CampaignRepository struct {
	client *Client
}

// NewCampaignRepository 创建剧本仓储
func NewCampaignRepository(client *Client) *CampaignRepository {
	return &CampaignRepository{client: client}
}

// GetByID 根据 ID 获取剧本
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*entity.Campaign, error) {
	ctx, span := tracer.Start(ctx, "postgres.CampaignRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var campaign entity.Campaign
	if err := db.First(&campaign, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &campaign, nil
}

// GetByCode 根据代码获取剧本
func (r *CampaignRepository) GetByCode(ctx context.Context, code string) (*entity.Campaign, error) {
	ctx, span := tracer.Start(ctx, "postgres.CampaignRepository.GetByCode")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var campaign entity.Campaign
	if err := db.First(&campaign, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get campaign by code: %w", err)
	}
	return &campaign, nil
}

// List 获取启用的剧本列表
func (r *CampaignRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Campaign], error) {
	ctx, span := tracer.Start(ctx, "postgres.CampaignRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Campaign{}).Where("is_active = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count campaigns: %w", err)
	}

	var campaigns []*entity.Campaign
	if err := query.Order("id ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&campaigns).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	return repository.NewPagedResult(campaigns, total, pagination), nil
}

// ListActs 获取剧本的幕列表
func (r *CampaignRepository) ListActs(ctx context.Context, campaignID int64) ([]*entity.Act, error) {
	ctx, span := tracer.Start(ctx, "postgres.CampaignRepository.ListActs")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var acts []*entity.Act
	if err := db.Where("campaign_id = ?", campaignID).
		Order("number ASC").
		Find(&acts).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list acts: %w", err)
	}
	return acts, nil
}

// ListChapters 获取幕的章节列表
func (r *CampaignRepository) ListChapters(ctx context.Context, actID int64) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.CampaignRepository.ListChapters")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var chapters []*entity.Chapter
	if err := db.Where("act_id = ?", actID).
		Order("number ASC").
		Find(&chapters).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}
