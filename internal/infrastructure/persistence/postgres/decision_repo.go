package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"story-engine-api/internal/domain/entity"
)

// DecisionRepository 决策仓储实现
type DecisionRepository struct {
	client *Client
}

// NewDecisionRepository 创建决策仓储
func NewDecisionRepository(client *Client) *DecisionRepository {
	return &DecisionRepository{client: client}
}

// GetByCode 根据代码获取决策
func (r *DecisionRepository) GetByCode(ctx context.Context, code string) (*entity.Decision, error) {
	ctx, span := tracer.Start(ctx, "postgres.DecisionRepository.GetByCode")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var decision entity.Decision
	if err := db.First(&decision, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}
	return &decision, nil
}

// ListByScene 获取场景的决策列表
func (r *DecisionRepository) ListByScene(ctx context.Context, sceneID int64) ([]*entity.Decision, error) {
	ctx, span := tracer.Start(ctx, "postgres.DecisionRepository.ListByScene")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var decisions []*entity.Decision
	if err := db.Where("scene_id = ?", sceneID).
		Order("id ASC").
		Find(&decisions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return decisions, nil
}

// ListHiddenByCampaign 获取剧本的全部隐式决策
func (r *DecisionRepository) ListHiddenByCampaign(ctx context.Context, campaignID int64) ([]*entity.Decision, error) {
	ctx, span := tracer.Start(ctx, "postgres.DecisionRepository.ListHiddenByCampaign")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var decisions []*entity.Decision
	err := db.Model(&entity.Decision{}).
		Joins("JOIN story_scenes ON story_scenes.id = story_decisions.scene_id").
		Joins("JOIN story_chapters ON story_chapters.id = story_scenes.chapter_id").
		Joins("JOIN story_acts ON story_acts.id = story_chapters.act_id").
		Where("story_acts.campaign_id = ? AND story_decisions.is_hidden = ?", campaignID, true).
		Order("story_decisions.id ASC").
		Find(&decisions).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list hidden decisions: %w", err)
	}
	return decisions, nil
}
