package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"story-engine-api/internal/domain/entity"
)

// SceneRepository 场景仓储实现
type SceneRepository struct {
	client *Client
}

// NewSceneRepository 创建场景仓储
func NewSceneRepository(client *Client) *SceneRepository {
	return &SceneRepository{client: client}
}

// GetByID 根据 ID 获取场景
func (r *SceneRepository) GetByID(ctx context.Context, id int64) (*entity.Scene, error) {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var scene entity.Scene
	if err := db.First(&scene, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}
	return &scene, nil
}

// GetByPosition 根据剧本位置获取场景
func (r *SceneRepository) GetByPosition(ctx context.Context, campaignID int64, act, chapter, scene int) (*entity.Scene, error) {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.GetByPosition")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var result entity.Scene
	err := db.Model(&entity.Scene{}).
		Joins("JOIN story_chapters ON story_chapters.id = story_scenes.chapter_id").
		Joins("JOIN story_acts ON story_acts.id = story_chapters.act_id").
		Where("story_acts.campaign_id = ? AND story_acts.number = ? AND story_chapters.number = ? AND story_scenes.scene_order = ?",
			campaignID, act, chapter, scene).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get scene by position: %w", err)
	}
	return &result, nil
}

// GetFirstScene 获取剧本首个场景（第一幕第一章场次最小者）
func (r *SceneRepository) GetFirstScene(ctx context.Context, campaignID int64) (*entity.Scene, error) {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.GetFirstScene")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var result entity.Scene
	err := db.Model(&entity.Scene{}).
		Joins("JOIN story_chapters ON story_chapters.id = story_scenes.chapter_id").
		Joins("JOIN story_acts ON story_acts.id = story_chapters.act_id").
		Where("story_acts.campaign_id = ?", campaignID).
		Order("story_acts.number ASC, story_chapters.number ASC, story_scenes.scene_order ASC").
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get first scene: %w", err)
	}
	return &result, nil
}

// ListByChapter 获取章节场景列表
func (r *SceneRepository) ListByChapter(ctx context.Context, chapterID int64) ([]*entity.Scene, error) {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.ListByChapter")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var scenes []*entity.Scene
	if err := db.Where("chapter_id = ?", chapterID).
		Order("scene_order ASC").
		Find(&scenes).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	return scenes, nil
}
