package repository

import (
	"context"

	"story-engine-api/internal/domain/entity"
)

// SceneRepository 场景仓储接口
type SceneRepository interface {
	// GetByID 根据 ID 获取场景
	GetByID(ctx context.Context, id int64) (*entity.Scene, error)

	// GetByPosition 根据剧本位置（幕号/章号/场次）获取场景
	GetByPosition(ctx context.Context, campaignID int64, act, chapter, scene int) (*entity.Scene, error)

	// GetFirstScene 获取剧本第一幕第一章的首个场景
	GetFirstScene(ctx context.Context, campaignID int64) (*entity.Scene, error)

	// ListByChapter 获取章节场景列表（按场次排序）
	ListByChapter(ctx context.Context, chapterID int64) ([]*entity.Scene, error)
}

// DecisionRepository 决策仓储接口
type DecisionRepository interface {
	// GetByCode 根据代码获取决策
	GetByCode(ctx context.Context, code string) (*entity.Decision, error)

	// ListByScene 获取场景的决策列表
	ListByScene(ctx context.Context, sceneID int64) ([]*entity.Decision, error)

	// ListHiddenByCampaign 获取剧本的全部隐式决策
	ListHiddenByCampaign(ctx context.Context, campaignID int64) ([]*entity.Decision, error)
}
