// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"story-engine-api/internal/domain/entity"
)

// CampaignRepository 剧本目录仓储接口（运行时只读）
type CampaignRepository interface {
	// GetByID 根据 ID 获取剧本
	GetByID(ctx context.Context, id int64) (*entity.Campaign, error)

	// GetByCode 根据代码获取剧本
	GetByCode(ctx context.Context, code string) (*entity.Campaign, error)

	// List 获取启用的剧本列表
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Campaign], error)

	// ListActs 获取剧本的幕列表（按序号排序）
	ListActs(ctx context.Context, campaignID int64) ([]*entity.Act, error)

	// ListChapters 获取幕的章节列表（按序号排序）
	ListChapters(ctx context.Context, actID int64) ([]*entity.Chapter, error)
}
