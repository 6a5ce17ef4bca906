package repository

import (
	"context"

	"story-engine-api/internal/domain/entity"
)

// NPCRepository 角色模板仓储接口
type NPCRepository interface {
	// GetByCode 根据剧本与代码获取 NPC
	GetByCode(ctx context.Context, campaignID int64, code string) (*entity.NPC, error)

	// ListByCampaign 获取剧本的全部 NPC
	ListByCampaign(ctx context.Context, campaignID int64) ([]*entity.NPC, error)

	// ListByCodes 批量获取 NPC
	ListByCodes(ctx context.Context, campaignID int64, codes []string) ([]*entity.NPC, error)
}

// ClueRepository 线索仓储接口
type ClueRepository interface {
	// GetByCode 根据代码获取线索
	GetByCode(ctx context.Context, campaignID int64, code string) (*entity.Clue, error)

	// ListByCampaign 获取剧本的全部线索
	ListByCampaign(ctx context.Context, campaignID int64) ([]*entity.Clue, error)
}

// EndingRepository 结局仓储接口
type EndingRepository interface {
	// ListByCampaign 获取剧本的全部结局
	ListByCampaign(ctx context.Context, campaignID int64) ([]*entity.Ending, error)
}
