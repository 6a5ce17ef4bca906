package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"story-engine-api/internal/domain/entity"
)

// NPCRepository 角色模板仓储实现
type NPCRepository struct {
	client *Client
}

// NewNPCRepository 创建角色仓储
func NewNPCRepository(client *Client) *NPCRepository {
	return &NPCRepository{client: client}
}

// GetByCode 根据剧本与代码获取 NPC
func (r *NPCRepository) GetByCode(ctx context.Context, campaignID int64, code string) (*entity.NPC, error) {
	ctx, span := tracer.Start(ctx, "postgres.NPCRepository.GetByCode")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var npc entity.NPC
	if err := db.First(&npc, "campaign_id = ? AND code = ?", campaignID, code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get npc: %w", err)
	}
	return &npc, nil
}

// ListByCampaign 获取剧本的全部 NPC
func (r *NPCRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]*entity.NPC, error) {
	ctx, span := tracer.Start(ctx, "postgres.NPCRepository.ListByCampaign")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var npcs []*entity.NPC
	if err := db.Where("campaign_id = ?", campaignID).
		Order("id ASC").
		Find(&npcs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list npcs: %w", err)
	}
	return npcs, nil
}

// ListByCodes 批量获取 NPC
func (r *NPCRepository) ListByCodes(ctx context.Context, campaignID int64, codes []string) ([]*entity.NPC, error) {
	ctx, span := tracer.Start(ctx, "postgres.NPCRepository.ListByCodes")
	defer span.End()

	if len(codes) == 0 {
		return nil, nil
	}

	db := getDB(ctx, r.client.db)
	var npcs []*entity.NPC
	if err := db.Where("campaign_id = ? AND code IN ?", campaignID, codes).
		Order("id ASC").
		Find(&npcs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list npcs by codes: %w", err)
	}
	return npcs, nil
}
