package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"story-engine-api/internal/domain/entity"
)

// RelationshipRepository 房间 NPC 关系仓储实现
type RelationshipRepository struct {
	client *Client
}

// NewRelationshipRepository 创建关系仓储
func NewRelationshipRepository(client *Client) *RelationshipRepository {
	return &RelationshipRepository{client: client}
}

// Upsert 创建或更新关系记录（room_id + npc_id 冲突时覆盖可变列）
func (r *RelationshipRepository) Upsert(ctx context.Context, rel *entity.NPCRelationship) error {
	ctx, span := tracer.Start(ctx, "postgres.RelationshipRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_id"}, {Name: "npc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"relationship_score", "trust_level", "emotional_state",
			"known_secrets", "interactions_count",
			"betrayal_triggered", "redemption_triggered", "updated_at",
		}),
	}).Create(rel).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert npc relationship: %w", err)
	}
	return nil
}

// GetByRoomAndNPC 获取单个关系
func (r *RelationshipRepository) GetByRoomAndNPC(ctx context.Context, roomID, npcID int64) (*entity.NPCRelationship, error) {
	ctx, span := tracer.Start(ctx, "postgres.RelationshipRepository.GetByRoomAndNPC")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var rel entity.NPCRelationship
	if err := db.First(&rel, "room_id = ? AND npc_id = ?", roomID, npcID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get npc relationship: %w", err)
	}
	return &rel, nil
}

// ListByRoom 获取房间的全部关系
func (r *RelationshipRepository) ListByRoom(ctx context.Context, roomID int64) ([]*entity.NPCRelationship, error) {
	ctx, span := tracer.Start(ctx, "postgres.RelationshipRepository.ListByRoom")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var rels []*entity.NPCRelationship
	if err := db.Where("room_id = ?", roomID).
		Order("npc_id ASC").
		Find(&rels).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list npc relationships: %w", err)
	}
	return rels, nil
}

// DeleteByRoom 删除房间的全部关系
func (r *RelationshipRepository) DeleteByRoom(ctx context.Context, roomID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.RelationshipRepository.DeleteByRoom")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.NPCRelationship{}, "room_id = ?", roomID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete npc relationships: %w", err)
	}
	return nil
}
