package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"story-engine-api/internal/config"
	"story-engine-api/internal/domain/entity"
	"story-engine-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 迁移表结构
	fmt.Println("Running schema migration...")
	db := dataLayer.PgClient.DB()
	if err := db.AutoMigrate(
		&entity.Campaign{},
		&entity.Act{},
		&entity.Chapter{},
		&entity.Scene{},
		&entity.Decision{},
		&entity.NPC{},
		&entity.Clue{},
		&entity.Ending{},
		&entity.RoomProgress{},
		&entity.NPCRelationship{},
		&entity.StoryEvent{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 种子剧本（已存在则跳过）
	demoCode := "iron_crown"
	existing, err := dataLayer.CampaignRepo.GetByCode(ctx, demoCode)
	if err != nil {
		log.Fatalf("failed to check campaign existence: %v", err)
	}
	if existing != nil {
		fmt.Printf("Demo campaign %q already exists with ID %d.\n", demoCode, existing.ID)
		fmt.Println("Bootstrap completed successfully.")
		return
	}

	fmt.Printf("Seeding demo campaign %q...\n", demoCode)
	if err := seedDemoCampaign(db); err != nil {
		log.Fatalf("failed to seed demo campaign: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
