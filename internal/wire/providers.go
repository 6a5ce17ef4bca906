// Package wire 提供依赖注入配置
package wire

import (
	"story-engine-api/internal/application/engine"
	"story-engine-api/internal/config"
	"story-engine-api/internal/infrastructure/messaging"
	"story-engine-api/internal/infrastructure/persistence/postgres"
	"story-engine-api/internal/infrastructure/persistence/redis"
	"story-engine-api/internal/interfaces/http/router"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	// PostgreSQL
	PgClient         *postgres.Client
	TxManager        *postgres.TxManager
	CampaignRepo     *postgres.CampaignRepository
	SceneRepo        *postgres.SceneRepository
	DecisionRepo     *postgres.DecisionRepository
	NPCRepo          *postgres.NPCRepository
	ClueRepo         *postgres.ClueRepository
	EndingRepo       *postgres.EndingRepository
	ProgressRepo     *postgres.ProgressRepository
	RelationshipRepo *postgres.RelationshipRepository
	EventRepo        *postgres.EventRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	StateStore  *redis.StateStore
	RateLimiter *redis.RateLimiter

	// Messaging
	Producer *messaging.Producer
}

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient         *postgres.Client
	TxManager        *postgres.TxManager
	CampaignRepo     *postgres.CampaignRepository
	SceneRepo        *postgres.SceneRepository
	DecisionRepo     *postgres.DecisionRepository
	NPCRepo          *postgres.NPCRepository
	ClueRepo         *postgres.ClueRepository
	EndingRepo       *postgres.EndingRepository
	ProgressRepo     *postgres.ProgressRepository
	RelationshipRepo *postgres.RelationshipRepository
	EventRepo        *postgres.EventRepository
}

// App 完整应用容器
type App struct {
	Router *router.Router
	Engine engine.NarrativeEngine
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideStateStore 提供房间状态存储
func ProvideStateStore(client *redis.Client, cfg *config.Config) *redis.StateStore {
	return redis.NewStateStore(
		client,
		cfg.Engine.StateTTL,
		cfg.Engine.AIContextTTL,
		cfg.Engine.NPCMemoryTTL,
		cfg.Engine.MaxNPCInteractions,
	)
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideEngine 提供叙事引擎，作为能力接口暴露
func ProvideEngine(deps engine.Deps, cfg *config.Config) (engine.NarrativeEngine, func()) {
	eng := engine.NewEngine(deps, cfg.Engine)
	cleanup := func() {
		eng.Close()
	}
	return eng, cleanup
}
