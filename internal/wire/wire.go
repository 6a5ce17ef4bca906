//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"story-engine-api/internal/application/engine"
	"story-engine-api/internal/config"
	"story-engine-api/internal/domain/repository"
	"story-engine-api/internal/infrastructure/persistence/postgres"
	"story-engine-api/internal/infrastructure/persistence/redis"
	"story-engine-api/internal/interfaces/http/handler"
	"story-engine-api/internal/interfaces/http/middleware"
	"story-engine-api/internal/interfaces/http/router"
)

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		EngineSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewCampaignRepository,
	postgres.NewSceneRepository,
	postgres.NewDecisionRepository,
	postgres.NewNPCRepository,
	postgres.NewClueRepository,
	postgres.NewEndingRepository,
	postgres.NewProgressRepository,
	postgres.NewRelationshipRepository,
	postgres.NewEventRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	ProvideStateStore,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// EngineSet 叙事引擎提供者集合
var EngineSet = wire.NewSet(
	wire.Struct(new(engine.Deps), "*"),
	ProvideEngine,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewStoryHandler,
	handler.NewCampaignHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	// 接口绑定
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.CampaignRepository), new(*postgres.CampaignRepository)),
	wire.Bind(new(repository.SceneRepository), new(*postgres.SceneRepository)),
	wire.Bind(new(repository.DecisionRepository), new(*postgres.DecisionRepository)),
	wire.Bind(new(repository.NPCRepository), new(*postgres.NPCRepository)),
	wire.Bind(new(repository.ClueRepository), new(*postgres.ClueRepository)),
	wire.Bind(new(repository.EndingRepository), new(*postgres.EndingRepository)),
	wire.Bind(new(repository.ProgressRepository), new(*postgres.ProgressRepository)),
	wire.Bind(new(repository.RelationshipRepository), new(*postgres.RelationshipRepository)),
	wire.Bind(new(repository.EventRepository), new(*postgres.EventRepository)),
)

