// Package main 剧情事件落库执行器入口（event-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"story-engine-api/internal/config"
	"story-engine-api/internal/domain/entity"
	"story-engine-api/internal/infrastructure/messaging"
	"story-engine-api/internal/infrastructure/persistence/postgres"
	"story-engine-api/internal/infrastructure/persistence/redis"
	"story-engine-api/pkg/logger"
	"story-engine-api/pkg/metrics"
	"story-engine-api/pkg/tracer"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
)

// 事件流上出现的全部事件类型，每种都落库
var eventTypes = []entity.StoryEventType{
	entity.EventKarmaChanged,
	entity.EventNPCReaction,
	entity.EventClueRevealed,
	entity.EventDecisionResolved,
	entity.EventDecisionActivated,
	entity.EventBetrayalTriggered,
	entity.EventRedemptionTriggered,
	entity.EventSecretRevealed,
	entity.EventSceneAdvanced,
	entity.EventSideStoryCompleted,
	entity.EventProgressInitialized,
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "event-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	eventRepo := postgres.NewEventRepository(pgClient)

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamStoryEvents,
		Group:        messaging.ConsumerGroupEventWriter,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	persist := func(handlerCtx context.Context, msg *messaging.Message) error {
		var event messaging.StoryEventMessage
		if err := msg.UnmarshalPayload(&event); err != nil {
			metrics.RedisStreamProcessed.WithLabelValues(string(messaging.StreamStoryEvents), "failed").Inc()
			return err
		}

		record := &entity.StoryEvent{
			RoomID:     event.RoomID,
			CampaignID: event.CampaignID,
			Type:       entity.StoryEventType(event.EventType),
			Payload:    event.Payload,
		}
		if err := eventRepo.Create(handlerCtx, record); err != nil {
			metrics.RedisStreamProcessed.WithLabelValues(string(messaging.StreamStoryEvents), "failed").Inc()
			return err
		}
		metrics.RedisStreamProcessed.WithLabelValues(string(messaging.StreamStoryEvents), "ok").Inc()
		return nil
	}

	for _, t := range eventTypes {
		consumer.RegisterHandler(string(t), persist)
	}

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	go monitorLag(ctx, redisClient.Redis())
	go consumer.MonitorDLQ(ctx, 100)

	log := logger.FromContext(ctx)
	log.Info("event-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("event-worker shutting down")
	consumer.Stop()
}

// monitorLag 定期上报消费组积压量
func monitorLag(ctx context.Context, client *goredis.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := client.XPending(ctx,
				string(messaging.StreamStoryEvents),
				string(messaging.ConsumerGroupEventWriter),
			).Result()
			if err != nil {
				continue
			}
			metrics.RedisStreamLag.WithLabelValues(
				string(messaging.StreamStoryEvents),
				string(messaging.ConsumerGroupEventWriter),
			).Set(float64(pending.Count))
		}
	}
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
