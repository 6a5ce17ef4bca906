// Package redis 提供剧情运行态的 Redis 存取
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// 键生成器
func storyStateKey(roomID int64) string {
	return fmt.Sprintf("story:room:%d:state", roomID)
}

func npcMemoryKey(roomID int64, npcCode string) string {
	return fmt.Sprintf("story:room:%d:npc:%s", roomID, npcCode)
}

func aiContextKey(roomID int64) string {
	return fmt.Sprintf("story:room:%d:ai_context", roomID)
}

func karmaLeaderboardKey(campaignID int64) string {
	return fmt.Sprintf("story:campaign:%d:karma_leaderboard", campaignID)
}

func foreshadowKey(roomID int64) string {
	return fmt.Sprintf("story:room:%d:foreshadow", roomID)
}

// NPCInteraction NPC 记忆中的单次交互
type NPCInteraction struct {
	Timestamp  time.Time `json:"timestamp"`
	ActionType string    `json:"action_type"`
	Details    string    `json:"details"`
}

// NPCMemory 房间内单个 NPC 的近期交互记忆
type NPCMemory struct {
	Interactions []NPCInteraction `json:"interactions"`
	LastUpdated  time.Time        `json:"last_updated"`
}

// StateStore 剧情状态缓存，封装状态/记忆/上下文/排行的键布局与 TTL
type StateStore struct {
	client *Client

	stateTTL     time.Duration
	aiContextTTL time.Duration
	npcMemoryTTL time.Duration

	maxInteractions int
}

// NewStateStore 创建剧情状态缓存
func NewStateStore(client *Client, stateTTL, aiContextTTL, npcMemoryTTL time.Duration, maxInteractions int) *StateStore {
	if maxInteractions <= 0 {
		maxInteractions = 20
	}
	return &StateStore{
		client:          client,
		stateTTL:        stateTTL,
		aiContextTTL:    aiContextTTL,
		npcMemoryTTL:    npcMemoryTTL,
		maxInteractions: maxInteractions,
	}
}

// GetState 读取缓存的房间状态快照，未命中时 ok 为 false
func (s *StateStore) GetState(ctx context.Context, roomID int64, out any) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.StateStore.GetState",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	data, err := s.client.rdb.Get(ctx, storyStateKey(roomID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		span.RecordError(err)
		return false, err
	}
	return true, nil
}

// SetState 写入房间状态快照
func (s *StateStore) SetState(ctx context.Context, roomID int64, state any) error {
	ctx, span := tracer.Start(ctx, "redis.StateStore.SetState",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return s.client.rdb.Set(ctx, storyStateKey(roomID), data, s.stateTTL).Err()
}

// GetAIContext 读取缓存的模型上下文，未命中时 ok 为 false
func (s *StateStore) GetAIContext(ctx context.Context, roomID int64, out any) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.StateStore.GetAIContext",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	data, err := s.client.rdb.Get(ctx, aiContextKey(roomID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		span.RecordError(err)
		return false, err
	}
	return true, nil
}

// SetAIContext 缓存模型上下文（短 TTL）
func (s *StateStore) SetAIContext(ctx context.Context, roomID int64, pc any) error {
	ctx, span := tracer.Start(ctx, "redis.StateStore.SetAIContext",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	data, err := json.Marshal(pc)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	return s.client.rdb.Set(ctx, aiContextKey(roomID), data, s.aiContextTTL).Err()
}

// InvalidateAIContext 使模型上下文缓存失效，每个变更回合后调用
func (s *StateStore) InvalidateAIContext(ctx context.Context, roomID int64) error {
	return s.client.rdb.Del(ctx, aiContextKey(roomID)).Err()
}

// InvalidateState 使房间状态快照失效
func (s *StateStore) InvalidateState(ctx context.Context, roomID int64) error {
	return s.client.rdb.Del(ctx, storyStateKey(roomID)).Err()
}

// GetNPCMemory 读取 NPC 交互记忆，不存在时返回空记忆
func (s *StateStore) GetNPCMemory(ctx context.Context, roomID int64, npcCode string) (*NPCMemory, error) {
	ctx, span := tracer.Start(ctx, "redis.StateStore.GetNPCMemory",
		trace.WithAttributes(
			attribute.Int64("room.id", roomID),
			attribute.String("npc.code", npcCode),
		))
	defer span.End()

	data, err := s.client.rdb.Get(ctx, npcMemoryKey(roomID, npcCode)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return &NPCMemory{}, nil
		}
		span.RecordError(err)
		return nil, err
	}

	var memory NPCMemory
	if err := json.Unmarshal(data, &memory); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &memory, nil
}

// AddNPCInteraction 追加一次交互，只保留最近 maxInteractions 条
func (s *StateStore) AddNPCInteraction(ctx context.Context, roomID int64, npcCode, actionType, details string) error {
	ctx, span := tracer.Start(ctx, "redis.StateStore.AddNPCInteraction",
		trace.WithAttributes(
			attribute.Int64("room.id", roomID),
			attribute.String("npc.code", npcCode),
		))
	defer span.End()

	memory, err := s.GetNPCMemory(ctx, roomID, npcCode)
	if err != nil {
		return err
	}

	memory.Interactions = append(memory.Interactions, NPCInteraction{
		Timestamp:  time.Now().UTC(),
		ActionType: actionType,
		Details:    details,
	})
	if len(memory.Interactions) > s.maxInteractions {
		memory.Interactions = memory.Interactions[len(memory.Interactions)-s.maxInteractions:]
	}
	memory.LastUpdated = time.Now().UTC()

	data, err := json.Marshal(memory)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal npc memory: %w", err)
	}
	return s.client.rdb.Set(ctx, npcMemoryKey(roomID, npcCode), data, s.npcMemoryTTL).Err()
}

// IncrForeshadow 累加某条伏笔的铺垫次数
func (s *StateStore) IncrForeshadow(ctx context.Context, roomID int64, twistCode string) error {
	ctx, span := tracer.Start(ctx, "redis.StateStore.IncrForeshadow",
		trace.WithAttributes(
			attribute.Int64("room.id", roomID),
			attribute.String("twist.code", twistCode),
		))
	defer span.End()

	key := foreshadowKey(roomID)
	if err := s.client.rdb.HIncrBy(ctx, key, twistCode, 1).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return s.client.rdb.Expire(ctx, key, s.stateTTL).Err()
}

// ForeshadowCounts 读取房间内各伏笔已铺垫的次数
func (s *StateStore) ForeshadowCounts(ctx context.Context, roomID int64) (map[string]int, error) {
	ctx, span := tracer.Start(ctx, "redis.StateStore.ForeshadowCounts",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	fields, err := s.client.rdb.HGetAll(ctx, foreshadowKey(roomID)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	counts := make(map[string]int, len(fields))
	for code, raw := range fields {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		counts[code] = n
	}
	return counts, nil
}

// UpdateKarmaLeaderboard 更新剧本业力排行
func (s *StateStore) UpdateKarmaLeaderboard(ctx context.Context, campaignID, roomID int64, karma int) error {
	ctx, span := tracer.Start(ctx, "redis.StateStore.UpdateKarmaLeaderboard",
		trace.WithAttributes(attribute.Int64("campaign.id", campaignID)))
	defer span.End()

	return s.client.rdb.ZAdd(ctx, karmaLeaderboardKey(campaignID), redis.Z{
		Score:  float64(karma),
		Member: fmt.Sprintf("%d", roomID),
	}).Err()
}

// LeaderboardEntry 排行条目
type LeaderboardEntry struct {
	RoomID int64 `json:"room_id"`
	Karma  int   `json:"karma"`
}

// TopKarma 读取剧本业力排行前 limit 名
func (s *StateStore) TopKarma(ctx context.Context, campaignID int64, limit int) ([]LeaderboardEntry, error) {
	ctx, span := tracer.Start(ctx, "redis.StateStore.TopKarma",
		trace.WithAttributes(attribute.Int64("campaign.id", campaignID)))
	defer span.End()

	results, err := s.client.rdb.ZRevRangeWithScores(ctx, karmaLeaderboardKey(campaignID), 0, int64(limit-1)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for _, z := range results {
		var roomID int64
		if _, err := fmt.Sscanf(z.Member.(string), "%d", &roomID); err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{RoomID: roomID, Karma: int(z.Score)})
	}
	return entries, nil
}

// CleanupRoom 删除房间全部缓存键（状态/上下文/NPC 记忆/伏笔计数）
func (s *StateStore) CleanupRoom(ctx context.Context, roomID int64) error {
	ctx, span := tracer.Start(ctx, "redis.StateStore.CleanupRoom",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	iter := s.client.rdb.Scan(ctx, 0, fmt.Sprintf("story:room:%d:*", roomID), 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return err
	}
	if len(keys) > 0 {
		return s.client.rdb.Del(ctx, keys...).Err()
	}
	return nil
}
