package engine

import (
	"context"

	"story-engine-api/internal/application/analyzer"
	"story-engine-api/internal/application/contextbuilder"
	"story-engine-api/internal/application/marker"
	"story-engine-api/internal/domain/entity"
	"story-engine-api/internal/domain/repository"
	redisstore "story-engine-api/internal/infrastructure/persistence/redis"
	"story-engine-api/pkg/errors"
)

// NoopEngine 未启用剧本功能时的空实现。
// 回合处理仍剥离标记语法，保证玩家可见文本始终干净；
// 其余操作表现为空目录或未初始化。
type NoopEngine struct{}

var _ NarrativeEngine = (*NoopEngine)(nil)

// NewNoopEngine 创建空实现
func NewNoopEngine() *NoopEngine {
	return &NoopEngine{}
}

func (*NoopEngine) Initialize(ctx context.Context, roomID int64, campaignCode string) (*InitResult, error) {
	return nil, errors.ErrUnknownCampaign
}

func (*NoopEngine) GetState(ctx context.Context, roomID int64) (*StateView, error) {
	return nil, errors.ErrNotInitialized
}

func (*NoopEngine) BuildContext(ctx context.Context, roomID int64) (*contextbuilder.PromptContext, error) {
	return nil, errors.ErrNotInitialized
}

func (*NoopEngine) PendingDecision(ctx context.Context, roomID int64) (*PendingDecisionView, error) {
	return nil, errors.ErrNoPendingDecision
}

func (*NoopEngine) SubmitDecision(ctx context.Context, roomID int64, decisionCode, optionID string) (*DecisionResult, error) {
	return nil, errors.ErrUnknownDecision
}

// ProcessTurn 不应用任何效果，只返回剥离标记后的文本
func (*NoopEngine) ProcessTurn(ctx context.Context, roomID int64, narration string) (*TurnResult, error) {
	parsed := marker.Parse(narration)
	return &TurnResult{CleanText: parsed.CleanText}, nil
}

func (*NoopEngine) Analyze(ctx context.Context, roomID int64, message, character string) (*analyzer.Analysis, error) {
	return nil, errors.ErrNotInitialized
}

func (*NoopEngine) CalculateEndings(ctx context.Context, roomID int64) (map[string]int, error) {
	return nil, errors.ErrNotInitialized
}

func (*NoopEngine) Leaderboard(ctx context.Context, campaignCode string, limit int) ([]redisstore.LeaderboardEntry, error) {
	return []redisstore.LeaderboardEntry{}, nil
}

func (*NoopEngine) ListCampaigns(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Campaign], error) {
	return repository.NewPagedResult([]*entity.Campaign{}, 0, pagination), nil
}

func (*NoopEngine) GetCampaign(ctx context.Context, code string) (*entity.Campaign, error) {
	return nil, errors.ErrUnknownCampaign
}

func (*NoopEngine) Cleanup(ctx context.Context, roomID int64) error {
	return nil
}

func (*NoopEngine) Close() {}
