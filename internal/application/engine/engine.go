// Package engine 编排叙事回合：标记应用、决策解析、场景推进与缓存维护。
// 同一房间的写路径由房间锁串行化，读路径不取锁。
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"story-engine-api/internal/application/analyzer"
	"story-engine-api/internal/application/contextbuilder"
	"story-engine-api/internal/application/decision"
	"story-engine-api/internal/application/ending"
	"story-engine-api/internal/application/marker"
	"story-engine-api/internal/application/npcbrain"
	"story-engine-api/internal/application/twist"
	"story-engine-api/internal/config"
	"story-engine-api/internal/domain/entity"
	"story-engine-api/internal/domain/repository"
	"story-engine-api/internal/infrastructure/messaging"
	redisstore "story-engine-api/internal/infrastructure/persistence/redis"
	"story-engine-api/pkg/errors"
	"story-engine-api/pkg/logger"
	"story-engine-api/pkg/metrics"
)

var tracer = otel.Tracer("engine")

// campaignCacheTTL 剧本目录缓存时长
const campaignCacheTTL = 5 * time.Minute

// InitResult 初始化结果
type InitResult struct {
	Progress           *entity.RoomProgress `json:"progress"`
	Campaign           *entity.Campaign     `json:"campaign"`
	OpeningNarration   string               `json:"opening_narration,omitempty"`
	AlreadyInitialized bool                 `json:"already_initialized"`
}

// StateView 房间状态视图，整体进出状态缓存
type StateView struct {
	Progress      *entity.RoomProgress      `json:"progress"`
	Relationships []*entity.NPCRelationship `json:"relationships"`
}

// OptionView 决策选项的玩家可见部分
type OptionView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// PendingDecisionView 待决策视图，不暴露选项后果
type PendingDecisionView struct {
	Code        string       `json:"code"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	TurnsLeft   int          `json:"turns_left"`
	Options     []OptionView `json:"options"`
}

// DecisionResult 决策解析结果
type DecisionResult struct {
	Outcome         *decision.Outcome `json:"outcome"`
	Karma           int               `json:"karma"`
	SceneAdvanced   bool              `json:"scene_advanced"`
	AlreadyResolved bool              `json:"already_resolved"`
}

// TurnResult 回合处理结果，CleanText 不再含任何标记语法
type TurnResult struct {
	CleanText         string           `json:"clean_text"`
	AppliedMarkers    []marker.Effect  `json:"applied_markers,omitempty"`
	DroppedMarkers    []marker.Dropped `json:"dropped_markers,omitempty"`
	KarmaChange       int              `json:"karma_change"`
	Karma             int              `json:"karma"`
	ResolvedDecisions []string         `json:"resolved_decisions,omitempty"`
	SceneAdvanced     bool             `json:"scene_advanced"`
	PendingDecision   string           `json:"pending_decision,omitempty"`
}

// NarrativeEngine 叙事引擎能力接口。
// 完整实现由 Engine 提供；未启用剧本功能的部署使用 NoopEngine。
type NarrativeEngine interface {
	Initialize(ctx context.Context, roomID int64, campaignCode string) (*InitResult, error)
	GetState(ctx context.Context, roomID int64) (*StateView, error)
	BuildContext(ctx context.Context, roomID int64) (*contextbuilder.PromptContext, error)
	PendingDecision(ctx context.Context, roomID int64) (*PendingDecisionView, error)
	SubmitDecision(ctx context.Context, roomID int64, decisionCode, optionID string) (*DecisionResult, error)
	ProcessTurn(ctx context.Context, roomID int64, narration string) (*TurnResult, error)
	Analyze(ctx context.Context, roomID int64, message, character string) (*analyzer.Analysis, error)
	CalculateEndings(ctx context.Context, roomID int64) (map[string]int, error)
	Leaderboard(ctx context.Context, campaignCode string, limit int) ([]redisstore.LeaderboardEntry, error)
	ListCampaigns(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Campaign], error)
	GetCampaign(ctx context.Context, code string) (*entity.Campaign, error)
	Cleanup(ctx context.Context, roomID int64) error
	Close()
}

// Deps 引擎依赖集合
type Deps struct {
	Campaigns     repository.CampaignRepository
	Scenes        repository.SceneRepository
	Decisions     repository.DecisionRepository
	NPCs          repository.NPCRepository
	Clues         repository.ClueRepository
	Endings       repository.EndingRepository
	Progress      repository.ProgressRepository
	Relationships repository.RelationshipRepository
	Tx            repository.Transactor
	State         *redisstore.StateStore
	Cache         *redisstore.Cache
	Producer      *messaging.Producer
}

// Engine 叙事引擎完整实现
type Engine struct {
	deps Deps
	cfg  config.EngineConfig

	analyzer *analyzer.Analyzer
	brain    *npcbrain.Brain
	twists   *twist.Engine

	locks *roomLockTable
}

// 确保实现完整
var _ NarrativeEngine = (*Engine)(nil)

// NewEngine 创建叙事引擎
func NewEngine(deps Deps, cfg config.EngineConfig) *Engine {
	if cfg.DefaultKarma <= 0 {
		cfg.DefaultKarma = 50
	}
	if cfg.MaxContextNPCs <= 0 {
		cfg.MaxContextNPCs = 5
	}
	if cfg.MaxForeshadowHints <= 0 {
		cfg.MaxForeshadowHints = 3
	}
	if cfg.TwistReadinessThreshold <= 0 {
		cfg.TwistReadinessThreshold = 0.7
	}

	return &Engine{
		deps:     deps,
		cfg:      cfg,
		analyzer: analyzer.NewAnalyzer(),
		brain:    npcbrain.NewBrain(),
		twists:   twist.NewEngine(cfg.MaxForeshadowHints, cfg.TwistReadinessThreshold),
		locks:    newRoomLockTable(cfg.LockCleanupInterval, cfg.LockIdleTimeout),
	}
}

// Close 停止后台清理协程
func (e *Engine) Close() {
	e.locks.stop()
}

// Initialize 为房间初始化剧本进度，重复初始化幂等返回既有进度
func (e *Engine) Initialize(ctx context.Context, roomID int64, campaignCode string) (*InitResult, error) {
	ctx, span := tracer.Start(ctx, "engine.Initialize",
		trace.WithAttributes(
			attribute.Int64("room.id", roomID),
			attribute.String("campaign.code", campaignCode),
		))
	defer span.End()
	ctx = logger.WithContext(ctx, logger.RoomIDKey, fmt.Sprintf("%d", roomID))

	var result *InitResult
	err := e.locks.withLock(roomID, func() error {
		var err error
		result, err = e.initializeLocked(ctx, roomID, campaignCode)
		return err
	})
	metrics.ActiveRooms.Set(float64(e.locks.size()))
	return result, err
}

func (e *Engine) initializeLocked(ctx context.Context, roomID int64, campaignCode string) (*InitResult, error) {
	existing, err := e.deps.Progress.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load room progress")
	}
	if existing != nil {
		campaign, err := e.deps.Campaigns.GetByID(ctx, existing.CampaignID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign")
		}
		return &InitResult{Progress: existing, Campaign: campaign, AlreadyInitialized: true}, nil
	}

	campaign, err := e.deps.Campaigns.GetByCode(ctx, campaignCode)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign")
	}
	if campaign == nil || !campaign.IsActive {
		return nil, errors.ErrUnknownCampaign
	}

	firstScene, err := e.deps.Scenes.GetFirstScene(ctx, campaign.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load opening scene")
	}
	if firstScene == nil {
		return nil, errors.New(errors.CodeUnknownScene, "campaign has no opening scene")
	}

	npcs, err := e.deps.NPCs.ListByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign npcs")
	}

	progress := entity.NewRoomProgress(roomID, campaign.ID, firstScene.ID, e.cfg.DefaultKarma)

	var events []*messaging.StoryEventMessage
	txErr := e.deps.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.armSceneDecision(txCtx, progress, firstScene, &events); err != nil {
			return err
		}
		if err := e.deps.Progress.Create(txCtx, progress); err != nil {
			return err
		}
		for _, npc := range npcs {
			if err := e.deps.Relationships.Upsert(txCtx, entity.NewNPCRelationship(roomID, npc)); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, errors.Wrap(txErr, errors.CodeDatabaseError, "failed to initialize room progress")
	}

	events = append(events, e.newEvent(roomID, campaign.ID, entity.EventProgressInitialized, map[string]interface{}{
		"campaign": campaign.Code,
		"scene_id": firstScene.ID,
	}))
	e.publishEvents(ctx, events)

	if err := e.deps.State.UpdateKarmaLeaderboard(ctx, campaign.ID, roomID, progress.Karma); err != nil {
		logger.Warn(ctx, "failed to update karma leaderboard", "room_id", roomID)
	}

	logger.Info(ctx, "room campaign initialized", "campaign", campaign.Code, "npc_count", len(npcs))
	return &InitResult{
		Progress:         progress,
		Campaign:         campaign,
		OpeningNarration: firstScene.OpeningNarration,
	}, nil
}

// GetState 返回房间状态视图，经由状态缓存旁路读取
func (e *Engine) GetState(ctx context.Context, roomID int64) (*StateView, error) {
	ctx, span := tracer.Start(ctx, "engine.GetState",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	var cached StateView
	ok, err := e.deps.State.GetState(ctx, roomID, &cached)
	if err != nil {
		logger.Warn(ctx, "state cache read failed", "room_id", roomID)
	}
	if ok && cached.Progress != nil {
		return &cached, nil
	}

	progress, err := e.deps.Progress.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load room progress")
	}
	if progress == nil {
		return nil, errors.ErrNotInitialized
	}

	rels, err := e.deps.Relationships.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load npc relationships")
	}

	view := &StateView{Progress: progress, Relationships: rels}
	if err := e.deps.State.SetState(ctx, roomID, view); err != nil {
		logger.Warn(ctx, "state cache write failed", "room_id", roomID)
	}
	return view, nil
}

// BuildContext 组装送往模型调用方的叙事上下文，短 TTL 缓存
func (e *Engine) BuildContext(ctx context.Context, roomID int64) (*contextbuilder.PromptContext, error) {
	ctx, span := tracer.Start(ctx, "engine.BuildContext",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	var cached contextbuilder.PromptContext
	ok, err := e.deps.State.GetAIContext(ctx, roomID, &cached)
	if err != nil {
		logger.Warn(ctx, "ai context cache read failed", "room_id", roomID)
	}
	if ok {
		return &cached, nil
	}

	progress, err := e.deps.Progress.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load room progress")
	}
	if progress == nil {
		return nil, errors.ErrNotInitialized
	}

	campaign, err := e.deps.Campaigns.GetByID(ctx, progress.CampaignID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign")
	}
	if campaign == nil {
		return nil, errors.ErrUnknownCampaign
	}

	scene, err := e.currentScene(ctx, progress)
	if err != nil {
		return nil, err
	}
	act, chapter, err := e.locateScene(ctx, progress.CampaignID, scene)
	if err != nil {
		return nil, err
	}

	npcs, err := e.chapterNPCs(ctx, progress.CampaignID, chapter)
	if err != nil {
		return nil, err
	}
	rels, err := e.deps.Relationships.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load npc relationships")
	}
	relByCode := make(map[string]*entity.NPCRelationship, len(rels))
	for _, rel := range rels {
		relByCode[rel.NPCCode] = rel
	}

	views := make([]contextbuilder.NPCView, 0, len(npcs))
	for _, npc := range npcs {
		views = append(views, contextbuilder.NPCView{
			NPC:           npc,
			Relationship:  relByCode[npc.Code],
			RecentActions: e.recentActions(ctx, roomID, npc.Code),
		})
	}

	clues, err := e.deps.Clues.ListByCampaign(ctx, progress.CampaignID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign clues")
	}
	foreshadowed, err := e.deps.State.ForeshadowCounts(ctx, roomID)
	if err != nil {
		logger.Warn(ctx, "foreshadow counts read failed", "room_id", roomID)
	}
	hints := e.twists.ForeshadowHints(clues, twist.State{
		CurrentAct:    progress.CurrentAct,
		RevealedClues: progress.RevealedClues,
		TensionLevel:  scene.TensionLevel,
		Foreshadowed:  foreshadowed,
	})
	hintTexts := make([]string, 0, len(hints))
	for _, h := range hints {
		hintTexts = append(hintTexts, h.Content)
		if err := e.deps.State.IncrForeshadow(ctx, roomID, h.TwistCode); err != nil {
			logger.Warn(ctx, "foreshadow count write failed", "twist", h.TwistCode)
		}
	}

	var pending *entity.Decision
	if progress.PendingDecisionCode != "" {
		pending, err = e.deps.Decisions.GetByCode(ctx, progress.PendingDecisionCode)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load pending decision")
		}
	}

	pc := contextbuilder.Build(contextbuilder.Snapshot{
		Campaign:        campaign,
		ActTitle:        act.Title,
		ChapterTitle:    chapter.Title,
		Scene:           scene,
		Progress:        progress,
		NPCs:            views,
		PendingDecision: pending,
		ForeshadowHints: hintTexts,
	}, contextbuilder.Config{
		MaxNPCs:            e.cfg.MaxContextNPCs,
		MaxForeshadowHints: e.cfg.MaxForeshadowHints,
	})

	if err := e.deps.State.SetAIContext(ctx, roomID, pc); err != nil {
		logger.Warn(ctx, "ai context cache write failed", "room_id", roomID)
	}
	return pc, nil
}

// PendingDecision 返回当前待决策的玩家可见视图
func (e *Engine) PendingDecision(ctx context.Context, roomID int64) (*PendingDecisionView, error) {
	ctx, span := tracer.Start(ctx, "engine.PendingDecision",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	progress, err := e.deps.Progress.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load room progress")
	}
	if progress == nil {
		return nil, errors.ErrNotInitialized
	}
	if progress.PendingDecisionCode == "" {
		return nil, errors.ErrNoPendingDecision
	}

	d, err := e.deps.Decisions.GetByCode(ctx, progress.PendingDecisionCode)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load pending decision")
	}
	if d == nil {
		return nil, errors.ErrUnknownDecision
	}

	options := make([]OptionView, 0, len(d.Options))
	for _, opt := range d.Options {
		options = append(options, OptionView{ID: opt.ID, Label: opt.Label, Description: opt.Description})
	}
	return &PendingDecisionView{
		Code:        d.Code,
		Title:       d.Title,
		Description: d.Description,
		TurnsLeft:   progress.PendingDecisionTurnsLeft,
		Options:     options,
	}, nil
}

// SubmitDecision 解析显式决策选择。已解析的决策幂等返回既有结果。
func (e *Engine) SubmitDecision(ctx context.Context, roomID int64, decisionCode, optionID string) (*DecisionResult, error) {
	ctx, span := tracer.Start(ctx, "engine.SubmitDecision",
		trace.WithAttributes(
			attribute.Int64("room.id", roomID),
			attribute.String("decision.code", decisionCode),
		))
	defer span.End()
	ctx = logger.WithContext(ctx, logger.RoomIDKey, fmt.Sprintf("%d", roomID))

	var result *DecisionResult
	err := e.locks.withLock(roomID, func() error {
		var err error
		result, err = e.submitDecisionLocked(ctx, roomID, decisionCode, optionID)
		return err
	})
	metrics.ActiveRooms.Set(float64(e.locks.size()))
	return result, err
}

func (e *Engine) submitDecisionLocked(ctx context.Context, roomID int64, decisionCode, optionID string) (*DecisionResult, error) {
	progress, err := e.deps.Progress.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load room progress")
	}
	if progress == nil {
		return nil, errors.ErrNotInitialized
	}

	d, err := e.deps.Decisions.GetByCode(ctx, decisionCode)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load decision")
	}
	if d == nil {
		return nil, errors.ErrUnknownDecision
	}
	if err := e.decisionReachable(ctx, progress, d); err != nil {
		return nil, err
	}

	if progress.DecisionResolved(d.Code) {
		return &DecisionResult{
			Outcome:         &decision.Outcome{DecisionCode: d.Code, OptionID: progress.DecisionsMade[d.Code]},
			Karma:           progress.Karma,
			AlreadyResolved: true,
		}, nil
	}

	npcByCode, relByCode, err := e.loadRoomNPCs(ctx, progress)
	if err != nil {
		return nil, err
	}

	var (
		events   []*messaging.StoryEventMessage
		outcome  *decision.Outcome
		advanced bool
	)
	txErr := e.deps.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		outcome, advanced, err = e.applyDecision(txCtx, progress, d, optionID, npcByCode, relByCode, &events)
		if err != nil {
			return err
		}
		return e.deps.Progress.Update(txCtx, progress)
	})
	if txErr != nil {
		if errors.IsCode(txErr, errors.CodeInvalidOption) {
			return nil, txErr
		}
		return nil, errors.Wrap(txErr, errors.CodeDatabaseError, "failed to persist decision outcome")
	}

	metrics.DecisionsResolvedTotal.WithLabelValues("explicit").Inc()
	e.afterMutation(ctx, progress)
	e.publishEvents(ctx, events)

	return &DecisionResult{Outcome: outcome, Karma: progress.Karma, SceneAdvanced: advanced}, nil
}

// ProcessTurn 处理一个叙事回合：解析模型文本中的控制标记，
// 在单个事务中应用全部效果，再执行待决策倒数与隐式决策检查。
// 效果持久化失败时叙事已经展示，只记录一致性告警并返回持久化错误。
func (e *Engine) ProcessTurn(ctx context.Context, roomID int64, narration string) (*TurnResult, error) {
	ctx, span := tracer.Start(ctx, "engine.ProcessTurn",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()
	ctx = logger.WithContext(ctx, logger.RoomIDKey, fmt.Sprintf("%d", roomID))

	var result *TurnResult
	err := e.locks.withLock(roomID, func() error {
		var err error
		result, err = e.processTurnLocked(ctx, roomID, narration)
		return err
	})
	metrics.ActiveRooms.Set(float64(e.locks.size()))
	return result, err
}

func (e *Engine) processTurnLocked(ctx context.Context, roomID int64, narration string) (*TurnResult, error) {
	start := time.Now()

	progress, err := e.deps.Progress.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load room progress")
	}
	if progress == nil {
		return nil, errors.ErrNotInitialized
	}

	campaign, err := e.deps.Campaigns.GetByID(ctx, progress.CampaignID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign")
	}
	if campaign == nil {
		return nil, errors.ErrUnknownCampaign
	}
	defer func() {
		metrics.TurnDuration.WithLabelValues(campaign.Code).Observe(time.Since(start).Seconds())
	}()

	parsed := marker.Parse(narration)

	npcByCode, relByCode, err := e.loadRoomNPCs(ctx, progress)
	if err != nil {
		return nil, err
	}
	clues, err := e.deps.Clues.ListByCampaign(ctx, progress.CampaignID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign clues")
	}
	clueByCode := make(map[string]*entity.Clue, len(clues))
	for _, c := range clues {
		clueByCode[c.Code] = c
	}

	effects, invalid, decisionByCode, err := e.validateEffects(ctx, progress, parsed.Effects, npcByCode, clueByCode)
	if err != nil {
		return nil, err
	}
	dropped := append(parsed.Dropped, invalid...)
	for _, d := range dropped {
		metrics.MarkersDroppedTotal.WithLabelValues(string(d.Reason)).Inc()
	}

	result := &TurnResult{
		CleanText:      parsed.CleanText,
		AppliedMarkers: effects,
		DroppedMarkers: dropped,
	}

	var (
		events   []*messaging.StoryEventMessage
		memories []memoryWrite
	)
	txErr := e.deps.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, eff := range effects {
			if err := e.applyEffect(txCtx, progress, eff, npcByCode, relByCode, decisionByCode, result, &events, &memories); err != nil {
				return err
			}
			metrics.MarkersAppliedTotal.WithLabelValues(string(eff.Kind)).Inc()
		}

		if err := e.tickPendingDecision(txCtx, progress, npcByCode, relByCode, result, &events); err != nil {
			return err
		}
		if err := e.checkHiddenDecisions(txCtx, progress, npcByCode, relByCode, result, &events); err != nil {
			return err
		}

		return e.deps.Progress.Update(txCtx, progress)
	})
	if txErr != nil {
		metrics.ConsistencyWarningsTotal.Inc()
		metrics.TurnsProcessedTotal.WithLabelValues("failed").Inc()
		logger.Warn(ctx, "turn effects not persisted, narration already shown", "room_id", roomID)
		return nil, errors.Wrap(txErr, errors.CodePersistenceFailure, "turn effects could not be persisted")
	}
	metrics.TurnsProcessedTotal.WithLabelValues("ok").Inc()

	for _, m := range memories {
		if err := e.deps.State.AddNPCInteraction(ctx, roomID, m.npcCode, m.actionType, m.details); err != nil {
			logger.Warn(ctx, "failed to record npc interaction", "npc", m.npcCode)
		}
	}
	e.afterMutation(ctx, progress)
	e.publishEvents(ctx, events)

	result.Karma = progress.Karma
	result.PendingDecision = progress.PendingDecisionCode
	return result, nil
}

// Analyze 对玩家输入做纯建议性的动作分析，不改变任何状态
func (e *Engine) Analyze(ctx context.Context, roomID int64, message, character string) (*analyzer.Analysis, error) {
	ctx, span := tracer.Start(ctx, "engine.Analyze",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	progress, err := e.deps.Progress.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load room progress")
	}
	if progress == nil {
		return nil, errors.ErrNotInitialized
	}

	var (
		sceneType string
		active    []string
	)
	if scene, err := e.currentScene(ctx, progress); err == nil {
		sceneType = string(scene.Type)
		if _, chapter, err := e.locateScene(ctx, progress.CampaignID, scene); err == nil {
			active = chapter.KeyNPCCodes
		}
	}
	if len(active) == 0 {
		npcs, err := e.deps.NPCs.ListByCampaign(ctx, progress.CampaignID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign npcs")
		}
		for _, npc := range npcs {
			active = append(active, npc.Code)
		}
		sort.Strings(active)
	}

	analysis := e.analyzer.Analyze(analyzer.Request{
		Message:    message,
		Character:  character,
		ActiveNPCs: active,
		SceneType:  sceneType,
	})
	return &analysis, nil
}

// CalculateEndings 计算当前状态下各结局的概率分布
func (e *Engine) CalculateEndings(ctx context.Context, roomID int64) (map[string]int, error) {
	ctx, span := tracer.Start(ctx, "engine.CalculateEndings",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()

	progress, err := e.deps.Progress.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load room progress")
	}
	if progress == nil {
		return nil, errors.ErrNotInitialized
	}

	campaign, err := e.deps.Campaigns.GetByID(ctx, progress.CampaignID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign")
	}
	if campaign == nil {
		return nil, errors.ErrUnknownCampaign
	}

	endings, err := e.deps.Endings.ListByCampaign(ctx, progress.CampaignID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign endings")
	}

	start := time.Now()
	probabilities := ending.Calculate(endings, snapshotState(progress))
	metrics.EndingCalcDuration.WithLabelValues(campaign.Code).Observe(time.Since(start).Seconds())
	return probabilities, nil
}

// Leaderboard 返回剧本业力排行，Redis 排行缺失时回落到数据库
func (e *Engine) Leaderboard(ctx context.Context, campaignCode string, limit int) ([]redisstore.LeaderboardEntry, error) {
	ctx, span := tracer.Start(ctx, "engine.Leaderboard",
		trace.WithAttributes(attribute.String("campaign.code", campaignCode)))
	defer span.End()

	if limit <= 0 {
		limit = 10
	}

	campaign, err := e.GetCampaign(ctx, campaignCode)
	if err != nil {
		return nil, err
	}

	entries, err := e.deps.State.TopKarma(ctx, campaign.ID, limit)
	if err != nil {
		logger.Warn(ctx, "karma leaderboard read failed, falling back to database", "campaign", campaignCode)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	rows, err := e.deps.Progress.TopKarmaByCampaign(ctx, campaign.ID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load karma leaderboard")
	}
	entries = make([]redisstore.LeaderboardEntry, 0, len(rows))
	for _, p := range rows {
		entries = append(entries, redisstore.LeaderboardEntry{RoomID: p.RoomID, Karma: p.Karma})
	}
	return entries, nil
}

// ListCampaigns 返回启用的剧本目录
func (e *Engine) ListCampaigns(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Campaign], error) {
	ctx, span := tracer.Start(ctx, "engine.ListCampaigns")
	defer span.End()

	result, err := e.deps.Campaigns.List(ctx, pagination)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to list campaigns")
	}
	return result, nil
}

// GetCampaign 按代码获取剧本，目录只读故可短期缓存
func (e *Engine) GetCampaign(ctx context.Context, code string) (*entity.Campaign, error) {
	ctx, span := tracer.Start(ctx, "engine.GetCampaign",
		trace.WithAttributes(attribute.String("campaign.code", code)))
	defer span.End()

	key := fmt.Sprintf("story:catalog:campaign:%s", code)
	data, err := e.deps.Cache.GetOrLoadSafe(ctx, key, campaignCacheTTL, func() (interface{}, error) {
		campaign, err := e.deps.Campaigns.GetByCode(ctx, code)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign")
		}
		if campaign == nil {
			return nil, errors.ErrUnknownCampaign
		}
		return campaign, nil
	})
	if err != nil {
		return nil, err
	}

	var campaign entity.Campaign
	if err := json.Unmarshal(data, &campaign); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheError, "corrupt campaign cache entry")
	}
	return &campaign, nil
}

// Cleanup 房间销毁时删除进度、关系与全部缓存键
func (e *Engine) Cleanup(ctx context.Context, roomID int64) error {
	ctx, span := tracer.Start(ctx, "engine.Cleanup",
		trace.WithAttributes(attribute.Int64("room.id", roomID)))
	defer span.End()
	ctx = logger.WithContext(ctx, logger.RoomIDKey, fmt.Sprintf("%d", roomID))

	err := e.locks.withLock(roomID, func() error {
		txErr := e.deps.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := e.deps.Relationships.DeleteByRoom(txCtx, roomID); err != nil {
				return err
			}
			return e.deps.Progress.DeleteByRoom(txCtx, roomID)
		})
		if txErr != nil {
			return errors.Wrap(txErr, errors.CodeDatabaseError, "failed to delete room progress")
		}

		if err := e.deps.State.CleanupRoom(ctx, roomID); err != nil {
			logger.Warn(ctx, "failed to clean room cache keys", "room_id", roomID)
		}
		logger.Info(ctx, "room story state cleaned up")
		return nil
	})
	metrics.ActiveRooms.Set(float64(e.locks.size()))
	return err
}

// ---- 内部辅助 ----

// memoryWrite 事务提交后写入的 NPC 记忆条目
type memoryWrite struct {
	npcCode    string
	actionType string
	details    string
}

func snapshotState(p *entity.RoomProgress) decision.State {
	return decision.State{Karma: p.Karma, Flags: p.StoryFlags, Decisions: p.DecisionsMade}
}

func (e *Engine) newEvent(roomID, campaignID int64, typ entity.StoryEventType, payload map[string]interface{}) *messaging.StoryEventMessage {
	return &messaging.StoryEventMessage{
		EventID:    uuid.NewString(),
		RoomID:     roomID,
		CampaignID: campaignID,
		EventType:  string(typ),
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *Engine) publishEvents(ctx context.Context, events []*messaging.StoryEventMessage) {
	for _, ev := range events {
		if _, err := e.deps.Producer.PublishStoryEvent(ctx, ev); err != nil {
			logger.Warn(ctx, "failed to publish story event", "event_type", ev.EventType)
			continue
		}
		metrics.StoryEventsPublished.WithLabelValues(ev.EventType).Inc()
	}
}

// afterMutation 每个变更回合后的缓存维护
func (e *Engine) afterMutation(ctx context.Context, progress *entity.RoomProgress) {
	if err := e.deps.State.InvalidateState(ctx, progress.RoomID); err != nil {
		logger.Warn(ctx, "failed to invalidate state cache", "room_id", progress.RoomID)
	}
	if err := e.deps.State.InvalidateAIContext(ctx, progress.RoomID); err != nil {
		logger.Warn(ctx, "failed to invalidate ai context cache", "room_id", progress.RoomID)
	}
	if err := e.deps.State.UpdateKarmaLeaderboard(ctx, progress.CampaignID, progress.RoomID, progress.Karma); err != nil {
		logger.Warn(ctx, "failed to update karma leaderboard", "room_id", progress.RoomID)
	}
}

func (e *Engine) loadRoomNPCs(ctx context.Context, progress *entity.RoomProgress) (map[string]*entity.NPC, map[string]*entity.NPCRelationship, error) {
	npcs, err := e.deps.NPCs.ListByCampaign(ctx, progress.CampaignID)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load campaign npcs")
	}
	rels, err := e.deps.Relationships.ListByRoom(ctx, progress.RoomID)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load npc relationships")
	}

	npcByCode := make(map[string]*entity.NPC, len(npcs))
	for _, npc := range npcs {
		npcByCode[npc.Code] = npc
	}
	relByCode := make(map[string]*entity.NPCRelationship, len(rels))
	for _, rel := range rels {
		relByCode[rel.NPCCode] = rel
	}
	return npcByCode, relByCode, nil
}

// currentScene 获取进度指向的场景，场景 ID 缺失时按位置查找
func (e *Engine) currentScene(ctx context.Context, progress *entity.RoomProgress) (*entity.Scene, error) {
	var (
		scene *entity.Scene
		err   error
	)
	if progress.CurrentSceneID != 0 {
		scene, err = e.deps.Scenes.GetByID(ctx, progress.CurrentSceneID)
	} else {
		scene, err = e.deps.Scenes.GetByPosition(ctx, progress.CampaignID,
			progress.CurrentAct, progress.CurrentChapter, progress.CurrentScene)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load current scene")
	}
	if scene == nil {
		return nil, errors.ErrUnknownScene
	}
	return scene, nil
}

// locateScene 把场景映射回剧本位置（幕/章），场景不属于该剧本时返回 UnknownScene
func (e *Engine) locateScene(ctx context.Context, campaignID int64, scene *entity.Scene) (*entity.Act, *entity.Chapter, error) {
	acts, err := e.deps.Campaigns.ListActs(ctx, campaignID)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to list acts")
	}
	for _, act := range acts {
		chapters, err := e.deps.Campaigns.ListChapters(ctx, act.ID)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to list chapters")
		}
		for _, chapter := range chapters {
			if chapter.ID == scene.ChapterID {
				return act, chapter, nil
			}
		}
	}
	return nil, nil, errors.New(errors.CodeUnknownScene, "scene does not belong to campaign")
}

// decisionReachable 校验决策归属于剧本，且其场景不晚于当前进度位置。
// 尚未到达场景上的决策视同未定义，叙事文本无法预支未来分支。
func (e *Engine) decisionReachable(ctx context.Context, progress *entity.RoomProgress, d *entity.Decision) error {
	scene, err := e.deps.Scenes.GetByID(ctx, d.SceneID)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to load decision scene")
	}
	if scene == nil {
		return errors.ErrUnknownDecision
	}
	act, chapter, err := e.locateScene(ctx, progress.CampaignID, scene)
	if err != nil {
		if errors.IsCode(err, errors.CodeUnknownScene) {
			return errors.ErrUnknownDecision
		}
		return err
	}
	if positionAhead(act.Number, chapter.Number, scene.SceneOrder, progress) {
		return errors.ErrUnknownDecision
	}
	return nil
}

// positionAhead 按（幕, 章, 场景序号）字典序判断位置是否在进度之后
func positionAhead(act, chapter, order int, p *entity.RoomProgress) bool {
	if act != p.CurrentAct {
		return act > p.CurrentAct
	}
	if chapter != p.CurrentChapter {
		return chapter > p.CurrentChapter
	}
	return order > p.CurrentScene
}

func (e *Engine) chapterNPCs(ctx context.Context, campaignID int64, chapter *entity.Chapter) ([]*entity.NPC, error) {
	var (
		npcs []*entity.NPC
		err  error
	)
	if len(chapter.KeyNPCCodes) > 0 {
		npcs, err = e.deps.NPCs.ListByCodes(ctx, campaignID, chapter.KeyNPCCodes)
	} else {
		npcs, err = e.deps.NPCs.ListByCampaign(ctx, campaignID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load chapter npcs")
	}
	return npcs, nil
}

// recentActions 格式化 NPC 记忆中的近期交互，读失败时返回空
func (e *Engine) recentActions(ctx context.Context, roomID int64, npcCode string) []string {
	memory, err := e.deps.State.GetNPCMemory(ctx, roomID, npcCode)
	if err != nil {
		logger.Warn(ctx, "npc memory read failed", "npc", npcCode)
		return nil
	}

	interactions := memory.Interactions
	if len(interactions) > 5 {
		interactions = interactions[len(interactions)-5:]
	}
	out := make([]string, 0, len(interactions))
	for _, i := range interactions {
		out = append(out, fmt.Sprintf("%s: %s", i.ActionType, i.Details))
	}
	return out
}

// validateEffects 对照剧本目录校验标记目标，未知目标按 invalid_target 丢弃
func (e *Engine) validateEffects(ctx context.Context, progress *entity.RoomProgress, effects []marker.Effect,
	npcByCode map[string]*entity.NPC, clueByCode map[string]*entity.Clue) ([]marker.Effect, []marker.Dropped, map[string]*entity.Decision, error) {

	valid := make([]marker.Effect, 0, len(effects))
	var dropped []marker.Dropped
	decisionByCode := map[string]*entity.Decision{}

	for _, eff := range effects {
		switch eff.Kind {
		case marker.KindNPCReact:
			if npcByCode[eff.NPCCode] == nil {
				dropped = append(dropped, marker.Dropped{Raw: eff.Raw, Reason: marker.DropInvalidTarget})
				continue
			}

		case marker.KindClueRevealed:
			if clueByCode[eff.ClueCode] == nil {
				dropped = append(dropped, marker.Dropped{Raw: eff.Raw, Reason: marker.DropInvalidTarget})
				continue
			}

		case marker.KindDecision:
			d, err := e.deps.Decisions.GetByCode(ctx, eff.DecisionCode)
			if err != nil {
				return nil, nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load decision")
			}
			if d == nil || d.IsHidden {
				dropped = append(dropped, marker.Dropped{Raw: eff.Raw, Reason: marker.DropInvalidTarget})
				continue
			}
			if err := e.decisionReachable(ctx, progress, d); err != nil {
				if errors.IsCode(err, errors.CodeUnknownDecision) {
					dropped = append(dropped, marker.Dropped{Raw: eff.Raw, Reason: marker.DropInvalidTarget})
					continue
				}
				return nil, nil, nil, err
			}
			decisionByCode[d.Code] = d
		}
		valid = append(valid, eff)
	}
	return valid, dropped, decisionByCode, nil
}

// applyEffect 在事务内应用单条标记效果
func (e *Engine) applyEffect(ctx context.Context, progress *entity.RoomProgress, eff marker.Effect,
	npcByCode map[string]*entity.NPC, relByCode map[string]*entity.NPCRelationship,
	decisionByCode map[string]*entity.Decision, result *TurnResult,
	events *[]*messaging.StoryEventMessage, memories *[]memoryWrite) error {

	switch eff.Kind {
	case marker.KindKarma:
		applied := progress.ApplyKarma(eff.Delta)
		result.KarmaChange += applied
		*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventKarmaChanged,
			map[string]interface{}{"delta": applied, "karma": progress.Karma}))

	case marker.KindNPCReact:
		return e.applyNPCReact(ctx, progress, npcByCode[eff.NPCCode], relByCode, eff, events, memories)

	case marker.KindClueRevealed:
		if progress.RevealClue(eff.ClueCode) {
			*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventClueRevealed,
				map[string]interface{}{"clue": eff.ClueCode}))
		}

	case marker.KindDecision:
		d := decisionByCode[eff.DecisionCode]
		if d == nil || progress.DecisionResolved(d.Code) || progress.PendingDecisionCode == d.Code {
			return nil
		}
		progress.SetPendingDecision(d.Code, d.TimeoutTurns)
		*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventDecisionActivated,
			map[string]interface{}{"decision": d.Code, "timeout_turns": d.TimeoutTurns}))

	case marker.KindHP, marker.KindItem:
		// 生命与物品由房间服务结算，引擎只透传给调用方
	}
	return nil
}

// applyNPCReact 应用 NPC 反应标记。标记中的情绪为权威值；
// 携带动作原因时叠加性格化的关系/信任变化与背叛/救赎/秘密判定。
func (e *Engine) applyNPCReact(ctx context.Context, progress *entity.RoomProgress, npc *entity.NPC,
	relByCode map[string]*entity.NPCRelationship, eff marker.Effect,
	events *[]*messaging.StoryEventMessage, memories *[]memoryWrite) error {

	rel := relByCode[npc.Code]
	if rel == nil {
		rel = entity.NewNPCRelationship(progress.RoomID, npc)
		relByCode[npc.Code] = rel
	}

	if eff.Reason != "" {
		reaction := e.brain.React(npc, rel, eff.Reason)
		rel.AdjustRelationship(reaction.RelationshipChange)
		rel.AdjustTrust(reaction.TrustChange)

		if reaction.RevealsSecret != "" && rel.LearnSecret(reaction.RevealsSecret) {
			*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventSecretRevealed,
				map[string]interface{}{"npc": npc.Code}))
		}

		rel.SetEmotionalState(eff.State)

		if reaction.TriggersBetrayal && rel.TriggerBetrayal() {
			*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventBetrayalTriggered,
				map[string]interface{}{"npc": npc.Code}))
		}
		if reaction.TriggersRedemption && rel.TriggerRedemption() {
			*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventRedemptionTriggered,
				map[string]interface{}{"npc": npc.Code}))
		}
	} else {
		rel.SetEmotionalState(eff.State)
	}
	rel.RecordInteraction()

	if err := e.deps.Relationships.Upsert(ctx, rel); err != nil {
		return err
	}

	*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventNPCReaction,
		map[string]interface{}{"npc": npc.Code, "state": string(rel.EmotionalState)}))

	details := eff.Reason
	if details == "" {
		details = string(eff.State)
	}
	actionType := eff.Reason
	if actionType == "" {
		actionType = "reaction"
	}
	*memories = append(*memories, memoryWrite{npcCode: npc.Code, actionType: actionType, details: details})
	return nil
}

// tickPendingDecision 待决策倒数；归零时以默认选项按超时模式解析
func (e *Engine) tickPendingDecision(ctx context.Context, progress *entity.RoomProgress,
	npcByCode map[string]*entity.NPC, relByCode map[string]*entity.NPCRelationship,
	result *TurnResult, events *[]*messaging.StoryEventMessage) error {

	if !progress.TickPendingDecision() {
		return nil
	}

	d, err := e.deps.Decisions.GetByCode(ctx, progress.PendingDecisionCode)
	if err != nil {
		return err
	}
	if d == nil || d.DefaultOption == "" {
		progress.ClearPendingDecision()
		return nil
	}

	_, advanced, err := e.applyDecision(ctx, progress, d, d.DefaultOption, npcByCode, relByCode, events)
	if err != nil {
		return err
	}
	metrics.DecisionsResolvedTotal.WithLabelValues("timeout").Inc()
	result.ResolvedDecisions = append(result.ResolvedDecisions, d.Code)
	result.SceneAdvanced = result.SceneAdvanced || advanced
	return nil
}

// checkHiddenDecisions 隐式决策检查；decisionsMade 兼作已解析闩锁保证幂等
func (e *Engine) checkHiddenDecisions(ctx context.Context, progress *entity.RoomProgress,
	npcByCode map[string]*entity.NPC, relByCode map[string]*entity.NPCRelationship,
	result *TurnResult, events *[]*messaging.StoryEventMessage) error {

	hidden, err := e.deps.Decisions.ListHiddenByCampaign(ctx, progress.CampaignID)
	if err != nil {
		return err
	}

	d := decision.FirstSatisfiedHidden(hidden, snapshotState(progress))
	if d == nil {
		return nil
	}

	optionID := d.DefaultOption
	if optionID == "" && len(d.Options) > 0 {
		optionID = d.Options[0].ID
	}
	if optionID == "" {
		return nil
	}

	_, advanced, err := e.applyDecision(ctx, progress, d, optionID, npcByCode, relByCode, events)
	if err != nil {
		return err
	}
	metrics.DecisionsResolvedTotal.WithLabelValues("hidden").Inc()
	result.ResolvedDecisions = append(result.ResolvedDecisions, d.Code)
	result.SceneAdvanced = result.SceneAdvanced || advanced
	return nil
}

// applyDecision 在事务内应用决策后果并推进场景。
// 显式、超时与隐式解析共用此路径。
func (e *Engine) applyDecision(ctx context.Context, progress *entity.RoomProgress, d *entity.Decision, optionID string,
	npcByCode map[string]*entity.NPC, relByCode map[string]*entity.NPCRelationship,
	events *[]*messaging.StoryEventMessage) (*decision.Outcome, bool, error) {

	scene, err := e.deps.Scenes.GetByID(ctx, d.SceneID)
	if err != nil {
		return nil, false, err
	}

	outcome, err := decision.Resolve(d, optionID, scene, snapshotState(progress))
	if err != nil {
		return nil, false, err
	}

	progress.RecordDecision(d.Code, outcome.OptionID)
	if outcome.KarmaEffect != 0 {
		progress.ApplyKarma(outcome.KarmaEffect)
	}
	for _, flag := range outcome.NewFlags {
		progress.SetFlag(flag)
	}
	for faction, delta := range outcome.FactionEffects {
		progress.AdjustFaction(faction, delta)
	}
	if outcome.SideStory != "" && progress.CompleteSideStory(outcome.SideStory) {
		*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventSideStoryCompleted,
			map[string]interface{}{"side_story": outcome.SideStory}))
	}

	for npcCode, delta := range outcome.NPCEffects {
		npc := npcByCode[npcCode]
		if npc == nil {
			continue
		}
		rel := relByCode[npcCode]
		if rel == nil {
			rel = entity.NewNPCRelationship(progress.RoomID, npc)
			relByCode[npcCode] = rel
		}
		rel.AdjustRelationship(delta)

		if npc.CanBetray() && rel.RelationshipScore < npc.BetrayalThreshold && rel.TriggerBetrayal() {
			*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventBetrayalTriggered,
				map[string]interface{}{"npc": npc.Code}))
		} else if npc.CanBetray() && rel.RelationshipScore >= npc.RedemptionThreshold && rel.TriggerRedemption() {
			*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventRedemptionTriggered,
				map[string]interface{}{"npc": npc.Code}))
		}

		if err := e.deps.Relationships.Upsert(ctx, rel); err != nil {
			return nil, false, err
		}
	}

	if progress.PendingDecisionCode == d.Code {
		progress.ClearPendingDecision()
	}

	advanced := false
	if outcome.NextSceneID != 0 && outcome.NextSceneID != progress.CurrentSceneID {
		if err := e.advanceScene(ctx, progress, outcome.NextSceneID, events); err != nil {
			return nil, false, err
		}
		advanced = true
	}

	*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventDecisionResolved,
		map[string]interface{}{"decision": d.Code, "option": outcome.OptionID}))
	return outcome, advanced, nil
}

// advanceScene 把进度移动到目标场景并武装该场景的首个可见决策
func (e *Engine) advanceScene(ctx context.Context, progress *entity.RoomProgress, nextSceneID int64,
	events *[]*messaging.StoryEventMessage) error {

	scene, err := e.deps.Scenes.GetByID(ctx, nextSceneID)
	if err != nil {
		return err
	}
	if scene == nil {
		return errors.New(errors.CodeUnknownScene, "branch target scene not found")
	}

	act, chapter, err := e.locateScene(ctx, progress.CampaignID, scene)
	if err != nil {
		return err
	}

	progress.CurrentAct = act.Number
	progress.CurrentChapter = chapter.Number
	progress.CurrentScene = scene.SceneOrder
	progress.CurrentSceneID = scene.ID
	progress.UpdatedAt = time.Now()

	*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventSceneAdvanced,
		map[string]interface{}{
			"scene_id": scene.ID,
			"act":      act.Number,
			"chapter":  chapter.Number,
			"scene":    scene.SceneOrder,
		}))

	return e.armSceneDecision(ctx, progress, scene, events)
}

// armSceneDecision 场景携带的首个未解析可见决策进入待决策状态
func (e *Engine) armSceneDecision(ctx context.Context, progress *entity.RoomProgress, scene *entity.Scene,
	events *[]*messaging.StoryEventMessage) error {

	if progress.PendingDecisionCode != "" {
		return nil
	}

	decisions, err := e.deps.Decisions.ListByScene(ctx, scene.ID)
	if err != nil {
		return err
	}
	for _, d := range decisions {
		if d.IsHidden || progress.DecisionResolved(d.Code) {
			continue
		}
		progress.SetPendingDecision(d.Code, d.TimeoutTurns)
		*events = append(*events, e.newEvent(progress.RoomID, progress.CampaignID, entity.EventDecisionActivated,
			map[string]interface{}{"decision": d.Code, "timeout_turns": d.TimeoutTurns}))
		return nil
	}
	return nil
}
