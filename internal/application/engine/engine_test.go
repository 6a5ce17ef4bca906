package engine

import (
	"context"
	"testing"

	"story-engine-api/internal/application/marker"
	"story-engine-api/internal/config"
	"story-engine-api/internal/domain/entity"
	"story-engine-api/internal/domain/repository"
	"story-engine-api/pkg/errors"
)

// 目录桩：三幕剧本，第一幕与第三幕各挂一个可见决策

type stubCampaignRepo struct {
	acts     []*entity.Act
	chapters map[int64][]*entity.Chapter
}

func (r *stubCampaignRepo) GetByID(ctx context.Context, id int64) (*entity.Campaign, error) {
	return nil, nil
}

func (r *stubCampaignRepo) GetByCode(ctx context.Context, code string) (*entity.Campaign, error) {
	return nil, nil
}

func (r *stubCampaignRepo) List(ctx context.Context, p repository.Pagination) (*repository.PagedResult[*entity.Campaign], error) {
	return nil, nil
}

func (r *stubCampaignRepo) ListActs(ctx context.Context, campaignID int64) ([]*entity.Act, error) {
	return r.acts, nil
}

func (r *stubCampaignRepo) ListChapters(ctx context.Context, actID int64) ([]*entity.Chapter, error) {
	return r.chapters[actID], nil
}

type stubSceneRepo struct {
	scenes map[int64]*entity.Scene
}

func (r *stubSceneRepo) GetByID(ctx context.Context, id int64) (*entity.Scene, error) {
	return r.scenes[id], nil
}

func (r *stubSceneRepo) GetByPosition(ctx context.Context, campaignID int64, act, chapter, scene int) (*entity.Scene, error) {
	return nil, nil
}

func (r *stubSceneRepo) GetFirstScene(ctx context.Context, campaignID int64) (*entity.Scene, error) {
	return nil, nil
}

func (r *stubSceneRepo) ListByChapter(ctx context.Context, chapterID int64) ([]*entity.Scene, error) {
	return nil, nil
}

type stubDecisionRepo struct {
	byCode map[string]*entity.Decision
}

func (r *stubDecisionRepo) GetByCode(ctx context.Context, code string) (*entity.Decision, error) {
	return r.byCode[code], nil
}

func (r *stubDecisionRepo) ListByScene(ctx context.Context, sceneID int64) ([]*entity.Decision, error) {
	return nil, nil
}

func (r *stubDecisionRepo) ListHiddenByCampaign(ctx context.Context, campaignID int64) ([]*entity.Decision, error) {
	return nil, nil
}

type stubProgressRepo struct {
	progress *entity.RoomProgress
}

func (r *stubProgressRepo) Create(ctx context.Context, p *entity.RoomProgress) error { return nil }

func (r *stubProgressRepo) GetByRoom(ctx context.Context, roomID int64) (*entity.RoomProgress, error) {
	return r.progress, nil
}

func (r *stubProgressRepo) Update(ctx context.Context, p *entity.RoomProgress) error { return nil }

func (r *stubProgressRepo) DeleteByRoom(ctx context.Context, roomID int64) error { return nil }

func (r *stubProgressRepo) TopKarmaByCampaign(ctx context.Context, campaignID int64, limit int) ([]*entity.RoomProgress, error) {
	return nil, nil
}

// newCatalogEngine 构造只接目录桩的引擎：
// 第一幕第一章场景 1 挂 courier_verdict 与隐式 smuggler_pact，
// 第三幕第一章场景 9 挂 final_verdict。
func newCatalogEngine(t *testing.T, progress *entity.RoomProgress) *Engine {
	t.Helper()

	campaigns := &stubCampaignRepo{
		acts: []*entity.Act{
			{ID: 10, CampaignID: 1, Number: 1},
			{ID: 30, CampaignID: 1, Number: 3},
		},
		chapters: map[int64][]*entity.Chapter{
			10: {{ID: 100, ActID: 10, Number: 1}},
			30: {{ID: 300, ActID: 30, Number: 1}},
		},
	}
	scenes := &stubSceneRepo{scenes: map[int64]*entity.Scene{
		1: {ID: 1, ChapterID: 100, SceneOrder: 1},
		9: {ID: 9, ChapterID: 300, SceneOrder: 1},
	}}
	decisions := &stubDecisionRepo{byCode: map[string]*entity.Decision{
		"courier_verdict": {ID: 1, SceneID: 1, Code: "courier_verdict",
			Options: []entity.DecisionOption{{ID: "spare"}, {ID: "execute"}}},
		"final_verdict": {ID: 2, SceneID: 9, Code: "final_verdict",
			Options: []entity.DecisionOption{{ID: "condemn"}, {ID: "pardon"}}},
		"smuggler_pact": {ID: 3, SceneID: 1, Code: "smuggler_pact", IsHidden: true,
			Options: []entity.DecisionOption{{ID: "pact"}}},
	}}

	e := NewEngine(Deps{
		Campaigns: campaigns,
		Scenes:    scenes,
		Decisions: decisions,
		Progress:  &stubProgressRepo{progress: progress},
	}, config.EngineConfig{})
	t.Cleanup(e.Close)
	return e
}

func decisionEffect(code string) marker.Effect {
	return marker.Effect{Kind: marker.KindDecision, DecisionCode: code, Raw: "[DECISION:" + code + "]"}
}

func TestValidateEffectsDropsUnreachedDecision(t *testing.T) {
	progress := &entity.RoomProgress{RoomID: 7, CampaignID: 1, CurrentAct: 1, CurrentChapter: 1, CurrentScene: 1}
	e := newCatalogEngine(t, progress)

	effects := []marker.Effect{
		decisionEffect("courier_verdict"),
		decisionEffect("final_verdict"),
		decisionEffect("smuggler_pact"),
		decisionEffect("ghost"),
	}
	valid, dropped, byCode, err := e.validateEffects(context.Background(), progress, effects,
		map[string]*entity.NPC{}, map[string]*entity.Clue{})
	if err != nil {
		t.Fatal(err)
	}

	if len(valid) != 1 || valid[0].DecisionCode != "courier_verdict" {
		t.Errorf("valid = %+v, want only courier_verdict", valid)
	}
	if len(dropped) != 3 {
		t.Fatalf("dropped = %+v, want 3 entries", dropped)
	}
	for _, d := range dropped {
		if d.Reason != marker.DropInvalidTarget {
			t.Errorf("drop reason for %q = %s, want invalid_target", d.Raw, d.Reason)
		}
	}
	if byCode["final_verdict"] != nil {
		t.Error("third-act decision must not be armable from act one")
	}
	if byCode["courier_verdict"] == nil {
		t.Error("current-scene decision missing from catalog map")
	}
}

func TestValidateEffectsAllowsReachedScenes(t *testing.T) {
	// 进度已到第三幕：第一幕的旧决策与第三幕的当前决策都可用
	progress := &entity.RoomProgress{RoomID: 7, CampaignID: 1, CurrentAct: 3, CurrentChapter: 1, CurrentScene: 1}
	e := newCatalogEngine(t, progress)

	effects := []marker.Effect{
		decisionEffect("courier_verdict"),
		decisionEffect("final_verdict"),
	}
	valid, dropped, _, err := e.validateEffects(context.Background(), progress, effects,
		map[string]*entity.NPC{}, map[string]*entity.Clue{})
	if err != nil {
		t.Fatal(err)
	}
	if len(valid) != 2 || len(dropped) != 0 {
		t.Errorf("valid = %d, dropped = %d, want 2/0", len(valid), len(dropped))
	}
}

func TestSubmitDecisionRejectsUnreachedDecision(t *testing.T) {
	progress := &entity.RoomProgress{
		RoomID: 7, CampaignID: 1,
		CurrentAct: 1, CurrentChapter: 1, CurrentScene: 1,
		DecisionsMade: map[string]string{},
	}
	e := newCatalogEngine(t, progress)

	_, err := e.submitDecisionLocked(context.Background(), 7, "final_verdict", "condemn")
	if !errors.IsCode(err, errors.CodeUnknownDecision) {
		t.Errorf("expected unknown decision error, got %v", err)
	}
}

func TestPositionAhead(t *testing.T) {
	progress := &entity.RoomProgress{CurrentAct: 2, CurrentChapter: 2, CurrentScene: 3}

	tests := []struct {
		name                string
		act, chapter, order int
		want                bool
	}{
		{"earlier act", 1, 9, 9, false},
		{"same position", 2, 2, 3, false},
		{"earlier scene in chapter", 2, 2, 2, false},
		{"later scene in chapter", 2, 2, 4, true},
		{"later chapter", 2, 3, 1, true},
		{"later act", 3, 1, 1, true},
	}
	for _, tt := range tests {
		if got := positionAhead(tt.act, tt.chapter, tt.order, progress); got != tt.want {
			t.Errorf("%s: positionAhead(%d,%d,%d) = %v, want %v",
				tt.name, tt.act, tt.chapter, tt.order, got, tt.want)
		}
	}
}
