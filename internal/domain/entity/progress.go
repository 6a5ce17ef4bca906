package entity

import (
	"time"
)

// KarmaMin/KarmaMax 业力取值边界，所有变更都钳制在该区间
const (
	KarmaMin = 0
	KarmaMax = 100
)

// RoomProgress 房间剧情进度，(room, campaign) 唯一
type RoomProgress struct {
	ID             int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomID         int64 `json:"room_id" gorm:"uniqueIndex:uq_room_campaign;not null"`
	CampaignID     int64 `json:"campaign_id" gorm:"uniqueIndex:uq_room_campaign;not null"`
	CurrentAct     int   `json:"current_act" gorm:"default:1"`
	CurrentChapter int   `json:"current_chapter" gorm:"default:1"`
	CurrentScene   int   `json:"current_scene" gorm:"default:1"`
	CurrentSceneID int64 `json:"current_scene_id"`

	Karma            int               `json:"karma" gorm:"default:50"`
	DecisionsMade    map[string]string `json:"decisions_made" gorm:"type:jsonb;serializer:json"`
	StoryFlags       map[string]bool   `json:"story_flags" gorm:"type:jsonb;serializer:json"`
	RevealedClues    []string          `json:"revealed_clues" gorm:"type:jsonb;serializer:json"`
	FactionStandings map[string]int    `json:"faction_standings" gorm:"type:jsonb;serializer:json"`

	PendingDecisionCode      string `json:"pending_decision_code,omitempty" gorm:"type:varchar(64)"`
	PendingDecisionTurnsLeft int    `json:"pending_decision_turns_left,omitempty"`

	SideStoriesCompleted []string `json:"side_stories_completed" gorm:"type:jsonb;serializer:json"`

	StartedAt time.Time `json:"started_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (RoomProgress) TableName() string {
	return "room_campaign_progress"
}

// NewRoomProgress 创建初始进度，指向第一幕第一章第一场
func NewRoomProgress(roomID, campaignID, firstSceneID int64, defaultKarma int) *RoomProgress {
	now := time.Now()
	return &RoomProgress{
		RoomID:           roomID,
		CampaignID:       campaignID,
		CurrentAct:       1,
		CurrentChapter:   1,
		CurrentScene:     1,
		CurrentSceneID:   firstSceneID,
		Karma:            clampKarma(defaultKarma),
		DecisionsMade:    map[string]string{},
		StoryFlags:       map[string]bool{},
		RevealedClues:    []string{},
		FactionStandings: map[string]int{},
		StartedAt:        now,
		UpdatedAt:        now,
	}
}

func clampKarma(v int) int {
	if v < KarmaMin {
		return KarmaMin
	}
	if v > KarmaMax {
		return KarmaMax
	}
	return v
}

// ApplyKarma 应用业力变化并钳制到 [0,100]，返回实际生效的变化量
func (p *RoomProgress) ApplyKarma(delta int) int {
	before := p.Karma
	p.Karma = clampKarma(p.Karma + delta)
	p.UpdatedAt = time.Now()
	return p.Karma - before
}

// SetFlag 设置剧情旗标
func (p *RoomProgress) SetFlag(flag string) {
	if p.StoryFlags == nil {
		p.StoryFlags = map[string]bool{}
	}
	p.StoryFlags[flag] = true
	p.UpdatedAt = time.Now()
}

// HasFlag 检查旗标是否已设置
func (p *RoomProgress) HasFlag(flag string) bool {
	return p.StoryFlags[flag]
}

// RevealClue 记录线索揭示，重复揭示不产生变化
func (p *RoomProgress) RevealClue(code string) bool {
	for _, c := range p.RevealedClues {
		if c == code {
			return false
		}
	}
	p.RevealedClues = append(p.RevealedClues, code)
	p.UpdatedAt = time.Now()
	return true
}

// ClueRevealed 检查线索是否已揭示
func (p *RoomProgress) ClueRevealed(code string) bool {
	for _, c := range p.RevealedClues {
		if c == code {
			return true
		}
	}
	return false
}

// RecordDecision 记录决策结果，已记录过则返回 false（幂等）
func (p *RoomProgress) RecordDecision(code, optionID string) bool {
	if p.DecisionsMade == nil {
		p.DecisionsMade = map[string]string{}
	}
	if _, ok := p.DecisionsMade[code]; ok {
		return false
	}
	p.DecisionsMade[code] = optionID
	p.UpdatedAt = time.Now()
	return true
}

// DecisionResolved 检查决策是否已解析
func (p *RoomProgress) DecisionResolved(code string) bool {
	_, ok := p.DecisionsMade[code]
	return ok
}

// AdjustFaction 调整阵营立场
func (p *RoomProgress) AdjustFaction(faction string, delta int) {
	if p.FactionStandings == nil {
		p.FactionStandings = map[string]int{}
	}
	p.FactionStandings[faction] += delta
	p.UpdatedAt = time.Now()
}

// SetPendingDecision 激活待决策
func (p *RoomProgress) SetPendingDecision(code string, timeoutTurns int) {
	p.PendingDecisionCode = code
	p.PendingDecisionTurnsLeft = timeoutTurns
	p.UpdatedAt = time.Now()
}

// ClearPendingDecision 清除待决策
func (p *RoomProgress) ClearPendingDecision() {
	p.PendingDecisionCode = ""
	p.PendingDecisionTurnsLeft = 0
	p.UpdatedAt = time.Now()
}

// TickPendingDecision 待决策回合数减一，归零时返回 true（应触发默认选项）
func (p *RoomProgress) TickPendingDecision() bool {
	if p.PendingDecisionCode == "" || p.PendingDecisionTurnsLeft <= 0 {
		return false
	}
	p.PendingDecisionTurnsLeft--
	p.UpdatedAt = time.Now()
	return p.PendingDecisionTurnsLeft == 0
}

// CompleteSideStory 记录支线完成，重复完成返回 false
func (p *RoomProgress) CompleteSideStory(code string) bool {
	for _, s := range p.SideStoriesCompleted {
		if s == code {
			return false
		}
	}
	p.SideStoriesCompleted = append(p.SideStoriesCompleted, code)
	p.UpdatedAt = time.Now()
	return true
}
