// Package twist 管理转折揭示时机与铺垫提示
package twist

import (
	"sort"

	"story-engine-api/internal/domain/entity"
)

// Hint 铺垫提示
type Hint struct {
	TwistCode string `json:"twist_code"`
	Content   string `json:"content"`
	Priority  int    `json:"priority"`
}

// State 计算所需的房间状态快照
type State struct {
	CurrentAct    int
	RevealedClues []string
	TensionLevel  entity.TensionLevel
	// Foreshadowed 记录各转折已给出的铺垫次数
	Foreshadowed map[string]int
}

var tensionBonuses = map[entity.TensionLevel]float64{
	entity.TensionCalm:     0.0,
	entity.TensionNormal:   0.05,
	entity.TensionElevated: 0.1,
	entity.TensionHigh:     0.15,
	entity.TensionClimax:   0.2,
}

// Engine 转折引擎，围绕线索目录的纯计算
type Engine struct {
	maxHints  int
	threshold float64
}

// NewEngine 创建转折引擎
func NewEngine(maxHints int, threshold float64) *Engine {
	if maxHints <= 0 {
		maxHints = 3
	}
	if threshold <= 0 {
		threshold = 0.7
	}
	return &Engine{maxHints: maxHints, threshold: threshold}
}

// groupByTwist 按 relatedTwist 聚合线索
func groupByTwist(clues []*entity.Clue) map[string][]*entity.Clue {
	groups := make(map[string][]*entity.Clue)
	for _, c := range clues {
		if c.RelatedTwist == "" {
			continue
		}
		groups[c.RelatedTwist] = append(groups[c.RelatedTwist], c)
	}
	return groups
}

// Readiness 计算某个转折的揭示就绪度：
// 0.4×线索进度 + 0.2×铺垫进度 + 0.2×紧张度 + 0.2×幕推进。
func (e *Engine) Readiness(twistCode string, clues []*entity.Clue, state State) float64 {
	group := groupByTwist(clues)[twistCode]
	if len(group) == 0 {
		return 0
	}

	revealed := make(map[string]bool, len(state.RevealedClues))
	for _, c := range state.RevealedClues {
		revealed[c] = true
	}

	found := 0
	minAct := group[0].RevealAct
	for _, c := range group {
		if revealed[c.Code] {
			found++
		}
		if c.RevealAct < minAct {
			minAct = c.RevealAct
		}
	}

	score := float64(found) / float64(len(group)) * 0.4

	foreshadowCount := state.Foreshadowed[twistCode]
	foreshadowRatio := float64(foreshadowCount) / 3
	if foreshadowRatio > 1 {
		foreshadowRatio = 1
	}
	score += foreshadowRatio * 0.2

	score += tensionBonuses[state.TensionLevel]

	if state.CurrentAct > minAct {
		actBonus := float64(state.CurrentAct-minAct) * 0.1
		if actBonus > 0.2 {
			actBonus = 0.2
		}
		score += actBonus
	}
	return score
}

// Ready 转折是否达到揭示阈值
func (e *Engine) Ready(twistCode string, clues []*entity.Clue, state State) bool {
	return e.Readiness(twistCode, clues, state) >= e.threshold
}

// ForeshadowHints 生成未揭示转折的铺垫提示，按优先级降序，至多 maxHints 条。
// 已就绪（应直接揭示）的转折不再铺垫。
func (e *Engine) ForeshadowHints(clues []*entity.Clue, state State) []Hint {
	revealed := make(map[string]bool, len(state.RevealedClues))
	for _, c := range state.RevealedClues {
		revealed[c] = true
	}

	groups := groupByTwist(clues)
	twists := make([]string, 0, len(groups))
	for code := range groups {
		twists = append(twists, code)
	}
	sort.Strings(twists)

	var hints []Hint
	for _, code := range twists {
		group := groups[code]

		minAct := group[0].RevealAct
		for _, c := range group {
			if c.RevealAct < minAct {
				minAct = c.RevealAct
			}
		}
		// 只铺垫近一两幕内的转折
		if minAct > state.CurrentAct+2 {
			continue
		}
		if e.Ready(code, clues, state) {
			continue
		}

		found := 0
		for _, c := range group {
			if revealed[c.Code] {
				found++
			}
		}
		progress := float64(found) / float64(len(group))

		for _, c := range group {
			if c.ForeshadowHint == "" || revealed[c.Code] {
				continue
			}
			hints = append(hints, Hint{
				TwistCode: code,
				Content:   c.ForeshadowHint,
				Priority:  int(5 * (0.5 + progress*0.5) * 2),
			})
		}
	}

	sort.SliceStable(hints, func(i, j int) bool { return hints[i].Priority > hints[j].Priority })
	if len(hints) > e.maxHints {
		hints = hints[:e.maxHints]
	}
	return hints
}
