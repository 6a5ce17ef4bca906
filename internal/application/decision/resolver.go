// Package decision 实现决策解析与分支条件求值
package decision

import (
	"strconv"
	"strings"

	"story-engine-api/internal/domain/entity"
	"story-engine-api/pkg/errors"
)

// State 条件求值所需的进度快照
type State struct {
	Karma     int
	Flags     map[string]bool
	Decisions map[string]string
}

// Outcome 决策解析结果，由调用方负责持久化
type Outcome struct {
	DecisionCode   string         `json:"decision_code"`
	OptionID       string         `json:"option_id"`
	NewFlags       []string       `json:"new_flags,omitempty"`
	KarmaEffect    int            `json:"karma_effect"`
	NPCEffects     map[string]int `json:"npc_effects,omitempty"`
	FactionEffects map[string]int `json:"faction_effects,omitempty"`
	NextSceneID    int64          `json:"next_scene_id,omitempty"`
	SideStory      string         `json:"side_story,omitempty"`
}

// factionPrefix npcEffects 中阵营条目的键前缀
const factionPrefix = "faction:"

// Resolve 解析一次决策选择；选项不存在时返回 InvalidOption，
// 不修改任何入参。隐式与显式决策共用此路径。
func Resolve(d *entity.Decision, optionID string, scene *entity.Scene, state State) (*Outcome, error) {
	opt, ok := d.Option(optionID)
	if !ok {
		return nil, errors.New(errors.CodeInvalidOption, "option not declared for decision").WithDetail(optionID)
	}

	outcome := &Outcome{
		DecisionCode: d.Code,
		OptionID:     opt.ID,
		NewFlags:     append([]string(nil), opt.ConsequenceFlags...),
		KarmaEffect:  opt.KarmaEffect,
		SideStory:    opt.UnlocksSideStory,
	}

	for target, delta := range opt.NPCEffects {
		if strings.HasPrefix(target, factionPrefix) {
			if outcome.FactionEffects == nil {
				outcome.FactionEffects = map[string]int{}
			}
			outcome.FactionEffects[strings.TrimPrefix(target, factionPrefix)] = delta
			continue
		}
		if outcome.NPCEffects == nil {
			outcome.NPCEffects = map[string]int{}
		}
		outcome.NPCEffects[target] = delta
	}

	// 场景推进：选项显式指定的下一场优先，其次分支触发器，最后默认场
	next := State{
		Karma:     state.Karma + opt.KarmaEffect,
		Flags:     mergedFlags(state.Flags, outcome.NewFlags),
		Decisions: mergedDecisions(state.Decisions, d.Code, opt.ID),
	}
	switch {
	case opt.NextSceneID != 0:
		outcome.NextSceneID = opt.NextSceneID
	case scene != nil:
		outcome.NextSceneID = NextScene(scene, next)
	}
	return outcome, nil
}

func mergedFlags(flags map[string]bool, added []string) map[string]bool {
	merged := make(map[string]bool, len(flags)+len(added))
	for f, v := range flags {
		merged[f] = v
	}
	for _, f := range added {
		merged[f] = true
	}
	return merged
}

func mergedDecisions(decisions map[string]string, code, option string) map[string]string {
	merged := make(map[string]string, len(decisions)+1)
	for c, o := range decisions {
		merged[c] = o
	}
	merged[code] = option
	return merged
}

// NextScene 求值场景分支：返回第一个全部条件满足的触发器目标，
// 没有命中时回落到默认下一场。
func NextScene(scene *entity.Scene, state State) int64 {
	for _, trigger := range scene.BranchTriggers {
		if EvalAll(trigger.Conditions, state) {
			return trigger.NextSceneID
		}
	}
	return scene.NextSceneDefault
}

// EvalAll 条件按 AND 组合，空条件列表视为满足
func EvalAll(conditions []string, state State) bool {
	for _, cond := range conditions {
		if !Eval(cond, state) {
			return false
		}
	}
	return true
}

// Eval 求值单个条件表达式。支持的文法：
//
//	flag:<name>
//	karma>=<n>
//	karma<<n>
//	decision:<code>:<option>
//
// 无法识别的表达式视为不满足。
func Eval(condition string, state State) bool {
	condition = strings.TrimSpace(condition)

	switch {
	case strings.HasPrefix(condition, "flag:"):
		return state.Flags[strings.TrimPrefix(condition, "flag:")]

	case strings.HasPrefix(condition, "karma>="):
		n, err := strconv.Atoi(strings.TrimPrefix(condition, "karma>="))
		return err == nil && state.Karma >= n

	case strings.HasPrefix(condition, "karma<"):
		n, err := strconv.Atoi(strings.TrimPrefix(condition, "karma<"))
		return err == nil && state.Karma < n

	case strings.HasPrefix(condition, "decision:"):
		parts := strings.SplitN(strings.TrimPrefix(condition, "decision:"), ":", 2)
		if len(parts) != 2 {
			return false
		}
		return state.Decisions[parts[0]] == parts[1]

	default:
		return false
	}
}

// FirstSatisfiedHidden 返回第一个条件满足且尚未解析的隐式决策。
// 调用方在每个变更回合后执行该检查，借助 decisionsMade 保证幂等。
func FirstSatisfiedHidden(hidden []*entity.Decision, state State) *entity.Decision {
	for _, d := range hidden {
		if !d.IsHidden {
			continue
		}
		if _, resolved := state.Decisions[d.Code]; resolved {
			continue
		}
		if len(d.HiddenConditions) == 0 {
			continue
		}
		if EvalAll(d.HiddenConditions, state) {
			return d
		}
	}
	return nil
}
