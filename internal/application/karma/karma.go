// Package karma 提供业力等级与阵营立场的纯计算
package karma

import (
	"fmt"
	"sort"

	"story-engine-api/internal/domain/entity"
)

// Level 业力等级
type Level string

const (
	LevelHeroic    Level = "heroic"
	LevelHonorable Level = "honorable"
	LevelNeutral   Level = "neutral"
	LevelDubious   Level = "dubious"
	LevelInfamous  Level = "infamous"
)

// levelBucket 等级区间定义，五档覆盖 [0,100]
type levelBucket struct {
	low, high int
	level     Level
	desc      string
}

var levelBuckets = []levelBucket{
	{80, 100, LevelHeroic, "living legend, a symbol of hope"},
	{60, 79, LevelHonorable, "respected defender of good"},
	{40, 59, LevelNeutral, "pragmatic, neither hero nor villain"},
	{20, 39, LevelDubious, "questionable, motives under suspicion"},
	{0, 19, LevelInfamous, "feared and despised"},
}

// LevelFor 返回业力值对应的等级与描述
func LevelFor(karma int) (Level, string) {
	if karma < entity.KarmaMin {
		karma = entity.KarmaMin
	}
	if karma > entity.KarmaMax {
		karma = entity.KarmaMax
	}
	for _, b := range levelBuckets {
		if karma >= b.low && karma <= b.high {
			return b.level, b.desc
		}
	}
	return LevelNeutral, "unknown standing"
}

// ActionValues 业力动作基准值表，分析器与决策共用
var ActionValues = map[string]int{
	"helped_innocent":    10,
	"showed_mercy":       15,
	"kept_promise":       10,
	"donated_to_poor":    12,
	"exposed_corruption": 20,
	"saved_life":         25,
	"protected_weak":     15,
	"told_truth":         5,
	"forgave_enemy":      20,
	"self_sacrifice":     30,

	"lied_for_gain":   -5,
	"stole":           -8,
	"killed_unarmed":  -20,
	"betrayed_ally":   -30,
	"broke_promise":   -15,
	"tortured":        -25,
	"killed_innocent": -40,
	"abandoned_ally":  -20,
	"blackmailed":     -15,
	"poisoned":        -20,
}

// 等级对应的模型提示语
var levelContexts = map[Level]string{
	LevelHeroic: "The party is known as legendary heroes. People recognize them, " +
		"offer help freely, and enemies fear them. NPCs volunteer information and aid.",
	LevelHonorable: "The party has a good reputation. People trust them and are " +
		"willing to help; merchants offer discounts and guards are cordial.",
	LevelNeutral: "The party is relatively unknown or has a mixed reputation. " +
		"People treat them with ordinary caution; trust must be earned NPC by NPC.",
	LevelDubious: "The party has a bad name. People distrust them, prices run " +
		"higher, and guards keep watch. Some NPCs refuse to speak with them.",
	LevelInfamous: "The party is feared and hated. Citizens flee or call the " +
		"guards; only criminals deal with them, and bounties circulate in some regions.",
}

// ContextForModel 生成业力声望的模型提示段落
func ContextForModel(karma int) string {
	level, _ := LevelFor(karma)
	return levelContexts[level]
}

// FactionLabel 阵营立场标签
func FactionLabel(standing int) string {
	switch {
	case standing >= 80:
		return "allied"
	case standing >= 60:
		return "favorable"
	case standing >= 40:
		return "neutral"
	case standing >= 20:
		return "unfavorable"
	default:
		return "hostile"
	}
}

// FactionContext 生成各阵营立场的模型提示，按阵营名排序保证确定性
func FactionContext(standings map[string]int) []string {
	if len(standings) == 0 {
		return nil
	}
	factions := make([]string, 0, len(standings))
	for f := range standings {
		factions = append(factions, f)
	}
	sort.Strings(factions)

	lines := make([]string, 0, len(factions))
	for _, f := range factions {
		lines = append(lines, fmt.Sprintf("%s: %s (%d/100)", f, FactionLabel(standings[f]), standings[f]))
	}
	return lines
}
