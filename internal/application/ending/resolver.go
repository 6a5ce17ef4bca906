// Package ending 计算结局概率分布，只读且无副作用
package ending

import (
	"sort"

	"story-engine-api/internal/application/decision"
	"story-engine-api/internal/domain/entity"
)

// 评分权重：基础分 + 旗标按比例计分 + 业力达标奖励 + 决策约束按比例计分
const (
	baseScore      = 10.0
	flagWeight     = 50.0
	karmaBonus     = 20.0
	decisionWeight = 20.0
)

// score 计算单个结局的原始得分。
// 部分满足按比例给分；完全不沾边的结局得 0，从而不进入分布。
func score(e *entity.Ending, state decision.State) float64 {
	req := e.Requirements
	credit := 0.0
	hasRequirements := false

	if len(req.Flags) > 0 {
		hasRequirements = true
		matched := 0
		for _, f := range req.Flags {
			if state.Flags[f] {
				matched++
			}
		}
		credit += flagWeight * float64(matched) / float64(len(req.Flags))
	}

	if req.KarmaMin != nil {
		hasRequirements = true
		if state.Karma >= *req.KarmaMin {
			credit += karmaBonus
		}
	}

	if len(req.Decisions) > 0 {
		hasRequirements = true
		matched := 0
		for code, option := range req.Decisions {
			if state.Decisions[code] == option {
				matched++
			}
		}
		credit += decisionWeight * float64(matched) / float64(len(req.Decisions))
	}

	// 无任何要求的结局始终部分在望；有要求但零命中的结局不计分
	if !hasRequirements {
		return baseScore
	}
	if credit == 0 {
		return 0
	}
	return baseScore + credit
}

// Calculate 计算各结局的整数百分比分布。
// 非空结果恒等于 100；零总分（无结局哪怕部分满足）返回空映射。
func Calculate(endings []*entity.Ending, state decision.State) map[string]int {
	if len(endings) == 0 {
		return map[string]int{}
	}

	type scored struct {
		code string
		raw  float64
	}
	scores := make([]scored, 0, len(endings))
	total := 0.0
	for _, e := range endings {
		raw := score(e, state)
		scores = append(scores, scored{code: e.Code, raw: raw})
		total += raw
	}
	if total == 0 {
		return map[string]int{}
	}

	// 同分时按代码排序，保证余数归属确定
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].raw != scores[j].raw {
			return scores[i].raw > scores[j].raw
		}
		return scores[i].code < scores[j].code
	})

	result := make(map[string]int, len(scores))
	sum := 0
	for _, s := range scores {
		pct := int(s.raw / total * 100)
		result[s.code] = pct
		sum += pct
	}

	// 取整余数归给最高分结局，避免漂移
	if remainder := 100 - sum; remainder > 0 {
		result[scores[0].code] += remainder
	}

	// 零分结局不出现在分布里
	for code, pct := range result {
		if pct == 0 {
			delete(result, code)
		}
	}
	return result
}
