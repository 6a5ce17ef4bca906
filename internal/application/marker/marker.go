// Package marker 实现模型回复中控制标记的解析、校验与剥离。
// 模型输出视为不可信输入：未知或畸形标记静默丢弃，绝不中断回合。
package marker

import (
	"regexp"
	"strconv"
	"strings"

	"story-engine-api/internal/domain/entity"
)

// Kind 标记类型
type Kind string

const (
	KindKarma        Kind = "KARMA"
	KindNPCReact     Kind = "NPC_REACT"
	KindClueRevealed Kind = "CLUE_REVEALED"
	KindDecision     Kind = "DECISION"
	KindHP           Kind = "HP"
	KindItem         Kind = "ITEM"
)

// DropReason 丢弃原因，对应 marker_dropped_total 的标签
type DropReason string

const (
	DropMalformed     DropReason = "malformed"
	DropUnknownKind   DropReason = "unknown_kind"
	DropInvalidTarget DropReason = "invalid_target"
)

// Effect 一条已解析的标记效果
type Effect struct {
	Kind Kind   `json:"kind"`
	Raw  string `json:"raw"`

	Delta        int                   `json:"delta,omitempty"`
	NPCCode      string                `json:"npc_code,omitempty"`
	State        entity.EmotionalState `json:"state,omitempty"`
	Reason       string                `json:"reason,omitempty"`
	ClueCode     string                `json:"clue_code,omitempty"`
	DecisionCode string                `json:"decision_code,omitempty"`
	ItemName     string                `json:"item_name,omitempty"`
	ItemGain     bool                  `json:"item_gain,omitempty"`
}

// Dropped 被丢弃的标记
type Dropped struct {
	Raw    string     `json:"raw"`
	Reason DropReason `json:"reason"`
}

// Result 一次解析的完整结果
type Result struct {
	Effects   []Effect  `json:"effects"`
	Dropped   []Dropped `json:"dropped"`
	CleanText string    `json:"clean_text"`
}

// tokenRe 匹配任何形如 [KIND:payload] 的标记，无论是否合法都会被剥离
var tokenRe = regexp.MustCompile(`\[([A-Z_]+):([^\[\]]*)\]`)

// 载荷片段的合法格式
var (
	deltaRe = regexp.MustCompile(`^[+-]?\d+$`)
	codeRe  = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
)

var validStates = map[entity.EmotionalState]bool{
	entity.EmotionNeutral:    true,
	entity.EmotionFriendly:   true,
	entity.EmotionHappy:      true,
	entity.EmotionGrateful:   true,
	entity.EmotionCautious:   true,
	entity.EmotionSuspicious: true,
	entity.EmotionFearful:    true,
	entity.EmotionAngry:      true,
	entity.EmotionHostile:    true,
	entity.EmotionBetrayed:   true,
}

// Parse 扫描模型文本，提取合法标记并剥离所有标记形状的片段。
// 返回的 CleanText 保证不再含有任何标记语法。
func Parse(text string) Result {
	var result Result

	matches := tokenRe.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		raw, kind, payload := m[0], Kind(m[1]), m[2]

		effect, reason := parseOne(kind, payload)
		if reason != "" {
			result.Dropped = append(result.Dropped, Dropped{Raw: raw, Reason: reason})
			continue
		}
		effect.Raw = raw
		result.Effects = append(result.Effects, effect)
	}

	result.CleanText = strip(text)
	return result
}

func parseOne(kind Kind, payload string) (Effect, DropReason) {
	switch kind {
	case KindKarma, KindHP:
		if !deltaRe.MatchString(payload) {
			return Effect{}, DropMalformed
		}
		delta, err := strconv.Atoi(payload)
		if err != nil {
			return Effect{}, DropMalformed
		}
		return Effect{Kind: kind, Delta: delta}, ""

	case KindNPCReact:
		parts := strings.SplitN(payload, ":", 3)
		if len(parts) < 2 {
			return Effect{}, DropMalformed
		}
		code, state := parts[0], entity.EmotionalState(strings.ToLower(parts[1]))
		if !codeRe.MatchString(code) || !validStates[state] {
			return Effect{}, DropMalformed
		}
		effect := Effect{Kind: kind, NPCCode: code, State: state}
		if len(parts) == 3 {
			effect.Reason = strings.TrimSpace(parts[2])
		}
		return effect, ""

	case KindClueRevealed:
		if !codeRe.MatchString(payload) {
			return Effect{}, DropMalformed
		}
		return Effect{Kind: kind, ClueCode: payload}, ""

	case KindDecision:
		if !codeRe.MatchString(payload) {
			return Effect{}, DropMalformed
		}
		return Effect{Kind: kind, DecisionCode: payload}, ""

	case KindItem:
		if len(payload) < 2 || (payload[0] != '+' && payload[0] != '-') {
			return Effect{}, DropMalformed
		}
		name := strings.TrimSpace(payload[1:])
		if name == "" {
			return Effect{}, DropMalformed
		}
		return Effect{Kind: kind, ItemName: name, ItemGain: payload[0] == '+'}, ""

	default:
		return Effect{}, DropUnknownKind
	}
}

var multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)

// strip 剥离全部标记形状的片段并整理多余空白
func strip(text string) string {
	cleaned := tokenRe.ReplaceAllString(text, "")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
