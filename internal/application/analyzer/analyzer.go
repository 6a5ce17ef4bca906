// Package analyzer 对玩家输入做纯文本动作分析，不调用模型
package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"story-engine-api/internal/application/karma"
)

// ActionType 动作类型
type ActionType string

const (
	ActionDialogue      ActionType = "dialogue"
	ActionCombat        ActionType = "combat"
	ActionStealth       ActionType = "stealth"
	ActionExploration   ActionType = "exploration"
	ActionInvestigation ActionType = "investigation"
	ActionSocial        ActionType = "social"
	ActionMagic         ActionType = "magic"
	ActionItemUse       ActionType = "item_use"
	ActionRest          ActionType = "rest"
	ActionTravel        ActionType = "travel"
	ActionUnclassified  ActionType = "unclassified"
)

// MoralAlignment 道德倾向
type MoralAlignment string

const (
	AlignHeroic     MoralAlignment = "heroic"
	AlignGood       MoralAlignment = "good"
	AlignNeutral    MoralAlignment = "neutral"
	AlignSelfish    MoralAlignment = "selfish"
	AlignVillainous MoralAlignment = "villainous"
)

// KarmaAction 检测到的业力动作
type KarmaAction struct {
	Code   string `json:"code"`
	Amount int    `json:"amount"`
}

// Request 分析输入
type Request struct {
	Message    string
	Character  string
	ActiveNPCs []string
	SceneType  string
}

// Analysis 分析结果，纯粹的建议性输出
type Analysis struct {
	Intent          ActionType        `json:"intent"`
	Alignment       MoralAlignment    `json:"alignment"`
	Confidence      float64           `json:"confidence"`
	KarmaDelta      int               `json:"karma_delta"`
	KarmaActions    []KarmaAction     `json:"karma_actions,omitempty"`
	TargetNPC       string            `json:"target_npc,omitempty"`
	NPCInteractions map[string]string `json:"npc_interactions,omitempty"`
	Coherence       float64           `json:"coherence"`
}

var actionPatterns = map[ActionType][]*regexp.Regexp{
	ActionDialogue: compileAll(
		`\b(talk|speak|say|tell|ask|answer|reply|whisper|shout)\b`,
		`^".*"$`,
	),
	ActionCombat: compileAll(
		`\b(attack|strike|hit|shoot|stab|fight|charge|defend)\b`,
		`\b(sword|bow|axe|dagger|blade)\b`,
	),
	ActionStealth: compileAll(
		`\b(sneak|hide|shadow|stealth|slip|pickpocket|infiltrate)\b`,
		`\bwithout being seen\b`,
	),
	ActionExploration: compileAll(
		`\b(explore|look around|examine|search|inspect|scout)\b`,
		`\b(room|area|chamber|corridor)\b`,
	),
	ActionInvestigation: compileAll(
		`\b(investigate|study|analyze|decipher|read)\b`,
		`\b(clue|evidence|document|letter)\b`,
	),
	ActionSocial: compileAll(
		`\b(persuade|intimidate|deceive|seduce|negotiate|convince|bargain)\b`,
	),
	ActionMagic: compileAll(
		`\b(cast|spell|conjure|summon|channel|ritual|magic)\b`,
	),
	ActionItemUse: compileAll(
		`\b(use|drink|eat|equip|apply)\b.*\b(potion|item|weapon|armor|scroll)\b`,
	),
	ActionRest: compileAll(
		`\b(rest|sleep|wait|camp|sit)\b`,
	),
	ActionTravel: compileAll(
		`\b(go|walk|travel|head|run|flee|ride)\b`,
		`\b(north|south|east|west|towards|toward)\b`,
	),
}

var moralPatterns = map[MoralAlignment][]*regexp.Regexp{
	AlignHeroic: compileAll(
		`\b(save|protect|defend|rescue|sacrifice)\b`,
		`\b(innocent|weak|helpless|defenseless)\b`,
		`\b(justice|honor|truth)\b`,
	),
	AlignGood: compileAll(
		`\b(help|share|donate|forgive|heal)\b`,
		`\b(kind|gentle|generous|compassionate)\b`,
	),
	AlignSelfish: compileAll(
		`\b(steal|cheat|lie|blackmail|bribe|extort)\b`,
		`\b(for myself|my own gain|my profit)\b`,
	),
	AlignVillainous: compileAll(
		`\b(kill|murder|torture|destroy|betray)\b.*\b(innocent|unarmed|helpless|defenseless)\b`,
		`\b(cruelty|blind vengeance)\b`,
	),
}

var karmaPatterns = map[string][]*regexp.Regexp{
	"helped_innocent": compileAll(
		`\b(help|save|protect|defend)\b.*\b(innocent|civilian|child|elder|weak)\b`,
	),
	"showed_mercy": compileAll(
		`\b(spare|show mercy|let .* go|stay my hand)\b`,
		`\b(mercy|clemency|compassion)\b`,
	),
	"kept_promise": compileAll(
		`\b(keep|honor|fulfill)\b.*\b(promise|word|oath|vow)\b`,
	),
	"donated_to_poor": compileAll(
		`\b(give|donate|share)\b.*\b(poor|beggar|needy)\b`,
		`\b(charity|alms)\b`,
	),
	"lied_for_gain": compileAll(
		`\b(lie|deceive)\b.*\b(to get|for|gain|profit)\b`,
	),
	"stole": compileAll(
		`\b(steal|rob|pickpocket|swipe)\b`,
	),
	"killed_unarmed": compileAll(
		`\b(kill|execute|slay)\b.*\b(unarmed|defenseless|surrendered)\b`,
	),
	"betrayed_ally": compileAll(
		`\b(betray|abandon|sell out)\b.*\b(ally|companion|friend)\b`,
	),
	"broke_promise": compileAll(
		`\b(break|go back on)\b.*\b(promise|word|oath|vow)\b`,
	),
}

var interactionPatterns = map[string][]*regexp.Regexp{
	"friendly":      compileAll(`\b(kindly|politely|warmly|respectfully|smile)\b`),
	"hostile":       compileAll(`\b(threaten|menace|aggressive|hostile|contempt)\b`),
	"deceptive":     compileAll(`\b(lie to|deceive|mislead|hide the truth from)\b`),
	"confrontation": compileAll(`\b(confront|accuse|demand|challenge)\b`),
	"seductive":     compileAll(`\b(seduce|flirt|charm)\b`),
	"professional":  compileAll(`\b(formally|professionally|business)\b`),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Analyzer 动作分析器，无状态且并发安全
type Analyzer struct{}

// NewAnalyzer 创建动作分析器
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze 分析玩家输入；空消息或无法识别时回落到 unclassified/0
func (a *Analyzer) Analyze(req Request) Analysis {
	message := strings.ToLower(strings.TrimSpace(req.Message))
	if message == "" {
		return Analysis{
			Intent:     ActionUnclassified,
			Alignment:  AlignNeutral,
			Confidence: 0,
			Coherence:  1.0,
		}
	}

	intent, typeConfidence := classifyAction(message)
	alignment, alignConfidence := classifyAlignment(message)
	karmaActions, karmaDelta := detectKarmaActions(message)
	target := detectTargetNPC(message, req.ActiveNPCs)
	interactions := detectInteractions(message, target)
	coherence := evaluateCoherence(intent, req.SceneType)

	return Analysis{
		Intent:          intent,
		Alignment:       alignment,
		Confidence:      (typeConfidence + alignConfidence) / 2,
		KarmaDelta:      karmaDelta,
		KarmaActions:    karmaActions,
		TargetNPC:       target,
		NPCInteractions: interactions,
		Coherence:       coherence,
	}
}

func classifyAction(message string) (ActionType, float64) {
	var best ActionType
	bestScore := 0.0

	// 遍历顺序固定，保证同分时结果确定
	types := make([]ActionType, 0, len(actionPatterns))
	for t := range actionPatterns {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, t := range types {
		patterns := actionPatterns[t]
		matches := 0
		for _, p := range patterns {
			if p.MatchString(message) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		score := float64(matches) / float64(len(patterns))
		if score > bestScore {
			best, bestScore = t, score
		}
	}

	if bestScore == 0 {
		return ActionUnclassified, 0.5
	}
	confidence := bestScore * 2
	if confidence > 1.0 {
		confidence = 1.0
	}
	return best, confidence
}

func classifyAlignment(message string) (MoralAlignment, float64) {
	var best MoralAlignment
	bestMatches := 0

	aligns := make([]MoralAlignment, 0, len(moralPatterns))
	for al := range moralPatterns {
		aligns = append(aligns, al)
	}
	sort.Slice(aligns, func(i, j int) bool { return aligns[i] < aligns[j] })

	for _, al := range aligns {
		matches := 0
		for _, p := range moralPatterns[al] {
			if p.MatchString(message) {
				matches++
			}
		}
		if matches > bestMatches {
			best, bestMatches = al, matches
		}
	}

	if bestMatches == 0 {
		return AlignNeutral, 0.8
	}
	confidence := float64(bestMatches)*0.3 + 0.5
	if confidence > 1.0 {
		confidence = 1.0
	}
	return best, confidence
}

func detectKarmaActions(message string) ([]KarmaAction, int) {
	var actions []KarmaAction
	total := 0

	codes := make([]string, 0, len(karmaPatterns))
	for code := range karmaPatterns {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		for _, p := range karmaPatterns[code] {
			if p.MatchString(message) {
				amount := karma.ActionValues[code]
				actions = append(actions, KarmaAction{Code: code, Amount: amount})
				total += amount
				break
			}
		}
	}
	return actions, total
}

func detectTargetNPC(message string, activeNPCs []string) string {
	for _, code := range activeNPCs {
		if code == "" {
			continue
		}
		if strings.Contains(message, strings.ToLower(code)) {
			return code
		}
	}
	return ""
}

func detectInteractions(message, target string) map[string]string {
	if target == "" {
		return nil
	}

	kinds := make([]string, 0, len(interactionPatterns))
	for k := range interactionPatterns {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		for _, p := range interactionPatterns[kind] {
			if p.MatchString(message) {
				return map[string]string{target: kind}
			}
		}
	}
	return map[string]string{target: "neutral"}
}

// 场景类型与动作的契合度评估，只影响建议性置信度
func evaluateCoherence(intent ActionType, sceneType string) float64 {
	if sceneType == "" {
		return 1.0
	}

	expected := map[string][]ActionType{
		"narrative":  {ActionDialogue, ActionExploration},
		"combat":     {ActionCombat, ActionMagic},
		"puzzle":     {ActionInvestigation, ActionItemUse},
		"social":     {ActionDialogue, ActionSocial},
		"revelation": {ActionDialogue, ActionInvestigation},
		"decision":   {ActionDialogue},
	}

	for _, t := range expected[sceneType] {
		if t == intent {
			return 1.0
		}
	}
	if intent == ActionDialogue || intent == ActionUnclassified {
		return 0.9
	}
	if intent == ActionCombat && sceneType != "combat" {
		return 0.6
	}
	if intent == ActionStealth && sceneType == "social" {
		return 0.7
	}
	return 0.8
}
