// Package npcbrain 基于性格特质模拟 NPC 的情绪与反应
package npcbrain

import (
	"story-engine-api/internal/domain/entity"
)

// Reaction NPC 对单次玩家动作的反应
type Reaction struct {
	NPCCode            string                `json:"npc_code"`
	RelationshipChange int                   `json:"relationship_change"`
	TrustChange        int                   `json:"trust_change"`
	NewEmotion         entity.EmotionalState `json:"new_emotion"`
	RevealsSecret      string                `json:"reveals_secret,omitempty"`
	TriggersBetrayal   bool                  `json:"triggers_betrayal"`
	TriggersRedemption bool                  `json:"triggers_redemption"`
}

// baseReaction 动作类型的基准关系/信任变化
type baseReaction struct {
	relationship int
	trust        int
}

var baseReactions = map[string]baseReaction{
	"friendly":  {5, 3},
	"helped":    {10, 8},
	"gift":      {8, 5},
	"defended":  {15, 12},
	"saved":     {25, 20},
	"trusted":   {5, 10},
	"honest":    {3, 8},
	"respected": {5, 3},

	"hostile":    {-5, -5},
	"insulted":   {-8, -5},
	"threatened": {-10, -15},
	"attacked":   {-20, -25},
	"lied":       {-5, -15},
	"stole":      {-15, -20},
	"betrayed":   {-30, -40},

	"neutral":      {0, 0},
	"professional": {1, 2},
	"distant":      {-2, -1},

	"confrontation": {-5, 0},
	"seductive":     {5, -2},
	"deceptive":     {0, -10},
}

// 特质对动作反应的加权修正，特质强度按 0-100 线性缩放
var traitModifiers = map[string]map[string]float64{
	"cunning":    {"deceptive": 0.3, "attacked": -0.1},
	"loyalty":    {"betrayed": -0.5, "trusted": 0.3},
	"compassion": {"helped": 0.4, "attacked": -0.4},
	"pride":      {"insulted": -0.4, "respected": 0.2},
	"cruelty":    {"saved": -0.2, "attacked": 0.2},
	"honor":      {"trusted": 0.3, "betrayed": -0.4},
	"greed":      {"gift": 0.3},
}

// 情绪状态转移表
var emotionalTransitions = map[entity.EmotionalState]map[string]entity.EmotionalState{
	entity.EmotionNeutral: {
		"positive":       entity.EmotionFriendly,
		"negative":       entity.EmotionSuspicious,
		"threat":         entity.EmotionFearful,
		"major_positive": entity.EmotionGrateful,
	},
	entity.EmotionFriendly: {
		"positive":       entity.EmotionFriendly,
		"negative":       entity.EmotionSuspicious,
		"betrayal":       entity.EmotionHostile,
		"major_positive": entity.EmotionGrateful,
	},
	entity.EmotionSuspicious: {
		"positive": entity.EmotionNeutral,
		"negative": entity.EmotionHostile,
	},
	entity.EmotionHostile: {
		"positive":       entity.EmotionSuspicious,
		"major_positive": entity.EmotionNeutral,
		"negative":       entity.EmotionHostile,
	},
	entity.EmotionGrateful: {
		"major_positive": entity.EmotionGrateful,
		"negative":       entity.EmotionCautious,
		"betrayal":       entity.EmotionHostile,
	},
	entity.EmotionFearful: {
		"positive":       entity.EmotionNeutral,
		"threat":         entity.EmotionFearful,
		"major_positive": entity.EmotionGrateful,
	},
}

// 动作类型映射到情绪触发器
var actionTriggers = map[string]string{
	"friendly":   "positive",
	"helped":     "positive",
	"gift":       "positive",
	"defended":   "major_positive",
	"saved":      "major_positive",
	"trusted":    "positive",
	"honest":     "positive",
	"hostile":    "negative",
	"insulted":   "negative",
	"threatened": "threat",
	"attacked":   "negative",
	"lied":       "negative",
	"stole":      "negative",
	"betrayed":   "betrayal",
}

// Brain NPC 行为模拟器，纯函数实现
type Brain struct{}

// NewBrain 创建 NPC 行为模拟器
func NewBrain() *Brain {
	return &Brain{}
}

// React 计算 NPC 对某次动作的反应；不修改入参
func (b *Brain) React(npc *entity.NPC, rel *entity.NPCRelationship, actionType string) Reaction {
	base := baseReactions[actionType]
	relMod, trustMod := personalityModifiers(npc.Personality, actionType)

	relChange := int(float64(base.relationship) * (1 + relMod))
	trustChange := int(float64(base.trust) * (1 + trustMod))

	reaction := Reaction{
		NPCCode:            npc.Code,
		RelationshipChange: relChange,
		TrustChange:        trustChange,
		NewEmotion:         nextEmotion(rel.EmotionalState, actionType, relChange),
		RevealsSecret:      secretToReveal(npc, rel, actionType, trustChange),
		TriggersBetrayal:   checksBetrayal(npc, rel, relChange),
		TriggersRedemption: checksRedemption(npc, rel, relChange),
	}
	return reaction
}

func personalityModifiers(p entity.Personality, actionType string) (float64, float64) {
	traits := map[string]int{
		"cunning":    p.Cunning,
		"loyalty":    p.Loyalty,
		"compassion": p.Compassion,
		"pride":      p.Pride,
		"cruelty":    p.Cruelty,
		"honor":      p.Honor,
		"greed":      p.Greed,
	}

	var relMod, trustMod float64
	for trait, value := range traits {
		reactions, ok := traitModifiers[trait]
		if !ok {
			continue
		}
		weight, ok := reactions[actionType]
		if !ok {
			continue
		}
		strength := float64(value) / 100
		relMod += weight * strength
		trustMod += weight * strength * 0.8
	}
	return relMod, trustMod
}

func nextEmotion(current entity.EmotionalState, actionType string, relChange int) entity.EmotionalState {
	trigger, ok := actionTriggers[actionType]
	if !ok {
		switch {
		case relChange > 5:
			trigger = "positive"
		case relChange < -5:
			trigger = "negative"
		default:
			return current
		}
	}

	if transitions, ok := emotionalTransitions[current]; ok {
		if next, ok := transitions[trigger]; ok {
			return next
		}
	}
	return current
}

// secretToReveal 判断本次交互是否满足秘密揭示条件：
// 信任达到 80 且动作属于深度信任类，或信任 70 以上且累计交互 ≥ 5。
func secretToReveal(npc *entity.NPC, rel *entity.NPCRelationship, actionType string, trustChange int) string {
	if len(npc.Secrets) == 0 {
		return ""
	}

	var unknown string
	for _, s := range npc.Secrets {
		if !rel.KnowsSecret(s) {
			unknown = s
			break
		}
	}
	if unknown == "" {
		return ""
	}

	newTrust := rel.TrustLevel + trustChange

	deepTrust := actionType == "saved" || actionType == "defended" || actionType == "trusted"
	if newTrust >= 80 && deepTrust {
		return unknown
	}

	familiar := actionType == "friendly" || actionType == "helped" || actionType == "honest"
	if newTrust >= 70 && rel.InteractionsCount >= 5 && familiar {
		return unknown
	}
	return ""
}

func checksBetrayal(npc *entity.NPC, rel *entity.NPCRelationship, relChange int) bool {
	if rel.BetrayalTriggered || !npc.CanBetray() {
		return false
	}
	return rel.RelationshipScore+relChange < npc.BetrayalThreshold
}

func checksRedemption(npc *entity.NPC, rel *entity.NPCRelationship, relChange int) bool {
	if rel.RedemptionTriggered || !npc.CanBetray() {
		return false
	}
	return rel.RelationshipScore+relChange >= npc.RedemptionThreshold
}
