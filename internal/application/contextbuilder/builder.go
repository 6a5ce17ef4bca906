// Package contextbuilder 组装送往模型调用方的叙事上下文。
// 给定相同的状态快照，输出必须完全一致：叙事的随机性只来自模型。
package contextbuilder

import (
	"fmt"
	"sort"
	"strings"

	"story-engine-api/internal/application/karma"
	"story-engine-api/internal/domain/entity"
)

// secretLabel 保密段落的统一前缀，提示模型绝不回显
const secretLabel = "[SECRET - do not reveal]"

// NPCView 单个在场 NPC 的快照
type NPCView struct {
	NPC           *entity.NPC
	Relationship  *entity.NPCRelationship
	RecentActions []string
}

// Snapshot 构建上下文所需的全部状态，调用方负责加载
type Snapshot struct {
	Campaign        *entity.Campaign
	ActTitle        string
	ChapterTitle    string
	Scene           *entity.Scene
	Progress        *entity.RoomProgress
	NPCs            []NPCView
	PendingDecision *entity.Decision
	ForeshadowHints []string
}

// NPCContext 上下文中的单个 NPC 条目
type NPCContext struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	ApparentRole  string   `json:"apparent_role"`
	DialogueStyle string   `json:"dialogue_style,omitempty"`
	Mood          string   `json:"mood"`
	Relationship  int      `json:"relationship"`
	Trust         int      `json:"trust"`
	RecentActions []string `json:"recent_actions,omitempty"`
	// SecretDirective 仅供模型的保密指令，带 secretLabel 前缀
	SecretDirective string `json:"secret_directive,omitempty"`
}

// PromptContext 模型提示上下文，有界且确定
type PromptContext struct {
	RoomID       int64  `json:"room_id"`
	CampaignName string `json:"campaign_name"`
	Tone         string `json:"tone"`

	ActNumber     int    `json:"act_number"`
	ActTitle      string `json:"act_title,omitempty"`
	ChapterNumber int    `json:"chapter_number"`
	ChapterTitle  string `json:"chapter_title,omitempty"`
	SceneNumber   int    `json:"scene_number"`
	SceneTitle    string `json:"scene_title"`
	SceneType     string `json:"scene_type"`
	TensionLevel  string `json:"tension_level"`

	SceneContext string `json:"scene_context"`

	NPCs []NPCContext `json:"npcs,omitempty"`

	SecretInstructions  []string `json:"secret_instructions,omitempty"`
	ForeshadowHints     []string `json:"foreshadow_hints,omitempty"`
	SpecialInstructions []string `json:"special_instructions,omitempty"`

	Karma            int      `json:"karma"`
	KarmaLevel       string   `json:"karma_level"`
	KarmaContext     string   `json:"karma_context"`
	FactionStandings []string `json:"faction_standings,omitempty"`

	PendingDecisionHint string `json:"pending_decision_hint,omitempty"`
}

// Config 上下文构建参数
type Config struct {
	MaxNPCs            int
	MaxForeshadowHints int
}

// 场景类型附加指令
var sceneInstructions = map[entity.SceneType][]string{
	entity.SceneCombat: {
		"Describe combat actions dynamically and ask for dice rolls on significant moves.",
		"Enemies react tactically.",
	},
	entity.ScenePuzzle: {
		"Give gradual hints, never the direct solution.",
		"Reward creative thinking.",
	},
	entity.SceneSocial: {
		"NPCs answer according to their personality; words have consequences.",
	},
	entity.SceneRevelation: {
		"Build tension before revealing; let players reach their own conclusions.",
	},
	entity.SceneDecision: {
		"Present the stakes naturally and never force a specific choice.",
	},
}

// Build 从快照组装上下文，纯函数
func Build(snap Snapshot, cfg Config) *PromptContext {
	if cfg.MaxNPCs <= 0 {
		cfg.MaxNPCs = 5
	}
	if cfg.MaxForeshadowHints <= 0 {
		cfg.MaxForeshadowHints = 3
	}

	progress := snap.Progress
	level, _ := karma.LevelFor(progress.Karma)

	pc := &PromptContext{
		RoomID:        progress.RoomID,
		CampaignName:  snap.Campaign.Name,
		Tone:          string(snap.Campaign.Tone),
		ActNumber:     progress.CurrentAct,
		ActTitle:      snap.ActTitle,
		ChapterNumber: progress.CurrentChapter,
		ChapterTitle:  snap.ChapterTitle,
		SceneNumber:   progress.CurrentScene,
		SceneTitle:    snap.Scene.Title,
		SceneType:     string(snap.Scene.Type),
		TensionLevel:  string(snap.Scene.TensionLevel),
		SceneContext:  sceneContext(snap.Scene),

		Karma:            progress.Karma,
		KarmaLevel:       string(level),
		KarmaContext:     karma.ContextForModel(progress.Karma),
		FactionStandings: karma.FactionContext(progress.FactionStandings),
	}

	if snap.Scene.SecretInstructions != "" {
		pc.SecretInstructions = append(pc.SecretInstructions,
			secretLabel+" "+snap.Scene.SecretInstructions)
	}

	pc.NPCs = buildNPCs(snap.NPCs, cfg.MaxNPCs)

	hints := snap.ForeshadowHints
	if len(hints) > cfg.MaxForeshadowHints {
		hints = hints[:cfg.MaxForeshadowHints]
	}
	pc.ForeshadowHints = hints

	pc.SpecialInstructions = append(pc.SpecialInstructions, sceneInstructions[snap.Scene.Type]...)

	if snap.PendingDecision != nil {
		pc.PendingDecisionHint = decisionNudge(snap.PendingDecision, progress.PendingDecisionTurnsLeft)
		pc.SpecialInstructions = append(pc.SpecialInstructions,
			"A decision is pending; steer the narrative toward it.")
	}

	return pc
}

func sceneContext(scene *entity.Scene) string {
	parts := make([]string, 0, 2)
	if scene.OpeningNarration != "" {
		parts = append(parts, scene.OpeningNarration)
	}
	if scene.AIContext != "" {
		parts = append(parts, scene.AIContext)
	}
	if len(parts) == 0 {
		return "No specific scene context."
	}
	return strings.Join(parts, "\n\n")
}

func buildNPCs(views []NPCView, maxNPCs int) []NPCContext {
	sorted := append([]NPCView(nil), views...)
	sort.SliceStable(sorted, func(i, j int) bool {
		// 主要 NPC 优先，其余按代码排序
		if sorted[i].NPC.IsMajor != sorted[j].NPC.IsMajor {
			return sorted[i].NPC.IsMajor
		}
		return sorted[i].NPC.Code < sorted[j].NPC.Code
	})
	if len(sorted) > maxNPCs {
		sorted = sorted[:maxNPCs]
	}

	out := make([]NPCContext, 0, len(sorted))
	for _, v := range sorted {
		npcCtx := NPCContext{
			Code:          v.NPC.Code,
			Name:          v.NPC.Name,
			ApparentRole:  v.NPC.ApparentRole,
			DialogueStyle: v.NPC.DialogueStyle,
			Mood:          string(entity.EmotionNeutral),
			Relationship:  v.NPC.RelationshipDefault,
			Trust:         50,
			RecentActions: v.RecentActions,
		}
		if v.Relationship != nil {
			npcCtx.Mood = string(v.Relationship.EmotionalState)
			npcCtx.Relationship = v.Relationship.RelationshipScore
			npcCtx.Trust = v.Relationship.TrustLevel
		}
		npcCtx.SecretDirective = secretDirective(v)
		out = append(out, npcCtx)
	}
	return out
}

// secretDirective 生成 NPC 的保密指令：
// 关系跌破背叛阈值、或存在尚未揭示的剧情必需秘密时给出。
func secretDirective(v NPCView) string {
	npc := v.NPC
	rel := v.Relationship

	var directives []string

	if npc.CanBetray() && rel != nil {
		switch {
		case rel.BetrayalTriggered:
			directives = append(directives, fmt.Sprintf(
				"%s has turned against the party; their true role (%s) now drives their behavior.",
				npc.Name, npc.TrueRole))
		case rel.RelationshipScore < npc.BetrayalThreshold:
			directives = append(directives, fmt.Sprintf(
				"%s secretly acts as %s and is close to moving against the party.",
				npc.Name, npc.TrueRole))
		default:
			directives = append(directives, fmt.Sprintf(
				"%s maintains a facade; their true role is %s.", npc.Name, npc.TrueRole))
		}
	}

	if npc.SecretAgenda != "" {
		directives = append(directives, npc.SecretAgenda)
	}

	if len(directives) == 0 {
		return ""
	}
	return secretLabel + " " + strings.Join(directives, " ")
}

func decisionNudge(d *entity.Decision, turnsLeft int) string {
	nudge := fmt.Sprintf("An important choice looms: %s.", d.Title)
	if d.Description != "" {
		nudge += " " + d.Description
	}
	nudge += " Weave it into the narration naturally; do not present a menu of options."
	if turnsLeft > 0 {
		nudge += fmt.Sprintf(" The situation will resolve itself within %d more exchanges if the players do not act.", turnsLeft)
	}
	return nudge
}
