package contextbuilder

import (
	"reflect"
	"strings"
	"testing"

	"story-engine-api/internal/domain/entity"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Campaign: &entity.Campaign{Name: "Shadow of the Iron Crown", Tone: entity.ToneMystery},
		ActTitle: "The Missing Courier",
		Scene: &entity.Scene{
			Title:            "The Rusty Flagon",
			Type:             entity.SceneSocial,
			TensionLevel:     entity.TensionNormal,
			OpeningNarration: "Smoke hangs low over the common room.",
			AIContext:        "The innkeeper knows more than he admits.",
		},
		Progress: &entity.RoomProgress{
			RoomID:           42,
			CurrentAct:       1,
			CurrentChapter:   1,
			CurrentScene:     2,
			Karma:            50,
			FactionStandings: map[string]int{"city_watch": 65},
		},
		NPCs: []NPCView{
			{
				NPC: &entity.NPC{Code: "barkeep", Name: "Old Tam", RelationshipDefault: 50},
			},
			{
				NPC: &entity.NPC{Code: "mira", Name: "Mira", IsMajor: true},
				Relationship: &entity.NPCRelationship{
					RelationshipScore: 70,
					TrustLevel:        60,
					EmotionalState:    entity.EmotionFriendly,
				},
			},
		},
	}
}

func TestBuildDeterministic(t *testing.T) {
	snap := sampleSnapshot()
	first := Build(snap, Config{})
	second := Build(snap, Config{})
	if !reflect.DeepEqual(first, second) {
		t.Error("identical snapshots must produce identical contexts")
	}
}

func TestBuildBasicFields(t *testing.T) {
	pc := Build(sampleSnapshot(), Config{})

	if pc.RoomID != 42 || pc.CampaignName != "Shadow of the Iron Crown" || pc.Tone != "mystery" {
		t.Errorf("header fields wrong: %+v", pc)
	}
	if pc.SceneTitle != "The Rusty Flagon" || pc.SceneType != "social" || pc.TensionLevel != "normal" {
		t.Errorf("scene fields wrong: %+v", pc)
	}
	if !strings.Contains(pc.SceneContext, "Smoke hangs low") ||
		!strings.Contains(pc.SceneContext, "knows more than he admits") {
		t.Errorf("scene context = %q", pc.SceneContext)
	}
	if pc.Karma != 50 || pc.KarmaLevel != "neutral" || pc.KarmaContext == "" {
		t.Errorf("karma fields wrong: karma=%d level=%s", pc.Karma, pc.KarmaLevel)
	}
	if len(pc.FactionStandings) != 1 || !strings.HasPrefix(pc.FactionStandings[0], "city_watch:") {
		t.Errorf("faction standings = %v", pc.FactionStandings)
	}
	if pc.PendingDecisionHint != "" {
		t.Errorf("unexpected pending decision hint: %q", pc.PendingDecisionHint)
	}
}

func TestBuildNPCOrderingAndDefaults(t *testing.T) {
	pc := Build(sampleSnapshot(), Config{})

	if len(pc.NPCs) != 2 {
		t.Fatalf("expected 2 npcs, got %d", len(pc.NPCs))
	}
	// 主要 NPC 排在前面
	if pc.NPCs[0].Code != "mira" {
		t.Errorf("major npc should come first, got %s", pc.NPCs[0].Code)
	}
	if pc.NPCs[0].Mood != "friendly" || pc.NPCs[0].Relationship != 70 || pc.NPCs[0].Trust != 60 {
		t.Errorf("npc with relationship: %+v", pc.NPCs[0])
	}
	// 无关系记录时回落到模板默认值
	if pc.NPCs[1].Mood != "neutral" || pc.NPCs[1].Relationship != 50 || pc.NPCs[1].Trust != 50 {
		t.Errorf("npc without relationship: %+v", pc.NPCs[1])
	}
}

func TestBuildNPCCap(t *testing.T) {
	snap := sampleSnapshot()
	snap.NPCs = append(snap.NPCs,
		NPCView{NPC: &entity.NPC{Code: "aaa_guard", Name: "Guard"}},
		NPCView{NPC: &entity.NPC{Code: "zzz_beggar", Name: "Beggar"}},
	)

	pc := Build(snap, Config{MaxNPCs: 2})
	if len(pc.NPCs) != 2 {
		t.Fatalf("expected cap at 2, got %d", len(pc.NPCs))
	}
	if pc.NPCs[0].Code != "mira" || pc.NPCs[1].Code != "aaa_guard" {
		t.Errorf("order after cap: %s, %s", pc.NPCs[0].Code, pc.NPCs[1].Code)
	}
}

func TestBuildSecretDirectives(t *testing.T) {
	betrayer := &entity.NPC{
		Code:              "captain_aldric",
		Name:              "Captain Aldric",
		ApparentRole:      "Captain of the Watch",
		TrueRole:          "Cult Infiltrator",
		BetrayalThreshold: 35,
		SecretAgenda:      "Delay the party until the ritual completes.",
	}

	tests := []struct {
		name string
		rel  *entity.NPCRelationship
		want string
	}{
		{
			name: "facade while relationship holds",
			rel:  &entity.NPCRelationship{RelationshipScore: 50},
			want: "maintains a facade",
		},
		{
			name: "near betrayal threshold",
			rel:  &entity.NPCRelationship{RelationshipScore: 30},
			want: "close to moving against the party",
		},
		{
			name: "betrayal already triggered",
			rel:  &entity.NPCRelationship{RelationshipScore: 30, BetrayalTriggered: true},
			want: "has turned against the party",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := sampleSnapshot()
			snap.NPCs = []NPCView{{NPC: betrayer, Relationship: tt.rel}}
			pc := Build(snap, Config{})

			directive := pc.NPCs[0].SecretDirective
			if !strings.HasPrefix(directive, secretLabel) {
				t.Errorf("directive missing secret label: %q", directive)
			}
			if !strings.Contains(directive, tt.want) {
				t.Errorf("directive = %q, want substring %q", directive, tt.want)
			}
			if !strings.Contains(directive, "Delay the party") {
				t.Errorf("secret agenda missing from directive: %q", directive)
			}
		})
	}
}

func TestBuildSceneSecretInstructions(t *testing.T) {
	snap := sampleSnapshot()
	snap.Scene.SecretInstructions = "The cellar door leads to the cult hideout."

	pc := Build(snap, Config{})
	if len(pc.SecretInstructions) != 1 {
		t.Fatalf("expected 1 secret instruction, got %d", len(pc.SecretInstructions))
	}
	if !strings.HasPrefix(pc.SecretInstructions[0], secretLabel) {
		t.Errorf("secret instruction missing label: %q", pc.SecretInstructions[0])
	}
}

func TestBuildPendingDecision(t *testing.T) {
	snap := sampleSnapshot()
	snap.PendingDecision = &entity.Decision{
		Title:       "The courier's fate",
		Description: "Spare him or make an example.",
	}
	snap.Progress.PendingDecisionCode = "courier_verdict"
	snap.Progress.PendingDecisionTurnsLeft = 2

	pc := Build(snap, Config{})
	if !strings.Contains(pc.PendingDecisionHint, "The courier's fate") {
		t.Errorf("hint = %q", pc.PendingDecisionHint)
	}
	if !strings.Contains(pc.PendingDecisionHint, "2 more exchanges") {
		t.Errorf("hint should mention remaining exchanges: %q", pc.PendingDecisionHint)
	}

	found := false
	for _, instr := range pc.SpecialInstructions {
		if strings.Contains(instr, "decision is pending") {
			found = true
		}
	}
	if !found {
		t.Errorf("special instructions missing pending note: %v", pc.SpecialInstructions)
	}
}

func TestBuildForeshadowHintCap(t *testing.T) {
	snap := sampleSnapshot()
	snap.ForeshadowHints = []string{"h1", "h2", "h3", "h4"}

	pc := Build(snap, Config{MaxForeshadowHints: 2})
	if !reflect.DeepEqual(pc.ForeshadowHints, []string{"h1", "h2"}) {
		t.Errorf("hints = %v, want first two", pc.ForeshadowHints)
	}
}
