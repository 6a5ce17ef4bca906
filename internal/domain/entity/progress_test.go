package entity

import (
	"testing"
)

func TestNewRoomProgressClampsKarma(t *testing.T) {
	p := NewRoomProgress(1, 2, 3, 150)
	if p.Karma != 100 {
		t.Errorf("karma = %d, want clamp at 100", p.Karma)
	}
	if p.CurrentAct != 1 || p.CurrentChapter != 1 || p.CurrentScene != 1 || p.CurrentSceneID != 3 {
		t.Errorf("initial position wrong: %+v", p)
	}
}

func TestApplyKarmaClampAndEffectiveDelta(t *testing.T) {
	p := &RoomProgress{Karma: 95}
	if got := p.ApplyKarma(10); got != 5 {
		t.Errorf("effective delta = %d, want 5", got)
	}
	if p.Karma != 100 {
		t.Errorf("karma = %d, want 100", p.Karma)
	}

	p.Karma = 5
	if got := p.ApplyKarma(-10); got != -5 {
		t.Errorf("effective delta = %d, want -5", got)
	}
	if p.Karma != 0 {
		t.Errorf("karma = %d, want 0", p.Karma)
	}

	p.Karma = 50
	if got := p.ApplyKarma(-20); got != -20 {
		t.Errorf("effective delta = %d, want -20", got)
	}
}

func TestRecordDecisionIdempotent(t *testing.T) {
	p := &RoomProgress{}
	if !p.RecordDecision("courier_verdict", "spare") {
		t.Error("first record should succeed")
	}
	if p.RecordDecision("courier_verdict", "execute") {
		t.Error("second record must be a no-op")
	}
	if p.DecisionsMade["courier_verdict"] != "spare" {
		t.Errorf("original option overwritten: %v", p.DecisionsMade)
	}
	if !p.DecisionResolved("courier_verdict") || p.DecisionResolved("crown_fate") {
		t.Error("resolution check wrong")
	}
}

func TestRevealClueIdempotent(t *testing.T) {
	p := &RoomProgress{}
	if !p.RevealClue("vault_seal") {
		t.Error("first reveal should succeed")
	}
	if p.RevealClue("vault_seal") {
		t.Error("repeated reveal must be a no-op")
	}
	if len(p.RevealedClues) != 1 {
		t.Errorf("revealed clues = %v", p.RevealedClues)
	}
	if !p.ClueRevealed("vault_seal") || p.ClueRevealed("other") {
		t.Error("reveal check wrong")
	}
}

func TestPendingDecisionLifecycle(t *testing.T) {
	p := &RoomProgress{}
	if p.TickPendingDecision() {
		t.Error("tick without pending decision should be false")
	}

	p.SetPendingDecision("courier_verdict", 2)
	if p.TickPendingDecision() {
		t.Error("first tick leaves one turn, should not expire")
	}
	if !p.TickPendingDecision() {
		t.Error("second tick reaches zero, should expire")
	}
	if p.TickPendingDecision() {
		t.Error("expired decision should not tick again")
	}

	p.ClearPendingDecision()
	if p.PendingDecisionCode != "" || p.PendingDecisionTurnsLeft != 0 {
		t.Errorf("clear left state behind: %+v", p)
	}
}

func TestFlagsAndFactions(t *testing.T) {
	p := &RoomProgress{}
	p.SetFlag("courier_spared")
	if !p.HasFlag("courier_spared") || p.HasFlag("crown_destroyed") {
		t.Error("flag state wrong")
	}

	p.AdjustFaction("city_watch", -10)
	p.AdjustFaction("city_watch", 5)
	if p.FactionStandings["city_watch"] != -5 {
		t.Errorf("faction standing = %d, want -5", p.FactionStandings["city_watch"])
	}
}

func TestCompleteSideStoryIdempotent(t *testing.T) {
	p := &RoomProgress{}
	if !p.CompleteSideStory("beggars_debt") {
		t.Error("first completion should report true")
	}
	if p.CompleteSideStory("beggars_debt") {
		t.Error("repeated completion must be a no-op")
	}
	if len(p.SideStoriesCompleted) != 1 {
		t.Errorf("side stories = %v", p.SideStoriesCompleted)
	}
}
