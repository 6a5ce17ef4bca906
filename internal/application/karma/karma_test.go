package karma

import (
	"reflect"
	"testing"
)

func TestLevelForBuckets(t *testing.T) {
	tests := []struct {
		karma int
		want  Level
	}{
		{100, LevelHeroic},
		{80, LevelHeroic},
		{79, LevelHonorable},
		{60, LevelHonorable},
		{59, LevelNeutral},
		{40, LevelNeutral},
		{39, LevelDubious},
		{20, LevelDubious},
		{19, LevelInfamous},
		{0, LevelInfamous},
		{-15, LevelInfamous}, // 越界值夹紧后求级
		{250, LevelHeroic},
	}

	for _, tt := range tests {
		level, desc := LevelFor(tt.karma)
		if level != tt.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.karma, level, tt.want)
		}
		if desc == "" {
			t.Errorf("LevelFor(%d) returned empty description", tt.karma)
		}
	}
}

func TestContextForModelNonEmpty(t *testing.T) {
	for _, karma := range []int{0, 25, 50, 70, 95} {
		if ContextForModel(karma) == "" {
			t.Errorf("ContextForModel(%d) is empty", karma)
		}
	}
}

func TestFactionLabel(t *testing.T) {
	tests := []struct {
		standing int
		want     string
	}{
		{100, "allied"},
		{80, "allied"},
		{79, "favorable"},
		{60, "favorable"},
		{59, "neutral"},
		{40, "neutral"},
		{39, "unfavorable"},
		{20, "unfavorable"},
		{19, "hostile"},
		{0, "hostile"},
	}
	for _, tt := range tests {
		if got := FactionLabel(tt.standing); got != tt.want {
			t.Errorf("FactionLabel(%d) = %s, want %s", tt.standing, got, tt.want)
		}
	}
}

func TestFactionContextSorted(t *testing.T) {
	standings := map[string]int{
		"thieves_guild": 15,
		"city_watch":    65,
		"merchants":     45,
	}
	want := []string{
		"city_watch: favorable (65/100)",
		"merchants: neutral (45/100)",
		"thieves_guild: hostile (15/100)",
	}
	if got := FactionContext(standings); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := FactionContext(nil); got != nil {
		t.Errorf("empty standings should yield nil, got %v", got)
	}
}
