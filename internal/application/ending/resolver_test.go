package ending

import (
	"testing"

	"story-engine-api/internal/application/decision"
	"story-engine-api/internal/domain/entity"
)

func intPtr(n int) *int { return &n }

func TestCalculateDistributionSumsToHundred(t *testing.T) {
	endings := []*entity.Ending{
		{Code: "broken_circle"}, // 无要求，始终保底
		{Code: "crown_restored", Requirements: entity.EndingRequirements{Flags: []string{"crown_found"}}},
		{Code: "iron_regency", Requirements: entity.EndingRequirements{KarmaMin: intPtr(60)}},
	}
	state := decision.State{
		Karma: 70,
		Flags: map[string]bool{"crown_found": true},
	}

	got := Calculate(endings, state)

	// 原始分：crown_restored 60、iron_regency 30、broken_circle 10，总分 100
	want := map[string]int{"crown_restored": 60, "iron_regency": 30, "broken_circle": 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	sum := 0
	for code, pct := range want {
		if got[code] != pct {
			t.Errorf("%s = %d, want %d", code, got[code], pct)
		}
		sum += got[code]
	}
	if sum != 100 {
		t.Errorf("distribution sums to %d, want 100", sum)
	}
}

func TestCalculatePartialCredit(t *testing.T) {
	endings := []*entity.Ending{
		{Code: "half_flags", Requirements: entity.EndingRequirements{Flags: []string{"a", "b"}}},
	}
	state := decision.State{Flags: map[string]bool{"a": true}}

	got := Calculate(endings, state)
	// 唯一有部分得分的结局独占分布
	if got["half_flags"] != 100 {
		t.Errorf("got %v, want half_flags at 100", got)
	}
}

func TestCalculateZeroCreditExcluded(t *testing.T) {
	endings := []*entity.Ending{
		{Code: "reachable"}, // 无要求
		{Code: "unreachable", Requirements: entity.EndingRequirements{
			Flags:     []string{"never"},
			Decisions: map[string]string{"crown_fate": "destroy"},
		}},
	}
	state := decision.State{Decisions: map[string]string{"crown_fate": "restore"}}

	got := Calculate(endings, state)
	if _, present := got["unreachable"]; present {
		t.Errorf("zero-credit ending should be excluded: %v", got)
	}
	if got["reachable"] != 100 {
		t.Errorf("got %v, want reachable at 100", got)
	}
}

func TestCalculateEmptyCases(t *testing.T) {
	if got := Calculate(nil, decision.State{}); len(got) != 0 {
		t.Errorf("no endings should yield empty map, got %v", got)
	}

	endings := []*entity.Ending{
		{Code: "strict", Requirements: entity.EndingRequirements{KarmaMin: intPtr(90)}},
	}
	if got := Calculate(endings, decision.State{Karma: 10}); len(got) != 0 {
		t.Errorf("zero total score should yield empty map, got %v", got)
	}
}

func TestCalculateRemainderGoesToTopScore(t *testing.T) {
	endings := []*entity.Ending{
		{Code: "alpha", Requirements: entity.EndingRequirements{KarmaMin: intPtr(50)}},
		{Code: "beta", Requirements: entity.EndingRequirements{KarmaMin: intPtr(50)}},
		{Code: "gamma", Requirements: entity.EndingRequirements{KarmaMin: intPtr(50)}},
	}
	// 三个结局各 30 分，33% 取整后剩 1 个点，按代码序归给 alpha
	got := Calculate(endings, decision.State{Karma: 60})

	if got["alpha"] != 34 || got["beta"] != 33 || got["gamma"] != 33 {
		t.Errorf("got %v, want alpha 34 / beta 33 / gamma 33", got)
	}
}
