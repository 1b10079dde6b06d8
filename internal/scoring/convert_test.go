package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayScore_Standardised(t *testing.T) {
	t.Parallel()

	got := DisplayScore(0, 654321, ScoringStandardised, map[string]int{"great": 300})
	assert.Equal(t, int64(654321), got)
}

func TestDisplayScore_Classic(t *testing.T) {
	t.Parallel()

	maxStats := map[string]int{
		"great":       290,
		"miss":        10,
		"large_bonus": 5, // not a basic judgement, excluded from the count
	}

	tests := []struct {
		name       string
		rulesetID  int
		totalScore int64
		want       int64
	}{
		{name: "osu full score", rulesetID: 0, totalScore: MaxScore, want: 3031300},
		{name: "osu half score", rulesetID: 0, totalScore: MaxScore / 2, want: 1515650},
		{name: "taiko full score", rulesetID: 1, totalScore: MaxScore, want: 432700},
		{name: "fruits full score", rulesetID: 2, totalScore: MaxScore, want: 2045800},
		{name: "mania keeps standardised", rulesetID: 3, totalScore: 654321, want: 654321},
		{name: "unknown ruleset keeps standardised", rulesetID: 7, totalScore: 654321, want: 654321},
		{name: "zero score", rulesetID: 0, totalScore: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DisplayScore(tt.rulesetID, tt.totalScore, ScoringClassic, maxStats)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBasicObjectCount(t *testing.T) {
	t.Parallel()

	stats := map[string]int{
		"great":       100,
		"ok":          20,
		"meh":         5,
		"miss":        3,
		"perfect":     50,
		"good":        10,
		"large_tick":  40,
		"small_bonus": 12,
	}

	assert.Equal(t, 188, BasicObjectCount(stats))
	assert.Equal(t, 0, BasicObjectCount(nil))
}

func TestIsBasicResult(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"miss", "meh", "ok", "good", "great", "perfect"} {
		assert.True(t, IsBasicResult(name), name)
	}
	for _, name := range []string{"large_tick", "small_tick", "large_bonus", "ignore_hit", ""} {
		assert.False(t, IsBasicResult(name), name)
	}
}
