package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreToLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		totalScore int64
		want       float64
	}{
		{name: "zero score is level 1", totalScore: 0, want: 1},
		{name: "halfway to level 2", totalScore: 15000, want: 1.5},
		{name: "exactly level 2", totalScore: 30000, want: 2},
		{name: "exactly level 3", totalScore: 130000, want: 3},
		{name: "partway into level 3", totalScore: 235000, want: 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, ScoreToLevel(tt.totalScore), 1e-9)
		})
	}
}

func TestScoreToLevel_Monotonic(t *testing.T) {
	t.Parallel()

	prev := ScoreToLevel(0)
	for _, score := range []int64{1, 30000, 1000000, 100000000, 10000000000, 1000000000000} {
		level := ScoreToLevel(score)
		assert.Greater(t, level, prev)
		prev = level
	}
}

func TestLevelToScore(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0, LevelToScore(1), 1e-6)
	assert.InDelta(t, 26931190828.629097, LevelToScore(100), 1)

	// Past level 100 the curve grows linearly.
	assert.InDelta(t, 26931190827+99999999999, LevelToScore(101), 1)
	assert.InDelta(t, LevelToScore(101)+99999999999, LevelToScore(102), 1)
}
