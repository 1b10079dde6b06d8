package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackPP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		totalScore int64
		starRating float64
		want       float64
	}{
		{name: "zero star rating", totalScore: MaxScore, starRating: 0, want: 0},
		{name: "negative star rating", totalScore: MaxScore, starRating: -1, want: 0},
		{name: "zero score", totalScore: 0, starRating: 5, want: 0},
		{name: "full score reaches peak", totalScore: MaxScore, starRating: 5, want: 126.83644114359667},
		{name: "half score on linear section", totalScore: MaxScore / 2, starRating: 5, want: 63.41822057179834},
		{name: "exponential section", totalScore: 900000, starRating: 5, want: 101.776435957182},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, FallbackPP(tt.totalScore, tt.starRating), 1e-9)
		})
	}
}

func TestFallbackPP_MonotonicInScore(t *testing.T) {
	t.Parallel()

	prev := FallbackPP(0, 6)
	for score := int64(50000); score <= MaxScore; score += 50000 {
		pp := FallbackPP(score, 6)
		assert.Greater(t, pp, prev, "score %d", score)
		prev = pp
	}
}

func TestFallbackPP_MonotonicInStars(t *testing.T) {
	t.Parallel()

	prev := 0.0
	for _, stars := range []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		pp := FallbackPP(MaxScore, stars)
		assert.Greater(t, pp, prev, "stars %f", stars)
		prev = pp
	}
}
