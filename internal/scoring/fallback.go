package scoring

import "math"

// fallbackK controls the steepness of the exponential-reward region.
const fallbackK = 4.0

// FallbackPP estimates PP from total score and star rating when no exact
// calculator backend supports a mode. Low and mid scores scale roughly
// linearly with score; near-perfect plays are rewarded super-linearly,
// with the breakpoint shifting left as difficulty rises.
//
// The model stays stable outside its nominal domain: non-positive star
// ratings yield 0, and only the breakpoint is clamped for very high star
// ratings while the ceiling keeps growing.
func FallbackPP(totalScore int64, starRating float64) float64 {
	if starRating <= 0 {
		return 0
	}

	pmax := 1.4 * math.Pow(starRating, 2.8)
	b := 0.95 - 0.33*(clamp(starRating, 1, 8)-1)/7

	x := float64(totalScore) / MaxScore

	if x < b {
		return pmax * x
	}

	t := (x - b) / (1 - b)
	expPart := (math.Exp(fallbackK*t) - 1) / (math.Exp(fallbackK) - 1)
	return pmax * (b + (1-b)*expPart)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
