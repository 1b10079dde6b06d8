package scoring

import "math"

// PPWeight returns the leaderboard weighting factor for the score at the
// given 0-based index in a player's best-score list: 0.95^index.
func PPWeight(index int) float64 {
	return math.Pow(0.95, float64(index))
}

// WeightedPP returns the weighted PP contribution of a score, or 0 for
// non-positive PP.
func WeightedPP(pp float64, index int) float64 {
	if pp <= 0 {
		return 0
	}
	return PPWeight(index) * pp
}

// WeightedAcc returns the weighted accuracy contribution of a score, or 0
// for non-positive accuracy.
func WeightedAcc(acc float64, index int) float64 {
	if acc <= 0 {
		return 0
	}
	return PPWeight(index) * acc
}
