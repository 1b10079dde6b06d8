package scoring

import "math"

// ScoringMode selects the score scale used for display.
type ScoringMode int

// Scoring modes.
const (
	// ScoringStandardised is the modern 0..MaxScore scale.
	ScoringStandardised ScoringMode = iota

	// ScoringClassic is the legacy scale, reconstructed analytically.
	ScoringClassic
)

// DisplayScore converts a standardised total score to the requested
// scoring mode. maxStatistics is the score's maximum-achievable statistics
// map; only its basic judgements participate in the conversion.
func DisplayScore(rulesetID int, totalScore int64, mode ScoringMode, maxStatistics map[string]int) int64 {
	if mode == ScoringStandardised {
		return totalScore
	}
	return standardisedToClassic(rulesetID, totalScore, BasicObjectCount(maxStatistics))
}

// standardisedToClassic converts a standardised score to classic score.
// The coefficients were determined by a least-squares fit minimising the
// relative error of the maximum possible base score across all beatmaps.
func standardisedToClassic(rulesetID int, standardised int64, objectCount int) int64 {
	score := float64(standardised)
	n := float64(objectCount)

	switch rulesetID {
	case 0: // osu!
		return int64(math.Round((n*n*32.57 + 100000) * score / MaxScore))
	case 1: // taiko
		return int64(math.Round((n*1109 + 100000) * score / MaxScore))
	case 2: // fruits
		frac := score / MaxScore * n
		return int64(math.Round(frac*frac*21.62 + score/10))
	default: // mania and unknown rulesets keep the standardised value
		return standardised
	}
}
