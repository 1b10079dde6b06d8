// Package scoring provides the read-only score model, conversions between
// standardised and classic score, the total-score level curve, leaderboard
// weighting, and the analytic fallback PP model.
package scoring

import "github.com/googuteam/scorepp/internal/beatmap"

// MaxScore is the standardised total-score ceiling.
const MaxScore = 1_000_000

// Mod is a gameplay modifier in API form: an acronym plus optional
// backend-specific settings.
type Mod struct {
	Acronym  string         `json:"acronym"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Score is the read-only view of a submitted score that the performance
// core consumes. It is owned by the surrounding scoring pipeline.
type Score struct {
	ID        int64
	UserID    int64
	BeatmapID int64
	Mode      beatmap.GameMode
	Mods      []Mod

	// TotalScore is the standardised total score in [0, MaxScore].
	TotalScore int64
	Accuracy   float64
	MaxCombo   int

	// Statistics and MaximumStatistics map hit-result names to counts.
	// MaximumStatistics describes the maximum achievable judgements and
	// drives the classic-score conversion.
	Statistics        map[string]int
	MaximumStatistics map[string]int

	// BeatmapMD5 is the checksum of the beatmap file the score was set on.
	BeatmapMD5 string

	// BeatmapStarRating is the stored difficulty rating of the beatmap,
	// used as a last resort when no backend can rate the map.
	BeatmapStarRating float64
}

// basicResults are the hit results counted as basic judgements. Tick,
// bonus, and ignore results do not contribute to the classic conversion.
var basicResults = map[string]struct{}{
	"miss":    {},
	"meh":     {},
	"ok":      {},
	"good":    {},
	"great":   {},
	"perfect": {},
}

// IsBasicResult reports whether a hit-result name is a basic judgement.
func IsBasicResult(name string) bool {
	_, ok := basicResults[name]
	return ok
}

// BasicObjectCount sums the basic judgements in a statistics map.
func BasicObjectCount(statistics map[string]int) int {
	total := 0
	for name, count := range statistics {
		if IsBasicResult(name) {
			total += count
		}
	}
	return total
}
