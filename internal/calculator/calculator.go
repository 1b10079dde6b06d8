// Package calculator defines the pluggable difficulty/performance backend
// protocol and its concrete implementations. A backend may support
// performance calculation, difficulty calculation, both, or neither for
// any given game mode; callers negotiate capabilities before computing.
package calculator

import (
	"context"
	"errors"

	"github.com/googuteam/scorepp/internal/beatmap"
	"github.com/googuteam/scorepp/internal/scoring"
)

// Sentinel errors for the calculation error taxonomy. Concrete failures
// wrap these so callers can classify with errors.Is.
var (
	// ErrCalculate is the base error for any calculation failure.
	ErrCalculate = errors.New("calculation failed")

	// ErrDifficulty indicates the difficulty could not be calculated.
	ErrDifficulty = errors.New("difficulty calculation failed")

	// ErrConvert indicates a beatmap cannot be converted to the mode.
	ErrConvert = errors.New("beatmap conversion failed")

	// ErrPerformance indicates the performance could not be calculated.
	ErrPerformance = errors.New("performance calculation failed")

	// ErrNotSupported indicates the backend does not support the
	// requested operation for the given mode.
	ErrNotSupported = errors.New("mode not supported by backend")
)

// ModeSet is a set of game modes.
type ModeSet map[beatmap.GameMode]struct{}

// Has reports whether the set contains the mode.
func (s ModeSet) Has(mode beatmap.GameMode) bool {
	_, ok := s[mode]
	return ok
}

// NewModeSet builds a ModeSet from the given modes.
func NewModeSet(modes ...beatmap.GameMode) ModeSet {
	s := make(ModeSet, len(modes))
	for _, m := range modes {
		s[m] = struct{}{}
	}
	return s
}

// AvailableModes describes a backend's capabilities per game mode.
type AvailableModes struct {
	Performance ModeSet
	Difficulty  ModeSet
}

// PerformanceAttributes is the result of a performance calculation. PP is
// always present; the sub-scores are populated when the backend provides
// them for the mode.
type PerformanceAttributes struct {
	PP float64 `json:"pp"`

	// osu! sub-scores.
	Aim        float64 `json:"pp_aim,omitempty"`
	Speed      float64 `json:"pp_speed,omitempty"`
	Accuracy   float64 `json:"pp_accuracy,omitempty"`
	Flashlight float64 `json:"pp_flashlight,omitempty"`

	// taiko and mania use a single difficulty sub-score.
	Difficulty float64 `json:"pp_difficulty,omitempty"`

	EffectiveMissCount float64 `json:"effective_miss_count,omitempty"`
}

// DifficultyAttributes is the result of a difficulty calculation.
// StarRating is always present.
type DifficultyAttributes struct {
	StarRating float64 `json:"star_rating"`
	MaxCombo   int     `json:"max_combo,omitempty"`

	// osu! sub-ratings.
	AimDifficulty   float64 `json:"aim_difficulty,omitempty"`
	SpeedDifficulty float64 `json:"speed_difficulty,omitempty"`

	// taiko sub-ratings.
	StaminaDifficulty float64 `json:"stamina_difficulty,omitempty"`
	RhythmDifficulty  float64 `json:"rhythm_difficulty,omitempty"`
}

// Calculator is the backend protocol. Init must be called exactly once
// before any other method; an Init failure is fatal to the calculator
// subsystem. CalculatePerformance and CalculateDifficulty must only be
// called after the corresponding capability query returned true.
type Calculator interface {
	// Init performs one-time setup (capability discovery, warmup).
	Init(ctx context.Context) error

	// CanCalculatePerformance reports whether the backend computes
	// performance attributes for the mode.
	CanCalculatePerformance(ctx context.Context, mode beatmap.GameMode) (bool, error)

	// CanCalculateDifficulty reports whether the backend computes
	// difficulty attributes for the mode.
	CanCalculateDifficulty(ctx context.Context, mode beatmap.GameMode) (bool, error)

	// CalculatePerformance computes performance attributes for a score
	// on the given raw beatmap.
	CalculatePerformance(ctx context.Context, beatmapRaw string, score *scoring.Score) (*PerformanceAttributes, error)

	// CalculateDifficulty computes difficulty attributes for the given
	// raw beatmap, mods, and mode.
	CalculateDifficulty(ctx context.Context, beatmapRaw string, mods []scoring.Mod, mode beatmap.GameMode) (*DifficultyAttributes, error)
}
