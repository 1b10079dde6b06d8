// Package beatmap defines the hit-object view of a beatmap consumed by the
// suspicion analyzer and the calculator backends. Full beatmap grammar
// parsing is an external concern; this package extracts only the ordered
// object stream, the declared game mode, and the key count.
package beatmap

import (
	"fmt"
	"strings"
)

// GameMode identifies a ruleset.
type GameMode int

// Supported game modes, matching ruleset ids 0-3.
const (
	ModeOsu GameMode = iota
	ModeTaiko
	ModeFruits
	ModeMania
)

// ModeUnknown is returned for ruleset ids outside 0-3.
const ModeUnknown GameMode = -1

// ParseMode maps a ruleset id to a GameMode.
func ParseMode(rulesetID int) GameMode {
	if rulesetID < int(ModeOsu) || rulesetID > int(ModeMania) {
		return ModeUnknown
	}
	return GameMode(rulesetID)
}

// ParseModeName maps a ruleset name to a GameMode.
func ParseModeName(name string) (GameMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "osu", "std", "standard":
		return ModeOsu, nil
	case "taiko":
		return ModeTaiko, nil
	case "fruits", "catch", "ctb":
		return ModeFruits, nil
	case "mania":
		return ModeMania, nil
	}
	return ModeUnknown, fmt.Errorf("unknown game mode %q", name)
}

// RulesetID returns the numeric ruleset id, or -1 for unknown modes.
func (m GameMode) RulesetID() int {
	return int(m)
}

// String returns the canonical ruleset name.
func (m GameMode) String() string {
	switch m {
	case ModeOsu:
		return "osu"
	case ModeTaiko:
		return "taiko"
	case ModeFruits:
		return "fruits"
	case ModeMania:
		return "mania"
	default:
		return "unknown"
	}
}
