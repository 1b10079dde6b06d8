// Package suspicion screens beatmaps for anomalous or adversarial content
// before they are allowed to earn PP. The heuristics follow the detection
// model used by rosu-pp's beatmap suspicion checks: object-count and
// duration ceilings, sliding-window density, slider geometry bounds, and
// overlapping-object (2B) patterns.
package suspicion

import (
	"github.com/googuteam/scorepp/internal/beatmap"
)

// Detection thresholds. Position bounds are already 4x the nominal play
// area, deliberately generous so legitimate edge-of-field content never
// trips them.
const (
	// MaxObjects is the object-count ceiling for non-taiko modes.
	MaxObjects = 500000

	// MaxObjectsTaiko is the object-count ceiling for taiko.
	MaxObjectsTaiko = 30000

	// NotesPer1s is the burst density ceiling (3000 BPM equivalent).
	NotesPer1s = 200

	// NotesPer10s is the sustained density ceiling (600 BPM equivalent).
	NotesPer10s = 500

	// MaxPosX and MaxPosY bound slider head and control point positions.
	MaxPosX = 512
	MaxPosY = 384

	// MaxSliderRepeats is the slider repeat-count ceiling.
	MaxSliderRepeats = 5000

	// MaxDurationMS is the maximum span of the object stream (24 hours).
	MaxDurationMS = 24 * 60 * 60 * 1000
)

// Evaluate reports whether the object stream is suspicious for the given
// mode. keyCount is only consulted for mania. Pure and deterministic.
func Evaluate(objects []beatmap.HitObject, mode beatmap.GameMode, keyCount int) bool {
	if len(objects) == 0 {
		return false
	}

	if objects[len(objects)-1].StartTime-objects[0].StartTime > MaxDurationMS {
		return true
	}

	if mode == beatmap.ModeTaiko {
		if len(objects) > MaxObjectsTaiko {
			return true
		}
	} else if len(objects) > MaxObjects {
		return true
	}

	switch mode {
	case beatmap.ModeOsu:
		return tooDense(objects, NotesPer1s, NotesPer10s) ||
			sliderSuspicious(objects) ||
			hasOverlap(objects)
	case beatmap.ModeTaiko:
		return tooDense(objects, NotesPer1s*2, NotesPer10s*2) ||
			hasOverlap(objects)
	case beatmap.ModeFruits:
		return sliderSuspicious(objects) || hasOverlap(objects)
	case beatmap.ModeMania:
		keysPerHand := keyCount / 2
		if keysPerHand < 1 {
			keysPerHand = 1
		}
		return tooDense(objects, NotesPer1s*keysPerHand, NotesPer10s*keysPerHand)
	}
	return false
}

// EvaluateBeatmap reports whether a parsed beatmap is suspicious.
func EvaluateBeatmap(b *beatmap.Beatmap) bool {
	return Evaluate(b.Objects, b.Mode, b.KeyCount())
}

// CheckRaw parses raw .osu content and evaluates it. A parse error is
// returned to the caller, which is expected to fail open.
func CheckRaw(raw string) (bool, error) {
	b, err := beatmap.Parse(raw)
	if err != nil {
		return false, err
	}
	return EvaluateBeatmap(b), nil
}

// tooDense is a two-tier sliding-window density test. The short window
// catches bursts; the long window catches sustained high rate near the
// stream's tail where the short lookahead runs out of data. Objects near
// the very end with neither lookahead in range are not flagged.
func tooDense(objects []beatmap.HitObject, per1s, per10s int) bool {
	if per1s < 1 {
		per1s = 1
	}
	if per10s < 1 {
		per10s = 1
	}
	for i := range objects {
		if i+per1s < len(objects) {
			if objects[i+per1s].StartTime-objects[i].StartTime < 1000 {
				return true
			}
		} else if i+per10s < len(objects) &&
			objects[i+per10s].StartTime-objects[i].StartTime < 10000 {
			return true
		}
	}
	return false
}

// sliderSuspicious reports whether any slider has an absurd repeat count
// or a head/control point outside the position bounds.
func sliderSuspicious(objects []beatmap.HitObject) bool {
	for i := range objects {
		obj := &objects[i]
		if obj.Kind != beatmap.KindSlider {
			continue
		}
		if obj.Repeats > MaxSliderRepeats {
			return true
		}
		if outOfBounds(obj.Pos) {
			return true
		}
		for _, p := range obj.ControlPoints {
			if outOfBounds(p) {
				return true
			}
		}
	}
	return false
}

func outOfBounds(p beatmap.Position) bool {
	return p.X < 0 || p.X > MaxPosX || p.Y < 0 || p.Y > MaxPosY
}

// hasOverlap detects 2B-style overlapping objects: two time-adjacent
// objects beginning at the same instant. The legacy check compared an
// object against its successor's timestamp; this compares the timestamps
// directly, which is the intended semantics.
func hasOverlap(objects []beatmap.HitObject) bool {
	for i := 0; i+1 < len(objects); i++ {
		if objects[i].StartTime == objects[i+1].StartTime {
			return true
		}
	}
	return false
}
