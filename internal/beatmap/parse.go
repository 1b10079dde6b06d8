package beatmap

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrNoObjects is returned when a beatmap declares no hit objects.
var ErrNoObjects = errors.New("beatmap has no hit objects")

type section int

const (
	secNone section = iota
	secGeneral
	secDifficulty
	secHitObjects
	secOther
)

// Parse extracts the hit-object stream from .osu text.
func Parse(raw string) (*Beatmap, error) {
	return Decode(strings.NewReader(raw))
}

// Decode extracts the hit-object stream from an .osu reader.
func Decode(r io.Reader) (*Beatmap, error) {
	sc := bufio.NewScanner(r)
	buf := make([]byte, 64*1024)
	sc.Buffer(buf, 1024*1024)

	b := &Beatmap{Mode: ModeOsu}

	sec := secNone
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			switch line {
			case "[General]":
				sec = secGeneral
			case "[Difficulty]":
				sec = secDifficulty
			case "[HitObjects]":
				sec = secHitObjects
			default:
				sec = secOther
			}
			continue
		}

		switch sec {
		case secGeneral:
			key, val := splitKeyVal(line)
			if key == "Mode" {
				if mode := ParseMode(parseInt(val, 0)); mode != ModeUnknown {
					b.Mode = mode
				}
			}

		case secDifficulty:
			key, val := splitKeyVal(line)
			if key == "CircleSize" {
				b.CircleSize = parseFloat(val, 0)
			}

		case secHitObjects:
			if obj, ok := parseObjectLine(line); ok {
				b.Objects = append(b.Objects, obj)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(b.Objects) == 0 {
		return nil, ErrNoObjects
	}
	return b, nil
}

// parseObjectLine parses one [HitObjects] line:
// x,y,time,type,hitSound,objectParams...
func parseObjectLine(line string) (HitObject, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 5 {
		return HitObject{}, false
	}

	obj := HitObject{
		StartTime: parseInt(parts[2], 0),
		Pos: Position{
			X: parseFloat(parts[0], 0),
			Y: parseFloat(parts[1], 0),
		},
	}

	flags := parseInt(parts[3], 0)
	switch {
	case flags&flagHold != 0:
		obj.Kind = KindHold
	case flags&flagSpinner != 0:
		obj.Kind = KindSpinner
	case flags&flagSlider != 0:
		obj.Kind = KindSlider
		if len(parts) >= 6 {
			obj.ControlPoints = parseControlPoints(parts[5])
		}
		if len(parts) >= 7 {
			obj.Repeats = parseInt(parts[6], 1)
		}
	default:
		obj.Kind = KindCircle
	}

	return obj, true
}

// parseControlPoints parses the slider path column "T|x:y|x:y|...",
// skipping the leading curve-type token.
func parseControlPoints(column string) []Position {
	tokens := strings.Split(column, "|")
	if len(tokens) < 2 {
		return nil
	}

	points := make([]Position, 0, len(tokens)-1)
	for _, t := range tokens[1:] {
		xy := strings.SplitN(strings.TrimSpace(t), ":", 2)
		if len(xy) != 2 {
			continue
		}
		points = append(points, Position{
			X: parseFloat(xy[0], 0),
			Y: parseFloat(xy[1], 0),
		})
	}
	return points
}

func splitKeyVal(line string) (key, val string) {
	i := strings.Index(line, ":")
	if i < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
}

func parseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}
