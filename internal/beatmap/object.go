package beatmap

// ObjectKind identifies the shape of a hit object.
type ObjectKind int

// Hit object kinds.
const (
	KindCircle ObjectKind = iota
	KindSlider
	KindSpinner
	KindHold
)

// Type flag bits from the hit-object type column.
const (
	flagCircle  = 1 << 0
	flagSlider  = 1 << 1
	flagSpinner = 1 << 3
	flagHold    = 1 << 7
)

// Position is a playfield coordinate. The nominal playfield is 512x384.
type Position struct {
	X float64
	Y float64
}

// HitObject is a single timed object in a beatmap. Sliders additionally
// carry their declared repeat count and ordered control points; the fields
// are zero for every other kind.
type HitObject struct {
	StartTime     int
	Pos           Position
	Kind          ObjectKind
	Repeats       int
	ControlPoints []Position
}

// Beatmap is the parsed view of a beatmap: the ordered object stream plus
// the metadata the analyzer needs.
type Beatmap struct {
	Mode GameMode

	// CircleSize is the CS difficulty value. For mania it is the key count.
	CircleSize float64

	// Objects is the hit-object stream in file order. The format requires
	// time ordering; the stream is consumed as-is.
	Objects []HitObject
}

// KeyCount returns the mania key count derived from circle size.
func (b *Beatmap) KeyCount() int {
	return int(b.CircleSize)
}
