// Package coords implements the coordinate algebra used for every
// annotation decision: segments on a strand, multi-segment coordinate
// strings, overlap and adjacency tests, and the circular-origin merge.
//
// Genome coordinates are 1-based and inclusive, exactly as they are written
// in coordinate strings. A Segment stores its raw (Start, Stop) pair with
// Start at the 5' end, so on the minus strand Start > Stop.
package coords

import "fmt"

// Strand is the strand a segment or coordinate string lies on.
type Strand int

const (
	// Plus is the forward strand.
	Plus Strand = iota
	// Minus is the reverse strand.
	Minus
	// Uncertain is used when no strand can be assigned (e.g. no segments).
	Uncertain
	// Mixed is used when the segments of one coordinate string disagree.
	Mixed
)

func (s Strand) String() string {
	switch s {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Mixed:
		return "!"
	default:
		return "?"
	}
}

// Genome describes the sequence coordinates live on. Circular enables the
// wraparound rules; Length is the nominal sequence length.
type Genome struct {
	Length   uint64
	Circular bool
}

// Interval is a closed region [Low, High]. The zero value is the empty region.
type Interval struct {
	Low  uint64
	High uint64
}

// Empty reports whether the interval holds no positions.
func (i Interval) Empty() bool {
	return i.Low == 0 && i.High == 0
}

// Segment is one contiguous stretch of a feature.
type Segment struct {
	Start  uint64
	Stop   uint64
	Strand Strand
}

// NewSegment derives the strand from the raw pair: Start > Stop is Minus,
// anything else Plus.
func NewSegment(start, stop uint64) Segment {
	if start > stop {
		return Segment{Start: start, Stop: stop, Strand: Minus}
	}
	return Segment{Start: start, Stop: stop, Strand: Plus}
}

// Bounds returns the segment canonicalized to (low, high).
func (s Segment) Bounds() (uint64, uint64) {
	if s.Start <= s.Stop {
		return s.Start, s.Stop
	}
	return s.Stop, s.Start
}

// Length returns |Start - Stop| + 1.
func (s Segment) Length() uint64 {
	lo, hi := s.Bounds()
	return hi - lo + 1
}

// Complement returns the same positions read on the opposite strand.
func (s Segment) Complement() Segment {
	out := Segment{Start: s.Stop, Stop: s.Start, Strand: s.Strand}
	switch s.Strand {
	case Plus:
		out.Strand = Minus
	case Minus:
		out.Strand = Plus
	}
	return out
}

// Contains reports whether pos lies inside the segment.
func (s Segment) Contains(pos uint64) bool {
	lo, hi := s.Bounds()
	return pos >= lo && pos <= hi
}

func (s Segment) String() string {
	return FormatSegment(s)
}

// Coords is a coordinate string: segments in 5' to 3' biological order.
type Coords []Segment

// Start returns the 5'-most position of the feature. c must not be empty.
func (c Coords) Start() uint64 {
	return c[0].Start
}

// Stop returns the 3'-most position of the feature. c must not be empty.
func (c Coords) Stop() uint64 {
	return c[len(c)-1].Stop
}

// Length returns the summed length of all segments.
func (c Coords) Length() uint64 {
	var n uint64
	for _, s := range c {
		n += s.Length()
	}
	return n
}

// Strand summarizes the strand of all segments.
func (c Coords) Strand() Strand {
	if len(c) == 0 {
		return Uncertain
	}
	strand := c[0].Strand
	for _, s := range c[1:] {
		if s.Strand != strand {
			return Mixed
		}
	}
	return strand
}

// Equal reports whether both coordinate strings hold the same segments.
func (c Coords) Equal(other Coords) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

func (c Coords) String() string {
	return FormatCoords(c)
}

// MalformedCoordinatesError is returned when coordinate text does not
// follow the grammar. It terminates the run.
type MalformedCoordinatesError struct {
	Text   string
	Reason string
}

func (e *MalformedCoordinatesError) Error() string {
	return fmt.Sprintf("malformed coordinates %q: %s", e.Text, e.Reason)
}

// IsCoordsError marks errors from this package.
func (e *MalformedCoordinatesError) IsCoordsError() {}

// IsFatal marks the error as run-terminating.
func (e *MalformedCoordinatesError) IsFatal() {}
