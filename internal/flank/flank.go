// Package flank decides which parts of a sequence outside the seed still
// need an accurate alignment.
package flank

import (
	"fmt"

	"github.com/aria-lang/vannot-go/internal/coords"
)

// Side labels a flank request.
type Side int

const (
	// FivePrime is the region from position 1 into the seed.
	FivePrime Side = iota
	// ThreePrime is the region from inside the seed to the sequence end.
	ThreePrime
	// Whole asks for the full sequence to be realigned.
	Whole
)

func (s Side) String() string {
	switch s {
	case FivePrime:
		return "5'"
	case ThreePrime:
		return "3'"
	default:
		return "whole"
	}
}

// Request is one subsequence, in 1-based full-sequence coordinates, to hand
// to the accurate aligner.
type Request struct {
	Side Side
	Seq  coords.Segment
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s", r.Side, r.Seq)
}

// Select returns zero, one or two flank requests for a sequence of length
// seqLen whose seed covers seed (plus strand) with an overhang of width
// residues reaching back into the seed. When the two flank windows touch or
// cross, a single Whole request replaces them.
func Select(seqLen uint64, seed coords.Segment, width uint64) []Request {
	s, e := seed.Bounds()
	if s == 1 && e == seqLen {
		return nil
	}

	var five, three *Request
	if s > 1 {
		five = &Request{Side: FivePrime, Seq: span(1, min(e, s+width-1))}
	}
	if e < seqLen {
		start := s
		if e+1 > width && e-width+1 > s {
			start = e - width + 1
		}
		three = &Request{Side: ThreePrime, Seq: span(start, seqLen)}
	}

	if five != nil && three != nil && five.Seq.Stop >= three.Seq.Start {
		return []Request{{Side: Whole, Seq: span(1, seqLen)}}
	}

	var out []Request
	if five != nil {
		out = append(out, *five)
	}
	if three != nil {
		out = append(out, *three)
	}
	return out
}

func span(start, stop uint64) coords.Segment {
	return coords.Segment{Start: start, Stop: stop, Strand: coords.Plus}
}
