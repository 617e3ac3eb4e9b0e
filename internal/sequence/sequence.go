// Package sequence holds the nucleotide sequences being annotated.
//
// Bases are stored upper case with U read as T. Positions handed in and out
// of this package are 1-based and inclusive; Sub is the only place that
// turns them into string offsets.
package sequence

import (
	"fmt"
	"strings"

	"github.com/aria-lang/vannot-go/internal/coords"
)

// Sequence is one named nucleotide sequence.
type Sequence struct {
	ID          string
	Description string
	Bases       string
}

// New normalizes and validates bases.
func New(id, bases string) (*Sequence, error) {
	normalized := strings.ToUpper(bases)
	normalized = strings.ReplaceAll(normalized, "U", "T")

	if len(normalized) == 0 {
		return nil, &EmptySequenceError{ID: id}
	}
	if err := Validate(id, normalized); err != nil {
		return nil, err
	}
	return &Sequence{ID: id, Bases: normalized}, nil
}

// WithDescription is New plus a free-text description.
func WithDescription(id, description, bases string) (*Sequence, error) {
	s, err := New(id, bases)
	if err != nil {
		return nil, err
	}
	s.Description = description
	return s, nil
}

// Len returns the length of the sequence.
func (s *Sequence) Len() int {
	return len(s.Bases)
}

// Sub returns the bases under seg. A minus-strand segment yields the
// reverse complement of its bounds.
func (s *Sequence) Sub(seg coords.Segment) (string, error) {
	lo, hi := seg.Bounds()
	if lo < 1 || hi > uint64(len(s.Bases)) {
		return "", &RangeError{ID: s.ID, Start: seg.Start, Stop: seg.Stop, Length: len(s.Bases)}
	}
	sub := s.Bases[lo-1 : hi]
	if seg.Strand == coords.Minus {
		return reverseComplement(sub), nil
	}
	return sub, nil
}

// ReverseComplement returns the sequence read from the opposite strand.
func (s *Sequence) ReverseComplement() *Sequence {
	return &Sequence{
		ID:          s.ID,
		Description: s.Description,
		Bases:       reverseComplement(s.Bases),
	}
}

func reverseComplement(bases string) string {
	out := make([]byte, len(bases))
	for i := 0; i < len(bases); i++ {
		c, ok := complements[bases[i]]
		if !ok {
			c = 'N'
		}
		out[len(bases)-1-i] = c
	}
	return string(out)
}

// CountAmbiguous counts bases other than A, C, G and T.
func (s *Sequence) CountAmbiguous() int {
	count := 0
	for i := 0; i < len(s.Bases); i++ {
		if IsAmbiguous(s.Bases[i]) {
			count++
		}
	}
	return count
}

// GCContent calculates the proportion of G and C bases.
func (s *Sequence) GCContent() float64 {
	if len(s.Bases) == 0 {
		return 0.0
	}

	gcCount := 0
	for i := 0; i < len(s.Bases); i++ {
		if s.Bases[i] == 'G' || s.Bases[i] == 'C' {
			gcCount++
		}
	}

	return float64(gcCount) / float64(len(s.Bases))
}

// String returns a short description of the sequence.
func (s *Sequence) String() string {
	return fmt.Sprintf("%s (%d nt)", s.ID, len(s.Bases))
}
