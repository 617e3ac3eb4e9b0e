package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// EmptySequenceError is returned when a sequence is empty.
type EmptySequenceError struct {
	ID string
}

func (e *EmptySequenceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("sequence %s must have at least one base", e.ID)
	}
	return "sequence must have at least one base"
}

func (e *EmptySequenceError) IsSequenceError() {}

// InvalidBaseError is returned when an invalid base is encountered.
// Position is 1-based.
type InvalidBaseError struct {
	ID       string
	Position int
	Found    rune
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base '%c' at position %d of %s", e.Found, e.Position, e.ID)
}

func (e *InvalidBaseError) IsSequenceError() {}

// RangeError is returned when a subsequence lies outside the sequence.
type RangeError struct {
	ID     string
	Start  uint64
	Stop   uint64
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %d..%d outside %s of length %d", e.Start, e.Stop, e.ID, e.Length)
}

func (e *RangeError) IsSequenceError() {}

// complements maps every accepted IUPAC nucleotide to its complement.
var complements = map[byte]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A',
	'R': 'Y', 'Y': 'R', 'S': 'S', 'W': 'W',
	'K': 'M', 'M': 'K', 'B': 'V', 'V': 'B',
	'D': 'H', 'H': 'D', 'N': 'N',
}

// IsValidBase reports whether c is an upper-case IUPAC nucleotide.
func IsValidBase(c byte) bool {
	_, ok := complements[c]
	return ok
}

// IsAmbiguous reports whether c is a valid base other than A, C, G or T.
func IsAmbiguous(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'T':
		return false
	}
	return IsValidBase(c)
}

// Validate checks that bases holds only upper-case IUPAC nucleotides.
func Validate(id, bases string) error {
	for i := 0; i < len(bases); i++ {
		if !IsValidBase(bases[i]) {
			return &InvalidBaseError{ID: id, Position: i + 1, Found: rune(bases[i])}
		}
	}
	return nil
}
