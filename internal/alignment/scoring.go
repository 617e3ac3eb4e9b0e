// Package alignment holds the alignment triple (sequence row, model row,
// optional confidence row) together with the column arithmetic the joiner
// needs, Stockholm-style triple IO, and two small dynamic-programming
// aligners used when no external aligner is configured.
package alignment

import "fmt"

// AlignDirection represents the traceback direction in the alignment matrix.
type AlignDirection int

const (
	// Stop represents the end of alignment (local only)
	Stop AlignDirection = iota
	// Diagonal represents a match or mismatch
	Diagonal
	// Up consumes a sequence residue only (insert column)
	Up
	// Left consumes a model position only (deletion column)
	Left
)

// ScoringMatrix represents the scoring parameters for alignment.
type ScoringMatrix struct {
	MatchScore      int
	MismatchPenalty int
	GapPenalty      int
}

// NewScoringMatrix creates a new scoring matrix with validation.
func NewScoringMatrix(match, mismatch, gap int) (*ScoringMatrix, error) {
	if match <= 0 {
		return nil, fmt.Errorf("match score must be positive")
	}
	if mismatch > 0 {
		return nil, fmt.Errorf("mismatch penalty should be <= 0")
	}
	if gap > 0 {
		return nil, fmt.Errorf("gap penalty should be <= 0")
	}

	return &ScoringMatrix{
		MatchScore:      match,
		MismatchPenalty: mismatch,
		GapPenalty:      gap,
	}, nil
}

// DefaultDNA creates a default nucleotide scoring matrix.
func DefaultDNA() *ScoringMatrix {
	return &ScoringMatrix{
		MatchScore:      2,
		MismatchPenalty: -1,
		GapPenalty:      -2,
	}
}

// BLASTLike creates a blastn-like scoring matrix.
func BLASTLike() *ScoringMatrix {
	return &ScoringMatrix{
		MatchScore:      1,
		MismatchPenalty: -3,
		GapPenalty:      -5,
	}
}

// Score returns the score for comparing two residues. Case is ignored,
// U pairs with T, and an ambiguous N scores zero against anything.
func (s *ScoringMatrix) Score(a, b byte) int {
	a, b = canon(a), canon(b)
	if a == 'N' || b == 'N' {
		return 0
	}
	if a == b {
		return s.MatchScore
	}
	return s.MismatchPenalty
}

// String returns a string representation of the scoring matrix.
func (s *ScoringMatrix) String() string {
	return fmt.Sprintf("ScoringMatrix { match: %d, mismatch: %d, gap: %d }",
		s.MatchScore, s.MismatchPenalty, s.GapPenalty)
}

func canon(c byte) byte {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c == 'U' {
		return 'T'
	}
	return c
}
