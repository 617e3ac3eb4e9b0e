package alignment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAlignment is returned when no residue could be aligned to the model.
var ErrNoAlignment = errors.New("no residue aligned to the model")

// Result is a pairwise alignment of a sequence against a model consensus.
// Spans are 1-based positions within the strings that were aligned.
type Result struct {
	Triple     Triple
	SeqStart   uint64
	SeqStop    uint64
	ModelStart uint64
	ModelStop  uint64
	Score      int
}

// SemiGlobal aligns every residue of seq against a stretch of model,
// letting the alignment skip leading and trailing model positions for free.
// This is the shape of a flank alignment: the whole subsequence must be
// placed, the model is only partially covered.
func SemiGlobal(seq, model string, scoring *ScoringMatrix) (*Result, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if len(seq) == 0 || len(model) == 0 {
		return nil, fmt.Errorf("sequences must be non-empty")
	}

	m, n := len(seq), len(model)

	H := make([][]int, m+1)
	traceback := make([][]AlignDirection, m+1)
	for i := range H {
		H[i] = make([]int, n+1)
		traceback[i] = make([]AlignDirection, n+1)
	}

	// First row stays zero: leading model positions are free.
	for i := 1; i <= m; i++ {
		H[i][0] = i * scoring.GapPenalty
		traceback[i][0] = Up
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			diag := H[i-1][j-1] + scoring.Score(seq[i-1], model[j-1])
			up := H[i-1][j] + scoring.GapPenalty
			left := H[i][j-1] + scoring.GapPenalty

			best := diag
			direction := Diagonal

			if up > best {
				best = up
				direction = Up
			}
			if left > best {
				best = left
				direction = Left
			}

			H[i][j] = best
			traceback[i][j] = direction
		}
	}

	// Trailing model positions are free too: best cell of the last row.
	maxJ := 0
	for j := 1; j <= n; j++ {
		if H[m][j] > H[m][maxJ] {
			maxJ = j
		}
	}

	alignedSeq, alignedModel, firstJ := tracebackSemiGlobal(seq, model, traceback, m, maxJ)
	if firstJ == maxJ {
		return nil, fmt.Errorf("%w: every residue is an insert", ErrNoAlignment)
	}

	t, err := NewTriple(alignedSeq, alignedModel, nil)
	if err != nil {
		return nil, err
	}
	return &Result{
		Triple:     t,
		SeqStart:   1,
		SeqStop:    uint64(m),
		ModelStart: uint64(firstJ + 1),
		ModelStop:  uint64(maxJ),
		Score:      H[m][maxJ],
	}, nil
}

// tracebackSemiGlobal walks back until every sequence residue is placed and
// returns the rows plus the model column the alignment starts after.
func tracebackSemiGlobal(seq, model string, traceback [][]AlignDirection, m, n int) (string, string, int) {
	var alignedSeq, alignedModel strings.Builder
	i, j := m, n

	for i > 0 {
		direction := Up
		if j > 0 {
			direction = traceback[i][j]
		}

		switch direction {
		case Diagonal:
			alignedSeq.WriteByte(seq[i-1])
			alignedModel.WriteByte(model[j-1])
			i--
			j--
		case Up:
			alignedSeq.WriteByte(seq[i-1])
			alignedModel.WriteByte(InsertGapChar)
			i--
		case Left:
			alignedSeq.WriteByte(GapChar)
			alignedModel.WriteByte(model[j-1])
			j--
		}
	}

	return reverse(alignedSeq.String()), reverse(alignedModel.String()), j
}

// reverse reverses a string of single-byte residues.
func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
