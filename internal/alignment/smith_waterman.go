package alignment

import (
	"fmt"
	"strings"
)

// SmithWaterman finds the best local alignment of seq against model. It is
// the in-process stand-in for the approximate seed search.
func SmithWaterman(seq, model string, scoring *ScoringMatrix) (*Result, error) {
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

	maxScore := 0
	maxI, maxJ := 0, 0

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			diag := H[i-1][j-1] + scoring.Score(seq[i-1], model[j-1])
			up := H[i-1][j] + scoring.GapPenalty
			left := H[i][j-1] + scoring.GapPenalty

			// Find maximum (including 0 for local alignment)
			best := 0
			direction := Stop

			if diag > best {
				best = diag
				direction = Diagonal
			}
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

			if best > maxScore {
				maxScore = best
				maxI, maxJ = i, j
			}
		}
	}

	if maxScore == 0 {
		return nil, ErrNoAlignment
	}

	alignedSeq, alignedModel, startI, startJ := tracebackLocal(seq, model, traceback, maxI, maxJ)
	t, err := NewTriple(alignedSeq, alignedModel, nil)
	if err != nil {
		return nil, err
	}
	return &Result{
		Triple:     t,
		SeqStart:   uint64(startI + 1),
		SeqStop:    uint64(maxI),
		ModelStart: uint64(startJ + 1),
		ModelStop:  uint64(maxJ),
		Score:      maxScore,
	}, nil
}

// tracebackLocal performs traceback for local alignment and returns the
// 0-based cells the alignment starts after.
func tracebackLocal(seq, model string, traceback [][]AlignDirection, startI, startJ int) (string, string, int, int) {
	var alignedSeq, alignedModel strings.Builder
	i, j := startI, startJ

loop:
	for i > 0 && j > 0 {
		switch traceback[i][j] {
		case Stop:
			break loop
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

	return reverse(alignedSeq.String()), reverse(alignedModel.String()), i, j
}
