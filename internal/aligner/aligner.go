// Package aligner wraps the two alignment collaborators of the pipeline:
// a fast approximate aligner that finds a seed hit, and an accurate aligner
// that realigns the flanks around it.
//
// Both are available as external programs (blastn, cmalign) and as
// in-process dynamic-programming fallbacks for small inputs.
package aligner

import (
	"context"
	"fmt"

	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/feature"
	"github.com/aria-lang/vannot-go/internal/flank"
	"github.com/aria-lang/vannot-go/internal/indel"
	"github.com/aria-lang/vannot-go/internal/join"
	"github.com/aria-lang/vannot-go/internal/sequence"
)

// Model is the read-only reference data of one model.
type Model struct {
	Name      string
	Consensus string
	// CMFile is the covariance model used by cmalign.
	CMFile   string
	Features *feature.Table
}

// Len returns the model length.
func (m *Model) Len() uint64 {
	return uint64(len(m.Consensus))
}

// Hit is the best approximate alignment of a sequence to a model. Both
// spans are plus strand; for a Minus hit Seq is a span of the reverse
// complement of the sequence.
type Hit struct {
	Model      coords.Segment
	Seq        coords.Segment
	Strand     coords.Strand
	Insertions string
	Deletions  string
	Score      float64
}

func (h Hit) String() string {
	return fmt.Sprintf("model %s seq %s (%s) ins %q del %q", h.Model, h.Seq, h.Strand, h.Insertions, h.Deletions)
}

// Seeder finds the approximate hit of seq on m. ok is false when there is
// no hit at all.
type Seeder interface {
	Seed(ctx context.Context, m *Model, seq *sequence.Sequence) (hit Hit, ok bool, err error)
}

// FlankAligner accurately aligns each requested subsequence of seq, which
// is already oriented on the hit strand, and returns one flank per request
// in request order.
type FlankAligner interface {
	AlignFlanks(ctx context.Context, m *Model, seq *sequence.Sequence, reqs []flank.Request) ([]join.Flank, error)
}

// AlignerError is the base error type for collaborator failures.
type AlignerError interface {
	error
	IsAlignerError()
}

// TooLargeError is returned when an in-process alignment would exceed its
// matrix budget.
type TooLargeError struct {
	Cells    int
	MaxCells int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("alignment needs %d cells, limit is %d; configure an external aligner", e.Cells, e.MaxCells)
}

func (e *TooLargeError) IsAlignerError() {}

// Summarize derives the indel tokens of a pairwise alignment whose first
// residue is sequence position seqStart and whose first model column is
// model position modelStart.
func Summarize(t alignment.Triple, seqStart, modelStart uint64) (insertions, deletions []indel.Token) {
	lastSeq, lastModel := seqStart-1, modelStart-1
	var cur *indel.Token
	for _, c := range t.Columns(seqStart, modelStart) {
		switch {
		case c.Match():
			lastSeq, lastModel = c.SeqPos, c.ModelPos
			cur = nil
		case c.HasSeq:
			if cur == nil || cur.Kind != indel.Insertion {
				insertions = append(insertions, indel.Token{SeqPos: lastSeq, ModelPos: lastModel, Kind: indel.Insertion})
				cur = &insertions[len(insertions)-1]
			}
			cur.Len++
			lastSeq = c.SeqPos
		case c.HasModel:
			if cur == nil || cur.Kind != indel.Deletion {
				deletions = append(deletions, indel.Token{SeqPos: lastSeq, ModelPos: lastModel, Kind: indel.Deletion})
				cur = &deletions[len(deletions)-1]
			}
			cur.Len++
			lastModel = c.ModelPos
		}
	}
	return insertions, deletions
}
