package aligner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/flank"
	"github.com/aria-lang/vannot-go/internal/indel"
	"github.com/aria-lang/vannot-go/internal/join"
	"github.com/aria-lang/vannot-go/internal/sequence"
)

// DefaultMaxCells bounds the dynamic-programming matrix of the in-process
// aligners.
const DefaultMaxCells = 50_000_000

func checkCells(seqLen, modelLen, max int) error {
	if max <= 0 {
		max = DefaultMaxCells
	}
	if cells := seqLen * modelLen; cells > max {
		return &TooLargeError{Cells: cells, MaxCells: max}
	}
	return nil
}

// LocalSeeder seeds with an in-process Smith-Waterman alignment on both
// strands. The better scoring strand wins; plus wins ties.
type LocalSeeder struct {
	Scoring  *alignment.ScoringMatrix
	MaxCells int
}

// Seed implements Seeder.
func (s *LocalSeeder) Seed(ctx context.Context, m *Model, seq *sequence.Sequence) (Hit, bool, error) {
	if err := checkCells(seq.Len(), len(m.Consensus), s.MaxCells); err != nil {
		return Hit{}, false, err
	}

	var (
		best   *alignment.Result
		strand coords.Strand
	)
	for _, cand := range []struct {
		bases  string
		strand coords.Strand
	}{{seq.Bases, coords.Plus}, {seq.ReverseComplement().Bases, coords.Minus}} {
		if err := ctx.Err(); err != nil {
			return Hit{}, false, err
		}
		res, err := alignment.SmithWaterman(cand.bases, m.Consensus, s.Scoring)
		if errors.Is(err, alignment.ErrNoAlignment) {
			continue
		}
		if err != nil {
			return Hit{}, false, err
		}
		if best == nil || res.Score > best.Score {
			best, strand = res, cand.strand
		}
	}
	if best == nil {
		return Hit{}, false, nil
	}

	ins, del := Summarize(best.Triple, best.SeqStart, best.ModelStart)
	return Hit{
		Model:      coords.Segment{Start: best.ModelStart, Stop: best.ModelStop, Strand: coords.Plus},
		Seq:        coords.Segment{Start: best.SeqStart, Stop: best.SeqStop, Strand: coords.Plus},
		Strand:     strand,
		Insertions: indel.Format(ins),
		Deletions:  indel.Format(del),
		Score:      float64(best.Score),
	}, true, nil
}

// LocalFlanker aligns each flank in-process with a semi-global alignment
// that places every flank residue on a stretch of the consensus.
type LocalFlanker struct {
	Scoring  *alignment.ScoringMatrix
	MaxCells int
}

// AlignFlanks implements FlankAligner.
func (l *LocalFlanker) AlignFlanks(ctx context.Context, m *Model, seq *sequence.Sequence, reqs []flank.Request) ([]join.Flank, error) {
	flanks := make([]join.Flank, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bases, err := seq.Sub(req.Seq)
		if err != nil {
			return nil, err
		}
		if err := checkCells(len(bases), len(m.Consensus), l.MaxCells); err != nil {
			return nil, err
		}
		res, err := alignment.SemiGlobal(bases, m.Consensus, l.Scoring)
		if err != nil {
			return nil, fmt.Errorf("%s flank %s: %w", req.Side, req.Seq, err)
		}
		flanks = append(flanks, join.Flank{
			Triple: res.Triple,
			Model:  coords.NewSegment(res.ModelStart, res.ModelStop),
			Seq:    req.Seq,
		})
	}
	return flanks, nil
}
