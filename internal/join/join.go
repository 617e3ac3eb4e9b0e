// Package join splices the accurate flank alignments and the seed of one
// sequence into a single alignment covering the whole sequence and model.
//
// All positions are 1-based. The seed is trusted verbatim; a flank is only
// accepted when every residue it shares with the seed sits on the seed's
// diagonal.
package join

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/flank"
	"github.com/aria-lang/vannot-go/internal/invariant"
)

// ErrMissingFlank is returned when the seed stops short of a sequence end
// and no flank alignment was supplied for that side.
var ErrMissingFlank = errors.New("seed does not reach the sequence end and no flank was supplied")

// Flank is the accurate alignment of one flank subsequence.
type Flank struct {
	Triple alignment.Triple
	// Model is the span of model positions the triple's model row covers.
	Model coords.Segment
	// Seq is the flank subsequence in full-sequence coordinates.
	Seq coords.Segment
	// Inserts are relative to the flank subsequence (its first residue is 1).
	// When nil they are derived from the triple.
	Inserts []alignment.Insert
}

func (f *Flank) inserts() []alignment.Insert {
	if f.Inserts != nil {
		return f.Inserts
	}
	return f.Triple.Inserts(1, f.Model.Start)
}

// Input is everything needed to join one sequence.
type Input struct {
	Five  *Flank
	Three *Flank

	SeedModel coords.Segment
	SeedSeq   coords.Segment
	// SeedBases is the raw subsequence under SeedSeq.
	SeedBases string
	// Consensus is the full model consensus; its length is the model length.
	Consensus string
	SeqLen    uint64
}

// Result is a joined alignment in full-sequence and full-model coordinates.
type Result struct {
	Triple  alignment.Triple
	Inserts []alignment.Insert
	Model   coords.Segment
	Seq     coords.Segment
}

// SpliceFailure reports a flank that cannot be joined to the seed. It is
// recoverable: the sequence simply gets no joined alignment.
type SpliceFailure struct {
	Side     flank.Side
	Expected int64
	Observed int64
	SeqPos   uint64
	ModelPos uint64
	Reason   string
}

func (e *SpliceFailure) Error() string {
	return fmt.Sprintf("cannot join %s flank at Q%d:S%d: expected diagonal %d, observed %d: %s",
		e.Side, e.SeqPos, e.ModelPos, e.Expected, e.Observed, e.Reason)
}

// IsSpliceFailure marks this as a join error.
func (e *SpliceFailure) IsSpliceFailure() {}

// Join splices in.Five, the seed and in.Three. A flank that disagrees with
// the seed yields a *SpliceFailure and no result.
func Join(in Input) (*Result, error) {
	m := uint64(len(in.Consensus))
	s, e := in.SeedSeq.Bounds()
	ms, me := in.SeedModel.Bounds()
	if in.SeedModel.Length() != in.SeedSeq.Length() {
		return nil, invariant.Newf("seed-length", "model %s vs sequence %s", in.SeedModel, in.SeedSeq)
	}
	if uint64(len(in.SeedBases)) != in.SeedSeq.Length() {
		return nil, invariant.Newf("seed-bases", "%d bases for seed %s", len(in.SeedBases), in.SeedSeq)
	}
	if e > in.SeqLen || me > m {
		return nil, invariant.Newf("seed-span", "seed %s/%s outside sequence 1..%d model 1..%d",
			in.SeedSeq, in.SeedModel, in.SeqLen, m)
	}
	if (s > 1 && in.Five == nil) || (e < in.SeqLen && in.Three == nil) {
		return nil, ErrMissingFlank
	}

	d := int64(ms) - int64(s)
	var r rows

	// 5' side
	if in.Five != nil {
		f := in.Five
		if err := checkFlank(flank.FivePrime, f, m, d); err != nil {
			return nil, err
		}
		if f.Seq.Start != 1 || f.Seq.Stop < s {
			return nil, &SpliceFailure{Side: flank.FivePrime, Expected: d, Observed: d, SeqPos: f.Seq.Stop,
				Reason: fmt.Sprintf("flank %s does not run from 1 into the seed at %d", f.Seq, s)}
		}
		cut, err := boundary(flank.FivePrime, f, d, s, f.Seq.Stop)
		if err != nil {
			return nil, err
		}
		r.gap(in.Consensus, 1, f.Model.Start-1)
		r.triple(f.Triple.Slice(0, cut))
	} else {
		r.gap(in.Consensus, 1, ms-1)
	}

	r.seed(in.SeedBases, in.Consensus[ms-1:me])

	// 3' side
	if in.Three != nil {
		f := in.Three
		if err := checkFlank(flank.ThreePrime, f, m, d); err != nil {
			return nil, err
		}
		if f.Seq.Stop != in.SeqLen || f.Seq.Start > e {
			return nil, &SpliceFailure{Side: flank.ThreePrime, Expected: d, Observed: d, SeqPos: f.Seq.Start,
				Reason: fmt.Sprintf("flank %s does not run from the seed end %d to %d", f.Seq, e, in.SeqLen)}
		}
		cut, err := boundary(flank.ThreePrime, f, d, f.Seq.Start, e)
		if err != nil {
			return nil, err
		}
		r.triple(f.Triple.Slice(cut+1, f.Triple.Width()))
		r.gap(in.Consensus, f.Model.Stop+1, m)
	} else {
		r.gap(in.Consensus, me+1, m)
	}

	t, err := r.build()
	if err != nil {
		return nil, err
	}

	var ins []alignment.Insert
	for _, f := range []*Flank{in.Five, in.Three} {
		if f == nil {
			continue
		}
		for _, x := range rebase(f.inserts(), f.Seq.Start) {
			if x.SeqPos+x.Len-1 >= s && x.SeqPos <= e {
				continue
			}
			ins = append(ins, x)
		}
	}

	res := &Result{
		Triple:  t,
		Inserts: ins,
		Model:   coords.NewSegment(1, m),
		Seq:     coords.NewSegment(1, in.SeqLen),
	}
	if err := verify(res, in.SeqLen, m); err != nil {
		return nil, err
	}
	if err := anchored(res.Triple, s, ms); err != nil {
		return nil, err
	}
	return res, nil
}

// Whole completes a whole-sequence realignment: model positions the flank
// does not reach are filled with gap columns and its inserts are kept.
func Whole(f Flank, consensus string, seqLen uint64) (*Result, error) {
	m := uint64(len(consensus))
	if f.Seq.Start != 1 || f.Seq.Stop != seqLen {
		return nil, invariant.Newf("whole-span", "flank %s is not the whole sequence 1..%d", f.Seq, seqLen)
	}
	if err := checkFlank(flank.Whole, &f, m, 0); err != nil {
		return nil, err
	}

	var r rows
	r.gap(consensus, 1, f.Model.Start-1)
	r.triple(f.Triple)
	r.gap(consensus, f.Model.Stop+1, m)
	t, err := r.build()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Triple:  t,
		Inserts: rebase(f.inserts(), 1),
		Model:   coords.NewSegment(1, m),
		Seq:     coords.NewSegment(1, seqLen),
	}
	if err := verify(res, seqLen, m); err != nil {
		return nil, err
	}
	return res, nil
}

// checkFlank rejects flank alignments whose rows disagree with their spans.
func checkFlank(side flank.Side, f *Flank, m uint64, d int64) error {
	fail := func(format string, args ...interface{}) error {
		return &SpliceFailure{Side: side, Expected: d, Observed: d, SeqPos: f.Seq.Start, ModelPos: f.Model.Start,
			Reason: fmt.Sprintf(format, args...)}
	}
	if got := uint64(len(f.Triple.Residues())); got != f.Seq.Length() {
		return fail("alignment holds %d residues for span %s", got, f.Seq)
	}
	if got := uint64(f.Triple.ModelLength()); got != f.Model.Length() {
		return fail("alignment holds %d model positions for span %s", got, f.Model)
	}
	if f.Model.Start < 1 || f.Model.Stop > m || f.Model.Start > f.Model.Stop {
		return fail("model span %s outside 1..%d", f.Model, m)
	}
	return nil
}

// boundary checks that every residue in from..to sits on diagonal d and
// returns the column index of the residue that meets the seed: from for the
// 5' flank, to for the 3' flank.
func boundary(side flank.Side, f *Flank, d int64, from, to uint64) (int, error) {
	cut := -1
	var lastModel uint64
	for i, c := range f.Triple.Columns(f.Seq.Start, f.Model.Start) {
		if c.HasModel {
			lastModel = c.ModelPos
		}
		if !c.HasSeq || c.SeqPos < from || c.SeqPos > to {
			continue
		}
		if !c.Match() {
			return 0, &SpliceFailure{Side: side, Expected: d, Observed: int64(lastModel) - int64(c.SeqPos),
				SeqPos: c.SeqPos, ModelPos: lastModel, Reason: "residue is not aligned to a model position"}
		}
		if obs := int64(c.ModelPos) - int64(c.SeqPos); obs != d {
			return 0, &SpliceFailure{Side: side, Expected: d, Observed: obs,
				SeqPos: c.SeqPos, ModelPos: c.ModelPos, Reason: "flank leaves the seed diagonal"}
		}
		if (side == flank.FivePrime && c.SeqPos == from) || (side == flank.ThreePrime && c.SeqPos == to) {
			cut = i
		}
	}
	if cut < 0 {
		return 0, invariant.Newf("flank-boundary", "%s flank %s has no column for its seed boundary", side, f.Seq)
	}
	return cut, nil
}

func rebase(ins []alignment.Insert, seqStart uint64) []alignment.Insert {
	out := make([]alignment.Insert, 0, len(ins))
	for _, x := range ins {
		x.SeqPos += seqStart - 1
		out = append(out, x)
	}
	return out
}

// verify checks the joined alignment covers every residue and every model
// position exactly once.
func verify(res *Result, seqLen, m uint64) error {
	t := res.Triple
	if len(t.Model) != len(t.Seq) || (t.Confidence != nil && len(*t.Confidence) != len(t.Seq)) {
		return invariant.Newf("joined-width", "rows of width %d/%d", len(t.Seq), len(t.Model))
	}
	if got := uint64(len(t.Residues())); got != seqLen {
		return invariant.Newf("joined-residues", "%d residues for a sequence of %d", got, seqLen)
	}
	if got := uint64(t.ModelLength()); got != m {
		return invariant.Newf("joined-model", "%d model positions for a model of %d", got, m)
	}
	return nil
}

// anchored checks that the first seed residue landed on the first seed
// model position, i.e. the pieces were stitched without a shift.
func anchored(t alignment.Triple, s, ms uint64) error {
	for _, c := range t.Columns(1, 1) {
		if c.HasSeq && c.SeqPos == s {
			if !c.HasModel || c.ModelPos != ms {
				return invariant.Newf("joined-seed", "residue %d sits on model %d, seed starts at %d", s, c.ModelPos, ms)
			}
			return nil
		}
	}
	return invariant.Newf("joined-seed", "residue %d missing", s)
}

// rows accumulates the joined alignment piece by piece.
type rows struct {
	seq, model, conf strings.Builder
	noConf           bool
}

// gap appends model positions from..to as columns without residues.
func (r *rows) gap(consensus string, from, to uint64) {
	if from < 1 || from > to {
		return
	}
	n := int(to - from + 1)
	r.seq.WriteString(strings.Repeat(string(alignment.GapChar), n))
	r.model.WriteString(consensus[from-1 : to])
	r.conf.WriteString(strings.Repeat(string(alignment.InsertGapChar), n))
}

func (r *rows) triple(t alignment.Triple) {
	r.seq.WriteString(t.Seq)
	r.model.WriteString(t.Model)
	if t.Confidence == nil {
		r.noConf = true
		return
	}
	r.conf.WriteString(*t.Confidence)
}

func (r *rows) seed(bases, model string) {
	r.seq.WriteString(bases)
	r.model.WriteString(model)
	r.conf.WriteString(strings.Repeat(string(alignment.CertainChar), len(bases)))
}

func (r *rows) build() (alignment.Triple, error) {
	var conf *string
	if !r.noConf {
		c := r.conf.String()
		conf = &c
	}
	t, err := alignment.NewTriple(r.seq.String(), r.model.String(), conf)
	if err != nil {
		return alignment.Triple{}, invariant.Newf("joined-width", "%v", err)
	}
	return t, nil
}
