// Package ungapped decomposes an approximate alignment into gap-free
// regions paired across model and sequence coordinates, and picks the
// longest one as the seed.
package ungapped

import (
	"sort"

	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/indel"
	"github.com/aria-lang/vannot-go/internal/invariant"
)

// Pair is one ungapped aligned region. Model and Seq always have the same
// length.
type Pair struct {
	Model coords.Segment
	Seq   coords.Segment
}

// Length returns the number of aligned residues in the pair.
func (p Pair) Length() uint64 {
	return p.Seq.Length()
}

// Diagonal returns model start minus sequence start, constant along the pair.
func (p Pair) Diagonal() int64 {
	return int64(p.Model.Start) - int64(p.Seq.Start)
}

func newPair(ms, me, ss, se uint64) (Pair, error) {
	p := Pair{
		Model: coords.Segment{Start: ms, Stop: me, Strand: coords.Plus},
		Seq:   coords.Segment{Start: ss, Stop: se, Strand: coords.Plus},
	}
	if p.Model.Length() != p.Seq.Length() {
		return Pair{}, invariant.Newf("ungapped-pair-length",
			"model %s (%d) vs sequence %s (%d)", p.Model, p.Model.Length(), p.Seq, p.Seq.Length())
	}
	return p, nil
}

// Find walks the insertion and deletion tokens of one alignment spanning
// model and seq (both plus-strand, Start <= Stop) and returns the ungapped
// regions in order. Tokens may arrive unsorted. Any inconsistency between
// the tokens and the span is an invariant.Violation.
func Find(model, seq coords.Segment, insertions, deletions []indel.Token) ([]Pair, error) {
	if model.Start > model.Stop || seq.Start > seq.Stop {
		return nil, invariant.Newf("ungapped-span", "descending span model %s sequence %s", model, seq)
	}

	tokens := make([]indel.Token, 0, len(insertions)+len(deletions))
	tokens = append(tokens, insertions...)
	tokens = append(tokens, deletions...)
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].SeqPos != tokens[j].SeqPos {
			return tokens[i].SeqPos < tokens[j].SeqPos
		}
		return tokens[i].ModelPos < tokens[j].ModelPos
	})
	for i := 1; i < len(tokens); i++ {
		if tokens[i].SeqPos == tokens[i-1].SeqPos && tokens[i].ModelPos == tokens[i-1].ModelPos {
			return nil, invariant.Newf("indel-duplicate-position",
				"%s and %s share a position", tokens[i-1], tokens[i])
		}
	}

	var pairs []Pair
	cs, cm := seq.Start, model.Start
	for _, t := range tokens {
		// the region before the event runs up to and including t's positions
		if t.SeqPos+1 < cs || t.ModelPos+1 < cm {
			return nil, invariant.Newf("indel-order", "%s lies behind cursor Q%d:S%d", t, cs, cm)
		}
		if t.SeqPos+1-cs != t.ModelPos+1-cm {
			return nil, invariant.Newf("ungapped-pair-length",
				"%s leaves %d sequence vs %d model residues after Q%d:S%d",
				t, t.SeqPos+1-cs, t.ModelPos+1-cm, cs, cm)
		}
		if t.SeqPos >= cs {
			p, err := newPair(cm, t.ModelPos, cs, t.SeqPos)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, p)
		}

		switch t.Kind {
		case indel.Insertion:
			cs, cm = t.SeqPos+t.Len+1, t.ModelPos+1
		case indel.Deletion:
			cs, cm = t.SeqPos+1, t.ModelPos+t.Len+1
		}
		if cs > seq.Stop+1 || cm > model.Stop+1 {
			return nil, invariant.Newf("indel-span", "%s runs past span model %s sequence %s", t, model, seq)
		}
	}

	switch {
	case cs <= seq.Stop && cm <= model.Stop:
		p, err := newPair(cm, model.Stop, cs, seq.Stop)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	case cs <= seq.Stop || cm <= model.Stop:
		return nil, invariant.Newf("ungapped-pair-length",
			"alignment ends on an indel: cursor Q%d:S%d, span model %s sequence %s", cs, cm, model, seq)
	}
	return pairs, nil
}

// Seed returns the longest pair by sequence length; the first wins ties.
// ok is false when pairs is empty.
func Seed(pairs []Pair) (Pair, bool) {
	if len(pairs) == 0 {
		return Pair{}, false
	}
	best := pairs[0]
	for _, p := range pairs[1:] {
		if p.Length() > best.Length() {
			best = p
		}
	}
	return best, true
}
