// Package feature maps annotated model features onto coordinate segments
// and checks how sub-features compose their parents.
package feature

import (
	"fmt"

	"github.com/aria-lang/vannot-go/internal/coords"
)

// StopCodonLength is the allowance between the last child of a coding
// feature and the end of the feature itself.
const StopCodonLength = 3

// SegmentsFor parses a coordinate string, merging a pair of segments that
// span the origin when g is circular.
func SegmentsFor(text string, g coords.Genome) (coords.Coords, error) {
	c, err := coords.ParseCoords(text)
	if err != nil {
		return nil, err
	}
	return c.MergeSpanning(g), nil
}

// CompositionMismatch reports the first child that breaks the tiling of
// its parent. Index is the offending child; a bad final stop is reported
// against the last child.
type CompositionMismatch struct {
	Expected uint64
	Actual   uint64
	Index    int
}

func (e *CompositionMismatch) Error() string {
	return fmt.Sprintf("composition mismatch at child %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

// IsFeatureError marks this as a feature error.
func (e *CompositionMismatch) IsFeatureError() {}

// Check is the outcome of validating one parent's children.
type Check struct {
	Children []coords.Coords
	Mismatch *CompositionMismatch
}

// OK reports whether the children tile the parent.
func (c Check) OK() bool {
	return c.Mismatch == nil
}

// ValidateTiling checks that children, in order, cover parent end to end:
// the first child starts where the parent starts, each next child starts
// right after the previous one stops, and the last child stops one stop
// codon short of the parent. Minus-strand parents are walked downwards.
func ValidateTiling(parent coords.Coords, children []coords.Coords) Check {
	check := Check{Children: children}
	if len(parent) == 0 || len(children) == 0 {
		return check
	}

	step := int64(1)
	if parent.Strand() == coords.Minus {
		step = -1
	}
	mismatch := func(expected int64, actual uint64, index int) Check {
		check.Mismatch = &CompositionMismatch{Expected: uint64(expected), Actual: actual, Index: index}
		return check
	}

	if children[0].Start() != parent.Start() {
		return mismatch(int64(parent.Start()), children[0].Start(), 0)
	}
	for i := 1; i < len(children); i++ {
		want := int64(children[i-1].Stop()) + step
		if int64(children[i].Start()) != want {
			return mismatch(want, children[i].Start(), i)
		}
	}
	last := children[len(children)-1]
	if want := int64(parent.Stop()) - step*StopCodonLength; int64(last.Stop()) != want {
		return mismatch(want, last.Stop(), len(children)-1)
	}
	return check
}
