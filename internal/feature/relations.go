package feature

import (
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/invariant"
)

// Relations holds the pairwise overlap lengths and adjacency of a segment
// list. Both matrices are symmetric.
type Relations struct {
	Overlap  [][]uint64
	Adjacent [][]bool
}

// segmentInterval stores a segment in an IntTree as a half-open range.
type segmentInterval struct {
	id  uintptr
	seg coords.Segment
}

func (s segmentInterval) Range() interval.IntRange {
	lo, hi := s.seg.Bounds()
	return interval.IntRange{Start: int(lo), End: int(hi) + 1}
}

// Overlap returns whether s overlaps b.
func (s segmentInterval) Overlap(b interval.IntRange) bool {
	r := s.Range()
	return r.End > b.Start && r.Start < b.End
}

func (s segmentInterval) ID() uintptr { return s.id }

// PairwiseRelations computes the overlap and adjacency matrices of segs on
// genome g. Overlap candidates come from an interval tree; every pair is
// checked for symmetry before the matrices are returned.
func PairwiseRelations(segs []coords.Segment, g coords.Genome) (*Relations, error) {
	n := len(segs)
	rel := &Relations{
		Overlap:  make([][]uint64, n),
		Adjacent: make([][]bool, n),
	}
	for i := range segs {
		rel.Overlap[i] = make([]uint64, n)
		rel.Adjacent[i] = make([]bool, n)
	}

	var tree interval.IntTree
	for i, s := range segs {
		if err := tree.Insert(segmentInterval{id: uintptr(i), seg: s}, true); err != nil {
			return nil, fmt.Errorf("indexing segment %d %s: %w", i, s, err)
		}
	}
	tree.AdjustRanges()

	for i, s := range segs {
		for _, hit := range tree.Get(segmentInterval{seg: s}) {
			j := int(hit.ID())
			if j == i {
				continue
			}
			rel.Overlap[i][j], _ = coords.Overlap(s, segs[j])
		}
		for j := range segs {
			if j != i {
				rel.Adjacent[i][j] = coords.Abut(s, segs[j], g)
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rel.Overlap[i][j] != rel.Overlap[j][i] {
				return nil, invariant.Newf("overlap-symmetry", "%s/%s: %d vs %d",
					segs[i], segs[j], rel.Overlap[i][j], rel.Overlap[j][i])
			}
			if rel.Adjacent[i][j] != rel.Adjacent[j][i] {
				return nil, invariant.Newf("adjacency-symmetry", "%s/%s: %t vs %t",
					segs[i], segs[j], rel.Adjacent[i][j], rel.Adjacent[j][i])
			}
		}
	}
	return rel, nil
}
