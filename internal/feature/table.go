package feature

import (
	"fmt"

	"github.com/aria-lang/vannot-go/internal/coords"
)

// Feature is one annotated feature of a model.
type Feature struct {
	Type    string
	Product string
	Coords  coords.Coords
	// Parent is the index of the enclosing feature, nil for top-level ones.
	Parent *int
	// Segments indexes Table.Segments, in the feature's 5' to 3' order.
	Segments []int
}

// Segment ties one segment of the model's global segment list to the
// feature that owns it.
type Segment struct {
	Feature int
	coords.Segment
}

// Table is the validated feature table of one model.
type Table struct {
	Model    string
	Genome   coords.Genome
	Features []Feature
	Segments []Segment
	// Children lists child feature indices per parent, in insertion order.
	Children map[int][]int
	// Checks holds the tiling check of every parent that has children.
	Checks map[int]Check
}

// Mismatches returns the failed tiling checks keyed by parent index.
func (t *Table) Mismatches() map[int]*CompositionMismatch {
	out := make(map[int]*CompositionMismatch)
	for i, c := range t.Checks {
		if !c.OK() {
			out[i] = c.Mismatch
		}
	}
	return out
}

// Relations returns the pairwise overlap and adjacency of every segment in
// the table.
func (t *Table) Relations() (*Relations, error) {
	segs := make([]coords.Segment, len(t.Segments))
	for i, s := range t.Segments {
		segs[i] = s.Segment
	}
	return PairwiseRelations(segs, t.Genome)
}

// Builder accumulates the features of one model. Each Builder is
// independent; nothing is shared between models.
type Builder struct {
	model    string
	genome   coords.Genome
	features []Feature
}

// NewBuilder starts a feature table for a model of genome g.
func NewBuilder(model string, g coords.Genome) *Builder {
	return &Builder{model: model, genome: g}
}

// Add parses text and appends a feature, returning its index.
func (b *Builder) Add(typ, product, text string, parent *int) (int, error) {
	c, err := SegmentsFor(text, b.genome)
	if err != nil {
		return 0, fmt.Errorf("feature %d (%s): %w", len(b.features), typ, err)
	}
	return b.AddCoords(typ, product, c, parent), nil
}

// AddCoords appends an already parsed feature and returns its index.
func (b *Builder) AddCoords(typ, product string, c coords.Coords, parent *int) int {
	f := Feature{Type: typ, Product: product, Coords: c}
	if parent != nil {
		p := *parent
		f.Parent = &p
	}
	b.features = append(b.features, f)
	return len(b.features) - 1
}

// Len returns the number of features added so far.
func (b *Builder) Len() int {
	return len(b.features)
}

// Build validates parent links and returns the table with its segment list,
// children and tiling checks filled in.
func (b *Builder) Build() (*Table, error) {
	t := &Table{
		Model:    b.model,
		Genome:   b.genome,
		Features: make([]Feature, len(b.features)),
		Children: make(map[int][]int),
		Checks:   make(map[int]Check),
	}

	for i, f := range b.features {
		if len(f.Coords) == 0 {
			return nil, fmt.Errorf("feature %d (%s): no segments", i, f.Type)
		}
		if f.Parent != nil {
			p := *f.Parent
			if p < 0 || p >= len(b.features) || p == i {
				return nil, fmt.Errorf("feature %d (%s): parent %d out of range", i, f.Type, p)
			}
			t.Children[p] = append(t.Children[p], i)
		}

		f.Segments = make([]int, len(f.Coords))
		for j, s := range f.Coords {
			f.Segments[j] = len(t.Segments)
			t.Segments = append(t.Segments, Segment{Feature: i, Segment: s})
		}
		t.Features[i] = f
	}

	for p, kids := range t.Children {
		children := make([]coords.Coords, len(kids))
		for k, idx := range kids {
			children[k] = t.Features[idx].Coords
		}
		t.Checks[p] = ValidateTiling(t.Features[p].Coords, children)
	}
	return t, nil
}
