package kmer

import (
	"fmt"
	"strings"

	"github.com/aria-lang/vannot-go/internal/coords"
)

// Match is the model a sequence was assigned to.
type Match struct {
	Index    int
	Name     string
	Distance float64
	// Strand is Minus when the reverse complement shares more k-mers with
	// the model than the sequence itself.
	Strand coords.Strand
}

// Classifier assigns sequences to the closest of a fixed set of models.
// It is read-only after the models are added and safe for concurrent use.
type Classifier struct {
	k      int
	names  []string
	models []*Counter
}

// NewClassifier returns an empty classifier over k-mers of length k.
func NewClassifier(k int) (*Classifier, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	return &Classifier{k: k}, nil
}

// Add registers a model consensus.
func (c *Classifier) Add(name, consensus string) error {
	counter, err := CountKMers(consensus, c.k)
	if err != nil {
		return err
	}
	if counter.UniqueCount() == 0 {
		return fmt.Errorf("model %s is shorter than k=%d", name, c.k)
	}
	c.names = append(c.names, name)
	c.models = append(c.models, counter)
	return nil
}

// Len returns the number of models.
func (c *Classifier) Len() int {
	return len(c.models)
}

// Classify returns the model with the smallest Jaccard distance to bases on
// either strand. The first model wins ties. ok is false when no model
// shares a k-mer with the sequence.
func (c *Classifier) Classify(bases string) (Match, bool, error) {
	if len(c.models) == 0 {
		return Match{}, false, fmt.Errorf("no models to classify against")
	}
	fwd, err := CountKMers(bases, c.k)
	if err != nil {
		return Match{}, false, err
	}
	rev, err := CountKMers(reverseComplement(bases), c.k)
	if err != nil {
		return Match{}, false, err
	}

	best := Match{Index: -1, Distance: 1.0}
	for i, m := range c.models {
		for _, cand := range []struct {
			counter *Counter
			strand  coords.Strand
		}{{fwd, coords.Plus}, {rev, coords.Minus}} {
			d, err := cand.counter.JaccardDistance(m)
			if err != nil {
				return Match{}, false, err
			}
			if d < best.Distance {
				best = Match{Index: i, Name: c.names[i], Distance: d, Strand: cand.strand}
			}
		}
	}
	if best.Index < 0 {
		return Match{}, false, nil
	}
	return best, true, nil
}

func reverseComplement(seq string) string {
	seq = strings.ToUpper(seq)
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		var c byte
		switch seq[i] {
		case 'A':
			c = 'T'
		case 'T':
			c = 'A'
		case 'C':
			c = 'G'
		case 'G':
			c = 'C'
		default:
			c = 'N'
		}
		out[len(seq)-1-i] = c
	}
	return string(out)
}
