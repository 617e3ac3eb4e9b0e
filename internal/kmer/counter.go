// Package kmer compares sequences by their k-mer content. It is used to pick
// the model closest to each input sequence and the strand it lies on.
package kmer

import (
	"fmt"
	"strings"
)

// Counter counts the k-mers of one sequence. K-mers holding anything other
// than A, C, G or T are skipped.
type Counter struct {
	K      int
	Counts map[string]int
	Total  int
}

// NewCounter creates a new k-mer counter with the specified k value.
func NewCounter(k int) (*Counter, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	return &Counter{
		K:      k,
		Counts: make(map[string]int),
	}, nil
}

// CountKMers counts all k-mers in a sequence string.
func (c *Counter) CountKMers(seq string) {
	seq = strings.ToUpper(seq)
	run := 0
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T':
			run++
		default:
			run = 0
			continue
		}
		if run >= c.K {
			c.Counts[seq[i+1-c.K:i+1]]++
			c.Total++
		}
	}
}

// GetCount returns the count for a specific k-mer.
func (c *Counter) GetCount(kmer string) (int, error) {
	if len(kmer) != c.K {
		return 0, fmt.Errorf("k-mer length doesn't match k=%d", c.K)
	}
	return c.Counts[strings.ToUpper(kmer)], nil
}

// UniqueCount returns the number of distinct k-mers.
func (c *Counter) UniqueCount() int {
	return len(c.Counts)
}

// Shared returns the number of distinct k-mers present in both counters.
func (c *Counter) Shared(other *Counter) int {
	small, large := c, other
	if len(large.Counts) < len(small.Counts) {
		small, large = large, small
	}
	n := 0
	for kmer := range small.Counts {
		if _, ok := large.Counts[kmer]; ok {
			n++
		}
	}
	return n
}

// JaccardDistance is 1 - |A ∩ B| / |A ∪ B| over distinct k-mers.
func (c *Counter) JaccardDistance(other *Counter) (float64, error) {
	if c.K != other.K {
		return 0, fmt.Errorf("cannot compare k=%d with k=%d", c.K, other.K)
	}
	intersection := c.Shared(other)
	union := len(c.Counts) + len(other.Counts) - intersection
	if union == 0 {
		return 1.0, nil
	}
	return 1.0 - float64(intersection)/float64(union), nil
}

func (c *Counter) String() string {
	return fmt.Sprintf("KMerCounter { k: %d, unique: %d, total: %d }", c.K, len(c.Counts), c.Total)
}

// CountKMers counts the k-mers of seq.
func CountKMers(seq string, k int) (*Counter, error) {
	counter, err := NewCounter(k)
	if err != nil {
		return nil, err
	}
	counter.CountKMers(seq)
	return counter, nil
}
