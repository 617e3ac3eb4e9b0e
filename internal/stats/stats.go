// Package stats summarizes an annotation run: the input sequence set and
// how each sequence fared.
package stats

import (
	"fmt"
	"sort"

	"github.com/aria-lang/vannot-go/internal/confidence"
	"github.com/aria-lang/vannot-go/internal/sequence"
)

// SequenceSetStats represents aggregated statistics for the input sequences.
type SequenceSetStats struct {
	Count          int
	TotalBases     int
	MinLength      int
	MaxLength      int
	MeanLength     float64
	MedianLength   int
	MeanGCContent  float64
	N50            int
	TotalAmbiguous int
}

// FromSequences calculates statistics for a collection of sequences.
func FromSequences(sequences []*sequence.Sequence) (*SequenceSetStats, error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("sequence list cannot be empty")
	}

	count := len(sequences)
	lengths := make([]int, count)
	totalBases := 0
	gcSum := 0.0
	totalAmbiguous := 0

	for i, seq := range sequences {
		lengths[i] = seq.Len()
		totalBases += seq.Len()
		gcSum += seq.GCContent()
		totalAmbiguous += seq.CountAmbiguous()
	}

	sorted := make([]int, count)
	copy(sorted, lengths)
	sort.Ints(sorted)

	mid := count / 2
	medianLen := sorted[mid]
	if count%2 == 0 {
		medianLen = (sorted[mid-1] + sorted[mid]) / 2
	}

	return &SequenceSetStats{
		Count:          count,
		TotalBases:     totalBases,
		MinLength:      sorted[0],
		MaxLength:      sorted[count-1],
		MeanLength:     float64(totalBases) / float64(count),
		MedianLength:   medianLen,
		MeanGCContent:  gcSum / float64(count),
		N50:            n50(sorted, totalBases),
		TotalAmbiguous: totalAmbiguous,
	}, nil
}

// n50 returns the length at which half the bases sit in sequences at least
// that long. ascending must be sorted.
func n50(ascending []int, total int) int {
	half := total / 2
	running := 0
	for i := len(ascending) - 1; i >= 0; i-- {
		running += ascending[i]
		if running >= half {
			return ascending[i]
		}
	}
	return ascending[len(ascending)-1]
}

func (s *SequenceSetStats) String() string {
	return fmt.Sprintf(`SequenceSetStats {
  count: %d
  total_bases: %d
  length range: %d - %d
  mean length: %.1f
  median length: %d
  mean GC: %.1f%%
  N50: %d
  ambiguous bases: %d
}`, s.Count, s.TotalBases, s.MinLength, s.MaxLength,
		s.MeanLength, s.MedianLength, s.MeanGCContent*100, s.N50, s.TotalAmbiguous)
}

// Entry is what the run summary needs from one processed sequence.
type Entry struct {
	Length     int
	SeedLength int
	Joined     bool
	Alerts     int
	// Confidence is nil when the alignment carries no confidence row.
	Confidence *confidence.Summary
}

// RunStats summarizes the outcomes of a run.
type RunStats struct {
	Sequences    int
	Joined       int
	WithAlerts   int
	Alerts       int
	MeanSeedFrac float64
	Confidence   *ConfidenceDistribution
}

// FromEntries aggregates per-sequence entries.
func FromEntries(entries []Entry) *RunStats {
	rs := &RunStats{Sequences: len(entries), Confidence: &ConfidenceDistribution{}}
	fracSum := 0.0
	seeded := 0
	for _, e := range entries {
		if e.Joined {
			rs.Joined++
		}
		if e.Alerts > 0 {
			rs.WithAlerts++
			rs.Alerts += e.Alerts
		}
		if e.SeedLength > 0 && e.Length > 0 {
			fracSum += float64(e.SeedLength) / float64(e.Length)
			seeded++
		}
		if e.Confidence != nil {
			rs.Confidence.Add(e.Confidence.Category)
		}
	}
	if seeded > 0 {
		rs.MeanSeedFrac = fracSum / float64(seeded)
	}
	return rs
}

// JoinedRatio returns the proportion of sequences with a joined alignment.
func (r *RunStats) JoinedRatio() float64 {
	if r.Sequences == 0 {
		return 0.0
	}
	return float64(r.Joined) / float64(r.Sequences)
}

func (r *RunStats) String() string {
	return fmt.Sprintf("RunStats { sequences: %d, joined: %d (%.1f%%), with alerts: %d, alerts: %d, mean seed coverage: %.1f%% }",
		r.Sequences, r.Joined, r.JoinedRatio()*100, r.WithAlerts, r.Alerts, r.MeanSeedFrac*100)
}

// ConfidenceDistribution counts alignments per confidence category.
type ConfidenceDistribution struct {
	PoorCount int
	FairCount int
	GoodCount int
	HighCount int
	Total     int
}

// Add counts one alignment.
func (d *ConfidenceDistribution) Add(c confidence.Category) {
	d.Total++
	switch c {
	case confidence.Poor:
		d.PoorCount++
	case confidence.Fair:
		d.FairCount++
	case confidence.Good:
		d.GoodCount++
	case confidence.High:
		d.HighCount++
	}
}

// AcceptableRatio returns the proportion of alignments rated Good or High.
func (d *ConfidenceDistribution) AcceptableRatio() float64 {
	if d.Total == 0 {
		return 0.0
	}
	return float64(d.GoodCount+d.HighCount) / float64(d.Total)
}

func (d *ConfidenceDistribution) String() string {
	return fmt.Sprintf(`ConfidenceDistribution {
  Poor (<0.5): %d
  Fair (0.5-0.85): %d
  Good (0.85-0.95): %d
  High (>=0.95): %d
}`, d.PoorCount, d.FairCount, d.GoodCount, d.HighCount)
}
