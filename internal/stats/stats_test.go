package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/vannot-go/internal/confidence"
	"github.com/aria-lang/vannot-go/internal/sequence"
)

func mustSeq(t *testing.T, id, bases string) *sequence.Sequence {
	t.Helper()
	s, err := sequence.New(id, bases)
	require.NoError(t, err)
	return s
}

func TestFromSequences(t *testing.T) {
	sequences := []*sequence.Sequence{
		mustSeq(t, "s1", "ATGC"),     // len=4, GC=0.5
		mustSeq(t, "s2", "ATGCATGC"), // len=8, GC=0.5
		mustSeq(t, "s3", "GGCN"),     // len=4, GC=0.75
	}

	stats, err := FromSequences(sequences)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 16, stats.TotalBases)
	assert.Equal(t, 4, stats.MinLength)
	assert.Equal(t, 8, stats.MaxLength)
	assert.InDelta(t, 16.0/3.0, stats.MeanLength, 0.0001)
	assert.Equal(t, 4, stats.MedianLength)
	assert.InDelta(t, (0.5+0.5+0.75)/3, stats.MeanGCContent, 0.0001)
	assert.Equal(t, 1, stats.TotalAmbiguous)
	assert.Contains(t, stats.String(), "N50: 8")
}

func TestFromSequencesEmpty(t *testing.T) {
	_, err := FromSequences([]*sequence.Sequence{})
	require.Error(t, err)
}

func TestN50Calculation(t *testing.T) {
	// Total = 300, Half = 150, 100 + 80 >= 150
	var sequences []*sequence.Sequence
	for _, n := range []int{100, 80, 60, 40, 20} {
		sequences = append(sequences, mustSeq(t, "s", generateSeq(n)))
	}

	stats, err := FromSequences(sequences)
	require.NoError(t, err)
	assert.Equal(t, 80, stats.N50)
}

func generateSeq(length int) string {
	bases := []byte{'A', 'T', 'G', 'C'}
	result := make([]byte, length)
	for i := range result {
		result[i] = bases[i%4]
	}
	return string(result)
}

func TestFromEntries(t *testing.T) {
	entries := []Entry{
		{Length: 100, SeedLength: 50, Joined: true, Confidence: &confidence.Summary{Category: confidence.High}},
		{Length: 200, SeedLength: 200, Joined: true, Confidence: &confidence.Summary{Category: confidence.Fair}},
		{Length: 80, Alerts: 2},
		{Length: 90, SeedLength: 45, Alerts: 1},
	}

	rs := FromEntries(entries)
	assert.Equal(t, 4, rs.Sequences)
	assert.Equal(t, 2, rs.Joined)
	assert.Equal(t, 2, rs.WithAlerts)
	assert.Equal(t, 3, rs.Alerts)
	assert.InDelta(t, (0.5+1.0+0.5)/3, rs.MeanSeedFrac, 1e-9)
	assert.InDelta(t, 0.5, rs.JoinedRatio(), 1e-9)
	assert.Equal(t, 2, rs.Confidence.Total)
	assert.Equal(t, 1, rs.Confidence.HighCount)
	assert.InDelta(t, 0.5, rs.Confidence.AcceptableRatio(), 1e-9)
	assert.Contains(t, rs.String(), "joined: 2 (50.0%)")
}

func TestFromEntriesEmpty(t *testing.T) {
	rs := FromEntries(nil)
	assert.Equal(t, 0, rs.Sequences)
	assert.Equal(t, 0.0, rs.JoinedRatio())
	assert.Equal(t, 0.0, rs.Confidence.AcceptableRatio())
}
