package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/vannot-go/internal/aligner"
	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/flank"
	"github.com/aria-lang/vannot-go/internal/invariant"
	"github.com/aria-lang/vannot-go/internal/join"
	"github.com/aria-lang/vannot-go/internal/sequence"
	"github.com/aria-lang/vannot-go/internal/stats"
)

type seedFunc func(ctx context.Context, m *aligner.Model, seq *sequence.Sequence) (aligner.Hit, bool, error)

func (f seedFunc) Seed(ctx context.Context, m *aligner.Model, seq *sequence.Sequence) (aligner.Hit, bool, error) {
	return f(ctx, m, seq)
}

type flankFunc func(ctx context.Context, m *aligner.Model, seq *sequence.Sequence, reqs []flank.Request) ([]join.Flank, error)

func (f flankFunc) AlignFlanks(ctx context.Context, m *aligner.Model, seq *sequence.Sequence, reqs []flank.Request) ([]join.Flank, error) {
	return f(ctx, m, seq, reqs)
}

// The model and sequence below join to "--TACCCGG-TTA-" when the seed is
// residues 4..7 on model 5..8.
const (
	consensus = "AAACCCGGGTTT"
	bases     = "TACCCGGTTA"
)

func str(s string) *string { return &s }

func mustTriple(t *testing.T, seq, model string, conf *string) alignment.Triple {
	t.Helper()
	tr, err := alignment.NewTriple(seq, model, conf)
	require.NoError(t, err)
	return tr
}

func model() *aligner.Model {
	return &aligner.Model{Name: "m", Consensus: consensus}
}

func records(t *testing.T, ids ...string) []*sequence.Sequence {
	t.Helper()
	out := make([]*sequence.Sequence, len(ids))
	for i, id := range ids {
		s, err := sequence.New(id, bases)
		require.NoError(t, err)
		out[i] = s
	}
	return out
}

// stubs returns collaborators that behave per sequence identifier:
// "nohit" gets no hit, "bad" gets a 5' flank off the seed diagonal,
// "fatal" gets a malformed insertion description and "fail" an aligner
// error. Everything else joins.
func stubs(t *testing.T) (aligner.Seeder, aligner.FlankAligner) {
	seeder := seedFunc(func(_ context.Context, _ *aligner.Model, seq *sequence.Sequence) (aligner.Hit, bool, error) {
		switch seq.ID {
		case "nohit":
			return aligner.Hit{}, false, nil
		case "fail":
			return aligner.Hit{}, false, &aligner.ExecError{Path: "blastn", Err: fmt.Errorf("exit status 2")}
		}
		hit := aligner.Hit{
			Model:  coords.NewSegment(5, 8),
			Seq:    coords.NewSegment(4, 7),
			Strand: coords.Plus,
		}
		if seq.ID == "fatal" {
			hit.Insertions = "Q5:S6"
		}
		return hit, true, nil
	})

	flanker := flankFunc(func(_ context.Context, _ *aligner.Model, seq *sequence.Sequence, reqs []flank.Request) ([]join.Flank, error) {
		require.Len(t, reqs, 2)
		assert.Equal(t, coords.NewSegment(1, 5), reqs[0].Seq)
		assert.Equal(t, coords.NewSegment(6, 10), reqs[1].Seq)

		five := join.Flank{
			Triple: mustTriple(t, "TACCC", ".ACCC", str("78999")),
			Model:  coords.NewSegment(3, 6),
			Seq:    reqs[0].Seq,
		}
		if seq.ID == "bad" {
			five.Model = coords.NewSegment(4, 7)
		}
		three := join.Flank{
			Triple: mustTriple(t, "GG-TTA", "GGGTT.", str("**.987")),
			Model:  coords.NewSegment(7, 11),
			Seq:    reqs[1].Seq,
		}
		return []join.Flank{five, three}, nil
	})
	return seeder, flanker
}

func opts() Options {
	return Options{Workers: 4, OverhangWidth: 2, KmerSize: 4}
}

func TestRunPreservesOrder(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprintf("s%02d", i)
	}
	seeder, flanker := stubs(t)

	var done int32
	o := opts()
	o.Progress = func(Outcome) { atomic.AddInt32(&done, 1) }

	outcomes, err := Run(context.Background(), o, []*aligner.Model{model()}, records(t, ids...), seeder, flanker)
	require.NoError(t, err)
	require.Len(t, outcomes, len(ids))
	assert.Equal(t, int32(len(ids)), atomic.LoadInt32(&done))

	for i, out := range outcomes {
		assert.Equal(t, i, out.Index)
		assert.Equal(t, ids[i], out.ID)
		require.True(t, out.Joined(), out.ID)
		assert.Empty(t, out.Alerts)
		assert.Equal(t, "--TACCCGG-TTA-", out.Result.Triple.Seq)
		assert.Equal(t, "AA.ACCCGGGTT.T", out.Result.Triple.Model)
		require.NotNil(t, out.Confidence)
		assert.Equal(t, 10, out.Confidence.Residues)
	}
}

func TestRunRecordsAlerts(t *testing.T) {
	seeder, flanker := stubs(t)
	recs := records(t, "ok", "nohit", "bad", "fail")

	outcomes, err := Run(context.Background(), opts(), []*aligner.Model{model()}, recs, seeder, flanker)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	assert.True(t, outcomes[0].Joined())
	assert.Empty(t, outcomes[0].Alerts)

	tests := []struct {
		index int
		kind  AlertKind
	}{
		{1, NoHit},
		{2, Splice},
		{3, AlignerFailure},
	}
	for _, tt := range tests {
		o := outcomes[tt.index]
		t.Run(o.ID, func(t *testing.T) {
			assert.False(t, o.Joined())
			require.Len(t, o.Alerts, 1)
			assert.Equal(t, tt.kind, o.Alerts[0].Kind)
		})
	}

	var sf *join.SpliceFailure
	assert.ErrorAs(t, outcomes[2].Alerts[0].Err, &sf)
	assert.NotNil(t, outcomes[2].Seed)

	entries := make([]stats.Entry, len(outcomes))
	for i := range outcomes {
		entries[i] = outcomes[i].Entry()
	}
	rs := stats.FromEntries(entries)
	assert.Equal(t, 1, rs.Joined)
	assert.Equal(t, 3, rs.WithAlerts)
}

func TestRunStopsOnFatal(t *testing.T) {
	seeder, flanker := stubs(t)
	recs := records(t, "a", "b", "fatal", "c", "d")

	outcomes, err := Run(context.Background(), opts(), []*aligner.Model{model()}, recs, seeder, flanker)
	require.Error(t, err)
	assert.Nil(t, outcomes)
	assert.True(t, invariant.IsFatal(err))
	assert.Contains(t, err.Error(), "fatal")
}

func TestRunMinConfidence(t *testing.T) {
	seeder, flanker := stubs(t)
	o := opts()
	o.MinConfidence = 0.99

	outcomes, err := Run(context.Background(), o, []*aligner.Model{model()}, records(t, "ok"), seeder, flanker)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Joined())
	require.Len(t, outcomes[0].Alerts, 1)
	assert.Equal(t, LowConfidence, outcomes[0].Alerts[0].Kind)
}

func TestRunCancelled(t *testing.T) {
	seeder, flanker := stubs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, opts(), []*aligner.Model{model()}, records(t, "a", "b"), seeder, flanker)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsBadOptions(t *testing.T) {
	seeder, flanker := stubs(t)
	_, err := Run(context.Background(), opts(), nil, records(t, "a"), seeder, flanker)
	assert.Error(t, err)

	o := opts()
	o.OverhangWidth = 0
	_, err = Run(context.Background(), o, []*aligner.Model{model()}, records(t, "a"), seeder, flanker)
	assert.Error(t, err)
}

func reverseComplement(t *testing.T, s string) string {
	t.Helper()
	seq, err := sequence.New("x", s)
	require.NoError(t, err)
	return seq.ReverseComplement().Bases
}

func TestRunLocalAligners(t *testing.T) {
	const cons = "GATTACAGGCTTAACCGT"
	m := &aligner.Model{Name: "m", Consensus: cons}

	plus, err := sequence.New("plus", cons)
	require.NoError(t, err)
	minus, err := sequence.New("minus", reverseComplement(t, cons))
	require.NoError(t, err)

	outcomes, err := Run(context.Background(), opts(), []*aligner.Model{m},
		[]*sequence.Sequence{plus, minus}, &aligner.LocalSeeder{}, &aligner.LocalFlanker{})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	for _, o := range outcomes {
		require.True(t, o.Joined(), o.ID)
		assert.Equal(t, cons, o.Result.Triple.Seq)
		assert.Equal(t, cons, o.Result.Triple.Model)
		assert.Equal(t, coords.NewSegment(1, 18), o.Result.Model)
		require.NotNil(t, o.Confidence)
		assert.Equal(t, 1.0, o.Confidence.CertainRatio)
	}
	assert.Equal(t, coords.Plus, outcomes[0].Strand())
	assert.Equal(t, coords.Minus, outcomes[1].Strand())
}

func TestRunPicksModelByKmers(t *testing.T) {
	models := []*aligner.Model{
		{Name: "poly-c", Consensus: strings.Repeat("C", 18)},
		{Name: "target", Consensus: "GATTACAGGCTTAACCGT"},
	}
	rec, err := sequence.New("q", "GATTACAGGCTTAACCGT")
	require.NoError(t, err)

	outcomes, err := Run(context.Background(), opts(), models, []*sequence.Sequence{rec},
		&aligner.LocalSeeder{}, &aligner.LocalFlanker{})
	require.NoError(t, err)
	assert.Equal(t, "target", outcomes[0].Model)
	assert.True(t, outcomes[0].Joined())
}

func TestReports(t *testing.T) {
	seeder, flanker := stubs(t)
	outcomes, err := Run(context.Background(), opts(), []*aligner.Model{model()}, records(t, "ok", "nohit"), seeder, flanker)
	require.NoError(t, err)

	var table bytes.Buffer
	require.NoError(t, WriteTable(&table, outcomes))
	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#seq"))
	assert.Contains(t, lines[1], "2:1:1;11:10:1")
	assert.Contains(t, lines[1], "true")
	assert.Contains(t, lines[2], "no-hit")

	var stk bytes.Buffer
	require.NoError(t, WriteAlignments(&stk, outcomes))
	name, tr, err := alignment.ReadTriple(&stk)
	require.NoError(t, err)
	assert.Equal(t, "ok", name)
	assert.Equal(t, "--TACCCGG-TTA-", tr.Seq)
}
