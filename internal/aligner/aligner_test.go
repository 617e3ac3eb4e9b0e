package aligner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/flank"
	"github.com/aria-lang/vannot-go/internal/indel"
	"github.com/aria-lang/vannot-go/internal/sequence"
	"github.com/aria-lang/vannot-go/internal/ungapped"
)

func mustSeq(t *testing.T, id, bases string) *sequence.Sequence {
	t.Helper()
	s, err := sequence.New(id, bases)
	require.NoError(t, err)
	return s
}

func TestSummarize(t *testing.T) {
	tr, err := alignment.NewTriple("AC-GTTA", "ACGG..A", nil)
	require.NoError(t, err)

	ins, del := Summarize(tr, 10, 5)
	assert.Equal(t, []indel.Token{{SeqPos: 12, ModelPos: 8, Len: 2, Kind: indel.Insertion}}, ins)
	assert.Equal(t, []indel.Token{{SeqPos: 11, ModelPos: 6, Len: 1, Kind: indel.Deletion}}, del)
	assert.Equal(t, "Q12:S8+2", indel.Format(ins))
	assert.Equal(t, "Q11:S6-1", indel.Format(del))

	// the tokens must decompose the same span without gaps
	pairs, err := ungapped.Find(coords.NewSegment(5, 9), coords.NewSegment(10, 15), ins, del)
	require.NoError(t, err)
	var covered uint64
	for _, p := range pairs {
		covered += p.Length()
	}
	assert.Equal(t, uint64(tr.MatchCount()), covered)
}

func TestSummarizeUngapped(t *testing.T) {
	tr, err := alignment.NewTriple("ACGT", "ACGA", nil)
	require.NoError(t, err)
	ins, del := Summarize(tr, 1, 1)
	assert.Empty(t, ins)
	assert.Empty(t, del)
}

func TestParseBlastTab(t *testing.T) {
	t.Run("plus strand with an insertion", func(t *testing.T) {
		out := "# comment\n2\t9\t5\t11\tACGTTACG\tACG-TACG\t12.0\n"
		hit, ok, err := parseBlastTab(out, 12)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, coords.Plus, hit.Strand)
		assert.Equal(t, coords.NewSegment(2, 9), hit.Seq)
		assert.Equal(t, coords.NewSegment(5, 11), hit.Model)
		assert.Equal(t, "Q4:S7+1", hit.Insertions)
		assert.Empty(t, hit.Deletions)
		assert.Equal(t, 12.0, hit.Score)
	})

	t.Run("best bitscore wins", func(t *testing.T) {
		out := "1\t4\t1\t4\tACGT\tACGT\t8.0\n1\t8\t3\t10\tACGTACGT\tACGTACGT\t16.4\n"
		hit, ok, err := parseBlastTab(out, 12)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, coords.NewSegment(1, 8), hit.Seq)
		assert.Equal(t, coords.NewSegment(3, 10), hit.Model)
	})

	t.Run("minus strand reported on the reverse complement", func(t *testing.T) {
		hit, ok, err := parseBlastTab("3\t6\t9\t6\tACGG\tCCGT\t8.0\n", 10)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, coords.Minus, hit.Strand)
		assert.Equal(t, coords.NewSegment(5, 8), hit.Seq)
		assert.Equal(t, coords.NewSegment(6, 9), hit.Model)
	})

	t.Run("no hit", func(t *testing.T) {
		_, ok, err := parseBlastTab("# BLASTN 2.14\n# 0 hits found\n", 10)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("bad position", func(t *testing.T) {
		_, _, err := parseBlastTab("0\t4\t1\t4\tACGT\tACGT\t8.0\n", 10)
		assert.Error(t, err)
	})
}

func TestRevcompRow(t *testing.T) {
	assert.Equal(t, "A-CGT", revcompRow("ACG-T"))
}

func TestWithConsensus(t *testing.T) {
	tr, err := alignment.NewTriple("cAC-TA", ".xxxxx", ptr("5**.99"))
	require.NoError(t, err)

	out, err := withConsensus(tr, "ACGTA")
	require.NoError(t, err)
	assert.Equal(t, "CAC-TA", out.Seq)
	assert.Equal(t, ".ACGTA", out.Model)
	require.NotNil(t, out.Confidence)
	assert.Equal(t, "5**.99", *out.Confidence)

	_, err = withConsensus(tr, "ACGTAA")
	assert.Error(t, err)
	_, err = withConsensus(tr, "ACGT")
	assert.Error(t, err)
}

func ptr(s string) *string { return &s }

func TestLocalSeeder(t *testing.T) {
	ctx := context.Background()

	t.Run("plus strand", func(t *testing.T) {
		m := &Model{Name: "m", Consensus: "TTACGTACGTTT"}
		hit, ok, err := (&LocalSeeder{}).Seed(ctx, m, mustSeq(t, "s", "CCACGTACGTCC"))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, coords.Plus, hit.Strand)
		assert.Equal(t, coords.NewSegment(3, 10), hit.Seq)
		assert.Equal(t, coords.NewSegment(3, 10), hit.Model)
		assert.Equal(t, 16.0, hit.Score)
		assert.Empty(t, hit.Insertions)
		assert.Empty(t, hit.Deletions)
	})

	t.Run("minus strand", func(t *testing.T) {
		m := &Model{Name: "m", Consensus: "GATTACAGGCTTAA"}
		// reverse complement of ACAGGCTT between CC pads
		hit, ok, err := (&LocalSeeder{}).Seed(ctx, m, mustSeq(t, "s", "CCAAGCCTGTCC"))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, coords.Minus, hit.Strand)
		assert.Equal(t, coords.NewSegment(3, 10), hit.Seq)
		assert.Equal(t, coords.NewSegment(5, 12), hit.Model)
	})

	t.Run("no hit", func(t *testing.T) {
		m := &Model{Name: "m", Consensus: "CCCC"}
		_, ok, err := (&LocalSeeder{}).Seed(ctx, m, mustSeq(t, "s", "AAAA"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("too large", func(t *testing.T) {
		m := &Model{Name: "m", Consensus: "TTACGTACGTTT"}
		_, _, err := (&LocalSeeder{MaxCells: 10}).Seed(ctx, m, mustSeq(t, "s", "CCACGTACGTCC"))
		var tl *TooLargeError
		require.ErrorAs(t, err, &tl)
		assert.Equal(t, 144, tl.Cells)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		m := &Model{Name: "m", Consensus: "TTACGTACGTTT"}
		_, _, err := (&LocalSeeder{}).Seed(cctx, m, mustSeq(t, "s", "CCACGTACGTCC"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalFlanker(t *testing.T) {
	m := &Model{Name: "m", Consensus: "AAACCCGGGTTT"}
	seq := mustSeq(t, "s", "TACCCGGTTA")
	reqs := []flank.Request{
		{Side: flank.FivePrime, Seq: coords.NewSegment(1, 5)},
		{Side: flank.ThreePrime, Seq: coords.NewSegment(6, 10)},
	}

	flanks, err := (&LocalFlanker{}).AlignFlanks(context.Background(), m, seq, reqs)
	require.NoError(t, err)
	require.Len(t, flanks, 2)

	assert.Equal(t, "TACCC", flanks[0].Triple.Seq)
	assert.Equal(t, "AACCC", flanks[0].Triple.Model)
	assert.Equal(t, coords.NewSegment(2, 6), flanks[0].Model)
	assert.Equal(t, coords.NewSegment(1, 5), flanks[0].Seq)

	assert.Equal(t, "GGTTA", flanks[1].Triple.Seq)
	assert.Equal(t, coords.NewSegment(8, 12), flanks[1].Model)
	assert.Nil(t, flanks[1].Triple.Confidence)
}

// script writes an executable shell script into a temp dir.
func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "fake")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const fakeBlastn = `while [ $# -gt 0 ]; do
  if [ "$1" = "-out" ]; then out="$2"; fi
  shift
done
printf '1\t8\t3\t10\tACGTACGT\tACGTACGT\t16.4\n' > "$out"
`

const fakeCmalign = `while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
cat > "$out" <<'STK'
# STOCKHOLM 1.0

s.0          cAC-TA
#=GR s.0 PP  5**.99
#=GC RF      .xxxxx
//
STK
`

func TestBlastnExecutable(t *testing.T) {
	b := &Blastn{Path: script(t, fakeBlastn), TmpDir: t.TempDir()}
	m := &Model{Name: "m", Consensus: "TTACGTACGTTT"}

	hit, ok, err := b.Seed(context.Background(), m, mustSeq(t, "s", "ACGTACGTCCCC"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, coords.NewSegment(1, 8), hit.Seq)
	assert.Equal(t, coords.NewSegment(3, 10), hit.Model)
}

func TestExecFailure(t *testing.T) {
	b := &Blastn{Path: script(t, "echo 'BLAST Database error' >&2\nexit 2\n"), TmpDir: t.TempDir()}
	m := &Model{Name: "m", Consensus: "TTACGTACGTTT"}

	_, _, err := b.Seed(context.Background(), m, mustSeq(t, "s", "ACGT"))
	var ee *ExecError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Output, "BLAST Database error")
	assert.Contains(t, err.Error(), "failed to execute")
}

func TestCmalignExecutable(t *testing.T) {
	c := &Cmalign{Path: script(t, fakeCmalign), TmpDir: t.TempDir(), Threads: 2}
	m := &Model{Name: "m", Consensus: "ACGTA", CMFile: "m.cm"}
	req := flank.Request{Side: flank.FivePrime, Seq: coords.NewSegment(1, 5)}

	flanks, err := c.AlignFlanks(context.Background(), m, mustSeq(t, "s", "CACTAGG"), []flank.Request{req})
	require.NoError(t, err)
	require.Len(t, flanks, 1)
	assert.Equal(t, "CAC-TA", flanks[0].Triple.Seq)
	assert.Equal(t, ".ACGTA", flanks[0].Triple.Model)
	assert.Equal(t, coords.NewSegment(1, 5), flanks[0].Model)
	assert.Equal(t, req.Seq, flanks[0].Seq)

	m.CMFile = ""
	_, err = c.AlignFlanks(context.Background(), m, mustSeq(t, "s", "CACTAGG"), []flank.Request{req})
	assert.Error(t, err)
}

func TestLoadModels(t *testing.T) {
	fa := ">m1 first\nAAACCCGGGTTT\n>m2\nACGTACGTAC\n"
	minfo := `MODEL m1 length:"12" circular:"false"
FEATURE m1 type:"gene" coords:"1..12" parent_idx:"GBNULL" product:""
`
	models, err := LoadModels(strings.NewReader(fa), strings.NewReader(minfo), "all.cm")
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "m1", models[0].Name)
	assert.Equal(t, uint64(12), models[0].Len())
	assert.Equal(t, "all.cm", models[1].CMFile)
	require.NotNil(t, models[0].Features)
	assert.Len(t, models[0].Features.Features, 1)
	assert.Nil(t, models[1].Features)

	_, err = LoadModels(strings.NewReader(fa), strings.NewReader(`MODEL m3 length:"4" circular:"false"`+"\n"), "")
	assert.Error(t, err)

	_, err = LoadModels(strings.NewReader(fa), strings.NewReader(`MODEL m1 length:"10" circular:"false"`+"\n"), "")
	assert.Error(t, err)

	_, err = LoadModels(strings.NewReader(">m1\nACGT\n>m1\nACGT\n"), nil, "")
	assert.Error(t, err)
}
