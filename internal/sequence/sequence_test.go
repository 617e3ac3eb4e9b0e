package sequence

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/vannot-go/internal/coords"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		bases   string
		want    string
		wantErr bool
		errType interface{}
	}{
		{name: "valid DNA sequence", bases: "ATGCATGC", want: "ATGCATGC"},
		{name: "lowercase", bases: "atgcatgc", want: "ATGCATGC"},
		{name: "RNA read as DNA", bases: "AUGC", want: "ATGC"},
		{name: "ambiguity codes", bases: "ATGCNRYKM", want: "ATGCNRYKM"},
		{name: "empty sequence", bases: "", wantErr: true, errType: &EmptySequenceError{}},
		{name: "invalid base X", bases: "ATGCXATGC", wantErr: true, errType: &InvalidBaseError{}},
		{name: "gap character", bases: "ATG-C", wantErr: true, errType: &InvalidBaseError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := New("s1", tt.bases)

			if tt.wantErr {
				require.Error(t, err)
				assert.IsType(t, tt.errType, err)
				var se SequenceError
				assert.ErrorAs(t, err, &se)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq.Bases)
			assert.Equal(t, "s1", seq.ID)
		})
	}
}

func TestInvalidBasePosition(t *testing.T) {
	_, err := New("s1", "ACGTZ")
	var ibe *InvalidBaseError
	require.ErrorAs(t, err, &ibe)
	assert.Equal(t, 5, ibe.Position)
	assert.Equal(t, 'Z', ibe.Found)
}

func TestSub(t *testing.T) {
	s, err := New("s1", "AACCGGTTAC")
	require.NoError(t, err)

	tests := []struct {
		name    string
		seg     coords.Segment
		want    string
		wantErr bool
	}{
		{"first base", coords.NewSegment(1, 1), "A", false},
		{"middle", coords.NewSegment(3, 6), "CCGG", false},
		{"whole", coords.NewSegment(1, 10), "AACCGGTTAC", false},
		{"minus strand", coords.NewSegment(4, 1), "GGTT", false},
		{"past the end", coords.NewSegment(8, 11), "", true},
		{"zero", coords.Segment{Start: 0, Stop: 3, Strand: coords.Plus}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Sub(tt.seg)
			if tt.wantErr {
				var re *RangeError
				require.ErrorAs(t, err, &re)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReverseComplement(t *testing.T) {
	s, err := WithDescription("s1", "test", "AACGTRN")
	require.NoError(t, err)

	rc := s.ReverseComplement()
	assert.Equal(t, "NYACGTT", rc.Bases)
	assert.Equal(t, "s1", rc.ID)
	assert.Equal(t, "test", rc.Description)
	assert.Equal(t, s.Bases, rc.ReverseComplement().Bases)
}

func TestComposition(t *testing.T) {
	s, err := New("s1", "GGCCATNR")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.GCContent(), 1e-9)
	assert.Equal(t, 2, s.CountAmbiguous())
	assert.Equal(t, 8, s.Len())
	assert.Equal(t, "s1 (8 nt)", s.String())
}

func TestFASTA(t *testing.T) {
	in := ">seq1 first record\nACGTACGT\nACGT\n>seq2\nacgu\n"

	seqs, err := ReadFASTA(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, seqs, 2)
	assert.Equal(t, "seq1", seqs[0].ID)
	assert.Equal(t, "first record", seqs[0].Description)
	assert.Equal(t, "ACGTACGTACGT", seqs[0].Bases)
	assert.Equal(t, "seq2", seqs[1].ID)
	assert.Equal(t, "ACGT", seqs[1].Bases)

	var buf bytes.Buffer
	require.NoError(t, WriteFASTA(&buf, seqs))
	assert.Contains(t, buf.String(), ">seq1 first record\n")

	again, err := ReadFASTA(&buf)
	require.NoError(t, err)
	assert.Equal(t, seqs, again)
}

func TestReadFASTARejectsBadBases(t *testing.T) {
	_, err := ReadFASTA(strings.NewReader(">s\nACGT\n>t\nAC*T\n"))
	var ibe *InvalidBaseError
	require.ErrorAs(t, err, &ibe)
	assert.Equal(t, "t", ibe.ID)
}
