package alignment

import (
	"fmt"
	"strings"
)

// Row characters.
const (
	// GapChar fills a sequence or confidence row where a model position has no residue.
	GapChar = '-'
	// InsertGapChar marks a model row column that belongs to no model position.
	InsertGapChar = '.'
	// CertainChar is the confidence of a column trusted verbatim.
	CertainChar = '*'
)

// IsGap reports whether c is a gap character in any row.
func IsGap(c byte) bool {
	return c == '-' || c == '.' || c == '~'
}

// Triple is one aligned sequence row, the model row of the same width and
// an optional per-column confidence row.
//
// INVARIANT: every present row has the same width.
type Triple struct {
	Seq        string
	Model      string
	Confidence *string
}

// NewTriple validates the row widths.
func NewTriple(seq, model string, confidence *string) (Triple, error) {
	if len(seq) != len(model) {
		return Triple{}, &WidthError{Row: "model", Want: len(seq), Got: len(model)}
	}
	if confidence != nil && len(*confidence) != len(seq) {
		return Triple{}, &WidthError{Row: "confidence", Want: len(seq), Got: len(*confidence)}
	}
	return Triple{Seq: seq, Model: model, Confidence: confidence}, nil
}

// WidthError is returned when the rows of a triple disagree in width.
type WidthError struct {
	Row  string
	Want int
	Got  int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("%s row has width %d, sequence row has %d", e.Row, e.Got, e.Want)
}

// Width returns the number of alignment columns.
func (t Triple) Width() int {
	return len(t.Seq)
}

// Residues returns the sequence row with gaps removed.
func (t Triple) Residues() string {
	var sb strings.Builder
	sb.Grow(len(t.Seq))
	for i := 0; i < len(t.Seq); i++ {
		if !IsGap(t.Seq[i]) {
			sb.WriteByte(t.Seq[i])
		}
	}
	return sb.String()
}

// ModelLength returns the number of columns that belong to a model position.
func (t Triple) ModelLength() int {
	n := 0
	for i := 0; i < len(t.Model); i++ {
		if !IsGap(t.Model[i]) {
			n++
		}
	}
	return n
}

// Slice returns columns [from, to) of every row.
func (t Triple) Slice(from, to int) Triple {
	out := Triple{Seq: t.Seq[from:to], Model: t.Model[from:to]}
	if t.Confidence != nil {
		c := (*t.Confidence)[from:to]
		out.Confidence = &c
	}
	return out
}

// Column describes one alignment column in 1-based coordinates. SeqPos is
// meaningful only when HasSeq, ModelPos only when HasModel.
type Column struct {
	SeqPos   uint64
	ModelPos uint64
	HasSeq   bool
	HasModel bool
}

// Match reports whether the column aligns a residue to a model position.
func (c Column) Match() bool {
	return c.HasSeq && c.HasModel
}

// Columns walks the triple assuming its first residue is sequence position
// seqStart and its first model column is model position modelStart.
func (t Triple) Columns(seqStart, modelStart uint64) []Column {
	cols := make([]Column, len(t.Seq))
	sp, mp := seqStart, modelStart
	for i := range cols {
		if !IsGap(t.Seq[i]) {
			cols[i].SeqPos, cols[i].HasSeq = sp, true
			sp++
		}
		if !IsGap(t.Model[i]) {
			cols[i].ModelPos, cols[i].HasModel = mp, true
			mp++
		}
	}
	return cols
}

// Insert records Len residues starting at sequence position SeqPos that
// sit after model position ModelPos (0 means before the first position).
type Insert struct {
	ModelPos uint64
	SeqPos   uint64
	Len      uint64
}

func (in Insert) String() string {
	return fmt.Sprintf("%d:%d:%d", in.ModelPos, in.SeqPos, in.Len)
}

// Inserts derives the insert records of a triple positioned as in Columns.
func (t Triple) Inserts(seqStart, modelStart uint64) []Insert {
	var out []Insert
	lastModel := modelStart - 1
	var cur *Insert
	for _, c := range t.Columns(seqStart, modelStart) {
		switch {
		case c.HasModel:
			lastModel = c.ModelPos
			cur = nil
		case c.HasSeq:
			if cur == nil {
				out = append(out, Insert{ModelPos: lastModel, SeqPos: c.SeqPos})
				cur = &out[len(out)-1]
			}
			cur.Len++
		}
	}
	return out
}

// FormatInserts writes inserts as "mdl:seq:len" joined by ';'.
func FormatInserts(ins []Insert) string {
	parts := make([]string, len(ins))
	for i, in := range ins {
		parts[i] = in.String()
	}
	return strings.Join(parts, ";")
}

// Identity returns the fraction of columns whose residue equals the model
// residue.
func (t Triple) Identity() float64 {
	if len(t.Seq) == 0 {
		return 0.0
	}
	return float64(t.MatchCount()) / float64(len(t.Seq))
}

// MatchCount returns the number of identical match columns.
func (t Triple) MatchCount() int {
	count := 0
	for i := 0; i < len(t.Seq); i++ {
		if !IsGap(t.Seq[i]) && !IsGap(t.Model[i]) && canon(t.Seq[i]) == canon(t.Model[i]) {
			count++
		}
	}
	return count
}

// ToCIGAR generates a CIGAR string with the sequence as query: M match,
// X mismatch, I residue without a model position, D model position without
// a residue.
func (t Triple) ToCIGAR() string {
	if len(t.Seq) == 0 {
		return ""
	}

	var cigar strings.Builder
	currentOp := byte(0)
	count := 0

	for i := 0; i < len(t.Seq); i++ {
		seqGap, modelGap := IsGap(t.Seq[i]), IsGap(t.Model[i])
		var op byte
		switch {
		case seqGap && modelGap:
			continue
		case modelGap:
			op = 'I'
		case seqGap:
			op = 'D'
		case canon(t.Seq[i]) == canon(t.Model[i]):
			op = 'M'
		default:
			op = 'X'
		}

		if op == currentOp {
			count++
		} else {
			if count > 0 {
				fmt.Fprintf(&cigar, "%d%c", count, currentOp)
			}
			currentOp = op
			count = 1
		}
	}

	if count > 0 {
		fmt.Fprintf(&cigar, "%d%c", count, currentOp)
	}

	return cigar.String()
}

// Format returns the rows stacked for display.
func (t Triple) Format() string {
	var sb strings.Builder
	sb.WriteString("seq:   " + t.Seq + "\n")
	sb.WriteString("model: " + t.Model + "\n")
	if t.Confidence != nil {
		sb.WriteString("pp:    " + *t.Confidence + "\n")
	}
	return sb.String()
}

func (t Triple) String() string {
	return fmt.Sprintf("Triple { width: %d, residues: %d, model positions: %d }",
		t.Width(), len(t.Residues()), t.ModelLength())
}
