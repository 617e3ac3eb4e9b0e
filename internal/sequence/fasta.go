package sequence

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// lineWidth is the residue count per FASTA line on output.
const lineWidth = 60

// ReadFASTA reads every record of a FASTA stream in order.
func ReadFASTA(r io.Reader) ([]*Sequence, error) {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant)))

	var out []*Sequence
	for sc.Next() {
		rec := sc.Seq().(*linear.Seq)
		s, err := WithDescription(rec.Name(), rec.Desc, lettersToString(rec.Seq))
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(out)+1, err)
		}
		out = append(out, s)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("reading FASTA: %w", err)
	}
	return out, nil
}

// WriteFASTA writes seqs in order.
func WriteFASTA(w io.Writer, seqs []*Sequence) error {
	fw := fasta.NewWriter(w, lineWidth)
	for _, s := range seqs {
		rec := linear.NewSeq(s.ID, alphabet.BytesToLetters([]byte(s.Bases)), alphabet.DNAredundant)
		rec.Desc = s.Description
		if _, err := fw.Write(rec); err != nil {
			return fmt.Errorf("writing %s: %w", s.ID, err)
		}
	}
	return nil
}

func lettersToString(l alphabet.Letters) string {
	b := make([]byte, len(l))
	for i, c := range l {
		b[i] = byte(c)
	}
	return string(b)
}
