package aligner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/indel"
	"github.com/aria-lang/vannot-go/internal/sequence"
)

// blastFormat is the tabular layout parseBlastTab expects.
const blastFormat = "6 qstart qend sstart send qseq sseq bitscore"

// Blastn seeds with an external blastn, aligning each sequence as the
// query against the model consensus as the subject.
type Blastn struct {
	Path    string
	TmpDir  string
	Threads int
}

// Seed implements Seeder.
func (b *Blastn) Seed(ctx context.Context, m *Model, seq *sequence.Sequence) (Hit, bool, error) {
	dir, cleanup, err := workdir(b.TmpDir, "vannot-blastn-")
	if err != nil {
		return Hit{}, false, err
	}
	defer cleanup()

	subject, err := sequence.New(m.Name, m.Consensus)
	if err != nil {
		return Hit{}, false, fmt.Errorf("model %s: %w", m.Name, err)
	}
	query, err := writeFASTA(dir, "query.fa", seq)
	if err != nil {
		return Hit{}, false, err
	}
	subjectPath, err := writeFASTA(dir, "subject.fa", subject)
	if err != nil {
		return Hit{}, false, err
	}
	out := filepath.Join(dir, "out.tsv")

	args := []string{
		"-task", "blastn",
		"-query", query,
		"-subject", subjectPath,
		"-out", out,
		"-outfmt", blastFormat,
	}
	if b.Threads > 1 {
		args = append(args, "-num_threads", strconv.Itoa(b.Threads))
	}
	if err := run(ctx, b.Path, args...); err != nil {
		return Hit{}, false, err
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		return Hit{}, false, fmt.Errorf("failed to read blastn output: %w", err)
	}
	return parseBlastTab(string(raw), uint64(seq.Len()))
}

// parseBlastTab picks the best scoring line of blastn tabular output and
// converts it to a Hit. seqLen is the query length, needed to place minus
// strand hits on the reverse complement.
func parseBlastTab(out string, seqLen uint64) (Hit, bool, error) {
	var (
		best  []string
		score float64
		found bool
	)
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) < 7 {
			continue
		}
		s, err := strconv.ParseFloat(cols[6], 64)
		if err != nil {
			return Hit{}, false, fmt.Errorf("bad bitscore %q: %w", cols[6], err)
		}
		if !found || s > score {
			best, score, found = cols, s, true
		}
	}
	if !found {
		return Hit{}, false, nil
	}

	var pos [4]uint64
	for i := range pos {
		v, err := strconv.ParseUint(best[i], 10, 64)
		if err != nil || v == 0 {
			return Hit{}, false, fmt.Errorf("bad position %q in blastn output", best[i])
		}
		pos[i] = v
	}
	qstart, qend, sstart, send := pos[0], pos[1], pos[2], pos[3]
	qseq, sseq := best[4], best[5]

	hit := Hit{Strand: coords.Plus, Score: score}
	if sstart > send {
		// blastn reports the query forward and the subject reversed;
		// flip both so the model reads forward.
		if qend > seqLen {
			return Hit{}, false, fmt.Errorf("query stop %d past sequence length %d", qend, seqLen)
		}
		qseq, sseq = revcompRow(qseq), revcompRow(sseq)
		qstart, qend = seqLen-qend+1, seqLen-qstart+1
		sstart, send = send, sstart
		hit.Strand = coords.Minus
	}
	hit.Seq = coords.Segment{Start: qstart, Stop: qend, Strand: coords.Plus}
	hit.Model = coords.Segment{Start: sstart, Stop: send, Strand: coords.Plus}

	t, err := alignment.NewTriple(strings.ToUpper(qseq), strings.ToUpper(sseq), nil)
	if err != nil {
		return Hit{}, false, err
	}
	ins, del := Summarize(t, qstart, sstart)
	hit.Insertions, hit.Deletions = indel.Format(ins), indel.Format(del)
	return hit, true, nil
}

// revcompRow reverse complements an aligned row, keeping gap characters.
func revcompRow(row string) string {
	out := make([]byte, len(row))
	for i := 0; i < len(row); i++ {
		c := row[i]
		if !alignment.IsGap(c) {
			c = complement(c)
		}
		out[len(row)-1-i] = c
	}
	return string(out)
}

func complement(c byte) byte {
	switch c {
	case 'A', 'a':
		return 'T'
	case 'T', 't', 'U', 'u':
		return 'A'
	case 'C', 'c':
		return 'G'
	case 'G', 'g':
		return 'C'
	}
	return 'N'
}
