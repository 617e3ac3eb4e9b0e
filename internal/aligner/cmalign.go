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
	"github.com/aria-lang/vannot-go/internal/flank"
	"github.com/aria-lang/vannot-go/internal/join"
	"github.com/aria-lang/vannot-go/internal/sequence"
)

// Cmalign aligns flanks with an external cmalign against the model's
// covariance model.
type Cmalign struct {
	Path    string
	TmpDir  string
	Threads int
}

// AlignFlanks implements FlankAligner.
func (c *Cmalign) AlignFlanks(ctx context.Context, m *Model, seq *sequence.Sequence, reqs []flank.Request) ([]join.Flank, error) {
	if m.CMFile == "" {
		return nil, fmt.Errorf("model %s has no covariance model file", m.Name)
	}
	dir, cleanup, err := workdir(c.TmpDir, "vannot-cmalign-")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	flanks := make([]join.Flank, 0, len(reqs))
	for i, req := range reqs {
		bases, err := seq.Sub(req.Seq)
		if err != nil {
			return nil, err
		}
		sub, err := sequence.New(fmt.Sprintf("%s.%d", seq.ID, i), bases)
		if err != nil {
			return nil, err
		}
		in, err := writeFASTA(dir, fmt.Sprintf("flank%d.fa", i), sub)
		if err != nil {
			return nil, err
		}
		out := filepath.Join(dir, fmt.Sprintf("flank%d.stk", i))

		args := []string{"-o", out}
		if c.Threads > 0 {
			args = append(args, "--cpu", strconv.Itoa(c.Threads))
		}
		args = append(args, m.CMFile, in)
		if err := run(ctx, c.Path, args...); err != nil {
			return nil, err
		}

		f, err := readCMFlank(out, m.Consensus, req)
		if err != nil {
			return nil, fmt.Errorf("%s flank of %s: %w", req.Side, seq.ID, err)
		}
		flanks = append(flanks, f)
	}
	return flanks, nil
}

func readCMFlank(path, consensus string, req flank.Request) (join.Flank, error) {
	file, err := os.Open(path)
	if err != nil {
		return join.Flank{}, fmt.Errorf("failed to open cmalign output: %w", err)
	}
	defer file.Close()

	_, t, err := alignment.ReadTriple(file)
	if err != nil {
		return join.Flank{}, err
	}
	t, err = withConsensus(t, consensus)
	if err != nil {
		return join.Flank{}, err
	}
	if uint64(len(t.Residues())) != req.Seq.Length() {
		return join.Flank{}, fmt.Errorf("alignment holds %d residues, requested %s", len(t.Residues()), req.Seq)
	}
	return join.Flank{
		Triple: t,
		Model:  coords.NewSegment(1, uint64(len(consensus))),
		Seq:    req.Seq,
	}, nil
}

// withConsensus normalizes a cmalign triple: the reference annotation is
// replaced by the consensus residues, insert residues are upper-cased and
// columns empty in both rows are dropped.
func withConsensus(t alignment.Triple, consensus string) (alignment.Triple, error) {
	var seq, model, conf strings.Builder
	k := 0
	for i := 0; i < t.Width(); i++ {
		s, r := t.Seq[i], t.Model[i]
		if alignment.IsGap(s) && alignment.IsGap(r) {
			continue
		}
		if alignment.IsGap(r) {
			model.WriteByte(alignment.InsertGapChar)
		} else {
			if k >= len(consensus) {
				return alignment.Triple{}, fmt.Errorf("reference annotation longer than consensus (%d)", len(consensus))
			}
			model.WriteByte(consensus[k])
			k++
		}
		if alignment.IsGap(s) {
			seq.WriteByte(alignment.GapChar)
		} else {
			s = upper(s)
			if s == 'U' {
				s = 'T'
			}
			seq.WriteByte(s)
		}
		if t.Confidence != nil {
			c := (*t.Confidence)[i]
			if alignment.IsGap(s) {
				c = alignment.InsertGapChar
			}
			conf.WriteByte(c)
		}
	}
	if k != len(consensus) {
		return alignment.Triple{}, fmt.Errorf("reference annotation covers %d of %d model positions", k, len(consensus))
	}

	var confidence *string
	if t.Confidence != nil {
		c := conf.String()
		confidence = &c
	}
	return alignment.NewTriple(seq.String(), model.String(), confidence)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
