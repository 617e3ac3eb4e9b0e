package aligner

import (
	"fmt"
	"io"

	"github.com/aria-lang/vannot-go/internal/feature"
	"github.com/aria-lang/vannot-go/internal/sequence"
)

// LoadModels reads model consensus sequences from FASTA and, when minfo is
// not nil, attaches the feature table of the same name to each model.
// Every model shares the covariance model file cmFile.
func LoadModels(consensus io.Reader, minfo io.Reader, cmFile string) ([]*Model, error) {
	seqs, err := sequence.ReadFASTA(consensus)
	if err != nil {
		return nil, fmt.Errorf("failed to read model consensus: %w", err)
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("no model consensus sequences")
	}

	models := make([]*Model, len(seqs))
	byName := make(map[string]*Model, len(seqs))
	for i, s := range seqs {
		if _, dup := byName[s.ID]; dup {
			return nil, fmt.Errorf("duplicate model %s", s.ID)
		}
		models[i] = &Model{Name: s.ID, Consensus: s.Bases, CMFile: cmFile}
		byName[s.ID] = models[i]
	}

	if minfo == nil {
		return models, nil
	}
	tables, err := feature.ReadModelInfo(minfo)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		m, ok := byName[t.Model]
		if !ok {
			return nil, fmt.Errorf("model info for unknown model %s", t.Model)
		}
		if t.Genome.Length != m.Len() {
			return nil, fmt.Errorf("model %s: info length %d, consensus length %d", t.Model, t.Genome.Length, m.Len())
		}
		m.Features = t
	}
	return models, nil
}
