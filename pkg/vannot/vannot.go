// Package vannot provides a high-level API for aligning sequences to
// annotated reference models.
//
// Example usage:
//
//	cfg, err := config.Load(config.New(), "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	models, err := vannot.ReadModels("models.fa", "models.minfo", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	seqs, err := vannot.ReadFASTA("input.fa")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outcomes, err := vannot.Run(ctx, cfg, models, seqs)
package vannot

import (
	"context"
	"fmt"
	"os"

	"github.com/aria-lang/vannot-go/internal/aligner"
	"github.com/aria-lang/vannot-go/internal/confidence"
	"github.com/aria-lang/vannot-go/internal/config"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/feature"
	"github.com/aria-lang/vannot-go/internal/flank"
	"github.com/aria-lang/vannot-go/internal/indel"
	"github.com/aria-lang/vannot-go/internal/join"
	"github.com/aria-lang/vannot-go/internal/kmer"
	"github.com/aria-lang/vannot-go/internal/pipeline"
	"github.com/aria-lang/vannot-go/internal/sequence"
	"github.com/aria-lang/vannot-go/internal/stats"
	"github.com/aria-lang/vannot-go/internal/ungapped"
)

// Re-export types for convenience
type (
	Sequence      = sequence.Sequence
	Segment       = coords.Segment
	Coords        = coords.Coords
	Genome        = coords.Genome
	IndelToken    = indel.Token
	Pair          = ungapped.Pair
	FlankRequest  = flank.Request
	Flank         = join.Flank
	JoinInput     = join.Input
	JoinResult    = join.Result
	Model         = aligner.Model
	Hit           = aligner.Hit
	Outcome       = pipeline.Outcome
	Config        = config.Config
	FeatureTable  = feature.Table
	TilingCheck   = feature.Check
	SegmentMatrix = feature.Relations
	Confidence    = confidence.Scores
	Classifier    = kmer.Classifier
	SetStats      = stats.SequenceSetStats
)

// NewSequence creates a validated sequence.
func NewSequence(id, bases string) (*Sequence, error) {
	return sequence.New(id, bases)
}

// ParseCoords parses a coordinate string.
func ParseCoords(text string) (Coords, error) {
	return coords.ParseCoords(text)
}

// FormatCoords writes coordinates in canonical form.
func FormatCoords(c Coords) string {
	return coords.FormatCoords(c)
}

// SegmentsFor parses a feature coordinate string, merging a segment pair
// that spans the origin of a circular genome.
func SegmentsFor(text string, g Genome) (Coords, error) {
	return feature.SegmentsFor(text, g)
}

// PairwiseRelations computes the overlap and adjacency matrices of segs.
func PairwiseRelations(segs []Segment, g Genome) (*SegmentMatrix, error) {
	return feature.PairwiseRelations(segs, g)
}

// Ungapped decomposes an approximate hit into ungapped regions and returns
// them with the seed.
func Ungapped(model, seq Segment, insertions, deletions string) ([]Pair, Pair, error) {
	ins, err := indel.ParseInsertions(insertions)
	if err != nil {
		return nil, Pair{}, err
	}
	del, err := indel.ParseDeletions(deletions)
	if err != nil {
		return nil, Pair{}, err
	}
	pairs, err := ungapped.Find(model, seq, ins, del)
	if err != nil {
		return nil, Pair{}, err
	}
	seed, ok := ungapped.Seed(pairs)
	if !ok {
		return nil, Pair{}, fmt.Errorf("no ungapped region")
	}
	return pairs, seed, nil
}

// SelectFlanks returns the flank requests for a seed.
func SelectFlanks(seqLen uint64, seed Segment, width uint64) []FlankRequest {
	return flank.Select(seqLen, seed, width)
}

// Join splices flank alignments and a seed.
func Join(in JoinInput) (*JoinResult, error) {
	return join.Join(in)
}

// ValidateTiling checks that children tile parent.
func ValidateTiling(parent Coords, children []Coords) TilingCheck {
	return feature.ValidateTiling(parent, children)
}

// DecodeConfidence reads a posterior probability row.
func DecodeConfidence(row string) (*Confidence, error) {
	return confidence.Decode(row)
}

// NewClassifier returns an empty k-mer model classifier.
func NewClassifier(k int) (*Classifier, error) {
	return kmer.NewClassifier(k)
}

// SequenceSetStats calculates statistics for multiple sequences.
func SequenceSetStats(seqs []*Sequence) (*SetStats, error) {
	return stats.FromSequences(seqs)
}

// ReadFASTA reads sequences from a FASTA file.
func ReadFASTA(filename string) ([]*Sequence, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	return sequence.ReadFASTA(file)
}

// ReadModels loads model consensus sequences and, when minfoPath is set,
// their feature tables.
func ReadModels(consensusPath, minfoPath, cmFile string) ([]*Model, error) {
	fa, err := os.Open(consensusPath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer fa.Close()

	if minfoPath == "" {
		return aligner.LoadModels(fa, nil, cmFile)
	}
	mi, err := os.Open(minfoPath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer mi.Close()
	return aligner.LoadModels(fa, mi, cmFile)
}

// Aligners returns the configured collaborators: the external programs
// when their paths are set, the in-process aligners otherwise.
func Aligners(cfg *Config) (aligner.Seeder, aligner.FlankAligner) {
	var (
		seeder  aligner.Seeder       = &aligner.LocalSeeder{MaxCells: cfg.MaxCells}
		flanker aligner.FlankAligner = &aligner.LocalFlanker{MaxCells: cfg.MaxCells}
	)
	if cfg.Blastn != "" {
		seeder = &aligner.Blastn{Path: cfg.Blastn, TmpDir: cfg.TmpDir, Threads: cfg.AlignerThreads}
	}
	if cfg.Cmalign != "" {
		flanker = &aligner.Cmalign{Path: cfg.Cmalign, TmpDir: cfg.TmpDir, Threads: cfg.AlignerThreads}
	}
	return seeder, flanker
}

// Options converts the configuration into pipeline options.
func Options(cfg *Config) pipeline.Options {
	return pipeline.Options{
		Workers:       cfg.WorkerConcurrency,
		OverhangWidth: cfg.OverhangWidth,
		KmerSize:      cfg.KmerSize,
		MinConfidence: cfg.MinConfidence,
	}
}

// Run aligns seqs to models with the configured aligners.
func Run(ctx context.Context, cfg *Config, models []*Model, seqs []*Sequence) ([]Outcome, error) {
	seeder, flanker := Aligners(cfg)
	return pipeline.Run(ctx, Options(cfg), models, seqs, seeder, flanker)
}

// Version returns the vannot version.
func Version() string {
	return "0.3.0"
}

// Info returns information about vannot.
func Info() string {
	return fmt.Sprintf(`vannot v%s - reference model alignment and annotation

Features:
  - GenBank-style coordinate parsing and segment algebra
  - Seed detection from approximate alignments
  - Flank realignment and seed/flank joining
  - Feature tiling and segment overlap checks
  - blastn/cmalign or in-process aligners
`, Version())
}
