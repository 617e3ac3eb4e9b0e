// Package pipeline runs the per-sequence alignment workflow (seed, flank
// selection, flank alignment, join) over a set of sequences with a bounded
// pool of workers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/vannot-go/internal/aligner"
	"github.com/aria-lang/vannot-go/internal/confidence"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/flank"
	"github.com/aria-lang/vannot-go/internal/indel"
	"github.com/aria-lang/vannot-go/internal/invariant"
	"github.com/aria-lang/vannot-go/internal/join"
	"github.com/aria-lang/vannot-go/internal/kmer"
	"github.com/aria-lang/vannot-go/internal/sequence"
	"github.com/aria-lang/vannot-go/internal/stats"
	"github.com/aria-lang/vannot-go/internal/ungapped"
)

// Options controls a run.
type Options struct {
	Workers       int
	OverhangWidth uint64
	// KmerSize is used to pick a model when more than one is loaded.
	KmerSize int
	// MinConfidence raises an alert when the mean confidence of a joined
	// alignment falls below it. Zero disables the check.
	MinConfidence float64
	// Progress, when set, is called once per finished sequence from the
	// collector goroutine.
	Progress func(Outcome)
}

// Outcome is the result of one sequence. Hit, Seed and Result are filled
// as far as the sequence got.
type Outcome struct {
	Index  int
	ID     string
	Length int
	Model  string
	Hit    *aligner.Hit
	Seed   *ungapped.Pair
	Result *join.Result
	// Confidence is nil when the joined alignment has no confidence row.
	Confidence *confidence.Summary
	Alerts     []Alert
}

// Joined reports whether the sequence got a joined alignment.
func (o *Outcome) Joined() bool {
	return o.Result != nil
}

// Strand returns the strand of the hit, Plus when there is none.
func (o *Outcome) Strand() coords.Strand {
	if o.Hit == nil {
		return coords.Plus
	}
	return o.Hit.Strand
}

// Entry converts the outcome for the run summary.
func (o *Outcome) Entry() stats.Entry {
	e := stats.Entry{
		Length:     o.Length,
		Joined:     o.Joined(),
		Alerts:     len(o.Alerts),
		Confidence: o.Confidence,
	}
	if o.Seed != nil {
		e.SeedLength = int(o.Seed.Length())
	}
	return e
}

func (o *Outcome) alert(kind AlertKind, err error) {
	a := Alert{Kind: kind, Err: err}
	o.Alerts = append(o.Alerts, a)
	log.WithFields(log.Fields{"seq": o.ID, "alert": kind}).Warn(err)
}

// Run processes records against models and returns one outcome per record
// in input order. Per-sequence problems become alerts; a fatal error (see
// invariant.IsFatal) cancels the remaining work and is returned.
func Run(ctx context.Context, opts Options, models []*aligner.Model, records []*sequence.Sequence,
	seeder aligner.Seeder, flanker aligner.FlankAligner) ([]Outcome, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("no models")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.OverhangWidth < 1 {
		return nil, fmt.Errorf("overhang width must be at least 1")
	}

	w := &worker{opts: opts, models: models, seeder: seeder, flanker: flanker}
	if len(models) > 1 {
		c, err := kmer.NewClassifier(opts.KmerSize)
		if err != nil {
			return nil, err
		}
		for _, m := range models {
			if err := c.Add(m.Name, m.Consensus); err != nil {
				return nil, err
			}
		}
		w.classifier = c
	}
	for _, m := range models {
		reportFeatures(m)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index int
		rec   *sequence.Sequence
	}
	type result struct {
		outcome Outcome
		err     error
	}
	jobs := make(chan job, opts.Workers*2)
	results := make(chan result, opts.Workers*2)

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					o, err := w.process(ctx, j.index, j.rec)
					select {
					case results <- result{outcome: o, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	outcomes := make([]Outcome, len(records))
	var (
		ferr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for r := range results {
			if ferr != nil {
				continue
			}
			if r.err != nil {
				ferr = fmt.Errorf("sequence %s: %w", r.outcome.ID, r.err)
				cancel()
				continue
			}
			outcomes[r.outcome.Index] = r.outcome
			if opts.Progress != nil {
				opts.Progress(r.outcome)
			}
		}
	}()

feed:
	for i, rec := range records {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{index: i, rec: rec}:
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ferr != nil {
		return nil, ferr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]stats.Entry, len(outcomes))
	for i := range outcomes {
		entries[i] = outcomes[i].Entry()
	}
	rs := stats.FromEntries(entries)
	log.WithFields(log.Fields{
		"sequences": rs.Sequences,
		"joined":    rs.Joined,
		"alerts":    rs.Alerts,
	}).Info("run finished")
	return outcomes, nil
}

func reportFeatures(m *aligner.Model) {
	if m.Features == nil {
		return
	}
	for parent, mm := range m.Features.Mismatches() {
		log.WithFields(log.Fields{
			"model":   m.Name,
			"feature": parent,
		}).Warn(mm)
	}
}

type worker struct {
	opts       Options
	models     []*aligner.Model
	classifier *kmer.Classifier
	seeder     aligner.Seeder
	flanker    aligner.FlankAligner
}

// process runs one sequence. Only fatal errors and cancellation are
// returned; everything else is recorded on the outcome.
func (w *worker) process(ctx context.Context, index int, rec *sequence.Sequence) (Outcome, error) {
	o := Outcome{Index: index, ID: rec.ID, Length: rec.Len()}
	entry := log.WithField("seq", rec.ID)

	m, err := w.pick(rec)
	if err != nil {
		o.alert(NoHit, err)
		return o, nil
	}
	o.Model = m.Name

	hit, ok, err := w.seeder.Seed(ctx, m, rec)
	if err != nil {
		return o, w.collaborator(ctx, &o, err)
	}
	if !ok {
		o.alert(NoHit, fmt.Errorf("no hit on model %s", m.Name))
		return o, nil
	}
	o.Hit = &hit
	entry.WithField("hit", hit).Debug("seeded")

	oriented := rec
	if hit.Strand == coords.Minus {
		oriented = rec.ReverseComplement()
	}

	ins, err := indel.ParseInsertions(hit.Insertions)
	if err != nil {
		return o, err
	}
	del, err := indel.ParseDeletions(hit.Deletions)
	if err != nil {
		return o, err
	}
	pairs, err := ungapped.Find(hit.Model, hit.Seq, ins, del)
	if err != nil {
		return o, err
	}
	seed, ok := ungapped.Seed(pairs)
	if !ok {
		return o, invariant.Newf("seed-present", "hit %s yields no ungapped region", hit)
	}
	o.Seed = &seed

	L := uint64(oriented.Len())
	reqs := flank.Select(L, seed.Seq, w.opts.OverhangWidth)
	var flanks []join.Flank
	if len(reqs) > 0 {
		flanks, err = w.flanker.AlignFlanks(ctx, m, oriented, reqs)
		if err != nil {
			return o, w.collaborator(ctx, &o, err)
		}
		if len(flanks) != len(reqs) {
			return o, invariant.Newf("flank-count", "%d flanks for %d requests", len(flanks), len(reqs))
		}
	}

	res, err := w.join(m, oriented, seed, reqs, flanks)
	var sf *join.SpliceFailure
	switch {
	case errors.As(err, &sf):
		o.alert(Splice, err)
		return o, nil
	case err != nil && invariant.IsFatal(err):
		return o, err
	case err != nil:
		o.alert(JoinFailure, err)
		return o, nil
	}
	o.Result = res

	if res.Triple.Confidence != nil {
		scores, err := confidence.Decode(*res.Triple.Confidence)
		if err != nil {
			o.alert(JoinFailure, err)
			return o, nil
		}
		o.Confidence = scores.Summarize()
		if w.opts.MinConfidence > 0 && o.Confidence.Mean < w.opts.MinConfidence {
			o.alert(LowConfidence, fmt.Errorf("mean confidence %.3f below %.3f", o.Confidence.Mean, w.opts.MinConfidence))
		}
	}
	entry.WithFields(log.Fields{"model": m.Name, "flanks": len(flanks)}).Debug("joined")
	return o, nil
}

func (w *worker) pick(rec *sequence.Sequence) (*aligner.Model, error) {
	if w.classifier == nil {
		return w.models[0], nil
	}
	match, ok, err := w.classifier.Classify(rec.Bases)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no model shares a %d-mer with the sequence", w.opts.KmerSize)
	}
	return w.models[match.Index], nil
}

// collaborator records an aligner failure unless it is fatal or the run
// was cancelled.
func (w *worker) collaborator(ctx context.Context, o *Outcome, err error) error {
	if invariant.IsFatal(err) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	o.alert(AlignerFailure, err)
	return nil
}

func (w *worker) join(m *aligner.Model, seq *sequence.Sequence, seed ungapped.Pair, reqs []flank.Request, flanks []join.Flank) (*join.Result, error) {
	if len(reqs) == 1 && reqs[0].Side == flank.Whole {
		return join.Whole(flanks[0], m.Consensus, uint64(seq.Len()))
	}

	bases, err := seq.Sub(seed.Seq)
	if err != nil {
		return nil, err
	}
	in := join.Input{
		SeedModel: seed.Model,
		SeedSeq:   seed.Seq,
		SeedBases: bases,
		Consensus: m.Consensus,
		SeqLen:    uint64(seq.Len()),
	}
	for i := range reqs {
		switch reqs[i].Side {
		case flank.FivePrime:
			in.Five = &flanks[i]
		case flank.ThreePrime:
			in.Three = &flanks[i]
		}
	}
	return join.Join(in)
}
