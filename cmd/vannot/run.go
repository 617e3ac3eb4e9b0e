package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/aria-lang/vannot-go/internal/pipeline"
	"github.com/aria-lang/vannot-go/pkg/vannot"
)

type runFlags struct {
	models        string
	minfo         string
	cm            string
	tableOut      string
	alignmentsOut string
	progress      bool
}

func (a *app) runCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run --models <fasta> [options] <input.fa>...",
		Short: "Align sequences to models",
		Long: `Align every input sequence to its best model: find a seed hit, realign
the flanks around the seed, and join seed and flanks into one alignment
covering the whole sequence.

Without --blastn and --cmalign the hit and the flanks are computed
in-process; with them, the external programs are run once per sequence.

Example usage:
	vannot run --models models.fa --minfo models.minfo input.fa
	vannot run --models models.fa --cm models.cm --blastn blastn --cmalign cmalign \
		--table-out result.tsv --alignments-out result.stk input.fa`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd.OutOrStdout(), f, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.models, "models", "m", "", "FASTA file of model consensus sequences")
	flags.StringVar(&f.minfo, "minfo", "", "model info file with feature tables")
	flags.StringVar(&f.cm, "cm", "", "covariance model file for cmalign")
	flags.StringVarP(&f.tableOut, "table-out", "o", "", "result table (default: stdout)")
	flags.StringVar(&f.alignmentsOut, "alignments-out", "", "write joined alignments in Stockholm format")
	flags.BoolVar(&f.progress, "progress", false, "show a progress bar on stderr")
	cmd.MarkFlagRequired("models")
	return cmd
}

func (a *app) run(ctx context.Context, stdout io.Writer, f runFlags, inputs []string) error {
	models, err := vannot.ReadModels(f.models, f.minfo, f.cm)
	if err != nil {
		return err
	}
	var seqs []*vannot.Sequence
	for _, file := range inputs {
		s, err := vannot.ReadFASTA(file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		seqs = append(seqs, s...)
	}
	log.WithFields(log.Fields{
		"models":    len(models),
		"sequences": len(seqs),
	}).Info("loaded input")

	opts := vannot.Options(a.cfg)
	var pbs *mpb.Progress
	if f.progress && len(seqs) > 0 {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar := pbs.AddBar(int64(len(seqs)),
			mpb.PrependDecorators(
				decor.Name("aligned sequences: ", decor.WC{W: len("aligned sequences: "), C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 1024),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
		last := time.Now()
		opts.Progress = func(pipeline.Outcome) {
			now := time.Now()
			bar.EwmaIncrBy(1, now.Sub(last))
			last = now
		}
		defer func() {
			// a failed run leaves the bar short of its total
			bar.Abort(false)
			pbs.Wait()
		}()
	}

	seeder, flanker := vannot.Aligners(a.cfg)
	outcomes, err := pipeline.Run(ctx, opts, models, seqs, seeder, flanker)
	if err != nil {
		return err
	}

	table := stdout
	if f.tableOut != "" {
		fh, err := os.Create(f.tableOut)
		if err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
		defer fh.Close()
		table = fh
	}
	if err := pipeline.WriteTable(table, outcomes); err != nil {
		return err
	}

	if f.alignmentsOut != "" {
		fh, err := os.Create(f.alignmentsOut)
		if err != nil {
			return fmt.Errorf("creating alignments: %w", err)
		}
		defer fh.Close()
		if err := pipeline.WriteAlignments(fh, outcomes); err != nil {
			return err
		}
	}
	return nil
}
