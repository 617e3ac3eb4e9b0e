package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aria-lang/vannot-go/internal/config"
	"github.com/aria-lang/vannot-go/internal/logging"
	"github.com/aria-lang/vannot-go/pkg/vannot"
)

// app carries what the subcommands share: the viper instance the flags are
// bound to and the configuration loaded from it before any command runs.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "vannot",
		Short:         "Align sequences to annotated reference models",
		Version:       vannot.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configFile)
			if err != nil {
				return err
			}
			if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "YAML config file")
	pf.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.Uint64("overhang-width", 100, "residues a flank reaches back into the seed")
	pf.Bool("circular", false, "treat model coordinates as circular")
	pf.IntP("workers", "t", 0, "worker goroutines (default: number of CPUs)")
	pf.Int("kmer-size", 8, "k-mer length used to pick between models")
	pf.Float64("min-confidence", 0, "alert below this mean alignment confidence (0 disables)")
	pf.String("blastn", "", "path to blastn (empty: in-process seeding)")
	pf.String("cmalign", "", "path to cmalign (empty: in-process flank alignment)")
	pf.Int("aligner-threads", 1, "threads per external aligner call")
	pf.String("tmp-dir", "", "directory for aligner scratch files")

	for key, flag := range map[string]string{
		"log-level":          "log-level",
		"overhang-width":     "overhang-width",
		"circular":           "circular",
		"worker-concurrency": "workers",
		"kmer-size":          "kmer-size",
		"min-confidence":     "min-confidence",
		"blastn":             "blastn",
		"cmalign":            "cmalign",
		"aligner-threads":    "aligner-threads",
		"tmp-dir":            "tmp-dir",
	} {
		// only flags set on the command line override file and environment
		a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		a.runCmd(),
		versionCmd(),
		a.coordsCmd(),
		a.relationsCmd(),
		indelCmd(),
		seedCmd(),
		tilingCmd(),
		minfoCmd(),
	)
	return root
}
