package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/feature"
	"github.com/aria-lang/vannot-go/pkg/vannot"
)

func (a *app) coordsCmd() *cobra.Command {
	var length uint64
	cmd := &cobra.Command{
		Use:   "coords <coordinates>...",
		Short: "Parse and normalize coordinate strings",
		Long: `Parse GenBank-style coordinate strings and print their canonical form,
strand and length. With --circular and --length, a pair of segments that
spans the origin is merged into one.

Example usage:
	vannot coords 'join(1..10,20..30)'
	vannot coords --circular --length 100 'join(90..100,1..5)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := coords.Genome{Length: length, Circular: a.cfg.Circular}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#input\tcoords\tstrand\tlength\tsegments")
			for _, text := range args {
				c, err := vannot.SegmentsFor(text, g)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", text, c, c.Strand(), c.Length(), len(c))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Uint64Var(&length, "length", 0, "sequence length, needed for --circular")
	return cmd
}

func (a *app) relationsCmd() *cobra.Command {
	var length uint64
	cmd := &cobra.Command{
		Use:   "relations <segment>...",
		Short: "Pairwise overlap and adjacency of segments",
		Long: `Print the overlap length of every pair of segments, with '+' marking
segments that abut.

Example usage:
	vannot relations 1..10 11..20 15..30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			segs := make([]coords.Segment, len(args))
			for i, text := range args {
				s, err := coords.ParseSegment(text)
				if err != nil {
					return err
				}
				segs[i] = s
			}
			rel, err := vannot.PairwiseRelations(segs, coords.Genome{Length: length, Circular: a.cfg.Circular})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprint(tw, "#")
			for _, s := range segs {
				fmt.Fprintf(tw, "\t%s", s)
			}
			fmt.Fprintln(tw)
			for i, s := range segs {
				fmt.Fprint(tw, s)
				for j := range segs {
					mark := ""
					if rel.Adjacent[i][j] {
						mark = "+"
					}
					fmt.Fprintf(tw, "\t%d%s", rel.Overlap[i][j], mark)
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Uint64Var(&length, "length", 0, "sequence length, needed for --circular")
	return cmd
}

func tilingCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "tiling --parent <coordinates> <child>...",
		Short: "Check that child features tile a parent",
		Long: `Check that child coordinate strings, in order, cover the parent from its
start to one stop codon short of its stop.

Example usage:
	vannot tiling --parent 1..30 1..12 13..27`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := coords.ParseCoords(parent)
			if err != nil {
				return err
			}
			children := make([]coords.Coords, len(args))
			for i, text := range args {
				if children[i], err = coords.ParseCoords(text); err != nil {
					return err
				}
			}
			check := vannot.ValidateTiling(p, children)
			if !check.OK() {
				return check.Mismatch
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d children tile the parent\n", p, len(children))
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "parent coordinates")
	cmd.MarkFlagRequired("parent")
	return cmd
}

func seedCmd() *cobra.Command {
	var model, seq, ins, del string
	cmd := &cobra.Command{
		Use:   "seed --model <span> --seq <span> [--ins <tokens>] [--del <tokens>]",
		Short: "Ungapped regions and seed of an approximate hit",
		Long: `Split an approximate alignment into ungapped regions and print the longest
one as the seed. Indel tokens have the form Q<seq>:S<model>+<len> for
insertions and Q<seq>:S<model>-<len> for deletions, joined by ';'.

Example usage:
	vannot seed --model 1..20 --seq 1..21 --ins 'Q10:S10+1'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := coords.ParseSegment(model)
			if err != nil {
				return err
			}
			s, err := coords.ParseSegment(seq)
			if err != nil {
				return err
			}
			pairs, best, err := vannot.Ungapped(m, s, ins, del)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#seq\tmodel\tlength\tseed")
			for _, p := range pairs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%t\n", p.Seq, p.Model, p.Length(), p == best)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "model span of the hit")
	cmd.Flags().StringVar(&seq, "seq", "", "sequence span of the hit")
	cmd.Flags().StringVar(&ins, "ins", "", "insertion tokens")
	cmd.Flags().StringVar(&del, "del", "", "deletion tokens")
	cmd.MarkFlagRequired("model")
	cmd.MarkFlagRequired("seq")
	return cmd
}

func minfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "minfo <file>",
		Short: "Check the feature tables of a model info file",
		Long: `Read a model info file and report every parent feature whose children do
not tile it. Exits non-zero when any mismatch is found.

Example usage:
	vannot minfo models.minfo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer f.Close()

			tables, err := feature.ReadModelInfo(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var bad int
			for _, t := range tables {
				fmt.Fprintf(out, "%s\tlength=%d\tfeatures=%d\tsegments=%d\n",
					t.Model, t.Genome.Length, len(t.Features), len(t.Segments))
				mismatches := t.Mismatches()
				parents := make([]int, 0, len(mismatches))
				for i := range mismatches {
					parents = append(parents, i)
				}
				sort.Ints(parents)
				for _, i := range parents {
					feat := t.Features[i]
					fmt.Fprintf(out, "\tfeature %d %s %s: %v\n", i, feat.Type, feat.Coords, mismatches[i])
				}
				bad += len(mismatches)
			}
			if bad > 0 {
				return fmt.Errorf("%d features are not tiled by their children", bad)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), vannot.Info())
		},
	}
}
