package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aria-lang/vannot-go/internal/indel"
)

func indelCmd() *cobra.Command {
	var ins, del string
	cmd := &cobra.Command{
		Use:   "indel [--ins <tokens>] [--del <tokens>]",
		Short: "Parse insertion and deletion descriptions",
		Long: `Parse indel descriptions and print one line per event in canonical form.

Example usage:
	vannot indel --ins 'Q10:S10+1;Q40:S39+2' --del 'Q20:M20-3'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			insertions, err := indel.ParseInsertions(ins)
			if err != nil {
				return err
			}
			deletions, err := indel.ParseDeletions(del)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#token\tkind\tseq\tmodel\tlength")
			for _, t := range append(insertions, deletions...) {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", t, t.Kind, t.SeqPos, t.ModelPos, t.Len)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&ins, "ins", "", "insertion tokens")
	cmd.Flags().StringVar(&del, "del", "", "deletion tokens")
	return cmd
}
