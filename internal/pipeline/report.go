package pipeline

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/internal/coords"
)

// WriteTable writes one line per outcome: identifier, length, model,
// strand, seed spans, join status, inserts, mean confidence and alerts.
func WriteTable(w io.Writer, outcomes []Outcome) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#seq\tlength\tmodel\tstrand\tseed_seq\tseed_model\tjoined\tinserts\tconfidence\talerts")
	for i := range outcomes {
		o := &outcomes[i]
		seedSeq, seedModel := "-", "-"
		if o.Seed != nil {
			seedSeq, seedModel = coords.FormatSegment(o.Seed.Seq), coords.FormatSegment(o.Seed.Model)
		}
		inserts := "-"
		if o.Result != nil && len(o.Result.Inserts) > 0 {
			inserts = alignment.FormatInserts(o.Result.Inserts)
		}
		conf := "-"
		if o.Confidence != nil {
			conf = fmt.Sprintf("%.3f", o.Confidence.Mean)
		}
		alerts := "-"
		if len(o.Alerts) > 0 {
			kinds := make([]string, len(o.Alerts))
			for j, a := range o.Alerts {
				kinds[j] = a.Kind.String()
			}
			alerts = strings.Join(kinds, ",")
		}
		model := o.Model
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%t\t%s\t%s\t%s\n",
			o.ID, o.Length, model, o.Strand(), seedSeq, seedModel, o.Joined(), inserts, conf, alerts)
	}
	return tw.Flush()
}

// WriteAlignments writes the joined alignment of every joined outcome as a
// Stockholm block.
func WriteAlignments(w io.Writer, outcomes []Outcome) error {
	for i := range outcomes {
		o := &outcomes[i]
		if o.Result == nil {
			continue
		}
		if err := alignment.WriteTriple(w, o.ID, o.Result.Triple); err != nil {
			return fmt.Errorf("writing alignment of %s: %w", o.ID, err)
		}
	}
	return nil
}
