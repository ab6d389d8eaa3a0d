package dashboard

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"thb-crypto-watch/internal/service"
)

// Console renders each cycle's candidates as a plain table. It is the
// default Sink for terminal use.
type Console struct {
	out io.Writer
}

// NewConsole constructs a console sink writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Publish renders the snapshot.
func (c *Console) Publish(_ context.Context, snap service.Snapshot) error {
	fmt.Fprintf(c.out, "\n%s  USD/THB %s (%s)\n",
		snap.At.UTC().Format(time.RFC3339),
		snap.Rate.Value.StringFixed(2),
		snap.Rate.Source,
	)

	if len(snap.Candidates) == 0 {
		fmt.Fprintln(c.out, "no matches")
		return nil
	}

	writer := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Symbol\tPrice (THB)\tRSI\tBars")
	for _, cand := range snap.Candidates {
		fmt.Fprintf(writer, "%s\t%s\t%.1f\t%d\n",
			cand.Symbol,
			humanize.CommafWithDigits(cand.PriceTHB.InexactFloat64(), 2),
			cand.RSI,
			len(cand.History),
		)
	}
	return writer.Flush()
}

var _ service.Sink = (*Console)(nil)
