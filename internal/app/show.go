package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"thb-crypto-watch/internal/storage"
)

type snapshotLister interface {
	ListRecentSnapshots(ctx context.Context, symbol string, limit int) ([]storage.QuoteSnapshot, error)
}

type alertLister interface {
	ListRecentAlerts(ctx context.Context, limit int) ([]storage.AlertRecord, error)
}

// Show prints recent snapshots or alerts from the audit store.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; nothing to show")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.Alerts {
		return a.showAlerts(ctx, store, opts.Limit)
	}
	return a.showSnapshots(ctx, store, opts.Symbol, opts.Limit)
}

func (a *App) showSnapshots(ctx context.Context, store snapshotLister, symbol string, limit int) error {
	snapshots, err := store.ListRecentSnapshots(ctx, symbol, limit)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tSymbol\tUSD\tTHB\tFX\tSource\tRSI")
	for _, snap := range snapshots {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\t%.1f\n",
			snap.CycleTS.UTC().Format(time.RFC3339),
			snap.Symbol,
			snap.PriceUSD.StringFixed(4),
			snap.PriceTHB.StringFixed(2),
			snap.FxRate.StringFixed(2),
			snap.FxSource,
			snap.RSI,
		)
	}
	return writer.Flush()
}

func (a *App) showAlerts(ctx context.Context, store alertLister, limit int) error {
	alerts, err := store.ListRecentAlerts(ctx, limit)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tSymbol\tKind\tTHB\tProfit%")
	for _, alert := range alerts {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			alert.CreatedAt.UTC().Format(time.RFC3339),
			alert.Symbol,
			alert.Kind,
			alert.PriceTHB.StringFixed(2),
			alert.ProfitPct.StringFixed(2),
		)
	}
	return writer.Flush()
}
