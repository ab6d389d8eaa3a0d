package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"thb-crypto-watch/internal/alerting"
	"thb-crypto-watch/internal/config"
	"thb-crypto-watch/internal/dashboard"
	"thb-crypto-watch/internal/fetcher"
	"thb-crypto-watch/internal/portfolio"
	"thb-crypto-watch/internal/scheduler"
	"thb-crypto-watch/internal/service"
	"thb-crypto-watch/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newRateProvider() fetcher.RateProvider {
	return fetcher.NewFx(fetcher.FxOptions{
		APIURL:   a.Config.Fx.APIURL,
		TTL:      a.Config.Fx.TTL,
		Fallback: decimal.NewFromFloat(a.Config.Fx.FallbackRate),
		Timeout:  a.Config.Fx.RequestTimeout,
	}, a.Logger)
}

func (a *App) newUniverse() fetcher.UniverseSource {
	return fetcher.NewUniverse(fetcher.UniverseOptions{
		APIURL:  a.Config.Universe.APIURL,
		Timeout: a.Config.Universe.RequestTimeout,
	}, a.Logger)
}

func (a *App) newSpot() fetcher.SpotPricer {
	return fetcher.NewSpot(fetcher.SpotOptions{
		BaseURL:     a.Config.Spot.BaseURL,
		Timeout:     a.Config.Spot.RequestTimeout,
		Concurrency: a.Config.Spot.Concurrency,
	}, a.Logger)
}

func (a *App) newHistory() fetcher.HistorySource {
	return fetcher.NewHistory(fetcher.HistoryOptions{
		BaseURL:  a.Config.History.BaseURL,
		Range:    a.Config.History.Range,
		Interval: a.Config.History.Interval,
		Timeout:  a.Config.History.RequestTimeout,
	}, a.Logger)
}

func (a *App) newPortfolio() service.PortfolioSource {
	return portfolio.NewLoader(portfolio.LoaderOptions{
		URL:     a.Config.Portfolio.SheetURL,
		Timeout: a.Config.Portfolio.RequestTimeout,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Line.Token == "" {
		return nil
	}
	return alerting.NewLineNotifier(a.Config.Alerting.Line.Token, a.Config.Alerting.Line.APIBase, 10*time.Second, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// RunOptions configure dashboard mode.
type RunOptions struct {
	BudgetTHB float64
	BudgetSet bool
}

// Run executes the dashboard refresh loop until interrupted.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.BudgetSet {
		a.Config.Dashboard.BudgetTHB = opts.BudgetTHB
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; snapshot auditing disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Dashboard.Refresh,
		StartupDelay: a.Config.Dashboard.StartupDelay,
	}, a.Logger)

	var snapshotStore storage.SnapshotStore
	if store != nil {
		snapshotStore = store
	}

	sink := dashboard.NewConsole(os.Stdout)
	svc := service.New(a.Config, sched,
		a.newRateProvider(), a.newUniverse(), a.newSpot(), a.newHistory(),
		nil, snapshotStore, nil, nil, sink, a.Logger)

	a.Logger.Info().
		Float64("budget_thb", a.Config.Dashboard.BudgetTHB).
		Dur("refresh", a.Config.Dashboard.Refresh).
		Msg("starting dashboard")

	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("dashboard terminated with error")
		return err
	}

	a.Logger.Info().Msg("dashboard stopped")
	return nil
}

// AlertOnce executes the one-shot alert job.
func (a *App) AlertOnce(ctx context.Context) error {
	if err := a.Config.RequireAlertChannel(); err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	var alertStore storage.AlertStore
	if store != nil {
		alertStore = store
	}

	svc := service.New(a.Config, nil,
		a.newRateProvider(), nil, a.newSpot(), nil,
		a.newPortfolio(), nil, alertStore, a.newNotifier(), nil, a.Logger)

	return svc.AlertOnce(ctx)
}

// ExportOptions hold parameters for exporting stored snapshots.
type ExportOptions struct {
	Symbol    string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Symbol string
	Limit  int
	Alerts bool
}

// SimulateOptions feed one synthetic holding through the alert path.
type SimulateOptions struct {
	Symbol    string
	CostTHB   float64
	PriceUSD  float64
	TargetPct float64
	StopPct   float64
}
