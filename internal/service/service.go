package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"thb-crypto-watch/internal/alerting"
	"thb-crypto-watch/internal/config"
	"thb-crypto-watch/internal/fetcher"
	"thb-crypto-watch/internal/model"
	"thb-crypto-watch/internal/scheduler"
	"thb-crypto-watch/internal/signal"
	"thb-crypto-watch/internal/storage"
)

// Snapshot is one completed dashboard cycle: the FX rate used and the
// candidates that passed evaluation. Sinks always receive a fully
// populated snapshot, never a partial one.
type Snapshot struct {
	At         time.Time
	Rate       model.FxRate
	Candidates []model.Candidate
}

// Sink receives each cycle's snapshot. The bundled implementation is a
// console renderer; a richer UI collaborator can replace it.
type Sink interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// PortfolioSource yields alert-mode holdings. Degrades to an empty
// list on failure.
type PortfolioSource interface {
	Load(ctx context.Context) []model.Holding
}

// Service orchestrates the price-ingestion and signal-evaluation
// pipeline in both operating modes.
type Service struct {
	cfg        *config.Config
	scheduler  *scheduler.Scheduler
	rate       fetcher.RateProvider
	universe   fetcher.UniverseSource
	spot       fetcher.SpotPricer
	history    fetcher.HistorySource
	portfolio  PortfolioSource
	store      storage.SnapshotStore
	alertStore storage.AlertStore
	notifier   alerting.Notifier
	sink       Sink
	logger     zerolog.Logger
}

// New constructs the orchestrator. store, alertStore, notifier,
// portfolio, and sink may be nil depending on the operating mode.
func New(cfg *config.Config, sched *scheduler.Scheduler, rate fetcher.RateProvider, universe fetcher.UniverseSource, spot fetcher.SpotPricer, history fetcher.HistorySource, portfolio PortfolioSource, store storage.SnapshotStore, alertStore storage.AlertStore, notifier alerting.Notifier, sink Sink, logger zerolog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		scheduler:  sched,
		rate:       rate,
		universe:   universe,
		spot:       spot,
		history:    history,
		portfolio:  portfolio,
		store:      store,
		alertStore: alertStore,
		notifier:   notifier,
		sink:       sink,
		logger:     logger.With().Str("component", "service").Logger(),
	}
}

// Run begins the dashboard refresh loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.Cycle)
}

// Cycle executes one dashboard refresh: rate and universe first, then
// spot prices and history concurrently, then evaluation. Upstream
// failures degrade per component; the only "failure" a cycle can
// surface to the sink is an empty candidate list.
func (s *Service) Cycle(ctx context.Context, now time.Time) error {
	rate := s.rate.Rate(ctx)
	universe := s.universe.TopSymbols(ctx, s.cfg.Universe.Limit)

	var (
		prices    model.PriceMap
		histories map[string]model.BarSeries
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		prices = s.spot.FetchPrices(ctx, universe)
		return nil
	})
	g.Go(func() error {
		histories = s.history.FetchHistory(ctx, universe)
		return nil
	})
	_ = g.Wait()

	candidates := signal.BuildCandidates(signal.CandidateParams{
		BudgetTHB: decimal.NewFromFloat(s.cfg.Dashboard.BudgetTHB),
		Rate:      rate,
		Universe:  universe,
		Prices:    prices,
		Histories: histories,
		RSIWindow: s.cfg.Dashboard.RSIWindow,
		RSIMin:    s.cfg.Dashboard.RSIMin,
		RSIMax:    s.cfg.Dashboard.RSIMax,
		Limit:     s.cfg.Dashboard.CandidateLimit,
	})

	s.logger.Info().
		Time("cycle", now).
		Int("universe", len(universe)).
		Int("candidates", len(candidates)).
		Str("fx_source", string(rate.Source)).
		Msg("cycle evaluated")

	s.persistSnapshots(ctx, now, rate, candidates)

	snap := Snapshot{At: now, Rate: rate, Candidates: candidates}
	if s.sink != nil {
		if err := s.sink.Publish(ctx, snap); err != nil {
			s.logger.Error().Err(err).Msg("failed to publish snapshot")
		}
	}
	return nil
}

func (s *Service) persistSnapshots(ctx context.Context, now time.Time, rate model.FxRate, candidates []model.Candidate) {
	if s.store == nil || len(candidates) == 0 {
		return
	}

	records := make([]storage.QuoteSnapshot, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, storage.QuoteSnapshot{
			Symbol:   c.Symbol,
			PriceUSD: c.PriceTHB.Div(rate.Value),
			PriceTHB: c.PriceTHB,
			FxRate:   rate.Value,
			FxSource: string(rate.Source),
			RSI:      c.RSI,
			CycleTS:  now,
		})
	}

	if err := s.store.InsertSnapshots(ctx, records); err != nil {
		s.logger.Error().Err(err).Time("cycle", now).Msg("failed to persist snapshots")
	}
}

// AlertOnce runs the one-shot alert mode: load the portfolio, quote
// its symbols, evaluate profit/stop rules, and deliver alerts.
// Delivery and persistence failures are logged, never propagated.
func (s *Service) AlertOnce(ctx context.Context) error {
	if s.portfolio == nil {
		return fmt.Errorf("portfolio source not configured")
	}
	if s.notifier == nil {
		return fmt.Errorf("notifier not configured")
	}

	holdings := s.portfolio.Load(ctx)
	if len(holdings) == 0 {
		s.logger.Warn().Msg("portfolio is empty, nothing to evaluate")
		return nil
	}

	symbols := make([]string, 0, len(holdings))
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		symbols = append(symbols, h.Symbol)
	}

	rate := s.rate.Rate(ctx)
	prices := s.spot.FetchPrices(ctx, symbols)

	alerts := signal.EvaluateHoldings(holdings, prices, rate)
	s.logger.Info().
		Int("holdings", len(holdings)).
		Int("alerts", len(alerts)).
		Str("fx_source", string(rate.Source)).
		Msg("portfolio evaluated")

	for _, alert := range alerts {
		if s.alertStore != nil {
			record := storage.AlertRecord{
				Symbol:    alert.Symbol,
				Kind:      string(alert.Kind),
				PriceTHB:  alert.PriceTHB,
				ProfitPct: alert.ProfitPct,
			}
			if _, err := s.alertStore.InsertAlert(ctx, record); err != nil {
				s.logger.Error().Err(err).Str("symbol", alert.Symbol).Msg("failed to persist alert record")
			}
		}
		if err := s.notifier.Notify(ctx, alert); err != nil {
			s.logger.Error().Err(err).Str("symbol", alert.Symbol).Msg("failed to dispatch alert")
		}
	}
	return nil
}
