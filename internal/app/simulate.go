package app

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"thb-crypto-watch/internal/fetcher"
	"thb-crypto-watch/internal/model"
	"thb-crypto-watch/internal/service"
)

// SimulateAlert pushes one synthetic holding through the real alert
// path, using a fixed USD price instead of the spot API.
func (a *App) SimulateAlert(ctx context.Context, opts SimulateOptions) error {
	if a.Config.Alerting.Line.Token == "" {
		return errors.New("alerting.line.token is required (or set LINE_TOKEN)")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	holding := model.Holding{
		Symbol:    opts.Symbol,
		CostTHB:   decimal.NewFromFloat(opts.CostTHB),
		TargetPct: decimal.NewFromFloat(opts.TargetPct),
		StopPct:   decimal.NewFromFloat(opts.StopPct),
	}

	portfolio := &staticPortfolio{holdings: []model.Holding{holding}}
	spot := &staticPricer{prices: model.PriceMap{
		opts.Symbol: decimalPtr(decimal.NewFromFloat(opts.PriceUSD)),
	}}

	svc := service.New(a.Config, nil,
		a.newRateProvider(), nil, spot, nil,
		portfolio, nil, nil, notifier, nil, a.Logger)

	return svc.AlertOnce(ctx)
}

type staticPortfolio struct {
	holdings []model.Holding
}

func (s *staticPortfolio) Load(_ context.Context) []model.Holding {
	return s.holdings
}

type staticPricer struct {
	prices model.PriceMap
}

func (s *staticPricer) FetchPrices(_ context.Context, _ []string) model.PriceMap {
	return s.prices
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

var _ service.PortfolioSource = (*staticPortfolio)(nil)
var _ fetcher.SpotPricer = (*staticPricer)(nil)
