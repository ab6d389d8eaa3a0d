package fetcher

import (
	"context"

	"thb-crypto-watch/internal/model"
)

// RateProvider yields the current USD→THB rate. Implementations never
// fail: on upstream trouble they degrade to a fallback rate.
type RateProvider interface {
	Rate(ctx context.Context) model.FxRate
}

// UniverseSource yields the ranked candidate symbol list, capped at n.
// Upstream failure degrades to an empty list.
type UniverseSource interface {
	TopSymbols(ctx context.Context, n int) []string
}

// SpotPricer retrieves current USD prices for a symbol set. Failed
// symbols map to a nil entry; they are never dropped from the map.
type SpotPricer interface {
	FetchPrices(ctx context.Context, symbols []string) model.PriceMap
}

// HistorySource retrieves recent OHLC bars for a symbol set in one
// batched call. Failure degrades to empty series.
type HistorySource interface {
	FetchHistory(ctx context.Context, symbols []string) map[string]model.BarSeries
}
