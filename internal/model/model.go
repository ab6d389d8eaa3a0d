package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource marks where an FX rate came from.
type RateSource string

const (
	// RateSourceLive means the rate was fetched from the upstream API.
	RateSourceLive RateSource = "live"
	// RateSourceFallback means the static fallback rate was used.
	RateSourceFallback RateSource = "fallback"
)

// FxRate is a USD→THB conversion rate together with its provenance.
type FxRate struct {
	Value     decimal.Decimal
	FetchedAt time.Time
	Source    RateSource
}

// PriceMap holds per-symbol USD spot prices. A nil entry means the
// symbol was requested but its fetch failed; a missing key means it
// was never requested.
type PriceMap map[string]*decimal.Decimal

// Bar is one OHLC candle. Chart math runs on float64; money math on
// decimal happens after conversion, never here.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// BarSeries is a chronologically ordered candle sequence.
type BarSeries []Bar

// Closes returns the close column of the series.
func (s BarSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}
	return closes
}

// Holding is one portfolio position with its alert thresholds.
type Holding struct {
	Symbol    string
	CostTHB   decimal.Decimal
	TargetPct decimal.Decimal
	StopPct   decimal.Decimal
}

// Candidate is a dashboard row: a symbol that passed evaluation.
type Candidate struct {
	Symbol   string
	PriceTHB decimal.Decimal
	History  BarSeries
	RSI      float64
}

// AlertKind distinguishes the two alert triggers.
type AlertKind string

const (
	// AlertTargetHit fires when profit reaches the holding's target.
	AlertTargetHit AlertKind = "target_hit"
	// AlertStopHit fires when loss reaches the holding's stop.
	AlertStopHit AlertKind = "stop_hit"
)

// Alert is a triggered portfolio notification.
type Alert struct {
	Kind      AlertKind
	Symbol    string
	PriceTHB  decimal.Decimal
	ProfitPct decimal.Decimal
}
