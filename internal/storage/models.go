package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteSnapshot is one evaluated candidate persisted for auditing.
type QuoteSnapshot struct {
	Symbol    string
	PriceUSD  decimal.Decimal
	PriceTHB  decimal.Decimal
	FxRate    decimal.Decimal
	FxSource  string
	RSI       float64
	CycleTS   time.Time
	CreatedAt time.Time
}

// AlertRecord captures an emitted alert.
type AlertRecord struct {
	ID        int64
	Symbol    string
	Kind      string
	PriceTHB  decimal.Decimal
	ProfitPct decimal.Decimal
	CreatedAt time.Time
}
