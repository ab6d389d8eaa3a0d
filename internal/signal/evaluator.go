package signal

import (
	"github.com/shopspring/decimal"

	"thb-crypto-watch/internal/indicator"
	"thb-crypto-watch/internal/model"
)

var hundred = decimal.NewFromInt(100)

// EvaluateHoldings applies the profit/stop rule to each holding given
// current USD quotes and the FX rate. A holding produces at most one
// alert; the target check precedes the stop check. Holdings whose quote
// failed are skipped. The evaluator is stateless and never fails: any
// missing input yields no alerts.
func EvaluateHoldings(holdings []model.Holding, prices model.PriceMap, rate model.FxRate) []model.Alert {
	alerts := make([]model.Alert, 0, len(holdings))

	for _, holding := range holdings {
		price, ok := prices[holding.Symbol]
		if !ok || price == nil {
			continue
		}
		if !holding.CostTHB.IsPositive() {
			continue
		}

		priceTHB := price.Mul(rate.Value)
		profitPct := priceTHB.Sub(holding.CostTHB).Div(holding.CostTHB).Mul(hundred)

		switch {
		case profitPct.GreaterThanOrEqual(holding.TargetPct):
			alerts = append(alerts, model.Alert{
				Kind:      model.AlertTargetHit,
				Symbol:    holding.Symbol,
				PriceTHB:  priceTHB,
				ProfitPct: profitPct,
			})
		case profitPct.LessThanOrEqual(holding.StopPct.Neg()):
			alerts = append(alerts, model.Alert{
				Kind:      model.AlertStopHit,
				Symbol:    holding.Symbol,
				PriceTHB:  priceTHB,
				ProfitPct: profitPct,
			})
		}
	}

	return alerts
}

// CandidateParams carry one dashboard cycle's inputs into the
// candidate builder.
type CandidateParams struct {
	BudgetTHB decimal.Decimal
	Rate      model.FxRate
	Universe  []string
	Prices    model.PriceMap
	Histories map[string]model.BarSeries
	RSIWindow int
	RSIMin    float64
	RSIMax    float64
	Limit     int
}

// BuildCandidates walks the universe in ranking order and materialises
// up to Limit candidates. With a zero budget every symbol with a known
// price is accepted; with a positive budget a symbol must fit within it
// and sit inside the RSI band. The upper band default of 58 encodes a
// not-yet-overbought preference rather than the textbook 70.
func BuildCandidates(p CandidateParams) []model.Candidate {
	filtering := p.BudgetTHB.IsPositive()

	candidates := make([]model.Candidate, 0, p.Limit)
	for _, symbol := range p.Universe {
		if len(candidates) >= p.Limit {
			break
		}

		price, ok := p.Prices[symbol]
		if !ok || price == nil {
			continue
		}
		priceTHB := price.Mul(p.Rate.Value)

		history := p.Histories[symbol]
		rsi := indicator.RSI(history.Closes(), p.RSIWindow)

		if filtering {
			if priceTHB.GreaterThan(p.BudgetTHB) {
				continue
			}
			if rsi < p.RSIMin || rsi > p.RSIMax {
				continue
			}
		}

		candidates = append(candidates, model.Candidate{
			Symbol:   symbol,
			PriceTHB: priceTHB,
			History:  history,
			RSI:      rsi,
		})
	}

	return candidates
}
