package indicator

// RSI computes the Relative Strength Index over the most recent window
// of the closing-price series, using simple moving averages of gains
// and losses.
//
// Edge cases: fewer than window+1 samples returns the neutral 50 so
// thin-history symbols still participate in ranking; zero average loss
// with positive gains returns exactly 100; a fully flat window returns
// 0 (a thin-liquidity marker, not an error).
func RSI(closes []float64, window int) float64 {
	if window <= 0 || len(closes) < window+1 {
		return 50
	}

	var gains, losses float64
	for i := len(closes) - window; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}

	avgGain := gains / float64(window)
	avgLoss := losses / float64(window)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 0
		}
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
