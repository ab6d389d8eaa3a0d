package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"thb-crypto-watch/internal/model"
)

const historySparkPath = "/v8/finance/spark"

// HistoryOptions parameterise the batched OHLC fetcher.
type HistoryOptions struct {
	BaseURL  string
	Range    string
	Interval string
	Timeout  time.Duration
}

// History retrieves recent hourly bars for a whole symbol set in a
// single batched Yahoo Finance query. Batching keeps a dashboard
// refresh well under a minute where per-symbol chart calls would not.
type History struct {
	opts   HistoryOptions
	logger zerolog.Logger
	client *http.Client
}

// NewHistory constructs the history fetcher.
func NewHistory(opts HistoryOptions, logger zerolog.Logger) *History {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://query1.finance.yahoo.com"
	}
	if opts.Range == "" {
		opts.Range = "5d"
	}
	if opts.Interval == "" {
		opts.Interval = "1h"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &History{
		opts:   opts,
		logger: logger.With().Str("component", "history").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// sparkQuote carries the per-bar arrays. Values may be null or the
// array absent entirely; bars tolerate both.
type sparkQuote struct {
	Open   []any `json:"open"`
	High   []any `json:"high"`
	Low    []any `json:"low"`
	Close  []any `json:"close"`
	Volume []any `json:"volume"`
}

type sparkChart struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []sparkQuote `json:"quote"`
	} `json:"indicators"`
}

// sparkEnvelope mirrors the Yahoo spark batch response.
type sparkEnvelope struct {
	Spark struct {
		Result []struct {
			Symbol   string       `json:"symbol"`
			Response []sparkChart `json:"response"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"spark"`
}

// FetchHistory maps each symbol to its bar series. Symbols the upstream
// returned nothing for map to an empty series, as does the whole set on
// a batch-level failure.
func (h *History) FetchHistory(ctx context.Context, symbols []string) map[string]model.BarSeries {
	series := make(map[string]model.BarSeries, len(symbols))
	for _, symbol := range symbols {
		series[symbol] = model.BarSeries{}
	}
	if len(symbols) == 0 {
		return series
	}

	envelope, err := h.fetch(ctx, symbols)
	if err != nil {
		h.logger.Warn().Err(err).Int("symbols", len(symbols)).Msg("history batch failed, returning empty series")
		return series
	}

	for _, result := range envelope.Spark.Result {
		symbol := strings.TrimSuffix(result.Symbol, "-USD")
		if _, requested := series[symbol]; !requested {
			continue
		}
		if len(result.Response) == 0 {
			continue
		}
		series[symbol] = buildBars(result.Response[0])
	}
	return series
}

func (h *History) fetch(ctx context.Context, symbols []string) (*sparkEnvelope, error) {
	tickers := make([]string, len(symbols))
	for i, symbol := range symbols {
		tickers[i] = symbol + "-USD"
	}

	query := url.Values{}
	query.Set("symbols", strings.Join(tickers, ","))
	query.Set("range", h.opts.Range)
	query.Set("interval", h.opts.Interval)
	endpoint := h.opts.BaseURL + historySparkPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history api status %d", resp.StatusCode)
	}

	var envelope sparkEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}
	if envelope.Spark.Error != nil {
		return nil, fmt.Errorf("history api error: %s", envelope.Spark.Error.Description)
	}
	return &envelope, nil
}

func buildBars(chart sparkChart) model.BarSeries {
	if len(chart.Indicators.Quote) == 0 {
		return model.BarSeries{}
	}
	quote := chart.Indicators.Quote[0]

	bars := make(model.BarSeries, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		closePx := floatAt(quote.Close, i)
		if closePx == 0 {
			continue
		}
		bar := model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   floatAt(quote.Open, i),
			High:   floatAt(quote.High, i),
			Low:    floatAt(quote.Low, i),
			Close:  closePx,
			Volume: floatAt(quote.Volume, i),
		}
		// Spark responses often carry close only.
		if bar.Open == 0 {
			bar.Open = closePx
		}
		if bar.High == 0 {
			bar.High = closePx
		}
		if bar.Low == 0 {
			bar.Low = closePx
		}
		bars = append(bars, bar)
	}
	return bars
}

func floatAt(values []any, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	switch n := values[i].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

var _ HistorySource = (*History)(nil)
