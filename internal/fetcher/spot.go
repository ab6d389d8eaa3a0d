package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"thb-crypto-watch/internal/model"
)

const spotTickerPath = "/api/v3/ticker/price"

// SpotOptions parameterise the spot price fetcher.
type SpotOptions struct {
	BaseURL     string
	Timeout     time.Duration
	Concurrency int
}

// Spot fetches current USDT-quoted prices from Binance, one point query
// per symbol, fanned out with a bounded worker count.
type Spot struct {
	opts   SpotOptions
	logger zerolog.Logger
	client *http.Client
}

// NewSpot constructs the spot price fetcher.
func NewSpot(opts SpotOptions, logger zerolog.Logger) *Spot {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.binance.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 20
	}

	return &Spot{
		opts:   opts,
		logger: logger.With().Str("component", "spot").Logger(),
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// FetchPrices issues one ticker query per symbol with at most
// Concurrency requests in flight. A failed or timed-out request yields
// a nil entry for that symbol and never cancels its siblings.
func (s *Spot) FetchPrices(ctx context.Context, symbols []string) model.PriceMap {
	prices := make(model.PriceMap, len(symbols))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			price, err := s.fetchOne(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Debug().Err(err).Str("symbol", symbol).Msg("spot fetch failed")
				prices[symbol] = nil
				return nil
			}
			prices[symbol] = &price
			return nil
		})
	}

	// Workers always return nil; Wait is only a join point here.
	_ = g.Wait()
	return prices
}

type tickerResponse struct {
	Price string `json:"price"`
}

func (s *Spot) fetchOne(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s%s?symbol=%s", s.opts.BaseURL, spotTickerPath, url.QueryEscape(symbol+"USDT"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("ticker api status %d", resp.StatusCode)
	}

	var ticker tickerResponse
	if err := json.Unmarshal(body, &ticker); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode ticker response: %w", err)
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse price %q: %w", ticker.Price, err)
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("price not positive: %s", price)
	}

	return price, nil
}

var _ SpotPricer = (*Spot)(nil)
