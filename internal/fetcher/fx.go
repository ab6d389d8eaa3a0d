package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"thb-crypto-watch/internal/model"
)

// FxOptions parameterise the USD→THB rate provider.
type FxOptions struct {
	APIURL   string
	TTL      time.Duration
	Fallback decimal.Decimal
	Timeout  time.Duration
}

// Fx provides the USD→THB rate with a TTL cache and a constant
// fallback. It is the only process-wide mutable state in the pipeline
// and is safe for concurrent use.
type Fx struct {
	opts   FxOptions
	logger zerolog.Logger
	client *http.Client

	mu     sync.Mutex
	cached model.FxRate
}

// NewFx constructs the rate provider.
func NewFx(opts FxOptions, logger zerolog.Logger) *Fx {
	if opts.APIURL == "" {
		opts.APIURL = "https://api.exchangerate-api.com/v4/latest/USD"
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Fallback.IsZero() {
		opts.Fallback = decimal.NewFromFloat(34.5)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Fx{
		opts:   opts,
		logger: logger.With().Str("component", "fx").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// Rate returns the current rate, serving the cached value while it is
// within TTL. A fetch failure on a cold or expired cache yields the
// fallback rate; fallback values are never cached, so the next call
// retries the upstream.
func (f *Fx) Rate(ctx context.Context) model.FxRate {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UTC()
	if f.cached.Source == model.RateSourceLive && now.Sub(f.cached.FetchedAt) < f.opts.TTL {
		return f.cached
	}

	value, err := f.fetch(ctx)
	if err != nil {
		f.logger.Warn().Err(err).
			Str("fallback", f.opts.Fallback.String()).
			Msg("fx upstream failed, using fallback rate")
		return model.FxRate{
			Value:     f.opts.Fallback,
			FetchedAt: now,
			Source:    model.RateSourceFallback,
		}
	}

	f.cached = model.FxRate{
		Value:     value,
		FetchedAt: now,
		Source:    model.RateSourceLive,
	}
	return f.cached
}

type fxResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (f *Fx) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.APIURL, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("fx api status %d", resp.StatusCode)
	}

	var payload fxResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode fx response: %w", err)
	}

	thb, ok := payload.Rates["THB"]
	if !ok {
		return decimal.Decimal{}, errors.New("fx response missing rates.THB")
	}
	if thb <= 0 {
		return decimal.Decimal{}, fmt.Errorf("fx rate not positive: %f", thb)
	}

	return decimal.NewFromFloat(thb), nil
}

var _ RateProvider = (*Fx)(nil)
