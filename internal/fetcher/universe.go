package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// stablecoins are excluded from the candidate universe.
var stablecoins = map[string]struct{}{
	"USDT": {},
	"USDC": {},
	"DAI":  {},
}

// UniverseOptions parameterise the ranked symbol source.
type UniverseOptions struct {
	APIURL  string
	Timeout time.Duration
}

// Universe pulls the ranked protocol list from DefiLlama and reduces it
// to a capped, stablecoin-free symbol list. Upstream order is treated
// as the authoritative ranking.
type Universe struct {
	opts   UniverseOptions
	logger zerolog.Logger
	client *http.Client
}

// NewUniverse constructs the universe source.
func NewUniverse(opts UniverseOptions, logger zerolog.Logger) *Universe {
	if opts.APIURL == "" {
		opts.APIURL = "https://api.llama.fi/protocols"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Universe{
		opts:   opts,
		logger: logger.With().Str("component", "universe").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

type protocolEntry struct {
	Symbol string `json:"symbol"`
}

// TopSymbols returns up to n ranked symbols. Entries without a symbol
// and stablecoins are dropped. On upstream failure the list is empty
// and the pipeline surfaces "no candidates" downstream.
func (u *Universe) TopSymbols(ctx context.Context, n int) []string {
	entries, err := u.fetch(ctx)
	if err != nil {
		u.logger.Warn().Err(err).Msg("universe upstream failed, returning empty list")
		return nil
	}

	symbols := make([]string, 0, n)
	for _, entry := range entries {
		if len(symbols) >= n {
			break
		}
		sym := strings.ToUpper(strings.TrimSpace(entry.Symbol))
		// DefiLlama marks protocols without a token as "-".
		if sym == "" || sym == "-" {
			continue
		}
		if _, ok := stablecoins[sym]; ok {
			continue
		}
		symbols = append(symbols, sym)
	}
	return symbols
}

func (u *Universe) fetch(ctx context.Context) ([]protocolEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.opts.APIURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("universe api status %d", resp.StatusCode)
	}

	var entries []protocolEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode universe response: %w", err)
	}
	return entries, nil
}

var _ UniverseSource = (*Universe)(nil)
