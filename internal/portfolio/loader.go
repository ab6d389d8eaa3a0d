package portfolio

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"thb-crypto-watch/internal/model"
)

// LoaderOptions parameterise the remote CSV loader.
type LoaderOptions struct {
	URL     string
	Timeout time.Duration
}

// Loader fetches the holdings sheet, exported as CSV, and parses it
// into alert-mode holdings.
type Loader struct {
	opts   LoaderOptions
	logger zerolog.Logger
	client *http.Client
}

// NewLoader constructs a portfolio loader.
func NewLoader(opts LoaderOptions, logger zerolog.Logger) *Loader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Loader{
		opts:   opts,
		logger: logger.With().Str("component", "portfolio").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// Load returns the parsed holdings. Headers are matched
// case-insensitively; symbols are trimmed and uppercased. On any fetch
// or parse failure the result is an empty list, logged once.
func (l *Loader) Load(ctx context.Context) []model.Holding {
	holdings, err := l.load(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("portfolio load failed, returning empty list")
		return nil
	}
	return holdings
}

func (l *Loader) load(ctx context.Context) ([]model.Holding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.opts.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portfolio sheet status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse portfolio csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("portfolio csv has no header row")
	}

	columns := make(map[string]int, len(records[0]))
	for i, header := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"symbol", "cost", "target", "stop"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("portfolio csv missing column %q", required)
		}
	}

	holdings := make([]model.Holding, 0, len(records)-1)
	for _, row := range records[1:] {
		holding, err := parseRow(row, columns)
		if err != nil {
			l.logger.Debug().Err(err).Msg("skipping malformed portfolio row")
			continue
		}
		holdings = append(holdings, holding)
	}
	return holdings, nil
}

func parseRow(row []string, columns map[string]int) (model.Holding, error) {
	field := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(row) {
			return "", fmt.Errorf("row too short for column %q", name)
		}
		return strings.TrimSpace(row[idx]), nil
	}

	symbol, err := field("symbol")
	if err != nil {
		return model.Holding{}, err
	}
	symbol = strings.ToUpper(symbol)
	if symbol == "" {
		return model.Holding{}, fmt.Errorf("empty symbol")
	}

	var cost, target, stop decimal.Decimal
	for name, dst := range map[string]*decimal.Decimal{
		"cost":   &cost,
		"target": &target,
		"stop":   &stop,
	} {
		raw, err := field(name)
		if err != nil {
			return model.Holding{}, err
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return model.Holding{}, fmt.Errorf("parse %s %q: %w", name, raw, err)
		}
		*dst = value
	}

	if !cost.IsPositive() || !target.IsPositive() || !stop.IsPositive() {
		return model.Holding{}, fmt.Errorf("cost, target, and stop must be positive for %s", symbol)
	}

	return model.Holding{
		Symbol:    symbol,
		CostTHB:   cost,
		TargetPct: target,
		StopPct:   stop,
	}, nil
}
