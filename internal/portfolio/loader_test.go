package portfolio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func serveCSV(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, body)
	}))
}

func TestLoadParsesHoldings(t *testing.T) {
	srv := serveCSV(t, " Symbol ,COST,Target,stop\nbtc,1000000,10,5\n eth ,50000,15,8\n")
	defer srv.Close()

	loader := NewLoader(LoaderOptions{URL: srv.URL}, noopLogger())

	holdings := loader.Load(context.Background())
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(holdings))
	}

	btc := holdings[0]
	if btc.Symbol != "BTC" {
		t.Fatalf("expected uppercased symbol BTC, got %s", btc.Symbol)
	}
	if !btc.CostTHB.Equal(decimal.NewFromInt(1_000_000)) {
		t.Fatalf("unexpected cost: %s", btc.CostTHB)
	}
	if !btc.TargetPct.Equal(decimal.NewFromInt(10)) || !btc.StopPct.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected thresholds: %s / %s", btc.TargetPct, btc.StopPct)
	}

	if holdings[1].Symbol != "ETH" {
		t.Fatalf("expected ETH, got %s", holdings[1].Symbol)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	srv := serveCSV(t, "symbol,cost,target,stop\nBTC,1000000,10,5\nXRP,not-a-number,10,5\nADA,1000,-3,5\n")
	defer srv.Close()

	loader := NewLoader(LoaderOptions{URL: srv.URL}, noopLogger())

	holdings := loader.Load(context.Background())
	if len(holdings) != 1 || holdings[0].Symbol != "BTC" {
		t.Fatalf("expected only the valid BTC row, got %v", holdings)
	}
}

func TestLoadEmptyOnMissingColumn(t *testing.T) {
	srv := serveCSV(t, "symbol,cost,target\nBTC,1000000,10\n")
	defer srv.Close()

	loader := NewLoader(LoaderOptions{URL: srv.URL}, noopLogger())

	if holdings := loader.Load(context.Background()); len(holdings) != 0 {
		t.Fatalf("expected empty list for missing column, got %v", holdings)
	}
}

func TestLoadEmptyOnFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	loader := NewLoader(LoaderOptions{URL: srv.URL}, noopLogger())

	if holdings := loader.Load(context.Background()); len(holdings) != 0 {
		t.Fatalf("expected empty list on fetch failure, got %v", holdings)
	}
}
