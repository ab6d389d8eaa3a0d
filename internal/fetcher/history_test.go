package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sparkFixture = `{
  "spark": {
    "result": [
      {
        "symbol": "BTC-USD",
        "response": [
          {
            "timestamp": [1700000000, 1700003600, 1700007200],
            "indicators": {
              "quote": [
                {"close": [30000.0, null, 30100.5]}
              ]
            }
          }
        ]
      },
      {
        "symbol": "ETH-USD",
        "response": []
      }
    ],
    "error": null
  }
}`

func TestFetchHistoryParsesBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbols := r.URL.Query().Get("symbols")
		if !strings.Contains(symbols, "BTC-USD") || !strings.Contains(symbols, "ETH-USD") {
			t.Fatalf("expected batched -USD tickers, got %q", symbols)
		}
		if r.URL.Query().Get("range") != "5d" || r.URL.Query().Get("interval") != "1h" {
			t.Fatalf("unexpected range/interval: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, sparkFixture)
	}))
	defer srv.Close()

	h := NewHistory(HistoryOptions{BaseURL: srv.URL}, noopLogger())

	series := h.FetchHistory(context.Background(), []string{"BTC", "ETH"})
	if len(series) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(series))
	}

	btc := series["BTC"]
	if len(btc) != 2 {
		t.Fatalf("expected 2 bars after dropping the null close, got %d", len(btc))
	}
	if btc[0].Close != 30000.0 || btc[1].Close != 30100.5 {
		t.Fatalf("unexpected closes: %v", btc.Closes())
	}
	if btc[0].Open != 30000.0 || btc[0].High != 30000.0 || btc[0].Low != 30000.0 {
		t.Fatal("close-only bars should backfill open/high/low from close")
	}

	if len(series["ETH"]) != 0 {
		t.Fatalf("expected empty series for symbol without data, got %d bars", len(series["ETH"]))
	}
}

func TestFetchHistoryBatchFailureYieldsAllEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := NewHistory(HistoryOptions{BaseURL: srv.URL}, noopLogger())

	series := h.FetchHistory(context.Background(), []string{"BTC", "ETH"})
	if len(series) != 2 {
		t.Fatalf("expected an entry per requested symbol, got %d", len(series))
	}
	for symbol, bars := range series {
		if len(bars) != 0 {
			t.Fatalf("expected empty series for %s, got %d bars", symbol, len(bars))
		}
	}
}

func TestFetchHistoryNoSymbols(t *testing.T) {
	h := NewHistory(HistoryOptions{BaseURL: "http://127.0.0.1:0"}, noopLogger())
	if series := h.FetchHistory(context.Background(), nil); len(series) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(series))
	}
}
