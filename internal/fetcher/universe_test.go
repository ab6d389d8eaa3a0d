package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTopSymbolsFiltersAndCaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"symbol":"btc"},
			{"symbol":"USDT"},
			{"symbol":""},
			{"symbol":"-"},
			{"symbol":"eth"},
			{"symbol":"DAI"},
			{"symbol":"usdc"},
			{"symbol":"sol"},
			{"symbol":"doge"}
		]`))
	}))
	defer srv.Close()

	u := NewUniverse(UniverseOptions{APIURL: srv.URL}, noopLogger())

	symbols := u.TopSymbols(context.Background(), 3)
	want := []string{"BTC", "ETH", "SOL"}
	if len(symbols) != len(want) {
		t.Fatalf("expected %d symbols, got %v", len(want), symbols)
	}
	for i, sym := range want {
		if symbols[i] != sym {
			t.Fatalf("expected %s at position %d, got %v", sym, i, symbols)
		}
	}
}

func TestTopSymbolsNeverContainStablecoins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"symbol":"USDT"},{"symbol":"USDC"},{"symbol":"DAI"},{"symbol":"BTC"}]`))
	}))
	defer srv.Close()

	u := NewUniverse(UniverseOptions{APIURL: srv.URL}, noopLogger())

	symbols := u.TopSymbols(context.Background(), 50)
	if len(symbols) != 1 || symbols[0] != "BTC" {
		t.Fatalf("expected only BTC, got %v", symbols)
	}
}

func TestTopSymbolsEmptyOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	u := NewUniverse(UniverseOptions{APIURL: srv.URL}, noopLogger())

	if symbols := u.TopSymbols(context.Background(), 50); len(symbols) != 0 {
		t.Fatalf("expected empty list on upstream failure, got %v", symbols)
	}
}
