package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFetchPricesFailedSymbolsAreNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "BTCUSDT":
			fmt.Fprint(w, `{"price":"30000.50"}`)
		case "ETHUSDT":
			fmt.Fprint(w, `{"price":"2000"}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	s := NewSpot(SpotOptions{BaseURL: srv.URL, Concurrency: 4}, noopLogger())

	prices := s.FetchPrices(context.Background(), []string{"BTC", "ETH", "BROKEN"})
	if len(prices) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(prices))
	}

	if prices["BTC"] == nil || !prices["BTC"].Equal(decimal.RequireFromString("30000.50")) {
		t.Fatalf("unexpected BTC price: %v", prices["BTC"])
	}
	if prices["ETH"] == nil || !prices["ETH"].Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("unexpected ETH price: %v", prices["ETH"])
	}
	if prices["BROKEN"] != nil {
		t.Fatalf("expected nil for failed symbol, got %v", prices["BROKEN"])
	}
}

func TestFetchPricesFailureDoesNotCancelSiblings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "SLOWUSDT" {
			time.Sleep(20 * time.Millisecond)
		}
		if r.URL.Query().Get("symbol") == "BADUSDT" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"price":"1.5"}`)
	}))
	defer srv.Close()

	s := NewSpot(SpotOptions{BaseURL: srv.URL, Concurrency: 2}, noopLogger())

	prices := s.FetchPrices(context.Background(), []string{"BAD", "SLOW", "OK"})
	if prices["BAD"] != nil {
		t.Fatal("expected nil for failed symbol")
	}
	if prices["SLOW"] == nil || prices["OK"] == nil {
		t.Fatal("sibling fetches must survive a failed symbol")
	}
}

func TestFetchPricesRejectsNonPositive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"price":"0"}`)
	}))
	defer srv.Close()

	s := NewSpot(SpotOptions{BaseURL: srv.URL}, noopLogger())

	prices := s.FetchPrices(context.Background(), []string{"ZERO"})
	if prices["ZERO"] != nil {
		t.Fatalf("expected nil for zero price, got %v", prices["ZERO"])
	}
}

func TestFetchPricesTimeoutYieldsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		fmt.Fprint(w, `{"price":"1"}`)
	}))
	defer srv.Close()

	s := NewSpot(SpotOptions{BaseURL: srv.URL, Timeout: 10 * time.Millisecond}, noopLogger())

	prices := s.FetchPrices(context.Background(), []string{"SLOW"})
	if prices["SLOW"] != nil {
		t.Fatal("expected nil for timed-out symbol")
	}
}
