package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"thb-crypto-watch/internal/model"
)

func noopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestFxRateCachedWithinTTL(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"rates": map[string]float64{"THB": 35.0}})
	}))
	defer srv.Close()

	fx := NewFx(FxOptions{APIURL: srv.URL, TTL: time.Hour}, noopLogger())

	first := fx.Rate(context.Background())
	if first.Source != model.RateSourceLive {
		t.Fatalf("expected live source, got %s", first.Source)
	}
	if !first.Value.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected rate 35, got %s", first.Value)
	}

	second := fx.Rate(context.Background())
	if !second.Value.Equal(first.Value) || second.FetchedAt != first.FetchedAt {
		t.Fatal("second call within TTL should return the cached value")
	}
	if atomic.LoadInt64(&calls) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestFxRateRefreshesAfterTTL(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"rates": map[string]float64{"THB": 35.0}})
	}))
	defer srv.Close()

	fx := NewFx(FxOptions{APIURL: srv.URL, TTL: 10 * time.Millisecond}, noopLogger())

	fx.Rate(context.Background())
	time.Sleep(20 * time.Millisecond)
	fx.Rate(context.Background())

	if atomic.LoadInt64(&calls) != 2 {
		t.Fatalf("expected 2 upstream calls after TTL expiry, got %d", calls)
	}
}

func TestFxFallbackOnColdCacheFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fx := NewFx(FxOptions{APIURL: srv.URL, TTL: time.Hour}, noopLogger())

	rate := fx.Rate(context.Background())
	if rate.Source != model.RateSourceFallback {
		t.Fatalf("expected fallback source, got %s", rate.Source)
	}
	if !rate.Value.Equal(decimal.NewFromFloat(34.5)) {
		t.Fatalf("expected fallback 34.5, got %s", rate.Value)
	}
}

func TestFxFallbackIsNotCached(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"rates": map[string]float64{"THB": 36.0}})
	}))
	defer srv.Close()

	fx := NewFx(FxOptions{APIURL: srv.URL, TTL: time.Hour}, noopLogger())

	if rate := fx.Rate(context.Background()); rate.Source != model.RateSourceFallback {
		t.Fatalf("expected fallback while upstream is down, got %s", rate.Source)
	}

	failing.Store(false)
	rate := fx.Rate(context.Background())
	if rate.Source != model.RateSourceLive {
		t.Fatalf("expected live rate once upstream recovers, got %s", rate.Source)
	}
	if !rate.Value.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("expected rate 36, got %s", rate.Value)
	}
}

func TestFxMissingTHBFieldFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"rates": map[string]float64{"EUR": 0.9}})
	}))
	defer srv.Close()

	fx := NewFx(FxOptions{APIURL: srv.URL, TTL: time.Hour}, noopLogger())

	if rate := fx.Rate(context.Background()); rate.Source != model.RateSourceFallback {
		t.Fatalf("expected fallback for missing THB field, got %s", rate.Source)
	}
}
