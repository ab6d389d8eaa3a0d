package alerting

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"thb-crypto-watch/internal/model"
)

func noopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func targetAlert() model.Alert {
	return model.Alert{
		Kind:      model.AlertTargetHit,
		Symbol:    "BTC",
		PriceTHB:  decimal.NewFromInt(1_102_500),
		ProfitPct: decimal.RequireFromString("10.25"),
	}
}

func TestLineNotifierSendsFormWithBearerToken(t *testing.T) {
	var (
		gotPath    string
		gotAuth    string
		gotType    string
		gotMessage string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotMessage = r.PostFormValue("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewLineNotifier("secret-token", srv.URL, time.Second, noopLogger())

	if err := n.Notify(context.Background(), targetAlert()); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if gotPath != "/api/notify" {
		t.Fatalf("expected /api/notify, got %s", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Fatalf("expected form content type, got %q", gotType)
	}
	if !strings.Contains(gotMessage, "BTC") {
		t.Fatalf("message should name the symbol: %q", gotMessage)
	}
	if !strings.Contains(gotMessage, "1,102,500.00") {
		t.Fatalf("message should carry a formatted THB price: %q", gotMessage)
	}
	if !strings.Contains(gotMessage, "+10.25%") {
		t.Fatalf("message should carry the profit percent: %q", gotMessage)
	}
}

func TestLineNotifierErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewLineNotifier("bad-token", srv.URL, time.Second, noopLogger())

	if err := n.Notify(context.Background(), targetAlert()); err == nil {
		t.Fatal("expected error for HTTP 401")
	}
}

func TestRenderMessageStopLoss(t *testing.T) {
	msg := renderMessage(model.Alert{
		Kind:      model.AlertStopHit,
		Symbol:    "ETH",
		PriceTHB:  decimal.NewFromInt(945_000),
		ProfitPct: decimal.RequireFromString("-5.5"),
	})

	if !strings.Contains(msg, "ETH") || !strings.Contains(msg, "945,000.00") {
		t.Fatalf("unexpected message: %q", msg)
	}
	if !strings.Contains(msg, "-5.50%") {
		t.Fatalf("loss should render with two decimals and sign: %q", msg)
	}
}
