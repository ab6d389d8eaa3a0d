package indicator

import (
	"math"
	"testing"
)

func TestRSIThinHistoryIsNeutral(t *testing.T) {
	closes := []float64{100, 101, 99, 102, 100}
	if got := RSI(closes, 14); got != 50 {
		t.Fatalf("expected neutral 50 for thin history, got %f", got)
	}
	if got := RSI(nil, 14); got != 50 {
		t.Fatalf("expected neutral 50 for empty series, got %f", got)
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	if got := RSI(closes, 14); got != 100 {
		t.Fatalf("expected 100 for monotonic gains, got %f", got)
	}
}

func TestRSIFlatSeriesIsZero(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 42
	}
	if got := RSI(closes, 14); got != 0 {
		t.Fatalf("expected 0 for flat series, got %f", got)
	}
}

func TestRSIKnownValue(t *testing.T) {
	// Last two diffs: +1 and -0.5, so rs = 0.5/0.25 = 2 and rsi = 66.66...
	closes := []float64{1, 2, 1.5}
	got := RSI(closes, 2)
	want := 100 - 100/3.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestRSIUsesMostRecentWindow(t *testing.T) {
	// A big early loss outside the window must not influence the result.
	closes := []float64{100, 10, 11, 12, 13}
	if got := RSI(closes, 3); got != 100 {
		t.Fatalf("expected 100 over the recent window, got %f", got)
	}
}

func TestRSIStaysBounded(t *testing.T) {
	closes := []float64{10, 14, 9, 16, 8, 17, 12, 13, 11, 15, 10, 14, 13, 12, 16, 11}
	got := RSI(closes, 14)
	if got < 0 || got > 100 {
		t.Fatalf("rsi out of bounds: %f", got)
	}
}
