package alerting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"thb-crypto-watch/internal/model"
)

// Notifier defines the alert delivery interface.
type Notifier interface {
	Notify(ctx context.Context, alert model.Alert) error
}

// LineNotifier pushes messages through the LINE Notify API.
type LineNotifier struct {
	token   string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewLineNotifier constructs a LINE notifier.
func NewLineNotifier(token, baseURL string, timeout time.Duration, logger zerolog.Logger) *LineNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://notify-api.line.me"
	}

	return &LineNotifier{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "alert_line").Logger(),
	}
}

// Notify POSTs the rendered alert as a form body with a single bearer
// authorization header.
func (n *LineNotifier) Notify(ctx context.Context, alert model.Alert) error {
	form := url.Values{}
	form.Set("message", renderMessage(alert))

	endpoint := n.baseURL + "/api/notify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send line request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("line notify status %d", resp.StatusCode)
	}

	n.logger.Info().
		Str("symbol", alert.Symbol).
		Str("kind", string(alert.Kind)).
		Msg("alert delivered")
	return nil
}

func renderMessage(alert model.Alert) string {
	price := humanize.FormatFloat("#,###.##", alert.PriceTHB.InexactFloat64())
	profit := alert.ProfitPct.StringFixed(2)

	switch alert.Kind {
	case model.AlertTargetHit:
		return fmt.Sprintf("🎯 %s hit target: %s THB (%s%%)", alert.Symbol, price, signed(profit))
	case model.AlertStopHit:
		return fmt.Sprintf("🛑 %s hit stop: %s THB (%s%%)", alert.Symbol, price, signed(profit))
	default:
		return fmt.Sprintf("%s: %s THB (%s%%)", alert.Symbol, price, signed(profit))
	}
}

func signed(pct string) string {
	if strings.HasPrefix(pct, "-") {
		return pct
	}
	return "+" + pct
}

var _ Notifier = (*LineNotifier)(nil)
