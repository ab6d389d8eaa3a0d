package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"thb-crypto-watch/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Fx        FxConfig        `mapstructure:"fx"`
	Universe  UniverseConfig  `mapstructure:"universe"`
	Spot      SpotConfig      `mapstructure:"spot"`
	History   HistoryConfig   `mapstructure:"history"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates the optional PostgreSQL audit store.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// FxConfig covers the USD→THB rate source.
type FxConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	TTL            time.Duration `mapstructure:"ttl"`
	FallbackRate   float64       `mapstructure:"fallback_rate"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// UniverseConfig covers the ranked candidate-symbol source.
type UniverseConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	Limit          int           `mapstructure:"limit"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SpotConfig covers per-symbol spot price retrieval.
type SpotConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Concurrency    int           `mapstructure:"concurrency"`
}

// HistoryConfig covers batched OHLC retrieval.
type HistoryConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Range          string        `mapstructure:"range"`
	Interval       string        `mapstructure:"interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DashboardConfig governs the periodic refresh and candidate filter.
type DashboardConfig struct {
	Refresh        time.Duration `mapstructure:"refresh"`
	BudgetTHB      float64       `mapstructure:"budget_thb"`
	CandidateLimit int           `mapstructure:"candidate_limit"`
	RSIWindow      int           `mapstructure:"rsi_window"`
	RSIMin         float64       `mapstructure:"rsi_min"`
	RSIMax         float64       `mapstructure:"rsi_max"`
	StartupDelay   time.Duration `mapstructure:"startup_delay"`
}

// PortfolioConfig locates the holdings CSV for alert mode.
type PortfolioConfig struct {
	SheetURL       string        `mapstructure:"sheet_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AlertingConfig defines alert routing.
type AlertingConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	Line    LineConfig `mapstructure:"line"`
}

// LineConfig describes the LINE Notify channel.
type LineConfig struct {
	Token   string `mapstructure:"token"`
	APIBase string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COINWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The original deployment configured these two through bare env vars.
	_ = v.BindEnv("alerting.line.token", "COINWATCH_ALERTING_LINE_TOKEN", "LINE_TOKEN")
	_ = v.BindEnv("portfolio.sheet_url", "COINWATCH_PORTFOLIO_SHEET_URL", "SHEET_URL")

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "coinwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("fx.api_url", "https://api.exchangerate-api.com/v4/latest/USD")
	v.SetDefault("fx.ttl", "1h")
	v.SetDefault("fx.fallback_rate", 34.5)
	v.SetDefault("fx.request_timeout", "10s")

	v.SetDefault("universe.api_url", "https://api.llama.fi/protocols")
	v.SetDefault("universe.limit", 50)
	v.SetDefault("universe.request_timeout", "10s")

	v.SetDefault("spot.base_url", "https://api.binance.com")
	v.SetDefault("spot.request_timeout", "2s")
	v.SetDefault("spot.concurrency", 20)

	v.SetDefault("history.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("history.range", "5d")
	v.SetDefault("history.interval", "1h")
	v.SetDefault("history.request_timeout", "10s")

	v.SetDefault("dashboard.refresh", "60s")
	v.SetDefault("dashboard.budget_thb", 0.0)
	v.SetDefault("dashboard.candidate_limit", 6)
	v.SetDefault("dashboard.rsi_window", 14)
	v.SetDefault("dashboard.rsi_min", 30.0)
	v.SetDefault("dashboard.rsi_max", 58.0)
	v.SetDefault("dashboard.startup_delay", "0s")

	v.SetDefault("portfolio.request_timeout", "10s")

	v.SetDefault("alerting.enabled", true)
	v.SetDefault("alerting.line.api_base", "https://notify-api.line.me")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Fx.TTL <= 0 {
		return fmt.Errorf("fx.ttl must be greater than zero")
	}
	if c.Fx.FallbackRate <= 0 {
		return fmt.Errorf("fx.fallback_rate must be greater than zero")
	}
	if c.Universe.Limit <= 0 {
		return fmt.Errorf("universe.limit must be greater than zero")
	}
	if c.Spot.Concurrency <= 0 {
		return fmt.Errorf("spot.concurrency must be greater than zero")
	}
	if c.Dashboard.Refresh <= 0 {
		return fmt.Errorf("dashboard.refresh must be greater than zero")
	}
	if c.Dashboard.CandidateLimit <= 0 {
		return fmt.Errorf("dashboard.candidate_limit must be greater than zero")
	}
	if c.Dashboard.RSIWindow <= 0 {
		return fmt.Errorf("dashboard.rsi_window must be greater than zero")
	}
	if c.Dashboard.RSIMin > c.Dashboard.RSIMax {
		return fmt.Errorf("dashboard.rsi_min cannot exceed dashboard.rsi_max")
	}
	if c.Dashboard.BudgetTHB < 0 {
		return fmt.Errorf("dashboard.budget_thb cannot be negative")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	return nil
}

// RequireAlertChannel checks the fatal configuration class for alert
// mode: the LINE token and the portfolio sheet must be present.
func (c *Config) RequireAlertChannel() error {
	if c.Alerting.Line.Token == "" {
		return fmt.Errorf("alerting.line.token is required (or set LINE_TOKEN)")
	}
	if c.Portfolio.SheetURL == "" {
		return fmt.Errorf("portfolio.sheet_url is required (or set SHEET_URL)")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
