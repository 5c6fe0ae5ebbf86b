// Package config loads and validates the YAML run configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"options-strategy-lab/internal/backtest"
	"options-strategy-lab/internal/domain"
)

var validate = validator.New()

// Config is the full run configuration for the pipeline and backtest
// binaries.
type Config struct {
	Environment string `yaml:"environment" validate:"required,oneof=dev staging prod"`

	Symbols []string `yaml:"symbols" validate:"required,min=1,dive,required"`

	// StartDate and EndDate bound the bar window, YYYY-MM-DD.
	StartDate string `yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `yaml:"end_date" validate:"required,datetime=2006-01-02"`

	// VolIndex is the external volatility index level (VIX-like) fed to
	// the regime classifier. Zero means unknown.
	VolIndex float64 `yaml:"vol_index" validate:"gte=0"`

	Backtest struct {
		InitialCapital  float64 `yaml:"initial_capital" validate:"gt=0"`
		RiskFreeRate    float64 `yaml:"risk_free_rate" validate:"gte=0,lt=1"`
		SlippagePct     float64 `yaml:"slippage_pct" validate:"gte=0,lt=1"`
		Commission      float64 `yaml:"commission" validate:"gte=0"`
		PositionSizePct float64 `yaml:"position_size_pct" validate:"gt=0,lte=1"`
		TradeOptions    bool    `yaml:"trade_options"`
		OptionTenorDays int     `yaml:"option_tenor_days" validate:"gte=0"`
		FullRevaluation bool    `yaml:"full_revaluation"`
		Seed            int64   `yaml:"seed"`
	} `yaml:"backtest"`

	Strategies []StrategySpec `yaml:"strategies" validate:"required,min=1,dive"`

	Storage struct {
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickHouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"storage"`

	Stream struct {
		Endpoint       string        `yaml:"endpoint"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
}

// StrategySpec is the YAML shape of one strategy entry. Exactly the
// fields matching Type are read.
type StrategySpec struct {
	Type string `yaml:"type" validate:"required,oneof=SIGNAL_THRESHOLD REGIME_FILTER BUY_AND_HOLD"`

	EntryProbability float64 `yaml:"entry_probability" validate:"gte=0,lte=1"`
	ExitProbability  float64 `yaml:"exit_probability" validate:"gte=0,lte=1"`
	MaxHoldBars      int     `yaml:"max_hold_bars" validate:"gte=0"`

	LongRegimes   []string `yaml:"long_regimes"`
	ExitRegimes   []string `yaml:"exit_regimes"`
	MinConfidence float64  `yaml:"min_confidence" validate:"gte=0,lte=1"`
}

// Load reads, parses, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse parses and validates configuration bytes.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&c)

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := c.checkDates(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.Storage.ClickHouseDSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	return c, nil
}

func applyDefaults(c *Config) {
	if c.Backtest.InitialCapital == 0 {
		c.Backtest.InitialCapital = backtest.DefaultInitialCapital
	}
	if c.Backtest.RiskFreeRate == 0 {
		c.Backtest.RiskFreeRate = backtest.DefaultRiskFreeRate
	}
	if c.Backtest.PositionSizePct == 0 {
		c.Backtest.PositionSizePct = backtest.DefaultPositionSizePct
	}
	if c.Backtest.OptionTenorDays == 0 {
		c.Backtest.OptionTenorDays = backtest.DefaultOptionTenorDays
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
}

func (c *Config) checkDates() error {
	start, _ := time.Parse("2006-01-02", c.StartDate)
	end, _ := time.Parse("2006-01-02", c.EndDate)
	if end.Before(start) {
		return fmt.Errorf("end_date %s before start_date %s", c.EndDate, c.StartDate)
	}
	return nil
}

// Window returns the parsed start and end dates.
func (c *Config) Window() (time.Time, time.Time) {
	start, _ := time.Parse("2006-01-02", c.StartDate)
	end, _ := time.Parse("2006-01-02", c.EndDate)
	return start, end
}

// BacktestConfig builds the simulator configuration template from the
// YAML values. Symbol and strategy ID are assigned per run.
func (c *Config) BacktestConfig() backtest.Config {
	cfg := backtest.DefaultConfig("", "")
	cfg.InitialCapital = c.Backtest.InitialCapital
	cfg.RiskFreeRate = c.Backtest.RiskFreeRate
	cfg.SlippagePct = c.Backtest.SlippagePct
	cfg.Commission = c.Backtest.Commission
	cfg.PositionSizePct = c.Backtest.PositionSizePct
	cfg.TradeOptions = c.Backtest.TradeOptions
	cfg.OptionTenorDays = c.Backtest.OptionTenorDays
	cfg.FullRevaluation = c.Backtest.FullRevaluation
	cfg.Seed = c.Backtest.Seed
	cfg.StartDate, cfg.EndDate = c.Window()
	return cfg
}

// StrategyConfigs converts the YAML strategy specs into domain configs.
func (c *Config) StrategyConfigs() ([]domain.StrategyConfig, error) {
	out := make([]domain.StrategyConfig, 0, len(c.Strategies))
	for i, spec := range c.Strategies {
		cfg, err := spec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("strategies[%d]: %w", i, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (s StrategySpec) toDomain() (domain.StrategyConfig, error) {
	switch s.Type {
	case domain.StrategyTypeSignalThreshold:
		return domain.StrategyConfig{
			Type: s.Type,
			SignalThreshold: &domain.SignalThresholdParams{
				EntryProbability: s.EntryProbability,
				ExitProbability:  s.ExitProbability,
				MaxHoldBars:      s.MaxHoldBars,
			},
		}, nil
	case domain.StrategyTypeRegimeFilter:
		long, err := parseRegimes(s.LongRegimes)
		if err != nil {
			return domain.StrategyConfig{}, fmt.Errorf("long_regimes: %w", err)
		}
		exit, err := parseRegimes(s.ExitRegimes)
		if err != nil {
			return domain.StrategyConfig{}, fmt.Errorf("exit_regimes: %w", err)
		}
		return domain.StrategyConfig{
			Type: s.Type,
			RegimeFilter: &domain.RegimeFilterParams{
				LongRegimes:   long,
				ExitRegimes:   exit,
				MinConfidence: s.MinConfidence,
			},
		}, nil
	case domain.StrategyTypeBuyAndHold:
		return domain.StrategyConfig{Type: s.Type, BuyAndHold: &domain.BuyAndHoldParams{}}, nil
	default:
		return domain.StrategyConfig{}, fmt.Errorf("unknown strategy type %q", s.Type)
	}
}

func parseRegimes(names []string) ([]domain.Regime, error) {
	out := make([]domain.Regime, 0, len(names))
	for _, name := range names {
		r := domain.Regime(name)
		if !r.Valid() {
			return nil, fmt.Errorf("unknown regime %q", name)
		}
		out = append(out, r)
	}
	return out, nil
}
