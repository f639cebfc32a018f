package consol

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/consol/fx"
	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// Config holds the tunable policy knobs of the engine. Decimal-valued
// fields are carried as strings so envconfig can populate them.
type Config struct {
	PresentationCurrency   string `envconfig:"CONSOL_PRESENTATION_CURRENCY" default:"USD"`
	MatchTolerance         string `envconfig:"CONSOL_MATCH_TOLERANCE" default:"0.01"`
	RateLookbackDays       int    `envconfig:"CONSOL_RATE_LOOKBACK_DAYS" default:"5"`
	RateInterpolation      bool   `envconfig:"CONSOL_RATE_INTERPOLATION" default:"true"`
	ReasonablenessMultiple string `envconfig:"CONSOL_REASONABLENESS_MULTIPLE" default:"10"`
	LogFormat              string `envconfig:"CONSOL_LOG_FORMAT" default:"pretty"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the baseline configuration without touching the
// environment.
func DefaultConfig() *Config {
	return &Config{
		PresentationCurrency:   "USD",
		MatchTolerance:         "0.01",
		RateLookbackDays:       fx.DefaultLookbackDays,
		RateInterpolation:      true,
		ReasonablenessMultiple: "10",
		LogFormat:              "pretty",
	}
}

func (c *Config) check() error {
	if _, err := shared.NormalizeCurrency(c.PresentationCurrency); err != nil {
		return err
	}
	if _, err := decimal.NewFromString(c.MatchTolerance); err != nil {
		return fmt.Errorf("match tolerance invalid: %w", err)
	}
	if _, err := decimal.NewFromString(c.ReasonablenessMultiple); err != nil {
		return fmt.Errorf("reasonableness multiple invalid: %w", err)
	}
	if c.RateLookbackDays < 0 {
		return fmt.Errorf("rate lookback days must not be negative")
	}
	return nil
}

// Tolerance returns the intercompany match tolerance fraction.
func (c *Config) Tolerance() decimal.Decimal {
	tol, err := decimal.NewFromString(c.MatchTolerance)
	if err != nil || tol.Sign() <= 0 {
		return decimal.NewFromFloat(0.01)
	}
	return tol
}

// ReasonMultiple returns the reasonableness activity bound multiple.
func (c *Config) ReasonMultiple() decimal.Decimal {
	mult, err := decimal.NewFromString(c.ReasonablenessMultiple)
	if err != nil || mult.Sign() <= 0 {
		return decimal.NewFromInt(10)
	}
	return mult
}

// StoreOptions maps the config onto rate store fallback behaviour.
func (c *Config) StoreOptions() fx.StoreOptions {
	return fx.StoreOptions{LookbackDays: c.RateLookbackDays, Interpolate: c.RateInterpolation}
}
