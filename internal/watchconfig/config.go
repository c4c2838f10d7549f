// Package watchconfig loads and validates the strategy file: the
// watch-list, indicator caps, component weights and scheduling of the
// scoring pipeline.
package watchconfig

import (
	"time"

	"github.com/lmercier/dcawatch/internal/contracts"
)

// Config is the full strategy configuration.
type Config struct {
	Tickers      []string           `yaml:"tickers" json:"tickers"`
	LookbackDays int                `yaml:"lookback_days" json:"lookback_days"`
	Caps         Caps               `yaml:"caps" json:"caps"`
	Weights      map[string]float64 `yaml:"weights" json:"weights"`
	Schedule     string             `yaml:"schedule" json:"schedule"`
	Backtest     Backtest           `yaml:"backtest" json:"backtest"`
}

// Caps bound the drawdown and volatility sub-scores.
type Caps struct {
	Drawdown   float64 `yaml:"drawdown" json:"drawdown"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
}

// Backtest holds replay defaults.
type Backtest struct {
	StrideDays  int `yaml:"stride_days" json:"stride_days"`
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`
	PadDays     int `yaml:"pad_days" json:"pad_days"`
}

// Default returns the shipped strategy: one year of history, caps of
// 25% drawdown and 10% volatility, and weights summing to 1 so the
// composite lands in the 0-100 display range.
func Default() *Config {
	return &Config{
		LookbackDays: 365,
		Caps: Caps{
			Drawdown:   0.25,
			Volatility: 0.10,
		},
		Weights: map[string]float64{
			contracts.ComponentDrawdown:   0.25,
			contracts.ComponentRSI:        0.25,
			contracts.ComponentDistMA50:   0.20,
			contracts.ComponentMomentum:   0.15,
			contracts.ComponentTrendMA200: 0.10,
			contracts.ComponentVolatility: 0.05,
		},
		Schedule: "0 10 22 * * *", // daily at 22:10, after market close
		Backtest: Backtest{
			StrideDays:  7,
			HorizonDays: 30,
			PadDays:     400,
		},
	}
}

// Lookback returns the history window as a duration.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}
