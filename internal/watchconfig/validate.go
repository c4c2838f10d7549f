package watchconfig

import (
	"fmt"
	"math"
	"sort"

	"github.com/robfig/cron/v3"

	"github.com/lmercier/dcawatch/internal/contracts"
)

// ValidationError is a fatal configuration defect. A pass never starts
// on an invalid configuration.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning flags a legal but suspicious configuration.
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints.
func Validate(cfg *Config) error {
	if len(cfg.Tickers) == 0 {
		return ValidationError{"tickers", "at least one ticker is required"}
	}
	seen := make(map[string]bool, len(cfg.Tickers))
	for i, t := range cfg.Tickers {
		if t == "" {
			return ValidationError{fmt.Sprintf("tickers[%d]", i), "must not be empty"}
		}
		if seen[t] {
			return ValidationError{fmt.Sprintf("tickers[%d]", i), fmt.Sprintf("duplicate ticker %q", t)}
		}
		seen[t] = true
	}

	if cfg.LookbackDays < 1 {
		return ValidationError{"lookback_days", "must be >= 1"}
	}

	if cfg.Caps.Drawdown <= 0 {
		return ValidationError{"caps.drawdown", "must be > 0"}
	}
	if cfg.Caps.Volatility <= 0 {
		return ValidationError{"caps.volatility", "must be > 0"}
	}

	if err := validateWeights(cfg.Weights); err != nil {
		return err
	}

	if cfg.Schedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.Schedule); err != nil {
			return ValidationError{"schedule", err.Error()}
		}
	}

	if cfg.Backtest.StrideDays < 1 {
		return ValidationError{"backtest.stride_days", "must be >= 1"}
	}
	if cfg.Backtest.HorizonDays < 1 {
		return ValidationError{"backtest.horizon_days", "must be >= 1"}
	}
	if cfg.Backtest.PadDays < 1 {
		return ValidationError{"backtest.pad_days", "must be >= 1"}
	}

	return nil
}

// validateWeights requires the weight keys to exactly match the score
// component set, with non-negative values.
func validateWeights(weights map[string]float64) error {
	expected := contracts.ComponentNames()

	for _, name := range expected {
		w, ok := weights[name]
		if !ok {
			return ValidationError{"weights", fmt.Sprintf("missing component %q", name)}
		}
		if w < 0 || math.IsNaN(w) {
			return ValidationError{"weights." + name, "must be >= 0"}
		}
	}

	if len(weights) != len(expected) {
		known := make(map[string]bool, len(expected))
		for _, name := range expected {
			known[name] = true
		}
		var extra []string
		for name := range weights {
			if !known[name] {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return ValidationError{"weights", fmt.Sprintf("unknown components %v", extra)}
	}

	return nil
}

// Warn checks recommended constraints. The composite is a plain
// weighted sum, so weights away from 1 silently stretch the 0-100
// display range; that is allowed but worth flagging.
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	sum := 0.0
	for _, w := range cfg.Weights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		warnings = append(warnings, Warning{
			Code:    "WEIGHTS_SUM",
			Message: fmt.Sprintf("weights sum to %.4f, composite will leave the nominal 0-100 range", sum),
		})
	}

	if cfg.LookbackDays < 250 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_LOOKBACK",
			Message: "lookback_days < 250: MA200 and drawdown windows will be under-filled",
		})
	}

	return warnings
}
