package watchconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmercier/dcawatch/internal/contracts"
)

func writeStrategy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validYAML = `
tickers:
  - SPY
  - QQQ
lookback_days: 365
caps:
  drawdown: 0.25
  volatility: 0.10
weights:
  drawdown90: 0.25
  rsi14: 0.25
  dist_ma50: 0.20
  momentum30: 0.15
  trend_ma200: 0.10
  volatility20: 0.05
schedule: "0 10 22 * * *"
backtest:
  stride_days: 7
  horizon_days: 30
  pad_days: 400
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeStrategy(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Tickers)
	assert.Equal(t, 365, cfg.LookbackDays)
	assert.Equal(t, 0.25, cfg.Weights[contracts.ComponentDrawdown])
	assert.Equal(t, 0.05, cfg.Weights[contracts.ComponentVolatility])
}

func TestLoadAppliesDefaults(t *testing.T) {
	// Only tickers given: everything else falls back to defaults.
	cfg, err := Load(writeStrategy(t, "tickers: [SPY]\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.LookbackDays, cfg.LookbackDays)
	assert.Equal(t, def.Caps, cfg.Caps)
	assert.Equal(t, def.Schedule, cfg.Schedule)
	assert.Equal(t, def.Weights, cfg.Weights)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeStrategy(t, "tickers: [SPY]\nlookbck_days: 100\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"no tickers", func(c *Config) { c.Tickers = nil }, "tickers"},
		{"blank ticker", func(c *Config) { c.Tickers = []string{"SPY", ""} }, "tickers[1]"},
		{"duplicate ticker", func(c *Config) { c.Tickers = []string{"SPY", "SPY"} }, "duplicate"},
		{"zero lookback", func(c *Config) { c.LookbackDays = 0 }, "lookback_days"},
		{"zero drawdown cap", func(c *Config) { c.Caps.Drawdown = 0 }, "caps.drawdown"},
		{"zero volatility cap", func(c *Config) { c.Caps.Volatility = 0 }, "caps.volatility"},
		{"missing weight", func(c *Config) { delete(c.Weights, contracts.ComponentRSI) }, "missing component"},
		{"unknown weight", func(c *Config) { c.Weights["bogus"] = 0.1 }, "unknown components"},
		{"negative weight", func(c *Config) { c.Weights[contracts.ComponentRSI] = -1 }, "must be >= 0"},
		{"bad schedule", func(c *Config) { c.Schedule = "not a cron line" }, "schedule"},
		{"zero stride", func(c *Config) { c.Backtest.StrideDays = 0 }, "stride_days"},
		{"zero horizon", func(c *Config) { c.Backtest.HorizonDays = 0 }, "horizon_days"},
		{"zero pad", func(c *Config) { c.Backtest.PadDays = 0 }, "pad_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Tickers = []string{"SPY"}
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Tickers = []string{"SPY"}

	if warnings := Warn(cfg); len(warnings) != 0 {
		t.Errorf("default config warned: %v", warnings)
	}

	cfg.Weights[contracts.ComponentRSI] = 0.5 // sum now 1.25
	cfg.LookbackDays = 100

	warnings := Warn(cfg)
	codes := make(map[string]bool)
	for _, w := range warnings {
		codes[w.Code] = true
	}
	if !codes["WEIGHTS_SUM"] {
		t.Error("expected WEIGHTS_SUM warning")
	}
	if !codes["SHORT_LOOKBACK"] {
		t.Error("expected SHORT_LOOKBACK warning")
	}
}

func TestHashDeterministic(t *testing.T) {
	cfg := Default()
	cfg.Tickers = []string{"SPY"}

	a, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}

	b, _ := Hash(cfg)
	if a != b {
		t.Error("hash not deterministic")
	}

	cfg.LookbackDays++
	c, _ := Hash(cfg)
	if a == c {
		t.Error("hash did not change with the config")
	}
}
