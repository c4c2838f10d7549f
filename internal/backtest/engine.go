// Package backtest replays the live scoring pipeline over a historical
// window. Each simulated evaluation sees only observations up to its
// own date; the scoring formula is the one in internal/scoring, called
// verbatim.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lmercier/dcawatch/internal/contracts"
	"github.com/lmercier/dcawatch/internal/scoring"
	"github.com/lmercier/dcawatch/pkg/logger"
)

// DefaultPadDays is how much extra history is fetched before the start
// date so the first simulated evaluation has a full lookback behind it.
const DefaultPadDays = 400

// Config holds one backtest run configuration.
type Config struct {
	From        time.Time
	To          time.Time
	StrideDays  int // trading rows between evaluations
	HorizonDays int // trading rows for the forward return
	PadDays     int // calendar days of history fetched before From
}

func (c Config) withDefaults() Config {
	if c.StrideDays < 1 {
		c.StrideDays = 7
	}
	if c.HorizonDays < 1 {
		c.HorizonDays = 30
	}
	if c.PadDays < 1 {
		c.PadDays = DefaultPadDays
	}
	return c
}

// Point is one simulated evaluation: the score result at date t plus,
// when the series extends far enough, the realized forward return (in
// percent) over the horizon.
type Point struct {
	contracts.ScoreResult
	ForwardReturnPct *float64
}

// Run is the ordered, append-only outcome of one backtest. It is used
// for offline evaluation only and is never written to the live history
// stream.
type Run struct {
	Ticker string
	Config Config
	Points []Point
}

// Engine replays scoring over historical windows. It pre-fetches one
// series per ticker and is otherwise synchronous and deterministic: no
// wall clock, no blocking calls per simulated step.
type Engine struct {
	market contracts.MarketData
	params scoring.Params
	logger *logger.Logger
}

// NewEngine builds a backtest engine reusing already-validated scoring
// parameters.
func NewEngine(market contracts.MarketData, params scoring.Params, log *logger.Logger) (*Engine, error) {
	if err := scoring.ValidateParams(params); err != nil {
		return nil, fmt.Errorf("invalid scoring params: %w", err)
	}
	return &Engine{market: market, params: params, logger: log}, nil
}

// Run backtests a single ticker. The series is fetched once, padded
// with PadDays of history before From; each stride step truncates the
// series at the simulated date and evaluates it with the live formula.
// A ticker without usable data yields contracts.ErrNoData.
func (e *Engine) Run(ctx context.Context, ticker string, cfg Config) (*Run, error) {
	cfg = cfg.withDefaults()
	if !cfg.From.Before(cfg.To) {
		return nil, fmt.Errorf("backtest window: from %s must precede to %s",
			cfg.From.Format("2006-01-02"), cfg.To.Format("2006-01-02"))
	}

	extendedFrom := cfg.From.AddDate(0, 0, -cfg.PadDays)
	series, err := e.market.Fetch(ctx, ticker, extendedFrom, cfg.To)
	if err != nil {
		e.logger.WithError(err).WithField("ticker", ticker).Warn("Market data fetch failed")
		return nil, contracts.ErrNoData
	}
	if series.Len() == 0 {
		return nil, contracts.ErrNoData
	}

	e.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"from":   cfg.From.Format("2006-01-02"),
		"to":     cfg.To.Format("2006-01-02"),
		"rows":   series.Len(),
	}).Info("Backtest started")

	run := &Run{Ticker: ticker, Config: cfg}
	closes := series.Closes()

	for i := series.IndexAtOrAfter(cfg.From); i < series.Len(); i += cfg.StrideDays {
		result, err := scoring.Evaluate(series.Prefix(i+1), e.params)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s at row %d: %w", ticker, i, err)
		}

		point := Point{ScoreResult: *result}
		if j := i + cfg.HorizonDays; j < series.Len() && closes[i] != 0 {
			fwd := (closes[j] - closes[i]) / closes[i] * 100
			point.ForwardReturnPct = &fwd
		}
		run.Points = append(run.Points, point)
	}

	e.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"points": len(run.Points),
	}).Info("Backtest completed")

	return run, nil
}

// RunMulti backtests several tickers with one configuration. Tickers
// without data are skipped; an empty watch-list yields an empty slice,
// not an error.
func (e *Engine) RunMulti(ctx context.Context, tickers []string, cfg Config) ([]*Run, error) {
	runs := make([]*Run, 0, len(tickers))
	for _, ticker := range tickers {
		run, err := e.Run(ctx, ticker, cfg)
		if err != nil {
			if errors.Is(err, contracts.ErrNoData) {
				e.logger.WithField("ticker", ticker).Warn("No data for ticker, skipping backtest")
				continue
			}
			return runs, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
