// Package scoring computes the 0-100 buy-opportunity composite for one
// instrument at one evaluation date. Both the live pass and the
// backtest replay call the same Evaluate routine; the formula exists
// exactly once.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lmercier/dcawatch/internal/contracts"
	"github.com/lmercier/dcawatch/internal/indicators"
	"github.com/lmercier/dcawatch/pkg/logger"
)

// Indicator windows. These are part of the component names
// (drawdown90, rsi14, ...) and are not configurable.
const (
	maShortWindow    = 50
	maLongWindow     = 200
	rsiPeriod        = 14
	drawdownWindow   = 90
	volatilityWindow = 20
	momentumLookback = 30
)

// ErrPassInProgress is returned when a pass is requested while another
// one is still running. Scheduled ticks that hit this are skipped; the
// next tick retries.
var ErrPassInProgress = errors.New("scoring pass already in progress")

// Params are the strategy parameters of one evaluation.
type Params struct {
	DrawdownCap   float64
	VolatilityCap float64
	Weights       map[string]float64
}

// ValidateParams rejects weight sets whose keys do not exactly match
// the component set, negative weights, and non-positive caps. A weight
// sum away from 1 is legal (the composite is a weighted sum, not an
// average) and is only warned about at config load time.
func ValidateParams(p Params) error {
	if p.DrawdownCap <= 0 {
		return fmt.Errorf("drawdown cap must be > 0, got %v", p.DrawdownCap)
	}
	if p.VolatilityCap <= 0 {
		return fmt.Errorf("volatility cap must be > 0, got %v", p.VolatilityCap)
	}

	expected := contracts.ComponentNames()
	if len(p.Weights) != len(expected) {
		return fmt.Errorf("weights must have exactly %d entries, got %d", len(expected), len(p.Weights))
	}
	for _, name := range expected {
		w, ok := p.Weights[name]
		if !ok {
			return fmt.Errorf("missing weight for component %q", name)
		}
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("weight for component %q must be >= 0, got %v", name, w)
		}
	}
	return nil
}

// Evaluate scores a series at its most recent close. The series is the
// single input: no clock, no I/O, so the backtest replay of a truncated
// series is exactly the live computation.
func Evaluate(series *contracts.Series, params Params) (*contracts.ScoreResult, error) {
	if series.Len() == 0 {
		return nil, contracts.ErrNoData
	}

	closes := series.Closes()
	last, _ := series.Last()

	ma50 := indicators.Last(indicators.MovingAverage(closes, maShortWindow))
	ma200 := indicators.Last(indicators.MovingAverage(closes, maLongWindow))
	rsi := indicators.Last(indicators.RSI(closes, rsiPeriod))
	drawdown := indicators.Last(indicators.DrawdownFromHigh(closes, drawdownWindow))
	vol := indicators.Last(indicators.Volatility(closes, volatilityWindow))
	momentum := indicators.Last(indicators.Momentum(closes, momentumLookback, 0))

	components := map[string]float64{
		contracts.ComponentDrawdown:   ScoreDrawdown(drawdown, params.DrawdownCap),
		contracts.ComponentRSI:        ScoreRSI(rsi),
		contracts.ComponentDistMA50:   ScoreDistMA50(last.Close, ma50),
		contracts.ComponentMomentum:   ScoreMomentum(momentum),
		contracts.ComponentTrendMA200: ScoreTrend(last.Close, ma200),
		contracts.ComponentVolatility: ScoreVolatility(vol, params.VolatilityCap),
	}

	return &contracts.ScoreResult{
		Ticker: series.Ticker,
		Score:  composite(components, params.Weights),
		AsOf:   last.Date,
		Indicators: map[string]float64{
			contracts.IndicatorClose:      last.Close,
			contracts.IndicatorMA50:       ma50,
			contracts.IndicatorMA200:      ma200,
			contracts.IndicatorRSI14:      rsi,
			contracts.IndicatorDrawdown90: drawdown,
			contracts.IndicatorVol20:      vol,
			contracts.IndicatorMomentum30: momentum,
		},
		Components: components,
	}, nil
}

// composite is round(100 * sum(w_i * s_i), 1). The sum is deliberately
// NOT re-normalized by the weight total: a weight set that does not sum
// to 1 produces a score outside the nominal display range, which keeps
// the formula simple and overridable.
func composite(components, weights map[string]float64) float64 {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic summation order

	sum := 0.0
	for _, name := range names {
		sum += weights[name] * components[name]
	}
	return math.Round(sum*1000) / 10
}

// Engine drives a full watch-list pass: fetch, evaluate, collect.
type Engine struct {
	market   contracts.MarketData
	params   Params
	lookback time.Duration
	timeout  time.Duration
	logger   *logger.Logger

	// Pass token: holds one slot so scheduled ticks never overlap.
	passSlot chan struct{}
}

// NewEngine validates the parameters and builds an engine. lookback is
// the history window fetched per instrument.
func NewEngine(market contracts.MarketData, params Params, lookback time.Duration, log *logger.Logger) (*Engine, error) {
	if err := ValidateParams(params); err != nil {
		return nil, fmt.Errorf("invalid scoring params: %w", err)
	}

	e := &Engine{
		market:   market,
		params:   params,
		lookback: lookback,
		timeout:  30 * time.Second,
		logger:   log,
		passSlot: make(chan struct{}, 1),
	}
	e.passSlot <- struct{}{}
	return e, nil
}

// Params returns the engine's validated parameters, for the backtest
// engine to reuse verbatim.
func (e *Engine) Params() Params {
	return e.params
}

// ScoreTicker fetches the configured lookback of history for one
// instrument and evaluates it. A fetch failure or an unusable series
// maps to contracts.ErrNoData, never to a pass failure.
func (e *Engine) ScoreTicker(ctx context.Context, ticker string) (*contracts.ScoreResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	now := time.Now().UTC()
	series, err := e.market.Fetch(fetchCtx, ticker, now.Add(-e.lookback), now)
	if err != nil {
		e.logger.WithError(err).WithField("ticker", ticker).Warn("Market data fetch failed")
		return nil, contracts.ErrNoData
	}
	if series.Len() == 0 {
		return nil, contracts.ErrNoData
	}

	return Evaluate(series, e.params)
}

// RunPass evaluates the whole watch-list once. Instruments without
// usable data are skipped with a warning. When the context is
// cancelled the pass finishes the instrument in flight and returns the
// partial results, which remain eligible for reporting and history.
// Only one pass may run at a time; a second caller gets
// ErrPassInProgress immediately.
func (e *Engine) RunPass(ctx context.Context, tickers []string) ([]contracts.ScoreResult, error) {
	select {
	case <-e.passSlot:
		defer func() { e.passSlot <- struct{}{} }()
	default:
		return nil, ErrPassInProgress
	}

	e.logger.WithField("tickers", len(tickers)).Info("Scoring pass started")
	start := time.Now()

	results := make([]contracts.ScoreResult, 0, len(tickers))
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			e.logger.WithFields(map[string]interface{}{
				"scored":    len(results),
				"remaining": len(tickers) - len(results),
			}).Warn("Pass interrupted, returning partial results")
			break
		}

		result, err := e.ScoreTicker(ctx, ticker)
		if err != nil {
			if errors.Is(err, contracts.ErrNoData) {
				e.logger.WithField("ticker", ticker).Warn("No usable data, skipping")
				continue
			}
			return results, fmt.Errorf("score %s: %w", ticker, err)
		}

		e.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"score":  result.Score,
			"as_of":  result.AsOf.Format("2006-01-02"),
		}).Debug("Scored instrument")
		results = append(results, *result)
	}

	e.logger.WithFields(map[string]interface{}{
		"scored":   len(results),
		"duration": time.Since(start),
	}).Info("Scoring pass completed")

	return results, nil
}
