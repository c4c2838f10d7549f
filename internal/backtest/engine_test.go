package backtest

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/lmercier/dcawatch/internal/contracts"
	"github.com/lmercier/dcawatch/internal/scoring"
	"github.com/lmercier/dcawatch/pkg/logger"
)

func testParams() scoring.Params {
	return scoring.Params{
		DrawdownCap:   0.25,
		VolatilityCap: 0.10,
		Weights: map[string]float64{
			contracts.ComponentDrawdown:   0.25,
			contracts.ComponentRSI:        0.25,
			contracts.ComponentDistMA50:   0.20,
			contracts.ComponentMomentum:   0.15,
			contracts.ComponentTrendMA200: 0.10,
			contracts.ComponentVolatility: 0.05,
		},
	}
}

// fakeMarket serves one canned series per ticker, bounded to the
// requested window like a real quote endpoint.
type fakeMarket struct {
	series map[string]*contracts.Series
}

func (f *fakeMarket) Fetch(ctx context.Context, ticker string, from, to time.Time) (*contracts.Series, error) {
	s, ok := f.series[ticker]
	if !ok {
		return nil, contracts.ErrNoData
	}
	bounded := s.TruncateAt(to)
	idx := bounded.IndexAtOrAfter(from)
	return &contracts.Series{Ticker: s.Ticker, Candles: bounded.Candles[idx:]}, nil
}

// wavySeries produces a deterministic non-trivial price path.
func wavySeries(ticker string, n int) *contracts.Series {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	candles := make([]contracts.Candle, n)
	for i := range candles {
		candles[i] = contracts.Candle{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + 10*math.Sin(float64(i)/10),
		}
	}
	return contracts.NewSeries(ticker, candles)
}

func newTestEngine(t *testing.T, market contracts.MarketData) *Engine {
	t.Helper()
	engine, err := NewEngine(market, testParams(), logger.NewNop())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestRunWindowValidation(t *testing.T) {
	engine := newTestEngine(t, &fakeMarket{})

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := engine.Run(context.Background(), "X", Config{From: from, To: from})
	if err == nil {
		t.Error("expected error for from == to")
	}
}

func TestRunNoData(t *testing.T) {
	engine := newTestEngine(t, &fakeMarket{})

	cfg := Config{
		From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := engine.Run(context.Background(), "MISSING", cfg)
	if err != contracts.ErrNoData {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestRunForwardReturns(t *testing.T) {
	series := wavySeries("WAVE", 700)
	engine := newTestEngine(t, &fakeMarket{series: map[string]*contracts.Series{"WAVE": series}})

	cfg := Config{
		From:        series.Candles[450].Date,
		To:          series.Candles[series.Len()-1].Date,
		StrideDays:  7,
		HorizonDays: 30,
		PadDays:     400,
	}
	run, err := engine.Run(context.Background(), "WAVE", cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(run.Points) == 0 {
		t.Fatal("no points produced")
	}

	// Early points have a realized forward return, points within the
	// last horizon do not.
	if run.Points[0].ForwardReturnPct == nil {
		t.Error("first point should have a forward return")
	}
	last := run.Points[len(run.Points)-1]
	if last.ForwardReturnPct != nil {
		t.Error("last point is inside the horizon, forward return must be nil")
	}

	// Spot-check the first forward return against the raw closes.
	closes := series.Closes()
	i := series.IndexAtOrAfter(cfg.From)
	want := (closes[i+30] - closes[i]) / closes[i] * 100
	if got := *run.Points[0].ForwardReturnPct; math.Abs(got-want) > 1e-9 {
		t.Errorf("forward return = %v, want %v", got, want)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	series := wavySeries("WAVE", 700)
	engine := newTestEngine(t, &fakeMarket{series: map[string]*contracts.Series{"WAVE": series}})

	cfg := Config{
		From:       series.Candles[450].Date,
		To:         series.Candles[series.Len()-1].Date,
		StrideDays: 7, HorizonDays: 30, PadDays: 400,
	}

	a, err := engine.Run(context.Background(), "WAVE", cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := engine.Run(context.Background(), "WAVE", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical runs diverged")
	}
}

func TestRunHasNoLookAhead(t *testing.T) {
	// Scores over a window must not change when history beyond that
	// window becomes available later.
	short := wavySeries("WAVE", 600)
	long := wavySeries("WAVE", 700) // same path, 100 more future rows

	cfg := Config{
		From:       short.Candles[450].Date,
		To:         short.Candles[short.Len()-1].Date,
		StrideDays: 7, HorizonDays: 30, PadDays: 400,
	}

	engineShort := newTestEngine(t, &fakeMarket{series: map[string]*contracts.Series{"WAVE": short}})
	engineLong := newTestEngine(t, &fakeMarket{series: map[string]*contracts.Series{"WAVE": long}})

	runShort, err := engineShort.Run(context.Background(), "WAVE", cfg)
	if err != nil {
		t.Fatal(err)
	}
	runLong, err := engineLong.Run(context.Background(), "WAVE", cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(runShort.Points) != len(runLong.Points) {
		t.Fatalf("point counts differ: %d vs %d", len(runShort.Points), len(runLong.Points))
	}
	for i := range runShort.Points {
		a, b := runShort.Points[i], runLong.Points[i]
		if a.Score != b.Score || !a.AsOf.Equal(b.AsOf) {
			t.Errorf("point %d diverged with future data: %v vs %v", i, a.ScoreResult, b.ScoreResult)
		}
	}
}

func TestRunMulti(t *testing.T) {
	series := wavySeries("WAVE", 700)
	engine := newTestEngine(t, &fakeMarket{series: map[string]*contracts.Series{"WAVE": series}})

	cfg := Config{
		From:       series.Candles[450].Date,
		To:         series.Candles[series.Len()-1].Date,
		StrideDays: 7, HorizonDays: 30, PadDays: 400,
	}

	runs, err := engine.RunMulti(context.Background(), []string{"WAVE", "MISSING"}, cfg)
	if err != nil {
		t.Fatalf("RunMulti failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1 (missing ticker skipped)", len(runs))
	}

	empty, err := engine.RunMulti(context.Background(), nil, cfg)
	if err != nil {
		t.Fatalf("RunMulti on empty list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty watch-list produced %d runs", len(empty))
	}
}
