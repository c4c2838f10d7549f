package contracts

import "time"

// Score component names. Weight configurations must cover exactly this
// set; anything else is rejected before a pass starts.
const (
	ComponentDrawdown   = "drawdown90"
	ComponentRSI        = "rsi14"
	ComponentDistMA50   = "dist_ma50"
	ComponentMomentum   = "momentum30"
	ComponentTrendMA200 = "trend_ma200"
	ComponentVolatility = "volatility20"
)

// ComponentNames returns the closed set of score components in display
// order.
func ComponentNames() []string {
	return []string{
		ComponentDrawdown,
		ComponentRSI,
		ComponentDistMA50,
		ComponentMomentum,
		ComponentTrendMA200,
		ComponentVolatility,
	}
}

// Indicator names used in ScoreResult.Indicators.
const (
	IndicatorClose      = "close"
	IndicatorMA50       = "ma50"
	IndicatorMA200      = "ma200"
	IndicatorRSI14      = "rsi14"
	IndicatorDrawdown90 = "drawdown90"
	IndicatorVol20      = "vol20"
	IndicatorMomentum30 = "momentum30"
)

// ScoreResult is the immutable outcome of scoring one instrument at one
// evaluation date. Created by the scoring engine, consumed by the
// report renderer and the history store, never mutated afterwards.
type ScoreResult struct {
	Ticker     string             `json:"ticker"`
	Score      float64            `json:"score"` // 0-100, one decimal
	AsOf       time.Time          `json:"as_of"` // date of the last close used
	Indicators map[string]float64 `json:"indicators"`
	Components map[string]float64 `json:"components"` // sub-scores in [0,1]
}

// Indicator returns a raw indicator value by name, 0 when absent.
func (r *ScoreResult) Indicator(name string) float64 {
	return r.Indicators[name]
}
