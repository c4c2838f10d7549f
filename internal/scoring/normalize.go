package scoring

import "math"

// Sub-score normalization. Each function maps one raw indicator (plus
// configured cap where relevant) to [0,1], where 1 always means "most
// attractive entry opportunity". Outputs are clamped even when an
// upstream indicator is anomalous.

// momentumSteepness is the k of the logistic squashing for the momentum
// sub-score.
const momentumSteepness = 6.0

// clip01 clamps x to [0,1]. NaN maps to 0.
func clip01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// ScoreDrawdown rewards retracement from the trailing high, capped:
// clip(drawdown/cap, 0, 1). Zero when the drawdown is non-positive.
func ScoreDrawdown(drawdown, cap float64) float64 {
	if drawdown <= 0 || cap <= 0 {
		return 0
	}
	return clip01(drawdown / cap)
}

// ScoreRSI rewards oversold conditions: clip((70-rsi)/40, 0, 1).
func ScoreRSI(rsi float64) float64 {
	return clip01((70 - rsi) / 40)
}

// ScoreDistMA50 rewards price below its 50-period average:
// clip(1 - close/ma50, 0, 1). Zero when the average is undefined.
func ScoreDistMA50(close, ma50 float64) float64 {
	if ma50 <= 0 {
		return 0
	}
	return clip01(1 - close/ma50)
}

// ScoreMomentum squashes momentum through a logistic curve so that
// negative momentum scores higher, smoothly and symmetrically around
// 0.5 at zero momentum.
func ScoreMomentum(momentum float64) float64 {
	return clip01(1 / (1 + math.Exp(momentumSteepness*momentum)))
}

// ScoreTrend rewards being above the long-term trend as confirmation:
// 1.0 above the 200-period average, 0.3 below, 0.5 when undefined.
func ScoreTrend(close, ma200 float64) float64 {
	if ma200 <= 0 {
		return 0.5
	}
	if close > ma200 {
		return 1.0
	}
	return 0.3
}

// ScoreVolatility rewards calm price action, capped:
// clip(1 - vol/cap, 0, 1). Saturates at 1 when volatility is
// non-positive.
func ScoreVolatility(vol, cap float64) float64 {
	if vol <= 0 {
		return 1
	}
	if cap <= 0 {
		return 0
	}
	return clip01(1 - vol/cap)
}
