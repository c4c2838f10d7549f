// Package indicators provides pure rolling-window functions over a
// close-price series. Every function returns a series aligned to the
// input and follows min_periods=1 semantics: short histories produce a
// value from whatever observations exist instead of failing, at the
// cost of statistical confidence.
package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MovingAverage returns the trailing arithmetic mean over `window`
// closes. Dates with fewer than `window` prior observations average
// whatever is available, so there is no leading gap.
func MovingAverage(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RSI returns the Wilder relative strength index with smoothing
// constant com = period-1 (alpha = 1/period). When the smoothed loss is
// zero the ratio is undefined and the value saturates at 100 instead of
// propagating a non-number.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}

	alpha := 1.0 / float64(period)
	avgGain, avgLoss := 0.0, 0.0

	out[0] = 100 // no losses observed yet
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = alpha*gain + (1-alpha)*avgGain
		avgLoss = alpha*loss + (1-alpha)*avgLoss

		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// DrawdownFromHigh returns the fractional retracement from the trailing
// `window` high: (rollingMax - close) / rollingMax. Zero when the price
// is at or above its trailing high.
func DrawdownFromHigh(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		high := closes[start]
		for j := start + 1; j <= i; j++ {
			if closes[j] > high {
				high = closes[j]
			}
		}
		if high <= 0 {
			out[i] = 0
			continue
		}
		dd := (high - closes[i]) / high
		if dd < 0 {
			dd = 0
		}
		out[i] = dd
	}
	return out
}

// Volatility returns the sample standard deviation of daily percentage
// returns over the trailing `window`. Fewer than two returns yield 0.
func Volatility(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) < 2 {
		return out
	}

	returns := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns[i] = 0
			continue
		}
		returns[i] = (closes[i] - closes[i-1]) / closes[i-1]
	}

	for i := 1; i < len(closes); i++ {
		start := i - window + 1
		if start < 1 {
			start = 1
		}
		sample := returns[start : i+1]
		if len(sample) < 2 {
			out[i] = 0
			continue
		}
		sd := stat.StdDev(sample, nil)
		if math.IsNaN(sd) {
			sd = 0
		}
		out[i] = sd
	}
	return out
}

// Momentum returns the fractional change of the close versus the close
// `lookback` rows earlier. The first `lookback` points have no prior
// observation; the caller-supplied fallback is substituted there.
func Momentum(closes []float64, lookback int, fallback float64) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		if i < lookback || closes[i-lookback] == 0 {
			out[i] = fallback
			continue
		}
		out[i] = (closes[i] - closes[i-lookback]) / closes[i-lookback]
	}
	return out
}

// Last returns the final value of an indicator series, 0 when empty.
// The evaluation point of the pipeline is always the most recent close.
func Last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}
