package backtest

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Score bucket boundaries: below 45 unfavorable, above 55 favorable.
const (
	bucketLowMax  = 45.0
	bucketHighMin = 55.0
)

// BucketStats summarizes the forward returns of one score bucket.
type BucketStats struct {
	Label        string
	Count        int
	MeanReturn   float64
	MedianReturn float64
	SuccessRate  float64 // share of positive forward returns, 0-100
	MaxReturn    float64
	MinReturn    float64
}

// Analysis evaluates how well the score predicted forward returns over
// one or more runs. Only points with a realized forward return count.
type Analysis struct {
	Signals     int
	Correlation float64 // score vs forward return
	MeanReturn  float64
	StdReturn   float64
	SuccessRate float64
	Favorable   *BucketStats
	Neutral     *BucketStats
	Unfavorable *BucketStats
}

// Analyze computes bucketed statistics and the score/return correlation
// for a set of runs combined.
func Analyze(runs ...*Run) *Analysis {
	var scores, returns []float64
	var favorable, neutral, unfavorable []float64

	for _, run := range runs {
		for _, p := range run.Points {
			if p.ForwardReturnPct == nil {
				continue
			}
			r := *p.ForwardReturnPct
			scores = append(scores, p.Score)
			returns = append(returns, r)

			switch {
			case p.Score > bucketHighMin:
				favorable = append(favorable, r)
			case p.Score < bucketLowMax:
				unfavorable = append(unfavorable, r)
			default:
				neutral = append(neutral, r)
			}
		}
	}

	a := &Analysis{Signals: len(returns)}
	if len(returns) == 0 {
		return a
	}

	a.MeanReturn = stat.Mean(returns, nil)
	if len(returns) > 1 {
		a.StdReturn = stat.StdDev(returns, nil)
		corr := stat.Correlation(scores, returns, nil)
		if !math.IsNaN(corr) {
			a.Correlation = corr
		}
	}
	a.SuccessRate = successRate(returns)

	a.Favorable = bucketStats("favorable (>55)", favorable)
	a.Neutral = bucketStats("neutral (45-55)", neutral)
	a.Unfavorable = bucketStats("unfavorable (<45)", unfavorable)

	return a
}

func bucketStats(label string, returns []float64) *BucketStats {
	if len(returns) == 0 {
		return nil
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	return &BucketStats{
		Label:        label,
		Count:        len(returns),
		MeanReturn:   stat.Mean(returns, nil),
		MedianReturn: median(sorted),
		SuccessRate:  successRate(returns),
		MaxReturn:    sorted[len(sorted)-1],
		MinReturn:    sorted[0],
	}
}

// median expects a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func successRate(returns []float64) float64 {
	positive := 0
	for _, r := range returns {
		if r > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(returns)) * 100
}
