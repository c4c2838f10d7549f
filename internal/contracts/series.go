package contracts

import (
	"sort"
	"time"
)

// Candle is one daily observation for an instrument. Only the close is
// used by the scoring pipeline; non-trading days are simply absent.
type Candle struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is an ordered daily price series for a single instrument.
// Dates are strictly increasing with no duplicates.
type Series struct {
	Ticker  string
	Candles []Candle
}

// NewSeries builds a clean Series from raw candles: rows with a
// non-positive or NaN close are dropped, the rest are sorted by date
// and de-duplicated (last observation wins).
func NewSeries(ticker string, candles []Candle) *Series {
	cleaned := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if c.Close > 0 { // also filters NaN
			cleaned = append(cleaned, c)
		}
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Date.Before(cleaned[j].Date)
	})

	deduped := cleaned[:0]
	for _, c := range cleaned {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(c.Date) {
			deduped[n-1] = c
			continue
		}
		deduped = append(deduped, c)
	}

	return &Series{Ticker: ticker, Candles: deduped}
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Candles)
}

// Closes returns the close prices in date order.
func (s *Series) Closes() []float64 {
	closes := make([]float64, s.Len())
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Last returns the most recent observation.
func (s *Series) Last() (Candle, bool) {
	if s.Len() == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// TruncateAt returns the sub-series of observations with date <= t.
// The backtest engine relies on this to keep future rows out of a
// simulated evaluation.
func (s *Series) TruncateAt(t time.Time) *Series {
	n := sort.Search(s.Len(), func(i int) bool {
		return s.Candles[i].Date.After(t)
	})
	return &Series{Ticker: s.Ticker, Candles: s.Candles[:n]}
}

// Prefix returns the sub-series of the first n observations.
func (s *Series) Prefix(n int) *Series {
	if n > s.Len() {
		n = s.Len()
	}
	return &Series{Ticker: s.Ticker, Candles: s.Candles[:n]}
}

// IndexAtOrAfter returns the index of the first observation with
// date >= t, or Len() when none exists.
func (s *Series) IndexAtOrAfter(t time.Time) int {
	return sort.Search(s.Len(), func(i int) bool {
		return !s.Candles[i].Date.Before(t)
	})
}
