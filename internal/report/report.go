// Package report ranks score results and renders the summary table
// delivered to the notification endpoint.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lmercier/dcawatch/internal/contracts"
)

// ErrNoResults signals an empty pass. Callers report "no results"
// instead of delivering an empty table.
var ErrNoResults = errors.New("no results to report")

// Rank returns the results sorted descending by composite score. The
// sort is stable: ties keep their original input order.
func Rank(results []contracts.ScoreResult) []contracts.ScoreResult {
	ranked := make([]contracts.ScoreResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Render produces the fixed-width report table (ticker, score, RSI,
// close, MA50, MA200) from already-ranked results.
func Render(ranked []contracts.ScoreResult) (string, error) {
	if len(ranked) == 0 {
		return "", ErrNoResults
	}

	var b strings.Builder
	asOf := ranked[0].AsOf.Format("2006-01-02")
	fmt.Fprintf(&b, "Buy opportunity report (%s)\n", asOf)
	fmt.Fprintf(&b, "%-10s %6s %6s %10s %10s %10s\n",
		"TICKER", "SCORE", "RSI", "CLOSE", "MA50", "MA200")
	b.WriteString(strings.Repeat("-", 58))
	b.WriteByte('\n')

	for _, r := range ranked {
		fmt.Fprintf(&b, "%-10s %6.1f %6.1f %10.2f %10.2f %10.2f\n",
			r.Ticker,
			r.Score,
			r.Indicator(contracts.IndicatorRSI14),
			r.Indicator(contracts.IndicatorClose),
			r.Indicator(contracts.IndicatorMA50),
			r.Indicator(contracts.IndicatorMA200),
		)
	}

	return b.String(), nil
}
