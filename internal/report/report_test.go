package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lmercier/dcawatch/internal/contracts"
)

func result(ticker string, score float64) contracts.ScoreResult {
	return contracts.ScoreResult{
		Ticker: ticker,
		Score:  score,
		AsOf:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Indicators: map[string]float64{
			contracts.IndicatorClose: 100.5,
			contracts.IndicatorRSI14: 45.2,
			contracts.IndicatorMA50:  98.7,
			contracts.IndicatorMA200: 95.1,
		},
	}
}

func TestRank(t *testing.T) {
	results := []contracts.ScoreResult{
		result("LOW", 10),
		result("HIGH", 90),
		result("MID", 50),
	}

	ranked := Rank(results)

	want := []string{"HIGH", "MID", "LOW"}
	for i, ticker := range want {
		if ranked[i].Ticker != ticker {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].Ticker, ticker)
		}
	}

	// Input order must be untouched.
	if results[0].Ticker != "LOW" {
		t.Error("Rank mutated its input")
	}
}

func TestRankStableTies(t *testing.T) {
	results := []contracts.ScoreResult{
		result("FIRST", 50),
		result("SECOND", 50),
		result("THIRD", 50),
	}

	ranked := Rank(results)
	want := []string{"FIRST", "SECOND", "THIRD"}
	for i, ticker := range want {
		if ranked[i].Ticker != ticker {
			t.Errorf("tied ranked[%d] = %s, want %s", i, ranked[i].Ticker, ticker)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	_, err := Render(nil)
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestRender(t *testing.T) {
	ranked := Rank([]contracts.ScoreResult{
		result("SPY", 42.3),
		result("QQQ", 61.8),
	})

	text, err := Render(ranked)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{"2024-06-03", "TICKER", "SCORE", "RSI", "CLOSE", "MA50", "MA200", "SPY", "QQQ", "61.8", "42.3"} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}

	// Highest score renders first.
	if strings.Index(text, "QQQ") > strings.Index(text, "SPY") {
		t.Error("report rows not in rank order")
	}
}
