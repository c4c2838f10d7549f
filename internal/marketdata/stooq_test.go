package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lmercier/dcawatch/internal/contracts"
	"github.com/lmercier/dcawatch/pkg/config"
	"github.com/lmercier/dcawatch/pkg/logger"
)

const sampleCSV = `Date,Open,High,Low,Close,Volume
2024-01-02,100,102,99,101.5,1000
2024-01-03,101.5,103,101,102.25,1100
2024-01-04,bogus,103,101,not-a-number,1100
2024-01-05,102,104,101,103.75,900
`

func newTestClient(t *testing.T, handler http.Handler) (*StooqClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		MarketData: config.MarketDataConfig{
			BaseURL:   server.URL,
			Timeout:   5 * time.Second,
			RateLimit: 100,
			RateBurst: 10,
		},
	}
	return NewStooqClient(cfg, logger.NewNop()), server
}

func TestFetch(t *testing.T) {
	var gotPath, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleCSV))
	}))

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	series, err := client.Fetch(context.Background(), "SPY", from, to)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotPath != "/q/d/l/" {
		t.Errorf("path = %s, want /q/d/l/", gotPath)
	}
	if want := "s=spy&d1=20240101&d2=20240131&i=d"; gotQuery != want {
		t.Errorf("query = %s, want %s", gotQuery, want)
	}

	// The malformed row is skipped, 3 rows survive.
	if series.Len() != 3 {
		t.Fatalf("got %d candles, want 3", series.Len())
	}
	if last, _ := series.Last(); last.Close != 103.75 {
		t.Errorf("last close = %v, want 103.75", last.Close)
	}
	if series.Ticker != "SPY" {
		t.Errorf("ticker = %s, want SPY", series.Ticker)
	}
}

func TestFetchEmptyPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n"))
	}))

	_, err := client.Fetch(context.Background(), "NODATA", time.Now().AddDate(0, -1, 0), time.Now())
	if !errors.Is(err, contracts.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFetchServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	_, err := client.Fetch(context.Background(), "SPY", time.Now().AddDate(0, -1, 0), time.Now())
	if err == nil {
		t.Error("expected error for non-200 response")
	}
}
