// Package marketdata implements the daily-quote source behind
// contracts.MarketData using the Stooq CSV endpoint.
package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lmercier/dcawatch/internal/contracts"
	"github.com/lmercier/dcawatch/pkg/config"
	"github.com/lmercier/dcawatch/pkg/httputil"
	"github.com/lmercier/dcawatch/pkg/logger"
)

// StooqClient fetches daily candles from the Stooq download endpoint.
// All requests share one rate limiter: the provider's quota is enforced
// here, not by sleeps in the scoring loop.
type StooqClient struct {
	httpClient *httputil.Client
	baseURL    string
	logger     *logger.Logger
}

// NewStooqClient builds a client from config. The rate limiter is
// attached to the underlying HTTP client so every request waits on it.
func NewStooqClient(cfg *config.Config, log *logger.Logger) *StooqClient {
	limiter := rate.NewLimiter(rate.Limit(cfg.MarketData.RateLimit), cfg.MarketData.RateBurst)

	httpClient := httputil.
		NewWithTimeout(log, cfg.MarketData.Timeout).
		WithRateLimiter(limiter)

	return &StooqClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.MarketData.BaseURL, "/"),
		logger:     log,
	}
}

// Fetch downloads daily history for a ticker within [from, to].
// An empty payload maps to contracts.ErrNoData.
func (c *StooqClient) Fetch(ctx context.Context, ticker string, from, to time.Time) (*contracts.Series, error) {
	fullURL := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		c.baseURL,
		url.QueryEscape(strings.ToLower(ticker)),
		from.Format("20060102"),
		to.Format("20060102"),
	)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status code %d", ticker, resp.StatusCode)
	}

	series, err := c.parseCSV(ticker, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ticker, err)
	}
	if series.Len() == 0 {
		return nil, contracts.ErrNoData
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"rows":   series.Len(),
	}).Debug("Fetched daily history")

	return series, nil
}

// parseCSV reads the Date,Open,High,Low,Close,Volume payload. Rows with
// an unparsable date or close are skipped, not fatal; only the close is
// kept.
func (c *StooqClient) parseCSV(ticker string, body io.Reader) (*contracts.Series, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1 // volume column is absent for some symbols

	var candles []contracts.Candle
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if i == 0 || len(record) < 5 {
			continue // header or short row
		}

		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			continue
		}
		close, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			continue
		}

		candles = append(candles, contracts.Candle{Date: date, Close: close})
	}

	return contracts.NewSeries(ticker, candles), nil
}
