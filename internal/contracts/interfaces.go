package contracts

import (
	"context"
	"errors"
	"time"
)

// ErrNoData signals that no usable price series exists for an
// instrument. The pass skips the instrument and continues; it is never
// fatal.
var ErrNoData = errors.New("no price data available")

// MarketData supplies daily price history for an instrument.
// Implementations must honor the context deadline and may rate limit
// internally.
type MarketData interface {
	Fetch(ctx context.Context, ticker string, from, to time.Time) (*Series, error)
}

// Notifier delivers a pre-rendered report. Delivery is fire-and-forget:
// callers log failures and move on, the next scheduled pass is the
// retry boundary.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// HistoryStore appends score results to a durable, append-only history.
type HistoryStore interface {
	Append(ctx context.Context, results []ScoreResult) error
}
