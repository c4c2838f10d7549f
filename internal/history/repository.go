// Package history persists score results to PostgreSQL. The table is
// append-only: every pass adds rows, nothing updates or deletes them.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmercier/dcawatch/internal/contracts"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS scores_history (
		id          BIGSERIAL PRIMARY KEY,
		ticker      TEXT             NOT NULL,
		as_of       DATE             NOT NULL,
		score       DOUBLE PRECISION NOT NULL,
		close       DOUBLE PRECISION NOT NULL,
		rsi14       DOUBLE PRECISION NOT NULL,
		ma50        DOUBLE PRECISION NOT NULL,
		ma200       DOUBLE PRECISION NOT NULL,
		drawdown90  DOUBLE PRECISION NOT NULL,
		vol20       DOUBLE PRECISION NOT NULL,
		momentum30  DOUBLE PRECISION NOT NULL,
		config_hash TEXT             NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ      NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_scores_history_ticker_as_of
		ON scores_history (ticker, as_of DESC);
`

// Entry is one persisted score row.
type Entry struct {
	Ticker     string
	AsOf       time.Time
	Score      float64
	Close      float64
	RSI14      float64
	MA50       float64
	MA200      float64
	Drawdown90 float64
	Vol20      float64
	Momentum30 float64
	ConfigHash string
	CreatedAt  time.Time
}

// Repository stores and retrieves score history. Implements
// contracts.HistoryStore.
type Repository struct {
	pool       *pgxpool.Pool
	configHash string

	initOnce sync.Once
	initErr  error
}

// NewRepository creates a history repository. configHash tags every
// appended row with the strategy configuration that produced it.
func NewRepository(pool *pgxpool.Pool, configHash string) *Repository {
	return &Repository{pool: pool, configHash: configHash}
}

// ensureSchema creates the table on first use so a fresh database works
// without a separate migration step.
func (r *Repository) ensureSchema(ctx context.Context) error {
	r.initOnce.Do(func() {
		_, r.initErr = r.pool.Exec(ctx, createTableSQL)
	})
	if r.initErr != nil {
		return fmt.Errorf("failed to ensure scores_history schema: %w", r.initErr)
	}
	return nil
}

// Append inserts one row per score result in a single transaction.
// Either the whole pass lands or none of it does.
func (r *Repository) Append(ctx context.Context, results []contracts.ScoreResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO scores_history (
			ticker, as_of, score, close, rsi14, ma50, ma200,
			drawdown90, vol20, momentum30, config_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, res := range results {
		_, err := tx.Exec(ctx, query,
			res.Ticker, res.AsOf, res.Score,
			res.Indicator(contracts.IndicatorClose),
			res.Indicator(contracts.IndicatorRSI14),
			res.Indicator(contracts.IndicatorMA50),
			res.Indicator(contracts.IndicatorMA200),
			res.Indicator(contracts.IndicatorDrawdown90),
			res.Indicator(contracts.IndicatorVol20),
			res.Indicator(contracts.IndicatorMomentum30),
			r.configHash,
		)
		if err != nil {
			return fmt.Errorf("failed to insert score for %s: %w", res.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit score history: %w", err)
	}

	return nil
}

// Recent returns the newest rows, most recent first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT ticker, as_of, score, close, rsi14, ma50, ma200,
		       drawdown90, vol20, momentum30, config_hash, created_at
		FROM scores_history
		ORDER BY created_at DESC, ticker
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.Ticker, &e.AsOf, &e.Score, &e.Close, &e.RSI14, &e.MA50, &e.MA200,
			&e.Drawdown90, &e.Vol20, &e.Momentum30, &e.ConfigHash, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score history row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RecentForTicker returns the newest rows for one instrument.
func (r *Repository) RecentForTicker(ctx context.Context, ticker string, limit int) ([]Entry, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT ticker, as_of, score, close, rsi14, ma50, ma200,
		       drawdown90, vol20, momentum30, config_hash, created_at
		FROM scores_history
		WHERE ticker = $1
		ORDER BY as_of DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history for %s: %w", ticker, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.Ticker, &e.AsOf, &e.Score, &e.Close, &e.RSI14, &e.MA50, &e.MA200,
			&e.Drawdown90, &e.Vol20, &e.Momentum30, &e.ConfigHash, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score history row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// LastScore returns the most recent score for a ticker, or pgx.ErrNoRows
// wrapped when none exists.
func (r *Repository) LastScore(ctx context.Context, ticker string) (*Entry, error) {
	entries, err := r.RecentForTicker(ctx, ticker, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no score history for %s: %w", ticker, pgx.ErrNoRows)
	}
	return &entries[0], nil
}
