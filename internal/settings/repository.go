// Package settings stores the mutable parts of the strategy in
// PostgreSQL: the watch-list and named weight profiles. The YAML file
// ships the defaults; rows here override it without a redeploy.
package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTablesSQL = `
	CREATE TABLE IF NOT EXISTS watch_tickers (
		symbol   TEXT        PRIMARY KEY,
		enabled  BOOLEAN     NOT NULL DEFAULT true,
		added_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS weight_profiles (
		name       TEXT        PRIMARY KEY,
		active     BOOLEAN     NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS profile_weights (
		profile   TEXT             NOT NULL REFERENCES weight_profiles(name) ON DELETE CASCADE,
		component TEXT             NOT NULL,
		weight    DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (profile, component)
	);
`

// Ticker is one watch-list row.
type Ticker struct {
	Symbol  string
	Enabled bool
	AddedAt time.Time
}

// Profile is one named weight set.
type Profile struct {
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Repository manages watch-list and weight-profile persistence.
type Repository struct {
	pool *pgxpool.Pool

	initOnce sync.Once
	initErr  error
}

// NewRepository creates a settings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	r.initOnce.Do(func() {
		_, r.initErr = r.pool.Exec(ctx, createTablesSQL)
	})
	if r.initErr != nil {
		return fmt.Errorf("failed to ensure settings schema: %w", r.initErr)
	}
	return nil
}

// Tickers returns the watch-list, enabled rows only when enabledOnly is
// set. An empty result means the YAML watch-list stays in effect.
func (r *Repository) Tickers(ctx context.Context, enabledOnly bool) ([]Ticker, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	query := `SELECT symbol, enabled, added_at FROM watch_tickers`
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY symbol`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []Ticker
	for rows.Next() {
		var t Ticker
		if err := rows.Scan(&t.Symbol, &t.Enabled, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticker row: %w", err)
		}
		tickers = append(tickers, t)
	}

	return tickers, rows.Err()
}

// AddTicker inserts a symbol; re-adding an existing one re-enables it.
func (r *Repository) AddTicker(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("ticker symbol must not be empty")
	}
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	query := `
		INSERT INTO watch_tickers (symbol) VALUES ($1)
		ON CONFLICT (symbol) DO UPDATE SET enabled = true
	`
	if _, err := r.pool.Exec(ctx, query, symbol); err != nil {
		return fmt.Errorf("failed to add ticker %s: %w", symbol, err)
	}
	return nil
}

// RemoveTicker deletes a symbol from the watch-list.
func (r *Repository) RemoveTicker(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM watch_tickers WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove ticker %s: %w", symbol, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticker %s not found", symbol)
	}
	return nil
}

// SetTickerEnabled toggles a symbol without losing its row.
func (r *Repository) SetTickerEnabled(ctx context.Context, symbol string, enabled bool) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE watch_tickers SET enabled = $2 WHERE symbol = $1`, symbol, enabled)
	if err != nil {
		return fmt.Errorf("failed to update ticker %s: %w", symbol, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticker %s not found", symbol)
	}
	return nil
}

// CreateProfile stores a named weight set. Weights are validated by the
// caller before they reach here.
func (r *Repository) CreateProfile(ctx context.Context, name string, weights map[string]float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO weight_profiles (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("failed to create profile %s: %w", name, err)
	}

	for component, weight := range weights {
		if _, err := tx.Exec(ctx,
			`INSERT INTO profile_weights (profile, component, weight) VALUES ($1, $2, $3)`,
			name, component, weight); err != nil {
			return fmt.Errorf("failed to store weight %s for profile %s: %w", component, name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit profile %s: %w", name, err)
	}
	return nil
}

// ActivateProfile marks one profile active and all others inactive.
func (r *Repository) ActivateProfile(ctx context.Context, name string) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE weight_profiles SET active = false WHERE active`); err != nil {
		return fmt.Errorf("failed to deactivate profiles: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE weight_profiles SET active = true WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to activate profile %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s not found", name)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit profile activation: %w", err)
	}
	return nil
}

// ActiveWeights returns the active profile's weights, or (nil, nil) when
// no profile is active so the YAML weights stay in effect.
func (r *Repository) ActiveWeights(ctx context.Context) (map[string]float64, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	var name string
	err := r.pool.QueryRow(ctx,
		`SELECT name FROM weight_profiles WHERE active LIMIT 1`).Scan(&name)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active profile: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT component, weight FROM profile_weights WHERE profile = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query weights for profile %s: %w", name, err)
	}
	defer rows.Close()

	weights := make(map[string]float64)
	for rows.Next() {
		var component string
		var weight float64
		if err := rows.Scan(&component, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan weight row: %w", err)
		}
		weights[component] = weight
	}

	return weights, rows.Err()
}

// ListProfiles returns all profiles, active first.
func (r *Repository) ListProfiles(ctx context.Context) ([]Profile, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT name, active, created_at FROM weight_profiles ORDER BY active DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.Name, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}
