// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/lmercier/dcawatch/internal/contracts"
	"github.com/lmercier/dcawatch/internal/report"
	"github.com/lmercier/dcawatch/internal/scheduler"
	"github.com/lmercier/dcawatch/internal/scoring"
	"github.com/lmercier/dcawatch/internal/settings"
	"github.com/lmercier/dcawatch/internal/watchconfig"
	"github.com/lmercier/dcawatch/pkg/logger"
)

// ScoreJob runs one full scoring pass: fetch, score, rank, render,
// notify, persist. Notification and persistence failures are logged but
// never fail the pass; the next scheduled tick is the retry.
type ScoreJob struct {
	engine   *scoring.Engine
	cfg      *watchconfig.Config
	settings *settings.Repository // nil when no database is configured
	notifier contracts.Notifier
	store    contracts.HistoryStore // nil when persistence is off
	logger   *logger.Logger
}

// NewScoreJob wires a scoring job. settings and store may be nil.
func NewScoreJob(
	engine *scoring.Engine,
	cfg *watchconfig.Config,
	settingsRepo *settings.Repository,
	notifier contracts.Notifier,
	store contracts.HistoryStore,
	log *logger.Logger,
) *ScoreJob {
	return &ScoreJob{
		engine:   engine,
		cfg:      cfg,
		settings: settingsRepo,
		notifier: notifier,
		store:    store,
		logger:   log,
	}
}

// Name implements scheduler.Job.
func (j *ScoreJob) Name() string {
	return "score_pass"
}

// Schedule implements scheduler.Job.
func (j *ScoreJob) Schedule() string {
	return j.cfg.Schedule
}

// Run implements scheduler.Job. An overlapping pass maps to
// scheduler.ErrSkipped so the scheduler records a skip, not a failure.
func (j *ScoreJob) Run(ctx context.Context) error {
	tickers, err := j.resolveTickers(ctx)
	if err != nil {
		return err
	}

	results, err := j.engine.RunPass(ctx, tickers)
	if err != nil {
		if errors.Is(err, scoring.ErrPassInProgress) {
			return fmt.Errorf("%w: previous pass still running", scheduler.ErrSkipped)
		}
		return err
	}

	ranked := report.Rank(results)
	text, err := report.Render(ranked)
	if err != nil {
		if errors.Is(err, report.ErrNoResults) {
			j.logger.Warn("Pass produced no results, nothing to report")
			return nil
		}
		return err
	}

	if err := j.notifier.Send(ctx, text); err != nil {
		j.logger.WithError(err).Error("Report delivery failed")
	}

	if j.store != nil {
		if err := j.store.Append(ctx, ranked); err != nil {
			j.logger.WithError(err).Error("Score history append failed")
		}
	}

	return nil
}

// resolveTickers prefers the database watch-list when it has enabled
// rows, otherwise falls back to the strategy file.
func (j *ScoreJob) resolveTickers(ctx context.Context) ([]string, error) {
	if j.settings == nil {
		return j.cfg.Tickers, nil
	}

	rows, err := j.settings.Tickers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load watch-list: %w", err)
	}
	if len(rows) == 0 {
		return j.cfg.Tickers, nil
	}

	tickers := make([]string, 0, len(rows))
	for _, row := range rows {
		tickers = append(tickers, row.Symbol)
	}
	return tickers, nil
}
