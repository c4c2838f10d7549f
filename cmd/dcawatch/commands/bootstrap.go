package commands

import (
	"context"
	"fmt"

	"github.com/lmercier/dcawatch/internal/contracts"
	"github.com/lmercier/dcawatch/internal/marketdata"
	"github.com/lmercier/dcawatch/internal/notify"
	"github.com/lmercier/dcawatch/internal/scoring"
	"github.com/lmercier/dcawatch/internal/settings"
	"github.com/lmercier/dcawatch/internal/watchconfig"
	"github.com/lmercier/dcawatch/pkg/config"
	"github.com/lmercier/dcawatch/pkg/database"
	"github.com/lmercier/dcawatch/pkg/logger"
)

// app bundles the dependencies most commands share. The database is
// connected lazily: read-only commands never open a pool.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *watchconfig.Config
	hash     string

	db *database.DB
}

// initApp loads env config, the logger and the strategy file, and
// prints any strategy warnings.
func initApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	path := cfg.StrategyPath
	if strategyFile != "" {
		path = strategyFile
	}
	strategy, err := watchconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy %s: %w", path, err)
	}

	for _, w := range watchconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	hash, err := watchconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	return &app{cfg: cfg, log: log, strategy: strategy, hash: hash}, nil
}

// database connects the pool on first use.
func (a *app) database() (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.New(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// params builds scoring parameters from the strategy file, overridden
// by the active weight profile when one exists in the database.
func (a *app) params(ctx context.Context, settingsRepo *settings.Repository) (scoring.Params, error) {
	p := scoring.Params{
		DrawdownCap:   a.strategy.Caps.Drawdown,
		VolatilityCap: a.strategy.Caps.Volatility,
		Weights:       a.strategy.Weights,
	}

	if settingsRepo != nil {
		weights, err := settingsRepo.ActiveWeights(ctx)
		if err != nil {
			return p, fmt.Errorf("load active weight profile: %w", err)
		}
		if weights != nil {
			p.Weights = weights
			a.log.Info("Using active weight profile from database")
		}
	}

	return p, nil
}

// marketData builds the quote client.
func (a *app) marketData() contracts.MarketData {
	return marketdata.NewStooqClient(a.cfg, a.log)
}

// notifier returns Telegram when enabled, otherwise a log-only sink.
func (a *app) notifier() contracts.Notifier {
	if a.cfg.Telegram.Enabled {
		return notify.NewTelegramNotifier(a.cfg, a.log)
	}
	return notify.NewLogNotifier(a.log)
}
