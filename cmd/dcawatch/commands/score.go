package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmercier/dcawatch/internal/history"
	"github.com/lmercier/dcawatch/internal/report"
	"github.com/lmercier/dcawatch/internal/scoring"
	"github.com/lmercier/dcawatch/internal/settings"
)

var (
	scoreNotify bool
	scoreSave   bool
)

// scoreCmd runs one scoring pass immediately and prints the table.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run one scoring pass now",
	Long: `Scores the whole watch-list once and prints the ranked report.

With --notify the report is also delivered to the configured channel.
With --save the results are appended to the score history table.`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().BoolVar(&scoreNotify, "notify", false, "deliver the report to the notification channel")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "append results to the score history")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	var settingsRepo *settings.Repository
	if scoreSave {
		db, err := a.database()
		if err != nil {
			return err
		}
		settingsRepo = settings.NewRepository(db.Pool)
	}

	params, err := a.params(ctx, settingsRepo)
	if err != nil {
		return err
	}

	engine, err := scoring.NewEngine(a.marketData(), params, a.strategy.Lookback(), a.log)
	if err != nil {
		return err
	}

	tickers, err := resolveTickers(ctx, a, settingsRepo)
	if err != nil {
		return err
	}

	results, err := engine.RunPass(ctx, tickers)
	if err != nil {
		return err
	}

	ranked := report.Rank(results)
	text, err := report.Render(ranked)
	if err != nil {
		return err
	}
	fmt.Println(text)

	if scoreNotify {
		if err := a.notifier().Send(ctx, text); err != nil {
			a.log.WithError(err).Error("Report delivery failed")
		}
	}

	if scoreSave {
		db, err := a.database()
		if err != nil {
			return err
		}
		store := history.NewRepository(db.Pool, a.hash)
		if err := store.Append(ctx, ranked); err != nil {
			return fmt.Errorf("save score history: %w", err)
		}
		PrintSuccess(fmt.Sprintf("Saved %d results to score history", len(ranked)))
	}

	return nil
}

// resolveTickers prefers the database watch-list when it has enabled
// rows, otherwise uses the strategy file.
func resolveTickers(ctx context.Context, a *app, settingsRepo *settings.Repository) ([]string, error) {
	if settingsRepo == nil {
		return a.strategy.Tickers, nil
	}

	rows, err := settingsRepo.Tickers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load watch-list: %w", err)
	}
	if len(rows) == 0 {
		return a.strategy.Tickers, nil
	}

	tickers := make([]string, 0, len(rows))
	for _, row := range rows {
		tickers = append(tickers, row.Symbol)
	}
	return tickers, nil
}
