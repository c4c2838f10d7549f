package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmercier/dcawatch/internal/backtest"
)

var (
	backtestTickers string
	backtestFrom    string
	backtestTo      string
	backtestStride  int
	backtestHorizon int
)

// backtestCmd replays the scoring pipeline over a historical window.
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay scoring over history and evaluate the score",
	Long: `Replays the live scoring formula over a historical window and
reports whether higher scores predicted better forward returns.

Example:
  dcawatch backtest --ticker SPY --from 2020-01-01 --to 2024-01-01
  dcawatch backtest --ticker SPY,QQQ --from 2020-01-01 --to 2024-01-01 --stride 5`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVar(&backtestTickers, "ticker", "", "comma-separated tickers (default: strategy watch-list)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "window start, YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "window end, YYYY-MM-DD (default: today)")
	backtestCmd.Flags().IntVar(&backtestStride, "stride", 0, "rows between evaluations (default from strategy)")
	backtestCmd.Flags().IntVar(&backtestHorizon, "horizon", 0, "forward return horizon in rows (default from strategy)")
	backtestCmd.MarkFlagRequired("from")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	from, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	to := time.Now().UTC().Truncate(24 * time.Hour)
	if backtestTo != "" {
		to, err = time.Parse("2006-01-02", backtestTo)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
	}

	tickers := a.strategy.Tickers
	if backtestTickers != "" {
		tickers = nil
		for _, t := range strings.Split(backtestTickers, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, strings.ToUpper(t))
			}
		}
	}

	cfg := backtest.Config{
		From:        from,
		To:          to,
		StrideDays:  a.strategy.Backtest.StrideDays,
		HorizonDays: a.strategy.Backtest.HorizonDays,
		PadDays:     a.strategy.Backtest.PadDays,
	}
	if backtestStride > 0 {
		cfg.StrideDays = backtestStride
	}
	if backtestHorizon > 0 {
		cfg.HorizonDays = backtestHorizon
	}

	params, err := a.params(ctx, nil)
	if err != nil {
		return err
	}

	engine, err := backtest.NewEngine(a.marketData(), params, a.log)
	if err != nil {
		return err
	}

	runs, err := engine.RunMulti(ctx, tickers, cfg)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		PrintWarning("No tickers produced usable data")
		return nil
	}

	analysis := backtest.Analyze(runs...)
	printAnalysis(tickers, cfg, analysis)
	return nil
}

func printAnalysis(tickers []string, cfg backtest.Config, a *backtest.Analysis) {
	fmt.Println()
	PrintSeparator()
	fmt.Printf("  Backtest: %s\n", strings.Join(tickers, ", "))
	fmt.Printf("  Window  : %s ~ %s (stride %d, horizon %d)\n",
		cfg.From.Format("2006-01-02"), cfg.To.Format("2006-01-02"),
		cfg.StrideDays, cfg.HorizonDays)
	PrintSeparator()

	if a.Signals == 0 {
		fmt.Println("  No signals with a realized forward return")
		return
	}

	PrintKeyValue("Signals", fmt.Sprintf("%d", a.Signals), 14)
	PrintKeyValue("Correlation", fmt.Sprintf("%.3f", a.Correlation), 14)
	PrintKeyValue("Mean return", fmt.Sprintf("%+.2f%%", a.MeanReturn), 14)
	PrintKeyValue("Std return", fmt.Sprintf("%.2f%%", a.StdReturn), 14)
	PrintKeyValue("Success rate", fmt.Sprintf("%.1f%%", a.SuccessRate), 14)
	fmt.Println()

	for _, bucket := range []*backtest.BucketStats{a.Favorable, a.Neutral, a.Unfavorable} {
		if bucket == nil {
			continue
		}
		fmt.Printf("  %s\n", bucket.Label)
		PrintKeyValue("Count", fmt.Sprintf("%d", bucket.Count), 14)
		PrintKeyValue("Mean return", fmt.Sprintf("%+.2f%%", bucket.MeanReturn), 14)
		PrintKeyValue("Median", fmt.Sprintf("%+.2f%%", bucket.MedianReturn), 14)
		PrintKeyValue("Success rate", fmt.Sprintf("%.1f%%", bucket.SuccessRate), 14)
		PrintKeyValue("Range", fmt.Sprintf("%+.2f%% ~ %+.2f%%", bucket.MinReturn, bucket.MaxReturn), 14)
		fmt.Println()
	}
}
