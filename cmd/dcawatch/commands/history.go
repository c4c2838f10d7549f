package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmercier/dcawatch/internal/history"
)

var (
	historyTicker string
	historyLimit  int
)

// historyCmd shows persisted score history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show persisted score history",
	Long: `Shows rows from the score history table, newest first.

Example:
  dcawatch history
  dcawatch history --ticker SPY --limit 50`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyTicker, "ticker", "", "filter by ticker")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	db, err := a.database()
	if err != nil {
		return err
	}
	repo := history.NewRepository(db.Pool, a.hash)

	var entries []history.Entry
	if historyTicker != "" {
		entries, err = repo.RecentForTicker(ctx, historyTicker, historyLimit)
	} else {
		entries, err = repo.Recent(ctx, historyLimit)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No score history")
		return nil
	}

	fmt.Printf("%-12s %-10s %6s %6s %10s %10s %10s\n",
		"AS OF", "TICKER", "SCORE", "RSI", "CLOSE", "MA50", "MA200")
	for _, e := range entries {
		fmt.Printf("%-12s %-10s %6.1f %6.1f %10.2f %10.2f %10.2f\n",
			e.AsOf.Format("2006-01-02"), e.Ticker, e.Score, e.RSI14,
			e.Close, e.MA50, e.MA200)
	}
	return nil
}
