package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "dcawatch",
	Short: "DCA buy-opportunity watcher",
	Long: `dcawatch scores a watch-list of instruments on a 0-100
buy-opportunity scale, delivers a daily ranked report, and replays the
same scoring over history to check whether the score predicts forward
returns.

Examples:
  dcawatch score
  dcawatch score --notify --save
  dcawatch backtest --ticker SPY --from 2020-01-01 --to 2024-01-01
  dcawatch scheduler start`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy file (default from STRATEGY_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
