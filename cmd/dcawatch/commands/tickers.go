package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmercier/dcawatch/internal/settings"
)

// tickersCmd manages the database watch-list. When the table is empty
// the strategy file's ticker list stays in effect.
var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Manage the watch-list",
	Long: `Manages the database watch-list. Rows here override the
strategy file without a redeploy; an empty table means the file's
tickers are used.

Example:
  dcawatch tickers list
  dcawatch tickers add VWCE.DE
  dcawatch tickers disable SPY`,
}

var (
	tickersListCmd = &cobra.Command{
		Use:   "list",
		Short: "List watch-list entries",
		RunE:  runTickersList,
	}

	tickersAddCmd = &cobra.Command{
		Use:   "add [symbol]",
		Short: "Add a symbol to the watch-list",
		Args:  cobra.ExactArgs(1),
		RunE:  runTickersAdd,
	}

	tickersRemoveCmd = &cobra.Command{
		Use:   "remove [symbol]",
		Short: "Remove a symbol from the watch-list",
		Args:  cobra.ExactArgs(1),
		RunE:  runTickersRemove,
	}

	tickersEnableCmd = &cobra.Command{
		Use:   "enable [symbol]",
		Short: "Enable a symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  makeTickersToggle(true),
	}

	tickersDisableCmd = &cobra.Command{
		Use:   "disable [symbol]",
		Short: "Disable a symbol without removing it",
		Args:  cobra.ExactArgs(1),
		RunE:  makeTickersToggle(false),
	}
)

func init() {
	rootCmd.AddCommand(tickersCmd)
	tickersCmd.AddCommand(tickersListCmd)
	tickersCmd.AddCommand(tickersAddCmd)
	tickersCmd.AddCommand(tickersRemoveCmd)
	tickersCmd.AddCommand(tickersEnableCmd)
	tickersCmd.AddCommand(tickersDisableCmd)
}

func settingsRepo(a *app) (*settings.Repository, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	return settings.NewRepository(db.Pool), nil
}

func runTickersList(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	repo, err := settingsRepo(a)
	if err != nil {
		return err
	}

	rows, err := repo.Tickers(cmd.Context(), false)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("Watch-list table is empty; strategy file tickers are in effect:")
		for _, t := range a.strategy.Tickers {
			fmt.Printf("  - %s\n", t)
		}
		return nil
	}

	fmt.Printf("%-12s %-8s %s\n", "SYMBOL", "ENABLED", "ADDED")
	for _, row := range rows {
		fmt.Printf("%-12s %-8v %s\n", row.Symbol, row.Enabled, row.AddedAt.Format("2006-01-02"))
	}
	return nil
}

func runTickersAdd(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	repo, err := settingsRepo(a)
	if err != nil {
		return err
	}

	if err := repo.AddTicker(cmd.Context(), args[0]); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Added %s to the watch-list", args[0]))
	return nil
}

func runTickersRemove(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	repo, err := settingsRepo(a)
	if err != nil {
		return err
	}

	if err := repo.RemoveTicker(cmd.Context(), args[0]); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Removed %s from the watch-list", args[0]))
	return nil
}

func makeTickersToggle(enabled bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := initApp()
		if err != nil {
			return err
		}
		defer a.close()

		repo, err := settingsRepo(a)
		if err != nil {
			return err
		}

		if err := repo.SetTickerEnabled(cmd.Context(), args[0], enabled); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		PrintSuccess(fmt.Sprintf("%s %s", args[0], state))
		return nil
	}
}
