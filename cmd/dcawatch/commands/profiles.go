package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmercier/dcawatch/internal/scoring"
)

var profileWeights string

// profilesCmd manages named weight profiles. The active profile
// overrides the strategy file's weights.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage weight profiles",
	Long: `Manages named score-weight profiles in the database. The
active profile overrides the strategy file's weights.

Example:
  dcawatch profiles list
  dcawatch profiles create aggressive --weights drawdown90=0.35,rsi14=0.25,dist_ma50=0.15,momentum30=0.15,trend_ma200=0.05,volatility20=0.05
  dcawatch profiles activate aggressive`,
}

var (
	profilesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE:  runProfilesList,
	}

	profilesCreateCmd = &cobra.Command{
		Use:   "create [name]",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfilesCreate,
	}

	profilesActivateCmd = &cobra.Command{
		Use:   "activate [name]",
		Short: "Activate a profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfilesActivate,
	}
)

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesCreateCmd)
	profilesCmd.AddCommand(profilesActivateCmd)

	profilesCreateCmd.Flags().StringVar(&profileWeights, "weights", "", "comma-separated component=weight pairs (required)")
	profilesCreateCmd.MarkFlagRequired("weights")
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	repo, err := settingsRepo(a)
	if err != nil {
		return err
	}

	profiles, err := repo.ListProfiles(cmd.Context())
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No profiles; strategy file weights are in effect")
		return nil
	}

	fmt.Printf("%-20s %-8s %s\n", "NAME", "ACTIVE", "CREATED")
	for _, p := range profiles {
		fmt.Printf("%-20s %-8v %s\n", p.Name, p.Active, p.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func runProfilesCreate(cmd *cobra.Command, args []string) error {
	weights, err := parseWeights(profileWeights)
	if err != nil {
		return err
	}

	// Same validation as a scoring pass: caps are taken from the
	// strategy file, only the weights vary per profile.
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	params := scoring.Params{
		DrawdownCap:   a.strategy.Caps.Drawdown,
		VolatilityCap: a.strategy.Caps.Volatility,
		Weights:       weights,
	}
	if err := scoring.ValidateParams(params); err != nil {
		return err
	}

	repo, err := settingsRepo(a)
	if err != nil {
		return err
	}

	if err := repo.CreateProfile(cmd.Context(), args[0], weights); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Created profile %s", args[0]))
	return nil
}

func runProfilesActivate(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	repo, err := settingsRepo(a)
	if err != nil {
		return err
	}

	if err := repo.ActivateProfile(cmd.Context(), args[0]); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Activated profile %s", args[0]))
	return nil
}

// parseWeights parses "component=weight,component=weight" pairs.
func parseWeights(expr string) (map[string]float64, error) {
	weights := make(map[string]float64)
	for _, pair := range strings.Split(expr, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid weight pair %q, expected component=weight", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight in %q: %w", pair, err)
		}
		weights[strings.TrimSpace(parts[0])] = w
	}
	return weights, nil
}
