package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"thb-crypto-watch/internal/app"
)

var runBudget float64

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the THB dashboard refresh loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runBudget < 0 {
			return fmt.Errorf("--budget cannot be negative")
		}

		opts := app.RunOptions{
			BudgetTHB: runBudget,
			BudgetSet: cmd.Flags().Changed("budget"),
		}

		return getApp().Run(cmd.Context(), opts)
	},
}

func init() {
	runCmd.Flags().Float64Var(&runBudget, "budget", 0, "THB budget filter (0 disables filtering)")
}
