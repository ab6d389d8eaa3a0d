package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"thb-crypto-watch/internal/app"
)

var (
	simulateSymbol string
	simulateCost   float64
	simulatePrice  float64
	simulateTarget float64
	simulateStop   float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Evaluate one synthetic holding and push the resulting alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateSymbol == "" {
			return errors.New("--symbol is required")
		}
		if simulateCost <= 0 || simulatePrice <= 0 {
			return errors.New("--cost and --price must be greater than 0")
		}
		if simulateTarget <= 0 || simulateStop <= 0 {
			return errors.New("--target and --stop must be greater than 0")
		}

		opts := app.SimulateOptions{
			Symbol:    strings.ToUpper(strings.TrimSpace(simulateSymbol)),
			CostTHB:   simulateCost,
			PriceUSD:  simulatePrice,
			TargetPct: simulateTarget,
			StopPct:   simulateStop,
		}

		return getApp().SimulateAlert(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateSymbol, "symbol", "", "Holding symbol")
	simulateCmd.Flags().Float64Var(&simulateCost, "cost", 0, "Cost basis in THB")
	simulateCmd.Flags().Float64Var(&simulatePrice, "price", 0, "Current price in USD")
	simulateCmd.Flags().Float64Var(&simulateTarget, "target", 10, "Target profit percent")
	simulateCmd.Flags().Float64Var(&simulateStop, "stop", 5, "Stop loss percent")
}
