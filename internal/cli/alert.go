package cli

import (
	"github.com/spf13/cobra"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Evaluate the portfolio once and push alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().AlertOnce(cmd.Context())
	},
}
