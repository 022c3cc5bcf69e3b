package cli

import (
	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "wageflow",
	Short: "Shift, mileage and invoice tracking for independent healthcare workers",
	Long: `Wageflow records client visits, shifts and mileage, turns them into invoices,
and exports PDF or Excel reports. Everything is stored in an encrypted local database.

By default, running wageflow without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(shiftsCmd)
	rootCmd.AddCommand(mileagesCmd)
	rootCmd.AddCommand(clockCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
