package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset your data in the database",
	Long: `Reset your data in the database. Other accounts are never touched.

Examples:
  wageflow reset invoices    # Delete all invoices and release their shifts and mileage
  wageflow reset all         # Wipe everything: clients, shifts, mileage, invoices, clock`,
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices and their payment proofs, releasing their records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		if !confirmPrompt("This will delete ALL invoices and release every claimed shift and mileage record. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.ResetService.ResetInvoices(ctx, ownerID); err != nil {
			return fmt.Errorf("failed to reset invoices: %w", err)
		}

		fmt.Println("All invoices have been deleted and their records released.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: clients, shifts, mileage, invoices, everything",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		if !confirmPrompt("This will delete ALL your data (clients, shifts, mileage, invoices, everything). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.ResetService.ResetAll(ctx, ownerID); err != nil {
			return fmt.Errorf("failed to reset data: %w", err)
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func init() {
	resetCmd.AddCommand(resetInvoicesCmd)
	resetCmd.AddCommand(resetAllCmd)
}
