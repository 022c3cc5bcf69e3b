package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Clock in and out of a visit",
	Long:  `Start a running clock for a client and record a shift when you clock out.`,
}

var clockInCmd = &cobra.Command{
	Use:   "in [client]",
	Short: "Start the clock for a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		clientID, err := resolveClientID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}

		shiftType, _ := cmd.Flags().GetString("type")
		notes, _ := cmd.Flags().GetString("notes")

		clock, err := appInstance.ClockService.ClockIn(ctx, ownerID, clientID,
			domain.ShiftType(shiftType), floatFlag(cmd, "rate"), notes)
		if err != nil {
			return fmt.Errorf("failed to clock in: %w", err)
		}

		fmt.Printf("✓ Clocked in for %s at %s\n", args[0], clock.StartTime.Local().Format("15:04:05"))
		return nil
	},
}

var clockOutCmd = &cobra.Command{
	Use:   "out",
	Short: "Stop the clock and record the shift",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		shift, err := appInstance.ClockService.ClockOut(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to clock out: %w", err)
		}

		fmt.Printf("✓ Clocked out (shift ID: %s)\n", shift.ID)
		fmt.Printf("  Duration: %s\n", formatDuration(shift.EndTime.Sub(shift.StartTime)))
		printShiftTotals(shift)
		return nil
	},
}

var clockStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running clock",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		status, err := appInstance.ClockService.Status(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to get clock status: %w", err)
		}
		if status == nil {
			fmt.Println("Not clocked in")
			return nil
		}

		fmt.Printf("Client:   %s\n", status.Client.Name)
		fmt.Printf("Type:     %s\n", status.Clock.ShiftType)
		fmt.Printf("Started:  %s\n", status.Clock.StartTime.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Elapsed:  %s\n", formatDuration(status.Elapsed.Truncate(time.Second)))
		fmt.Printf("Accrued:  $%.2f (before tax)\n", status.Accrued)
		if status.Clock.Notes != "" {
			fmt.Printf("Notes:    %s\n", status.Clock.Notes)
		}
		return nil
	},
}

var clockCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Discard the running clock without recording a shift",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		if !confirmPrompt("Discard the running clock?") {
			fmt.Println("Cancelled")
			return nil
		}

		if err := appInstance.ClockService.Cancel(ctx, ownerID); err != nil {
			return fmt.Errorf("failed to cancel clock: %w", err)
		}

		fmt.Println("✓ Clock discarded")
		return nil
	},
}

func init() {
	clockCmd.AddCommand(clockInCmd)
	clockCmd.AddCommand(clockOutCmd)
	clockCmd.AddCommand(clockStatusCmd)
	clockCmd.AddCommand(clockCancelCmd)

	clockInCmd.Flags().StringP("type", "t", string(domain.ShiftTypeRegular), "Shift type")
	clockInCmd.Flags().Float64P("rate", "r", 0, "Hourly rate (defaults to your profile rate)")
	clockInCmd.Flags().String("notes", "", "Notes")
}
