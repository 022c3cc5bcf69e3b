package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
	"github.com/Mayesamomo/wageflow/internal/service"
)

var shiftsCmd = &cobra.Command{
	Use:   "shifts",
	Short: "Manage shifts",
	Long:  `List, add, edit, and delete worked shifts. Invoiced shifts cannot be deleted.`,
}

var shiftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shifts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		filter, err := recordFilter(ctx, cmd, ownerID)
		if err != nil {
			return err
		}

		shifts, err := appInstance.ShiftService.List(ctx, ownerID, filter)
		if err != nil {
			return fmt.Errorf("failed to list shifts: %w", err)
		}

		if len(shifts) == 0 {
			fmt.Println("No shifts found")
			return nil
		}

		names, err := clientNames(ctx, ownerID)
		if err != nil {
			return err
		}

		fmt.Printf("%-36s  %-10s %-11s %-20s %-9s %6s %10s %9s %-3s\n",
			"ID", "Date", "Time", "Client", "Type", "Hours", "Earnings", "Tax", "Inv")
		fmt.Println("---------------------------------------------------------------------------------------------------------------------------")

		var totalHours, totalEarnings, totalTax float64
		for _, s := range shifts {
			invoiced := ""
			if s.IsInvoiced() {
				invoiced = "✓"
			}
			fmt.Printf("%-36s  %-10s %-11s %-20s %-9s %6.2f %10.2f %9.2f %-3s\n",
				s.ID,
				s.StartTime.Format("2006-01-02"),
				s.StartTime.Format("15:04")+"-"+s.EndTime.Format("15:04"),
				truncate(names[s.ClientID], 20),
				s.ShiftType,
				s.TotalHours,
				s.Earnings,
				s.TaxAmount,
				invoiced,
			)
			totalHours += s.TotalHours
			totalEarnings += s.Earnings
			totalTax += s.TaxAmount
		}

		fmt.Printf("\nTotal: %d shift(s), %.2f hours, $%.2f earned, $%.2f tax\n",
			len(shifts), totalHours, totalEarnings, totalTax)
		return nil
	},
}

var shiftsAddCmd = &cobra.Command{
	Use:   "add [client]",
	Short: "Record a shift",
	Long: `Record a shift for a client (by ID or name).
Times use the format YYYY-MM-DD HH:MM.`,
	Args: cobra.ExactArgs(1),
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

		in, err := shiftInput(cmd)
		if err != nil {
			return err
		}
		if in.StartTime == nil || in.EndTime == nil {
			return fmt.Errorf("--start and --end are required")
		}
		in.ClientID = &clientID

		shift, err := appInstance.ShiftService.Create(ctx, ownerID, in)
		if err != nil {
			return fmt.Errorf("failed to create shift: %w", err)
		}

		fmt.Printf("✓ Shift recorded (ID: %s)\n", shift.ID)
		printShiftTotals(shift)
		return nil
	},
}

var shiftsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a shift",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		in, err := shiftInput(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("client") {
			name, _ := cmd.Flags().GetString("client")
			clientID, err := resolveClientID(ctx, ownerID, name)
			if err != nil {
				return err
			}
			in.ClientID = &clientID
		}
		in.Reason, _ = cmd.Flags().GetString("reason")

		shift, err := appInstance.ShiftService.Update(ctx, ownerID, args[0], in)
		if err != nil {
			return fmt.Errorf("failed to update shift: %w", err)
		}

		fmt.Println("✓ Shift updated")
		printShiftTotals(shift)
		return nil
	},
}

var shiftsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a shift",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirmPrompt(fmt.Sprintf("Delete shift %s?", args[0])) {
			fmt.Println("Cancelled")
			return nil
		}

		if err := appInstance.ShiftService.Delete(ctx, ownerID, args[0]); err != nil {
			return fmt.Errorf("failed to delete shift: %w", err)
		}

		fmt.Println("✓ Shift deleted")
		return nil
	},
}

var shiftsHistoryCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show the edit history of a shift",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		history, err := appInstance.ShiftService.History(ctx, ownerID, args[0])
		if err != nil {
			return fmt.Errorf("failed to get shift history: %w", err)
		}

		if len(history) == 0 {
			fmt.Println("No changes recorded")
			return nil
		}

		fmt.Printf("%-16s %-12s %-20s %-20s %s\n", "Changed", "Field", "Old", "New", "Reason")
		fmt.Println("----------------------------------------------------------------------------------------------")
		for _, h := range history {
			fmt.Printf("%-16s %-12s %-20s %-20s %s\n",
				h.ChangedAt.Local().Format("2006-01-02 15:04"),
				h.FieldName,
				truncate(h.OldValue, 20),
				truncate(h.NewValue, 20),
				h.ChangeReason,
			)
		}
		return nil
	},
}

// shiftInput reads the optional shift flags shared by add and edit
func shiftInput(cmd *cobra.Command) (service.ShiftInput, error) {
	var in service.ShiftInput

	for _, f := range []struct {
		name string
		dst  **time.Time
	}{{"start", &in.StartTime}, {"end", &in.EndTime}} {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		s, _ := cmd.Flags().GetString(f.name)
		t, err := parseDateTime(s)
		if err != nil {
			return in, fmt.Errorf("invalid --%s: %w", f.name, err)
		}
		*f.dst = &t
	}

	if v := stringFlag(cmd, "type"); v != nil {
		st := domain.ShiftType(*v)
		in.ShiftType = &st
	}
	in.HourlyRate = floatFlag(cmd, "rate")
	in.Notes = stringFlag(cmd, "notes")
	in.Location = stringFlag(cmd, "location")
	in.UseClientLocation, _ = cmd.Flags().GetBool("client-location")
	return in, nil
}

func printShiftTotals(s *domain.Shift) {
	fmt.Printf("  %s to %s (%s)\n", s.StartTime.Format("2006-01-02 15:04"), s.EndTime.Format("15:04"), s.ShiftType)
	fmt.Printf("  Hours: %.2f  Rate: $%.2f  Earnings: $%.2f  Tax: $%.2f\n",
		s.TotalHours, s.HourlyRate, s.Earnings, s.TaxAmount)
}

// recordFilter builds a list filter from --client, --start, --end, --uninvoiced and --limit
func recordFilter(ctx context.Context, cmd *cobra.Command, ownerID string) (repository.RecordFilter, error) {
	filter := repository.RecordFilter{Descending: true}

	start, end, err := dateRangeFlags(cmd)
	if err != nil {
		return filter, err
	}
	filter.Start, filter.End = start, end

	if name, _ := cmd.Flags().GetString("client"); name != "" {
		clientID, err := resolveClientID(ctx, ownerID, name)
		if err != nil {
			return filter, err
		}
		filter.ClientID = &clientID
	}
	if uninvoiced, _ := cmd.Flags().GetBool("uninvoiced"); uninvoiced {
		invoiced := false
		filter.Invoiced = &invoiced
	}
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	return filter, nil
}

func addRecordFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("client", "c", "", "Filter by client ID or name")
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().Bool("uninvoiced", false, "Only records not yet on an invoice")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of records")
}

func clientNames(ctx context.Context, ownerID string) (map[string]string, error) {
	clients, err := appInstance.ClientService.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	return names, nil
}

func addShiftFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "Start time (YYYY-MM-DD HH:MM)")
	cmd.Flags().String("end", "", "End time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringP("type", "t", "", "Shift type: regular, overtime, holiday, night, weekend")
	cmd.Flags().Float64P("rate", "r", 0, "Hourly rate (defaults to your profile rate)")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().String("location", "", "Location")
	cmd.Flags().Bool("client-location", false, "Use the client's address and coordinates")
}

func init() {
	shiftsCmd.AddCommand(shiftsListCmd)
	shiftsCmd.AddCommand(shiftsAddCmd)
	shiftsCmd.AddCommand(shiftsEditCmd)
	shiftsCmd.AddCommand(shiftsDeleteCmd)
	shiftsCmd.AddCommand(shiftsHistoryCmd)

	addRecordFilterFlags(shiftsListCmd)

	addShiftFlags(shiftsAddCmd)
	addShiftFlags(shiftsEditCmd)
	shiftsEditCmd.Flags().StringP("client", "c", "", "Move the shift to another client")
	shiftsEditCmd.Flags().String("reason", "", "Reason recorded in the edit history")

	shiftsDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
}
