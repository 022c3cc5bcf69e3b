package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/service"
)

var mileagesCmd = &cobra.Command{
	Use:     "mileages",
	Aliases: []string{"mileage"},
	Short:   "Manage mileage records",
	Long:    `List, add, edit, and delete travel between visits. Invoiced records are read-only.`,
}

var mileagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mileage records",
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

		mileages, err := appInstance.MileageService.List(ctx, ownerID, filter)
		if err != nil {
			return fmt.Errorf("failed to list mileage: %w", err)
		}

		if len(mileages) == 0 {
			fmt.Println("No mileage records found")
			return nil
		}

		names, err := clientNames(ctx, ownerID)
		if err != nil {
			return err
		}

		fmt.Printf("%-36s  %-10s %-20s %-25s %8s %6s %9s %-3s\n",
			"ID", "Date", "Client", "Route", "Km", "Rate", "Amount", "Inv")
		fmt.Println("----------------------------------------------------------------------------------------------------------------------")

		var totalKm, totalAmount float64
		for _, m := range mileages {
			invoiced := ""
			if m.IsInvoiced() {
				invoiced = "✓"
			}
			route := m.FromLocation
			if m.ToLocation != "" {
				route += " → " + m.ToLocation
			}
			fmt.Printf("%-36s  %-10s %-20s %-25s %8.2f %6.2f %9.2f %-3s\n",
				m.ID,
				m.Date.Format("2006-01-02"),
				truncate(names[m.ClientID], 20),
				truncate(route, 25),
				m.Distance,
				m.RatePerKm,
				m.Amount,
				invoiced,
			)
			totalKm += m.Distance
			totalAmount += m.Amount
		}

		fmt.Printf("\nTotal: %d record(s), %.2f km, $%.2f\n", len(mileages), totalKm, totalAmount)
		return nil
	},
}

var mileagesAddCmd = &cobra.Command{
	Use:   "add [client] [km]",
	Short: "Record travel for a client",
	Args:  cobra.ExactArgs(2),
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

		var km float64
		if _, err := fmt.Sscanf(args[1], "%g", &km); err != nil {
			return fmt.Errorf("invalid distance: %s", args[1])
		}

		in, err := mileageInput(cmd)
		if err != nil {
			return err
		}
		in.ClientID = &clientID
		in.Distance = &km

		m, err := appInstance.MileageService.Create(ctx, ownerID, in)
		if err != nil {
			return fmt.Errorf("failed to create mileage: %w", err)
		}

		fmt.Printf("✓ Mileage recorded (ID: %s)\n", m.ID)
		printMileage(m)
		return nil
	},
}

var mileagesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a mileage record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		in, err := mileageInput(cmd)
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
		in.Distance = floatFlag(cmd, "km")

		m, err := appInstance.MileageService.Update(ctx, ownerID, args[0], in)
		if err != nil {
			return fmt.Errorf("failed to update mileage: %w", err)
		}

		fmt.Println("✓ Mileage updated")
		printMileage(m)
		return nil
	},
}

var mileagesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a mileage record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirmPrompt(fmt.Sprintf("Delete mileage record %s?", args[0])) {
			fmt.Println("Cancelled")
			return nil
		}

		if err := appInstance.MileageService.Delete(ctx, ownerID, args[0]); err != nil {
			return fmt.Errorf("failed to delete mileage: %w", err)
		}

		fmt.Println("✓ Mileage deleted")
		return nil
	},
}

func mileageInput(cmd *cobra.Command) (service.MileageInput, error) {
	var in service.MileageInput
	if s, _ := cmd.Flags().GetString("date"); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return in, fmt.Errorf("invalid date: %w", err)
		}
		in.Date = &d
	}
	in.RatePerKm = floatFlag(cmd, "rate")
	in.Description = stringFlag(cmd, "description")
	in.FromLocation = stringFlag(cmd, "from")
	in.ToLocation = stringFlag(cmd, "to")
	return in, nil
}

func printMileage(m *domain.Mileage) {
	fmt.Printf("  %s  %.2f km at $%.2f/km = $%.2f\n", m.Date.Format("2006-01-02"), m.Distance, m.RatePerKm, m.Amount)
}

func addMileageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("date", "d", "", "Date (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().Float64P("rate", "r", 0, "Rate per km (defaults to your profile rate)")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("from", "", "Start location")
	cmd.Flags().String("to", "", "End location")
}

func init() {
	mileagesCmd.AddCommand(mileagesListCmd)
	mileagesCmd.AddCommand(mileagesAddCmd)
	mileagesCmd.AddCommand(mileagesEditCmd)
	mileagesCmd.AddCommand(mileagesDeleteCmd)

	addRecordFilterFlags(mileagesListCmd)

	addMileageFlags(mileagesAddCmd)
	addMileageFlags(mileagesEditCmd)
	mileagesEditCmd.Flags().StringP("client", "c", "", "Move the record to another client")
	mileagesEditCmd.Flags().Float64("km", 0, "Distance in km")

	mileagesDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
}
