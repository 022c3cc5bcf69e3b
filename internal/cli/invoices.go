package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
	"github.com/Mayesamomo/wageflow/internal/service"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long: `Create, list, and manage invoices. An invoice claims the shifts and mileage
records it bills, so each record can appear on at most one invoice.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		filter := repository.InvoiceFilter{Descending: true}
		if name, _ := cmd.Flags().GetString("client"); name != "" {
			clientID, err := resolveClientID(ctx, ownerID, name)
			if err != nil {
				return err
			}
			filter.ClientID = &clientID
		}
		if s, _ := cmd.Flags().GetString("status"); s != "" {
			status, err := domain.ParseInvoiceStatus(s)
			if err != nil {
				return err
			}
			filter.Status = &status
		}
		filter.IssuedFrom, filter.IssuedTo, err = dateRangeFlags(cmd)
		if err != nil {
			return err
		}

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx, ownerID, filter)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		fmt.Printf("%-15s %-22s %-10s %-10s %12s %-10s\n", "Number", "Client", "Issued", "Due", "Total", "Status")
		fmt.Println("-----------------------------------------------------------------------------------")

		var total float64
		for _, inv := range invoices {
			name := "Unknown Client"
			if inv.Client != nil {
				name = inv.Client.Name
			}
			fmt.Printf("%-15s %-22s %-10s %-10s %12.2f %-10s\n",
				inv.Number,
				truncate(name, 22),
				inv.IssueDate.Format("2006-01-02"),
				inv.DueDate.Format("2006-01-02"),
				inv.GrandTotal,
				inv.Status,
			)
			total += inv.GrandTotal
		}

		fmt.Printf("\nTotal: %d invoice(s), $%.2f\n", len(invoices), total)
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create [client]",
	Short: "Create a draft invoice from shifts and mileage",
	Long: `Create a draft invoice for a client (by ID or name).

Pass record IDs with --shifts and --mileages (comma separated), or use --uninvoiced
to bill every unclaimed record for the client, optionally limited by --start/--end.`,
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

		in := service.CreateInvoiceInput{ClientID: clientID}
		in.Notes, _ = cmd.Flags().GetString("notes")

		shiftArgs, _ := cmd.Flags().GetStringSlice("shifts")
		mileageArgs, _ := cmd.Flags().GetStringSlice("mileages")
		in.ShiftIDs = splitIDs(shiftArgs)
		in.MileageIDs = splitIDs(mileageArgs)

		if all, _ := cmd.Flags().GetBool("uninvoiced"); all {
			if err := collectUninvoiced(ctx, cmd, ownerID, &in); err != nil {
				return err
			}
		}

		if in.IssueDate, err = dateFlag(cmd, "issued"); err != nil {
			return err
		}
		if in.DueDate, err = dateFlag(cmd, "due"); err != nil {
			return err
		}

		inv, err := appInstance.InvoiceService.CreateInvoice(ctx, ownerID, in)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		fmt.Printf("✓ Invoice created: %s (ID: %s)\n", inv.Number, inv.ID)
		fmt.Printf("  Shifts: %d  Mileage records: %d\n", len(inv.ShiftIDs), len(inv.MileageIDs))
		fmt.Printf("  Total: $%.2f  Due: %s\n", inv.GrandTotal, inv.DueDate.Format("2006-01-02"))
		return nil
	},
}

var invoicesUpdateCmd = &cobra.Command{
	Use:   "update [id|number]",
	Short: "Update an invoice",
	Long: `Update dates, status, notes, or the records an invoice claims.

--shifts and --mileages replace the claimed set. Pass an empty value
(--shifts "") to release every record of that kind.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveInvoiceID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}

		var patch service.InvoicePatch
		if patch.IssueDate, err = dateFlag(cmd, "issued"); err != nil {
			return err
		}
		if patch.DueDate, err = dateFlag(cmd, "due"); err != nil {
			return err
		}
		if s := stringFlag(cmd, "status"); s != nil {
			status, err := domain.ParseInvoiceStatus(*s)
			if err != nil {
				return err
			}
			patch.Status = &status
		}
		patch.Notes = stringFlag(cmd, "notes")
		patch.PaymentNotes = stringFlag(cmd, "payment-notes")
		if cmd.Flags().Changed("shifts") {
			v, _ := cmd.Flags().GetStringSlice("shifts")
			patch.ShiftIDs = splitIDs(v)
		}
		if cmd.Flags().Changed("mileages") {
			v, _ := cmd.Flags().GetStringSlice("mileages")
			patch.MileageIDs = splitIDs(v)
		}

		inv, err := appInstance.InvoiceService.UpdateInvoice(ctx, ownerID, id, patch)
		if err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		fmt.Printf("✓ Invoice %s updated (%s, $%.2f)\n", inv.Number, inv.Status, inv.GrandTotal)
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id|number]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveInvoiceID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}
		inv, err := appInstance.InvoiceService.GetInvoice(ctx, ownerID, id)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		fmt.Printf("Invoice: %s\n", inv.Number)
		fmt.Printf("ID: %s\n", inv.ID)
		if inv.Client != nil {
			fmt.Printf("Client: %s\n", inv.Client.Name)
		}
		fmt.Printf("Status: %s\n", inv.Status)
		fmt.Printf("Issued: %s  Due: %s\n", inv.IssueDate.Format("2006-01-02"), inv.DueDate.Format("2006-01-02"))
		if inv.IsOverdue(time.Now()) {
			fmt.Println("⚠ Past due")
		}
		if inv.PaymentProof != "" {
			fmt.Println("Payment proof: attached")
		}

		if len(inv.Shifts) > 0 {
			fmt.Println("\nShifts:")
			fmt.Printf("  %-10s %-11s %7s %9s %10s %9s\n", "Date", "Time", "Hours", "Rate", "Earnings", "Tax")
			fmt.Println("  ------------------------------------------------------------")
			for _, s := range inv.Shifts {
				fmt.Printf("  %-10s %-11s %7.2f %9.2f %10.2f %9.2f\n",
					s.StartTime.Format("2006-01-02"),
					s.StartTime.Format("15:04")+"-"+s.EndTime.Format("15:04"),
					s.TotalHours, s.HourlyRate, s.Earnings, s.TaxAmount)
			}
		}

		if len(inv.Mileages) > 0 {
			fmt.Println("\nMileage:")
			fmt.Printf("  %-10s %-25s %8s %7s %9s\n", "Date", "Route", "Km", "Rate", "Amount")
			fmt.Println("  ----------------------------------------------------------------")
			for _, m := range inv.Mileages {
				fmt.Printf("  %-10s %-25s %8.2f %7.2f %9.2f\n",
					m.Date.Format("2006-01-02"),
					truncate(strings.TrimSpace(m.FromLocation+" → "+m.ToLocation), 25),
					m.Distance, m.RatePerKm, m.Amount)
			}
		}

		fmt.Println()
		fmt.Printf("Hours:     %10.2f\n", inv.HoursTotal)
		fmt.Printf("Earnings:  %10.2f\n", inv.EarningsTotal)
		fmt.Printf("Mileage:   %10.2f\n", inv.MileageTotal)
		fmt.Printf("Tax:       %10.2f\n", inv.TaxTotal)
		fmt.Printf("Total:     %10.2f\n", inv.GrandTotal)

		if inv.Notes != "" {
			fmt.Printf("\nNotes: %s\n", inv.Notes)
		}
		if inv.PaymentNotes != "" {
			fmt.Printf("Payment notes: %s\n", inv.PaymentNotes)
		}
		return nil
	},
}

var invoicesMarkPaidCmd = &cobra.Command{
	Use:   "mark-paid [id|number]",
	Short: "Mark an invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveInvoiceID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}

		inv, err := appInstance.InvoiceService.MarkAsPaid(ctx, ownerID, id, stringFlag(cmd, "payment-notes"))
		if err != nil {
			return fmt.Errorf("failed to mark invoice paid: %w", err)
		}

		fmt.Printf("✓ Invoice %s marked as paid\n", inv.Number)
		return nil
	},
}

var invoicesAttachProofCmd = &cobra.Command{
	Use:   "attach-proof [id|number] [file]",
	Short: "Attach a payment proof file and mark the invoice paid",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveInvoiceID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read proof file: %w", err)
		}

		inv, err := appInstance.InvoiceService.AttachPaymentProof(ctx, ownerID, id, filepath.Base(args[1]), data)
		if err != nil {
			return fmt.Errorf("failed to attach payment proof: %w", err)
		}

		fmt.Printf("✓ Payment proof attached to %s (now %s)\n", inv.Number, inv.Status)
		return nil
	},
}

var invoicesProofCmd = &cobra.Command{
	Use:   "proof [id|number]",
	Short: "Save the payment proof of an invoice to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveInvoiceID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}

		data, stored, err := appInstance.InvoiceService.GetPaymentProof(ctx, ownerID, id)
		if err != nil {
			return fmt.Errorf("failed to get payment proof: %w", err)
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = filepath.Base(stored)
		}
		if err := os.WriteFile(out, data, 0600); err != nil {
			return fmt.Errorf("failed to write proof: %w", err)
		}

		fmt.Printf("✓ Payment proof saved to %s (%d bytes)\n", out, len(data))
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [id|number]",
	Short: "Delete an invoice and release its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveInvoiceID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirmPrompt(fmt.Sprintf("Delete invoice %s?", args[0])) {
			fmt.Println("Cancelled")
			return nil
		}

		if err := appInstance.InvoiceService.DeleteInvoice(ctx, ownerID, id); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		fmt.Println("✓ Invoice deleted, its shifts and mileage are available again")
		return nil
	},
}

var invoicesMarkOverdueCmd = &cobra.Command{
	Use:   "mark-overdue",
	Short: "Move sent invoices past their due date to overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		n, err := appInstance.InvoiceService.MarkOverdue(ctx, ownerID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to mark overdue invoices: %w", err)
		}

		fmt.Printf("✓ %d invoice(s) marked overdue\n", n)
		return nil
	},
}

// resolveInvoiceID accepts an invoice ID or its number
func resolveInvoiceID(ctx context.Context, ownerID, idOrNumber string) (string, error) {
	inv, err := appInstance.InvoiceService.GetInvoice(ctx, ownerID, idOrNumber)
	if err == nil {
		return inv.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	invoices, err := appInstance.InvoiceService.ListInvoices(ctx, ownerID, repository.InvoiceFilter{})
	if err != nil {
		return "", err
	}
	for _, inv := range invoices {
		if strings.EqualFold(inv.Number, idOrNumber) {
			return inv.ID, nil
		}
	}
	return "", fmt.Errorf("invoice '%s' not found", idOrNumber)
}

// collectUninvoiced adds every unclaimed record of the client in the date range
func collectUninvoiced(ctx context.Context, cmd *cobra.Command, ownerID string, in *service.CreateInvoiceInput) error {
	start, end, err := dateRangeFlags(cmd)
	if err != nil {
		return err
	}
	invoiced := false
	filter := repository.RecordFilter{ClientID: &in.ClientID, Start: start, End: end, Invoiced: &invoiced}

	shifts, err := appInstance.ShiftService.List(ctx, ownerID, filter)
	if err != nil {
		return fmt.Errorf("failed to list shifts: %w", err)
	}
	for _, s := range shifts {
		in.ShiftIDs = append(in.ShiftIDs, s.ID)
	}

	mileages, err := appInstance.MileageService.List(ctx, ownerID, filter)
	if err != nil {
		return fmt.Errorf("failed to list mileage: %w", err)
	}
	for _, m := range mileages {
		in.MileageIDs = append(in.MileageIDs, m.ID)
	}

	if len(in.ShiftIDs) == 0 && len(in.MileageIDs) == 0 {
		return fmt.Errorf("no uninvoiced shifts or mileage found for this client")
	}
	return nil
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &t, nil
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesUpdateCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesMarkPaidCmd)
	invoicesCmd.AddCommand(invoicesAttachProofCmd)
	invoicesCmd.AddCommand(invoicesProofCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesMarkOverdueCmd)

	invoicesListCmd.Flags().StringP("client", "c", "", "Filter by client ID or name")
	invoicesListCmd.Flags().StringP("status", "s", "", "Filter by status (draft, sent, paid, overdue, cancelled)")
	invoicesListCmd.Flags().String("start", "", "Issued on or after (YYYY-MM-DD)")
	invoicesListCmd.Flags().String("end", "", "Issued on or before (YYYY-MM-DD)")

	invoicesCreateCmd.Flags().StringSlice("shifts", nil, "Shift IDs to bill")
	invoicesCreateCmd.Flags().StringSlice("mileages", nil, "Mileage record IDs to bill")
	invoicesCreateCmd.Flags().Bool("uninvoiced", false, "Bill every unclaimed record for the client")
	invoicesCreateCmd.Flags().String("start", "", "With --uninvoiced, records from this date (YYYY-MM-DD)")
	invoicesCreateCmd.Flags().String("end", "", "With --uninvoiced, records up to this date (YYYY-MM-DD)")
	invoicesCreateCmd.Flags().String("issued", "", "Issue date (defaults to today)")
	invoicesCreateCmd.Flags().String("due", "", "Due date (defaults to the configured number of days after issue)")
	invoicesCreateCmd.Flags().String("notes", "", "Notes printed on the invoice")

	invoicesUpdateCmd.Flags().String("issued", "", "Issue date (YYYY-MM-DD)")
	invoicesUpdateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	invoicesUpdateCmd.Flags().StringP("status", "s", "", "New status")
	invoicesUpdateCmd.Flags().String("notes", "", "Notes")
	invoicesUpdateCmd.Flags().String("payment-notes", "", "Payment notes")
	invoicesUpdateCmd.Flags().StringSlice("shifts", nil, "Replace the claimed shifts")
	invoicesUpdateCmd.Flags().StringSlice("mileages", nil, "Replace the claimed mileage records")

	invoicesMarkPaidCmd.Flags().String("payment-notes", "", "Payment notes")
	invoicesProofCmd.Flags().StringP("output", "o", "", "Output file (defaults to the stored file name)")
	invoicesDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
}
