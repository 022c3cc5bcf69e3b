package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/export"
	"github.com/Mayesamomo/wageflow/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export [shifts|mileages|invoice|earnings-summary]",
	Short: "Export records as PDF or Excel",
	Long: `Render shifts, mileage, a single invoice, or an earnings summary to a PDF or
Excel file in the exports directory.

Examples:
  wageflow export shifts --start 2025-01-01 --end 2025-01-31
  wageflow export invoice --invoice INV-3f2a-0001 --format xlsx
  wageflow export earnings-summary --start 2025-01-01 --end 2025-03-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		dataType, err := export.ParseDataType(args[0])
		if err != nil {
			return err
		}
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		req := service.ExportRequest{Format: format, DataType: dataType}
		req.Start, req.End, err = dateRangeFlags(cmd)
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("client"); name != "" {
			clientID, err := resolveClientID(ctx, ownerID, name)
			if err != nil {
				return err
			}
			req.ClientID = &clientID
		}
		ids, _ := cmd.Flags().GetStringSlice("ids")
		req.IDs = splitIDs(ids)

		if dataType == export.DataInvoice {
			ref, _ := cmd.Flags().GetString("invoice")
			if ref == "" {
				return fmt.Errorf("--invoice is required for invoice exports")
			}
			if req.InvoiceID, err = resolveInvoiceID(ctx, ownerID, ref); err != nil {
				return err
			}
		}

		res, err := appInstance.ExportService.Export(ctx, ownerID, req)
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		location, err := appInstance.Files.Abs(res.Path)
		if err != nil {
			location = res.Path
		}

		fmt.Printf("✓ Exported %s (%d bytes)\n", res.Filename, res.Size)
		fmt.Printf("  %s\n", location)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "pdf", "Output format: pdf or xlsx")
	exportCmd.Flags().StringP("client", "c", "", "Only this client (ID or name)")
	exportCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	exportCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	exportCmd.Flags().StringSlice("ids", nil, "Only these shift or mileage IDs")
	exportCmd.Flags().String("invoice", "", "Invoice ID or number for invoice exports")
}
