package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/service"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show earnings, mileage, and invoice totals",
	Long: `Summarize a date range overall, per period bucket, per client, and per invoice status.
Without --start/--end the current day, week, month, or year is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		tfFlag, _ := cmd.Flags().GetString("timeframe")
		tf, err := domain.ParseTimeFrame(tfFlag)
		if err != nil {
			return err
		}

		filter := service.DashboardFilter{TimeFrame: tf}
		filter.Start, filter.End, err = dateRangeFlags(cmd)
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("client"); name != "" {
			clientID, err := resolveClientID(ctx, ownerID, name)
			if err != nil {
				return err
			}
			filter.ClientID = &clientID
		}

		sum, err := appInstance.DashboardService.Summary(ctx, ownerID, filter)
		if err != nil {
			return fmt.Errorf("failed to build dashboard: %w", err)
		}

		fmt.Printf("Dashboard (%s): %s to %s\n\n", sum.TimeFrame,
			sum.Start.Format("2006-01-02"), sum.End.Format("2006-01-02"))

		fmt.Printf("Hours:           %10.2f\n", sum.TotalHours)
		fmt.Printf("Earnings:        %10.2f\n", sum.TotalEarnings)
		fmt.Printf("Tax:             %10.2f\n", sum.TotalTax)
		fmt.Printf("Mileage (km):    %10.2f\n", sum.TotalMileage)
		fmt.Printf("Mileage amount:  %10.2f\n", sum.TotalMileageAmount)
		fmt.Printf("Invoiced:        %10.2f\n", sum.TotalInvoiced)
		fmt.Printf("Paid:            %10.2f\n", sum.TotalPaid)
		fmt.Printf("Unpaid:          %10.2f\n", sum.TotalUnpaid)

		if len(sum.Periods) > 0 {
			fmt.Printf("\n%-12s %8s %11s %9s %10s\n", "Period", "Hours", "Earnings", "Km", "Mileage")
			fmt.Println("------------------------------------------------------")
			for _, p := range sum.Periods {
				fmt.Printf("%-12s %8.2f %11.2f %9.2f %10.2f\n",
					p.Period, p.TotalHours, p.TotalEarnings, p.TotalMileage, p.TotalMileageAmount)
			}
		}

		if len(sum.Clients) > 0 {
			fmt.Printf("\n%-25s %8s %11s %9s %10s\n", "Client", "Hours", "Earnings", "Km", "Mileage")
			fmt.Println("-------------------------------------------------------------------")
			for _, c := range sum.Clients {
				fmt.Printf("%-25s %8.2f %11.2f %9.2f %10.2f\n",
					truncate(c.Name, 25), c.TotalHours, c.TotalEarnings, c.TotalMileage, c.TotalMileageAmount)
			}
		}

		if len(sum.Statuses) > 0 {
			fmt.Printf("\n%-10s %6s %12s\n", "Status", "Count", "Total")
			fmt.Println("------------------------------")
			for _, s := range sum.Statuses {
				fmt.Printf("%-10s %6d %12.2f\n", s.Status, s.Count, s.Total)
			}
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringP("timeframe", "t", "month", "Bucket size: day, week, month, year")
	dashboardCmd.Flags().StringP("client", "c", "", "Only this client (ID or name)")
	dashboardCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	dashboardCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
}
