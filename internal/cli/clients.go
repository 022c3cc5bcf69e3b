package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/service"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, edit, show, and delete the clients you visit.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		clients, err := appInstance.ClientService.List(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		fmt.Printf("%-36s  %-25s %-20s %-25s\n", "ID", "Name", "Contact", "Address")
		fmt.Println("--------------------------------------------------------------------------------------------------------------")

		for _, c := range clients {
			fmt.Printf("%-36s  %-25s %-20s %-25s\n",
				c.ID,
				truncate(c.Name, 25),
				truncate(c.ContactName, 20),
				truncate(c.Address, 25),
			)
		}

		fmt.Printf("\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		in := clientInput(cmd)
		in.Name = &args[0]

		client, err := appInstance.ClientService.Create(ctx, ownerID, in)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Printf("✓ Client created: %s (ID: %s)\n", client.Name, client.ID)
		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id|name]",
	Short: "Edit an existing client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveClientID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}

		in := clientInput(cmd)
		in.Name = stringFlag(cmd, "name")

		client, err := appInstance.ClientService.Update(ctx, ownerID, id, in)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Printf("✓ Client updated: %s\n", client.Name)
		return nil
	},
}

var clientsShowCmd = &cobra.Command{
	Use:   "show [id|name]",
	Short: "Show client details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveClientID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}
		c, err := appInstance.ClientService.Get(ctx, ownerID, id)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}

		fmt.Printf("ID:        %s\n", c.ID)
		fmt.Printf("Name:      %s\n", c.Name)
		if c.ContactName != "" {
			fmt.Printf("Contact:   %s\n", c.ContactName)
		}
		if c.ContactEmail != "" {
			fmt.Printf("Email:     %s\n", c.ContactEmail)
		}
		if c.ContactPhone != "" {
			fmt.Printf("Phone:     %s\n", c.ContactPhone)
		}
		if c.Address != "" {
			fmt.Printf("Address:   %s\n", c.Address)
		}
		if c.Latitude != nil && c.Longitude != nil {
			fmt.Printf("Location:  %.6f, %.6f\n", *c.Latitude, *c.Longitude)
		}
		if c.Notes != "" {
			fmt.Printf("Notes:     %s\n", c.Notes)
		}
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete [id|name]",
	Short: "Delete a client with no shifts, mileage, or invoices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		ownerID, err := currentUser(ctx)
		if err != nil {
			return err
		}

		id, err := resolveClientID(ctx, ownerID, args[0])
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force && !confirmPrompt(fmt.Sprintf("Delete client %s?", args[0])) {
			fmt.Println("Cancelled")
			return nil
		}

		if err := appInstance.ClientService.Delete(ctx, ownerID, id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		fmt.Println("✓ Client deleted")
		return nil
	},
}

// clientInput collects the optional client flags shared by add and edit
func clientInput(cmd *cobra.Command) service.ClientInput {
	return service.ClientInput{
		ContactName:  stringFlag(cmd, "contact"),
		ContactEmail: stringFlag(cmd, "email"),
		ContactPhone: stringFlag(cmd, "phone"),
		Address:      stringFlag(cmd, "address"),
		Latitude:     floatFlag(cmd, "lat"),
		Longitude:    floatFlag(cmd, "lng"),
		Notes:        stringFlag(cmd, "notes"),
	}
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("contact", "", "Contact person")
	cmd.Flags().String("email", "", "Contact email")
	cmd.Flags().String("phone", "", "Contact phone")
	cmd.Flags().String("address", "", "Street address")
	cmd.Flags().Float64("lat", 0, "Latitude")
	cmd.Flags().Float64("lng", 0, "Longitude")
	cmd.Flags().String("notes", "", "Notes")
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsShowCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)

	addClientFlags(clientsAddCmd)
	addClientFlags(clientsEditCmd)
	clientsEditCmd.Flags().String("name", "", "Client name")

	clientsDeleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
}
