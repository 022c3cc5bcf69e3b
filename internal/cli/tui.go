package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal UI",
	Long:  `Launch the interactive terminal user interface for wageflow.`,
	RunE:  launchTUI,
}

func launchTUI(cmd *cobra.Command, args []string) error {
	ownerID, err := currentUser(context.Background())
	if err != nil {
		return err
	}
	return tui.Run(appInstance, ownerID)
}
