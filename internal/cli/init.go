package cli

import (
	"fmt"

	"github.com/pablasso/triage/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize triage in the current directory",
	Long:  "Creates a .triage/ folder holding the configuration and the task store.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Check if already initialized
	if IsInitialized() {
		return fmt.Errorf("triage is already initialized in this directory")
	}

	if err := config.WriteDefault(triageDir); err != nil {
		return fmt.Errorf("failed to create %s: %w", triageDir, err)
	}

	fmt.Fprintln(stdout, "Initialized triage in", triageDir)
	fmt.Fprintln(stdout, "\nNext steps:")
	fmt.Fprintln(stdout, "  1. Add a task: triage add \"buy milk\" --tag Groceries")
	fmt.Fprintln(stdout, "  2. Open the board: triage")
	return nil
}
