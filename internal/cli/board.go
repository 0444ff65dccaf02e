package cli

import (
	"github.com/pablasso/triage/internal/tui"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive board",
	Long:  `Open the interactive board. Running triage with no arguments does the same.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunBoard()
	},
}

// RunBoard opens the board on the configured workspace.
func RunBoard() error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	return tui.Run(tui.Options{
		Store:           w.store,
		Classifier:      w.classifier,
		Activity:        w.activity,
		Lock:            w.lock,
		Tags:            w.cfg.Tags,
		RefreshInterval: w.cfg.RefreshInterval,
	})
}
