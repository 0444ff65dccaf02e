package cli

import (
	"github.com/pablasso/triage/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "triage",
	Short:   "Terminal task tracker that sorts your tasks for you",
	Long:    `Triage keeps a local task list and sorts it into Unsorted, Main, Backburner, Blocked and Done based on dependencies, start times and timeblocks. Run without arguments to open the board.`,
	Version: version.String(),

	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&triageDir, "dir", triageDir, "Data directory")

	rootCmd.AddCommand(
		initCmd,
		deinitCmd,
		addCmd,
		listCmd,
		showCmd,
		editCmd,
		doneCmd,
		rmCmd,
		tagsCmd,
		timeblocksCmd,
		boardCmd,
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
