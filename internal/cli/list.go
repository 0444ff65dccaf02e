package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pablasso/triage/internal/todo"
	"github.com/pablasso/triage/internal/util"
	"github.com/spf13/cobra"
)

var (
	listTags []string
	listAt   string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print tasks grouped by section",
	Long:    `Print every task in the five sections: Unsorted, Main, Backburner, Blocked and Done. --tag keeps tasks carrying any of the given tags.`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringSliceVarP(&listTags, "tag", "t", nil, "Only tasks with this tag (repeatable)")
	listCmd.Flags().StringVar(&listAt, "at", "", "Classify as of this time instead of now")
}

func runList(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	now := nowFunc()
	if listAt != "" {
		at, err := parseTimeFlag(listAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		if at != nil {
			now = *at
		}
	}

	tasks, err := w.store.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	sections := w.classifier.Classify(tasks, todo.NewSet(listTags...), now)
	return printSections(sections, now)
}

func printSections(sections []todo.Section, now time.Time) error {
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	for i, section := range sections {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s (%d)\n", section.Name, len(section.Tasks))
		if len(section.Tasks) == 0 {
			fmt.Fprintln(tw, "  -")
			continue
		}
		for _, t := range section.Tasks {
			end := formatTime(t.End)
			if t.Overdue(now) {
				end += " (overdue)"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				util.ShortID(t.ID),
				t.Text,
				formatTags(t.Tags),
				end,
				formatAge(t.Added),
			)
		}
	}
	return tw.Flush()
}
