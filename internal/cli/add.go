package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pablasso/triage/internal/todo"
	"github.com/pablasso/triage/internal/util"
	"github.com/spf13/cobra"
)

var (
	addTags      []string
	addStart     string
	addEnd       string
	addTimeblock string
	addAfter     []string
	addRepeat    string
	addSorted    bool
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a task",
	Long:  `Add a task to the front of the list. New tasks land in Unsorted unless --sorted is given.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "Tag (repeatable)")
	addCmd.Flags().StringVar(&addStart, "start", "", "Do not show before this time")
	addCmd.Flags().StringVar(&addEnd, "end", "", "Deadline")
	addCmd.Flags().StringVar(&addTimeblock, "timeblock", "", "Only show within this timeblock")
	addCmd.Flags().StringSliceVar(&addAfter, "after", nil, "Task ID this one waits on (repeatable)")
	addCmd.Flags().StringVar(&addRepeat, "repeat", "", "Recurrence, e.g. 1d, 2w, 12h")
	addCmd.Flags().BoolVar(&addSorted, "sorted", false, "Skip Unsorted")
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("task text is required")
	}

	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	ctx := context.Background()
	task := todo.New(util.NewTaskID(), text, nowFunc())
	task.Sorted = addSorted
	task.Tags = todo.NewSet(addTags...)
	task.Timeblock = strings.TrimSpace(addTimeblock)

	if task.Start, err = parseTimeFlag(addStart); err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	if task.End, err = parseTimeFlag(addEnd); err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	if task.Repeat, err = parseRepeatFlag(addRepeat); err != nil {
		return fmt.Errorf("--repeat: %w", err)
	}

	err = w.mutate(func() error {
		for _, arg := range addAfter {
			id, err := w.resolveID(ctx, arg)
			if err != nil {
				return fmt.Errorf("--after: %w", err)
			}
			task.Dependencies[id] = struct{}{}
		}
		return w.store.Add(ctx, task)
	})
	if err != nil {
		return err
	}

	w.warnTimeblock(task.Timeblock)
	record(w.activity.TaskAdded(task.ID, task.Text))

	fmt.Fprintf(stdout, "Added %s: %s\n", util.ShortID(task.ID), task.Text)
	return nil
}
