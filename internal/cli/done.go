package cli

import (
	"context"
	"fmt"

	"github.com/pablasso/triage/internal/todo"
	"github.com/pablasso/triage/internal/util"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Complete a task",
	Long:  `Complete a task. A repeating task with a start or end moves forward by one interval instead and stays open.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a task",
	Long:    `Delete a task. Tasks that waited on it stay blocked until their dependency is edited away.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func runDone(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	ctx := context.Background()
	var updated todo.Task
	err = w.mutate(func() error {
		id, err := w.resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		updated, err = w.store.Update(ctx, id, todo.Complete{})
		return err
	})
	if err != nil {
		return err
	}

	rescheduled := !updated.Done
	record(w.activity.TaskCompleted(updated.ID, rescheduled))

	if rescheduled {
		next := updated.Start
		if next == nil {
			next = updated.End
		}
		fmt.Fprintf(stdout, "Rescheduled %s: %s (next %s)\n", util.ShortID(updated.ID), updated.Text, formatTime(next))
		return nil
	}
	fmt.Fprintf(stdout, "Completed %s: %s\n", util.ShortID(updated.ID), updated.Text)
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	ctx := context.Background()
	var removed string
	err = w.mutate(func() error {
		id, err := w.resolveID(ctx, args[0])
		if err != nil {
			return err
		}
		removed = id
		return w.store.Remove(ctx, id)
	})
	if err != nil {
		return err
	}

	record(w.activity.TaskRemoved(removed))
	fmt.Fprintf(stdout, "Removed %s\n", util.ShortID(removed))
	return nil
}
