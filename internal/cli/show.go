package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pablasso/triage/internal/todo"
	"github.com/pablasso/triage/internal/util"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task and why it sits where it does",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	tasks, err := w.store.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	id, err := resolveIn(tasks, args[0])
	if err != nil {
		return err
	}
	task, ok := todo.ResolveCurrent(tasks, id)
	if !ok {
		return fmt.Errorf("task %s disappeared", id)
	}

	now := nowFunc()
	section := sectionOf(w.classifier.Classify(tasks, nil, now), task.ID)

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", task.ID)
	fmt.Fprintf(tw, "Text:\t%s\n", task.Text)
	fmt.Fprintf(tw, "Section:\t%s\n", section)
	fmt.Fprintf(tw, "Tags:\t%s\n", formatTags(task.Tags))
	fmt.Fprintf(tw, "Start:\t%s\n", formatTime(task.Start))
	end := formatTime(task.End)
	if task.Overdue(now) {
		end += " (overdue)"
	}
	fmt.Fprintf(tw, "End:\t%s\n", end)
	if task.Timeblock != "" {
		fmt.Fprintf(tw, "Timeblock:\t%s\n", task.Timeblock)
	}
	if task.Repeat != nil {
		fmt.Fprintf(tw, "Repeat:\t%s\n", task.Repeat)
	}
	for _, dep := range task.Dependencies.Slice() {
		label := "(missing)"
		if t, ok := todo.ResolveCurrent(tasks, dep); ok {
			label = t.Text
		}
		fmt.Fprintf(tw, "After:\t%s %s\n", util.ShortID(dep), label)
	}
	fmt.Fprintf(tw, "Added:\t%s (%s)\n", task.Added.Format(displayLayout), formatAge(task.Added))
	if err := tw.Flush(); err != nil {
		return err
	}

	if section != todo.SectionBlocked {
		return nil
	}
	fmt.Fprintln(stdout, "\nBlocked because:")
	for _, reason := range w.classifier.BlockReasons(tasks, task, now) {
		fmt.Fprintf(stdout, "  - %s\n", reason)
	}
	return nil
}

func sectionOf(sections []todo.Section, id string) todo.SectionName {
	for _, s := range sections {
		if _, ok := todo.ResolveCurrent(s.Tasks, id); ok {
			return s.Name
		}
	}
	return ""
}
