package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pablasso/triage/internal/todo"
	"github.com/pablasso/triage/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	editText       string
	editTags       []string
	editStart      string
	editEnd        string
	editTimeblock  string
	editAfter      []string
	editRepeat     string
	editSorted     bool
	editBackburner bool
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a task",
	Long:  `Change fields of a task. Only the flags given are touched; "none" clears --start, --end, --repeat, and an empty value clears --timeblock, --tag and --after.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&editText, "text", "", "New label")
	f.StringSliceVarP(&editTags, "tag", "t", nil, "Replace tags (repeatable)")
	f.StringVar(&editStart, "start", "", "Start time or none")
	f.StringVar(&editEnd, "end", "", "Deadline or none")
	f.StringVar(&editTimeblock, "timeblock", "", "Timeblock name")
	f.StringSliceVar(&editAfter, "after", nil, "Replace dependencies (repeatable)")
	f.StringVar(&editRepeat, "repeat", "", "Recurrence or none")
	f.BoolVar(&editSorted, "sorted", false, "Mark as sorted")
	f.BoolVar(&editBackburner, "backburner", false, "Move to the backburner")
}

func runEdit(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	ctx := context.Background()
	var (
		updated todo.Task
		fields  []string
	)
	err = w.mutate(func() error {
		tasks, err := w.store.List(ctx)
		if err != nil {
			return err
		}
		id, err := resolveIn(tasks, args[0])
		if err != nil {
			return err
		}

		patches, changed, err := editPatches(cmd.Flags(), tasks)
		if err != nil {
			return err
		}
		if len(patches) == 0 {
			return fmt.Errorf("nothing to change (see triage edit --help)")
		}
		fields = changed

		updated, err = w.store.Update(ctx, id, patches...)
		return err
	})
	if err != nil {
		return err
	}

	w.warnTimeblock(updated.Timeblock)
	record(w.activity.TaskUpdated(updated.ID, fields))

	fmt.Fprintf(stdout, "Updated %s: %s\n", util.ShortID(updated.ID), strings.Join(fields, ", "))
	return nil
}

// editPatches turns the flags the user set into patches, in flag order.
func editPatches(flags *pflag.FlagSet, tasks []todo.Task) ([]todo.Patch, []string, error) {
	var (
		patches []todo.Patch
		fields  []string
	)
	add := func(field string, p todo.Patch) {
		patches = append(patches, p)
		fields = append(fields, field)
	}

	if flags.Changed("text") {
		text := strings.TrimSpace(editText)
		if text == "" {
			return nil, nil, fmt.Errorf("--text must not be empty")
		}
		add("text", todo.SetText(text))
	}
	if flags.Changed("tag") {
		add("tags", todo.SetTags{Tags: todo.NewSet(nonEmpty(editTags)...)})
	}
	if flags.Changed("start") {
		t, err := parseTimeFlag(editStart)
		if err != nil {
			return nil, nil, fmt.Errorf("--start: %w", err)
		}
		add("start", todo.SetStart{Time: t})
	}
	if flags.Changed("end") {
		t, err := parseTimeFlag(editEnd)
		if err != nil {
			return nil, nil, fmt.Errorf("--end: %w", err)
		}
		add("end", todo.SetEnd{Time: t})
	}
	if flags.Changed("timeblock") {
		add("timeblock", todo.SetTimeblock(strings.TrimSpace(editTimeblock)))
	}
	if flags.Changed("after") {
		deps := todo.Set{}
		for _, arg := range nonEmpty(editAfter) {
			id, err := resolveIn(tasks, arg)
			if err != nil {
				return nil, nil, fmt.Errorf("--after: %w", err)
			}
			deps[id] = struct{}{}
		}
		add("dependencies", todo.SetDependencies{IDs: deps})
	}
	if flags.Changed("repeat") {
		r, err := parseRepeatFlag(editRepeat)
		if err != nil {
			return nil, nil, fmt.Errorf("--repeat: %w", err)
		}
		add("repeat", todo.SetRepeat{Repeat: r})
	}
	if flags.Changed("sorted") {
		add("sorted", todo.SetSorted(editSorted))
	}
	if flags.Changed("backburner") {
		add("backburner", todo.SetBackburner(editBackburner))
	}
	return patches, fields, nil
}

func nonEmpty(items []string) []string {
	out := items[:0:0]
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
