package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pablasso/triage/internal/todo"
	"github.com/spf13/cobra"
)

var timeblocksAt string

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tag vocabulary and tags in use",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

var timeblocksCmd = &cobra.Command{
	Use:   "timeblocks",
	Short: "List the timeblock catalog",
	Args:  cobra.NoArgs,
	RunE:  runTimeblocks,
}

func init() {
	timeblocksCmd.Flags().StringVar(&timeblocksAt, "at", "", "Report which timeblocks are open at this time instead of now")
}

func runTags(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	tasks, err := w.store.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	counts := make(map[string]int)
	for _, t := range tasks {
		for tag := range t.Tags {
			counts[tag]++
		}
	}

	// Configured vocabulary first in its order (it backs the board keys),
	// then anything else in use.
	names := slices.Clone(w.cfg.Tags)
	var extra []string
	for tag := range counts {
		if !slices.Contains(names, tag) {
			extra = append(extra, tag)
		}
	}
	slices.Sort(extra)
	names = append(names, extra...)

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTAG\tTASKS")
	for i, tag := range names {
		key := "-"
		if i < len(w.cfg.Tags) && i < 9 {
			key = fmt.Sprintf("%d", i+1)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", key, tag, counts[tag])
	}
	return tw.Flush()
}

func runTimeblocks(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	now := nowFunc()
	if timeblocksAt != "" {
		at, err := parseTimeFlag(timeblocksAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		if at != nil {
			now = *at
		}
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFROM\tTO\tDAYS\tOPEN")
	for _, r := range w.classifier.Catalog().Rules() {
		open := "no"
		if r.Contains(now) {
			open = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, clock(r.Start), clock(r.End), days(r.Days), open)
	}
	return tw.Flush()
}

func clock(c *todo.ClockTime) string {
	if c == nil {
		return "-"
	}
	return c.String()
}

func days(d []time.Weekday) string {
	if len(d) == 0 {
		return "every day"
	}
	names := make([]string, len(d))
	for i, day := range d {
		names[i] = day.String()[:3]
	}
	return strings.Join(names, " ")
}
