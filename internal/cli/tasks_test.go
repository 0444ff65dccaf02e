package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pablasso/triage/internal/store"
	"github.com/pablasso/triage/internal/testutil"
	"github.com/pablasso/triage/internal/todo"
)

func TestAdd(t *testing.T) {
	t.Run("adds an unsorted task at the front", func(t *testing.T) {
		out := setupCLI(t, true)
		seed(t, testutil.Task("old", "existing"))

		if err := execute(t, "add", "buy", "milk", "--tag", "Groceries", "--end", "2024-06-13 18:00"); err != nil {
			t.Fatalf("add: %v", err)
		}

		tasks := tasksOnDisk(t)
		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
		got := tasks[0]
		if got.Text != "buy milk" || got.Sorted || !got.Tags.Has("Groceries") {
			t.Errorf("unexpected task %+v", got)
		}
		want := time.Date(2024, 6, 13, 18, 0, 0, 0, time.Local)
		if got.End == nil || !got.End.Equal(want) {
			t.Errorf("end: got %v, want %v", got.End, want)
		}
		if !got.Added.Equal(testNow) {
			t.Errorf("added: got %v", got.Added)
		}
		if !strings.HasPrefix(out.String(), "Added ") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("resolves --after prefixes and sets every field", func(t *testing.T) {
		setupCLI(t, true)
		seed(t, testutil.Task("abc123", "first"))

		err := execute(t, "add", "second",
			"--after", "abc",
			"--sorted",
			"--start", "2024-06-12",
			"--timeblock", "Weekdays",
			"--repeat", "1w",
		)
		if err != nil {
			t.Fatalf("add: %v", err)
		}

		got := tasksOnDisk(t)[0]
		if !got.Dependencies.Has("abc123") {
			t.Errorf("expected dependency on abc123, got %v", got.Dependencies.Slice())
		}
		if !got.Sorted || got.Timeblock != "Weekdays" {
			t.Errorf("unexpected task %+v", got)
		}
		if got.Repeat == nil || *got.Repeat != (todo.Repeat{Unit: todo.UnitWeek, Amount: 1}) {
			t.Errorf("repeat: got %+v", got.Repeat)
		}
		if got.Start == nil || !got.Start.Equal(time.Date(2024, 6, 12, 0, 0, 0, 0, time.Local)) {
			t.Errorf("start: got %v", got.Start)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		tests := []struct {
			name    string
			args    []string
			errPart string
		}{
			{"blank text", []string{"add", "  "}, "task text is required"},
			{"bad end", []string{"add", "x", "--end", "tomorrow"}, "--end"},
			{"bad repeat", []string{"add", "x", "--repeat", "1q"}, "--repeat"},
			{"unknown dependency", []string{"add", "x", "--after", "nope"}, "task not found"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				setupCLI(t, true)
				err := execute(t, tt.args...)
				if err == nil || !strings.Contains(err.Error(), tt.errPart) {
					t.Fatalf("expected error containing %q, got %v", tt.errPart, err)
				}
				if len(tasksOnDisk(t)) != 0 {
					t.Error("expected nothing stored")
				}
			})
		}
	})

	t.Run("requires init", func(t *testing.T) {
		setupCLI(t, false)
		err := execute(t, "add", "x")
		if err == nil || !strings.Contains(err.Error(), "not initialized") {
			t.Fatalf("expected not initialized error, got %v", err)
		}
	})
}

func TestList(t *testing.T) {
	later := testNow.Add(2 * time.Hour)
	sooner := testNow.Add(time.Hour)
	overdue := testNow.Add(-time.Hour)

	setup := func(t *testing.T) {
		t.Helper()
		unsorted := testutil.Task("u1", "inbox item")
		unsorted.Sorted = false
		seed(t,
			unsorted,
			testutil.Task("m-late", "late task", func(tk *todo.Task) { tk.End = &later }),
			testutil.Task("m-soon", "soon task", func(tk *todo.Task) { tk.End = &sooner; tk.Tags = todo.NewSet("Work") }),
			testutil.Task("m-over", "overdue task", func(tk *todo.Task) { tk.End = &overdue }),
			testutil.Task("bl", "blocked task", func(tk *todo.Task) { tk.Dependencies = todo.NewSet("u1") }),
			testutil.Task("bb", "someday", func(tk *todo.Task) { tk.Backburner = true }),
			testutil.Task("dn", "finished", func(tk *todo.Task) { tk.Done = true }),
		)
	}

	t.Run("prints five sections in order with main by deadline", func(t *testing.T) {
		out := setupCLI(t, true)
		setup(t)

		if err := execute(t, "list"); err != nil {
			t.Fatalf("list: %v", err)
		}
		s := out.String()

		order := []string{"Unsorted (1)", "inbox item", "Main (3)", "overdue task", "soon task", "late task",
			"Backburner (1)", "someday", "Blocked (1)", "blocked task", "Done (1)", "finished"}
		last := -1
		for _, want := range order {
			idx := strings.Index(s, want)
			if idx < 0 {
				t.Fatalf("expected %q in output:\n%s", want, s)
			}
			if idx < last {
				t.Errorf("%q out of order in:\n%s", want, s)
			}
			last = idx
		}
		if !strings.Contains(s, "(overdue)") {
			t.Errorf("expected overdue marker:\n%s", s)
		}
	})

	t.Run("tag filter", func(t *testing.T) {
		out := setupCLI(t, true)
		setup(t)

		if err := execute(t, "list", "--tag", "Work"); err != nil {
			t.Fatalf("list: %v", err)
		}
		s := out.String()
		if !strings.Contains(s, "Main (1)") || !strings.Contains(s, "soon task") {
			t.Errorf("expected only the Work task:\n%s", s)
		}
		if strings.Contains(s, "late task") || !strings.Contains(s, "Done (0)") {
			t.Errorf("expected other tasks filtered:\n%s", s)
		}
	})

	t.Run("--at moves the clock", func(t *testing.T) {
		out := setupCLI(t, true)
		start := testNow.Add(24 * time.Hour)
		seed(t, testutil.Task("s", "tomorrow", func(tk *todo.Task) { tk.Start = &start }))

		if err := execute(t, "list"); err != nil {
			t.Fatalf("list: %v", err)
		}
		if !strings.Contains(out.String(), "Blocked (1)") {
			t.Errorf("expected blocked before start:\n%s", out.String())
		}

		out.Reset()
		if err := execute(t, "list", "--at", "2024-06-14 10:00"); err != nil {
			t.Fatalf("list --at: %v", err)
		}
		if !strings.Contains(out.String(), "Main (1)") {
			t.Errorf("expected main after start:\n%s", out.String())
		}
	})

	t.Run("empty store still lists every section", func(t *testing.T) {
		out := setupCLI(t, true)
		if err := execute(t, "list"); err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, name := range todo.SectionOrder {
			if !strings.Contains(out.String(), string(name)+" (0)") {
				t.Errorf("expected %s (0) in:\n%s", name, out.String())
			}
		}
	})
}

func TestShow(t *testing.T) {
	out := setupCLI(t, true)
	start := testNow.Add(time.Hour)
	seed(t,
		testutil.Task("dep1", "prerequisite"),
		testutil.Task("target", "the task", func(tk *todo.Task) {
			tk.Dependencies = todo.NewSet("dep1", "ghost")
			tk.Start = &start
			tk.Timeblock = "Weekend"
			tk.Tags = todo.NewSet("Home")
		}),
	)

	if err := execute(t, "show", "targ"); err != nil {
		t.Fatalf("show: %v", err)
	}
	s := out.String()
	for _, want := range []string{
		"the task",
		"Blocked",
		"Home",
		"dep1 prerequisite",
		"ghost (missing)",
		"Blocked because:",
		"waiting on dep1",
		"waiting on ghost",
		"starts 2024-06-12 11:30",
		`outside timeblock "Weekend"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in output:\n%s", want, s)
		}
	}

	err := execute(t, "show", "zzz")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEdit(t *testing.T) {
	t.Run("applies only the flags given", func(t *testing.T) {
		out := setupCLI(t, true)
		end := testNow.Add(time.Hour)
		seed(t,
			testutil.Task("a", "original", func(tk *todo.Task) {
				tk.End = &end
				tk.Tags = todo.NewSet("Home")
			}),
			testutil.Task("b", "other"),
		)

		err := execute(t, "edit", "a", "--text", "renamed", "--end", "none", "--after", "b", "--backburner")
		if err != nil {
			t.Fatalf("edit: %v", err)
		}

		var got todo.Task
		for _, tk := range tasksOnDisk(t) {
			if tk.ID == "a" {
				got = tk
			}
		}
		if got.Text != "renamed" || got.End != nil || !got.Backburner || !got.Dependencies.Has("b") {
			t.Errorf("unexpected task %+v", got)
		}
		if !got.Tags.Has("Home") {
			t.Error("expected untouched tags kept")
		}
		if !strings.Contains(out.String(), "text, end, dependencies, backburner") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("clears tags and dependencies with empty values", func(t *testing.T) {
		setupCLI(t, true)
		seed(t,
			testutil.Task("a", "tagged", func(tk *todo.Task) {
				tk.Tags = todo.NewSet("Home")
				tk.Dependencies = todo.NewSet("b")
			}),
			testutil.Task("b", "other"),
		)

		if err := execute(t, "edit", "a", "--tag=", "--after="); err != nil {
			t.Fatalf("edit: %v", err)
		}
		got := tasksOnDisk(t)[0]
		if len(got.Tags) != 0 || len(got.Dependencies) != 0 {
			t.Errorf("expected cleared sets, got %+v", got)
		}
	})

	t.Run("rejects self dependency", func(t *testing.T) {
		setupCLI(t, true)
		seed(t, testutil.Task("a", "loop"))

		err := execute(t, "edit", "a", "--after", "a")
		if !errors.Is(err, todo.ErrSelfDependency) {
			t.Fatalf("expected ErrSelfDependency, got %v", err)
		}
		if len(tasksOnDisk(t)[0].Dependencies) != 0 {
			t.Error("expected task unchanged")
		}
	})

	t.Run("requires at least one flag", func(t *testing.T) {
		setupCLI(t, true)
		seed(t, testutil.Task("a", "task"))

		err := execute(t, "edit", "a")
		if err == nil || !strings.Contains(err.Error(), "nothing to change") {
			t.Fatalf("expected nothing to change error, got %v", err)
		}
	})

	t.Run("ambiguous id", func(t *testing.T) {
		setupCLI(t, true)
		seed(t, testutil.Task("ab1", "one"), testutil.Task("ab2", "two"))

		err := execute(t, "edit", "ab", "--sorted=false")
		if err == nil || !strings.Contains(err.Error(), "ambiguous") {
			t.Fatalf("expected ambiguous error, got %v", err)
		}
	})
}

func TestDoneAndRm(t *testing.T) {
	t.Run("done completes a plain task", func(t *testing.T) {
		out := setupCLI(t, true)
		seed(t, testutil.Task("a", "chore"))

		if err := execute(t, "done", "a"); err != nil {
			t.Fatalf("done: %v", err)
		}
		if !tasksOnDisk(t)[0].Done {
			t.Error("expected task done")
		}
		if !strings.Contains(out.String(), "Completed a: chore") {
			t.Errorf("unexpected output %q", out.String())
		}

		events, err := store.ReadActivity(".triage")
		if err != nil {
			t.Fatalf("ReadActivity: %v", err)
		}
		if len(events) != 1 || events[0].Event != store.EventTaskCompleted {
			t.Errorf("expected one completion event, got %+v", events)
		}
	})

	t.Run("done reschedules a repeating task", func(t *testing.T) {
		out := setupCLI(t, true)
		start := testNow.Add(-time.Hour)
		seed(t, testutil.Task("a", "water plants", func(tk *todo.Task) {
			tk.Start = &start
			tk.Repeat = &todo.Repeat{Unit: todo.UnitDay, Amount: 2}
		}))

		if err := execute(t, "done", "a"); err != nil {
			t.Fatalf("done: %v", err)
		}
		got := tasksOnDisk(t)[0]
		if got.Done {
			t.Error("expected repeating task to stay open")
		}
		if !got.Start.Equal(start.AddDate(0, 0, 2)) {
			t.Errorf("start: got %v", got.Start)
		}
		if !strings.Contains(out.String(), "Rescheduled") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("rm deletes and leaves dependents blocked", func(t *testing.T) {
		out := setupCLI(t, true)
		seed(t,
			testutil.Task("a", "first"),
			testutil.Task("b", "second", func(tk *todo.Task) { tk.Dependencies = todo.NewSet("a") }),
		)

		if err := execute(t, "rm", "a"); err != nil {
			t.Fatalf("rm: %v", err)
		}
		tasks := tasksOnDisk(t)
		if len(tasks) != 1 || tasks[0].ID != "b" {
			t.Fatalf("unexpected tasks %+v", tasks)
		}
		if !strings.Contains(out.String(), "Removed a") {
			t.Errorf("unexpected output %q", out.String())
		}

		out.Reset()
		if err := execute(t, "list"); err != nil {
			t.Fatalf("list: %v", err)
		}
		if !strings.Contains(out.String(), "Blocked (1)") {
			t.Errorf("expected dependent blocked on missing task:\n%s", out.String())
		}
	})

	t.Run("mutations fail while another process holds the lock", func(t *testing.T) {
		setupCLI(t, true)
		seed(t, testutil.Task("a", "chore"))

		lock := store.NewLock(".triage")
		if err := lock.Acquire(); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		defer lock.Release()

		err := execute(t, "done", "a")
		if err == nil || !strings.Contains(err.Error(), "locked") {
			t.Fatalf("expected lock error, got %v", err)
		}
		if tasksOnDisk(t)[0].Done {
			t.Error("expected task unchanged")
		}
	})
}

func TestTagsAndTimeblocks(t *testing.T) {
	t.Run("tags lists vocabulary then extras", func(t *testing.T) {
		out := setupCLI(t, true)
		seed(t,
			testutil.Task("a", "x", func(tk *todo.Task) { tk.Tags = todo.NewSet("Work", "Garden") }),
			testutil.Task("b", "y", func(tk *todo.Task) { tk.Tags = todo.NewSet("Work") }),
		)

		if err := execute(t, "tags"); err != nil {
			t.Fatalf("tags: %v", err)
		}
		s := out.String()
		if !strings.Contains(s, "1    Home") {
			t.Errorf("expected Home on key 1:\n%s", s)
		}
		lines := strings.Split(s, "\n")
		var work, garden string
		for _, l := range lines {
			if strings.Contains(l, "Work") {
				work = l
			}
			if strings.Contains(l, "Garden") {
				garden = l
			}
		}
		if !strings.HasSuffix(strings.TrimSpace(work), "2") {
			t.Errorf("expected Work used twice, got %q", work)
		}
		if !strings.HasPrefix(garden, "-") || strings.Index(s, "Garden") < strings.Index(s, "Mentally Difficult") {
			t.Errorf("expected Garden listed after the vocabulary without a key, got %q", garden)
		}
	})

	t.Run("timeblocks reports which are open", func(t *testing.T) {
		out := setupCLI(t, true)

		if err := execute(t, "timeblocks"); err != nil {
			t.Fatalf("timeblocks: %v", err)
		}
		for _, l := range strings.Split(out.String(), "\n") {
			switch {
			case strings.HasPrefix(l, "Weekend"):
				if !strings.HasSuffix(strings.TrimSpace(l), "no") {
					t.Errorf("expected Weekend closed on a Wednesday: %q", l)
				}
			case strings.HasPrefix(l, "9 to 5 Weekdays"):
				if !strings.HasSuffix(strings.TrimSpace(l), "yes") {
					t.Errorf("expected 9 to 5 open at 10:30: %q", l)
				}
			}
		}

		out.Reset()
		if err := execute(t, "timeblocks", "--at", "2024-06-15 12:00"); err != nil {
			t.Fatalf("timeblocks --at: %v", err)
		}
		for _, l := range strings.Split(out.String(), "\n") {
			if strings.HasPrefix(l, "Weekend") && !strings.HasSuffix(strings.TrimSpace(l), "yes") {
				t.Errorf("expected Weekend open on a Saturday: %q", l)
			}
		}
	})
}
