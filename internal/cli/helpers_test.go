package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pablasso/triage/internal/config"
	"github.com/pablasso/triage/internal/store"
	"github.com/pablasso/triage/internal/testutil"
	"github.com/pablasso/triage/internal/todo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Wednesday, inside every default timeblock except "Weekend".
var testNow = time.Date(2024, 6, 12, 10, 30, 0, 0, time.Local)

// setupCLI chdirs into a fresh directory, pins the clock and captures output.
// With initialized set it also runs `triage init`.
func setupCLI(t *testing.T, initialized bool) *bytes.Buffer {
	t.Helper()
	testutil.SetupTestDir(t)

	out := &bytes.Buffer{}
	origStdout, origStdin, origNow, origDir := stdout, stdin, nowFunc, triageDir
	stdout = out
	stdin = strings.NewReader("")
	nowFunc = func() time.Time { return testNow }
	triageDir = config.DirName
	t.Cleanup(func() {
		stdout, stdin, nowFunc, triageDir = origStdout, origStdin, origNow, origDir
	})

	if initialized {
		if err := runInit(nil, nil); err != nil {
			t.Fatalf("runInit: %v", err)
		}
		out.Reset()
	}
	return out
}

// execute runs the root command with args and resets every flag afterwards
// so package-level flag variables do not leak between runs.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	for _, cmd := range rootCmd.Commands() {
		resetFlags(cmd)
	}
	return err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// tasksOnDisk reads the default JSON store directly.
func tasksOnDisk(t *testing.T) []todo.Task {
	t.Helper()
	s := store.NewJSONStore(filepath.Join(config.DirName, "tasks.json"))
	tasks, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("failed to read tasks: %v", err)
	}
	return tasks
}

// seed writes tasks straight to the JSON store, first task first.
func seed(t *testing.T, tasks ...todo.Task) {
	t.Helper()
	s := store.NewJSONStore(filepath.Join(config.DirName, "tasks.json"))
	for i := len(tasks) - 1; i >= 0; i-- {
		if err := s.Add(context.Background(), tasks[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
