// Package testutil provides testing utilities for the triage project.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pablasso/triage/internal/todo"
)

// SetupTestDir creates a temp directory, resolves symlinks (for macOS),
// changes to it, and registers cleanup to restore the original working directory.
// Returns the resolved temp directory path.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	// Resolve symlinks for macOS (/var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(tmpDir); err != nil {
		t.Logf("warning: could not resolve symlinks for temp dir: %v", err)
	} else {
		tmpDir = resolved
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}

	t.Cleanup(func() {
		os.Chdir(originalWd)
	})

	return tmpDir
}

// Task builds a sorted task for fixtures. Options tweak it in place.
func Task(id, text string, opts ...func(*todo.Task)) todo.Task {
	t := todo.New(id, text, time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local))
	t.Sorted = true
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
