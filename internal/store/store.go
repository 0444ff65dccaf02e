// Package store persists tasks. Backends keep the task order the user sees:
// new tasks go to the front, updates keep position.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pablasso/triage/internal/todo"
)

// Backend names accepted in configuration.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var (
	// ErrNotFound is returned when no task has the requested ID.
	ErrNotFound = errors.New("task not found")
	// ErrDuplicateID is returned when adding a task whose ID is already stored.
	ErrDuplicateID = errors.New("task id already exists")
)

// Store is an ordered collection of tasks with field-level updates.
type Store interface {
	// List returns every task in display order.
	List(ctx context.Context) ([]todo.Task, error)
	// Add inserts a task at the front.
	Add(ctx context.Context, t todo.Task) error
	// Update applies patches to the task with the given ID and returns the result.
	Update(ctx context.Context, id string, patches ...todo.Patch) (todo.Task, error)
	// Remove deletes a task. Dependencies on it are left dangling.
	Remove(ctx context.Context, id string) error
	Close() error
}

// Options selects and locates a backend.
type Options struct {
	Backend string
	Path    string
}

// DefaultPath returns the file a backend uses inside dataDir.
func DefaultPath(backend, dataDir string) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(dataDir, "tasks.db")
	case BackendJSON, "":
		return filepath.Join(dataDir, "tasks.json")
	}
	return ""
}

// Open returns the backend described by opts. Relative paths resolve
// against dataDir.
func Open(opts Options, dataDir string) (Store, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath(opts.Backend, dataDir)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, path)
	}

	switch opts.Backend {
	case BackendJSON, "":
		return NewJSONStore(path), nil
	case BackendSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q (expected json|sqlite|memory)", opts.Backend)
}

// patchAt applies patches to tasks[i] in place.
func patchAt(tasks []todo.Task, id string, patches []todo.Patch) (int, todo.Task, error) {
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		updated, err := todo.Apply(tasks[i], patches...)
		if err != nil {
			return -1, todo.Task{}, err
		}
		tasks[i] = updated
		return i, updated, nil
	}
	return -1, todo.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func indexOf(tasks []todo.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
