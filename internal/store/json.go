package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pablasso/triage/internal/todo"
)

// JSONStore keeps tasks as a flat JSON array of records in a single file.
// Every call reads the file; writes replace it atomically.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by path. The file is created on first write.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

// List reads all tasks. A missing file is an empty list.
func (s *JSONStore) List(ctx context.Context) ([]todo.Task, error) {
	return s.load()
}

// Add inserts t at the front of the list.
func (s *JSONStore) Add(ctx context.Context, t todo.Task) error {
	tasks, err := s.load()
	if err != nil {
		return err
	}
	if indexOf(tasks, t.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	return s.save(append([]todo.Task{t}, tasks...))
}

// Update patches one task and rewrites the file.
func (s *JSONStore) Update(ctx context.Context, id string, patches ...todo.Patch) (todo.Task, error) {
	tasks, err := s.load()
	if err != nil {
		return todo.Task{}, err
	}
	_, updated, err := patchAt(tasks, id, patches)
	if err != nil {
		return todo.Task{}, err
	}
	if err := s.save(tasks); err != nil {
		return todo.Task{}, err
	}
	return updated, nil
}

// Remove deletes one task and rewrites the file.
func (s *JSONStore) Remove(ctx context.Context, id string) error {
	tasks, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.save(append(tasks[:i], tasks[i+1:]...))
}

// Close is a no-op; the store holds no open handles.
func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) load() ([]todo.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []todo.Task{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(s.path), err)
	}

	var records []todo.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(s.path), err)
	}

	tasks := make([]todo.Task, 0, len(records))
	for _, r := range records {
		t, err := todo.FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(s.path), err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// save writes through a temp file and rename so readers never see a partial file.
func (s *JSONStore) save(tasks []todo.Task) error {
	records := make([]todo.Record, len(tasks))
	for i, t := range tasks {
		records[i] = todo.ToRecord(t)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.tmp.%d", s.path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
