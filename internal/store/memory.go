package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/pablasso/triage/internal/todo"
)

// MemoryStore holds tasks in process memory. Tasks live in a map for lookup
// and a slice of IDs for display order. Nothing survives the process.
type MemoryStore struct {
	mu    sync.Mutex
	tasks map[string]todo.Task
	order []string
}

// NewMemoryStore returns a store seeded with tasks, kept in the given order.
func NewMemoryStore(tasks ...todo.Task) *MemoryStore {
	s := &MemoryStore{tasks: make(map[string]todo.Task, len(tasks))}
	for _, t := range tasks {
		if _, exists := s.tasks[t.ID]; exists {
			continue
		}
		s.tasks[t.ID] = t.Clone()
		s.order = append(s.order, t.ID)
	}
	return s
}

// List returns copies of all tasks in display order.
func (s *MemoryStore) List(ctx context.Context) ([]todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]todo.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Clone())
	}
	return out, nil
}

// Add inserts t at the front.
func (s *MemoryStore) Add(ctx context.Context, t todo.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	s.tasks[t.ID] = t.Clone()
	s.order = append([]string{t.ID}, s.order...)
	return nil
}

// Update applies patches under the lock.
func (s *MemoryStore) Update(ctx context.Context, id string, patches ...todo.Patch) (todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[id]
	if !ok {
		return todo.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated, err := todo.Apply(current, patches...)
	if err != nil {
		return todo.Task{}, err
	}
	s.tasks[id] = updated
	return updated.Clone(), nil
}

// Remove deletes a task.
func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.tasks, id)
	s.order = slices.DeleteFunc(s.order, func(other string) bool { return other == id })
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
