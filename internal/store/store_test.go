package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pablasso/triage/internal/todo"
)

var added = time.Date(2024, 6, 12, 9, 0, 0, 0, time.Local)

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{"json", func(t *testing.T) Store {
			return NewJSONStore(filepath.Join(t.TempDir(), "tasks.json"))
		}},
		{"sqlite", func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			return s
		}},
		{"memory", func(t *testing.T) Store {
			return NewMemoryStore()
		}},
	}
}

func taskIDs(tasks []todo.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func fullTask(id string) todo.Task {
	t := todo.New(id, "task "+id, added)
	start := added.Add(time.Hour)
	end := added.Add(48 * time.Hour)
	t.Sorted = true
	t.Backburner = true
	t.Start = &start
	t.End = &end
	t.Timeblock = "Weekdays"
	t.Tags = todo.NewSet("Work", "Home")
	t.Dependencies = todo.NewSet("other")
	t.Repeat = &todo.Repeat{Unit: todo.UnitWeek, Amount: 1}
	return t
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("empty store lists nothing", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				tasks, err := s.List(ctx)
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				if len(tasks) != 0 {
					t.Errorf("expected no tasks, got %v", taskIDs(tasks))
				}
			})

			t.Run("add prepends", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				for _, id := range []string{"a", "b", "c"} {
					if err := s.Add(ctx, todo.New(id, "", added)); err != nil {
						t.Fatalf("Add(%s): %v", id, err)
					}
				}
				tasks, err := s.List(ctx)
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				if got := taskIDs(tasks); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
					t.Errorf("got %v, want [c b a]", got)
				}
			})

			t.Run("duplicate id is rejected", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				if err := s.Add(ctx, todo.New("a", "", added)); err != nil {
					t.Fatalf("Add: %v", err)
				}
				if err := s.Add(ctx, todo.New("a", "", added)); !errors.Is(err, ErrDuplicateID) {
					t.Errorf("expected ErrDuplicateID, got %v", err)
				}
			})

			t.Run("round trips every field", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				want := fullTask("a")
				if err := s.Add(ctx, want); err != nil {
					t.Fatalf("Add: %v", err)
				}
				tasks, err := s.List(ctx)
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				if len(tasks) != 1 {
					t.Fatalf("expected 1 task, got %d", len(tasks))
				}
				assertSameTask(t, tasks[0], want)
			})

			t.Run("update patches fields and keeps position", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				for _, id := range []string{"a", "b", "c"} {
					if err := s.Add(ctx, todo.New(id, "", added)); err != nil {
						t.Fatalf("Add(%s): %v", id, err)
					}
				}

				updated, err := s.Update(ctx, "b", todo.SetText("renamed"), todo.SetTags{Tags: todo.NewSet("Work")}, todo.SetSorted(true))
				if err != nil {
					t.Fatalf("Update: %v", err)
				}
				if updated.Text != "renamed" || !updated.Sorted {
					t.Errorf("unexpected updated task: %+v", updated)
				}

				tasks, err := s.List(ctx)
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				if got := taskIDs(tasks); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
					t.Errorf("order changed: got %v", got)
				}
				if !reflect.DeepEqual(tasks[1].Tags.Slice(), []string{"Work"}) {
					t.Errorf("tags: got %v", tasks[1].Tags.Slice())
				}
			})

			t.Run("update clears sets and optional fields", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				if err := s.Add(ctx, fullTask("a")); err != nil {
					t.Fatalf("Add: %v", err)
				}
				_, err := s.Update(ctx, "a",
					todo.SetTags{Tags: todo.Set{}},
					todo.SetDependencies{IDs: todo.Set{}},
					todo.SetStart{},
					todo.SetEnd{},
					todo.SetRepeat{},
				)
				if err != nil {
					t.Fatalf("Update: %v", err)
				}
				tasks, _ := s.List(ctx)
				got := tasks[0]
				if len(got.Tags) != 0 || len(got.Dependencies) != 0 || got.Start != nil || got.End != nil || got.Repeat != nil {
					t.Errorf("expected cleared fields, got %+v", got)
				}
			})

			t.Run("update unknown id", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				if _, err := s.Update(ctx, "missing", todo.SetDone(true)); !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
			})

			t.Run("update rejects self dependency", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				if err := s.Add(ctx, todo.New("a", "", added)); err != nil {
					t.Fatalf("Add: %v", err)
				}
				_, err := s.Update(ctx, "a", todo.SetDependencies{IDs: todo.NewSet("a")})
				if !errors.Is(err, todo.ErrSelfDependency) {
					t.Fatalf("expected ErrSelfDependency, got %v", err)
				}
				tasks, _ := s.List(ctx)
				if len(tasks[0].Dependencies) != 0 {
					t.Errorf("rejected patch was stored: %v", tasks[0].Dependencies.Slice())
				}
			})

			t.Run("remove", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				for _, id := range []string{"a", "b"} {
					if err := s.Add(ctx, fullTask(id)); err != nil {
						t.Fatalf("Add(%s): %v", id, err)
					}
				}
				if err := s.Remove(ctx, "a"); err != nil {
					t.Fatalf("Remove: %v", err)
				}
				if err := s.Remove(ctx, "a"); !errors.Is(err, ErrNotFound) {
					t.Errorf("second Remove: expected ErrNotFound, got %v", err)
				}
				tasks, _ := s.List(ctx)
				if got := taskIDs(tasks); !reflect.DeepEqual(got, []string{"b"}) {
					t.Errorf("got %v, want [b]", got)
				}
				if !reflect.DeepEqual(tasks[0].Tags.Slice(), []string{"Home", "Work"}) {
					t.Errorf("remaining task lost tags: %v", tasks[0].Tags.Slice())
				}
			})
		})
	}
}

func assertSameTask(t *testing.T, got, want todo.Task) {
	t.Helper()

	if got.ID != want.ID || got.Text != want.Text || got.Done != want.Done ||
		got.Sorted != want.Sorted || got.Backburner != want.Backburner || got.Timeblock != want.Timeblock {
		t.Errorf("scalar fields differ:\ngot  %+v\nwant %+v", got, want)
	}
	if !sameTime(got.Start, want.Start) || !sameTime(got.End, want.End) {
		t.Errorf("times differ: got start=%v end=%v, want start=%v end=%v", got.Start, got.End, want.Start, want.End)
	}
	if !got.Added.Equal(want.Added) {
		t.Errorf("added: got %v, want %v", got.Added, want.Added)
	}
	if !reflect.DeepEqual(got.Tags.Slice(), want.Tags.Slice()) {
		t.Errorf("tags: got %v, want %v", got.Tags.Slice(), want.Tags.Slice())
	}
	if !reflect.DeepEqual(got.Dependencies.Slice(), want.Dependencies.Slice()) {
		t.Errorf("dependencies: got %v, want %v", got.Dependencies.Slice(), want.Dependencies.Slice())
	}
	if !reflect.DeepEqual(got.Repeat, want.Repeat) {
		t.Errorf("repeat: got %v, want %v", got.Repeat, want.Repeat)
	}
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func TestJSONStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	s := NewJSONStore(path)

	if err := s.Add(context.Background(), fullTask("a")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read store file: %v", err)
	}
	if data[0] != '[' {
		t.Errorf("expected a JSON array, got %q", data[:20])
	}

	matches, _ := filepath.Glob(path + ".tmp.*")
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestJSONStore_LoadDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `[{"id":"a","text":"x","done":false,"sorted":true,"backburner":false,"tags":["Work","Work"],"dependencies":["b","b"],"added":"2024-06-12T09:00:00Z"}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	tasks, err := NewJSONStore(path).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := tasks[0].Tags.Slice(); !reflect.DeepEqual(got, []string{"Work"}) {
		t.Errorf("tags: got %v", got)
	}
	if got := tasks[0].Dependencies.Slice(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("dependencies: got %v", got)
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := NewJSONStore(path).List(context.Background()); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Add(ctx, fullTask("a")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task after reopen, got %d", len(tasks))
	}
	assertSameTask(t, tasks[0], fullTask("a"))
}

func TestMemoryStore_ListReturnsCopies(t *testing.T) {
	s := NewMemoryStore(fullTask("a"))

	tasks, _ := s.List(context.Background())
	tasks[0].Tags["Mutated"] = struct{}{}

	again, _ := s.List(context.Background())
	if again[0].Tags.Has("Mutated") {
		t.Error("List leaked internal state")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    Options
		want    any
		wantErr bool
	}{
		{"default is json", Options{}, &JSONStore{}, false},
		{"json", Options{Backend: BackendJSON}, &JSONStore{}, false},
		{"sqlite", Options{Backend: BackendSQLite}, &SQLiteStore{}, false},
		{"memory", Options{Backend: BackendMemory}, &MemoryStore{}, false},
		{"unknown", Options{Backend: "redis"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.opts, dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer s.Close()
			if reflect.TypeOf(s) != reflect.TypeOf(tt.want) {
				t.Errorf("got %T, want %T", s, tt.want)
			}
		})
	}

	t.Run("relative path resolves against data dir", func(t *testing.T) {
		s, err := Open(Options{Backend: BackendJSON, Path: "custom.json"}, dir)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if got := s.(*JSONStore).Path(); got != filepath.Join(dir, "custom.json") {
			t.Errorf("got %s", got)
		}
	})
}
