package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pablasso/triage/internal/todo"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps tasks in a SQLite database. Tags and dependencies live
// in side tables; the position column carries display order.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("open sqlite: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps PRAGMA foreign_keys in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite: enable foreign keys: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// List returns all tasks ordered by position.
func (s *SQLiteStore) List(ctx context.Context) ([]todo.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, done, sorted, backburner, start_at, end_at, timeblock, repeat_unit, repeat_amount, added_at FROM tasks ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: query: %w", err)
	}
	defer rows.Close()

	tasks := make([]todo.Task, 0)
	index := make(map[string]int)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: rows: %w", err)
	}

	if err := s.loadSets(ctx, `SELECT task_id, tag FROM task_tags`, func(id, value string) {
		if i, ok := index[id]; ok {
			tasks[i].Tags[value] = struct{}{}
		}
	}); err != nil {
		return nil, fmt.Errorf("list tasks: tags: %w", err)
	}
	if err := s.loadSets(ctx, `SELECT task_id, depends_on FROM task_dependencies`, func(id, value string) {
		if i, ok := index[id]; ok {
			tasks[i].Dependencies[value] = struct{}{}
		}
	}); err != nil {
		return nil, fmt.Errorf("list tasks: dependencies: %w", err)
	}

	return tasks, nil
}

// Add inserts t ahead of every stored task.
func (s *SQLiteStore) Add(ctx context.Context, t todo.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add task: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, t.ID).Scan(&exists); err != nil {
		return fmt.Errorf("add task: check id: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}

	var position int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MIN(position), 1) - 1 FROM tasks`).Scan(&position); err != nil {
		return fmt.Errorf("add task: position: %w", err)
	}

	start, end := nullTime(t.Start), nullTime(t.End)
	unit, amount := nullRepeat(t.Repeat)
	_, err = tx.ExecContext(ctx, `INSERT INTO tasks (id, position, text, done, sorted, backburner, start_at, end_at, timeblock, repeat_unit, repeat_amount, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, position, t.Text, t.Done, t.Sorted, t.Backburner, start, end, t.Timeblock, unit, amount, t.Added.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("add task: insert: %w", err)
	}

	if err := writeSets(ctx, tx, t); err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add task: commit: %w", err)
	}
	return nil
}

// Update applies patches inside a transaction.
func (s *SQLiteStore) Update(ctx context.Context, id string, patches ...todo.Patch) (todo.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return todo.Task{}, fmt.Errorf("update task: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `SELECT id, text, done, sorted, backburner, start_at, end_at, timeblock, repeat_unit, repeat_amount, added_at FROM tasks WHERE id = ?`, id)
	current, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return todo.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return todo.Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := readSets(ctx, tx, &current); err != nil {
		return todo.Task{}, fmt.Errorf("update task: %w", err)
	}

	updated, err := todo.Apply(current, patches...)
	if err != nil {
		return todo.Task{}, err
	}

	start, end := nullTime(updated.Start), nullTime(updated.End)
	unit, amount := nullRepeat(updated.Repeat)
	_, err = tx.ExecContext(ctx, `UPDATE tasks SET text = ?, done = ?, sorted = ?, backburner = ?, start_at = ?, end_at = ?, timeblock = ?, repeat_unit = ?, repeat_amount = ? WHERE id = ?`,
		updated.Text, updated.Done, updated.Sorted, updated.Backburner, start, end, updated.Timeblock, unit, amount, id)
	if err != nil {
		return todo.Task{}, fmt.Errorf("update task: write: %w", err)
	}

	for _, table := range []string{"task_tags", "task_dependencies"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE task_id = ?`, id); err != nil {
			return todo.Task{}, fmt.Errorf("update task: clear %s: %w", table, err)
		}
	}
	if err := writeSets(ctx, tx, updated); err != nil {
		return todo.Task{}, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return todo.Task{}, fmt.Errorf("update task: commit: %w", err)
	}
	return updated, nil
}

// Remove deletes a task and its tag and dependency rows.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove task: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (todo.Task, error) {
	var (
		t            todo.Task
		start, end   sql.NullString
		repeatUnit   sql.NullString
		repeatAmount sql.NullInt64
		addedAt      string
	)
	if err := row.Scan(&t.ID, &t.Text, &t.Done, &t.Sorted, &t.Backburner, &start, &end, &t.Timeblock, &repeatUnit, &repeatAmount, &addedAt); err != nil {
		return todo.Task{}, err
	}

	var err error
	if t.Start, err = parseNullTime(start); err != nil {
		return todo.Task{}, fmt.Errorf("task %s: parse start_at: %w", t.ID, err)
	}
	if t.End, err = parseNullTime(end); err != nil {
		return todo.Task{}, fmt.Errorf("task %s: parse end_at: %w", t.ID, err)
	}
	added, err := time.Parse(time.RFC3339Nano, addedAt)
	if err != nil {
		return todo.Task{}, fmt.Errorf("task %s: parse added_at: %w", t.ID, err)
	}
	t.Added = added.Local()
	if repeatUnit.Valid {
		unit, err := todo.ParseUnit(repeatUnit.String)
		if err != nil {
			return todo.Task{}, fmt.Errorf("task %s: %w", t.ID, err)
		}
		t.Repeat = &todo.Repeat{Unit: unit, Amount: int(repeatAmount.Int64)}
	}
	t.Tags = todo.Set{}
	t.Dependencies = todo.Set{}
	return t, nil
}

func (s *SQLiteStore) loadSets(ctx context.Context, query string, add func(id, value string)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return err
		}
		add(id, value)
	}
	return rows.Err()
}

func readSets(ctx context.Context, tx *sql.Tx, t *todo.Task) error {
	queries := []struct {
		sql string
		set todo.Set
	}{
		{`SELECT tag FROM task_tags WHERE task_id = ?`, t.Tags},
		{`SELECT depends_on FROM task_dependencies WHERE task_id = ?`, t.Dependencies},
	}
	for _, q := range queries {
		rows, err := tx.QueryContext(ctx, q.sql, t.ID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var value string
			if err := rows.Scan(&value); err != nil {
				rows.Close()
				return err
			}
			q.set[value] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}

func writeSets(ctx context.Context, tx *sql.Tx, t todo.Task) error {
	for _, tag := range t.Tags.Slice() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO task_tags (task_id, tag) VALUES (?, ?)`, t.ID, tag); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	for _, dep := range t.Dependencies.Slice() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO task_dependencies (task_id, depends_on) VALUES (?, ?)`, t.ID, dep); err != nil {
			return fmt.Errorf("insert dependency: %w", err)
		}
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	local := t.Local()
	return &local, nil
}

func nullRepeat(r *todo.Repeat) (unit, amount any) {
	if r == nil {
		return nil, nil
	}
	return string(r.Unit), r.Amount
}
