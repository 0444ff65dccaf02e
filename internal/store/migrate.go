package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the latest schema version supported by the migrator.
const SchemaVersion = 1

// Migrate creates the task tables if the database is older than SchemaVersion.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current)
	if err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}

	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	statements := []struct {
		name string
		sql  string
	}{
		{"tasks table", `
			CREATE TABLE IF NOT EXISTS tasks (
				id TEXT PRIMARY KEY,
				position INTEGER NOT NULL,
				text TEXT NOT NULL,
				done INTEGER NOT NULL DEFAULT 0,
				sorted INTEGER NOT NULL DEFAULT 0,
				backburner INTEGER NOT NULL DEFAULT 0,
				start_at TEXT NULL,
				end_at TEXT NULL,
				timeblock TEXT NOT NULL DEFAULT '',
				repeat_unit TEXT NULL,
				repeat_amount INTEGER NULL,
				added_at TEXT NOT NULL
			);`},
		{"task_tags table", `
			CREATE TABLE IF NOT EXISTS task_tags (
				task_id TEXT NOT NULL,
				tag TEXT NOT NULL,
				PRIMARY KEY (task_id, tag),
				FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
			);`},
		{"task_dependencies table", `
			CREATE TABLE IF NOT EXISTS task_dependencies (
				task_id TEXT NOT NULL,
				depends_on TEXT NOT NULL,
				PRIMARY KEY (task_id, depends_on),
				FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
			);`},
		{"idx_tasks_position", `CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);`},
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt.sql); err != nil {
			return fmt.Errorf("migrate: create %s: %w", stmt.name, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit transaction: %w", err)
	}

	return nil
}
