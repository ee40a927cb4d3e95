package sqlite

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the latest schema version supported by Migrate.
const SchemaVersion = 1

// Migrate creates or upgrades the schema to SchemaVersion in one transaction.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
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

	steps := []struct {
		name string
		sql  string
	}{
		{"create activities table", `
			CREATE TABLE IF NOT EXISTS activities (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				route TEXT NOT NULL DEFAULT '',
				distance_km REAL NOT NULL,
				duration_sec INTEGER NOT NULL,
				avg_kmh REAL NOT NULL,
				start_time TEXT NOT NULL,
				start_unix_ms INTEGER NOT NULL,
				path TEXT NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				private INTEGER NOT NULL DEFAULT 0,
				points_earned INTEGER NOT NULL DEFAULT 0
			);`},
		{"create idx_activities_start", `CREATE INDEX IF NOT EXISTS idx_activities_start ON activities(start_unix_ms DESC, seq DESC);`},
	}
	for _, st := range steps {
		if _, err := tx.Exec(st.sql); err != nil {
			return fmt.Errorf("migrate: %s: %w", st.name, err)
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
