package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in version order on startup. Never edit an applied
// migration; append a new version instead.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_measurements",
		SQL: `
			CREATE TABLE IF NOT EXISTS measurements (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				trajectory_id INTEGER NOT NULL,
				time INTEGER NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				matched INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_measurements_trajectory_time
				ON measurements(trajectory_id, matched, time);
		`,
	},
	{
		Version: 2,
		Name:    "create_analysis_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS analysis_tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				skill_name TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				params_json TEXT NOT NULL DEFAULT '{}',
				progress_percent REAL NOT NULL DEFAULT 0,
				total_items INTEGER NOT NULL DEFAULT 0,
				processed_items INTEGER NOT NULL DEFAULT 0,
				failed_items INTEGER NOT NULL DEFAULT 0,
				result_summary TEXT,
				error_message TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				started_at TIMESTAMP,
				completed_at TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_transition_stats",
		SQL: `
			CREATE TABLE IF NOT EXISTS transition_stats (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				task_id INTEGER NOT NULL,
				from_cell_x INTEGER NOT NULL,
				from_cell_y INTEGER NOT NULL,
				to_cell_x INTEGER NOT NULL,
				to_cell_y INTEGER NOT NULL,
				count INTEGER NOT NULL,
				mean_dwell REAL NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_transition_stats_count
				ON transition_stats(count DESC);
		`,
	},
	{
		Version: 4,
		Name:    "create_partition_index",
		SQL: `
			CREATE TABLE IF NOT EXISTS partition_index (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				task_id INTEGER NOT NULL,
				cell_index INTEGER NOT NULL,
				cell_x INTEGER NOT NULL,
				cell_y INTEGER NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_partition_index_task_cell
				ON partition_index(task_id, cell_x, cell_y);
		`,
	},
}

// Migrate applies all pending built-in migrations
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		log.Printf("Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

// initMigrationsTable creates the migrations tracking table
func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedMigrations returns the set of applied migration versions
func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}
