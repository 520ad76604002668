package storage

import (
	"database/sql"
	"fmt"

	"prio/internal/policy"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database and seeds the
// built-in policies.
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createPoliciesTable(tx); err != nil {
			return err
		}
		if err := createRunsTable(tx); err != nil {
			return err
		}
		if err := seedPolicies(tx, policy.Builtin()); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}

	db.logger.Info("Running database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Run migrations sequentially as the schema evolves.

	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func createPoliciesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS prioritization_policies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			risk_weight REAL NOT NULL DEFAULT 0,
			criticite_weight REAL NOT NULL DEFAULT 0,
			effort_weight REAL NOT NULL DEFAULT 0,
			coverage_weight REAL NOT NULL DEFAULT 0,
			recency_weight REAL NOT NULL DEFAULT 0,
			default_budget REAL NOT NULL DEFAULT 0,
			is_default INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create prioritization_policies table: %w", err)
	}
	return nil
}

func createRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS prioritization_runs (
			id TEXT PRIMARY KEY,
			repo_id INTEGER NOT NULL,
			budget REAL NOT NULL,
			weights TEXT NOT NULL,
			items_total INTEGER NOT NULL,
			items_selected INTEGER NOT NULL,
			effort_total REAL NOT NULL,
			effort_selected REAL NOT NULL,
			plan BLOB NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create prioritization_runs table: %w", err)
	}

	_, err = tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_repo_created
		ON prioritization_runs(repo_id, created_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs index: %w", err)
	}
	return nil
}

func seedPolicies(tx *sql.Tx, policies []policy.Policy) error {
	for _, p := range policies {
		_, err := tx.Exec(`
			INSERT INTO prioritization_policies (
				name, description, risk_weight, criticite_weight, effort_weight,
				coverage_weight, recency_weight, default_budget, is_default, is_active
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.Name, p.Description, p.Weights.Risk, p.Weights.Crit, p.Weights.Effort,
			p.Weights.Coverage, p.Weights.Recency, p.DefaultBudget,
			boolToInt(p.IsDefault), boolToInt(p.IsActive))
		if err != nil {
			return fmt.Errorf("failed to seed policy %q: %w", p.Name, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
