package postgresql_test

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/database"
)

// TestDatabaseSetup holds the connection used by repository tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL. ok is false when the variable is unset.
func NewTestDatabase(ctx context.Context) (setup *TestDatabaseSetup, ok bool, err error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, false, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4})
	if err != nil {
		return nil, true, fmt.Errorf("failed to connect to test database: %w", err)
	}

	return &TestDatabaseSetup{DB: db}, true, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id            TEXT PRIMARY KEY,
		employee_name TEXT,
		company       TEXT,
		department    TEXT,
		default_shift TEXT,
		status        TEXT NOT NULL DEFAULT 'Active'
	)`,
	`CREATE TABLE IF NOT EXISTS shift_types (
		id         TEXT PRIMARY KEY,
		name       TEXT,
		start_time TIME,
		end_time   TIME
	)`,
	`CREATE TABLE IF NOT EXISTS shift_assignments (
		id          BIGSERIAL PRIMARY KEY,
		employee_id TEXT NOT NULL,
		shift_type  TEXT,
		start_date  DATE NOT NULL,
		end_date    DATE,
		status      TEXT NOT NULL DEFAULT 'Active',
		docstatus   SMALLINT NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS employee_checkins (
		id       BIGSERIAL PRIMARY KEY,
		employee TEXT NOT NULL,
		time     TIMESTAMPTZ NOT NULL,
		log_type TEXT
	)`,
}

// Migrate creates the mirrored HR tables when they do not exist.
func (t *TestDatabaseSetup) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := t.DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// TruncateAllTables removes every row from the mirrored HR tables.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"employees",
		"shift_types",
		"shift_assignments",
		"employee_checkins",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection.
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
