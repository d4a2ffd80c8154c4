package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SetupDatabase initializes the database connection and creates the schema
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	dbCfg := cfg.Database
	switch dbCfg.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if dir := filepath.Dir(dbCfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}

	db, err := sqlx.Connect(dbCfg.Driver, dbCfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	if dbCfg.Driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(dbCfg.MaxOpenConns)
		db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database.
// The statements are valid for both PostgreSQL and SQLite.
func createTables(db *sqlx.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			id VARCHAR(36) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			timezone VARCHAR(64) NOT NULL,
			is_archived BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			host_edit_token_hash VARCHAR(64) NOT NULL
		)`,
		// date_start is text so lexical order is chronological order
		`CREATE TABLE IF NOT EXISTS trip_dates (
			id VARCHAR(36) PRIMARY KEY,
			trip_id VARCHAR(36) NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			date_start VARCHAR(10) NOT NULL,
			label VARCHAR(255)
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id VARCHAR(36) PRIMARY KEY,
			trip_id VARCHAR(36) NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			display_name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS availability (
			id VARCHAR(36) PRIMARY KEY,
			trip_id VARCHAR(36) NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			participant_id VARCHAR(36) NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
			trip_date_id VARCHAR(36) NOT NULL REFERENCES trip_dates(id) ON DELETE CASCADE,
			status SMALLINT NOT NULL CHECK (status IN (0, 1, 2)),
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (participant_id, trip_date_id)
		)`,
	}

	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_trip_dates_trip_id ON trip_dates(trip_id, date_start)",
		"CREATE INDEX IF NOT EXISTS idx_participants_trip_id ON participants(trip_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_availability_trip_id ON availability(trip_id)",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
