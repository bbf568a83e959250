package config

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// DriverFor picks a database/sql driver from the connection string. Postgres
// URLs and keyword DSNs go through pgx; everything else is treated as an
// embedded sqlite file.
func DriverFor(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgres://") ||
		strings.HasPrefix(databaseURL, "postgresql://") ||
		strings.Contains(databaseURL, "host=") {
		return DriverPostgres
	}
	return DriverSQLite
}

// ConnectDB opens the storage collaborator and verifies it is reachable
func ConnectDB(databaseURL string) (*sql.DB, error) {
	driver := DriverFor(databaseURL)

	db, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Retry the first ping; a fresh postgres container may not be up yet
	maxRetries := 5
	retryInterval := 5 * time.Second
	if driver == DriverSQLite {
		maxRetries = 1
	}

	for i := 0; i < maxRetries; i++ {
		if err = db.Ping(); err == nil {
			log.Printf("Successfully connected to the database (driver=%s)", driver)
			return db, nil
		}
		log.Printf("Failed to ping database (attempt %d/%d): %v. Retrying in %v...", i+1, maxRetries, err, retryInterval)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}
	db.Close()
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates the schema if it does not exist. The DDL differs
// slightly per engine (serial columns, timestamp types), so it is keyed on
// the driver name.
func AutoMigrate(db *sql.DB, driver string) error {
	var ddl string
	switch driver {
	case DriverPostgres:
		ddl = postgresSchema
	default:
		ddl = sqliteSchema
	}

	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	log.Println("AutoMigrate applied successfully")
	return nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	full_name TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS customers (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	company TEXT,
	status TEXT,
	notes TEXT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_contact TIMESTAMP WITH TIME ZONE
);

CREATE TABLE IF NOT EXISTS tasks (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	due_date TIMESTAMP WITH TIME ZONE,
	status TEXT NOT NULL DEFAULT 'pending',
	priority TEXT NOT NULL DEFAULT 'medium',
	user_id INTEGER NOT NULL REFERENCES users(id),
	customer_id INTEGER REFERENCES customers(id),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_customers_user_id ON customers(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS customers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	company TEXT,
	status TEXT,
	notes TEXT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_contact TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	due_date TIMESTAMP,
	status TEXT NOT NULL DEFAULT 'pending',
	priority TEXT NOT NULL DEFAULT 'medium',
	user_id INTEGER NOT NULL REFERENCES users(id),
	customer_id INTEGER REFERENCES customers(id),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_customers_user_id ON customers(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
`
