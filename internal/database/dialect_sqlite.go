package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

// DSN takes write locks when a transaction begins so read-modify-write
// cycles on one file never interleave across processes.
func (d *SQLiteDialect) DSN(config DialectConfig) string {
	sep := "?"
	if strings.Contains(config.Path, "?") {
		sep = "&"
	}
	return config.Path + sep + "_busy_timeout=5000&_txlock=immediate"
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *SQLiteDialect) UpsertStorageQuery() string {
	return `INSERT INTO local_storage (storage_key, storage_value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(storage_key) DO UPDATE SET storage_value = excluded.storage_value, updated_at = CURRENT_TIMESTAMP`
}

func (d *SQLiteDialect) EnsureStorageRowQuery() string {
	return `INSERT INTO local_storage (storage_key, storage_value) VALUES (?, '') ON CONFLICT(storage_key) DO NOTHING`
}

// LockingReadSuffix is empty: the transaction already holds the write lock.
func (d *SQLiteDialect) LockingReadSuffix() string {
	return ""
}
