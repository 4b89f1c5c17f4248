package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// PoolConfig bounds the connection pool behind *sql.DB. Zero fields keep
// the database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
}

// DefaultPoolConfig returns the pool settings used when none are given.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		BusyTimeout:     5 * time.Second,
	}
}

// OpenDB opens a SQLite database at the given path with the default pool.
// If path is ":memory:", uses an in-memory database.
func OpenDB(path string) (*sql.DB, error) {
	return Open(path, DefaultPoolConfig())
}

// Open opens a SQLite database at path, applies pool limits, sets WAL mode
// and runs migrations. The busy timeout is part of the DSN so every pooled
// connection gets it.
func Open(path string, pool PoolConfig) (*sql.DB, error) {
	memory := path == ":memory:"
	if !memory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path, pool))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to ":memory:" is its own database, so the pool must
	// stay at one connection there.
	if memory {
		db.SetMaxOpenConns(1)
	} else if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 && !memory {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func dsn(path string, pool PoolConfig) string {
	if pool.BusyTimeout <= 0 {
		return path
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, pool.BusyTimeout.Milliseconds())
}
