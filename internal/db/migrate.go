package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SnapshotRowID is the only id the release_plan_cache table accepts.
const SnapshotRowID = 1

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateLegacyCache(db); err != nil {
		return fmt.Errorf("migrating release_plan_cache to singleton row: %w", err)
	}
	return nil
}

// migrateLegacyCache rebuilds a release_plan_cache table created without
// the singleton key. Only the most recent row survives, as id 1.
func migrateLegacyCache(db *sql.DB) error {
	ctx := context.Background()

	var createSQL string
	if err := db.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'release_plan_cache'`).Scan(&createSQL); err != nil {
		return fmt.Errorf("loading release_plan_cache schema: %w", err)
	}
	if strings.Contains(createSQL, "snapshot_id") {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS release_plan_cache_new`); err != nil {
		return fmt.Errorf("dropping stale release_plan_cache_new: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE TABLE release_plan_cache_new (
		id          INTEGER PRIMARY KEY CHECK(id = 1),
		snapshot_id TEXT NOT NULL,
		project     TEXT NOT NULL DEFAULT '',
		data        TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating release_plan_cache_new: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO release_plan_cache_new (id, snapshot_id, project, data, created_at)
		SELECT 1, lower(hex(randomblob(16))), '', data, created_at
		FROM release_plan_cache
		WHERE data IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1`); err != nil {
		return fmt.Errorf("copying latest release plan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE release_plan_cache`); err != nil {
		return fmt.Errorf("dropping old release_plan_cache: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `ALTER TABLE release_plan_cache_new RENAME TO release_plan_cache`); err != nil {
		return fmt.Errorf("renaming release_plan_cache_new: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_release_plan_cache_created ON release_plan_cache(created_at)`); err != nil {
		return fmt.Errorf("recreating idx_release_plan_cache_created: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing release_plan_cache migration: %w", err)
	}
	committed = true

	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS release_plan_cache (
		id          INTEGER PRIMARY KEY CHECK(id = 1),
		snapshot_id TEXT NOT NULL,
		project     TEXT NOT NULL DEFAULT '',
		data        TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_release_plan_cache_created ON release_plan_cache(created_at)`,
}
