package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/releaseplan/internal/db"
	"github.com/alexanderramin/releaseplan/internal/domain"
)

// SQLiteSnapshotRepo implements SnapshotRepo using a SQLite database.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

// NewSQLiteSnapshotRepo creates a new SQLiteSnapshotRepo.
func NewSQLiteSnapshotRepo(conn db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: conn}
}

func (r *SQLiteSnapshotRepo) Replace(ctx context.Context, s *domain.Snapshot) error {
	data, err := json.Marshal(s.Plan.Normalized())
	if err != nil {
		return fmt.Errorf("encoding release plan: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM release_plan_cache WHERE id != ?`, db.SnapshotRowID); err != nil {
		return fmt.Errorf("clearing stale snapshots: %w", err)
	}

	query := `INSERT INTO release_plan_cache (id, snapshot_id, project, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			snapshot_id = excluded.snapshot_id,
			project     = excluded.project,
			data        = excluded.data,
			created_at  = excluded.created_at`
	if _, err := r.db.ExecContext(ctx, query,
		db.SnapshotRowID,
		s.ID,
		s.Project,
		string(data),
		formatTimestamp(s.CreatedAt),
	); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteSnapshotRepo) Latest(ctx context.Context) (*domain.Snapshot, error) {
	query := `SELECT snapshot_id, project, data, created_at
		FROM release_plan_cache
		ORDER BY created_at DESC
		LIMIT 1`
	row := r.db.QueryRowContext(ctx, query)

	var s domain.Snapshot
	var data, createdAt string
	if err := row.Scan(&s.ID, &s.Project, &data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("release plan snapshot: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	var plan domain.ReleasePlan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", s.ID, err)
	}
	s.Plan = plan.Normalized()

	t, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.ID, err)
	}
	s.CreatedAt = t
	return &s, nil
}

func (r *SQLiteSnapshotRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM release_plan_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting snapshots: %w", err)
	}
	return n, nil
}
