package repository

import (
	"context"

	"github.com/alexanderramin/releaseplan/internal/domain"
)

// SnapshotRepo persists the single current release plan snapshot.
type SnapshotRepo interface {
	// Replace removes any stored snapshot and writes s as the only row.
	// It issues more than one statement; run it inside a transaction.
	Replace(ctx context.Context, s *domain.Snapshot) error
	// Latest returns the most recently created snapshot or ErrNotFound.
	Latest(ctx context.Context) (*domain.Snapshot, error)
	Count(ctx context.Context) (int, error)
}
