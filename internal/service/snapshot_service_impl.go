package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/releaseplan/internal/db"
	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/alexanderramin/releaseplan/internal/repository"
	"github.com/google/uuid"
)

type snapshotService struct {
	snapshots repository.SnapshotRepo
	uow       db.UnitOfWork
	metrics   PlanMetrics
}

func NewSnapshotService(snapshots repository.SnapshotRepo, uow db.UnitOfWork, metrics PlanMetrics) SnapshotService {
	return &snapshotService{
		snapshots: snapshots,
		uow:       uow,
		metrics:   planMetricsOrNoop(metrics),
	}
}

func (s *snapshotService) Put(ctx context.Context, project string, plan domain.ReleasePlan) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		ID:        uuid.New().String(),
		Project:   project,
		Plan:      plan.Normalized(),
		CreatedAt: time.Now().UTC(),
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteSnapshotRepo(tx).Replace(ctx, snap)
	})
	if err != nil {
		s.metrics.RecordSnapshotWrite(OutcomeFailed)
		return nil, fmt.Errorf("%w: %w", ErrSnapshotWrite, err)
	}
	s.metrics.RecordSnapshotWrite(OutcomeSuccess)
	return snap, nil
}

func (s *snapshotService) Get(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.snapshots.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSnapshotEmpty
		}
		return nil, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	return snap, nil
}
