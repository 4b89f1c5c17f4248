package service

import (
	"context"

	"github.com/alexanderramin/releaseplan/internal/domain"
)

// ReleasePlanService aggregates the remote epics, features and sprints of a
// project into one plan and caches it.
type ReleasePlanService interface {
	BuildReleasePlan(ctx context.Context, project string) (*domain.ReleasePlan, error)
	Cached(ctx context.Context) (*domain.Snapshot, error)
}

// SnapshotService stores and loads the single last-known-good plan.
type SnapshotService interface {
	Put(ctx context.Context, project string, plan domain.ReleasePlan) (*domain.Snapshot, error)
	Get(ctx context.Context) (*domain.Snapshot, error)
}

type ConnectionService interface {
	TestConnection(ctx context.Context) (bool, string)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// PlanSource is the part of the remote client the aggregator reads from.
type PlanSource interface {
	QueryWorkItems(ctx context.Context, project string, itemType domain.WorkItemType) ([]domain.WorkItem, error)
	ListIterations(ctx context.Context, project string) ([]domain.Sprint, error)
}
