package testutil

import (
	"time"

	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/google/uuid"
)

// PlanOption customizes a plan built by NewTestPlan.
type PlanOption func(*domain.ReleasePlan)

func WithEpics(items ...domain.WorkItem) PlanOption {
	return func(p *domain.ReleasePlan) {
		p.Epics = append(p.Epics, items...)
	}
}

func WithFeatures(items ...domain.WorkItem) PlanOption {
	return func(p *domain.ReleasePlan) {
		p.Features = append(p.Features, items...)
	}
}

func WithSprints(sprints ...domain.Sprint) PlanOption {
	return func(p *domain.ReleasePlan) {
		p.Sprints = append(p.Sprints, sprints...)
	}
}

// NewTestPlan returns a normalized plan, empty unless options add items.
func NewTestPlan(opts ...PlanOption) domain.ReleasePlan {
	p := domain.ReleasePlan{}
	for _, opt := range opts {
		opt(&p)
	}
	return p.Normalized()
}

// NewTestWorkItem returns a scheduled work item.
func NewTestWorkItem(id int, name string) domain.WorkItem {
	return domain.WorkItem{
		ID:        id,
		Name:      name,
		StartDate: "2024-01-01T00:00:00Z",
		EndDate:   "2024-03-31T00:00:00Z",
	}
}

// NewTestSprint returns a two-week sprint starting on start (YYYY-MM-DD).
func NewTestSprint(id, name, start string) domain.Sprint {
	s := domain.Sprint{ID: id, Name: name}
	if t, err := time.Parse("2006-01-02", start); err == nil {
		s.StartDate = t.Format(time.RFC3339)
		s.EndDate = t.AddDate(0, 0, 13).Format(time.RFC3339)
	}
	return s
}

// NewTestSnapshot wraps plan in a snapshot created at createdAt.
func NewTestSnapshot(project string, plan domain.ReleasePlan, createdAt time.Time) *domain.Snapshot {
	return &domain.Snapshot{
		ID:        uuid.New().String(),
		Project:   project,
		Plan:      plan,
		CreatedAt: createdAt.UTC(),
	}
}
