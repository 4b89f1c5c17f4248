package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/releaseplan/internal/domain"
	"golang.org/x/sync/errgroup"
)

type releasePlanService struct {
	source    PlanSource
	snapshots SnapshotService
	policy    domain.FetchPolicy
	metrics   PlanMetrics
	observer  UseCaseObserver
}

func NewReleasePlanService(
	source PlanSource,
	snapshots SnapshotService,
	policy domain.FetchPolicy,
	metrics PlanMetrics,
	observers ...UseCaseObserver,
) ReleasePlanService {
	if policy == "" {
		policy = domain.PolicyDegrade
	}
	return &releasePlanService{
		source:    source,
		snapshots: snapshots,
		policy:    policy,
		metrics:   planMetricsOrNoop(metrics),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *releasePlanService) BuildReleasePlan(ctx context.Context, project string) (plan *domain.ReleasePlan, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project": project,
		"policy":  string(s.policy),
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "build-release-plan",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	var fetched *fetchResult
	fetched, err = s.fetchAll(ctx, project)
	if err != nil {
		s.metrics.RecordAggregation(OutcomeFailed)
		return nil, err
	}
	if len(fetched.failures) > 0 {
		fields["failed_fetches"] = fetched.failedNames()
	}

	built := domain.NewReleasePlan(fetched.epics, fetched.features, fetched.sprints)
	fields["epics"] = len(built.Epics)
	fields["features"] = len(built.Features)
	fields["sprints"] = len(built.Sprints)

	var snap *domain.Snapshot
	snap, err = s.snapshots.Put(ctx, project, built)
	if err != nil {
		s.metrics.RecordAggregation(OutcomeFailed)
		if !errors.Is(err, ErrSnapshotWrite) {
			err = fmt.Errorf("%w: %w", ErrSnapshotWrite, err)
		}
		return nil, err
	}
	fields["snapshot_id"] = snap.ID

	outcome := OutcomeSuccess
	if len(fetched.failures) > 0 {
		outcome = OutcomeDegraded
	}
	s.metrics.RecordAggregation(outcome)
	recordPlanItems(s.metrics, built)
	return &built, nil
}

func (s *releasePlanService) Cached(ctx context.Context) (*domain.Snapshot, error) {
	return s.snapshots.Get(ctx)
}

type fetchFailure struct {
	name string
	err  error
}

type fetchResult struct {
	epics    []domain.WorkItem
	features []domain.WorkItem
	sprints  []domain.Sprint

	mu       sync.Mutex
	failures []fetchFailure
}

func (r *fetchResult) fail(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, fetchFailure{name: name, err: err})
}

func (r *fetchResult) failedNames() []string {
	names := make([]string, 0, len(r.failures))
	for _, f := range r.failures {
		names = append(names, f.name)
	}
	return names
}

// fetchAll runs the three remote reads concurrently and returns once all of
// them have finished. Each goroutine writes only its own result field.
func (s *releasePlanService) fetchAll(ctx context.Context, project string) (*fetchResult, error) {
	res := &fetchResult{}
	g, gctx := errgroup.WithContext(ctx)

	fetch := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: fetching %s: panic: %v", ErrAggregationFailed, name, r)
				}
			}()
			ferr := fn(gctx)
			if ferr == nil {
				return nil
			}
			if s.policy == domain.PolicyStrict {
				return fmt.Errorf("%w: fetching %s: %w", ErrAggregationFailed, name, ferr)
			}
			res.fail(name, ferr)
			return nil
		})
	}

	fetch("epics", func(ctx context.Context) error {
		items, err := s.source.QueryWorkItems(ctx, project, domain.WorkItemEpic)
		res.epics = items
		return err
	})
	fetch("features", func(ctx context.Context) error {
		items, err := s.source.QueryWorkItems(ctx, project, domain.WorkItemFeature)
		res.features = items
		return err
	})
	fetch("sprints", func(ctx context.Context) error {
		sprints, err := s.source.ListIterations(ctx, project)
		res.sprints = sprints
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancelled caller is a fault in both policies, not an empty sequence.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAggregationFailed, err)
	}
	return res, nil
}
