package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/releaseplan/internal/devops"
	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/alexanderramin/releaseplan/internal/repository"
	"github.com/alexanderramin/releaseplan/internal/testutil"
)

const testPAT = "test-pat"

func newRemoteClient(fake *testutil.FakeDevOps) devops.Client {
	cfg := devops.DefaultConfig()
	cfg.Instance = fake.Instance()
	cfg.Scheme = "http"
	cfg.Collection = testutil.FakeCollection
	cfg.Token = testPAT
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 0
	return devops.NewClient(cfg, devops.NoopObserver{})
}

type cacheFixture struct {
	repo      *repository.SQLiteSnapshotRepo
	snapshots SnapshotService
	metrics   *recordingMetrics
}

func newCacheFixture(t *testing.T) *cacheFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	metrics := newRecordingMetrics()
	return &cacheFixture{
		repo:      repository.NewSQLiteSnapshotRepo(database),
		snapshots: NewSnapshotService(repository.NewSQLiteSnapshotRepo(database), testutil.NewTestUoW(database), metrics),
		metrics:   metrics,
	}
}

type recordingMetrics struct {
	mu           sync.Mutex
	aggregations []string
	writes       []string
	items        map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{items: make(map[string]int)}
}

func (m *recordingMetrics) RecordAggregation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggregations = append(m.aggregations, outcome)
}

func (m *recordingMetrics) RecordSnapshotWrite(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, outcome)
}

func (m *recordingMetrics) RecordPlanItems(kind string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[kind] = n
}

func (m *recordingMetrics) Aggregations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.aggregations...)
}

func (m *recordingMetrics) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// stubSource is a PlanSource with canned results per sequence.
type stubSource struct {
	epics    []domain.WorkItem
	features []domain.WorkItem
	sprints  []domain.Sprint
	errs     map[string]error
	panicOn  string
	hook     func(ctx context.Context, name string) error
}

func (s *stubSource) call(ctx context.Context, name string) error {
	if s.panicOn == name {
		panic("boom in " + name)
	}
	if s.hook != nil {
		if err := s.hook(ctx, name); err != nil {
			return err
		}
	}
	return s.errs[name]
}

func (s *stubSource) QueryWorkItems(ctx context.Context, _ string, itemType domain.WorkItemType) ([]domain.WorkItem, error) {
	if itemType == domain.WorkItemEpic {
		if err := s.call(ctx, "epics"); err != nil {
			return []domain.WorkItem{}, err
		}
		return s.epics, nil
	}
	if err := s.call(ctx, "features"); err != nil {
		return []domain.WorkItem{}, err
	}
	return s.features, nil
}

func (s *stubSource) ListIterations(ctx context.Context, _ string) ([]domain.Sprint, error) {
	if err := s.call(ctx, "sprints"); err != nil {
		return []domain.Sprint{}, err
	}
	return s.sprints, nil
}

type failingSnapshots struct {
	err error
}

func (f failingSnapshots) Put(context.Context, string, domain.ReleasePlan) (*domain.Snapshot, error) {
	return nil, f.err
}

func (f failingSnapshots) Get(context.Context) (*domain.Snapshot, error) {
	return nil, ErrSnapshotEmpty
}
