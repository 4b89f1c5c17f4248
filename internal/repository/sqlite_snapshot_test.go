package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/alexanderramin/releaseplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepo_ReplaceAndLatest(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSnapshotRepo(db)
	ctx := context.Background()

	plan := testutil.NewTestPlan(
		testutil.WithEpics(testutil.NewTestWorkItem(1, "Checkout"), testutil.NewTestWorkItem(2, "Search")),
		testutil.WithFeatures(testutil.NewTestWorkItem(3, "Guest checkout")),
		testutil.WithSprints(testutil.NewTestSprint("it-1", "Sprint 1", "2024-01-01")),
	)
	created := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	snap := testutil.NewTestSnapshot("Shop", plan, created)
	require.NoError(t, repo.Replace(ctx, snap))

	fetched, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, fetched.ID)
	assert.Equal(t, "Shop", fetched.Project)
	assert.Equal(t, plan, fetched.Plan)
	assert.True(t, created.Equal(fetched.CreatedAt))
}

func TestSnapshotRepo_EmptyPlanRoundTripsWithEmptyLists(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSnapshotRepo(db)
	ctx := context.Background()

	snap := testutil.NewTestSnapshot("Shop", domain.ReleasePlan{}, time.Now())
	require.NoError(t, repo.Replace(ctx, snap))

	fetched, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.NotNil(t, fetched.Plan.Epics)
	assert.NotNil(t, fetched.Plan.Features)
	assert.NotNil(t, fetched.Plan.Sprints)
	assert.True(t, fetched.Plan.Empty())
}

func TestSnapshotRepo_ReplaceKeepsSingleRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSnapshotRepo(db)
	ctx := context.Background()

	first := testutil.NewTestSnapshot("Shop",
		testutil.NewTestPlan(testutil.WithEpics(testutil.NewTestWorkItem(1, "Old"))),
		time.Now().Add(-time.Hour))
	second := testutil.NewTestSnapshot("Shop",
		testutil.NewTestPlan(testutil.WithEpics(testutil.NewTestWorkItem(7, "New"))),
		time.Now())
	require.NoError(t, repo.Replace(ctx, first))
	require.NoError(t, repo.Replace(ctx, second))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fetched, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, fetched.ID)
	require.Len(t, fetched.Plan.Epics, 1)
	assert.Equal(t, 7, fetched.Plan.Epics[0].ID)
}

func TestSnapshotRepo_Latest_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSnapshotRepo(db)

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotRepo_Latest_LegacyTimestamp(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSnapshotRepo(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO release_plan_cache (id, snapshot_id, project, data, created_at)
		 VALUES (1, 'legacy', '', '{"epics":[],"features":[],"sprints":[]}', '2023-11-02 08:15:00')`)
	require.NoError(t, err)

	fetched, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "legacy", fetched.ID)
	assert.Equal(t, time.Date(2023, 11, 2, 8, 15, 0, 0, time.UTC), fetched.CreatedAt)
}

func TestSnapshotRepo_Latest_CorruptData(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteSnapshotRepo(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO release_plan_cache (id, snapshot_id, project, data, created_at)
		 VALUES (1, 'broken', '', 'not json', '2023-11-02 08:15:00')`)
	require.NoError(t, err)

	_, err = repo.Latest(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "decoding snapshot broken")
}

func TestFormatTimestamp_SortsChronologically(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	whole := formatTimestamp(base)
	fractional := formatTimestamp(base.Add(500 * time.Millisecond))
	assert.Less(t, whole, fractional)
}
