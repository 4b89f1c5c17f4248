package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/releaseplan/internal/db"
	"github.com/alexanderramin/releaseplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all pooled connections.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// Readers running alongside a writer must only ever observe a complete
// snapshot, never a half-written row or an empty table once seeded.
func TestConcurrentAccess_ReadDuringReplace(t *testing.T) {
	database := newConcurrentTestDB(t)
	repo := NewSQLiteSnapshotRepo(database)
	ctx := context.Background()

	seed := testutil.NewTestSnapshot("Shop", testutil.NewTestPlan(), time.Now())
	require.NoError(t, repo.Replace(ctx, seed))

	const writes = 20
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= writes; i++ {
			plan := testutil.NewTestPlan(testutil.WithEpics(
				testutil.NewTestWorkItem(i, fmt.Sprintf("Epic-%d", i))))
			snap := testutil.NewTestSnapshot("Shop", plan, time.Now())
			if err := repo.Replace(ctx, snap); err != nil {
				t.Errorf("writer: replace %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				got, err := repo.Latest(ctx)
				if err != nil {
					t.Errorf("reader %d: latest: %v", reader, err)
					return
				}
				if got.ID == "" || got.Plan.Epics == nil {
					t.Errorf("reader %d: got incomplete snapshot", reader)
				}
			}
		}(r)
	}

	wg.Wait()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	last, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, last.Plan.Epics, 1)
	assert.Equal(t, writes, last.Plan.Epics[0].ID)
}
