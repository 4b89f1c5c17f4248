package contract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionStatus(t *testing.T) {
	ok := NewConnectionStatus(true, "Connection successful. Retrieved 3 projects.")
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.True(t, ok.OK())

	failed := NewConnectionStatus(false, "Failed to retrieve project information")
	assert.Equal(t, StatusError, failed.Status)
	assert.False(t, failed.OK())
}

func TestCachedPlanResponse_JSONShape(t *testing.T) {
	snap := &domain.Snapshot{
		ID:        "abc",
		Project:   "Shop",
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(NewCachedPlanResponse(snap))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "abc",
		"project": "Shop",
		"createdAt": "2024-05-01T09:00:00Z",
		"plan": {"epics": [], "features": [], "sprints": []}
	}`, string(data))
}
