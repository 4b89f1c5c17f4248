package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/alexanderramin/releaseplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	projects []domain.Project
	err      error
	panics   bool
}

func (s stubLister) ListProjects(context.Context) ([]domain.Project, error) {
	if s.panics {
		panic("lister exploded")
	}
	return s.projects, s.err
}

func TestConnectionService_TestConnection(t *testing.T) {
	tests := []struct {
		name    string
		lister  stubLister
		wantOK  bool
		wantMsg string
	}{
		{
			name:    "projects returned",
			lister:  stubLister{projects: []domain.Project{{Name: "A"}, {Name: "B"}}},
			wantOK:  true,
			wantMsg: "Connection successful. Retrieved 2 projects.",
		},
		{
			name:    "no projects",
			lister:  stubLister{projects: []domain.Project{}},
			wantMsg: "Failed to retrieve project information",
		},
		{
			name:    "remote error",
			lister:  stubLister{projects: []domain.Project{}, err: errors.New("status 500")},
			wantMsg: "Failed to retrieve project information",
		},
		{
			name:    "panic during probe",
			lister:  stubLister{panics: true},
			wantMsg: "Exception occurred: lister exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewConnectionService(tt.lister)
			ok, msg := svc.TestConnection(context.Background())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestConnectionService_AgainstFakeRemote(t *testing.T) {
	fake := testutil.NewFakeDevOps(t, testPAT)
	fake.AddProject("Shop")

	svc := NewConnectionService(newRemoteClient(fake))

	ok, msg := svc.TestConnection(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "Connection successful. Retrieved 1 projects.", msg)

	projects, err := svc.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Shop", projects[0].Name)
}
