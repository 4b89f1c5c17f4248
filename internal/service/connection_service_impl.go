package service

import (
	"context"
	"time"

	"github.com/alexanderramin/releaseplan/internal/devops"
	"github.com/alexanderramin/releaseplan/internal/domain"
)

type connectionService struct {
	remote   devops.ProjectLister
	observer UseCaseObserver
}

func NewConnectionService(remote devops.ProjectLister, observers ...UseCaseObserver) ConnectionService {
	return &connectionService{remote: remote, observer: useCaseObserverOrNoop(observers)}
}

func (s *connectionService) TestConnection(ctx context.Context) (bool, string) {
	startedAt := time.Now().UTC()
	ok, msg := devops.TestConnection(ctx, s.remote)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "test-connection",
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   ok,
		Fields:    map[string]any{"message": msg},
	})
	return ok, msg
}

func (s *connectionService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.remote.ListProjects(ctx)
}
