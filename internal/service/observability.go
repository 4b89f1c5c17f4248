package service

import (
	"context"
	"time"

	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/rs/zerolog"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	log zerolog.Logger
}

// NewLogUseCaseObserver writes service use-case events to logger.
func NewLogUseCaseObserver(logger zerolog.Logger) UseCaseObserver {
	return &logUseCaseObserver{log: logger.With().Str("component", "service").Logger()}
}

func (o *logUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	e := o.log.Info()
	if event.Err != nil {
		e = o.log.Error().Err(event.Err)
	}
	e.Str("use_case", event.Name).
		Int64("duration_ms", event.Duration.Milliseconds()).
		Bool("success", event.Success).
		Fields(event.Fields).
		Msg("service_use_case")
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// Outcome labels passed to PlanMetrics.
const (
	OutcomeSuccess  = "success"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

// PlanMetrics receives aggregation and cache outcomes.
type PlanMetrics interface {
	RecordAggregation(outcome string)
	RecordSnapshotWrite(outcome string)
	RecordPlanItems(kind string, n int)
}

// NoopPlanMetrics ignores all measurements.
type NoopPlanMetrics struct{}

func (NoopPlanMetrics) RecordAggregation(string) {}
func (NoopPlanMetrics) RecordSnapshotWrite(string) {}
func (NoopPlanMetrics) RecordPlanItems(string, int) {}

func planMetricsOrNoop(m PlanMetrics) PlanMetrics {
	if m == nil {
		return NoopPlanMetrics{}
	}
	return m
}

func recordPlanItems(m PlanMetrics, plan domain.ReleasePlan) {
	m.RecordPlanItems("epics", len(plan.Epics))
	m.RecordPlanItems("features", len(plan.Features))
	m.RecordPlanItems("sprints", len(plan.Sprints))
}
