package devops

import (
	"time"

	"github.com/rs/zerolog"
)

// CallEvent records metadata about a single remote operation, after retries.
type CallEvent struct {
	Operation Operation
	Project   string
	Duration  time.Duration
	Attempts  int
	Items     int
	Success   bool
	ErrorCode string
}

// Observer receives events about remote calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a zerolog logger.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{log: logger.With().Str("component", "devops").Logger()}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	e := o.log.Debug()
	if !event.Success {
		e = o.log.Warn().Str("error_code", event.ErrorCode)
	}
	e.Str("operation", string(event.Operation)).
		Str("project", event.Project).
		Int64("latency_ms", event.Duration.Milliseconds()).
		Int("attempts", event.Attempts).
		Int("items", event.Items).
		Bool("success", event.Success).
		Msg("remote_call")
}

// RemoteCallRecorder is the metrics sink used by MetricsObserver.
type RemoteCallRecorder interface {
	ObserveRemoteCall(operation, outcome string, d time.Duration)
}

// MetricsObserver forwards call events to a RemoteCallRecorder.
type MetricsObserver struct {
	rec RemoteCallRecorder
}

// NewMetricsObserver creates an Observer backed by rec.
func NewMetricsObserver(rec RemoteCallRecorder) *MetricsObserver {
	return &MetricsObserver{rec: rec}
}

func (o *MetricsObserver) OnCallComplete(event CallEvent) {
	outcome := "success"
	if !event.Success {
		outcome = event.ErrorCode
	}
	o.rec.ObserveRemoteCall(string(event.Operation), outcome, event.Duration)
}

// MultiObserver fans an event out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event CallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
