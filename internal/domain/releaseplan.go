package domain

import "time"

// ReleasePlan combines the epics, features and sprints of one project.
// Each sequence keeps the order the remote returned it in.
type ReleasePlan struct {
	Epics    []WorkItem `json:"epics" yaml:"epics"`
	Features []WorkItem `json:"features" yaml:"features"`
	Sprints  []Sprint   `json:"sprints" yaml:"sprints"`
}

// NewReleasePlan builds a plan whose sequences are never nil.
func NewReleasePlan(epics, features []WorkItem, sprints []Sprint) ReleasePlan {
	return ReleasePlan{Epics: epics, Features: features, Sprints: sprints}.Normalized()
}

// Normalized returns a copy with nil sequences replaced by empty ones, so the
// JSON form always carries arrays.
func (p ReleasePlan) Normalized() ReleasePlan {
	out := ReleasePlan{
		Epics:    make([]WorkItem, len(p.Epics)),
		Features: make([]WorkItem, len(p.Features)),
		Sprints:  make([]Sprint, len(p.Sprints)),
	}
	copy(out.Epics, p.Epics)
	copy(out.Features, p.Features)
	copy(out.Sprints, p.Sprints)
	return out
}

// Empty reports whether all three sequences are empty.
func (p ReleasePlan) Empty() bool {
	return len(p.Epics) == 0 && len(p.Features) == 0 && len(p.Sprints) == 0
}

// Snapshot is the single persisted copy of the latest release plan.
type Snapshot struct {
	ID        string      `json:"id" yaml:"id"`
	Project   string      `json:"project" yaml:"project"`
	Plan      ReleasePlan `json:"plan" yaml:"plan"`
	CreatedAt time.Time   `json:"createdAt" yaml:"createdAt"`
}
