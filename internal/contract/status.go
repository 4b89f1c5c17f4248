package contract

import (
	"time"

	"github.com/alexanderramin/releaseplan/internal/domain"
)

// Status values of ConnectionStatus.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusOK      = "ok"
)

// ConnectionStatus is the payload of the connectivity probe.
type ConnectionStatus struct {
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// NewConnectionStatus maps a probe result onto its payload.
func NewConnectionStatus(ok bool, message string) ConnectionStatus {
	status := StatusError
	if ok {
		status = StatusSuccess
	}
	return ConnectionStatus{Status: status, Message: message}
}

// OK reports whether the probe succeeded.
func (s ConnectionStatus) OK() bool {
	return s.Status == StatusSuccess
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CachedPlanResponse is the body of the cached plan endpoint.
type CachedPlanResponse struct {
	ID        string             `json:"id" yaml:"id"`
	Project   string             `json:"project" yaml:"project"`
	CreatedAt time.Time          `json:"createdAt" yaml:"createdAt"`
	Plan      domain.ReleasePlan `json:"plan" yaml:"plan"`
}

// NewCachedPlanResponse converts a snapshot into its wire form.
func NewCachedPlanResponse(s *domain.Snapshot) CachedPlanResponse {
	return CachedPlanResponse{
		ID:        s.ID,
		Project:   s.Project,
		CreatedAt: s.CreatedAt.UTC(),
		Plan:      s.Plan.Normalized(),
	}
}
