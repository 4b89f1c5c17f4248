package devops

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates a remote call exceeded its deadline.
	ErrTimeout = errors.New("remote request timed out")

	// ErrUnauthorized indicates the token was rejected (401/403).
	ErrUnauthorized = errors.New("remote rejected credentials")

	// ErrUnavailable indicates the remote could not be reached.
	ErrUnavailable = errors.New("remote service unavailable")

	// ErrUnexpectedStatus indicates a non-success status other than an auth failure.
	ErrUnexpectedStatus = errors.New("unexpected remote status")

	// ErrMalformedResponse indicates a body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed remote response")
)

// StatusError carries the status code of a non-success response.
type StatusError struct {
	Operation Operation
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Operation, e.Code)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Operation, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Code == 401 || e.Code == 403 {
		return ErrUnauthorized
	}
	return ErrUnexpectedStatus
}

// ErrorCode maps an error from this package to a short stable label used in
// logs and metrics.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUnexpectedStatus):
		return "STATUS"
	case errors.Is(err, ErrMalformedResponse):
		return "MALFORMED"
	default:
		return "UNKNOWN"
	}
}
