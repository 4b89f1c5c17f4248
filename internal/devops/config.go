package devops

import (
	"fmt"
	"net/url"
	"time"
)

// Operation identifies one remote API call shape.
type Operation string

const (
	OpListProjects   Operation = "list_projects"
	OpQueryWorkItems Operation = "query_work_items"
	OpGetWorkItems   Operation = "get_work_items"
	OpListIterations Operation = "list_iterations"
)

// API versions are pinned per operation; the remote does not serve every
// resource at the same version.
var apiVersions = map[Operation]string{
	OpListProjects:   "7.0",
	OpQueryWorkItems: "6.0",
	OpGetWorkItems:   "6.0",
	OpListIterations: "6.0",
}

// APIVersion returns the pinned api-version for op.
func APIVersion(op Operation) string {
	return apiVersions[op]
}

// Config holds connection parameters for one remote collection.
type Config struct {
	Instance   string
	Scheme     string
	Collection string
	Token      string
	Timeout    time.Duration
	MaxRetries int

	// OperationTimeouts overrides Timeout for individual operations.
	OperationTimeouts map[Operation]time.Duration
}

// DefaultConfig returns a Config pointing at the hosted service with
// conservative timeouts. Collection and Token must still be set.
func DefaultConfig() Config {
	return Config{
		Instance:   "dev.azure.com",
		Scheme:     "https",
		Timeout:    15 * time.Second,
		MaxRetries: 1,
	}
}

// OperationTimeout returns the effective timeout for op.
func (c Config) OperationTimeout(op Operation) time.Duration {
	if d, ok := c.OperationTimeouts[op]; ok && d > 0 {
		return d
	}
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultConfig().Timeout
}

// BaseURL returns scheme://instance/collection.
func (c Config) BaseURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, c.Instance, url.PathEscape(c.Collection))
}
