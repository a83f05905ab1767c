// Package health aggregates the health checks of framework components.
package health

import (
	"slices"
	"time"

	"github.com/KOMKZ/go-yogan-classevent/component"
)

// Status of a check or of the whole report
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Checker is component.HealthChecker
type Checker = component.HealthChecker

// CheckResult is the outcome of one checker
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Response is the aggregated report
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
}

// IsHealthy reports whether every check passed
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}

// Names returns the check names in sorted order
func (r *Response) Names() []string {
	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
