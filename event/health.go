package event

import (
	"context"

	"github.com/KOMKZ/go-yogan-classevent/component"
)

// HealthChecker fails once the registry is closed
type HealthChecker struct {
	registry *Registry
}

// NewHealthChecker creates a checker for r
func NewHealthChecker(r *Registry) *HealthChecker {
	return &HealthChecker{registry: r}
}

// Name returns "event"
func (h *HealthChecker) Name() string {
	return component.ComponentEvent
}

// Check implements component.HealthChecker
func (h *HealthChecker) Check(ctx context.Context) error {
	if h.registry.Closed() {
		return ErrRegistryClosed
	}
	return nil
}

var _ component.HealthChecker = (*HealthChecker)(nil)
