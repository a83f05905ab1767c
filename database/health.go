package database

import (
	"context"
	"time"

	"github.com/KOMKZ/go-yogan-classevent/component"
)

// HealthChecker pings every connection of a Manager
type HealthChecker struct {
	manager *Manager
	timeout time.Duration
}

// NewHealthChecker creates a checker; timeout <= 0 means 3s
func NewHealthChecker(m *Manager, timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthChecker{manager: m, timeout: timeout}
}

func (h *HealthChecker) Name() string {
	return component.ComponentDatabase
}

func (h *HealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.manager.Ping(ctx)
}

var _ component.HealthChecker = (*HealthChecker)(nil)
