package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Aggregator runs registered checkers concurrently under one timeout
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
	metadata map[string]any
}

// NewAggregator creates an aggregator; timeout <= 0 means 5s
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		timeout:  timeout,
		metadata: make(map[string]any),
	}
}

// Register adds a checker; nil is ignored
func (a *Aggregator) Register(checker Checker) {
	if checker == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, checker)
}

// SetMetadata adds a key to every report
func (a *Aggregator) SetMetadata(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// Check runs every checker. A failing checker never cancels the others.
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checkers := append([]Checker(nil), a.checkers...)
	metadata := make(map[string]any, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = checkOne(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Checks:    make(map[string]CheckResult, len(results)),
		Metadata:  metadata,
	}
	for _, r := range results {
		resp.Checks[r.Name] = r
		if r.Status != StatusHealthy {
			resp.Status = StatusUnhealthy
		}
	}
	return resp
}

func checkOne(ctx context.Context, checker Checker) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      checker.Name(),
		Status:    StatusHealthy,
		Timestamp: start,
	}
	if err := checker.Check(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.Duration = time.Since(start)
	return result
}
