// Package workerpool runs independent work items with bounded parallelism.
package workerpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Config configures the pool.
type Config struct {
	MaxConcurrent int // Maximum items in flight (default: 1)
}

// DefaultConfig runs one item at a time.
func DefaultConfig() Config {
	return Config{MaxConcurrent: 1}
}

// Pool bounds how many work items execute at once. A semaphore limits
// outstanding items; goroutines wait on it, so a slow item never blocks the
// start of the next one beyond the limit.
type Pool struct {
	config Config
	logger *zap.Logger
}

// New creates a pool.
func New(config Config, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	return &Pool{
		config: config,
		logger: logger.Named("worker-pool"),
	}
}

// MaxConcurrent returns the configured limit.
func (p *Pool) MaxConcurrent() int { return p.config.MaxConcurrent }

// WorkItem represents a unit of work to be processed.
type WorkItem[T any] struct {
	ID      string                               // For logging/tracking
	Execute func(ctx context.Context) (T, error) // The work to be executed
}

// WorkResult represents the result of a work item.
type WorkResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process executes all work items and returns their results in submission
// order, whatever order they complete in. Failed items do not stop the others.
// Items that never got a slot before ctx was cancelled report ctx.Err().
func Process[T any](
	ctx context.Context,
	pool *Pool,
	items []WorkItem[T],
	onProgress func(completed, total int),
) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	results := make([]WorkResult[T], len(items))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for i, item := range items {
		wg.Add(1)
		go func(i int, item WorkItem[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				result, err := item.Execute(ctx)
				results[i] = WorkResult[T]{ID: item.ID, Result: result, Err: err}
			case <-ctx.Done():
				results[i] = WorkResult[T]{ID: item.ID, Err: ctx.Err()}
			}

			if err := results[i].Err; err != nil {
				pool.logger.Debug("Work item failed", zap.String("id", item.ID), zap.Error(err))
			}

			if onProgress != nil {
				mu.Lock()
				completed++
				onProgress(completed, len(items))
				mu.Unlock()
			}
		}(i, item)
	}

	wg.Wait()
	return results
}
