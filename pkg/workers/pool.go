// Package workers provides bounded-parallelism execution for batch
// extraction. Records are independent, so no cross-item ordering is kept.
package workers

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxConcurrent int // Maximum concurrent work items (default: 4)
}

// DefaultPoolConfig returns sensible defaults for pipeline batches: the
// shared resources are a connection pool and one HTTP client, so modest
// parallelism is enough.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxConcurrent: 4}
}

// Pool manages concurrent work execution with bounded parallelism.
type Pool struct {
	config PoolConfig
	logger *zap.Logger
}

// NewPool creates a worker pool.
func NewPool(config PoolConfig, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 4
	}
	return &Pool{
		config: config,
		logger: logger.Named("worker-pool"),
	}
}

// WorkItem is a unit of work.
type WorkItem[T any] struct {
	ID      string
	Execute func(ctx context.Context) (T, error)
}

// WorkResult is the outcome of one work item.
type WorkResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process executes all items with bounded parallelism. Results are returned
// in completion order; processing continues even when some items fail.
func Process[T any](
	ctx context.Context,
	pool *Pool,
	items []WorkItem[T],
	onProgress func(completed, total int),
) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	resultsChan := make(chan WorkResult[T], len(items))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(item WorkItem[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				resultsChan <- WorkResult[T]{ID: item.ID, Result: zero, Err: ctx.Err()}
				return
			}

			result, err := item.Execute(ctx)
			resultsChan <- WorkResult[T]{ID: item.ID, Result: result, Err: err}
		}(item)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]WorkResult[T], 0, len(items))
	for result := range resultsChan {
		results = append(results, result)
		if onProgress != nil {
			onProgress(len(results), len(items))
		}
		if result.Err != nil {
			pool.logger.Debug("work item failed",
				zap.String("id", result.ID),
				zap.Error(result.Err))
		}
	}

	return results
}
