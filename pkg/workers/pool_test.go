package workers

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestProcess_AllItemsComplete(t *testing.T) {
	pool := NewPool(PoolConfig{MaxConcurrent: 2}, zap.NewNop())

	items := []WorkItem[int]{
		{ID: "a", Execute: func(ctx context.Context) (int, error) { return 1, nil }},
		{ID: "b", Execute: func(ctx context.Context) (int, error) { return 2, nil }},
		{ID: "c", Execute: func(ctx context.Context) (int, error) { return 0, errors.New("boom") }},
	}

	results := Process(context.Background(), pool, items, nil)

	assert.Len(t, results, 3)

	var ids []string
	failures := 0
	for _, r := range results {
		ids = append(ids, r.ID)
		if r.Err != nil {
			failures++
		}
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, 1, failures)
}

func TestProcess_BoundsConcurrency(t *testing.T) {
	pool := NewPool(PoolConfig{MaxConcurrent: 2}, zap.NewNop())

	var active, peak int64
	items := make([]WorkItem[struct{}], 8)
	for i := range items {
		items[i] = WorkItem[struct{}]{
			ID: "item",
			Execute: func(ctx context.Context) (struct{}, error) {
				n := atomic.AddInt64(&active, 1)
				for {
					p := atomic.LoadInt64(&peak)
					if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
						break
					}
				}
				atomic.AddInt64(&active, -1)
				return struct{}{}, nil
			},
		}
	}

	Process(context.Background(), pool, items, nil)

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestProcess_ReportsProgress(t *testing.T) {
	pool := NewPool(DefaultPoolConfig(), zap.NewNop())

	items := []WorkItem[struct{}]{
		{ID: "a", Execute: func(ctx context.Context) (struct{}, error) { return struct{}{}, nil }},
		{ID: "b", Execute: func(ctx context.Context) (struct{}, error) { return struct{}{}, nil }},
	}

	var calls []int
	Process(context.Background(), pool, items, func(completed, total int) {
		assert.Equal(t, 2, total)
		calls = append(calls, completed)
	})

	assert.Equal(t, []int{1, 2}, calls)
}

func TestProcess_EmptyItems(t *testing.T) {
	pool := NewPool(DefaultPoolConfig(), zap.NewNop())
	assert.Nil(t, Process[int](context.Background(), pool, nil, nil))
}
