// Package batch executes a slice of tasks with a fixed worker count,
// progress reporting, and cooperative cancellation. It is the pipeline's
// only concurrency primitive: crawling, bulk analysis, and bulk
// publishing all fan out through it.
package batch

import (
	"context"
	"sync"
)

// DefaultConcurrency is the worker count used when callers pass zero.
const DefaultConcurrency = 5

// Processor handles one item. Errors are the processor's own concern;
// the runner never stops the batch because one item failed.
type Processor[T any] func(ctx context.Context, item T) error

// ProgressFunc is called after each completed item with the monotonic
// completion count and the batch size.
type ProgressFunc func(completed, total int)

// StopFunc is polled between items; returning true drains the queue so
// all workers exit once their in-flight item finishes.
type StopFunc func() bool

// Run drains items through at most concurrency workers. It returns only
// after every worker has exited. In-flight work is never aborted
// mid-task; cancellation (via shouldStop or ctx) only prevents new items
// from starting.
func Run[T any](ctx context.Context, items []T, processor Processor[T], concurrency int, onProgress ProgressFunc, shouldStop StopFunc) {
	if len(items) == 0 {
		return
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}
	if onProgress == nil {
		onProgress = func(int, int) {}
	}
	if shouldStop == nil {
		shouldStop = func() bool { return false }
	}

	total := len(items)
	queue := append([]T(nil), items...)

	var mu sync.Mutex
	completed := 0

	next := func() (T, bool) {
		mu.Lock()
		defer mu.Unlock()
		var zero T
		if shouldStop() || ctx.Err() != nil {
			queue = nil
			return zero, false
		}
		if len(queue) == 0 {
			return zero, false
		}
		item := queue[0]
		queue = queue[1:]
		return item, true
	}

	report := func() {
		mu.Lock()
		completed++
		done := completed
		mu.Unlock()
		onProgress(done, total)
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, ok := next()
				if !ok {
					return
				}
				_ = processor(ctx, item)
				report()
			}
		}()
	}
	wg.Wait()
}
