// Package task translates the source's stackless-coroutine task graph
// (spec.md §4.8, §9 "Coroutines") into goroutines, channels, and
// golang.org/x/sync primitives: Go has no stackless coroutines, so
// suspension points become channel receives and a task's "resumption"
// becomes a goroutine admitted onto a bounded worker pool.
package task

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrently running task bodies to size
// (default runtime.NumCPU()), generalized from the teacher's
// worker_pool.go from a work-group-shaped jobResult to a plain
// func(context.Context) unit of work.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewPool constructs a pool admitting up to size goroutines at once.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Submit schedules fn to run once a slot is free. Submit itself does
// not block the caller — admission happens on an internal goroutine —
// matching the spec's "Schedule returns a suspension point, not a
// completion point" framing.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		fn(ctx)
	}()
}

// Wait blocks until every submitted unit of work has returned. Used by
// tests and by a graceful-shutdown path; the scheduler itself drives
// completion through task.WhenAll instead.
func (p *Pool) Wait() { p.wg.Wait() }
