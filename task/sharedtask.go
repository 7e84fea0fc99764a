package task

import (
	"context"
	"sync/atomic"
)

// waiterNode is one entry in a lock-free, singly linked LIFO waiter
// list: a goroutine about to block pushes its own node onto the head
// via CAS, and the publishing goroutine walks from the head it swapped
// out, releasing most-recently-added waiters first.
type waiterNode struct {
	ch   chan struct{}
	next *waiterNode
}

type sharedTaskState struct {
	// kind is one of the four states in spec.md §3/§4.8: notStarted
	// (state == nil), started-no-waiters (kind == kindRunning,
	// waiters == nil), started-waiters (kind == kindRunning, waiters
	// != nil), ready (kind == kindReady).
	kind    int
	waiters *waiterNode
}

const (
	kindRunning = iota
	kindReady
)

// SharedTask is a ref-counted, multi-waiter task: any number of
// goroutines may call Await concurrently, all observing the same
// single execution of fn.
type SharedTask[T any] struct {
	pool *Pool
	fn   func(context.Context) T

	state atomic.Pointer[sharedTaskState]

	result   T
	panicVal any
}

// NewSharedTask constructs a shared task that will run fn at most once
// across every Await caller.
func NewSharedTask[T any](pool *Pool, fn func(context.Context) T) *SharedTask[T] {
	return &SharedTask[T]{pool: pool, fn: fn}
}

// ensureStarted performs the not-started -> started-no-waiters
// transition exactly once, via a single CAS: only the goroutine whose
// CompareAndSwap from nil succeeds submits the work.
func (s *SharedTask[T]) ensureStarted(ctx context.Context) {
	if s.state.Load() != nil {
		return
	}
	started := &sharedTaskState{kind: kindRunning}
	if !s.state.CompareAndSwap(nil, started) {
		return // another goroutine won the race
	}
	s.pool.Submit(ctx, func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.panicVal = r
			}
			s.publish()
		}()
		s.result = s.fn(ctx)
	})
}

// publish performs the transition to ready: the CompareAndSwap store
// is the release operation the spec requires, making result/panicVal
// visible to any goroutine that subsequently observes kindReady via a
// successful load (the matching acquire). Every waiter queued under
// the swapped-out state is released, most recently added first.
func (s *SharedTask[T]) publish() {
	for {
		cur := s.state.Load()
		next := &sharedTaskState{kind: kindReady}
		if s.state.CompareAndSwap(cur, next) {
			for w := cur.waiters; w != nil; w = w.next {
				close(w.ch)
			}
			return
		}
	}
}

// Await starts the task if necessary and blocks until its single
// execution completes, returning the shared result. Concurrent callers
// all observe the same result or the same re-raised panic.
func (s *SharedTask[T]) Await(ctx context.Context) T {
	s.ensureStarted(ctx)

	for {
		cur := s.state.Load()
		if cur.kind == kindReady {
			if s.panicVal != nil {
				panic(s.panicVal)
			}
			return s.result
		}

		ch := make(chan struct{})
		next := &sharedTaskState{kind: kindRunning, waiters: &waiterNode{ch: ch, next: cur.waiters}}
		if !s.state.CompareAndSwap(cur, next) {
			continue // lost the race to another waiter or to publish; retry
		}

		select {
		case <-ch:
		case <-ctx.Done():
			var zero T
			return zero
		}
	}
}
