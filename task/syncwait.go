package task

import "context"

type syncResult struct {
	err      error
	panicVal any
	hasPanic bool
}

// SyncWait is the single-buffered-channel "binary latch" used to cross
// from an ordinary calling goroutine into a task graph and block for
// its completion. A panic anywhere in fn's call tree is recovered here
// and re-raised on the caller's goroutine, rather than crashing the
// goroutine it actually occurred on.
func SyncWait(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan syncResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- syncResult{panicVal: r, hasPanic: true}
			}
		}()
		done <- syncResult{err: fn(ctx)}
	}()

	res := <-done
	if res.hasPanic {
		panic(res.panicVal)
	}
	return res.err
}
