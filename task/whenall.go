package task

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// PanicError wraps a recovered panic value so it can travel through an
// error-returning path (errgroup.Group.Wait) and reach WhenAll's caller
// as an ordinary error. Nothing in this package re-raises it: SyncWait
// returns it unchanged like any other error.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("task: panic: %v", e.Value) }

// WhenAll runs every fn concurrently and waits for all to finish.
// Built on errgroup.Group: one goroutine per fn, g.Wait() is the
// "drive everything to completion" step. errgroup cancels the
// group-derived context it passes to fn as soon as any one fn returns
// an error (including a recovered panic); fn still runs to completion
// regardless (g.Wait() blocks on every goroutine returning, not on the
// derived context), but spec.md §7's "already eligible steps complete
// normally" only holds if fn itself never lets that derived context
// cut short a wait gating its own genuine completion. WhenAll does not
// enforce this — it is the caller's obligation. scheduler.run is the
// one caller in this module with already-started, independently
// completing work to protect, and it discharges the obligation by
// closing its fns over the original ctx instead of reading the
// context argument fn receives here.
func WhenAll(ctx context.Context, fns ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Value: r}
				}
			}()
			return fn(gctx)
		})
	}
	return g.Wait()
}
