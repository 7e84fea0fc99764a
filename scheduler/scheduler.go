// Package scheduler builds a dependency DAG from a sequence of stages
// and runs it to completion on a task.Pool (spec.md §4.10).
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/forgecore/ecs/observability"
	"github.com/forgecore/ecs/system"
	"github.com/forgecore/ecs/task"
)

// node is one entry in the trie keyed by the pointer-identity sequence
// of stages seen between RunAll invocations. Mutating a stage's
// systems or order after it has been scheduled silently invalidates
// the cached steps at its node — spec.md §9 flags this as an open
// question answered by "treat stages as immutable once scheduled."
type node struct {
	children map[*system.Stage]*node
	path     []*system.Stage // stage sequence from root to this node
	steps    []Step
	built    bool
}

func newNode(path []*system.Stage) *node {
	return &node{children: make(map[*system.Stage]*node), path: path}
}

// Scheduler caches, per distinct sequence of stages, the built step
// graph so repeated RunAll calls with the same sequence skip DAG
// construction entirely.
type Scheduler struct {
	mu      sync.Mutex
	pool    *task.Pool
	root    *node
	cur     *node
	log     observability.Logger
	metrics *observability.MetricsSink
	tracer  *observability.Tracer
}

// Option configures optional observability hooks on a Scheduler.
type Option func(*Scheduler)

// WithLogger logs a "step completed" line with the step's duration
// through log for every step whose executor returns. A step that panics
// is not logged.
func WithLogger(log observability.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithMetrics records in sink the duration of every step whose
// executor returns, under the "success" outcome. A step that panics is
// not recorded, so the "error" outcome is never used by the scheduler.
func WithMetrics(sink *observability.MetricsSink) Option {
	return func(s *Scheduler) { s.metrics = sink }
}

// WithTracer opens a span around each step's executor.
func WithTracer(tracer *observability.Tracer) Option {
	return func(s *Scheduler) { s.tracer = tracer }
}

// New constructs a scheduler that runs step bodies on pool.
func New(pool *task.Pool, opts ...Option) *Scheduler {
	s := &Scheduler{pool: pool, root: newNode(nil), cur: nil, log: observability.NewNopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule appends stage to the sequence that the next RunAll will
// execute. Call it once per stage, in order, before RunAll.
func (s *Scheduler) Schedule(stage *system.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		s.cur = s.root
	}
	child, ok := s.cur.children[stage]
	if !ok {
		child = newNode(append(append([]*system.Stage(nil), s.cur.path...), stage))
		s.cur.children[stage] = child
	}
	s.cur = child
}

// RunAll executes the sequence of stages scheduled since the last
// RunAll, then resets the cursor to root. With zero stages scheduled
// it is a no-op. Steps run to completion even if one panics; the
// panic is recovered by task.WhenAll and returned from here as a
// *task.PanicError once every eligible step has finished.
func (s *Scheduler) RunAll(ctx context.Context) error {
	s.mu.Lock()
	n := s.cur
	s.cur = nil
	s.mu.Unlock()

	if n == nil || n == s.root {
		return nil
	}
	if !n.built {
		n.steps = buildSteps(n.path)
		n.built = true
	}
	return s.run(ctx, n.steps)
}

func (s *Scheduler) startSpan(ctx context.Context, stepName string) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, nil
	}
	return s.tracer.StartStep(ctx, stepName)
}

func (s *Scheduler) observe(stepName string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveStep(observability.StepSummary{StepName: stepName, Duration: d})
	}
	if s.log != nil {
		s.log.With("step", stepName).With("duration_ms", d.Milliseconds()).Info("step completed")
	}
}

// run drives steps to completion. Every blocking wait that gates an
// already-started step's genuine completion (a SharedTask.Await or an
// AsyncLatch.Wait) is closed over ctx — the caller's original,
// undecorated context — never the errgroup-derived context WhenAll
// hands its fns. errgroup cancels that derived context the instant any
// one fn returns an error (including a recovered panic), which would
// otherwise make an unrelated, still-running sibling's Await/Wait
// return early via its ctx.Done() branch instead of waiting for the
// sibling's actual work to finish — reporting it "done" when it isn't,
// which violates spec.md §7's "already eligible steps complete
// normally." The per-fn context WhenAll passes in is deliberately
// ignored; only real caller cancellation (of ctx itself) should ever
// cut a step short.
func (s *Scheduler) run(ctx context.Context, steps []Step) error {
	n := len(steps)
	if n == 0 {
		return nil
	}

	latches := make([]*task.AsyncLatch, n)
	for i, st := range steps {
		latches[i] = task.NewAsyncLatch(int64(len(st.Deps)))
	}

	shared := make([]*task.SharedTask[struct{}], n)
	for i, st := range steps {
		i, st := i, st
		stepName := fmt.Sprintf("step-%d", i)
		shared[i] = task.NewSharedTask(s.pool, func(context.Context) struct{} {
			latches[i].Wait(ctx)
			stepCtx, span := s.startSpan(ctx, stepName)
			start := time.Now()
			st.System.Executor()(stepCtx).Await(ctx)
			s.observe(stepName, time.Since(start))
			if span != nil {
				span.End()
			}
			return struct{}{}
		})
	}

	var fns []func(context.Context) error
	for i, st := range steps {
		i := i
		fns = append(fns, func(context.Context) error {
			shared[i].Await(ctx)
			return nil
		})
		for _, d := range st.Deps {
			i, d := i, d
			fns = append(fns, func(context.Context) error {
				shared[d].Await(ctx)
				latches[i].CountDown()
				return nil
			})
		}
	}

	return task.WhenAll(ctx, fns...)
}
