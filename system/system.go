// Package system defines the System object and Stage grouping the
// scheduler builds a dependency graph from (spec.md §4.9).
package system

import (
	"context"
	"sync"

	"github.com/forgecore/ecs/task"
)

// Handle is a system's pointer identity, used as the key of a Stage's
// explicit-order relations. Implementations
// obtain one by returning the address of their own receiver, mirroring
// the teacher's workGroupHandle pattern.
type Handle = *struct{}

// Access describes one component a system's declared views touch, and
// whether that access is read-only.
type Access struct {
	ComponentID uint64
	ReadOnly    bool
}

// System is one schedulable unit of work.
type System interface {
	// Handle returns this system's pointer identity.
	Handle() Handle
	// Executor returns the callable that, given a context, produces
	// the task performing the system's work for one tick.
	Executor() func(context.Context) *task.Task[struct{}]
	// DataAccess lists every component this system's declared views
	// touch, and whether each access is read-only. The scheduler uses
	// this — and only this — to derive dependency edges (§4.10).
	DataAccess() []Access
}

// Base gives System implementations a memoized DataAccess and a
// stable Handle without boilerplate: construct one with NewBase, passing
// the executor and the access-list builder.
type Base struct {
	self      struct{}
	once      sync.Once
	accesses  []Access
	buildOnce func() []Access
	run       func(context.Context) *task.Task[struct{}]
}

// NewBase constructs a Base. build is called at most once, the first
// time DataAccess is requested, to compute the system's access list
// from its declared views.
func NewBase(run func(context.Context) *task.Task[struct{}], build func() []Access) *Base {
	return &Base{run: run, buildOnce: build}
}

func (b *Base) Handle() Handle { return &b.self }

func (b *Base) Executor() func(context.Context) *task.Task[struct{}] { return b.run }

func (b *Base) DataAccess() []Access {
	b.once.Do(func() { b.accesses = b.buildOnce() })
	return b.accesses
}

// Dependency reports whether a and b share a component access where
// at least one side is not read-only (spec.md §4.9).
func Dependency(a, b System) bool {
	for _, ac := range a.DataAccess() {
		for _, bc := range b.DataAccess() {
			if ac.ComponentID != bc.ComponentID {
				continue
			}
			if !ac.ReadOnly || !bc.ReadOnly {
				return true
			}
		}
	}
	return false
}

// Stage groups systems that run in the same scheduling pass, plus
// per-system explicit ordering constraints. Within a stage, only these
// explicit constraints order systems: two systems in the same stage
// with no declared order are siblings and may run concurrently even
// when both write the same component. Component-derived edges apply
// only across stages. The scheduler caches its step graph by stage
// pointer, so changing a stage after it has been scheduled silently
// leaves the cached graph stale.
type Stage struct {
	Systems   []System
	runAfter  map[Handle][]Handle
	runBefore map[Handle][]Handle
}

// NewStage constructs an empty stage.
func NewStage() *Stage {
	return &Stage{
		runAfter:  make(map[Handle][]Handle),
		runBefore: make(map[Handle][]Handle),
	}
}

// Add registers sys in the stage.
func (s *Stage) Add(sys System) {
	s.Systems = append(s.Systems, sys)
}

// RunAfter declares that sys must run after dep within this stage.
func (s *Stage) RunAfter(sys, dep System) {
	s.runAfter[sys.Handle()] = append(s.runAfter[sys.Handle()], dep.Handle())
}

// RunBefore declares that sys must run before dep within this stage.
func (s *Stage) RunBefore(sys, dep System) {
	s.runBefore[sys.Handle()] = append(s.runBefore[sys.Handle()], dep.Handle())
}

// HasExplicitOrder reports whether a and b have a declared order
// constraint between them: a.runBefore mentions b, or b.runAfter
// mentions a (spec.md §4.9, verbatim).
func (s *Stage) HasExplicitOrder(a, b System) bool {
	for _, h := range s.runBefore[a.Handle()] {
		if h == b.Handle() {
			return true
		}
	}
	for _, h := range s.runAfter[b.Handle()] {
		if h == a.Handle() {
			return true
		}
	}
	return false
}

// RunsAfter reports whether a is explicitly ordered after b: a.runAfter
// mentions b, or b.runBefore mentions a. It equals HasExplicitOrder(b,
// a), and is the check the scheduler uses for same-stage edges.
func (s *Stage) RunsAfter(a, b System) bool {
	for _, h := range s.runAfter[a.Handle()] {
		if h == b.Handle() {
			return true
		}
	}
	for _, h := range s.runBefore[b.Handle()] {
		if h == a.Handle() {
			return true
		}
	}
	return false
}
