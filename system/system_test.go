package system_test

import (
	"context"
	"testing"

	"github.com/forgecore/ecs/system"
	"github.com/forgecore/ecs/task"
)

const (
	posID uint64 = 1
	velID uint64 = 2
)

func newSystem(accesses []system.Access) system.System {
	return system.NewBase(
		func(ctx context.Context) *task.Task[struct{}] {
			return task.NewTask(task.NewPool(1), func(context.Context) struct{} { return struct{}{} })
		},
		func() []system.Access { return accesses },
	)
}

func TestHandleIsStableAcrossCalls(t *testing.T) {
	s := newSystem(nil)
	if s.Handle() != s.Handle() {
		t.Fatalf("expected stable handle identity")
	}
}

func TestDataAccessIsMemoized(t *testing.T) {
	calls := 0
	s := system.NewBase(
		func(ctx context.Context) *task.Task[struct{}] { return nil },
		func() []system.Access {
			calls++
			return []system.Access{{ComponentID: posID, ReadOnly: true}}
		},
	)
	s.DataAccess()
	s.DataAccess()
	s.DataAccess()
	if calls != 1 {
		t.Fatalf("expected DataAccess build to run once, got %d calls", calls)
	}
}

func TestDependencyRequiresWriteOverlap(t *testing.T) {
	a := newSystem([]system.Access{{ComponentID: posID, ReadOnly: true}})
	b := newSystem([]system.Access{{ComponentID: posID, ReadOnly: true}})
	if system.Dependency(a, b) {
		t.Fatalf("expected no dependency between two read-only accessors")
	}

	c := newSystem([]system.Access{{ComponentID: posID, ReadOnly: false}})
	if !system.Dependency(a, c) {
		t.Fatalf("expected a dependency when one side writes the shared component")
	}
}

func TestDependencyRequiresSharedComponent(t *testing.T) {
	a := newSystem([]system.Access{{ComponentID: posID, ReadOnly: false}})
	b := newSystem([]system.Access{{ComponentID: velID, ReadOnly: false}})
	if system.Dependency(a, b) {
		t.Fatalf("expected no dependency across disjoint component sets")
	}
}

func TestHasExplicitOrder(t *testing.T) {
	stage := system.NewStage()
	a := newSystem(nil)
	b := newSystem(nil)
	stage.Add(a)
	stage.Add(b)
	stage.RunAfter(b, a)

	if !stage.HasExplicitOrder(a, b) {
		t.Fatalf("expected explicit order between a and b")
	}
	if !stage.RunsAfter(b, a) {
		t.Fatalf("expected b to be oriented after a")
	}

	c := newSystem(nil)
	if stage.HasExplicitOrder(a, c) {
		t.Fatalf("expected no explicit order with an unrelated system")
	}
}
