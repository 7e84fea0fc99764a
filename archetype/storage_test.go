package archetype_test

import (
	"testing"

	"github.com/forgecore/ecs/archetype"
	"github.com/forgecore/ecs/entity"
)

const (
	posID uint64 = 0
	velID uint64 = 1
)

type position struct{ X, Y float64 }
type velocity struct{ DX, DY float64 }

func newPosVelStorage() *archetype.Storage {
	s := &archetype.Storage{}
	posCol := archetype.NewTypedColumn[position]()
	velCol := archetype.NewTypedColumn[velocity]()
	s.Initialize([]uint64{posID, velID}, []archetype.Column{posCol, velCol})
	return s
}

func insert(s *archetype.Storage, e entity.ID, p position, v velocity) {
	s.Insert(e)
	archetype.Access[position](s, posID).PushBack(p)
	archetype.Access[velocity](s, velID).PushBack(v)
}

func TestInsertAndContains(t *testing.T) {
	s := newPosVelStorage()
	e := entity.ID(3)
	if s.Contains(e) {
		t.Fatalf("expected empty storage not to contain %d", e)
	}
	insert(s, e, position{1, 2}, velocity{3, 4})
	if !s.Contains(e) {
		t.Fatalf("expected storage to contain %d after insert", e)
	}
	if s.Size() != 1 {
		t.Fatalf("expected size 1, got %d", s.Size())
	}
}

func TestUnpackReturnsInsertedValue(t *testing.T) {
	s := newPosVelStorage()
	e := entity.ID(0)
	insert(s, e, position{10, 20}, velocity{1, 1})

	p := archetype.Unpack[position](s, e, posID)
	if p.X != 10 || p.Y != 20 {
		t.Fatalf("expected {10 20}, got %+v", *p)
	}
}

func TestEraseSwapPopKeepsRemainingEntitiesValid(t *testing.T) {
	s := newPosVelStorage()
	e0, e1, e2 := entity.ID(0), entity.ID(1), entity.ID(2)
	insert(s, e0, position{0, 0}, velocity{0, 0})
	insert(s, e1, position{1, 1}, velocity{1, 1})
	insert(s, e2, position{2, 2}, velocity{2, 2})

	s.Erase(e0)

	if s.Contains(e0) {
		t.Fatalf("expected e0 to be gone after erase")
	}
	if !s.Contains(e1) || !s.Contains(e2) {
		t.Fatalf("expected e1 and e2 to remain")
	}
	if s.Size() != 2 {
		t.Fatalf("expected size 2, got %d", s.Size())
	}

	// e2 was swapped into e0's old slot; its component values must
	// have moved with it.
	p2 := archetype.Unpack[position](s, e2, posID)
	if p2.X != 2 || p2.Y != 2 {
		t.Fatalf("expected e2's position to survive the swap, got %+v", *p2)
	}
}

func TestClearLeavesSparseDirtyButContainsSelfVerifies(t *testing.T) {
	s := newPosVelStorage()
	e := entity.ID(5)
	insert(s, e, position{1, 1}, velocity{1, 1})

	s.Clear()
	if !s.Empty() {
		t.Fatalf("expected storage empty after Clear")
	}
	if s.Contains(e) {
		t.Fatalf("expected Contains to self-verify false after Clear despite dirty sparse slot")
	}
}

func TestAccessUnknownComponentReturnsNil(t *testing.T) {
	s := newPosVelStorage()
	if vec := archetype.Access[velocity](s, 99); vec != nil {
		t.Fatalf("expected nil for unknown component id")
	}
}
