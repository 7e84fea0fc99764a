// Package archetype implements the sparse-set columnar storage for one
// archetype (spec.md §4.4).
package archetype

import (
	"github.com/forgecore/ecs/container"
	"github.com/forgecore/ecs/entity"
)

// Column is the runtime-dispatch interface Storage uses to erase or
// clear a component column without Storage itself being generic over
// every component type it holds — the Go translation of the spec's
// "function pointer installed at initialize time" design note (§9).
type Column interface {
	// EraseSwap removes the element at i by swapping in the last
	// element and popping, mirroring the sparse set's own swap-pop.
	EraseSwap(i int)
	// Clear destroys every element, leaving the column empty.
	Clear()
	// Len reports the column's current element count.
	Len() int
}

// TypedColumn adapts a container.DenseVec[T] to the Column interface.
type TypedColumn[T any] struct {
	Vec *container.DenseVec[T]
}

// NewTypedColumn constructs a column backed by a fresh DenseVec.
func NewTypedColumn[T any]() *TypedColumn[T] {
	return &TypedColumn[T]{Vec: container.NewDenseVec[T]()}
}

func (c *TypedColumn[T]) EraseSwap(i int) { c.Vec.SwapRemove(i) }
func (c *TypedColumn[T]) Clear()          { c.Vec.Clear() }
func (c *TypedColumn[T]) Len() int        { return c.Vec.Len() }

// Storage is one archetype's sparse-set-indexed, struct-of-arrays
// component store. An entity id decides its own private sparse slot —
// storages in the same registry do not share a sparse array (DESIGN.md
// Open Question O1), so Contains never reads another storage's writes.
type Storage struct {
	dense  []entity.ID
	sparse []uint32 // sparse[e] is only meaningful when Contains(e)

	componentIDs []uint64
	columns      []Column
	colByID      map[uint64]int
}

const noIndex = ^uint32(0)

// Initialize installs the archetype's component columns. componentIDs
// and columns must be parallel slices assigned once, at archetype
// creation, and never change afterward.
func (s *Storage) Initialize(componentIDs []uint64, columns []Column) {
	s.componentIDs = append([]uint64(nil), componentIDs...)
	s.columns = columns
	s.colByID = make(map[uint64]int, len(componentIDs))
	for i, id := range componentIDs {
		s.colByID[id] = i
	}
}

// Contains reports whether e currently lives in this storage. The
// check is self-verifying: a stale or garbage sparse slot is rejected
// by the back-reference comparison, per spec.md §4.4.
func (s *Storage) Contains(e entity.ID) bool {
	idx := uint32(e)
	if int(idx) >= len(s.sparse) {
		return false
	}
	pos := s.sparse[idx]
	return pos != noIndex && int(pos) < len(s.dense) && s.dense[pos] == e
}

func (s *Storage) growSparse(e entity.ID) {
	idx := int(e)
	if idx < len(s.sparse) {
		return
	}
	grown := make([]uint32, idx+1)
	copy(grown, s.sparse)
	for i := len(s.sparse); i < len(grown); i++ {
		grown[i] = noIndex
	}
	s.sparse = grown
}

// Insert adds e to the storage at the next dense slot. The caller is
// responsible for appending each component value to its column in the
// same call (via the typed Access helpers below) — Insert itself only
// maintains the sparse/dense bookkeeping, mirroring the source's split
// between index management and column append.
func (s *Storage) Insert(e entity.ID) {
	s.growSparse(e)
	s.sparse[e] = uint32(len(s.dense))
	s.dense = append(s.dense, e)
}

// Erase removes e, swapping the last entity into its slot and
// swap-popping every column at that slot.
func (s *Storage) Erase(e entity.ID) {
	i := s.sparse[e]
	last := len(s.dense) - 1
	back := s.dense[last]

	s.dense[i] = back
	s.sparse[back] = i
	s.dense = s.dense[:last]

	for _, col := range s.columns {
		col.EraseSwap(int(i))
	}
}

// Clear destroys every entity and column value. The sparse array is
// left dirty deliberately — Contains still self-verifies against the
// now-empty dense array, per spec.md §4.4.
func (s *Storage) Clear() {
	s.dense = s.dense[:0]
	for _, col := range s.columns {
		col.Clear()
	}
}

// Dense exposes the live entity ids in storage order — parallel to
// every column's Slice() at the same index.
func (s *Storage) Dense() []entity.ID { return s.dense }

// Size reports the number of entities currently stored.
func (s *Storage) Size() int { return len(s.dense) }

// Empty reports whether the storage holds no entities.
func (s *Storage) Empty() bool { return len(s.dense) == 0 }

// ComponentIDs returns the archetype's component id list (unsorted
// input order, as installed by Initialize).
func (s *Storage) ComponentIDs() []uint64 { return s.componentIDs }

// HasComponent reports whether this archetype carries componentID.
func (s *Storage) HasComponent(componentID uint64) bool {
	_, ok := s.colByID[componentID]
	return ok
}

// columnIndex returns the column slot for a component id, or -1.
func (s *Storage) columnIndex(componentID uint64) int {
	if i, ok := s.colByID[componentID]; ok {
		return i
	}
	return -1
}

// Access returns the typed column's DenseVec for direct slice access
// (the SubView fast path), or nil if this storage has no such column.
func Access[T any](s *Storage, componentID uint64) *container.DenseVec[T] {
	i := s.columnIndex(componentID)
	if i < 0 {
		return nil
	}
	tc, ok := s.columns[i].(*TypedColumn[T])
	if !ok {
		return nil
	}
	return tc.Vec
}

// Unpack returns a pointer to e's T component, requiring Contains(e).
func Unpack[T any](s *Storage, e entity.ID, componentID uint64) *T {
	vec := Access[T](s, componentID)
	if vec == nil {
		return nil
	}
	return vec.At(int(s.sparse[e]))
}
