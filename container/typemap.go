package container

// TypeMap is a Vec<V> indexed by a dense integer key (a
// typeid.TypeIndex in practice, though this package stays decoupled
// from typeid to avoid an import cycle). Assure grows the backing
// slice and default-constructs new slots, as used by archetype storage
// to hold the erased column handle for each component type.
type TypeMap[V any] struct {
	slots []V
}

// NewTypeMap constructs an empty map.
func NewTypeMap[V any]() *TypeMap[V] {
	return &TypeMap[V]{}
}

// Assure grows the map to cover index idx (if needed) and returns a
// pointer to its slot.
func (m *TypeMap[V]) Assure(idx uint64) *V {
	if int(idx) >= len(m.slots) {
		grown := make([]V, idx+1)
		copy(grown, m.slots)
		m.slots = grown
	}
	return &m.slots[idx]
}

// Get returns the slot at idx and whether it is within the currently
// allocated range.
func (m *TypeMap[V]) Get(idx uint64) (V, bool) {
	if int(idx) >= len(m.slots) {
		var zero V
		return zero, false
	}
	return m.slots[idx], true
}

// Len reports the number of allocated slots (not all of which need be
// "in use" — callers track occupancy separately, e.g. via a nil check
// on pointer-typed V).
func (m *TypeMap[V]) Len() int { return len(m.slots) }

// ForEachAssigned calls fn for every allocated slot in index order,
// including ones the caller never assigned — fn is expected to treat
// the zero value of V as "unassigned" the way view.Relations does with
// a nil typeid.Signature.
func (m *TypeMap[V]) ForEachAssigned(fn func(idx uint64, value V)) {
	for i, v := range m.slots {
		fn(uint64(i), v)
	}
}
