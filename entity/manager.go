// Package entity implements the entity id allocator (spec.md §4.3).
package entity

import "sync"

// ID is an opaque entity identifier. The zero value is a valid id —
// the manager's first obtained id is 0 — so callers that need a
// sentinel should use a separate bool or pointer, the way
// archetype.Storage's Contains already does, rather than relying on a
// reserved id value.
type ID uint32

// Manager generates and recycles entity identifiers. It stores no
// per-entity metadata (no generation counter): recycling a value that
// was never obtained, or releasing the same id twice, is undefined —
// the manager has nothing to check it against, by design (spec.md
// §4.3).
type Manager struct {
	mu       sync.Mutex
	next     uint32
	recycled []uint32
}

// NewManager constructs an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Obtain returns a recycled id if one is available, else the next
// monotonically increasing id.
func (m *Manager) Obtain() ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.recycled); n > 0 {
		id := m.recycled[n-1]
		m.recycled = m.recycled[:n-1]
		return ID(id)
	}
	id := m.next
	m.next++
	return ID(id)
}

// Release pushes id onto the recycling stack.
func (m *Manager) Release(id ID) {
	m.mu.Lock()
	m.recycled = append(m.recycled, uint32(id))
	m.mu.Unlock()
}

// ReleaseAll clears the recycling stack and resets the allocation
// counter — the bulk fast path used when destroying every entity in a
// registry.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	m.recycled = m.recycled[:0]
	m.next = 0
	m.mu.Unlock()
}

// CirculatingCount returns the number of ids currently outstanding
// (obtained but not released).
func (m *Manager) CirculatingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.next) - len(m.recycled)
}

// RecycledCount returns the number of ids awaiting reuse.
func (m *Manager) RecycledCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recycled)
}
