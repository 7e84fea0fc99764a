// Package view maintains the relation between archetype signatures and
// view signatures: which archetypes satisfy which view (spec.md §4.5).
package view

import (
	"sync"

	"github.com/kamstrup/intmap"

	"github.com/forgecore/ecs/container"
	"github.com/forgecore/ecs/typeid"
)

// MaxArchetypes bounds the number of distinct archetypes a registry may
// create, matching spec.md §4.5.
const MaxArchetypes = 4096

// Relations tracks every known archetype signature and view signature,
// and for each view, the archetypes currently known to satisfy it.
type Relations struct {
	mu sync.Mutex

	archetypeSignatures *container.TypeMap[typeid.Signature]
	viewSignatures      *container.TypeMap[typeid.Signature]

	// viewArchetypes holds, per view id, the archetype ids whose
	// signature is a superset of the view's. The list is partitioned
	// exact-match-first: an archetype whose signature equals the
	// view's exactly is prepended rather than appended, since a view
	// iterating its own exact archetype is the dominant case.
	viewArchetypes *intmap.Map[uint64, []uint64]

	knownArchetypes int
}

// NewRelations constructs an empty relation table.
func NewRelations() *Relations {
	return &Relations{
		archetypeSignatures: container.NewTypeMap[typeid.Signature](),
		viewSignatures:      container.NewTypeMap[typeid.Signature](),
		viewArchetypes:      intmap.New[uint64, []uint64](64),
	}
}

// AssureArchetype idempotently registers an archetype id's signature,
// updating every already-known view's archetype list if the new
// archetype satisfies it. Safe for concurrent use: a relaxed read
// under Lock-free presence check is not attempted here because the
// update (appending to possibly many views' lists) is not a single
// word — the whole operation is guarded by one mutex, matching spec.md
// §5's requirement that AssureArchetype/AssureView serialize with each
// other but not with readers holding an already-built view list.
func (r *Relations) AssureArchetype(archetypeID uint64, sig typeid.Signature) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.archetypeSignatures.Get(archetypeID); ok {
		return
	}
	if r.knownArchetypes >= MaxArchetypes {
		panic("view: MaxArchetypes exceeded")
	}
	*r.archetypeSignatures.Assure(archetypeID) = sig
	r.knownArchetypes++

	r.viewSignatures.ForEachAssigned(func(viewID uint64, viewSig typeid.Signature) {
		if viewSig == nil {
			return
		}
		if viewSig.Subset(sig) {
			r.appendArchetype(viewID, archetypeID, viewSig.Equal(sig))
		}
	})
}

// AssureView idempotently registers a view id's signature and builds
// its initial archetype list from every archetype already known.
func (r *Relations) AssureView(viewID uint64, sig typeid.Signature) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.viewSignatures.Get(viewID); ok {
		return
	}
	*r.viewSignatures.Assure(viewID) = sig

	r.archetypeSignatures.ForEachAssigned(func(archetypeID uint64, archSig typeid.Signature) {
		if archSig == nil {
			return
		}
		if sig.Subset(archSig) {
			r.appendArchetype(viewID, archetypeID, sig.Equal(archSig))
		}
	})
}

// appendArchetype must be called with mu held.
func (r *Relations) appendArchetype(viewID, archetypeID uint64, exact bool) {
	list, _ := r.viewArchetypes.Get(viewID)
	if exact {
		list = append([]uint64{archetypeID}, list...)
	} else {
		list = append(list, archetypeID)
	}
	r.viewArchetypes.Put(viewID, list)
}

// ArchetypesFor returns the archetype ids currently known to satisfy
// viewID, exact-match-first. The returned slice is owned by Relations
// and must not be mutated by the caller.
func (r *Relations) ArchetypesFor(viewID uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, _ := r.viewArchetypes.Get(viewID)
	return list
}
