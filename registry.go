// Package ecs is the archetype-based entity-component-system registry
// (spec.md §4.6-§4.7). Component identity, archetype storage, and
// view-to-archetype matching live in the typeid, archetype, and view
// packages respectively; this package wires them into the public
// Create/Destroy/Unpack/View surface.
package ecs

import (
	"fmt"
	"sync"

	"github.com/forgecore/ecs/archetype"
	"github.com/forgecore/ecs/container"
	"github.com/forgecore/ecs/entity"
	"github.com/forgecore/ecs/typeid"
	"github.com/forgecore/ecs/view"
)

// componentTag is the Tag type parameter that gives component ids
// their own dense sequence, disjoint from archetype and view ids
// (typeid.Of[Tag, T]).
type componentTag struct{}

const noArchetype = ^uint64(0)

// Registry owns entity id allocation, the archetype-to-view relation
// table, and the fixed table of archetype storages. Storage slots
// never move once assigned, so a *archetype.Storage obtained from a
// Registry stays valid for the registry's lifetime, matching spec.md
// §4.6's "no table growth can invalidate references" requirement.
type Registry struct {
	// sigMu guards archBySig/nextArch/viewBySig/nextView, the dense-id
	// bookkeeping this package layers on top of view.Relations (which
	// has its own internal mutex for the tables spec.md §5 names).
	// Reads of ViewFor/EntityCount are expected to run concurrently
	// from multiple systems during a tick; structural mutation
	// (Create/Destroy) is not, per §5's "not while the scheduler holds
	// any other system" rule, so storages/locations stay unguarded.
	sigMu sync.Mutex

	entities *entity.Manager
	rel      *view.Relations

	storages  [view.MaxArchetypes]*archetype.Storage
	archBySig map[string]uint64
	nextArch  uint64

	viewBySig map[string]uint64
	nextView  uint64

	// locations maps a circulating entity id to the archetype slot it
	// currently lives in, letting Destroy/Unpack work without the
	// caller re-stating the entity's component types.
	locations *container.TypeMap[uint64]
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities:  entity.NewManager(),
		rel:       view.NewRelations(),
		archBySig: make(map[string]uint64),
		viewBySig: make(map[string]uint64),
		locations: container.NewTypeMap[uint64](),
	}
}

type columnSpec struct {
	id     uint64
	create func() archetype.Column
}

// assureArchetype returns the archetype id for the signature made of
// specs, creating the storage (and its columns) on first observation.
// Column order in the created storage follows the signature's sorted
// id order, not the caller's declaration order, so Access lookups by
// id are unaffected by argument order.
func (r *Registry) assureArchetype(specs []columnSpec) uint64 {
	ids := make([]uint64, len(specs))
	for i, s := range specs {
		ids[i] = s.id
	}
	sig := typeid.NewSignature(ids...)
	key := sig.Key()

	r.sigMu.Lock()
	defer r.sigMu.Unlock()

	if id, ok := r.archBySig[key]; ok {
		return id
	}
	if r.nextArch >= view.MaxArchetypes {
		panic("ecs: MaxArchetypes exceeded")
	}
	id := r.nextArch
	r.nextArch++
	r.archBySig[key] = id

	byID := make(map[uint64]func() archetype.Column, len(specs))
	for _, s := range specs {
		byID[s.id] = s.create
	}
	columns := make([]archetype.Column, len(sig))
	for i, cid := range sig {
		columns[i] = byID[cid]()
	}

	s := &archetype.Storage{}
	s.Initialize(sig, columns)
	r.storages[id] = s

	r.rel.AssureArchetype(id, sig)
	return id
}

// assureView returns the view id for ids, registering it with the
// relation table on first observation. Safe for concurrent use: view
// lookups happen from read-only system code that may run in parallel
// during a tick, unlike assureArchetype's structural-mutation callers.
func (r *Registry) assureView(ids []uint64) uint64 {
	sig := typeid.NewSignature(ids...)
	key := sig.Key()

	r.sigMu.Lock()
	defer r.sigMu.Unlock()

	if id, ok := r.viewBySig[key]; ok {
		return id
	}
	id := r.nextView
	r.nextView++
	r.viewBySig[key] = id
	r.rel.AssureView(id, sig)
	return id
}

func newColumn[T any]() archetype.Column { return archetype.NewTypedColumn[T]() }

func componentID[T any]() uint64 { return typeid.Of[componentTag, T]() }

// ComponentID exposes the dense id the registry assigns to T, so
// callers building system.Access declarations (which must compare
// equal to the ids the registry itself uses) don't need their own,
// disjoint Tag type.
func ComponentID[T any]() uint64 { return componentID[T]() }

// Create1 creates an entity with a single component.
func Create1[C1 any](r *Registry, c1 C1) entity.ID {
	id1 := componentID[C1]()
	archID := r.assureArchetype([]columnSpec{{id1, newColumn[C1]}})
	e := r.entities.Obtain()
	s := r.storages[archID]
	s.Insert(e)
	archetype.Access[C1](s, id1).PushBack(c1)
	*r.locations.Assure(uint64(e)) = archID
	return e
}

// Create2 creates an entity with two components.
func Create2[C1, C2 any](r *Registry, c1 C1, c2 C2) entity.ID {
	id1, id2 := componentID[C1](), componentID[C2]()
	archID := r.assureArchetype([]columnSpec{
		{id1, newColumn[C1]},
		{id2, newColumn[C2]},
	})
	e := r.entities.Obtain()
	s := r.storages[archID]
	s.Insert(e)
	archetype.Access[C1](s, id1).PushBack(c1)
	archetype.Access[C2](s, id2).PushBack(c2)
	*r.locations.Assure(uint64(e)) = archID
	return e
}

// Create3 creates an entity with three components.
func Create3[C1, C2, C3 any](r *Registry, c1 C1, c2 C2, c3 C3) entity.ID {
	id1, id2, id3 := componentID[C1](), componentID[C2](), componentID[C3]()
	archID := r.assureArchetype([]columnSpec{
		{id1, newColumn[C1]},
		{id2, newColumn[C2]},
		{id3, newColumn[C3]},
	})
	e := r.entities.Obtain()
	s := r.storages[archID]
	s.Insert(e)
	archetype.Access[C1](s, id1).PushBack(c1)
	archetype.Access[C2](s, id2).PushBack(c2)
	archetype.Access[C3](s, id3).PushBack(c3)
	*r.locations.Assure(uint64(e)) = archID
	return e
}

// Destroy removes e from whichever archetype it lives in and releases
// its id for recycling. Destroying an id the registry never issued, or
// already destroyed, is undefined (entity.Manager tracks no metadata
// to detect it), matching spec.md §4.3/§4.6.
func (r *Registry) Destroy(e entity.ID) {
	archID, ok := r.locations.Get(uint64(e))
	if !ok || archID == noArchetype {
		panic(fmt.Sprintf("ecs: destroy of untracked entity %d", e))
	}
	r.storages[archID].Erase(e)
	*r.locations.Assure(uint64(e)) = noArchetype
	r.entities.Release(e)
}

// DestroyAll clears every archetype storage and resets entity
// allocation in one shot. This is the Cs… empty case of spec.md §4.6's
// destroyAll<Cs…>(): with no view to narrow by, every storage is
// cleared and entityMgr.ReleaseAll() is the bulk-teardown fast path
// rather than releasing each entity individually.
func (r *Registry) DestroyAll() {
	for _, s := range r.storages {
		if s != nil {
			s.Clear()
		}
	}
	r.entities.ReleaseAll()
	r.locations = container.NewTypeMap[uint64]()
}

// DestroyAll1 clears only the archetypes matching the view over C1,
// releasing each affected entity's id individually as its storage is
// cleared. This is the Cs… non-empty case of spec.md §4.6's
// destroyAll<Cs…>() — concrete scenario 2 (§8) calls this "destroyAll<B>()"
// and expects size<A>() to be unaffected.
func DestroyAll1[C1 any](r *Registry) { destroyAllView(r, componentID[C1]()) }

// DestroyAll2 is the two-component form of DestroyAll1.
func DestroyAll2[C1, C2 any](r *Registry) {
	destroyAllView(r, componentID[C1](), componentID[C2]())
}

// DestroyAll3 is the three-component form of DestroyAll1.
func DestroyAll3[C1, C2, C3 any](r *Registry) {
	destroyAllView(r, componentID[C1](), componentID[C2](), componentID[C3]())
}

// destroyAllView clears every storage matching the view over ids,
// releasing each entity it contains before clearing it — mirroring
// entityCount's view-resolution pattern below, but mutating instead of
// just summing.
func destroyAllView(r *Registry, ids ...uint64) {
	viewID := r.assureView(ids)
	for _, archID := range r.rel.ArchetypesFor(viewID) {
		s := r.storages[archID]
		if s == nil {
			continue
		}
		for _, e := range s.Dense() {
			*r.locations.Assure(uint64(e)) = noArchetype
			r.entities.Release(e)
		}
		s.Clear()
	}
}

// Unpack returns a pointer to e's T component. Panics if e does not
// currently carry a T, mirroring the source's `requires contains(e)`
// precondition.
func Unpack[T any](r *Registry, e entity.ID) *T {
	archID, ok := r.locations.Get(uint64(e))
	if !ok || archID == noArchetype {
		panic(fmt.Sprintf("ecs: unpack of untracked entity %d", e))
	}
	p := archetype.Unpack[T](r.storages[archID], e, componentID[T]())
	if p == nil {
		panic(fmt.Sprintf("ecs: entity %d has no component %T", e, *new(T)))
	}
	return p
}

// HasComponents1 reports whether e's archetype carries C1.
func HasComponents1[C1 any](r *Registry, e entity.ID) bool {
	return r.hasAll(e, componentID[C1]())
}

// HasComponents2 reports whether e's archetype carries both C1 and C2.
func HasComponents2[C1, C2 any](r *Registry, e entity.ID) bool {
	return r.hasAll(e, componentID[C1](), componentID[C2]())
}

// HasComponents3 reports whether e's archetype carries C1, C2, and C3.
func HasComponents3[C1, C2, C3 any](r *Registry, e entity.ID) bool {
	return r.hasAll(e, componentID[C1](), componentID[C2](), componentID[C3]())
}

func (r *Registry) hasAll(e entity.ID, ids ...uint64) bool {
	archID, ok := r.locations.Get(uint64(e))
	if !ok || archID == noArchetype {
		return false
	}
	s := r.storages[archID]
	if !s.Contains(e) {
		return false
	}
	for _, id := range ids {
		if !s.HasComponent(id) {
			return false
		}
	}
	return true
}

// EntityCount1 returns the total number of entities across every
// archetype matching the view over C1.
func EntityCount1[C1 any](r *Registry) int { return entityCount(r, componentID[C1]()) }

// EntityCount2 is the two-component form of EntityCount1.
func EntityCount2[C1, C2 any](r *Registry) int {
	return entityCount(r, componentID[C1](), componentID[C2]())
}

// EntityCount3 is the three-component form of EntityCount1.
func EntityCount3[C1, C2, C3 any](r *Registry) int {
	return entityCount(r, componentID[C1](), componentID[C2](), componentID[C3]())
}

// AddComponent2 moves e from a single-component (C1) archetype to the
// two-component (C1, C2) archetype, attaching value. e must currently
// carry exactly C1; this is the structural-mutation primitive the
// cmdbuf package defers to after a tick completes.
func AddComponent2[C1, C2 any](r *Registry, e entity.ID, value C2) {
	id1 := componentID[C1]()
	old, _ := r.storageFor(e)
	c1 := *archetype.Unpack[C1](old, e, id1)
	old.Erase(e)

	newArch := r.assureArchetype([]columnSpec{
		{id1, newColumn[C1]},
		{componentID[C2](), newColumn[C2]},
	})
	ns := r.storages[newArch]
	ns.Insert(e)
	archetype.Access[C1](ns, id1).PushBack(c1)
	archetype.Access[C2](ns, componentID[C2]()).PushBack(value)
	*r.locations.Assure(uint64(e)) = newArch
}

// RemoveComponent2 moves e from a two-component (C1, C2) archetype
// down to the single-component (C1) archetype, dropping C2.
func RemoveComponent2[C1, C2 any](r *Registry, e entity.ID) {
	id1 := componentID[C1]()
	old, _ := r.storageFor(e)
	c1 := *archetype.Unpack[C1](old, e, id1)
	old.Erase(e)

	newArch := r.assureArchetype([]columnSpec{{id1, newColumn[C1]}})
	ns := r.storages[newArch]
	ns.Insert(e)
	archetype.Access[C1](ns, id1).PushBack(c1)
	*r.locations.Assure(uint64(e)) = newArch
}

func (r *Registry) storageFor(e entity.ID) (*archetype.Storage, uint64) {
	archID, ok := r.locations.Get(uint64(e))
	if !ok || archID == noArchetype {
		panic(fmt.Sprintf("ecs: operation on untracked entity %d", e))
	}
	return r.storages[archID], archID
}

func entityCount(r *Registry, ids ...uint64) int {
	viewID := r.assureView(ids)
	total := 0
	for _, archID := range r.rel.ArchetypesFor(viewID) {
		total += r.storages[archID].Size()
	}
	return total
}
