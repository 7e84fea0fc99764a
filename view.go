package ecs

import (
	"github.com/forgecore/ecs/archetype"
	"github.com/forgecore/ecs/entity"
)

// SubView1 is a per-archetype handle over one storage's C1 column
// (spec.md §4.7). Entities and C1 are parallel slices.
type SubView1[C1 any] struct {
	Entities []entity.ID
	C1       []C1
}

// SubView2 is the two-component form of SubView1.
type SubView2[C1, C2 any] struct {
	Entities []entity.ID
	C1       []C1
	C2       []C2
}

// SubView3 is the three-component form of SubView1.
type SubView3[C1, C2, C3 any] struct {
	Entities []entity.ID
	C1       []C1
	C2       []C2
	C3       []C3
}

// View1 borrows the archetype list satisfying C1.
type View1[C1 any] struct {
	registry *Registry
	viewID   uint64
	id1      uint64
}

// ViewFor1 builds (or reuses) the view matching entities carrying C1.
func ViewFor1[C1 any](r *Registry) View1[C1] {
	id1 := componentID[C1]()
	return View1[C1]{registry: r, viewID: r.assureView([]uint64{id1}), id1: id1}
}

// Archetypes returns the archetype ids currently matching this view,
// exact-match-first.
func (v View1[C1]) Archetypes() []uint64 { return v.registry.rel.ArchetypesFor(v.viewID) }

// Iterate calls fn once per non-empty matching archetype.
func (v View1[C1]) Iterate(fn func(SubView1[C1])) {
	for _, archID := range v.Archetypes() {
		s := v.registry.storages[archID]
		if s.Empty() {
			continue
		}
		fn(SubView1[C1]{
			Entities: s.Dense(),
			C1:       archetype.Access[C1](s, v.id1).Slice(),
		})
	}
}

// View2 is the two-component form of View1.
type View2[C1, C2 any] struct {
	registry *Registry
	viewID   uint64
	id1, id2 uint64
}

// ViewFor2 builds (or reuses) the view matching entities carrying both
// C1 and C2.
func ViewFor2[C1, C2 any](r *Registry) View2[C1, C2] {
	id1, id2 := componentID[C1](), componentID[C2]()
	return View2[C1, C2]{registry: r, viewID: r.assureView([]uint64{id1, id2}), id1: id1, id2: id2}
}

// Archetypes returns the archetype ids currently matching this view,
// exact-match-first.
func (v View2[C1, C2]) Archetypes() []uint64 { return v.registry.rel.ArchetypesFor(v.viewID) }

// Iterate calls fn once per non-empty matching archetype.
func (v View2[C1, C2]) Iterate(fn func(SubView2[C1, C2])) {
	for _, archID := range v.Archetypes() {
		s := v.registry.storages[archID]
		if s.Empty() {
			continue
		}
		fn(SubView2[C1, C2]{
			Entities: s.Dense(),
			C1:       archetype.Access[C1](s, v.id1).Slice(),
			C2:       archetype.Access[C2](s, v.id2).Slice(),
		})
	}
}

// View3 is the three-component form of View1.
type View3[C1, C2, C3 any] struct {
	registry      *Registry
	viewID        uint64
	id1, id2, id3 uint64
}

// ViewFor3 builds (or reuses) the view matching entities carrying C1,
// C2, and C3.
func ViewFor3[C1, C2, C3 any](r *Registry) View3[C1, C2, C3] {
	id1, id2, id3 := componentID[C1](), componentID[C2](), componentID[C3]()
	return View3[C1, C2, C3]{
		registry: r,
		viewID:   r.assureView([]uint64{id1, id2, id3}),
		id1:      id1, id2: id2, id3: id3,
	}
}

// Archetypes returns the archetype ids currently matching this view,
// exact-match-first.
func (v View3[C1, C2, C3]) Archetypes() []uint64 { return v.registry.rel.ArchetypesFor(v.viewID) }

// Iterate calls fn once per non-empty matching archetype.
func (v View3[C1, C2, C3]) Iterate(fn func(SubView3[C1, C2, C3])) {
	for _, archID := range v.Archetypes() {
		s := v.registry.storages[archID]
		if s.Empty() {
			continue
		}
		fn(SubView3[C1, C2, C3]{
			Entities: s.Dense(),
			C1:       archetype.Access[C1](s, v.id1).Slice(),
			C2:       archetype.Access[C2](s, v.id2).Slice(),
			C3:       archetype.Access[C3](s, v.id3).Slice(),
		})
	}
}

// ForEach1 drives fn over every entity carrying C1, unrolling the
// inner loop by 2 — a micro-optimization with no semantic difference
// from ForEachSimple1 (spec.md §4.7).
func ForEach1[C1 any](r *Registry, fn func(e entity.ID, c1 *C1)) {
	ViewFor1[C1](r).Iterate(func(sv SubView1[C1]) {
		n := len(sv.Entities)
		i := 0
		for ; i+1 < n; i += 2 {
			fn(sv.Entities[i], &sv.C1[i])
			fn(sv.Entities[i+1], &sv.C1[i+1])
		}
		for ; i < n; i++ {
			fn(sv.Entities[i], &sv.C1[i])
		}
	})
}

// ForEachSimple1 is the plain, unrolled-loop-free form of ForEach1.
func ForEachSimple1[C1 any](r *Registry, fn func(e entity.ID, c1 *C1)) {
	ViewFor1[C1](r).Iterate(func(sv SubView1[C1]) {
		for i, e := range sv.Entities {
			fn(e, &sv.C1[i])
		}
	})
}

// ForEach2 is the two-component form of ForEach1.
func ForEach2[C1, C2 any](r *Registry, fn func(e entity.ID, c1 *C1, c2 *C2)) {
	ViewFor2[C1, C2](r).Iterate(func(sv SubView2[C1, C2]) {
		n := len(sv.Entities)
		i := 0
		for ; i+1 < n; i += 2 {
			fn(sv.Entities[i], &sv.C1[i], &sv.C2[i])
			fn(sv.Entities[i+1], &sv.C1[i+1], &sv.C2[i+1])
		}
		for ; i < n; i++ {
			fn(sv.Entities[i], &sv.C1[i], &sv.C2[i])
		}
	})
}

// ForEachSimple2 is the plain, unrolled-loop-free form of ForEach2.
func ForEachSimple2[C1, C2 any](r *Registry, fn func(e entity.ID, c1 *C1, c2 *C2)) {
	ViewFor2[C1, C2](r).Iterate(func(sv SubView2[C1, C2]) {
		for i, e := range sv.Entities {
			fn(e, &sv.C1[i], &sv.C2[i])
		}
	})
}

// ForEach3 is the three-component form of ForEach1.
func ForEach3[C1, C2, C3 any](r *Registry, fn func(e entity.ID, c1 *C1, c2 *C2, c3 *C3)) {
	ViewFor3[C1, C2, C3](r).Iterate(func(sv SubView3[C1, C2, C3]) {
		n := len(sv.Entities)
		i := 0
		for ; i+1 < n; i += 2 {
			fn(sv.Entities[i], &sv.C1[i], &sv.C2[i], &sv.C3[i])
			fn(sv.Entities[i+1], &sv.C1[i+1], &sv.C2[i+1], &sv.C3[i+1])
		}
		for ; i < n; i++ {
			fn(sv.Entities[i], &sv.C1[i], &sv.C2[i], &sv.C3[i])
		}
	})
}

// ForEachSimple3 is the plain, unrolled-loop-free form of ForEach3.
func ForEachSimple3[C1, C2, C3 any](r *Registry, fn func(e entity.ID, c1 *C1, c2 *C2, c3 *C3)) {
	ViewFor3[C1, C2, C3](r).Iterate(func(sv SubView3[C1, C2, C3]) {
		for i, e := range sv.Entities {
			fn(e, &sv.C1[i], &sv.C2[i], &sv.C3[i])
		}
	})
}
