package scheduler

import (
	"github.com/forgecore/ecs/container"
	"github.com/forgecore/ecs/system"
)

// Step is one system execution with its precomputed dependency
// indices — positions into the same Step slice, already topologically
// ordered and transitively reduced (spec.md §4.10, GLOSSARY
// "Scheduler step").
type Step struct {
	System system.System
	Deps   []int
}

type flatEntry struct {
	sys      system.System
	stage    *system.Stage
	stageIdx int
}

// buildSteps flattens stages into dependency-ordered steps.
//
// An edge i -> j ("i depends on j") is added when either:
//   - j is in a strictly earlier stage and system.Dependency(i, j)
//     holds (a genuine component read/write conflict carried across
//     the stage boundary), or
//   - i and j are in the same stage and the stage declares an
//     explicit runAfter/runBefore between them — independent of
//     component overlap, since same-stage systems with no declared
//     order are siblings regardless of what they touch (spec.md
//     §4.10 step 2, §9 Open Questions).
//
// This resolves spec.md §4.10's "AND dependency(i,j) holds in both
// cases" wording in favor of the reading that makes explicit order
// alone sufficient within a stage — the only reading under which an
// explicit-order-only stage (no declared component access at all)
// produces any edges, matching concrete scenario 4.
func buildSteps(stages []*system.Stage) []Step {
	var entries []flatEntry
	for idx, stg := range stages {
		for _, sys := range stg.Systems {
			entries = append(entries, flatEntry{sys: sys, stage: stg, stageIdx: idx})
		}
	}
	n := len(entries)
	if n == 0 {
		return nil
	}

	dependsOn := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dependsOnEdge(entries, i, j) {
				dependsOn[i] = append(dependsOn[i], j)
			}
		}
	}

	order := topoSort(dependsOn)
	reduced := transitiveReduce(dependsOn, order)

	newIndexOf := make([]int, n)
	for pos, oldIdx := range order {
		newIndexOf[oldIdx] = pos
	}

	steps := make([]Step, n)
	for pos, oldIdx := range order {
		deps := make([]int, 0, len(reduced[oldIdx]))
		for _, d := range reduced[oldIdx] {
			deps = append(deps, newIndexOf[d])
		}
		steps[pos] = Step{System: entries[oldIdx].sys, Deps: deps}
	}
	return steps
}

func dependsOnEdge(entries []flatEntry, i, j int) bool {
	ei, ej := entries[i], entries[j]
	if ej.stageIdx < ei.stageIdx && system.Dependency(ei.sys, ej.sys) {
		return true
	}
	if ei.stageIdx == ej.stageIdx && ei.stage == ej.stage && ei.stage.RunsAfter(ei.sys, ej.sys) {
		return true
	}
	return false
}

// topoSort runs Kahn's algorithm over dependsOn (dependsOn[i] lists
// the nodes that must complete before i), using a container.RingDeque
// as the ready worklist. Panics if a cycle is present — a programmer
// error per spec.md §7 ("cycle in explicit stage order"), which must
// never occur given stage monotonicity and that explicit orders are
// only consulted within a stage.
func topoSort(dependsOn [][]int) []int {
	n := len(dependsOn)
	indegree := make([]int, n)
	forward := make([][]int, n) // forward[j] = nodes that depend on j
	for i, deps := range dependsOn {
		indegree[i] = len(deps)
		for _, j := range deps {
			forward[j] = append(forward[j], i)
		}
	}

	ready := container.NewRingDeque[int]()
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready.PushBack(i)
		}
	}

	order := make([]int, 0, n)
	for !ready.Empty() {
		x := ready.PopFront()
		order = append(order, x)
		for _, succ := range forward[x] {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready.PushBack(succ)
			}
		}
	}

	if len(order) != n {
		panic("scheduler: cycle detected in stage dependency graph")
	}
	return order
}

// transitiveReduce drops any direct edge i->j already reachable from i
// through some other direct dependency of i, processing nodes in
// topological order so every dependency's own ancestor set is already
// known.
func transitiveReduce(dependsOn [][]int, order []int) [][]int {
	n := len(dependsOn)
	ancestors := make([]map[int]bool, n)

	for _, i := range order {
		anc := make(map[int]bool, len(dependsOn[i]))
		for _, k := range dependsOn[i] {
			anc[k] = true
			for a := range ancestors[k] {
				anc[a] = true
			}
		}
		ancestors[i] = anc
	}

	reduced := make([][]int, n)
	for i, deps := range dependsOn {
		for _, j := range deps {
			redundant := false
			for _, k := range deps {
				if k == j {
					continue
				}
				if ancestors[k][j] {
					redundant = true
					break
				}
			}
			if !redundant {
				reduced[i] = append(reduced[i], j)
			}
		}
	}
	return reduced
}
