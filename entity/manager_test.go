package entity_test

import (
	"sync"
	"testing"

	"github.com/forgecore/ecs/entity"
)

func TestObtainIsMonotonicWithoutRecycling(t *testing.T) {
	m := entity.NewManager()
	var ids []entity.ID
	for i := 0; i < 5; i++ {
		ids = append(ids, m.Obtain())
	}
	for i, id := range ids {
		if id != entity.ID(i) {
			t.Fatalf("expected id %d, got %d", i, id)
		}
	}
	if got := m.CirculatingCount(); got != 5 {
		t.Fatalf("expected 5 circulating, got %d", got)
	}
	if got := m.RecycledCount(); got != 0 {
		t.Fatalf("expected 0 recycled, got %d", got)
	}
}

func TestReleaseRecyclesMostRecentlyFreed(t *testing.T) {
	m := entity.NewManager()
	a := m.Obtain()
	b := m.Obtain()
	_ = a

	m.Release(b)
	if got := m.RecycledCount(); got != 1 {
		t.Fatalf("expected 1 recycled, got %d", got)
	}

	reused := m.Obtain()
	if reused != b {
		t.Fatalf("expected recycled id %d to be reused, got %d", b, reused)
	}
	if got := m.RecycledCount(); got != 0 {
		t.Fatalf("expected recycling stack drained, got %d", got)
	}
}

func TestReleaseAllResetsState(t *testing.T) {
	m := entity.NewManager()
	for i := 0; i < 10; i++ {
		m.Obtain()
	}
	m.ReleaseAll()
	if got := m.CirculatingCount(); got != 0 {
		t.Fatalf("expected 0 circulating after ReleaseAll, got %d", got)
	}
	if got := m.RecycledCount(); got != 0 {
		t.Fatalf("expected 0 recycled after ReleaseAll, got %d", got)
	}
	if id := m.Obtain(); id != 0 {
		t.Fatalf("expected allocation to restart at 0, got %d", id)
	}
}

func TestObtainIsSafeForConcurrentUse(t *testing.T) {
	m := entity.NewManager()
	const goroutines = 8
	const perGoroutine = 200

	var wg sync.WaitGroup
	ids := make(chan entity.ID, goroutines*perGoroutine)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				ids <- m.Obtain()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[entity.ID]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("id %d obtained more than once under concurrent use", id)
		}
		seen[id] = true
	}
	if len(seen) != goroutines*perGoroutine {
		t.Fatalf("expected %d distinct ids, got %d", goroutines*perGoroutine, len(seen))
	}
}
