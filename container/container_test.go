package container_test

import (
	"testing"

	"github.com/forgecore/ecs/container"
)

func TestDenseVecPushPop(t *testing.T) {
	v := container.NewDenseVec[int]()
	for i := 0; i < 100; i++ {
		v.PushBack(i)
	}
	if v.Len() != 100 {
		t.Fatalf("expected 100 elements, got %d", v.Len())
	}
	for i := 99; i >= 0; i-- {
		got := v.PopBack()
		if got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
	if !v.Empty() {
		t.Fatalf("expected empty vector after draining")
	}
}

func TestDenseVecSwapRemove(t *testing.T) {
	v := container.NewDenseVec[string]()
	v.PushBack("a")
	v.PushBack("b")
	v.PushBack("c")

	v.SwapRemove(0) // removes "a", "c" takes its place
	if v.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", v.Len())
	}
	if *v.At(0) != "c" {
		t.Fatalf("expected swap-removed slot to hold former last element, got %q", *v.At(0))
	}
}

func TestDenseVecInsertRemoveAt(t *testing.T) {
	v := container.NewDenseVec[int]()
	v.PushBack(1)
	v.PushBack(3)
	v.InsertAt(1, 2)

	want := []int{1, 2, 3}
	got := v.Slice()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	v.RemoveAt(1)
	got = v.Slice()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected [1 3], got %v", got)
	}
}

func TestRingDequeFIFOAndLIFO(t *testing.T) {
	d := container.NewRingDeque[int]()
	for i := 0; i < 20; i++ {
		d.PushBack(i)
	}
	for i := 0; i < 20; i++ {
		if got := d.PopFront(); got != i {
			t.Fatalf("expected FIFO order %d, got %d", i, got)
		}
	}
	if !d.Empty() {
		t.Fatalf("expected empty deque")
	}

	d.PushFront(1)
	d.PushFront(2)
	d.PushFront(3)
	if got := d.PopBack(); got != 1 {
		t.Fatalf("expected 1 at the back, got %d", got)
	}
}

func TestRingDequeGrowthLinearizes(t *testing.T) {
	d := container.NewRingDeque[int]()
	// Force several grow cycles while interleaving front/back pops so
	// the head wraps before a grow, exercising the linearize-at-0 path.
	for i := 0; i < 5; i++ {
		d.PushBack(i)
	}
	d.PopFront()
	d.PopFront()
	for i := 5; i < 50; i++ {
		d.PushBack(i)
	}
	if d.Len() != 48 {
		t.Fatalf("expected 48 elements, got %d", d.Len())
	}
	if got := d.At(0); got != 2 {
		t.Fatalf("expected front element 2 after wraparound growth, got %d", got)
	}
}

func TestTypeMapAssureGrows(t *testing.T) {
	m := container.NewTypeMap[int]()
	*m.Assure(5) = 42
	got, ok := m.Get(5)
	if !ok || got != 42 {
		t.Fatalf("expected slot 5 to hold 42, got %d (ok=%v)", got, ok)
	}
	if m.Len() != 6 {
		t.Fatalf("expected map to grow to cover index 5, got len %d", m.Len())
	}
	if _, ok := m.Get(100); ok {
		t.Fatalf("expected out-of-range index to report not-ok")
	}
}
