// Package cmdbuf is the supplemental deferred command buffer invited
// by spec.md §5: systems queue structural registry mutations instead
// of applying them mid-tick, and the owner of the buffer applies them
// later with Apply. The scheduler package does not drain or apply a
// Buffer; callers do so themselves between RunAll calls.
package cmdbuf

import (
	"sync"

	"github.com/forgecore/ecs"
	"github.com/forgecore/ecs/entity"
)

// Command is one deferred mutation against a Registry.
type Command func(r *ecs.Registry)

// Buffer accumulates commands recorded during a tick.
type Buffer struct {
	mu       sync.Mutex
	commands []Command
}

// NewBuffer constructs an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Len reports how many commands are queued.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.commands)
}

// Push appends a command, safe to call from any system goroutine
// concurrently with others during the same tick.
func (b *Buffer) Push(cmd Command) {
	if cmd == nil {
		return
	}
	b.mu.Lock()
	b.commands = append(b.commands, cmd)
	b.mu.Unlock()
}

// Drain returns the queued commands and resets the buffer.
func (b *Buffer) Drain() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	drained := b.commands
	b.commands = nil
	return drained
}

// Apply drains the buffer and runs every command against r in order.
// Callers must only call this between ticks (after RunAll returns),
// never while a step is concurrently reading or writing r.
func (b *Buffer) Apply(r *ecs.Registry) {
	for _, cmd := range b.Drain() {
		cmd(r)
	}
}

// Pool reuses buffers across ticks to reduce allocation, mirroring the
// teacher's CommandBufferPool.
type Pool struct {
	pool sync.Pool
}

// NewPool constructs a pool that returns fresh buffers.
func NewPool() *Pool {
	p := &Pool{}
	p.pool.New = func() any { return NewBuffer() }
	return p
}

// Get retrieves a buffer from the pool.
func (p *Pool) Get() *Buffer { return p.pool.Get().(*Buffer) }

// Put clears buf and returns it to the pool.
func (p *Pool) Put(buf *Buffer) {
	if buf == nil {
		return
	}
	buf.Drain()
	p.pool.Put(buf)
}

// CreateEntity1 queues the creation of a single-component entity. If
// target is non-nil, it receives the allocated id once the command
// applies.
func CreateEntity1[C1 any](b *Buffer, c1 C1, target *entity.ID) {
	b.Push(func(r *ecs.Registry) {
		id := ecs.Create1(r, c1)
		if target != nil {
			*target = id
		}
	})
}

// CreateEntity2 queues the creation of a two-component entity.
func CreateEntity2[C1, C2 any](b *Buffer, c1 C1, c2 C2, target *entity.ID) {
	b.Push(func(r *ecs.Registry) {
		id := ecs.Create2(r, c1, c2)
		if target != nil {
			*target = id
		}
	})
}

// DestroyEntity queues the destruction of id.
func DestroyEntity(b *Buffer, id entity.ID) {
	b.Push(func(r *ecs.Registry) {
		r.Destroy(id)
	})
}

// AddComponent queues attaching a C2 to an entity that currently
// carries only C1.
func AddComponent[C1, C2 any](b *Buffer, id entity.ID, value C2) {
	b.Push(func(r *ecs.Registry) {
		ecs.AddComponent2[C1, C2](r, id, value)
	})
}

// RemoveComponent queues detaching C2 from an entity that currently
// carries (C1, C2), leaving it with only C1.
func RemoveComponent[C1, C2 any](b *Buffer, id entity.ID) {
	b.Push(func(r *ecs.Registry) {
		ecs.RemoveComponent2[C1, C2](r, id)
	})
}
