package object

import (
	"log/slog"
	"sync/atomic"
	"unsafe"
)

// chunkSize is the number of slots in every arena block. Blocks are never
// grown or copied, so an address handed out stays valid while the arena
// keeps growing.
const chunkSize = 256

var nextArenaID atomic.Uint64

type chunks[T any] struct {
	blocks [][]T
	used   int
}

func (c *chunks[T]) alloc(v T) (p *T, grew bool) {
	if len(c.blocks) == 0 || c.used == chunkSize {
		c.blocks = append(c.blocks, make([]T, chunkSize))
		c.used = 0
		grew = true
	}
	p = &c.blocks[len(c.blocks)-1][c.used]
	*p = v
	c.used++
	return p, grew
}

func (c *chunks[T]) contains(addr uintptr) bool {
	var zero T
	size := unsafe.Sizeof(zero)
	for _, b := range c.blocks {
		base := uintptr(unsafe.Pointer(&b[0]))
		if addr >= base && addr < base+size*uintptr(len(b)) {
			return true
		}
	}
	return false
}

func (c *chunks[T]) reset() {
	c.blocks = nil
	c.used = 0
}

// Arena owns the heap storage of every non-inline value created through it.
// An Arena is used by one evaluation call stack at a time.
type Arena struct {
	ID uint64

	conses   chunks[Cons]
	floats   chunks[float64]
	strings  chunks[string]
	compiled chunks[CompiledFunction]
	natives  chunks[NativeFunction]

	registry []Value
	released bool
}

func NewArena() *Arena {
	return &Arena{ID: nextArenaID.Add(1)}
}

func alloc[T any](a *Arena, c *chunks[T], v T, kind string) *T {
	if a.released {
		panic("object: allocation in released arena")
	}
	p, grew := c.alloc(v)
	if grew {
		slog.Debug("arena block allocated",
			slog.Uint64("arena", a.ID),
			slog.String("kind", kind),
			slog.Int("blocks", len(c.blocks)))
	}
	return p
}

// Register records a pointer-bearing value as owned by the arena. Inline
// values and symbols are ignored since nothing was allocated for them.
func (a *Arena) Register(v Value) {
	if v.IsInline() || v.IsSymbol() {
		return
	}
	a.registry = append(a.registry, v)
}

// Len returns the number of registered allocations.
func (a *Arena) Len() int { return len(a.registry) }

func (a *Arena) Released() bool { return a.released }

func (a *Arena) Float(f float64) Value {
	v := fromPtr(alloc(a, &a.floats, f, "float"), tagFloat)
	a.Register(v)
	return v
}

func (a *Arena) String(s string) Value {
	v := fromPtr(alloc(a, &a.strings, s, "string"), tagString)
	a.Register(v)
	return v
}

func (a *Arena) Cons(car, cdr Value) Value {
	v := fromPtr(alloc(a, &a.conses, Cons{car: car, cdr: cdr}, "cons"), tagCons)
	a.Register(v)
	return v
}

func (a *Arena) Compiled(fn CompiledFunction) Value {
	v := fromPtr(alloc(a, &a.compiled, fn, "compiled"), tagCompiled)
	a.Register(v)
	return v
}

func (a *Arena) Native(fn NativeFunction) Value {
	v := fromPtr(alloc(a, &a.natives, fn, "native"), tagNative)
	a.Register(v)
	return v
}

// Owns reports whether v's storage was allocated by this arena. Inline
// values and symbols belong to no arena.
func (a *Arena) Owns(v Value) bool {
	addr := v.address()
	switch v.tag() {
	case tagCons:
		return a.conses.contains(addr)
	case tagFloat:
		return a.floats.contains(addr)
	case tagString:
		return a.strings.contains(addr)
	case tagCompiled:
		return a.compiled.contains(addr)
	case tagNative:
		return a.natives.contains(addr)
	}
	return false
}

// Release ends the arena's lifetime. Registered values are released once,
// newest first, and the blocks are dropped. Values that escaped the arena
// stay reachable through the Go collector; allocating afterwards panics.
// It returns the number of released entries; a second call releases none.
func (a *Arena) Release() int {
	if a.released {
		return 0
	}
	n := 0
	for i := len(a.registry) - 1; i >= 0; i-- {
		a.registry[i] = VOID
		n++
	}
	a.registry = nil
	a.conses.reset()
	a.floats.reset()
	a.strings.reset()
	a.compiled.reset()
	a.natives.reset()
	a.released = true
	slog.Debug("arena released",
		slog.Uint64("arena", a.ID),
		slog.Int("entries", n))
	return n
}
