// Package arena implements a generational slot allocator: a packed handle
// (version, index) where version occupies the high bits. Handle zero is
// always invalid, matching spec §4.C. On free, the slot is threaded onto a
// singly linked free list through a next-free field kept in the slot
// itself, so reuse is LIFO without a separate free-list array; the slot's
// version is bumped when Insert reuses it.
package arena

import "math"

// indexBits is the width given to the index half of a packed Handle; the
// remaining bits hold the version. 24 bits of index (16M live slots) and 40
// of version comfortably outlives any process.
const indexBits = 24

const indexMask = uint64(1)<<indexBits - 1

// Handle is an opaque, packed (version, index) reference. The zero Handle
// is never returned by Insert and always misses on Get/Remove/Contains.
type Handle uint64

// Index extracts the slot index from a handle.
func (h Handle) Index() uint32 {
	return uint32(uint64(h) & indexMask)
}

// Version extracts the generation from a handle.
func (h Handle) Version() uint64 {
	return uint64(h) >> indexBits
}

func makeHandle(version uint64, index uint32) Handle {
	if version >= uint64(1)<<(64-indexBits) {
		panic("arena: version overflow")
	}
	return Handle(version<<indexBits | uint64(index)&indexMask)
}

const freeListEnd = math.MaxUint32

type entry[T any] struct {
	value    T
	handle   Handle // handle.Index() == own position when occupied
	nextFree uint32
	occupied bool
}

// Arena is a versioned slot allocator over values of type T.
type Arena[T any] struct {
	entries  []entry[T]
	freeHead uint32 // freeListEnd when empty
	count    int
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{freeHead: freeListEnd}
}

// Len reports the number of live entries.
func (a *Arena[T]) Len() int {
	return a.count
}

// Insert stores v in a free slot (reusing the most recently freed one
// first) or appends a new slot, and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	a.count++
	if a.freeHead != freeListEnd {
		idx := a.freeHead
		e := &a.entries[idx]
		a.freeHead = e.nextFree
		version := e.handle.Version() + 1
		h := makeHandle(version, idx)
		e.value = v
		e.handle = h
		e.occupied = true
		return h
	}
	idx := uint32(len(a.entries))
	h := makeHandle(1, idx)
	a.entries = append(a.entries, entry[T]{value: v, handle: h, occupied: true})
	return h
}

func (a *Arena[T]) slot(h Handle) *entry[T] {
	if h == 0 {
		return nil
	}
	idx := h.Index()
	if int(idx) >= len(a.entries) {
		return nil
	}
	e := &a.entries[idx]
	if !e.occupied || e.handle != h {
		return nil
	}
	return e
}

// Get returns a pointer to the live value behind h, or nil if h is stale,
// zero, or out of range.
func (a *Arena[T]) Get(h Handle) *T {
	e := a.slot(h)
	if e == nil {
		return nil
	}
	return &e.value
}

// Contains reports whether h currently refers to a live entry.
func (a *Arena[T]) Contains(h Handle) bool {
	return a.slot(h) != nil
}

// Remove frees the slot behind h, so existing copies of h become stale
// (the slot's version is bumped later, when Insert reuses it), and returns
// whether anything was removed.
func (a *Arena[T]) Remove(h Handle) bool {
	e := a.slot(h)
	if e == nil {
		return false
	}
	var zero T
	e.value = zero
	e.occupied = false
	e.nextFree = a.freeHead
	a.freeHead = h.Index()
	a.count--
	return true
}

// All iterates live entries in slot order, skipping entries whose stored
// handle index does not match their actual position (a defensive check;
// in practice occupied entries are always self-consistent).
func (a *Arena[T]) All(yield func(Handle, *T) bool) {
	for i := range a.entries {
		e := &a.entries[i]
		if !e.occupied || int(e.handle.Index()) != i {
			continue
		}
		if !yield(e.handle, &e.value) {
			return
		}
	}
}

// ClearAll marks every entry free, in linked order, without bumping
// versions (distinct from Reset, which discards liveness with no relinking
// cost at all). Existing handles into cleared slots become invalid because
// occupied becomes false, even though their version is unchanged.
func (a *Arena[T]) ClearAll() {
	a.freeHead = freeListEnd
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := &a.entries[i]
		var zero T
		e.value = zero
		e.occupied = false
		e.nextFree = a.freeHead
		a.freeHead = uint32(i)
	}
	a.count = 0
}

// Reset discards all liveness and capacity without bumping versions or
// preserving the free list; it is a full restart, not a bulk free.
func (a *Arena[T]) Reset() {
	a.entries = a.entries[:0]
	a.freeHead = freeListEnd
	a.count = 0
}
