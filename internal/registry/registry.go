// Package registry implements the entity registry described in spec §4.D:
// a generational id allocator with two separate arrays (slots and a
// free list) so slot capacity can grow independently of how many ids are
// currently free. It is a specialization of the arena package rather than
// a direct reuse of it, because each slot additionally carries the
// entity's table location (archetype id, row index), not just an opaque
// payload.
package registry

import "fmt"

// minCapacity is the smallest capacity the registry grows to on first use,
// per spec §4.D ("capacity doubles, minimum 1024").
const minCapacity = 1024

// Entity is a generation-stamped reference to a registry slot.
type Entity struct {
	Generation uint32
	ID         uint32
}

// Slot is the per-id record: the generation it was last allocated with and
// its current location in the table topology.
type Slot struct {
	Generation  uint32
	ArchetypeID uint32
	RowIndex    int
	allocated   bool
}

// UnknownEntity is returned by any operation addressing a stale or
// out-of-range entity, per spec §7.
type UnknownEntity struct {
	Entity Entity
}

func (e UnknownEntity) Error() string {
	return fmt.Sprintf("registry: unknown entity %+v", e.Entity)
}

// Registry is a generational entity allocator with a LIFO free list.
type Registry struct {
	slots    []Slot
	freeList []uint32
	minCap   int
}

// New returns an empty registry whose first growth reaches minCapacity (1024
// rows), per spec §4.D. Capacity is materialized lazily on first Alloc.
func New() *Registry {
	return &Registry{minCap: minCapacity}
}

// NewWithCapacity is like New but overrides the first-growth floor, for
// callers (World) that size the registry from Config.InitialRegistryCapacity
// instead of the spec's default.
func NewWithCapacity(minCap int) *Registry {
	if minCap <= 0 {
		minCap = minCapacity
	}
	return &Registry{minCap: minCap}
}

// LiveCount reports the number of currently allocated entities.
func (r *Registry) LiveCount() int {
	return len(r.slots) - len(r.freeList)
}

// Capacity reports the size of the id space, [0, Capacity()).
func (r *Registry) Capacity() int {
	return len(r.slots)
}

// Alloc allocates an entity id, growing capacity (doubling, minimum 1024)
// when the free list is exhausted. The returned Entity carries the slot's
// post-allocation generation.
func (r *Registry) Alloc() Entity {
	if len(r.freeList) == 0 {
		r.grow()
	}
	last := len(r.freeList) - 1
	id := r.freeList[last]
	r.freeList = r.freeList[:last]

	slot := &r.slots[id]
	slot.allocated = true
	slot.ArchetypeID = 0
	slot.RowIndex = 0
	return Entity{Generation: slot.Generation, ID: id}
}

// grow doubles capacity (minimum minCapacity) and pushes the new ids onto
// the free list in descending order, so allocation remains LIFO and
// returns the lowest newly-available id first.
func (r *Registry) grow() {
	oldCap := len(r.slots)
	newCap := max(r.minCap, oldCap*2)
	grown := make([]Slot, newCap)
	copy(grown, r.slots)
	r.slots = grown

	newFree := make([]uint32, 0, len(r.freeList)+(newCap-oldCap))
	newFree = append(newFree, r.freeList...)
	for id := newCap - 1; id >= oldCap; id-- {
		newFree = append(newFree, uint32(id))
	}
	r.freeList = newFree
}

// Get validates e against the registry and returns its slot.
func (r *Registry) Get(e Entity) (Slot, error) {
	if e.ID >= uint32(len(r.slots)) {
		return Slot{}, UnknownEntity{Entity: e}
	}
	slot := r.slots[e.ID]
	if !slot.allocated || slot.Generation != e.Generation {
		return Slot{}, UnknownEntity{Entity: e}
	}
	return slot, nil
}

// SetLocation updates the archetype/row location for a live entity.
func (r *Registry) SetLocation(e Entity, archetypeID uint32, rowIndex int) error {
	if _, err := r.Get(e); err != nil {
		return err
	}
	slot := &r.slots[e.ID]
	slot.ArchetypeID = archetypeID
	slot.RowIndex = rowIndex
	return nil
}

// Free validates e, bumps its slot's generation, and returns the id to the
// free list. Freeing an unknown or already-stale entity fails with
// UnknownEntity and leaves the registry untouched.
func (r *Registry) Free(e Entity) error {
	if _, err := r.Get(e); err != nil {
		return err
	}
	slot := &r.slots[e.ID]
	slot.allocated = false
	slot.Generation++
	r.freeList = append(r.freeList, e.ID)
	return nil
}

// Clear returns every allocated id to the free list without bumping
// generations. Per spec §9's open question, this is intentionally unsafe
// for reuse across a logical "epoch": entities referencing ids cleared
// this way alias entities spawned afterward until freed individually, so
// callers that need generation-safe bulk reset should free each live
// entity through Free instead of calling Clear.
func (r *Registry) Clear() {
	r.freeList = r.freeList[:0]
	for id := len(r.slots) - 1; id >= 0; id-- {
		r.slots[id].allocated = false
		r.freeList = append(r.freeList, uint32(id))
	}
}
