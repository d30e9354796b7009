package strata

import "github.com/kestrelforge/strata/internal/bitset"

// ArchetypeID identifies one archetype within a world. Archetype 0 is
// always the empty archetype, materialized at world construction.
type ArchetypeID uint32

// Archetype is the equivalence class of entities sharing the same
// component set, per spec §3. Edge targets memoize "starting here, after
// inserting bundle B, land in archetype A'" so repeated insertions of the
// same bundle shape are O(1) after the first.
type Archetype struct {
	ID        ArchetypeID
	TableID   uint32
	Signature []ComponentID // sorted
	mask      bitset.Set

	edgesAdded map[uint64]ArchetypeID // keyed by bundle type id
}

func newArchetype(id ArchetypeID, tableID uint32, signature []ComponentID) *Archetype {
	var mask bitset.Set
	for _, c := range signature {
		mask.Mark(uint32(c))
	}
	return &Archetype{
		ID:         id,
		TableID:    tableID,
		Signature:  signature,
		mask:       mask,
		edgesAdded: make(map[uint64]ArchetypeID),
	}
}

// edgeFor returns the memoized destination archetype for inserting
// bundleTypeID from this archetype, if it has been computed before.
func (a *Archetype) edgeFor(bundleTypeID uint64) (ArchetypeID, bool) {
	id, ok := a.edgesAdded[bundleTypeID]
	return id, ok
}

// setEdge memoizes the destination archetype for bundleTypeID, including
// the idempotent case where inserting the bundle lands back on a.
func (a *Archetype) setEdge(bundleTypeID uint64, dest ArchetypeID) {
	a.edgesAdded[bundleTypeID] = dest
}

// has reports whether componentID is part of this archetype's signature.
func (a *Archetype) has(componentID ComponentID) bool {
	return a.mask.Has(uint32(componentID))
}

// signatureKey returns the exact byte-concatenation of the sorted
// component ids, used as the collision-free key into the world's
// archetype-by-signature index. See DESIGN.md for why this, rather than
// the 64-bit hash alone, is the actual map key: a hash is still computed
// (signatureHash) for the external hash-signature format spec §6
// describes, but invariant §8.4 ("no two archetypes share a signature")
// must hold unconditionally, which a bare 64-bit digest cannot guarantee.
func signatureKey(ids []ComponentID) string {
	buf := make([]byte, len(ids)*4)
	for i, id := range ids {
		buf[i*4] = byte(id)
		buf[i*4+1] = byte(id >> 8)
		buf[i*4+2] = byte(id >> 16)
		buf[i*4+3] = byte(id >> 24)
	}
	return string(buf)
}
