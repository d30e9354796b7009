package registry

import "testing"

func TestAllocFirstGenerationIsZero(t *testing.T) {
	r := New()
	e := r.Alloc()
	if e.Generation != 0 {
		t.Errorf("first allocation generation = %d, want 0", e.Generation)
	}
	if e.ID != 0 {
		t.Errorf("first allocation id = %d, want 0", e.ID)
	}
}

func TestFreeThenAllocRecyclesIDWithNewGeneration(t *testing.T) {
	r := New()
	e1 := r.Alloc()
	if err := r.Free(e1); err != nil {
		t.Fatalf("Free: %v", err)
	}
	e2 := r.Alloc()

	if e1.ID != e2.ID {
		t.Errorf("recycled id = %d, want %d", e2.ID, e1.ID)
	}
	if e2.Generation == e1.Generation {
		t.Errorf("generation must differ after recycle, both are %d", e1.Generation)
	}
	if _, err := r.Get(e1); err == nil {
		t.Error("stale entity e1 should fail Get after recycle")
	}
}

func TestGetUnknownEntityFails(t *testing.T) {
	r := New()
	if _, err := r.Get(Entity{ID: 0, Generation: 0}); err == nil {
		t.Error("Get on an empty registry should fail with UnknownEntity")
	}
	e := r.Alloc()
	if _, err := r.Get(Entity{ID: e.ID, Generation: e.Generation + 1}); err == nil {
		t.Error("Get with a future generation should fail")
	}
}

func TestGrowthDoublesAndIsLIFOOrdered(t *testing.T) {
	r := New()
	first := r.Alloc()
	if r.Capacity() < 1024 {
		t.Fatalf("capacity after first alloc = %d, want >= 1024", r.Capacity())
	}
	if first.ID != 0 {
		t.Errorf("first id after growth = %d, want 0", first.ID)
	}
	second := r.Alloc()
	if second.ID != 1 {
		t.Errorf("second id = %d, want 1 (ascending after initial growth)", second.ID)
	}
	for r.LiveCount() < r.Capacity() {
		r.Alloc()
	}
	r.Alloc()
	if r.Capacity() != 2048 {
		t.Errorf("capacity after exhausting the first 1024 ids = %d, want 2048 (doubled)", r.Capacity())
	}
}

func TestLiveCount(t *testing.T) {
	r := New()
	e1 := r.Alloc()
	r.Alloc()
	if r.LiveCount() != 2 {
		t.Fatalf("live count = %d, want 2", r.LiveCount())
	}
	r.Free(e1)
	if r.LiveCount() != 1 {
		t.Errorf("live count after free = %d, want 1", r.LiveCount())
	}
}

func TestSetLocationRoundTrips(t *testing.T) {
	r := New()
	e := r.Alloc()
	if err := r.SetLocation(e, 3, 7); err != nil {
		t.Fatalf("SetLocation: %v", err)
	}
	slot, err := r.Get(e)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if slot.ArchetypeID != 3 || slot.RowIndex != 7 {
		t.Errorf("slot = %+v, want archetype 3 row 7", slot)
	}
}
