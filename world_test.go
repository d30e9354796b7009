package strata

import "testing"

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

func TestSpawnAssignsEntityIntoEmptyArchetype(t *testing.T) {
	w := NewWorld()
	ref := w.Spawn()

	if ref.Entity.Generation != 0 {
		t.Errorf("Generation = %d, want 0", ref.Entity.Generation)
	}
	if w.EntityCount() != 1 {
		t.Errorf("EntityCount() = %d, want 1", w.EntityCount())
	}
	slot, err := w.registry.Get(toRegistryEntity(ref.Entity))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if slot.ArchetypeID != 0 {
		t.Errorf("ArchetypeID = %d, want 0 (empty archetype)", slot.ArchetypeID)
	}
}

func TestDespawnThenReuseBumpsGeneration(t *testing.T) {
	w := NewWorld()
	ref := w.Spawn()
	first := ref.Entity

	if err := w.Despawn(first); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}

	second := w.Spawn().Entity
	if second.ID != first.ID {
		t.Fatalf("ID = %d, want reused id %d", second.ID, first.ID)
	}
	if second.Generation != first.Generation+1 {
		t.Errorf("Generation = %d, want %d", second.Generation, first.Generation+1)
	}

	if err := w.Despawn(first); err == nil {
		t.Error("Despawn() of stale entity did not error")
	}
}

func TestDespawnUnknownEntityErrors(t *testing.T) {
	w := NewWorld()
	stranger := Entity{ID: 99, Generation: 0}
	err := w.Despawn(stranger)
	if _, ok := err.(UnknownEntity); !ok {
		t.Fatalf("Despawn() error = %v (%T), want UnknownEntity", err, err)
	}
}

func TestDespawnFixesUpReplacementRow(t *testing.T) {
	w := NewWorld()
	a := w.Spawn().Entity
	b := w.Spawn().Entity
	c := w.Spawn().Entity

	if err := w.Despawn(b); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}

	slot, err := w.registry.Get(toRegistryEntity(c))
	if err != nil {
		t.Fatalf("Get(c) error = %v", err)
	}
	if slot.RowIndex != 1 {
		t.Errorf("c's RowIndex = %d, want 1 (swapped into b's old slot)", slot.RowIndex)
	}

	if err := w.Despawn(a); err != nil {
		t.Fatalf("Despawn(a) error = %v", err)
	}
	if err := w.Despawn(c); err != nil {
		t.Fatalf("Despawn(c) error = %v", err)
	}
	if w.EntityCount() != 0 {
		t.Errorf("EntityCount() = %d, want 0", w.EntityCount())
	}
}

func TestInsertBundleMovesEntityToNewArchetype(t *testing.T) {
	w := NewWorld()
	ref := w.Spawn()

	err := InsertBundle(w, ref.Entity, struct {
		Position
		Velocity
	}{Position{1, 2}, Velocity{3, 4}})
	if err != nil {
		t.Fatalf("InsertBundle() error = %v", err)
	}

	if !Contains[Position](w, ref.Entity, "") {
		t.Error("expected Position present after InsertBundle")
	}
	if !Contains[Velocity](w, ref.Entity, "") {
		t.Error("expected Velocity present after InsertBundle")
	}

	pos, err := Get[Position](w, ref.Entity, "")
	if err != nil {
		t.Fatalf("Get(Position) error = %v", err)
	}
	if pos.X != 1 || pos.Y != 2 {
		t.Errorf("Position = %+v, want {1 2}", *pos)
	}
}

func TestInsertBundleTwiceIsIdempotentSelfEdge(t *testing.T) {
	w := NewWorld()
	ref := w.Spawn()
	bundle := struct{ Position }{Position{1, 1}}

	if err := InsertBundle(w, ref.Entity, bundle); err != nil {
		t.Fatalf("first InsertBundle() error = %v", err)
	}
	slotAfterFirst, _ := w.registry.Get(toRegistryEntity(ref.Entity))
	archAfterFirst := slotAfterFirst.ArchetypeID

	bundle.X, bundle.Y = 9, 9
	if err := InsertBundle(w, ref.Entity, bundle); err != nil {
		t.Fatalf("second InsertBundle() error = %v", err)
	}
	slotAfterSecond, _ := w.registry.Get(toRegistryEntity(ref.Entity))

	if slotAfterSecond.ArchetypeID != archAfterFirst {
		t.Errorf("ArchetypeID changed on re-insert: %d -> %d, want unchanged",
			archAfterFirst, slotAfterSecond.ArchetypeID)
	}
	pos, err := Get[Position](w, ref.Entity, "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pos.X != 9 || pos.Y != 9 {
		t.Errorf("Position = %+v, want clobbered {9 9}", *pos)
	}
}

func TestInsertBundleReusesArchetypeAcrossEntities(t *testing.T) {
	w := NewWorld()
	a := w.Spawn().Entity
	b := w.Spawn().Entity

	bundle := struct {
		Position
		Velocity
	}{}

	if err := InsertBundle(w, a, bundle); err != nil {
		t.Fatalf("InsertBundle(a) error = %v", err)
	}
	if err := InsertBundle(w, b, bundle); err != nil {
		t.Fatalf("InsertBundle(b) error = %v", err)
	}

	slotA, _ := w.registry.Get(toRegistryEntity(a))
	slotB, _ := w.registry.Get(toRegistryEntity(b))
	if slotA.ArchetypeID != slotB.ArchetypeID {
		t.Errorf("archetypes diverged: %d vs %d, want equal (same signature reused)",
			slotA.ArchetypeID, slotB.ArchetypeID)
	}
	if len(w.archetypes) != 2 {
		t.Errorf("len(archetypes) = %d, want 2 (empty + the shared one)", len(w.archetypes))
	}
}

func TestInsertSingleComponentByName(t *testing.T) {
	w := NewWorld()
	e := w.Spawn().Entity

	if err := Insert[int](w, e, "score", 42); err != nil {
		t.Fatalf("Insert(score) error = %v", err)
	}
	if err := Insert[int](w, e, "lives", 3); err != nil {
		t.Fatalf("Insert(lives) error = %v", err)
	}

	score, err := Get[int](w, e, "score")
	if err != nil {
		t.Fatalf("Get(score) error = %v", err)
	}
	lives, err := Get[int](w, e, "lives")
	if err != nil {
		t.Fatalf("Get(lives) error = %v", err)
	}
	if *score != 42 || *lives != 3 {
		t.Errorf("score=%d lives=%d, want 42 3", *score, *lives)
	}
}

func TestGetOfAbsentComponentPanics(t *testing.T) {
	w := NewWorld()
	e := w.Spawn().Entity
	if err := Insert[int](w, e, "score", 1); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Get() of absent component did not panic")
		}
	}()
	_, _ = Get[Health](w, e, "")
}

func TestNestedBundleComponentsAreFlattened(t *testing.T) {
	w := NewWorld()
	e := w.Spawn().Entity

	type Physical struct {
		Position
		Velocity
	}
	type Actor struct {
		Physical
		Health
	}

	err := InsertBundle(w, e, Actor{
		Physical: Physical{Position{5, 5}, Velocity{1, 0}},
		Health:   Health{Current: 10, Max: 10},
	})
	if err != nil {
		t.Fatalf("InsertBundle() error = %v", err)
	}

	if !Contains[Position](w, e, "") || !Contains[Velocity](w, e, "") || !Contains[Health](w, e, "") {
		t.Fatal("expected all three leaf components present after nested bundle insert")
	}
}

func TestAccessibleComponentRoundTrips(t *testing.T) {
	w := NewWorld()
	e := w.Spawn().Entity
	hp := NewComponent[Health]("hp")

	if hp.Check(w, e) {
		t.Fatal("Check() true before Set()")
	}
	if err := hp.Set(w, e, Health{Current: 7, Max: 10}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !hp.Check(w, e) {
		t.Fatal("Check() false after Set()")
	}
	got, err := hp.GetFromEntity(w, e)
	if err != nil {
		t.Fatalf("GetFromEntity() error = %v", err)
	}
	if got.Current != 7 || got.Max != 10 {
		t.Errorf("got = %+v, want {7 10}", *got)
	}
}

func TestZeroSizedComponentRoundTrips(t *testing.T) {
	type Marker struct{}
	w := NewWorld()
	e := w.Spawn().Entity

	if err := Insert[Marker](w, e, "tag", Marker{}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if !Contains[Marker](w, e, "tag") {
		t.Fatal("expected Marker present")
	}
	if _, err := Get[Marker](w, e, "tag"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestDistinctNamedComponentsOfSameTypeAreIndependent(t *testing.T) {
	w := NewWorld()
	e := w.Spawn().Entity

	if err := Insert[int](w, e, "x", 1); err != nil {
		t.Fatalf("Insert(x) error = %v", err)
	}
	if err := Insert[int](w, e, "y", 2); err != nil {
		t.Fatalf("Insert(y) error = %v", err)
	}
	x, _ := Get[int](w, e, "x")
	y, _ := Get[int](w, e, "y")
	if *x != 1 || *y != 2 {
		t.Errorf("x=%d y=%d, want 1 2", *x, *y)
	}
}

type handle struct {
	closed *bool
}

func TestDropFnInvokedExactlyOnceOnDespawn(t *testing.T) {
	closed := false
	drops := 0
	RegisterDrop(func(h *handle) {
		*h.closed = true
		drops++
	})

	w := NewWorld()
	e := w.Spawn().Entity
	if err := Insert(w, e, "", handle{closed: &closed}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := w.Despawn(e); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}
	if !closed {
		t.Error("DropFn was not invoked on despawn")
	}
	if drops != 1 {
		t.Errorf("DropFn ran %d times on despawn, want 1", drops)
	}
}

func TestWorldIDIsStableAcrossCalls(t *testing.T) {
	w := NewWorld()
	if w.ID() != w.ID() {
		t.Error("ID() is not stable across calls")
	}
	other := NewWorld()
	if w.ID() == other.ID() {
		t.Error("two worlds share the same ID")
	}
}
