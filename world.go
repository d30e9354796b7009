package strata

import (
	"hash/maphash"
	"reflect"
	"slices"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kestrelforge/strata/internal/registry"
)

// World owns every entity, table, archetype, and component descriptor in
// one ECS instance, per spec §4.F. Archetype 0 and table 0 are the empty
// archetype, materialized at construction.
type World struct {
	id      uuid.UUID
	logger  *zap.Logger
	sigSeed maphash.Seed

	registry *registry.Registry

	tables     []*table
	archetypes []*Archetype

	archetypeBySignature map[string]ArchetypeID

	descriptors   []ComponentDescriptor
	instanceIndex map[uint64]ComponentID

	bundleSpecs map[reflect.Type]*bundleSpec
}

// WorldOption configures a World at construction.
type WorldOption func(*World)

// WithLogger overrides the world's logger; by default a world uses the
// package-level Config.Logger.
func WithLogger(l *zap.Logger) WorldOption {
	return func(w *World) { w.logger = l }
}

// NewWorld constructs a world with the empty archetype already
// materialized at index 0.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		id:                   uuid.New(),
		logger:               Config.Logger,
		sigSeed:              maphash.MakeSeed(),
		registry:             registry.NewWithCapacity(Config.InitialRegistryCapacity),
		archetypeBySignature: make(map[string]ArchetypeID),
		instanceIndex:        make(map[uint64]ComponentID),
		bundleSpecs:          make(map[reflect.Type]*bundleSpec),
	}
	for _, opt := range opts {
		opt(w)
	}

	emptyTable := newTable()
	emptyTable.reserve(Config.DefaultTableCapacity)
	w.tables = append(w.tables, emptyTable)
	w.archetypes = append(w.archetypes, newArchetype(0, 0, nil))
	w.archetypeBySignature[signatureKey(nil)] = 0

	return w
}

// ID identifies this world instance for log correlation across a program
// that runs several worlds at once.
func (w *World) ID() uuid.UUID {
	return w.id
}

// EntityCount returns the number of currently live entities.
func (w *World) EntityCount() int {
	return w.registry.LiveCount()
}

// Spawn allocates a new entity into the empty archetype and returns a ref
// bundling it with this world.
func (w *World) Spawn() EntityRef {
	regCapBefore := w.registry.Capacity()
	regEntity := w.registry.Alloc()
	if after := w.registry.Capacity(); after != regCapBefore {
		w.logger.Debug("registry capacity grew",
			zap.Int("from", regCapBefore),
			zap.Int("to", after),
		)
	}

	tbl := w.tables[0]
	tblCapBefore := tbl.capacity()
	row := tbl.addEntity(fromRegistryEntity(regEntity))
	if after := tbl.capacity(); after != tblCapBefore {
		w.logger.Debug("table capacity grew",
			zap.Uint32("table", 0),
			zap.Int("from", tblCapBefore),
			zap.Int("to", after),
		)
	}
	if err := w.registry.SetLocation(regEntity, 0, row); err != nil {
		// The entity was just allocated by this same registry; a failure
		// here means the registry is corrupt, which is a programmer error.
		panic(err)
	}
	e := fromRegistryEntity(regEntity)
	w.logger.Debug("spawned entity", zap.Stringer("world", w.id), zap.String("entity", e.String()))
	return EntityRef{World: w, Entity: e}
}

// Despawn frees e, swap-removing its row from its current table. If
// despawning e was already stale, UnknownEntity is returned and nothing
// changes.
func (w *World) Despawn(e Entity) error {
	slot, err := w.registry.Get(toRegistryEntity(e))
	if err != nil {
		return UnknownEntity{Entity: e}
	}
	tbl := w.tables[w.archetypes[slot.ArchetypeID].TableID]
	replacement := tbl.swapRemove(slot.RowIndex)
	if err := w.registry.Free(toRegistryEntity(e)); err != nil {
		panic(err) // e was just validated above; this cannot fail.
	}
	if replacement != nil {
		if err := w.registry.SetLocation(toRegistryEntity(*replacement), uint32(slot.ArchetypeID), slot.RowIndex); err != nil {
			panic(err)
		}
		w.logger.Debug("despawn fixup",
			zap.String("despawned", e.String()),
			zap.String("replacement", replacement.String()),
			zap.Int("row", slot.RowIndex),
		)
	}
	return nil
}

// intern looks up or assigns a ComponentID for desc's instance type id,
// per spec §4.F.2: new ids are assigned monotonically by the current
// descriptor-list length and never reassigned.
func (w *World) intern(desc ComponentDescriptor) ComponentID {
	if id, ok := w.instanceIndex[desc.InstanceTypeID]; ok {
		return id
	}
	id := ComponentID(len(w.descriptors))
	w.descriptors = append(w.descriptors, desc)
	w.instanceIndex[desc.InstanceTypeID] = id
	return id
}

func (w *World) descriptorFor(id ComponentID) ComponentDescriptor {
	return w.descriptors[id]
}

// signatureHash computes the external hash-signature format from spec §6:
// a 64-bit hash of the raw little-endian byte concatenation of sorted
// ComponentIds. It is a diagnostic/log value only — signatureKey (the
// exact byte string) is what the world actually dedupes archetypes on; see
// archetype.go's signatureKey doc for why.
func (w *World) signatureHash(ids []ComponentID) uint64 {
	var h maphash.Hash
	h.SetSeed(w.sigSeed)
	h.Write([]byte(signatureKey(ids)))
	return h.Sum64()
}

// createArchetype materializes a new archetype+table for the given sorted
// signature, adding one column per id in signature order.
func (w *World) createArchetype(signature []ComponentID) ArchetypeID {
	tbl := newTable()
	for _, id := range signature {
		tbl.addColumn(id, w.descriptorFor(id))
	}
	tbl.reserve(Config.DefaultTableCapacity)

	archID := ArchetypeID(len(w.archetypes))
	tableID := uint32(len(w.tables))
	w.tables = append(w.tables, tbl)
	arch := newArchetype(archID, tableID, signature)
	w.archetypes = append(w.archetypes, arch)
	w.archetypeBySignature[signatureKey(signature)] = archID

	w.logger.Debug("materialized archetype",
		zap.Uint32("archetype", uint32(archID)),
		zap.Uint64("signature_hash", w.signatureHash(signature)),
		zap.Int("components", len(signature)),
	)
	return archID
}

// resolveDestination implements spec §4.F.3 steps 1-3: find or create the
// archetype reached by inserting a bundle whose leaf components resolve to
// fieldIDs, starting from current.
func (w *World) resolveDestination(current *Archetype, bundleTypeID uint64, fieldIDs []ComponentID) ArchetypeID {
	if dest, ok := current.edgeFor(bundleTypeID); ok {
		return dest
	}

	var newIDs []ComponentID
	for _, id := range fieldIDs {
		if !current.has(id) {
			newIDs = append(newIDs, id)
		}
	}
	if len(newIDs) == 0 {
		current.setEdge(bundleTypeID, current.ID)
		return current.ID
	}

	merged := make([]ComponentID, 0, len(current.Signature)+len(newIDs))
	merged = append(merged, current.Signature...)
	merged = append(merged, newIDs...)
	slices.Sort(merged)
	merged = slices.Compact(merged)

	key := signatureKey(merged)
	dest, ok := w.archetypeBySignature[key]
	if !ok {
		dest = w.createArchetype(merged)
	}
	current.setEdge(bundleTypeID, dest)
	return dest
}

// insertFields is the shared engine behind InsertBundle and the
// single-component Insert convenience: resolve the destination archetype,
// transfer the row if it changed, then write every field's bytes into the
// destination columns, clobbering any pre-existing value.
func (w *World) insertFields(e Entity, bundleTypeID uint64, fields []bundleField, base unsafe.Pointer) error {
	regEntity := toRegistryEntity(e)
	slot, err := w.registry.Get(regEntity)
	if err != nil {
		return UnknownEntity{Entity: e}
	}

	fieldIDs := make([]ComponentID, len(fields))
	for i, f := range fields {
		fieldIDs[i] = w.intern(f.descriptor)
	}

	current := w.archetypes[slot.ArchetypeID]
	destID := w.resolveDestination(current, bundleTypeID, fieldIDs)

	row := slot.RowIndex
	if destID != current.ID {
		srcTable := w.tables[current.TableID]
		dstTableID := w.archetypes[destID].TableID
		dstTable := w.tables[dstTableID]
		dstCapBefore := dstTable.capacity()
		replacement, newRow := srcTable.transferRow(slot.RowIndex, dstTable, e)
		if after := dstTable.capacity(); after != dstCapBefore {
			w.logger.Debug("table capacity grew",
				zap.Uint32("table", dstTableID),
				zap.Int("from", dstCapBefore),
				zap.Int("to", after),
			)
		}
		if err := w.registry.SetLocation(regEntity, uint32(destID), newRow); err != nil {
			panic(err)
		}
		if replacement != nil {
			if err := w.registry.SetLocation(toRegistryEntity(*replacement), uint32(current.ID), slot.RowIndex); err != nil {
				panic(err)
			}
		}
		row = newRow
	}

	dstTable := w.tables[w.archetypes[destID].TableID]
	for i, f := range fields {
		col := dstTable.column(fieldIDs[i])
		copy(col.rows.BytesAt(row), bundleBytesAt(base, f))
	}
	return nil
}

func (w *World) bundleSpecFor(t reflect.Type) *bundleSpec {
	if spec, ok := w.bundleSpecs[t]; ok {
		return spec
	}
	spec := buildBundleSpec(t)
	w.bundleSpecs[t] = spec
	return spec
}

// InsertBundle inserts every leaf component of bundle into e, per spec
// §4.F.3. Re-inserting a bundle whose components are all already present
// is an idempotent self-edge: no new archetype is created, and the
// freshly-written values simply overwrite the old ones.
func InsertBundle[B any](w *World, e Entity, bundle B) error {
	t := reflect.TypeOf(bundle)
	spec := w.bundleSpecFor(t)
	bundleTypeID := typeID(t)
	return w.insertFields(e, bundleTypeID, spec.fields, unsafe.Pointer(&bundle))
}

// Insert sets a single named (or unnamed, if name is "") component value
// on e, creating the column/archetype on first use the same way
// InsertBundle does for a one-field bundle.
func Insert[T any](w *World, e Entity, name string, value T) error {
	desc := describeComponent[T](name)
	field := bundleField{offset: 0, descriptor: desc}
	bundleTypeID := instanceTypeID(typeID(reflect.TypeOf(value)), "single:"+name)
	return w.insertFields(e, bundleTypeID, []bundleField{field}, unsafe.Pointer(&value))
}

// Contains reports whether e currently carries the named component.
func Contains[T any](w *World, e Entity, name string) bool {
	slot, err := w.registry.Get(toRegistryEntity(e))
	if err != nil {
		return false
	}
	desc := describeComponent[T](name)
	id, ok := w.instanceIndex[desc.InstanceTypeID]
	if !ok {
		return false
	}
	return w.archetypes[slot.ArchetypeID].has(id)
}

// Get returns a pointer to e's named component value. It requires the
// component be present; call Contains first, since per spec §4.F.4 this
// is a programmer error (panic) otherwise, not a recoverable one.
func Get[T any](w *World, e Entity, name string) (*T, error) {
	slot, err := w.registry.Get(toRegistryEntity(e))
	if err != nil {
		return nil, UnknownEntity{Entity: e}
	}
	desc := describeComponent[T](name)
	id, ok := w.instanceIndex[desc.InstanceTypeID]
	if !ok {
		panic("strata: get of never-registered component " + desc.TypeName)
	}
	tbl := w.tables[w.archetypes[slot.ArchetypeID].TableID]
	col := tbl.column(id)
	if col == nil {
		panic("strata: get of absent component " + desc.TypeName + " on " + e.String())
	}
	if desc.Size == 0 {
		var zero T
		return &zero, nil
	}
	bytes := col.rows.BytesAt(slot.RowIndex)
	return (*T)(unsafe.Pointer(&bytes[0])), nil
}
