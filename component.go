package strata

import (
	"hash/fnv"
	"reflect"
	"unsafe"
)

// ComponentID is a world-scoped small integer identifying a component,
// assigned the first time its descriptor's instance type id is seen. The
// mapping is monotonic and ids are never reassigned, per spec §3.
type ComponentID uint32

// ComponentDescriptor describes one stored component type, per spec §3.
type ComponentDescriptor struct {
	TypeID         uint64
	TypeName       string
	InstanceTypeID uint64
	Alignment      uintptr
	Size           uintptr
	DropFn         func(ptr unsafe.Pointer)
}

// typeID hashes a type's printable name into a stable 64-bit value. Per
// spec §9 this risks collisions between differently-named types that
// happen to print the same; callers needing stronger guarantees can swap
// in a build-time counter without changing the world API, which only
// depends on stable equality and hashing.
func typeID(t reflect.Type) uint64 {
	h := fnv.New64a()
	h.Write([]byte(t.PkgPath()))
	h.Write([]byte{'.'})
	h.Write([]byte(t.String()))
	return h.Sum64()
}

// instanceTypeID folds an optional instance name into a type id, per spec
// §3: unnamed components use the bare type id; named components (two
// fields of the same underlying type serving different roles) combine the
// type id with the name so they land in distinct columns.
func instanceTypeID(tid uint64, name string) uint64 {
	if name == "" {
		return tid
	}
	h := fnv.New64a()
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(tid >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(name))
	return h.Sum64()
}

// dropRegistry maps a component's Go type to the destructor registered for
// it via RegisterDrop, mirroring borkshop-bork's global
// RegisterDestroyer(ComponentType, func(EntityID, ComponentType))
// (_examples/other_examples/borkshop-bork__core.go): a package-wide,
// type-keyed table of destruction callbacks, rather than an interface every
// component type would otherwise have to implement. Keying by reflect.Type
// lets both the generic describeComponent[T] path and bundle.go's
// reflect-driven describeComponentFromType share one lookup.
var dropRegistry = map[reflect.Type]func(unsafe.Pointer){}

// RegisterDrop installs drop as the destructor for component type T: per
// spec §3, it runs exactly once whenever a row of T is destroyed (despawn,
// or a table transfer that drops T because the destination lacks it).
// Component type identity is process-wide here, so one registration covers
// every world; call it before spawning any entity that will carry T.
func RegisterDrop[T any](drop func(*T)) {
	dropRegistry[reflect.TypeOf((*T)(nil)).Elem()] = func(ptr unsafe.Pointer) {
		drop((*T)(ptr))
	}
}

// dropFnForType looks up the registered destructor for t, if any. Most
// component types have none, matching spec §3's "no-op when the type has
// no destructor".
func dropFnForType(t reflect.Type) func(ptr unsafe.Pointer) {
	return dropRegistry[t]
}

// describeComponent builds a ComponentDescriptor for T, optionally named.
// The zero value of T determines size/alignment; DropFn is whatever
// RegisterDrop[T] installed, or nil if T owns no resources needing release.
func describeComponent[T any](name string) ComponentDescriptor {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		// T is an interface type instantiated with no concrete value;
		// reflect.TypeOf(nil-interface) is nil, so fall back to the
		// generic-parameter's static type via reflection on a pointer.
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	tid := typeID(t)
	return ComponentDescriptor{
		TypeID:         tid,
		TypeName:       t.String(),
		InstanceTypeID: instanceTypeID(tid, name),
		Alignment:      uintptr(t.Align()),
		Size:           t.Size(),
		DropFn:         dropFnForType(t),
	}
}
