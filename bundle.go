package strata

import (
	"fmt"
	"reflect"
	"unsafe"
)

// bundleField is one leaf component slot within a flattened bundle: its
// byte offset from the start of the bundle value, and the descriptor
// strata uses to intern and store it.
type bundleField struct {
	offset     uintptr
	descriptor ComponentDescriptor
}

// bundleSpec is the flattened, compile-time-known shape of a bundle
// struct: one bundleField per leaf component, in field declaration order
// after nested bundles are inlined and de-duplicated by instance type id.
// Grounded on plus3-ooftn's reflect.Type-keyed component lookup
// (_examples/other_examples/plus3-ooftn__archetype.go), the only pack
// example that resolves component storage by reflect.Type rather than a
// generated id — the same technique this module needs to turn an
// arbitrary bundle struct into column writes without per-bundle codegen.
type bundleSpec struct {
	fields []bundleField
}

const bundleTagKey = "strata"

// fieldName returns the optional instance name for a leaf field: the
// `strata:"name=..."` struct tag if present, otherwise empty (meaning the
// component is unnamed and keyed by its bare type id).
func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get(bundleTagKey)
	const prefix = "name="
	if len(tag) > len(prefix) && tag[:len(prefix)] == prefix {
		return tag[len(prefix):]
	}
	return ""
}

// flattenBundle walks t's exported fields, recursively inlining anonymous
// (embedded) struct fields as nested bundles per spec §9's "marker
// declaration" note — Go's own embedding syntax is that marker — and
// de-duplicating by instance type id so a component reachable through two
// paths is only written once.
func flattenBundle(t reflect.Type, baseOffset uintptr, seen map[uint64]bool, out []bundleField) []bundleField {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		offset := baseOffset + f.Offset
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			out = flattenBundle(f.Type, offset, seen, out)
			continue
		}
		desc := describeComponentFromType(f.Type, fieldName(f))
		if seen[desc.InstanceTypeID] {
			continue
		}
		seen[desc.InstanceTypeID] = true
		out = append(out, bundleField{offset: offset, descriptor: desc})
	}
	return out
}

func describeComponentFromType(t reflect.Type, name string) ComponentDescriptor {
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

// buildBundleSpec flattens a bundle's Go struct type, panicking if it is
// not a struct: composing a bundle from a non-struct is a programmer
// error, not a recoverable one, per spec §4.F.5.
func buildBundleSpec(t reflect.Type) *bundleSpec {
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("strata: bundle type %s is not a struct", t))
	}
	return &bundleSpec{fields: flattenBundle(t, 0, make(map[uint64]bool), nil)}
}

// bundleBytesAt returns the field bytes for spec.fields[i] inside an
// addressable bundle value base.
func bundleBytesAt(base unsafe.Pointer, f bundleField) []byte {
	if f.descriptor.Size == 0 {
		return nil
	}
	ptr := unsafe.Add(base, f.offset)
	return unsafe.Slice((*byte)(ptr), int(f.descriptor.Size))
}
