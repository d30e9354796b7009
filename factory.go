package strata

// factory groups the package's constructors behind a single value, mirroring
// the teacher's factory.go. Most callers can use NewWorld/NewComponent/
// NewCache directly; Factory exists for callers that want to pass
// construction itself around as a value.
type factory struct{}

// Factory is the package's constructor group.
var Factory factory

func (f factory) NewWorld(opts ...WorldOption) *World {
	return NewWorld(opts...)
}

func (f factory) NewTypeStorage() *TypeStorage {
	return NewTypeStorage()
}

// FactoryNewComponent declares a component of type T, mirroring the
// teacher's FactoryNewComponent[T].
func FactoryNewComponent[T any](name string) AccessibleComponent[T] {
	return NewComponent[T](name)
}

// FactoryNewCache constructs a capacity-bounded Cache[T].
func FactoryNewCache[T any](capacity int) Cache[T] {
	return NewCache[T](capacity)
}
