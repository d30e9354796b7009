package strata

import "fmt"

// UnknownEntity is returned by any entity-path operation addressing a
// stale or out-of-range entity, per spec §7. It is the only recoverable
// runtime error in the entity path.
type UnknownEntity struct {
	Entity Entity
}

func (e UnknownEntity) Error() string {
	return fmt.Sprintf("strata: unknown entity %v", e.Entity)
}

// AllocationFailure is the error kind for a capacity-growth path that
// cannot proceed. No function in this package returns it: every growth
// path allocates with make or append, which do not report failure as an
// error.
type AllocationFailure struct {
	Reason string
}

func (e AllocationFailure) Error() string {
	return fmt.Sprintf("strata: allocation failure: %s", e.Reason)
}
