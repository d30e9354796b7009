package strata

import (
	"fmt"

	"github.com/kestrelforge/strata/internal/registry"
)

// Entity is a generation-stamped, world-scoped identifier, per spec §3:
// two entities compare equal only if both Generation and ID match.
type Entity struct {
	Generation uint32
	ID         uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(gen=%d, id=%d)", e.Generation, e.ID)
}

func toRegistryEntity(e Entity) registry.Entity {
	return registry.Entity{Generation: e.Generation, ID: e.ID}
}

func fromRegistryEntity(e registry.Entity) Entity {
	return Entity{Generation: e.Generation, ID: e.ID}
}

// EntityRef bundles an entity with the world that owns it, so callers that
// just spawned or looked one up don't have to thread the world separately.
// Per spec §5, a ref must not outlive the next mutating call against the
// world.
type EntityRef struct {
	World  *World
	Entity Entity
}

// Despawn is shorthand for World.Despawn(ref.Entity).
func (r EntityRef) Despawn() error {
	return r.World.Despawn(r.Entity)
}
