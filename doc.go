/*
Package strata provides an archetype-based Entity-Component-System (ECS)
world: a data-oriented container that stores heterogeneous components for
entities in dense, cache-friendly tables partitioned by the exact set of
components each entity carries.

Strata solves three coupled problems: stable entity identity across
creation, destruction, and id recycling with generational safety against
stale references; heterogeneous columnar storage keyed by component type
identity, with uniform row layout inside each archetype; and archetype
topology management — finding or materializing the table whose column set
matches an entity's current components and migrating rows between tables
as that set changes.

Basic Usage:

	world := strata.NewWorld()

	type Position struct{ X, Y float64 }
	type Velocity struct{ X, Y float64 }

	ref := world.Spawn()
	strata.InsertBundle(world, ref.Entity, struct {
		Position Position
		Velocity Velocity
	}{
		Position: Position{X: 1, Y: 2},
		Velocity: Velocity{X: 0, Y: 1},
	})

	pos, _ := strata.Get[Position](world, ref.Entity, "")
	pos.Y += 1

Strata is a storage core only: query/iteration DSLs, system scheduling,
serialization, and concurrent mutation are explicitly out of scope — see
the package's design notes for the reasoning.
*/
package strata
