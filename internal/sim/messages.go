package sim

import (
	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
)

// CastIntent asks the pipeline to resolve an ability use. Injected by the
// host from player input, or emitted by AI ahead of the intent stage.
type CastIntent struct {
	Caster  ecs.EntityID
	Target  ecs.EntityID
	Ability string
}

// SpawnProjectile starts an ability payload travelling from the caster's
// tile toward its target.
type SpawnProjectile struct {
	Caster  ecs.EntityID
	Target  ecs.EntityID
	Ability string
	From    component.Position
}

// GameAction is an ability hit awaiting effect calculation. Direct abilities
// produce one in the intent stage; projectile impacts produce one mid-resolve,
// which carries over to the next tick's resolve.
type GameAction struct {
	Caster  ecs.EntityID
	Target  ecs.EntityID
	Ability string
	Base    int
}

// Effect is an actualized, signed world mutation request. Only the apply
// stage turns these into component writes.
type Effect struct {
	Target      ecs.EntityID
	DeltaHealth int
	DeltaMana   int
}
