// Package sim holds the gameplay systems and the message kinds flowing
// between them. The pipeline runs three stages per tick: intent turns player
// input into concrete actions, resolve computes their outcomes, and apply is
// the only stage allowed to write the world.
package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
	"github.com/gridfall/server/internal/core/pipe"
	"github.com/gridfall/server/internal/data"
	"github.com/gridfall/server/internal/scripting"
)

// Stage names in tick order.
const (
	StageIntent  = "intent"
	StageResolve = "resolve"
	StageApply   = "apply"
)

// Deps bundles everything the gameplay systems need from the host. Only
// EffectSystem receives the world and its stores; every other system gets
// read-only lenses cut from the same stores.
type Deps struct {
	World     *ecs.World
	Health    *ecs.Store[component.Health]
	Mana      *ecs.Store[component.Mana]
	Pos       *ecs.Store[component.Position]
	Resist    *ecs.Store[component.Resist]
	Abilities *data.AbilityTable
	Engine    *scripting.Engine
	Log       *zap.Logger

	// IntentCapacity bounds the cast intent channel; zero means unbounded.
	IntentCapacity int
}

// Register declares the message kinds and installs the gameplay stages on the
// builder. The host calls Build afterwards.
func Register(b *pipe.Builder, deps *Deps) error {
	if err := pipe.Register[CastIntent](b, pipe.WithInjected(), pipe.WithCapacity(deps.IntentCapacity)); err != nil {
		return fmt.Errorf("register cast intents: %w", err)
	}
	if err := pipe.Register[SpawnProjectile](b); err != nil {
		return fmt.Errorf("register projectile spawns: %w", err)
	}
	// Projectile impacts produce actions inside the stage that consumes them,
	// so the kind has to carry over to the next tick.
	if err := pipe.Register[GameAction](b, pipe.WithCarryover()); err != nil {
		return fmt.Errorf("register game actions: %w", err)
	}
	if err := pipe.Register[Effect](b); err != nil {
		return fmt.Errorf("register effects: %w", err)
	}

	view := deps.World.View()
	b.Stage(StageIntent,
		NewAbilitySystem(view, deps.Abilities, deps.Health.Lens(), deps.Mana.Lens(), deps.Pos.Lens(), deps.Log),
	).Stage(StageResolve,
		NewProjectileSystem(view, deps.Abilities, deps.Pos.Lens(), deps.Log),
		NewActionSystem(view, deps.Abilities, deps.Engine, deps.Resist.Lens(), deps.Log),
	).Stage(StageApply,
		NewEffectSystem(deps.World, deps.Health, deps.Mana, deps.Log),
	)
	return nil
}
