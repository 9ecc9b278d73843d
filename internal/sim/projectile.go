package sim

import (
	"go.uber.org/zap"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
	"github.com/gridfall/server/internal/core/pipe"
	"github.com/gridfall/server/internal/data"
)

// projectile is one in-flight ability payload. Flight state lives inside the
// system rather than the world so nothing outside the apply stage writes
// components.
type projectile struct {
	caster  ecs.EntityID
	target  ecs.EntityID
	ability string
	at      component.Position
	speed   int
}

// ProjectileSystem advances in-flight payloads toward their targets each tick
// and converts arrivals into game actions. A target that dies or loses its
// position mid-flight despawns the payload.
type ProjectileSystem struct {
	view      *ecs.View
	abilities *data.AbilityTable
	pos       ecs.Lens[component.Position]
	log       *zap.Logger

	flying []projectile

	spawns  pipe.Reader[SpawnProjectile]
	actions pipe.Writer[GameAction]
}

func NewProjectileSystem(view *ecs.View, abilities *data.AbilityTable, pos ecs.Lens[component.Position], log *zap.Logger) *ProjectileSystem {
	return &ProjectileSystem{
		view:      view,
		abilities: abilities,
		pos:       pos,
		log:       log,
	}
}

func (s *ProjectileSystem) Name() string { return "projectile" }

func (s *ProjectileSystem) Wire(w *pipe.Wiring) error {
	s.spawns = pipe.Consume[SpawnProjectile](w)
	s.actions = pipe.Produce[GameAction](w)
	return nil
}

func (s *ProjectileSystem) Execute() error {
	for _, sp := range s.spawns.Drain() {
		info := s.abilities.Get(sp.Ability)
		if info == nil {
			continue
		}
		speed := info.Speed
		if speed < 1 {
			speed = 1
		}
		s.flying = append(s.flying, projectile{
			caster:  sp.Caster,
			target:  sp.Target,
			ability: info.Name,
			at:      sp.From,
			speed:   speed,
		})
	}

	kept := s.flying[:0]
	for _, p := range s.flying {
		goal, ok := s.pos.Get(p.target)
		if !ok || !s.view.Alive(p.target) {
			s.log.Debug("projectile lost its target", zap.String("ability", p.ability))
			continue
		}
		for i := 0; i < p.speed && p.at != goal; i++ {
			p.at = p.at.StepToward(goal)
		}
		if p.at != goal {
			kept = append(kept, p)
			continue
		}
		info := s.abilities.Get(p.ability)
		if info == nil {
			continue
		}
		if err := s.actions.Push(GameAction{
			Caster:  p.caster,
			Target:  p.target,
			Ability: p.ability,
			Base:    info.Power,
		}); err != nil {
			return err
		}
	}
	s.flying = kept
	return nil
}

// InFlight reports how many payloads are still travelling.
func (s *ProjectileSystem) InFlight() int { return len(s.flying) }
