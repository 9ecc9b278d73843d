package sim

import (
	"errors"

	"go.uber.org/zap"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
	"github.com/gridfall/server/internal/core/pipe"
	"github.com/gridfall/server/internal/data"
)

// AbilitySystem validates cast intents against the current world state and
// turns them into either a projectile spawn or an immediate game action.
// It reads the world through lenses only; rejection never mutates anything.
type AbilitySystem struct {
	view      *ecs.View
	abilities *data.AbilityTable
	health    ecs.Lens[component.Health]
	mana      ecs.Lens[component.Mana]
	pos       ecs.Lens[component.Position]
	log       *zap.Logger

	intents pipe.Reader[CastIntent]
	spawns  pipe.Writer[SpawnProjectile]
	actions pipe.Writer[GameAction]
}

func NewAbilitySystem(view *ecs.View, abilities *data.AbilityTable, health ecs.Lens[component.Health], mana ecs.Lens[component.Mana], pos ecs.Lens[component.Position], log *zap.Logger) *AbilitySystem {
	return &AbilitySystem{
		view:      view,
		abilities: abilities,
		health:    health,
		mana:      mana,
		pos:       pos,
		log:       log,
	}
}

func (s *AbilitySystem) Name() string { return "ability" }

func (s *AbilitySystem) Wire(w *pipe.Wiring) error {
	s.intents = pipe.Consume[CastIntent](w)
	s.spawns = pipe.Produce[SpawnProjectile](w)
	s.actions = pipe.Produce[GameAction](w)
	return nil
}

func (s *AbilitySystem) Execute() error {
	for _, in := range s.intents.Drain() {
		info := s.abilities.Get(in.Ability)
		if info == nil {
			s.log.Warn("unknown ability in cast intent", zap.String("ability", in.Ability))
			continue
		}
		if !s.validate(in, info) {
			continue
		}
		var err error
		if info.Projectile {
			from, _ := s.pos.Get(in.Caster)
			err = s.spawns.Push(SpawnProjectile{
				Caster:  in.Caster,
				Target:  in.Target,
				Ability: info.Name,
				From:    from,
			})
		} else {
			err = s.actions.Push(GameAction{
				Caster:  in.Caster,
				Target:  in.Target,
				Ability: info.Name,
				Base:    info.Power,
			})
		}
		if errors.Is(err, pipe.ErrChannelFull) {
			s.log.Warn("cast dropped, channel full", zap.String("ability", info.Name))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// validate applies the cast preconditions in rejection-cheapest order. A
// failed check logs at debug and discards the intent.
func (s *AbilitySystem) validate(in CastIntent, info *data.AbilityInfo) bool {
	if !s.view.Alive(in.Caster) || !s.view.Alive(in.Target) {
		s.log.Debug("cast with dead participant", zap.String("ability", info.Name))
		return false
	}
	if mana, ok := s.mana.Get(in.Caster); ok && mana.Current < info.ManaCost {
		s.log.Debug("cast without mana",
			zap.String("ability", info.Name),
			zap.Int("have", mana.Current),
			zap.Int("need", info.ManaCost))
		return false
	}
	from, okFrom := s.pos.Get(in.Caster)
	to, okTo := s.pos.Get(in.Target)
	if !okFrom || !okTo {
		return false
	}
	if d := from.Distance(to); d > info.Range {
		s.log.Debug("cast out of range",
			zap.String("ability", info.Name),
			zap.Int("distance", d),
			zap.Int("range", info.Range))
		return false
	}
	return true
}
