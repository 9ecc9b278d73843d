package sim

import (
	"go.uber.org/zap"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
	"github.com/gridfall/server/internal/core/pipe"
)

// EffectSystem is the only system holding world write access. It folds the
// tick's effects into components, clamps to the component bounds, marks
// drained entities for destruction and flushes them before the tick ends.
type EffectSystem struct {
	world  *ecs.World
	health *ecs.Store[component.Health]
	mana   *ecs.Store[component.Mana]
	log    *zap.Logger

	effects pipe.Reader[Effect]
}

func NewEffectSystem(world *ecs.World, health *ecs.Store[component.Health], mana *ecs.Store[component.Mana], log *zap.Logger) *EffectSystem {
	return &EffectSystem{
		world:  world,
		health: health,
		mana:   mana,
		log:    log,
	}
}

func (s *EffectSystem) Name() string { return "effect" }

func (s *EffectSystem) Wire(w *pipe.Wiring) error {
	s.effects = pipe.Consume[Effect](w)
	return nil
}

func (s *EffectSystem) Execute() error {
	for _, ef := range s.effects.Drain() {
		if !s.world.Alive(ef.Target) {
			continue
		}
		if ef.DeltaHealth != 0 {
			s.applyHealth(ef.Target, ef.DeltaHealth)
		}
		if ef.DeltaMana != 0 {
			s.applyMana(ef.Target, ef.DeltaMana)
		}
	}
	if n := s.world.FlushDestroyed(); n > 0 {
		s.log.Info("entities destroyed", zap.Int("count", n))
	}
	return nil
}

func (s *EffectSystem) applyHealth(id ecs.EntityID, delta int) {
	h, ok := s.health.Get(id)
	if !ok {
		return
	}
	h.Current = clamp(h.Current+delta, 0, h.Max)
	if h.Current == 0 {
		s.log.Info("entity drained", zap.Uint64("entity", uint64(id)))
		s.world.MarkDestroyed(id)
	}
}

func (s *EffectSystem) applyMana(id ecs.EntityID, delta int) {
	m, ok := s.mana.Get(id)
	if !ok {
		return
	}
	m.Current = clamp(m.Current+delta, 0, m.Max)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
