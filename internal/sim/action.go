package sim

import (
	"go.uber.org/zap"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
	"github.com/gridfall/server/internal/core/pipe"
	"github.com/gridfall/server/internal/data"
	"github.com/gridfall/server/internal/scripting"
)

// ActionSystem runs the effect formula for every landed game action and emits
// the resulting world mutations as effects. The formula itself lives in Lua
// with a built-in fallback, so balance changes never need a rebuild.
type ActionSystem struct {
	view      *ecs.View
	abilities *data.AbilityTable
	engine    *scripting.Engine
	resist    ecs.Lens[component.Resist]
	log       *zap.Logger

	actions pipe.Reader[GameAction]
	effects pipe.Writer[Effect]
}

func NewActionSystem(view *ecs.View, abilities *data.AbilityTable, engine *scripting.Engine, resist ecs.Lens[component.Resist], log *zap.Logger) *ActionSystem {
	return &ActionSystem{
		view:      view,
		abilities: abilities,
		engine:    engine,
		resist:    resist,
		log:       log,
	}
}

func (s *ActionSystem) Name() string { return "action" }

func (s *ActionSystem) Wire(w *pipe.Wiring) error {
	s.actions = pipe.Consume[GameAction](w)
	s.effects = pipe.Produce[Effect](w)
	return nil
}

func (s *ActionSystem) Execute() error {
	for _, act := range s.actions.Drain() {
		info := s.abilities.Get(act.Ability)
		if info == nil {
			continue
		}
		if !s.view.Alive(act.Target) {
			s.log.Debug("action against dead target discarded", zap.String("ability", info.Name))
			continue
		}
		res, _ := s.resist.Get(act.Target)
		out := s.engine.CalcEffect(scripting.EffectContext{
			Ability: info.Name,
			Element: info.Element,
			Base:    act.Base,
			Resist:  res.For(info.Element),
		})
		if out.Amount > 0 {
			if err := s.effects.Push(Effect{Target: act.Target, DeltaHealth: -out.Amount}); err != nil {
				return err
			}
		}
		if info.ManaCost > 0 && s.view.Alive(act.Caster) {
			if err := s.effects.Push(Effect{Target: act.Caster, DeltaMana: -info.ManaCost}); err != nil {
				return err
			}
		}
	}
	return nil
}
