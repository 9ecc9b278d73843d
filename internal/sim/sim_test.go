package sim

import (
	"testing"

	"go.uber.org/zap"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
	"github.com/gridfall/server/internal/core/pipe"
	"github.com/gridfall/server/internal/data"
	"github.com/gridfall/server/internal/scripting"
)

func testTable(t *testing.T) *data.AbilityTable {
	t.Helper()
	table, err := data.NewAbilityTable(
		data.AbilityInfo{Name: "firebolt", Power: 100, ManaCost: 12, Element: component.ElementMagic, Projectile: true, Speed: 3, Range: 12},
		data.AbilityInfo{Name: "zap", Power: 100, Element: component.ElementMagic, Range: 12},
		data.AbilityInfo{Name: "strike", Power: 25, Element: component.ElementPhysical, Range: 1},
	)
	if err != nil {
		t.Fatalf("build ability table: %v", err)
	}
	return table
}

type rig struct {
	world  *ecs.World
	health *ecs.Store[component.Health]
	mana   *ecs.Store[component.Mana]
	pos    *ecs.Store[component.Position]
	resist *ecs.Store[component.Resist]
	pl     *pipe.Pipeline
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		world:  ecs.NewWorld(),
		health: ecs.NewStore[component.Health](),
		mana:   ecs.NewStore[component.Mana](),
		pos:    ecs.NewStore[component.Position](),
		resist: ecs.NewStore[component.Resist](),
	}
	r.world.RegisterStore(r.health)
	r.world.RegisterStore(r.mana)
	r.world.RegisterStore(r.pos)
	r.world.RegisterStore(r.resist)

	engine, err := scripting.NewEngine(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(engine.Close)

	b := pipe.NewBuilder(pipe.WithLogger(zap.NewNop()))
	deps := &Deps{
		World:     r.world,
		Health:    r.health,
		Mana:      r.mana,
		Pos:       r.pos,
		Resist:    r.resist,
		Abilities: testTable(t),
		Engine:    engine,
		Log:       zap.NewNop(),
	}
	if err := Register(b, deps); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.pl, err = b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return r
}

func (r *rig) spawn(t *testing.T, h component.Health, m component.Mana, p component.Position, res component.Resist) ecs.EntityID {
	t.Helper()
	id := r.world.Create()
	r.health.Set(id, &h)
	r.mana.Set(id, &m)
	r.pos.Set(id, &p)
	r.resist.Set(id, &res)
	return id
}

func (r *rig) tick(t *testing.T) *pipe.Report {
	t.Helper()
	rep, err := r.pl.Tick()
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	for _, f := range rep.Failures {
		t.Fatalf("system %s/%s failed: %v", f.Stage, f.System, f.Err)
	}
	return rep
}

func (r *rig) currentHealth(t *testing.T, id ecs.EntityID) int {
	t.Helper()
	h, ok := r.health.Get(id)
	if !ok {
		t.Fatalf("entity %d has no health", id)
	}
	return h.Current
}

func TestDirectAbilityEndToEnd(t *testing.T) {
	r := newRig(t)
	caster := r.spawn(t, component.Health{Current: 120, Max: 120}, component.Mana{Current: 60, Max: 60},
		component.Position{X: 2, Y: 2}, component.Resist{Magic: 0.1})
	target := r.spawn(t, component.Health{Current: 150, Max: 150}, component.Mana{Current: 0, Max: 0},
		component.Position{X: 9, Y: 7}, component.Resist{Magic: 0.75})

	if err := pipe.Inject(r.pl, CastIntent{Caster: caster, Target: target, Ability: "zap"}); err != nil {
		t.Fatalf("inject: %v", err)
	}
	rep := r.tick(t)

	// 100 power against 0.75 magic resistance leaves 25 damage.
	if got := r.currentHealth(t, target); got != 125 {
		t.Errorf("target health = %d, want 125", got)
	}
	if len(rep.Unconsumed) != 0 {
		t.Errorf("unconsumed diagnostics: %+v", rep.Unconsumed)
	}
	for kind, n := range pendingCounts(t, r.pl) {
		if n != 0 {
			t.Errorf("%s channel holds %d messages after tick", kind, n)
		}
	}
}

func pendingCounts(t *testing.T, pl *pipe.Pipeline) map[string]int {
	t.Helper()
	out := make(map[string]int)
	add := func(kind string, n int, err error) {
		if err != nil {
			t.Fatalf("pending %s: %v", kind, err)
		}
		out[kind] = n
	}
	n, err := pipe.Pending[CastIntent](pl)
	add("CastIntent", n, err)
	n, err = pipe.Pending[SpawnProjectile](pl)
	add("SpawnProjectile", n, err)
	n, err = pipe.Pending[GameAction](pl)
	add("GameAction", n, err)
	n, err = pipe.Pending[Effect](pl)
	add("Effect", n, err)
	return out
}

func TestProjectileFlightAndImpact(t *testing.T) {
	r := newRig(t)
	caster := r.spawn(t, component.Health{Current: 120, Max: 120}, component.Mana{Current: 60, Max: 60},
		component.Position{X: 2, Y: 2}, component.Resist{})
	target := r.spawn(t, component.Health{Current: 150, Max: 150}, component.Mana{},
		component.Position{X: 9, Y: 7}, component.Resist{Magic: 0.75})

	if err := pipe.Inject(r.pl, CastIntent{Caster: caster, Target: target, Ability: "firebolt"}); err != nil {
		t.Fatalf("inject: %v", err)
	}

	// Chebyshev distance 7 at speed 3: three ticks of flight, impact lands
	// mid-resolve on the third and carries over, damage applies on the fourth.
	for i := 0; i < 3; i++ {
		r.tick(t)
		if got := r.currentHealth(t, target); got != 150 {
			t.Fatalf("tick %d: target health = %d, want 150 while in flight", i+1, got)
		}
	}
	r.tick(t)

	if got := r.currentHealth(t, target); got != 125 {
		t.Errorf("target health = %d, want 125 after impact", got)
	}
	m, _ := r.mana.Get(caster)
	if m.Current != 48 {
		t.Errorf("caster mana = %d, want 48", m.Current)
	}
}

func TestProjectileDespawnsWhenTargetDies(t *testing.T) {
	r := newRig(t)
	caster := r.spawn(t, component.Health{Current: 120, Max: 120}, component.Mana{Current: 60, Max: 60},
		component.Position{X: 0, Y: 0}, component.Resist{})
	target := r.spawn(t, component.Health{Current: 150, Max: 150}, component.Mana{},
		component.Position{X: 9, Y: 0}, component.Resist{})

	if err := pipe.Inject(r.pl, CastIntent{Caster: caster, Target: target, Ability: "firebolt"}); err != nil {
		t.Fatalf("inject: %v", err)
	}
	r.tick(t)

	r.world.MarkDestroyed(target)
	r.world.FlushDestroyed()
	r.tick(t)

	if got := pendingCounts(t, r.pl)["GameAction"]; got != 0 {
		t.Errorf("GameAction pending = %d, want 0 after target died in flight", got)
	}
}

func TestCastRejectedWithoutMana(t *testing.T) {
	r := newRig(t)
	caster := r.spawn(t, component.Health{Current: 100, Max: 100}, component.Mana{Current: 3, Max: 60},
		component.Position{X: 0, Y: 0}, component.Resist{})
	target := r.spawn(t, component.Health{Current: 100, Max: 100}, component.Mana{},
		component.Position{X: 1, Y: 0}, component.Resist{})

	if err := pipe.Inject(r.pl, CastIntent{Caster: caster, Target: target, Ability: "firebolt"}); err != nil {
		t.Fatalf("inject: %v", err)
	}
	r.tick(t)
	r.tick(t)

	if got := r.currentHealth(t, target); got != 100 {
		t.Errorf("target health = %d, want 100 after rejected cast", got)
	}
}

func TestCastRejectedOutOfRange(t *testing.T) {
	r := newRig(t)
	caster := r.spawn(t, component.Health{Current: 100, Max: 100}, component.Mana{Current: 60, Max: 60},
		component.Position{X: 0, Y: 0}, component.Resist{})
	target := r.spawn(t, component.Health{Current: 100, Max: 100}, component.Mana{},
		component.Position{X: 5, Y: 0}, component.Resist{})

	if err := pipe.Inject(r.pl, CastIntent{Caster: caster, Target: target, Ability: "strike"}); err != nil {
		t.Fatalf("inject: %v", err)
	}
	r.tick(t)

	if got := r.currentHealth(t, target); got != 100 {
		t.Errorf("target health = %d, want 100 after out-of-range cast", got)
	}
}

func TestActionAgainstDeadTargetDiscarded(t *testing.T) {
	r := newRig(t)
	caster := r.spawn(t, component.Health{Current: 100, Max: 100}, component.Mana{Current: 60, Max: 60},
		component.Position{X: 0, Y: 0}, component.Resist{})
	target := r.spawn(t, component.Health{Current: 100, Max: 100}, component.Mana{},
		component.Position{X: 1, Y: 0}, component.Resist{})

	r.world.MarkDestroyed(target)
	r.world.FlushDestroyed()

	if err := pipe.Inject(r.pl, GameAction{Caster: caster, Target: target, Ability: "zap", Base: 100}); err != nil {
		t.Fatalf("inject: %v", err)
	}
	rep := r.tick(t)

	if !rep.OK() {
		t.Errorf("report not OK: %+v", rep)
	}
	if got := pendingCounts(t, r.pl)["Effect"]; got != 0 {
		t.Errorf("Effect pending = %d, want 0", got)
	}
}

func TestLethalDamageDestroysTarget(t *testing.T) {
	r := newRig(t)
	caster := r.spawn(t, component.Health{Current: 100, Max: 100}, component.Mana{Current: 60, Max: 60},
		component.Position{X: 0, Y: 0}, component.Resist{})
	target := r.spawn(t, component.Health{Current: 40, Max: 40}, component.Mana{},
		component.Position{X: 1, Y: 0}, component.Resist{})

	if err := pipe.Inject(r.pl, CastIntent{Caster: caster, Target: target, Ability: "zap"}); err != nil {
		t.Fatalf("inject: %v", err)
	}
	r.tick(t)

	if r.world.Alive(target) {
		t.Error("target still alive after lethal hit")
	}
	if r.health.Has(target) {
		t.Error("destroyed target still has components")
	}
}

func TestHealthClampsAtMax(t *testing.T) {
	r := newRig(t)
	target := r.spawn(t, component.Health{Current: 90, Max: 100}, component.Mana{},
		component.Position{}, component.Resist{})

	if err := pipe.Inject(r.pl, Effect{Target: target, DeltaHealth: 50}); err != nil {
		t.Fatalf("inject: %v", err)
	}
	r.tick(t)

	if got := r.currentHealth(t, target); got != 100 {
		t.Errorf("target health = %d, want 100 after overheal", got)
	}
}
