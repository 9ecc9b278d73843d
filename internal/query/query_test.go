package query

import (
	"errors"
	"testing"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
)

func setup() (*ecs.World, *ecs.Store[component.Health], *ecs.Store[component.Position]) {
	w := ecs.NewWorld()
	health := ecs.NewStore[component.Health]()
	pos := ecs.NewStore[component.Position]()
	w.RegisterStore(health)
	w.RegisterStore(pos)
	return w, health, pos
}

func TestHealthOf(t *testing.T) {
	w, health, _ := setup()
	id := w.Create()
	health.Set(id, &component.Health{Current: 75, Max: 100})

	q := HealthOf{Health: health.Lens()}
	got, err := q.Evaluate(w.View(), id)
	if err != nil || got != 75 {
		t.Fatalf("got %d, %v; want 75", got, err)
	}

	w.MarkDestroyed(id)
	w.FlushDestroyed()
	if _, err := q.Evaluate(w.View(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for dead entity, got %v", err)
	}
}

func TestEntitiesAt(t *testing.T) {
	w, _, pos := setup()
	here := component.Position{X: 3, Y: 4}

	a := w.Create()
	b := w.Create()
	c := w.Create()
	pos.Set(a, &here)
	pos.Set(b, &component.Position{X: 3, Y: 4})
	pos.Set(c, &component.Position{X: 0, Y: 0})

	q := EntitiesAt{Pos: pos.Lens()}
	ids, err := q.Evaluate(w.View(), here)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 entities at %v, got %v", here, ids)
	}

	w.MarkDestroyed(b)
	w.FlushDestroyed()
	ids, _ = q.Evaluate(w.View(), here)
	if len(ids) != 1 || ids[0] != a {
		t.Fatalf("expected only %v after destroy, got %v", a, ids)
	}
}

func TestAliveCount(t *testing.T) {
	w, health, _ := setup()
	for i := 0; i < 3; i++ {
		id := w.Create()
		health.Set(id, &component.Health{Current: 1, Max: 1})
	}
	q := AliveCount{Health: health.Lens()}
	n, err := q.Evaluate(w.View(), struct{}{})
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v; want 3", n, err)
	}
}
