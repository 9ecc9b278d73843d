// Package query holds the read-only questions presentation code may ask of
// the world between ticks. A Query is stateless beyond the lenses it was
// built with; Evaluate never mutates anything.
package query

import (
	"errors"

	"github.com/gridfall/server/internal/component"
	"github.com/gridfall/server/internal/core/ecs"
)

// ErrNotFound is reported when a query targets a dead or unknown entity.
var ErrNotFound = errors.New("query: entity not found")

// Query answers one kind of question about the world.
type Query[A, R any] interface {
	Evaluate(v *ecs.View, args A) (R, error)
}

// HealthOf reports an entity's current hit points.
type HealthOf struct {
	Health ecs.Lens[component.Health]
}

func (q HealthOf) Evaluate(v *ecs.View, id ecs.EntityID) (int, error) {
	if !v.Alive(id) {
		return 0, ErrNotFound
	}
	h, ok := q.Health.Get(id)
	if !ok {
		return 0, ErrNotFound
	}
	return h.Current, nil
}

// EntitiesAt lists live entities standing on a tile.
type EntitiesAt struct {
	Pos ecs.Lens[component.Position]
}

func (q EntitiesAt) Evaluate(v *ecs.View, at component.Position) ([]ecs.EntityID, error) {
	var ids []ecs.EntityID
	q.Pos.Each(func(id ecs.EntityID, p component.Position) {
		if p == at && v.Alive(id) {
			ids = append(ids, id)
		}
	})
	return ids, nil
}

// AliveCount counts live entities holding a Health component.
type AliveCount struct {
	Health ecs.Lens[component.Health]
}

func (q AliveCount) Evaluate(v *ecs.View, _ struct{}) (int, error) {
	count := 0
	q.Health.Each(func(id ecs.EntityID, _ component.Health) {
		if v.Alive(id) {
			count++
		}
	})
	return count, nil
}
