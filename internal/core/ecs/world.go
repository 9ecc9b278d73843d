package ecs

// World owns the entity pool and the component stores registered with it.
// A *World is the write capability for entity lifecycle: only the stage a
// host designates as its mutation stage should hold one. Everything else
// reads through View and per-component lenses.
type World struct {
	pool    *Pool
	stores  []Removable
	pending []EntityID
}

func NewWorld() *World {
	return &World{
		pool:    NewPool(),
		pending: make([]EntityID, 0, 64),
	}
}

// RegisterStore ties a component store's cleanup to entity destruction.
func (w *World) RegisterStore(s Removable) {
	w.stores = append(w.stores, s)
}

func (w *World) Create() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkDestroyed queues an entity for deferred destruction. The entity stays
// alive and queryable until FlushDestroyed runs.
func (w *World) MarkDestroyed(id EntityID) {
	w.pending = append(w.pending, id)
}

// FlushDestroyed destroys every queued entity, clearing its components from
// all registered stores. Returns the number actually destroyed; entities
// queued twice count once.
func (w *World) FlushDestroyed() int {
	destroyed := 0
	for _, id := range w.pending {
		if !w.pool.Alive(id) {
			continue
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
		destroyed++
	}
	w.pending = w.pending[:0]
	return destroyed
}

// View returns the world's read-only facade. Valid for the world's lifetime;
// intended for non-mutating systems and for presentation code between ticks.
func (w *World) View() *View {
	return &View{w: w}
}

// View exposes the world's read side only.
type View struct {
	w *World
}

func (v *View) Alive(id EntityID) bool {
	return v.w.pool.Alive(id)
}
