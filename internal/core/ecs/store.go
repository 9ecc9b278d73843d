package ecs

// Removable is implemented by every component store so the world can clear a
// destroyed entity's data from all of them.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed component map. A *Store is a write capability: only the
// systems a host wires with one may mutate that component. Read-only access
// goes through Lens.
type Store[T any] struct {
	items map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{items: make(map[EntityID]*T, 64)}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	s.items[id] = c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.items[id]
	return c, ok
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.items[id]
	return ok
}

func (s *Store[T]) Remove(id EntityID) {
	delete(s.items, id)
}

func (s *Store[T]) Len() int {
	return len(s.items)
}

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.items {
		fn(id, c)
	}
}

// Lens returns the store's read-only capability.
func (s *Store[T]) Lens() Lens[T] {
	return Lens[T]{s: s}
}

// Lens is a read-only view over one component store. Lookups return value
// copies, so a holder cannot mutate world state through it.
type Lens[T any] struct {
	s *Store[T]
}

func (l Lens[T]) Get(id EntityID) (T, bool) {
	if c, ok := l.s.items[id]; ok {
		return *c, true
	}
	var zero T
	return zero, false
}

func (l Lens[T]) Has(id EntityID) bool {
	return l.s.Has(id)
}

func (l Lens[T]) Len() int {
	return l.s.Len()
}

func (l Lens[T]) Each(fn func(EntityID, T)) {
	for id, c := range l.s.items {
		fn(id, *c)
	}
}
