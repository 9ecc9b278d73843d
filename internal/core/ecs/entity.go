package ecs

// EntityID packs a 32-bit slot index with a 32-bit generation. The generation
// bumps when a slot is freed, so an identifier held inside a message goes
// stale instead of silently aliasing whatever entity reuses the slot.
//
// Live slots always carry an odd generation, so the zero EntityID is never a
// valid entity and works as a nil sentinel.
type EntityID uint64

func makeID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) index() uint32      { return uint32(id) }
func (id EntityID) generation() uint32 { return uint32(id >> 32) }

// IsNil reports whether id is the zero sentinel.
func (id EntityID) IsNil() bool { return id == 0 }

// Pool allocates entity identifiers with generational slot reuse.
type Pool struct {
	generations []uint32 // odd = live, even = free
	free        []uint32
}

func NewPool() *Pool {
	return &Pool{
		generations: make([]uint32, 0, 1024),
		free:        make([]uint32, 0, 256),
	}
}

// Create returns a fresh live identifier, reusing a freed slot when one is
// available.
func (p *Pool) Create() EntityID {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.generations[idx]++ // even -> odd: live again
		return makeID(idx, p.generations[idx])
	}
	p.generations = append(p.generations, 1)
	return makeID(uint32(len(p.generations)-1), 1)
}

// Alive reports whether id refers to a live, current entity. Stale ids from
// destroyed entities return false.
func (p *Pool) Alive(id EntityID) bool {
	idx := id.index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.generation() && id.generation()%2 == 1
}

// Destroy frees id's slot. Destroying a stale or unknown id is a no-op.
func (p *Pool) Destroy(id EntityID) {
	idx := id.index()
	if int(idx) >= len(p.generations) || p.generations[idx] != id.generation() {
		return
	}
	p.generations[idx]++ // odd -> even: dead
	p.free = append(p.free, idx)
}
