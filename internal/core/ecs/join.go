package ecs

// Join2 iterates over entities holding both component A and B. The smaller
// store drives the loop.
func Join2[A, B any](as *Store[A], bs *Store[B], fn func(EntityID, *A, *B)) {
	if as.Len() <= bs.Len() {
		for id, a := range as.items {
			if b, ok := bs.items[id]; ok {
				fn(id, a, b)
			}
		}
		return
	}
	for id, b := range bs.items {
		if a, ok := as.items[id]; ok {
			fn(id, a, b)
		}
	}
}

// Join3 iterates over entities holding components A, B, and C.
func Join3[A, B, C any](as *Store[A], bs *Store[B], cs *Store[C], fn func(EntityID, *A, *B, *C)) {
	Join2(as, bs, func(id EntityID, a *A, b *B) {
		if c, ok := cs.items[id]; ok {
			fn(id, a, b, c)
		}
	})
}
