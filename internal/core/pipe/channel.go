package pipe

import "sync"

// channel holds the pending message multiset for one kind. Push is safe from
// many producers at once; a drain takes the whole set atomically, so a push
// racing a drain lands either fully in this drain or in the next one, never
// torn. No ordering is kept across producers.
type channel[T any] struct {
	mu      sync.Mutex
	pending []T
	bound   int // 0 = unbounded
}

func newChannel[T any](bound int) *channel[T] {
	return &channel[T]{bound: bound}
}

func (c *channel[T]) push(msg T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bound > 0 && len(c.pending) >= c.bound {
		return ErrChannelFull
	}
	c.pending = append(c.pending, msg)
	return nil
}

func (c *channel[T]) drain() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.pending
	c.pending = nil
	return out
}

func (c *channel[T]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
