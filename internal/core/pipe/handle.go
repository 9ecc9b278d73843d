package pipe

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// Reader is a typed read capability for one message kind, granted to a system
// during wiring. The scheduler fills it with the kind's full drained set
// before the system's stage runs; each declared consumer receives every
// message exactly once.
type Reader[T any] struct {
	box *inbox[T]
}

// Drain returns the messages delivered for the current tick and empties the
// reader. A second call within the same tick returns nil.
func (r Reader[T]) Drain() []T {
	msgs := r.box.msgs
	r.box.msgs = nil
	return msgs
}

type inbox[T any] struct {
	msgs []T
}

// Writer is a typed write capability for one message kind. It is open only
// while its declaring stage runs; a push after the stage's barrier reports
// ErrStageClosed.
type Writer[T any] struct {
	ch   *channel[T]
	gate *gate
	kind string
}

// Push appends a message to the kind's channel. Safe to call concurrently
// with other producers of the same stage. Never blocks: a bounded channel at
// capacity reports ErrChannelFull.
func (w Writer[T]) Push(msg T) error {
	if !w.gate.open.Load() {
		return fmt.Errorf("%w: %s", ErrStageClosed, w.kind)
	}
	if err := w.ch.push(msg); err != nil {
		return fmt.Errorf("%w: %s", err, w.kind)
	}
	return nil
}

// gate tracks whether the owning producer's stage is currently running.
type gate struct {
	open atomic.Bool
}

// dist fans one channel's drained set out to every consumer inbox of a stage.
// The channel is drained exactly once per stage; consumers past the first get
// their own copy so none can disturb a sibling's view.
type dist[T any] struct {
	ch    *channel[T]
	boxes []*inbox[T]
}

func (d *dist[T]) fill() {
	msgs := d.ch.drain()
	for i, box := range d.boxes {
		if i == 0 {
			box.msgs = msgs
		} else {
			box.msgs = slices.Clone(msgs)
		}
	}
}
