package pipe

import (
	"fmt"
	"reflect"
)

// Wiring is the declaration context handed to a system's Wire method during
// Build. Handles resolved through it are valid for the pipeline's lifetime;
// resolution failures are collected and fail the Build, so a missing kind is
// caught before the first tick.
type Wiring struct {
	b      *Builder
	stage  int
	system string
	errs   []error
}

type distKey struct {
	stage int
	rt    reflect.Type
}

type distEntry struct {
	impl any // *dist[T]
	fill func()
}

// Consume declares that the wiring system reads kind T and returns its read
// capability. The system will see the kind's full drained set each tick.
func Consume[T any](w *Wiring) Reader[T] {
	rt := typeOf[T]()
	box := &inbox[T]{}
	ent, ok := w.b.reg.kinds[rt]
	if !ok {
		w.errs = append(w.errs, fmt.Errorf("%w: %s consumed by %q", ErrUnknownKind, rt, w.system))
		return Reader[T]{box: box}
	}
	ent.consumers = append(ent.consumers, w.stage)

	key := distKey{stage: w.stage, rt: rt}
	de, ok := w.b.dists[key]
	if !ok {
		d := &dist[T]{ch: ent.typed.(*channel[T])}
		de = &distEntry{impl: d, fill: d.fill}
		w.b.dists[key] = de
	}
	d := de.impl.(*dist[T])
	d.boxes = append(d.boxes, box)
	return Reader[T]{box: box}
}

// Produce declares that the wiring system writes kind T and returns its write
// capability, open only while the declaring stage runs.
func Produce[T any](w *Wiring) Writer[T] {
	rt := typeOf[T]()
	g := &gate{}
	ent, ok := w.b.reg.kinds[rt]
	if !ok {
		w.errs = append(w.errs, fmt.Errorf("%w: %s produced by %q", ErrUnknownKind, rt, w.system))
		// Inert writer; the Build fails regardless.
		return Writer[T]{ch: newChannel[T](0), gate: g, kind: rt.String()}
	}
	ent.producers = append(ent.producers, w.stage)
	w.b.gates[w.stage] = append(w.b.gates[w.stage], g)
	return Writer[T]{ch: ent.typed.(*channel[T]), gate: g, kind: ent.name}
}
