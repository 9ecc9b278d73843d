package pipe

import (
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Builder assembles a pipeline: message kinds first, then stages in execution
// order. Build wires every system, validates the whole message graph, and
// returns a pipeline whose stage order and wiring are frozen for life.
type Builder struct {
	log    *zap.Logger
	limit  int
	reg    *registry
	stages []*stageSpec
	dists  map[distKey]*distEntry
	gates  map[int][]*gate
	built  bool
}

type stageSpec struct {
	name    string
	systems []System
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the pipeline logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// WithParallelism bounds how many systems of one stage run at once.
// Defaults to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.limit = n
		}
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		log:   zap.NewNop(),
		limit: runtime.GOMAXPROCS(0),
		reg:   newRegistry(),
		dists: make(map[distKey]*distEntry),
		gates: make(map[int][]*gate),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Stage appends a named stage holding the given systems. Stages execute in
// the order they are added; members of one stage run concurrently. The member
// list keeps registration order for diagnostics only.
func (b *Builder) Stage(name string, systems ...System) *Builder {
	b.stages = append(b.stages, &stageSpec{name: name, systems: systems})
	return b
}

// Build wires every system and validates the message graph. It fails fast on
// any unresolved kind, a produced kind nobody consumes, a consumed kind
// nobody produces unless it was declared WithInjected, or a kind produced at
// or after its consumer stage without a carry-over declaration. A pipeline is built once; rebuild from a fresh
// builder to reconfigure.
func (b *Builder) Build() (*Pipeline, error) {
	if b.built {
		return nil, errors.New("pipe: builder already used")
	}
	b.built = true

	var errs []error

	seen := make(map[string]bool, len(b.stages))
	for _, st := range b.stages {
		if seen[st.name] {
			errs = append(errs, fmt.Errorf("pipe: duplicate stage name %q", st.name))
		}
		seen[st.name] = true
	}

	for i, st := range b.stages {
		for _, sys := range st.systems {
			w := &Wiring{b: b, stage: i, system: sys.Name()}
			if err := sys.Wire(w); err != nil {
				errs = append(errs, fmt.Errorf("pipe: wire system %q: %w", sys.Name(), err))
			}
			errs = append(errs, w.errs...)
		}
	}

	for _, ent := range b.reg.ordered {
		errs = append(errs, b.validateKind(ent)...)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	stages := make([]*runtimeStage, len(b.stages))
	for i, st := range b.stages {
		rs := &runtimeStage{
			name:    st.name,
			systems: st.systems,
			gates:   b.gates[i],
		}
		for key, de := range b.dists {
			if key.stage == i {
				rs.fills = append(rs.fills, de.fill)
			}
		}
		stages[i] = rs
	}

	return &Pipeline{
		log:    b.log,
		limit:  b.limit,
		reg:    b.reg,
		stages: stages,
	}, nil
}

// validateKind checks one kind's producer/consumer stage assignments.
func (b *Builder) validateKind(ent *kindEntry) []error {
	var errs []error
	switch {
	case len(ent.producers) == 0 && len(ent.consumers) == 0:
		// Registered but unwired. Legal (the host may inject for a future
		// consumer), but worth a note since nothing will ever drain it.
		b.log.Warn("message kind registered but not wired", zap.String("kind", ent.name))
		return nil
	case len(ent.producers) > 0 && len(ent.consumers) == 0:
		return []error{fmt.Errorf("pipe: kind %s is produced but never consumed", ent.name)}
	case len(ent.consumers) > 0 && len(ent.producers) == 0:
		if ent.injected {
			break
		}
		return []error{fmt.Errorf("pipe: kind %s is consumed but never produced", ent.name)}
	}

	// All consumers of a kind must share one stage, otherwise the first
	// consuming stage would drain the set before later ones saw it.
	consumerStage := ent.consumers[0]
	for _, c := range ent.consumers[1:] {
		if c != consumerStage {
			errs = append(errs, fmt.Errorf("pipe: kind %s is consumed in more than one stage", ent.name))
			break
		}
	}

	if !ent.carryover {
		for _, p := range ent.producers {
			if p >= consumerStage {
				errs = append(errs, fmt.Errorf(
					"pipe: kind %s is produced in stage %q at or after its consumer stage %q; declare it WithCarryover",
					ent.name, b.stages[p].name, b.stages[consumerStage].name))
				break
			}
		}
	}
	return errs
}
