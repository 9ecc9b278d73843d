// Package pipe is the staged message pipeline at the heart of a simulation
// tick. Systems are grouped into ordered stages; all systems of a stage run
// concurrently and communicate with later stages through typed message
// channels owned by the pipeline's registry. A barrier between stages
// guarantees every push of stage N is visible to stage N+1's drains, and
// nothing produced downstream is ever observable upstream within a tick.
package pipe

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline executes its stages in fixed order, once per call to Tick.
// Constructed by a Builder; wiring and stage order never change afterwards.
type Pipeline struct {
	log     *zap.Logger
	limit   int
	reg     *registry
	stages  []*runtimeStage
	tick    uint64
	ticking atomic.Bool
}

type runtimeStage struct {
	name    string
	systems []System
	fills   []func()
	gates   []*gate
}

// Tick runs every stage once: drain the stage's input channels into its
// systems, open its write gates, run the systems with bounded parallelism,
// and hold the barrier until all of them return. After the last stage the
// registry is swept for unconsumed messages. A failing system never blocks
// its siblings or later stages; its failure lands in the report.
func (p *Pipeline) Tick() (*Report, error) {
	if !p.ticking.CompareAndSwap(false, true) {
		return nil, ErrMidTick
	}
	defer p.ticking.Store(false)

	p.tick++
	start := time.Now()
	rep := &Report{Tick: p.tick}

	for _, st := range p.stages {
		p.runStage(st, rep)
	}

	for _, ent := range p.reg.ordered {
		n := ent.counter.size()
		if n == 0 {
			continue
		}
		if ent.carryover {
			p.log.Debug("messages carried over to next tick",
				zap.String("kind", ent.name), zap.Int("count", n))
			continue
		}
		rep.Unconsumed = append(rep.Unconsumed, Unconsumed{Kind: ent.name, Count: n})
		p.log.Warn("unconsumed messages at end of tick",
			zap.String("kind", ent.name), zap.Int("count", n))
	}

	rep.Duration = time.Since(start)
	return rep, nil
}

func (p *Pipeline) runStage(st *runtimeStage, rep *Report) {
	for _, fill := range st.fills {
		fill()
	}
	for _, g := range st.gates {
		g.open.Store(true)
	}

	var mu sync.Mutex
	var eg errgroup.Group
	eg.SetLimit(p.limit)
	for _, sys := range st.systems {
		sys := sys
		eg.Go(func() error {
			if err := p.execute(sys); err != nil {
				p.log.Error("system failed",
					zap.String("stage", st.name),
					zap.String("system", sys.Name()),
					zap.Error(err))
				mu.Lock()
				rep.Failures = append(rep.Failures, Failure{
					Stage:  st.name,
					System: sys.Name(),
					Err:    err,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	// Barrier: every member returns before the stage's writers close and the
	// next stage starts.
	_ = eg.Wait()

	for _, g := range st.gates {
		g.open.Store(false)
	}
}

// execute runs one system, converting a panic into a contained failure.
func (p *Pipeline) execute(sys System) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return sys.Execute()
}

// Inject pushes messages into kind T's channel between ticks. This is how
// outside input (player commands, test fixtures) enters the pipeline: the
// messages surface in the consumer stage's drain on the next Tick.
func Inject[T any](p *Pipeline, msgs ...T) error {
	if p.ticking.Load() {
		return ErrMidTick
	}
	ent, ok := p.reg.kinds[typeOf[T]()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, typeOf[T]())
	}
	ch := ent.typed.(*channel[T])
	for _, msg := range msgs {
		if err := ch.push(msg); err != nil {
			return fmt.Errorf("inject %s: %w", ent.name, err)
		}
	}
	return nil
}

// Pending reports how many messages of kind T are waiting undrained. Intended
// for host diagnostics and tests.
func Pending[T any](p *Pipeline) (int, error) {
	ent, ok := p.reg.kinds[typeOf[T]()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownKind, typeOf[T]())
	}
	return ent.counter.size(), nil
}
