package pipe

import (
	"fmt"
	"reflect"
)

// registry owns the single channel instance for every registered message
// kind. Kinds are identified by their Go type. One registry belongs to
// exactly one pipeline; independent pipelines never share channels.
type registry struct {
	kinds   map[reflect.Type]*kindEntry
	ordered []*kindEntry // registration order, for reproducible diagnostics
}

// kindEntry pairs a typed channel (held erased) with its wiring metadata.
// Producer and consumer stage indices are recorded during Build.
type kindEntry struct {
	name      string
	typed     any // *channel[T]
	counter   sizer
	carryover bool
	injected  bool
	producers []int
	consumers []int
}

// sizer is the untyped face of channel[T] needed by the end-of-tick sweep.
type sizer interface {
	size() int
}

func newRegistry() *registry {
	return &registry{kinds: make(map[reflect.Type]*kindEntry)}
}

// KindOption configures a message kind at registration.
type KindOption func(*kindConfig)

type kindConfig struct {
	bound     int
	carryover bool
	injected  bool
}

// WithCapacity bounds the kind's channel to n pending messages. A push beyond
// the bound fails with ErrChannelFull instead of stalling the tick.
func WithCapacity(n int) KindOption {
	return func(c *kindConfig) { c.bound = n }
}

// WithCarryover declares that the kind is legitimately non-empty between
// ticks: messages pushed at or after the consuming stage defer to the next
// tick's drain. Carry-over kinds are exempt from the unconsumed sweep, and
// they are the only kinds allowed to be produced at or after their consumer
// stage.
func WithCarryover() KindOption {
	return func(c *kindConfig) { c.carryover = true }
}

// WithInjected declares that the kind enters the pipeline through Inject
// rather than a producing system, so Build accepts it with consumers only.
func WithInjected() KindOption {
	return func(c *kindConfig) { c.injected = true }
}

// Register creates the channel for message kind T on the builder's registry.
// Registering the same kind twice fails with ErrDuplicateKind.
func Register[T any](b *Builder, opts ...KindOption) error {
	var cfg kindConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	rt := typeOf[T]()
	if _, ok := b.reg.kinds[rt]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, rt)
	}
	ch := newChannel[T](cfg.bound)
	ent := &kindEntry{
		name:      rt.String(),
		typed:     ch,
		counter:   ch,
		carryover: cfg.carryover,
		injected:  cfg.injected,
	}
	b.reg.kinds[rt] = ent
	b.reg.ordered = append(b.reg.ordered, ent)
	return nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
