package pipe

import "errors"

var (
	// ErrDuplicateKind is returned when a message kind is registered twice.
	ErrDuplicateKind = errors.New("pipe: message kind already registered")

	// ErrUnknownKind is returned when a handle is resolved for a kind that
	// was never registered.
	ErrUnknownKind = errors.New("pipe: message kind not registered")

	// ErrChannelFull is returned by Push on a bounded channel at capacity.
	// Recoverable: the producing system decides whether to drop or skip.
	ErrChannelFull = errors.New("pipe: channel at capacity")

	// ErrStageClosed is returned by Push after the producing stage's barrier
	// has passed. Such a push is a contract violation by the producer; the
	// channel itself is never corrupted.
	ErrStageClosed = errors.New("pipe: push outside producing stage")

	// ErrMidTick is returned by Inject while a tick is in progress.
	ErrMidTick = errors.New("pipe: pipeline is mid-tick")
)
