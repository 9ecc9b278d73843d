package pipe

import "time"

// Report summarizes one tick for the host. Failures and unconsumed-message
// diagnostics are surfaced here rather than aborting the tick; what to do
// about a repeatedly failing system is host policy.
type Report struct {
	Tick       uint64
	Duration   time.Duration
	Failures   []Failure
	Unconsumed []Unconsumed
}

// Failure records one system's contained execution failure.
type Failure struct {
	Stage  string
	System string
	Err    error
}

// Unconsumed flags a channel left non-empty at end of tick with no carry-over
// declaration: a message was produced that no stage drained, which points at
// a wiring bug. Non-fatal in production, but a test suite should treat it as
// a failure.
type Unconsumed struct {
	Kind  string
	Count int
}

// OK reports whether the tick completed with no failures and no unconsumed
// messages.
func (r *Report) OK() bool {
	return len(r.Failures) == 0 && len(r.Unconsumed) == 0
}
