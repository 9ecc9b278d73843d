package pipe

// System is the contract every simulation unit implements. Wire runs once at
// pipeline construction to declare the system's channel reads and writes and
// resolve its handles; Execute runs once per tick within the system's stage,
// concurrently with its stage siblings.
//
// Execute must touch only the handles resolved in Wire and whatever world
// access the host granted at construction. An error return is contained to
// the system for that tick and surfaced in the tick report.
type System interface {
	Name() string
	Wire(w *Wiring) error
	Execute() error
}
