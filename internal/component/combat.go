package component

// Health tracks a combatant's hit points. An entity whose Current reaches 0
// is marked for destruction by the apply stage.
type Health struct {
	Current int
	Max     int
}

// Mana is the casting resource consumed by abilities.
type Mana struct {
	Current int
	Max     int
}

// Resist holds fractional damage mitigation per element, 0 (none) to 1
// (immune).
type Resist struct {
	Physical float64
	Magic    float64
}

// For returns the mitigation fraction for an ability element. Unknown
// elements mitigate nothing.
func (r Resist) For(element string) float64 {
	switch element {
	case ElementPhysical:
		return r.Physical
	case ElementMagic:
		return r.Magic
	default:
		return 0
	}
}

// Ability elements.
const (
	ElementPhysical = "physical"
	ElementMagic    = "magic"
)
