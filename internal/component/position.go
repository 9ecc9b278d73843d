package component

// Position is a tile coordinate on the grid.
type Position struct {
	X int
	Y int
}

// Distance returns the Chebyshev distance to other, the tile metric used for
// range checks (diagonal steps count as one).
func (p Position) Distance(other Position) int {
	dx := abs(p.X - other.X)
	dy := abs(p.Y - other.Y)
	if dy > dx {
		return dy
	}
	return dx
}

// StepToward returns the position one tile closer to target, moving
// diagonally when both axes differ.
func (p Position) StepToward(target Position) Position {
	next := p
	switch {
	case target.X > p.X:
		next.X++
	case target.X < p.X:
		next.X--
	}
	switch {
	case target.Y > p.Y:
		next.Y++
	case target.Y < p.Y:
		next.Y--
	}
	return next
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
