package engine

// Step is one slot in the fixed 20-step draft order.
type Step struct {
	Phase    int
	Kind     Kind
	Side     Side
	Position int
}

var Order = []Step{
	// Ban Phase 1
	{Phase: 1, Kind: KindBan, Side: SideBlue, Position: 0},
	{Phase: 1, Kind: KindBan, Side: SideRed, Position: 1},
	{Phase: 1, Kind: KindBan, Side: SideBlue, Position: 2},
	{Phase: 1, Kind: KindBan, Side: SideRed, Position: 3},
	{Phase: 1, Kind: KindBan, Side: SideBlue, Position: 4},
	{Phase: 1, Kind: KindBan, Side: SideRed, Position: 5},
	// Pick Phase 1
	{Phase: 2, Kind: KindPick, Side: SideBlue, Position: 6},
	{Phase: 2, Kind: KindPick, Side: SideRed, Position: 7},
	{Phase: 2, Kind: KindPick, Side: SideRed, Position: 8},
	{Phase: 2, Kind: KindPick, Side: SideBlue, Position: 9},
	{Phase: 2, Kind: KindPick, Side: SideBlue, Position: 10},
	{Phase: 2, Kind: KindPick, Side: SideRed, Position: 11},
	// Ban Phase 2
	{Phase: 3, Kind: KindBan, Side: SideRed, Position: 12},
	{Phase: 3, Kind: KindBan, Side: SideBlue, Position: 13},
	{Phase: 3, Kind: KindBan, Side: SideRed, Position: 14},
	{Phase: 3, Kind: KindBan, Side: SideBlue, Position: 15},
	// Pick Phase 2
	{Phase: 4, Kind: KindPick, Side: SideRed, Position: 16},
	{Phase: 4, Kind: KindPick, Side: SideBlue, Position: 17},
	{Phase: 4, Kind: KindPick, Side: SideBlue, Position: 18},
	{Phase: 4, Kind: KindPick, Side: SideRed, Position: 19},
}

// TotalSteps is the number of slots in a full draft.
const TotalSteps = 20

// EntryAt returns the step at position, or false past the end of the order.
func EntryAt(position int) (Step, bool) {
	if position < 0 || position >= len(Order) {
		return Step{}, false
	}
	return Order[position], true
}

// PhaseOf maps a position to its phase number (1-4).
func PhaseOf(position int) int {
	if step, ok := EntryAt(position); ok {
		return step.Phase
	}
	return 0
}

// IsTurnOf reports whether side acts at position.
func IsTurnOf(side Side, position int) bool {
	step, ok := EntryAt(position)
	return ok && step.Side == side
}
