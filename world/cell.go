package world

// Cell is one grid position's resource bookkeeping and occupant slot.
// Capacity is set once from the capacity field and never changes.
// Occupant is a non-owning reference; agent lifetime is owned by the
// scheduler's active list.
type Cell struct {
	X, Y     int
	Capacity int
	Resource float64 // 0 <= Resource <= Capacity
	Occupant *Agent  // nil when empty
}

// Empty reports whether no live agent occupies the cell.
func (c *Cell) Empty() bool {
	return c.Occupant == nil
}
