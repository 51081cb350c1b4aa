package world

// CellSnapshot is the read-only per-cell view exposed to rendering and
// plotting collaborators.
type CellSnapshot struct {
	Resource float64
	Occupied bool
}

// Snapshot is a consistent point-in-time copy of the reporting surface:
// tick progress, grid dimensions, per-cell state, and population counts.
type Snapshot struct {
	Tick       int
	TotalTicks int

	Width, Height int
	Cells         []CellSnapshot // indexed [y*Width+x]

	Alive         int
	InitialAgents int
}

// Snapshot copies the grid state under the landscape lock.
func (l *Landscape) Snapshot(alive, totalTicks int) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	cells := make([]CellSnapshot, l.Width*l.Height)
	for x := 0; x < l.Width; x++ {
		for y := 0; y < l.Height; y++ {
			c := &l.cells[x][y]
			cells[y*l.Width+x] = CellSnapshot{
				Resource: c.Resource,
				Occupied: !c.Empty(),
			}
		}
	}

	return Snapshot{
		Tick:          l.time,
		TotalTicks:    totalTicks,
		Width:         l.Width,
		Height:        l.Height,
		Cells:         cells,
		Alive:         alive,
		InitialAgents: l.initialAgents,
	}
}

// At returns the cell snapshot at (x, y).
func (s *Snapshot) At(x, y int) CellSnapshot {
	return s.Cells[y*s.Width+x]
}

// MeanResource returns the average resource level across the grid.
func (s *Snapshot) MeanResource() float64 {
	if len(s.Cells) == 0 {
		return 0
	}
	var sum float64
	for _, c := range s.Cells {
		sum += c.Resource
	}
	return sum / float64(len(s.Cells))
}
