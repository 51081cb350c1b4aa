// Package world implements the simulation engine: the landscape grid, the
// agent lifecycle state machine, and the per-tick concurrent update
// protocol that lets many agents mutate shared grid state safely.
package world

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/scape/config"
)

// ErrInvalidDimensions is returned when a landscape is constructed with a
// non-positive width or height.
var ErrInvalidDimensions = errors.New("invalid landscape dimensions")

// Landscape owns the cell grid, the global tick counter, and the single
// mutex serializing every cross-agent mutation of the grid. The lock is
// deliberately coarse: correctness over intra-tick throughput.
type Landscape struct {
	Width, Height int

	// mu guards occupancy, resource levels, and offspring placement.
	// Reads of an agent's own scalar attributes need no synchronization.
	mu sync.Mutex

	// time advances once per completed generation, strictly between
	// fan-outs, so agents may read it without the lock during a tick.
	time int

	cells        [][]Cell // indexed [x][y]
	regrowthRate float64

	nextID   atomic.Uint64
	agentCfg config.AgentConfig

	initialAgents int
}

// New builds a Width x Height grid, asking the capacity field once per
// cell for its resource ceiling. Every cell starts at full capacity.
func New(cfg *config.Config, field func(x, y int) int) (*Landscape, error) {
	w, h := cfg.Landscape.Width, cfg.Landscape.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}

	l := &Landscape{
		Width:        w,
		Height:       h,
		regrowthRate: cfg.Landscape.RegrowthRate,
		agentCfg:     cfg.Agent,
	}

	l.cells = make([][]Cell, w)
	for x := 0; x < w; x++ {
		l.cells[x] = make([]Cell, h)
		for y := 0; y < h; y++ {
			ceiling := field(x, y)
			if ceiling < 0 {
				ceiling = 0
			}
			l.cells[x][y] = Cell{
				X:        x,
				Y:        y,
				Capacity: ceiling,
				Resource: float64(ceiling),
			}
		}
	}

	return l, nil
}

// Cell returns the cell at (x, y). The caller is responsible for holding
// the landscape lock if it mutates shared state through the pointer.
func (l *Landscape) Cell(x, y int) *Cell {
	return &l.cells[x][y]
}

// Time returns the global tick counter.
func (l *Landscape) Time() int {
	return l.time
}

// AdvanceTime increments the global tick counter. Called by the scheduler
// strictly between generations.
func (l *Landscape) AdvanceTime() {
	l.time++
}

// Regrowth replenishes every cell by the regrowth rate, truncated to a
// whole resource level and capped at capacity. Called by the scheduler
// strictly between generations.
func (l *Landscape) Regrowth() {
	for x := range l.cells {
		for y := range l.cells[x] {
			c := &l.cells[x][y]
			c.Resource = math.Trunc(math.Min(float64(c.Capacity), c.Resource+l.regrowthRate))
		}
	}
}

// PlaceAgents creates up to n agents on uniformly chosen empty cells. A
// request exceeding the number of empty cells is clamped, not an error.
// Returns the initial active set.
func (l *Landscape) PlaceAgents(n int, rng *rand.Rand) []*Agent {
	l.mu.Lock()
	defer l.mu.Unlock()

	empty := make([]*Cell, 0, l.Width*l.Height)
	for x := range l.cells {
		for y := range l.cells[x] {
			if l.cells[x][y].Empty() {
				empty = append(empty, &l.cells[x][y])
			}
		}
	}
	if n > len(empty) {
		n = len(empty)
	}

	rng.Shuffle(len(empty), func(i, j int) {
		empty[i], empty[j] = empty[j], empty[i]
	})

	agents := make([]*Agent, 0, n)
	for _, cell := range empty[:n] {
		a := l.spawnAgent(cell.X, cell.Y, rand.New(rand.NewSource(rng.Int63())))
		cell.Occupant = a
		agents = append(agents, a)
	}

	l.initialAgents = len(agents)
	return agents
}

// InitialAgents returns the count of originally placed agents, for
// survivor-ratio reporting.
func (l *Landscape) InitialAgents() int {
	return l.initialAgents
}

// allocID hands out the next monotonically increasing agent identifier.
func (l *Landscape) allocID() uint64 {
	return l.nextID.Add(1)
}
