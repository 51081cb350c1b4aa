package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/scape/config"
)

// Sex is the two-variant tag used for mate selection.
type Sex uint8

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// Agent is a resource-seeking, reproducing, aging entity on the landscape.
// Its per-tick behavior is the state machine in Update: age check, then
// move/forage, then reproduce. Alive is terminal once cleared.
type Agent struct {
	ID   uint64
	X, Y int

	FieldOfView int     // von Neumann radius
	Metabolism  float64 // resource consumed per tick
	Wealth      float64 // >= 0 while alive
	Endowment   float64 // initial wealth; minimum wealth to stay fertile
	Lifespan    float64
	BirthTime   int
	Sex         Sex

	FertilityBegin float64
	FertilityEnd   float64

	Alive        bool
	CanReproduce bool // reset each tick; throttles to one reproduction per tick

	land *Landscape // non-owning back-reference
	rng  *rand.Rand // private source; touched only by this agent's update
}

func (a *Agent) String() string {
	return fmt.Sprintf("Agent[id:%d]", a.ID)
}

// Age is the landscape's global time minus the agent's birth tick.
func (a *Agent) Age() float64 {
	return float64(a.land.time - a.BirthTime)
}

// Fertile reports whether the agent is within its fertility window and
// wealthy enough (at least its endowment) to reproduce.
func (a *Agent) Fertile() bool {
	age := a.Age()
	return a.FertilityBegin <= age && age <= a.FertilityEnd && a.Wealth >= a.Endowment
}

// Update performs one tick of the agent's lifecycle. It may run
// concurrently with other agents' updates; all grid mutation happens
// under the landscape lock. Returns whether the agent survived and any
// offspring it produced.
func (a *Agent) Update() (bool, *Agent) {
	// Age check reads only the agent's own state.
	if a.Age() > a.Lifespan {
		a.land.mu.Lock()
		a.land.Cell(a.X, a.Y).Occupant = nil
		a.land.mu.Unlock()
		a.Alive = false
		return false, nil
	}

	if !a.move() {
		return false, nil
	}
	return true, a.reproduce()
}

// move forages the current cell and relocates to the richest empty cell
// within the field of view. Dying of starvation here is terminal; having
// no empty neighbor is not, the agent just stays put.
func (a *Agent) move() bool {
	a.land.mu.Lock()
	defer a.land.mu.Unlock()

	current := a.land.Cell(a.X, a.Y)

	a.Wealth = math.Max(0, a.Wealth+current.Resource-a.Metabolism)
	current.Resource = 0

	if a.Wealth <= 0 {
		a.Alive = false
		current.Occupant = nil
		return false
	}

	candidates := a.emptyNeighborsLocked()

	// Shuffling before the strict max scan breaks resource ties uniformly.
	a.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	var best *Cell
	for _, cell := range candidates {
		if best == nil || cell.Resource > best.Resource {
			best = cell
		}
	}
	if best != nil {
		current.Occupant = nil
		a.X, a.Y = best.X, best.Y
		best.Occupant = a
	}

	return true
}

// reproduce scans the neighborhood for up to four fertile opposite-sex
// candidates, picks the wealthiest one whose empty-neighbor union with
// this agent is non-empty, and places an offspring on a uniformly chosen
// cell of that union. Failure at any step is a normal nil return.
func (a *Agent) reproduce() *Agent {
	if !a.CanReproduce || !a.Fertile() {
		return nil
	}

	a.land.mu.Lock()
	defer a.land.mu.Unlock()

	// Candidate scan order is the deterministic neighborhood iteration
	// order (offsets by ascending dx, then dy; clamped duplicates
	// dropped at first occurrence).
	var candidates []*Agent
	for _, cell := range a.neighborhoodLocked() {
		mate := cell.Occupant
		if mate == nil || mate == a || mate.Sex == a.Sex || !mate.Fertile() {
			continue
		}
		candidates = append(candidates, mate)
		if len(candidates) >= 4 {
			break
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	ownEmpty := a.emptyNeighborsLocked()

	// Wealthiest candidate wins, but only if the union of both agents'
	// empty neighbors offers somewhere to put the child.
	var partner *Agent
	var birthCells []*Cell
	bestWealth := math.Inf(-1)
	for _, mate := range candidates {
		union := unionCells(ownEmpty, mate.emptyNeighborsLocked())
		if len(union) > 0 && mate.Wealth > bestWealth {
			bestWealth = mate.Wealth
			partner = mate
			birthCells = union
		}
	}
	if partner == nil {
		return nil
	}

	spot := birthCells[a.rng.Intn(len(birthCells))]
	child := a.land.spawnOffspring(spot.X, spot.Y,
		rand.New(rand.NewSource(a.rng.Int63())),
		(a.Endowment+partner.Endowment)/2)
	spot.Occupant = child
	a.CanReproduce = false

	return child
}

// neighborhoodLocked returns the cells within the von Neumann
// neighborhood of radius FieldOfView, clamped to the grid bounds.
// Clamping can collapse distinct offsets onto the same border cell, so
// duplicates are dropped. Caller must hold the landscape lock.
func (a *Agent) neighborhoodLocked() []*Cell {
	l := a.land
	seen := make(map[*Cell]struct{}, 2*a.FieldOfView*(a.FieldOfView+1)+1)
	cells := make([]*Cell, 0, 2*a.FieldOfView*(a.FieldOfView+1)+1)

	for dx := -a.FieldOfView; dx <= a.FieldOfView; dx++ {
		span := a.FieldOfView - abs(dx)
		for dy := -span; dy <= span; dy++ {
			x := clamp(a.X+dx, 0, l.Width-1)
			y := clamp(a.Y+dy, 0, l.Height-1)
			cell := l.Cell(x, y)
			if _, ok := seen[cell]; ok {
				continue
			}
			seen[cell] = struct{}{}
			cells = append(cells, cell)
		}
	}
	return cells
}

// emptyNeighborsLocked filters the neighborhood down to unoccupied cells.
func (a *Agent) emptyNeighborsLocked() []*Cell {
	neighborhood := a.neighborhoodLocked()
	empty := neighborhood[:0]
	for _, cell := range neighborhood {
		if cell.Empty() {
			empty = append(empty, cell)
		}
	}
	return empty
}

// unionCells merges two cell sets, preserving first-seen order.
func unionCells(a, b []*Cell) []*Cell {
	seen := make(map[*Cell]struct{}, len(a)+len(b))
	out := make([]*Cell, 0, len(a)+len(b))
	for _, lst := range [2][]*Cell{a, b} {
		for _, c := range lst {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// spawnAgent creates an agent at (x, y) with attributes drawn from the
// configured ranges. The caller owns occupancy bookkeeping.
func (l *Landscape) spawnAgent(x, y int, rng *rand.Rand) *Agent {
	cfg := &l.agentCfg

	sex := Male
	if rng.Intn(2) == 1 {
		sex = Female
	}
	fertEnd := cfg.FertilityEndMale
	if sex == Female {
		fertEnd = cfg.FertilityEndFemale
	}

	endowment := sampleRange(rng, cfg.Endowment)

	return &Agent{
		ID:             l.allocID(),
		X:              x,
		Y:              y,
		FieldOfView:    sampleIntRange(rng, cfg.FieldOfView),
		Metabolism:     sampleRange(rng, cfg.Metabolism),
		Endowment:      endowment,
		Wealth:         endowment,
		Lifespan:       sampleRange(rng, cfg.Lifespan),
		BirthTime:      l.time,
		Sex:            sex,
		FertilityBegin: sampleRange(rng, cfg.FertilityBegin),
		FertilityEnd:   sampleRange(rng, fertEnd),
		Alive:          true,
		CanReproduce:   true,
		land:           l,
		rng:            rng,
	}
}

// spawnOffspring is spawnAgent with the endowment inherited as the
// parents' average instead of sampled. Initial wealth equals endowment.
func (l *Landscape) spawnOffspring(x, y int, rng *rand.Rand, endowment float64) *Agent {
	child := l.spawnAgent(x, y, rng)
	child.Endowment = endowment
	child.Wealth = endowment
	return child
}

func sampleRange(rng *rand.Rand, r config.Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func sampleIntRange(rng *rand.Rand, r config.IntRange) int {
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
