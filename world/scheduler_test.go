package world

import (
	"math/rand"
	"testing"
)

// checkBijection verifies occupied cells and live agents map one-to-one.
func checkBijection(t *testing.T, l *Landscape, agents []*Agent) {
	t.Helper()

	occupied := 0
	for x := 0; x < l.Width; x++ {
		for y := 0; y < l.Height; y++ {
			if l.Cell(x, y).Occupant != nil {
				occupied++
			}
		}
	}
	if occupied != len(agents) {
		t.Errorf("occupied cells = %d, live agents = %d", occupied, len(agents))
	}
	for _, a := range agents {
		if !a.Alive {
			t.Errorf("agent %d in active set but not alive", a.ID)
		}
		if l.Cell(a.X, a.Y).Occupant != a {
			t.Errorf("agent %d at (%d,%d) not referenced by its cell", a.ID, a.X, a.Y)
		}
	}
}

// checkResourceBounds verifies 0 <= resource <= capacity everywhere.
func checkResourceBounds(t *testing.T, l *Landscape) {
	t.Helper()
	for x := 0; x < l.Width; x++ {
		for y := 0; y < l.Height; y++ {
			c := l.Cell(x, y)
			if c.Resource < 0 || c.Resource > float64(c.Capacity) {
				t.Errorf("cell (%d,%d) resource %g outside [0, %d]", x, y, c.Resource, c.Capacity)
			}
		}
	}
}

func TestStepAdvancesTimeAndRegrows(t *testing.T) {
	cfg := testConfig(t)
	cfg.Landscape.Width = 5
	cfg.Landscape.Height = 5

	l, err := New(cfg, flatField(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	agents := l.PlaceAgents(3, rng)

	s := NewScheduler(l, agents, rng)
	defer s.Stop()

	report := s.Step()
	if report.Tick != 1 {
		t.Errorf("tick after one step = %d, want 1", report.Tick)
	}
	if l.Time() != 1 {
		t.Errorf("landscape time = %d, want 1", l.Time())
	}
	checkResourceBounds(t, l)
	checkBijection(t, l, s.Agents())
}

func TestStepAllAgentsDie(t *testing.T) {
	cfg := testConfig(t)
	cfg.Landscape.Width = 4
	cfg.Landscape.Height = 4

	// Barren landscape: nothing to forage, everyone starves at once.
	l, err := New(cfg, flatField(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(2))
	agents := l.PlaceAgents(6, rng)
	for _, a := range agents {
		a.Wealth = 1
		a.Metabolism = 5
	}

	s := NewScheduler(l, agents, rng)
	defer s.Stop()

	report := s.Step()
	if report.Population != 0 {
		t.Errorf("population = %d, want 0", report.Population)
	}
	if report.Deaths != 6 {
		t.Errorf("deaths = %d, want 6", report.Deaths)
	}
	if got := s.Series(); len(got) != 1 || got[0] != 0 {
		t.Errorf("series = %v, want [0]", got)
	}
	checkBijection(t, l, s.Agents())
}

func TestStepMergesOffspringAndResetsThrottle(t *testing.T) {
	cfg := testConfig(t)
	// Grid smaller than the field of view: the parents can never move
	// out of each other's neighborhood.
	cfg.Landscape.Width = 4
	cfg.Landscape.Height = 4

	l, err := New(cfg, flatField(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(3))

	makeFertile := func(x, y int, sex Sex, seed int64) *Agent {
		a := l.spawnAgent(x, y, rand.New(rand.NewSource(seed)))
		l.Cell(x, y).Occupant = a
		a.Sex = sex
		a.Endowment = 10
		a.Wealth = 500
		a.Metabolism = 1
		a.BirthTime = -20
		a.FertilityBegin = 12
		a.FertilityEnd = 60
		a.Lifespan = 100
		a.FieldOfView = 6
		return a
	}

	mother := makeFertile(2, 2, Female, 10)
	father := makeFertile(2, 3, Male, 11)

	s := NewScheduler(l, []*Agent{mother, father}, rng)
	defer s.Stop()

	report := s.Step()
	if report.Births < 1 {
		t.Fatalf("births = %d, want at least one", report.Births)
	}
	if report.Population != 2+report.Births {
		t.Errorf("population = %d, want %d", report.Population, 2+report.Births)
	}
	for _, a := range s.Agents() {
		if !a.CanReproduce {
			t.Errorf("agent %d should have reproduction eligibility reset", a.ID)
		}
	}
	checkBijection(t, l, s.Agents())
}

func TestRunUntilExtinctionOrBudget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Landscape.Width = 10
	cfg.Landscape.Height = 10
	cfg.Landscape.RegrowthRate = 0 // no regrowth: the population must die out

	l, err := New(cfg, flatField(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(4))
	agents := l.PlaceAgents(20, rng)
	for _, a := range agents {
		a.Wealth = 5
		a.Endowment = 5
		a.Metabolism = 3
	}

	s := NewScheduler(l, agents, rng)
	defer s.Stop()

	const budget = 50
	var last TickReport
	for i := 0; i < budget; i++ {
		last = s.Step()
		checkResourceBounds(t, l)
		checkBijection(t, l, s.Agents())
		if last.Population == 0 {
			break
		}
	}

	if last.Population != 0 {
		t.Fatalf("population = %d after %d ticks on a dying landscape", last.Population, budget)
	}
	series := s.Series()
	if series[len(series)-1] != 0 {
		t.Errorf("series final element = %d, want 0", series[len(series)-1])
	}
}

func TestStepParallelPathKeepsInvariants(t *testing.T) {
	cfg := testConfig(t)
	cfg.Landscape.Width = 20
	cfg.Landscape.Height = 20

	l, err := New(cfg, flatField(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(5))

	// Enough agents to cross the worker-pool threshold.
	agents := l.PlaceAgents(200, rng)
	if len(agents) <= parallelThreshold {
		t.Fatalf("placed %d agents, need more than %d", len(agents), parallelThreshold)
	}

	s := NewScheduler(l, agents, rng)
	defer s.Stop()

	for i := 0; i < 10; i++ {
		report := s.Step()
		checkResourceBounds(t, l)
		checkBijection(t, l, s.Agents())
		if report.Population != len(s.Agents()) {
			t.Fatalf("report population %d != active set %d", report.Population, len(s.Agents()))
		}
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	cfg.Landscape.Width = 4
	cfg.Landscape.Height = 4

	l, err := New(cfg, flatField(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(6))
	s := NewScheduler(l, l.PlaceAgents(2, rng), rng)

	s.Step()
	s.Stop()
	s.Stop()
}
