package world

import (
	"math/rand"
	"runtime"
	"sync"
)

// parallelThreshold is the minimum agent count to use the worker pool.
// Below this, single-threaded is faster due to dispatch overhead.
const parallelThreshold = 64

// updateResult captures one agent's update outcome for the merge phase.
type updateResult struct {
	alive bool
	child *Agent
}

// workChunk is a range of the shuffled agent slice for one worker.
type workChunk struct {
	start, end int
}

// TickReport summarizes one completed generation.
type TickReport struct {
	Tick       int
	Population int
	Births     int
	Deaths     int
}

// Scheduler drives generations: shuffle the active set, fan updates out
// across a bounded worker pool, merge survivors and offspring, and apply
// regrowth and time advance. Ticks are strictly sequential; a tick always
// runs to completion for every dispatched agent.
type Scheduler struct {
	land   *Landscape
	agents []*Agent
	rng    *rand.Rand

	results []updateResult
	series  []int // population count after each tick

	// Worker pool
	numWorkers int
	workChan   chan workChunk
	doneChan   chan struct{}
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    bool
}

// NewScheduler creates a scheduler over the given active set. The rng
// drives the per-tick shuffle only; agents carry their own sources.
func NewScheduler(land *Landscape, agents []*Agent, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		land:       land,
		agents:     agents,
		rng:        rng,
		numWorkers: runtime.GOMAXPROCS(0),
	}
}

// Population returns the current live agent count.
func (s *Scheduler) Population() int {
	return len(s.agents)
}

// Agents returns the current active set. Valid to read between ticks.
func (s *Scheduler) Agents() []*Agent {
	return s.agents
}

// Series returns the per-tick population counts recorded so far.
func (s *Scheduler) Series() []int {
	return s.series
}

// Step runs one generation and reports the outcome.
func (s *Scheduler) Step() TickReport {
	n := len(s.agents)

	// Shuffling removes positional bias in tie-breaks and in the
	// offspring-injection order of the next active set.
	s.rng.Shuffle(n, func(i, j int) {
		s.agents[i], s.agents[j] = s.agents[j], s.agents[i]
	})

	if cap(s.results) < n {
		s.results = make([]updateResult, n)
	}
	s.results = s.results[:n]

	if n < parallelThreshold {
		s.updateChunk(0, n)
	} else {
		s.dispatch(n)
	}

	// Merge survivors and offspring into the next active set.
	var births, deaths int
	next := make([]*Agent, 0, n)
	for i := 0; i < n; i++ {
		if s.results[i].alive {
			next = append(next, s.agents[i])
		} else {
			deaths++
		}
		if child := s.results[i].child; child != nil {
			next = append(next, child)
			births++
		}
	}

	// Fresh reproduction eligibility for everyone entering the next tick.
	for _, a := range next {
		a.CanReproduce = true
	}

	s.land.Regrowth()
	s.land.AdvanceTime()

	s.agents = next
	s.series = append(s.series, len(next))

	return TickReport{
		Tick:       s.land.Time(),
		Population: len(next),
		Births:     births,
		Deaths:     deaths,
	}
}

// updateChunk runs updates for a range of the shuffled agent slice.
func (s *Scheduler) updateChunk(start, end int) {
	for i := start; i < end; i++ {
		alive, child := s.agents[i].Update()
		s.results[i] = updateResult{alive: alive, child: child}
	}
}

// dispatch fans chunks out to the persistent worker pool and waits for
// every one to finish before returning.
func (s *Scheduler) dispatch(n int) {
	if !s.running {
		s.startWorkers()
	}

	chunkSize := (n + s.numWorkers - 1) / s.numWorkers
	dispatched := 0
	for w := 0; w < s.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		s.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-s.doneChan
	}
}

// startWorkers launches the persistent worker goroutines.
func (s *Scheduler) startWorkers() {
	if s.running {
		return
	}

	s.workChan = make(chan workChunk, s.numWorkers)
	s.doneChan = make(chan struct{}, s.numWorkers)
	s.stopChan = make(chan struct{})
	s.running = true

	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// worker processes chunks until stopped.
func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			return
		case chunk, ok := <-s.workChan:
			if !ok {
				return
			}
			s.updateChunk(chunk.start, chunk.end)
			s.doneChan <- struct{}{}
		}
	}
}

// Stop signals all workers to exit and waits for them.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
	close(s.workChan)
	close(s.doneChan)
	s.running = false
}
