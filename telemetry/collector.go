// Package telemetry accumulates per-tick population data, aggregates it
// into windowed statistics, and exports CSV files and a population plot
// for offline analysis.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/scape/world"
)

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowEndTick int `csv:"window_end"`
	Population    int `csv:"population"`
	Births        int `csv:"births"`
	Deaths        int `csv:"deaths"`

	// Wealth distribution sampled at window end
	WealthMean float64 `csv:"wealth_mean"`
	WealthStd  float64 `csv:"wealth_std"`
	WealthP10  float64 `csv:"wealth_p10"`
	WealthP50  float64 `csv:"wealth_p50"`
	WealthP90  float64 `csv:"wealth_p90"`

	// Grid utilization
	MeanResource float64 `csv:"mean_resource"`
}

// PopulationPoint is one entry of the per-tick population series.
type PopulationPoint struct {
	Tick       int `csv:"tick"`
	Population int `csv:"population"`
}

// Collector accumulates tick reports within windows and produces
// WindowStats when a window closes.
type Collector struct {
	windowTicks int

	windowStart int
	births      int
	deaths      int

	series []PopulationPoint
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// Record accumulates one completed tick.
func (c *Collector) Record(report world.TickReport) {
	c.births += report.Births
	c.deaths += report.Deaths
	c.series = append(c.series, PopulationPoint{
		Tick:       report.Tick,
		Population: report.Population,
	})
}

// Series returns the per-tick population series recorded so far.
func (c *Collector) Series() []PopulationPoint {
	return c.series
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStart >= c.windowTicks
}

// Flush produces a WindowStats from the accumulated events plus the
// wealth distribution and grid state sampled at window end, then resets
// the counters for the next window.
func (c *Collector) Flush(tick, population int, wealth []float64, meanResource float64) WindowStats {
	stats := WindowStats{
		WindowEndTick: tick,
		Population:    population,
		Births:        c.births,
		Deaths:        c.deaths,
		MeanResource:  meanResource,
	}

	if len(wealth) > 0 {
		stats.WealthMean = stat.Mean(wealth, nil)
		stats.WealthStd = stat.StdDev(wealth, nil)

		sorted := make([]float64, len(wealth))
		copy(sorted, wealth)
		sort.Float64s(sorted)
		stats.WealthP10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
		stats.WealthP50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
		stats.WealthP90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	}

	c.windowStart = tick
	c.births = 0
	c.deaths = 0

	return stats
}

// WealthValues extracts the wealth of every agent in the active set.
func WealthValues(agents []*world.Agent) []float64 {
	values := make([]float64, 0, len(agents))
	for _, a := range agents {
		values = append(values, a.Wealth)
	}
	return values
}
