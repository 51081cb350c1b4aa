package telemetry

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotPopulation renders the population time series to an image file.
// The format is inferred from the path extension (.png, .svg, .pdf).
func PlotPopulation(series []PopulationPoint, path string) error {
	p := plot.New()
	p.Title.Text = "Population Totals Over Time"
	p.X.Label.Text = "Time Step"
	p.Y.Label.Text = "Population"

	pts := make(plotter.XYs, len(series))
	for i, s := range series {
		pts[i].X = float64(s.Tick)
		pts[i].Y = float64(s.Population)
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("building population series: %w", err)
	}
	p.Add(line, points)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving population plot: %w", err)
	}
	return nil
}
