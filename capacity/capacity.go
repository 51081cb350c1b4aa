// Package capacity provides pluggable capacity field models. A capacity
// field assigns every landscape cell its maximum resource level; the engine
// calls it exactly once per cell at construction and treats it as opaque.
package capacity

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/scape/config"
)

// Field maps a cell coordinate to its resource ceiling.
type Field func(x, y int) int

// TwoPeakParams parameterizes the default two-peak Gaussian field.
// Peak centers and spreads are expressed as fractions of the grid bounds.
type TwoPeakParams struct {
	Width, Height int
	Psi           float64    // shared amplitude of both bumps
	Peak1, Peak2  [2]float64 // centers as fractions of (Width, Height)
	ThetaX        float64    // spread as fraction of Width
	ThetaY        float64    // spread as fraction of Height
}

// DefaultTwoPeakParams returns the stock twin-peak landscape for the
// given bounds: amplitude 4, peaks at the quarter and three-quarter
// diagonal, spreads of 0.3.
func DefaultTwoPeakParams(width, height int) TwoPeakParams {
	return TwoPeakParams{
		Width:  width,
		Height: height,
		Psi:    4.0,
		Peak1:  [2]float64{0.25, 0.25},
		Peak2:  [2]float64{0.75, 0.75},
		ThetaX: 0.3,
		ThetaY: 0.3,
	}
}

// RandomizedTwoPeakParams draws peak positions, spreads, and amplitude
// uniformly from the stock parameter ranges.
func RandomizedTwoPeakParams(rng *rand.Rand, width, height int) TwoPeakParams {
	return TwoPeakParams{
		Width:  width,
		Height: height,
		Psi:    1.0 + rng.Float64()*4.0,
		Peak1:  [2]float64{0.1 + rng.Float64()*0.8, 0.1 + rng.Float64()*0.8},
		Peak2:  [2]float64{0.1 + rng.Float64()*0.8, 0.1 + rng.Float64()*0.8},
		ThetaX: 0.1 + rng.Float64()*0.4,
		ThetaY: 0.1 + rng.Float64()*0.4,
	}
}

// TwoPeakGaussian returns a Field summing two Gaussian bumps over
// toroidally wrapped coordinates, rounded to the nearest integer.
func TwoPeakGaussian(p TwoPeakParams) Field {
	return func(x, y int) int {
		fx := float64(((x % p.Width) + p.Width) % p.Width)
		fy := float64(((y % p.Height) + p.Height) % p.Height)

		v := gaussian(fx-p.Peak1[0]*float64(p.Width), fy-p.Peak1[1]*float64(p.Height), p) +
			gaussian(fx-p.Peak2[0]*float64(p.Width), fy-p.Peak2[1]*float64(p.Height), p)
		return int(math.Round(v))
	}
}

// gaussian evaluates a single bump at an offset from its center.
func gaussian(dx, dy float64, p TwoPeakParams) float64 {
	tx := p.ThetaX * float64(p.Width)
	ty := p.ThetaY * float64(p.Height)
	return p.Psi * math.Exp(-(dx/tx)*(dx/tx)-(dy/ty)*(dy/ty))
}

// FromConfig builds the configured Field for a grid of the given bounds.
// When randomize is set, the two-peak parameters are drawn from rng
// instead of taken from the config.
func FromConfig(cfg *config.Config, rng *rand.Rand, width, height int, randomize bool) Field {
	switch cfg.Capacity.Model {
	case "simplex":
		return Simplex(SimplexParams{
			Frequency:   cfg.Capacity.Simplex.Frequency,
			MaxCapacity: cfg.Capacity.Simplex.MaxCapacity,
			Seed:        rng.Int63(),
		})
	default:
		if randomize {
			return TwoPeakGaussian(RandomizedTwoPeakParams(rng, width, height))
		}
		tp := cfg.Capacity.TwoPeak
		return TwoPeakGaussian(TwoPeakParams{
			Width:  width,
			Height: height,
			Psi:    tp.Psi,
			Peak1:  tp.Peak1,
			Peak2:  tp.Peak2,
			ThetaX: tp.ThetaX,
			ThetaY: tp.ThetaY,
		})
	}
}
