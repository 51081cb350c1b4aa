package capacity

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// SimplexParams parameterizes the noise-backed capacity field.
type SimplexParams struct {
	Frequency   float64 // noise frequency per cell
	MaxCapacity int     // output is scaled to [0, MaxCapacity]
	Seed        int64
}

// Simplex returns a Field backed by OpenSimplex noise, giving patchy
// landscapes as an alternative to the twin-peak model. Output is the
// normalized noise value scaled to [0, MaxCapacity] and rounded.
func Simplex(p SimplexParams) Field {
	noise := opensimplex.NewNormalized(p.Seed)
	return func(x, y int) int {
		v := noise.Eval2(float64(x)*p.Frequency, float64(y)*p.Frequency)
		return int(math.Round(v * float64(p.MaxCapacity)))
	}
}
