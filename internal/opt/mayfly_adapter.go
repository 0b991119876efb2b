package opt

import (
	"log/slog"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter. popSize must be at least 20.
func NewMayfly(maxIters, popSize int, seed int64) Optimizer {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the Mayfly optimization using the external library.
//
// The library only accepts one scalar bound for every dimension, so the
// search runs in the unit cube and positions are mapped to [lower, upper]
// per dimension before evaluation.
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	toBox := func(unit []float64) []float64 {
		scaled := make([]float64, dim)
		for i := 0; i < dim; i++ {
			u := min(max(unit[i], 0), 1)
			scaled[i] = lower[i] + u*(upper[i]-lower[i])
		}
		return scaled
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(unit []float64) float64 {
		return eval(toBox(unit))
	}
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = 0
	config.UpperBound = 1
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		slog.Warn("Mayfly optimization failed, returning box centre", "error", err)
		centre := make([]float64, dim)
		for i := range centre {
			centre[i] = (lower[i] + upper[i]) / 2
		}
		return centre, eval(centre)
	}

	return toBox(result.GlobalBest.Position), result.GlobalBest.Cost
}
