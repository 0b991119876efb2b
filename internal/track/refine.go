package track

import (
	"log/slog"
	"math"

	"github.com/cwbudde/patchmatch/internal/frame"
	"github.com/cwbudde/patchmatch/internal/opt"
)

// RefineConfig controls the sub-pixel search.
type RefineConfig struct {
	Radius      float64 // half-width of the first search window in pixels
	Rounds      int     // maximum number of rounds; the window halves every round
	Metric      Metric
	Convergence ConvergenceConfig
}

// DefaultRefineConfig returns a two-pixel search with three rounds.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		Radius:      2,
		Rounds:      3,
		Metric:      MetricSSD,
		Convergence: DefaultConvergenceConfig(),
	}
}

// Result is the outcome of one refinement.
type Result struct {
	Position  frame.Position
	Cost      uint32
	Rounds    int
	Converged bool
}

// Refiner searches a target frame for the best match of a template. It holds
// no per-call state and may be shared between goroutines.
type Refiner struct {
	optimizer opt.Optimizer
	config    RefineConfig
}

// NewRefiner creates a refiner driven by the given optimizer.
func NewRefiner(optimizer opt.Optimizer, config RefineConfig) *Refiner {
	if config.Rounds < 1 {
		config.Rounds = 1
	}
	return &Refiner{optimizer: optimizer, config: config}
}

// Refine starts at guess and returns the best position found. The search
// is limited to positions inside the target frame.
func (r *Refiner) Refine(tmpl *Template, target frame.View, guess frame.Position) Result {
	tracker := NewConvergenceTracker(r.config.Convergence)

	best := Result{Position: guess, Cost: tmpl.Cost(target, guess, r.config.Metric)}
	maxX := math.Nextafter(float64(target.Width), 0)
	maxY := math.Nextafter(float64(target.Height), 0)

	radius := r.config.Radius
	for round := 1; round <= r.config.Rounds; round++ {
		centre := best.Position
		lower := []float64{math.Max(centre.X-radius, 0), math.Max(centre.Y-radius, 0)}
		upper := []float64{math.Min(centre.X+radius, maxX), math.Min(centre.Y+radius, maxY)}

		eval := func(p []float64) float64 {
			return float64(tmpl.Cost(target, frame.Pos(p[0], p[1]), r.config.Metric))
		}
		params, cost := r.optimizer.Run(eval, lower, upper, 2)

		if c := uint32(cost); cost < float64(best.Cost) {
			best.Position = frame.Pos(params[0], params[1])
			best.Cost = c
		}
		best.Rounds = round

		if tracker.Update(float64(best.Cost)) {
			best.Converged = true
			break
		}
		radius /= 2
	}

	slog.Debug("Refined patch position",
		"origin", tmpl.Origin.String(),
		"guess", guess.String(),
		"position", best.Position.String(),
		"cost", best.Cost,
		"rounds", best.Rounds,
	)
	return best
}
