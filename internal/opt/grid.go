package opt

// GridSearch evaluates the objective on a regular lattice and then refines
// around the best point with a lattice of half the spacing, Levels times.
// It is deterministic and needs no tuning, which suits low-dimensional
// problems such as sub-pixel offsets.
type GridSearch struct {
	Steps  int // samples per dimension and level, at least 2
	Levels int // refinement levels, at least 1
}

// NewGrid creates a grid search optimizer.
func NewGrid(steps, levels int) Optimizer {
	return &GridSearch{Steps: max(steps, 2), Levels: max(levels, 1)}
}

// Run implements Optimizer.
func (g *GridSearch) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	lo := append([]float64(nil), lower[:dim]...)
	hi := append([]float64(nil), upper[:dim]...)

	best := make([]float64, dim)
	bestCost := 0.0
	found := false

	point := make([]float64, dim)
	idx := make([]int, dim)
	for level := 0; level < g.Levels; level++ {
		for i := range idx {
			idx[i] = 0
		}
		for {
			for d := 0; d < dim; d++ {
				point[d] = lo[d] + (hi[d]-lo[d])*float64(idx[d])/float64(g.Steps-1)
			}
			if c := eval(point); !found || c < bestCost {
				bestCost = c
				copy(best, point)
				found = true
			}

			// odometer increment
			d := 0
			for ; d < dim; d++ {
				idx[d]++
				if idx[d] < g.Steps {
					break
				}
				idx[d] = 0
			}
			if d == dim {
				break
			}
		}

		// shrink around the best point, staying inside the original box
		for d := 0; d < dim; d++ {
			half := (hi[d] - lo[d]) / float64(g.Steps-1)
			lo[d] = max(best[d]-half, lower[d])
			hi[d] = min(best[d]+half, upper[d])
		}
	}
	return best, bestCost
}
