package gridworld

import (
	"github.com/elektrokombinacija/cbs-sipp/internal/heuristic"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
	"github.com/google/uuid"
)

// Instance bundles a graph with a freshly generated run ID, so a batch of
// solver logs/metrics for the same generated world can be correlated
// together.
type Instance struct {
	ID   uuid.UUID
	Grid *Graph
}

// NewInstance tags a new width x height grid with a run ID.
func NewInstance(width, height int) Instance {
	return Instance{ID: uuid.New(), Grid: NewGrid(width, height)}
}

// Position returns a heuristic.PositionFunc for a width-wide grid,
// decoding a VertexID back to (x, y). Since edges are unit cost, a
// Euclidean straight-line estimate with minSpeed=1 is admissible: it never
// exceeds the true Manhattan distance any 4-connected path must cover.
func Position(width int) heuristic.PositionFunc {
	return func(s tsys.State) (float64, float64, bool) {
		gs, ok := s.(State)
		if !ok {
			return 0, 0, false
		}
		x := float64(int(gs.V) % width)
		y := float64(int(gs.V) / width)
		return x, y, true
	}
}
