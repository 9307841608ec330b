package heuristic

import (
	"math"

	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// PositionFunc optionally embeds a state into the plane, used to derive an
// admissible straight-line lower bound. Returning ok=false (or a nil
// PositionFunc) degrades SimpleHeuristic to the trivial, always-admissible
// zero heuristic.
type PositionFunc func(tsys.State) (x, y float64, ok bool)

// SimpleHeuristic is the base heuristic RRA* and plain SIPP calls use when
// no domain-specific estimate is available: straight-line distance to a
// fixed target, scaled by a speed lower bound, or zero.
type SimpleHeuristic struct {
	target   tsys.State
	pos      PositionFunc
	minSpeed float64
}

// NewSimpleHeuristic targets target. minSpeed must be a lower bound on the
// true per-unit-distance cost of any edge, so that minSpeed*distance never
// overestimates the true remaining cost.
func NewSimpleHeuristic(target tsys.State, pos PositionFunc, minSpeed float64) *SimpleHeuristic {
	return &SimpleHeuristic{target: target, pos: pos, minSpeed: minSpeed}
}

func (h *SimpleHeuristic) GetHeuristic(state tsys.State) (tsys.Duration, bool) {
	if h.pos == nil {
		return 0, true
	}
	x1, y1, ok1 := h.pos(state)
	x2, y2, ok2 := h.pos(h.target)
	if !ok1 || !ok2 {
		return 0, true
	}
	return math.Hypot(x1-x2, y1-y2) * h.minSpeed, true
}
