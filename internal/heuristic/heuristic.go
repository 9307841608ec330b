// Package heuristic implements the admissible lower bounds the low-level
// search packages use to prune: a straight-line/zero base heuristic,
// Reverse Resumable A* built on top of it, and a differential heuristic
// combining several RRA* pivots.
package heuristic

import "github.com/elektrokombinacija/cbs-sipp/internal/tsys"

// Heuristic lower-bounds the remaining cost from state to some implicit
// goal fixed at construction time. ok is false when the goal is known to
// be unreachable from state (distinct from "not yet known": callers that
// need a resumable, partial answer use ReverseResumableAStar directly).
type Heuristic interface {
	GetHeuristic(state tsys.State) (dist tsys.Duration, ok bool)
}
