package cbs

import (
	"github.com/elektrokombinacija/cbs-sipp/internal/constraint"
	"github.com/elektrokombinacija/cbs-sipp/internal/lsipp"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// Node is a single constraint-tree node: a delta of constraints or
// landmarks added for one agent relative to its parent, plus that agent's
// recomputed solution. Everything else (every other agent's solution, the
// accumulated constraint set) is derived on demand by walking the parent
// chain rather than copied at every node.
//
// parent is a plain pointer rather than an arena index: Go's garbage
// collector already reclaims unreachable ancestors once the search moves
// past them, which is the concern an arena/index scheme solves for in
// languages without a collector. The pointer is strictly a lookup
// reference — a node never owns or iterates its children.
type Node struct {
	parent *Node

	agent           int // -1 at the root, which has no delta
	delta           []constraint.Constraint
	isLandmarkDelta bool

	solutions map[int]lsipp.Solution // only the agent(s) that changed at this node
	conflicts []Conflict
	totalCost tsys.Cost
}

// TotalCost is the sum of every agent's solution cost at this node.
func (n *Node) TotalCost() tsys.Cost { return n.totalCost }

// Conflicts returns this node's conflicts, most severe first.
func (n *Node) Conflicts() []Conflict { return n.conflicts }

func (n *Node) ancestors() []*Node {
	var chain []*Node
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

// GetSolutions returns the current solution for each of nAgents agents at
// this node, materialized by walking up to the nearest ancestor (including
// the root) that recorded one.
func (n *Node) GetSolutions(nAgents int) []lsipp.Solution {
	out := make([]lsipp.Solution, nAgents)
	for i := 0; i < nAgents; i++ {
		for cur := n; ; cur = cur.parent {
			if sol, ok := cur.solutions[i]; ok {
				out[i] = sol
				break
			}
		}
	}
	return out
}

// GetConstraints materializes agent's full constraint set and ordered
// landmark sequence by walking the ancestor chain from root to this node.
func (n *Node) GetConstraints(agent int) (*constraint.Set, constraint.LandmarkSet) {
	set := constraint.NewSet()
	var landmarks constraint.LandmarkSet

	chain := n.ancestors()
	for i := len(chain) - 1; i >= 0; i-- {
		a := chain[i]
		if a.agent != agent {
			continue
		}
		if a.isLandmarkDelta {
			landmarks = append(landmarks, a.delta...)
		} else {
			for _, c := range a.delta {
				set.Add(c)
			}
		}
	}
	return set, landmarks
}
