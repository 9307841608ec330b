package cbs

import (
	"sort"

	"github.com/elektrokombinacija/cbs-sipp/internal/lsipp"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// edgeMoves returns one Move per edge traversal in sol: the window during
// which the agent is physically between From and To.
func edgeMoves(agent int, sol lsipp.Solution, ts tsys.TransitionSystem) []Move {
	moves := make([]Move, len(sol.Actions))
	for i := range sol.Actions {
		delta := ts.TransitionCost(sol.States[i].Internal, sol.Actions[i])
		moves[i] = Move{
			Agent:    agent,
			From:     sol.States[i].Internal,
			To:       sol.States[i+1].Internal,
			Interval: tsys.Interval{Start: sol.Costs[i+1] - delta, End: sol.Costs[i+1]},
		}
	}
	return moves
}

// stayMoves returns one Move per state in sol representing the dwell
// window during which the agent occupies that state: from its arrival to
// whenever it next departs, or to the horizon for the final state (whose
// safe interval is guaranteed to extend there).
func stayMoves(agent int, sol lsipp.Solution, ts tsys.TransitionSystem) []Move {
	last := len(sol.States) - 1
	stays := make([]Move, last+1)
	for k := 0; k <= last; k++ {
		end := tsys.MaxCost
		if k < last {
			delta := ts.TransitionCost(sol.States[k].Internal, sol.Actions[k])
			end = sol.Costs[k+1] - delta
		}
		stays[k] = Move{
			Agent:    agent,
			From:     sol.States[k].Internal,
			To:       sol.States[k].Internal,
			Interval: tsys.Interval{Start: sol.Costs[k], End: end},
		}
	}
	return stays
}

func (e *Engine) detectConflicts(cfg *Config, node *Node) []Conflict {
	n := len(cfg.Tasks)
	solutions := node.GetSolutions(n)

	edges := make([][]Move, n)
	stays := make([][]Move, n)
	for i := 0; i < n; i++ {
		edges[i] = edgeMoves(i, solutions[i], e.ts)
		stays[i] = stayMoves(i, solutions[i], e.ts)
	}

	var conflicts []Conflict
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for _, si := range stays[i] {
				for _, sj := range stays[j] {
					if si.To == sj.To && si.Interval.Overlaps(sj.Interval) {
						conflicts = append(conflicts, e.classify(cfg, node, si, sj, false))
					}
				}
			}
			for _, mi := range edges[i] {
				for _, mj := range edges[j] {
					if mi.From == mj.To && mi.To == mj.From && mi.Interval.Overlaps(mj.Interval) {
						conflicts = append(conflicts, e.classify(cfg, node, mi, mj, true))
					}
				}
			}
		}
	}

	sort.SliceStable(conflicts, func(a, b int) bool { return lessConflict(conflicts[a], conflicts[b]) })
	return conflicts
}

// classify determines a conflict's severity. A conflict is Cardinal only
// if replanning around it is provably forced to increase cost for BOTH
// agents, SemiCardinal if forced for exactly one, and NonCardinal
// otherwise — checked by actually probing each agent's LSIPP cost with the
// branch's hypothetical constraint added, rather than guessing. Marking a
// conflict as less severe than it truly is never breaks correctness (the
// search still eventually explores every branch); only marking it MORE
// severe than it truly is would.
func (e *Engine) classify(cfg *Config, node *Node, mi, mj Move, isEdge bool) Conflict {
	conflictType := NonCardinal
	switch {
	case cfg.isFrozen(mi.Agent) || cfg.isFrozen(mj.Agent):
		conflictType = Frozen
	default:
		incA := e.probeIncreases(cfg, node, mi, isEdge)
		incB := e.probeIncreases(cfg, node, mj, isEdge)
		switch {
		case incA && incB:
			conflictType = Cardinal
		case incA || incB:
			conflictType = SemiCardinal
		}
	}
	return Conflict{AgentA: mi.Agent, AgentB: mj.Agent, MoveA: mi, MoveB: mj, IsEdge: isEdge, Type: conflictType}
}

// probeIncreases reports whether agent move.Agent's LSIPP cost would
// strictly increase (or become infeasible) if it were additionally
// constrained away from move, without mutating the node's own
// materialized constraint set.
func (e *Engine) probeIncreases(cfg *Config, node *Node, move Move, isEdge bool) bool {
	agent := move.Agent
	set, landmarks := node.GetConstraints(agent)
	probeSet := set.Clone()
	probeSet.Add(buildConstraint(agent, move, isEdge, cfg.Precision))

	lcfg := lsipp.NewConfigWithPivots(cfg.Tasks[agent], probeSet, landmarks, cfg.Pivots, cfg.HeuristicToPivots, cfg.Precision)
	sol, ok := e.solvers[agent].Solve(&lcfg)
	e.metrics.RecordLSIPPInvocation()
	if !ok {
		return true
	}

	current := node.GetSolutions(len(cfg.Tasks))[agent]
	return sol.Cost > current.Cost
}
