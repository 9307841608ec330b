package cbs

import (
	"github.com/elektrokombinacija/cbs-sipp/internal/lsipp"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// AgentSolution is a single agent's path, stripped of the SIPP safe-interval
// bookkeeping a caller outside this module has no use for.
type AgentSolution struct {
	States  []tsys.State
	Costs   []tsys.Cost
	Actions []tsys.Action
}

func assemble(sol lsipp.Solution) AgentSolution {
	states := make([]tsys.State, len(sol.States))
	for i, s := range sol.States {
		states[i] = s.Internal
	}
	return AgentSolution{
		States:  states,
		Costs:   append([]tsys.Cost(nil), sol.Costs...),
		Actions: append([]tsys.Action(nil), sol.Actions...),
	}
}

// AgentSolutions returns the plain per-agent path for every one of nAgents
// agents at this node.
func (n *Node) AgentSolutions(nAgents int) []AgentSolution {
	raw := n.GetSolutions(nAgents)
	out := make([]AgentSolution, nAgents)
	for i, r := range raw {
		out[i] = assemble(r)
	}
	return out
}
