// Package sipp implements Safe-Interval Path Planning: a space-time search
// whose states pair an underlying transition-system state with the safe
// (unconstrained) interval the agent would be occupying it during, so that
// a single search node stands in for every departure time within that
// window instead of one node per discrete timestep.
package sipp

import (
	"container/heap"

	"github.com/elektrokombinacija/cbs-sipp/internal/constraint"
	"github.com/elektrokombinacija/cbs-sipp/internal/heuristic"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// State pairs an underlying state with the safe interval during which the
// agent can be occupying it without violating any constraint.
type State struct {
	Internal tsys.State
	Safe     tsys.Interval
}

// TimedState is a (time, SIPP state) pair used to seed a generalized
// search with several simultaneous starting points.
type TimedState struct {
	Time  tsys.Cost
	State State
}

// Solution is a single agent's plan: parallel sequences of SIPP states,
// arrival costs, and the actions connecting consecutive states. Cost is
// the arrival cost at the final state (== Costs[len(Costs)-1]).
type Solution struct {
	States  []State
	Costs   []tsys.Cost
	Actions []tsys.Action
	Cost    tsys.Cost
}

// Config is a single-initial-state, single-departure-time SIPP problem:
// the ordinary case, as opposed to the generalized search LSIPP drives
// directly when it needs to start from several candidate landing states at
// once.
type Config struct {
	Task                 tsys.Task
	InitialTime           tsys.Cost
	GoalWindow            tsys.Interval
	Constraints           *constraint.Set
	Heuristic             heuristic.Heuristic
	RequireSustainedGoal  bool
}

// GeneralizedConfig is the search LSIPP actually drives: one or more
// (time, SIPP state) starting points, a goal state/admission window, and
// whether reaching the goal additionally requires the landing safe
// interval to extend to the horizon (true for the overall task's goal and
// for the final LSIPP segment; false for intermediate landmark segments,
// where the path only needs to pass through, not dwell forever).
type GeneralizedConfig struct {
	InitialStates        []TimedState
	Goal                 tsys.State
	GoalWindow            tsys.Interval
	Constraints           *constraint.Set
	Heuristic             heuristic.Heuristic
	RequireSustainedGoal  bool
	SinglePath            bool
}

// Stats tracks cheap in-process search counters for benchmarking; unlike
// the CBS level, these aren't promoted to Prometheus.
type Stats struct {
	Searches int
}

// Solver runs (generalized) SIPP searches against a fixed transition
// system. It is not safe for concurrent use: each call to Solve /
// SolveGeneralized resets and reuses the solver's internal search state.
type Solver struct {
	ts tsys.TransitionSystem

	queue    searchQueue
	distance map[State]tsys.Cost
	closed   map[State]bool
	parent   map[State]parentEdge

	stats Stats
}

type parentEdge struct {
	Action tsys.Action
	From   State
}

// NewSolver returns a SIPP solver over ts.
func NewSolver(ts tsys.TransitionSystem) *Solver {
	return &Solver{ts: ts}
}

// Stats reports the number of searches run so far by this solver.
func (s *Solver) Stats() Stats { return s.stats }

// SafeIntervals returns the safe intervals for state: the complement,
// within [MinCost, MaxCost], of the union of state constraints forbidding
// it. A state with no constraints at all is safe for the entire horizon.
func SafeIntervals(cs *constraint.Set, state tsys.State) []tsys.Interval {
	cons := cs.StateConstraints(state)
	if len(cons) == 0 {
		return []tsys.Interval{tsys.DefaultInterval()}
	}
	return complement(mergeForbidden(cons))
}

func mergeForbidden(cons []constraint.Constraint) []tsys.Interval {
	var merged []tsys.Interval
	for _, c := range cons {
		iv := c.Interval
		if n := len(merged); n > 0 && iv.Start <= merged[n-1].End {
			if iv.End > merged[n-1].End {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// complement computes the gaps between sorted, non-overlapping forbidden
// windows. Cost is a continuous real-valued domain here, not a discrete
// tick count, so there is no well-defined "instant before" a forbidden
// window's start to exclude it precisely; the boundary instant is
// conservatively treated as belonging to the safe side on both ends. This
// never admits a state strictly inside a forbidden window, only at the
// single measure-zero boundary point.
func complement(merged []tsys.Interval) []tsys.Interval {
	var safe []tsys.Interval
	cursor := tsys.MinCost
	for _, iv := range merged {
		if cursor < iv.Start {
			safe = append(safe, tsys.Interval{Start: cursor, End: iv.Start})
		}
		if iv.End > cursor {
			cursor = iv.End
		}
	}
	if cursor < tsys.MaxCost {
		safe = append(safe, tsys.Interval{Start: cursor, End: tsys.MaxCost})
	}
	return safe
}

// ToGeneralized converts a single-initial-state Config into the
// GeneralizedConfig the search actually runs: it looks up the safe
// interval containing cfg.InitialTime at the task's initial state, and
// fails if the agent cannot even be there at that time.
func (s *Solver) ToGeneralized(cfg Config) (*GeneralizedConfig, bool) {
	var found *tsys.Interval
	for _, iv := range SafeIntervals(cfg.Constraints, cfg.Task.Initial) {
		if iv.Contains(cfg.InitialTime) {
			ivCopy := iv
			found = &ivCopy
			break
		}
	}
	if found == nil {
		return nil, false
	}
	initState := State{Internal: cfg.Task.Initial, Safe: *found}
	return &GeneralizedConfig{
		InitialStates:        []TimedState{{Time: cfg.InitialTime, State: initState}},
		Goal:                 cfg.Task.Goal,
		GoalWindow:            cfg.GoalWindow,
		Constraints:           cfg.Constraints,
		Heuristic:             cfg.Heuristic,
		RequireSustainedGoal:  cfg.RequireSustainedGoal,
	}, true
}

// Solve runs the ordinary, single-path SIPP search: one initial state, one
// solution (the first goal-equivalent node popped), requiring the landing
// safe interval to be sustained to the horizon.
func (s *Solver) Solve(cfg Config) (Solution, bool) {
	cfg.RequireSustainedGoal = true
	gcfg, ok := s.ToGeneralized(cfg)
	if !ok {
		return Solution{}, false
	}
	sols := s.SolveGeneralized(gcfg, true)
	if len(sols) == 0 {
		return Solution{}, false
	}
	return sols[0], true
}

// SolveGeneralized runs the search described by cfg. When singlePath is
// true the search stops at the first goal-equivalent node popped; when
// false it keeps going until the open list is exhausted, returning every
// Pareto-optimal landing node found (used by LSIPP when stitching through
// landmarks, where several distinct landing safe intervals may all be
// useful starting points for the next segment).
func (s *Solver) SolveGeneralized(cfg *GeneralizedConfig, singlePath bool) []Solution {
	cfg.SinglePath = singlePath
	s.init(cfg)
	s.stats.Searches++

	goals := s.findPaths(cfg)
	sols := make([]Solution, len(goals))
	for i, g := range goals {
		sols[i] = s.reconstruct(g)
	}
	return sols
}

func (s *Solver) init(cfg *GeneralizedConfig) {
	s.queue = nil
	s.distance = map[State]tsys.Cost{}
	s.closed = map[State]bool{}
	s.parent = map[State]parentEdge{}

	for _, is := range cfg.InitialStates {
		if old, ok := s.distance[is.State]; ok && is.Time >= old {
			continue
		}
		s.distance[is.State] = is.Time
		h, ok := cfg.Heuristic.GetHeuristic(is.State.Internal)
		if !ok {
			continue
		}
		heap.Push(&s.queue, &searchItem{node: SearchNode{State: is.State, Cost: is.Time, Heuristic: h}})
	}
}

func (s *Solver) findPaths(cfg *GeneralizedConfig) []SearchNode {
	var goals []SearchNode
	for s.queue.Len() > 0 {
		item := heap.Pop(&s.queue).(*searchItem)
		current := item.node

		if s.closed[current.State] {
			continue
		}
		if d, ok := s.distance[current.State]; ok && current.Cost > d {
			continue // superseded by a better path found since this entry was queued
		}
		s.closed[current.State] = true

		if s.isGoal(cfg, current) {
			goals = append(goals, current)
			if cfg.SinglePath {
				break
			}
			continue
		}

		for _, succ := range s.successors(cfg, current) {
			heap.Push(&s.queue, &searchItem{node: succ})
		}
	}
	return goals
}

func (s *Solver) isGoal(cfg *GeneralizedConfig, n SearchNode) bool {
	if !n.State.Internal.IsEquivalent(cfg.Goal) {
		return false
	}
	if !cfg.GoalWindow.Contains(n.Cost) {
		return false
	}
	if cfg.RequireSustainedGoal && n.State.Safe.End != tsys.MaxCost {
		return false
	}
	return true
}

// successors expands current, producing one candidate SearchNode per
// (action, landing safe interval) pair that actually improves on any
// distance already recorded for that landing SIPP state.
func (s *Solver) successors(cfg *GeneralizedConfig, current SearchNode) []SearchNode {
	var out []SearchNode

	for _, a := range s.ts.ActionsFrom(current.State.Internal) {
		succState := s.ts.Transition(current.State.Internal, a)
		delta := s.ts.TransitionCost(current.State.Internal, a)

		h, ok := cfg.Heuristic.GetHeuristic(succState)
		if !ok {
			continue
		}
		if current.Cost+delta+h > cfg.GoalWindow.End {
			continue // cannot possibly reach the goal within its window from here
		}

		forbidden := cfg.Constraints.ActionConstraints(current.State.Internal, succState)

		for _, safe := range SafeIntervals(cfg.Constraints, succState) {
			arrival := current.Cost + delta
			if arrival > safe.End {
				continue // too late for this safe interval
			}
			if arrival < safe.Start {
				arrival = safe.Start // wait at the source until the interval opens
				if arrival-delta > current.State.Safe.End {
					continue // waiting that long would outlive the source's own safe interval
				}
			}

			if blocked, ok := firstBlocking(forbidden, arrival-delta); ok {
				arrival = blocked.End + delta
				if arrival-delta > current.State.Safe.End || arrival > safe.End {
					continue
				}
			}

			if arrival+h > cfg.GoalWindow.End {
				continue
			}

			landing := State{Internal: succState, Safe: safe}
			if old, ok := s.distance[landing]; ok && arrival >= old {
				continue
			}
			s.distance[landing] = arrival
			s.parent[landing] = parentEdge{Action: a, From: current.State}
			out = append(out, SearchNode{State: landing, Cost: arrival, Heuristic: h})
		}
	}
	return out
}

// firstBlocking returns the earliest (by Interval.Start, matching how
// ActionConstraints is kept sorted) forbidden departure window whose end
// is not before departure. A single linear scan rather than a merged
// interval set, since overlapping action constraints on one edge are rare
// in practice.
func firstBlocking(forbidden []constraint.Constraint, departure tsys.Cost) (tsys.Interval, bool) {
	for _, c := range forbidden {
		if c.Interval.End >= departure {
			if departure >= c.Interval.Start {
				return c.Interval, true
			}
			return tsys.Interval{}, false
		}
	}
	return tsys.Interval{}, false
}

func (s *Solver) reconstruct(goal SearchNode) Solution {
	var states []State
	var costs []tsys.Cost
	var actions []tsys.Action

	cur := goal.State
	states = append(states, cur)
	costs = append(costs, s.distance[cur])
	for {
		pe, ok := s.parent[cur]
		if !ok {
			break
		}
		actions = append(actions, pe.Action)
		cur = pe.From
		states = append(states, cur)
		costs = append(costs, s.distance[cur])
	}

	reverseStates(states)
	reverseCosts(costs)
	reverseActions(actions)

	return Solution{States: states, Costs: costs, Actions: actions, Cost: costs[len(costs)-1]}
}

func reverseStates(s []State) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseCosts(c []tsys.Cost) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}

func reverseActions(a []tsys.Action) {
	for i, j := 0, len(a)-1; i < j; i, j = i+1, j-1 {
		a[i], a[j] = a[j], a[i]
	}
}
