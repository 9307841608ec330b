// Package lsipp sequences Safe-Interval Path Planning searches through an
// ordered set of landmarks: required waypoints a path must pass through,
// each within its own admission window. It stitches the per-segment
// solutions (start -> landmark[0] -> ... -> landmark[k-1] -> goal) back
// into one path.
package lsipp

import (
	"github.com/elektrokombinacija/cbs-sipp/internal/constraint"
	"github.com/elektrokombinacija/cbs-sipp/internal/heuristic"
	"github.com/elektrokombinacija/cbs-sipp/internal/sipp"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// Stats tracks cheap in-process search counters, mirroring sipp.Stats at
// the landmark-sequencing level.
type Stats struct {
	Searches  int
	SippStats sipp.Stats
}

// Config is one agent's landmark-constrained planning problem.
type Config struct {
	Task              tsys.Task
	Constraints       *constraint.Set
	Landmarks         constraint.LandmarkSet
	Pivots            []tsys.State
	HeuristicToPivots []heuristic.Heuristic
	Precision         tsys.Duration
}

// NewConfig builds a Config with a single pivot (the task's own goal),
// the common case when no differential heuristic is being shared across
// agents.
func NewConfig(task tsys.Task, constraints *constraint.Set, landmarks constraint.LandmarkSet, h heuristic.Heuristic, precision tsys.Duration) Config {
	return Config{
		Task:              task,
		Constraints:       constraints,
		Landmarks:         landmarks,
		Pivots:            []tsys.State{task.Goal},
		HeuristicToPivots: []heuristic.Heuristic{h},
		Precision:         precision,
	}
}

// NewConfigWithPivots builds a Config against a shared pool of pivot
// heuristics (e.g. one RRA* instance per agent's goal, reused across every
// agent's LSIPP calls, as CBS wires them).
func NewConfigWithPivots(task tsys.Task, constraints *constraint.Set, landmarks constraint.LandmarkSet, pivots []tsys.State, toPivots []heuristic.Heuristic, precision tsys.Duration) Config {
	return Config{
		Task:              task,
		Constraints:       constraints,
		Landmarks:         landmarks,
		Pivots:            pivots,
		HeuristicToPivots: toPivots,
		Precision:         precision,
	}
}

type partKey struct {
	Landing sipp.State
	Landmark int
}

// Solver sequences SIPP searches through a Config's landmarks. Like
// sipp.Solver, it is not safe for concurrent use.
type Solver struct {
	sipp  *sipp.Solver
	parts map[partKey]sipp.Solution
	stats Stats
}

// NewSolver returns an LSIPP solver over ts.
func NewSolver(ts tsys.TransitionSystem) *Solver {
	return &Solver{sipp: sipp.NewSolver(ts)}
}

// Stats reports the number of landmark-sequenced searches run so far.
func (s *Solver) Stats() Stats {
	s.stats.SippStats = s.sipp.Stats()
	return s.stats
}

func (s *Solver) heuristicFor(cfg *Config, goal tsys.State) heuristic.Heuristic {
	return heuristic.NewDifferentialHeuristic(goal, cfg.Pivots, cfg.HeuristicToPivots)
}

// Solve plans a path for cfg.Task that passes through cfg.Landmarks in
// order, each within its own admission window, returning false if any
// segment is infeasible.
func (s *Solver) Solve(cfg *Config) (sipp.Solution, bool) {
	s.parts = map[partKey]sipp.Solution{}
	s.stats.Searches++

	if len(cfg.Landmarks) == 0 {
		scfg := sipp.Config{
			Task:                 cfg.Task,
			InitialTime:          cfg.Task.InitialCost,
			GoalWindow:           tsys.DefaultInterval(),
			Constraints:          cfg.Constraints,
			Heuristic:            s.heuristicFor(cfg, cfg.Task.Goal),
			RequireSustainedGoal: true,
		}
		sol, ok := s.sipp.Solve(scfg)
		if !ok {
			return sipp.Solution{}, false
		}
		return s.finish(cfg, sol)
	}

	first := tsys.Task{Initial: cfg.Task.Initial, Goal: cfg.Landmarks[0].State, InitialCost: cfg.Task.InitialCost}
	scfg := sipp.Config{
		Task:                 first,
		InitialTime:          cfg.Task.InitialCost,
		GoalWindow:           cfg.Landmarks[0].Interval,
		Constraints:          cfg.Constraints,
		Heuristic:            s.heuristicFor(cfg, first.Goal),
		RequireSustainedGoal: false,
	}
	gcfg, ok := s.sipp.ToGeneralized(scfg)
	if !ok {
		return sipp.Solution{}, false
	}
	cur := s.sipp.SolveGeneralized(gcfg, false)
	if len(cur) == 0 {
		return sipp.Solution{}, false
	}
	s.storeParts(cur, 0)

	for i := 1; i < len(cfg.Landmarks); i++ {
		gcfg = &sipp.GeneralizedConfig{
			InitialStates:        toInitialStates(cur),
			Goal:                 cfg.Landmarks[i].State,
			GoalWindow:           cfg.Landmarks[i].Interval,
			Constraints:          cfg.Constraints,
			Heuristic:            s.heuristicFor(cfg, cfg.Landmarks[i].State),
			RequireSustainedGoal: false,
		}
		cur = s.sipp.SolveGeneralized(gcfg, false)
		if len(cur) == 0 {
			return sipp.Solution{}, false
		}
		s.storeParts(cur, i)
	}

	gcfg = &sipp.GeneralizedConfig{
		InitialStates:        toInitialStates(cur),
		Goal:                 cfg.Task.Goal,
		GoalWindow:           tsys.DefaultInterval(),
		Constraints:          cfg.Constraints,
		Heuristic:            s.heuristicFor(cfg, cfg.Task.Goal),
		RequireSustainedGoal: true,
	}
	final := s.sipp.SolveGeneralized(gcfg, true)
	if len(final) == 0 {
		return sipp.Solution{}, false
	}
	return s.finish(cfg, final[0])
}

func (s *Solver) storeParts(sols []sipp.Solution, landmark int) {
	for _, sol := range sols {
		landing := sol.States[len(sol.States)-1]
		s.parts[partKey{Landing: landing, Landmark: landmark}] = sol
	}
}

func toInitialStates(sols []sipp.Solution) []sipp.TimedState {
	out := make([]sipp.TimedState, len(sols))
	for i, sol := range sols {
		out[i] = sipp.TimedState{Time: sol.Cost, State: sol.States[len(sol.States)-1]}
	}
	return out
}

// finish stitches the per-landmark solution parts backward from final into
// one path, and checks the landing safe interval reaches the horizon (it
// always will, since final was only accepted by a RequireSustainedGoal
// search).
func (s *Solver) finish(cfg *Config, final sipp.Solution) (sipp.Solution, bool) {
	if final.States[len(final.States)-1].Safe.End != tsys.MaxCost {
		return sipp.Solution{}, false
	}
	if len(cfg.Landmarks) == 0 {
		return final, true
	}

	var states []sipp.State
	var costs []tsys.Cost
	var actions []tsys.Action
	cost := final.Cost
	current := final

	for landmark := len(cfg.Landmarks); landmark >= 0; landmark-- {
		for i := len(current.States) - 1; i >= 0; i-- {
			states = append(states, current.States[i])
			costs = append(costs, current.Costs[i])
		}
		for i := len(current.Actions) - 1; i >= 0; i-- {
			actions = append(actions, current.Actions[i])
		}
		if landmark > 0 {
			key := partKey{Landing: states[len(states)-1], Landmark: landmark - 1}
			part, ok := s.parts[key]
			if !ok {
				return sipp.Solution{}, false
			}
			states = states[:len(states)-1]
			costs = costs[:len(costs)-1]
			current = part
		}
	}

	reverseStates(states)
	reverseCosts(costs)
	reverseActions(actions)

	return sipp.Solution{States: states, Costs: costs, Actions: actions, Cost: cost}, true
}

func reverseStates(s []sipp.State) {
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
