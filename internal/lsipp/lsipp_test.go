package lsipp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/cbs-sipp/internal/constraint"
	"github.com/elektrokombinacija/cbs-sipp/internal/gridworld"
	"github.com/elektrokombinacija/cbs-sipp/internal/heuristic"
	"github.com/elektrokombinacija/cbs-sipp/internal/lsipp"
	"github.com/elektrokombinacija/cbs-sipp/internal/sipp"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

func internalStates(sol sipp.Solution) []tsys.State {
	out := make([]tsys.State, len(sol.States))
	for i, s := range sol.States {
		out[i] = s.Internal
	}
	return out
}

func zeroHeuristic() heuristic.Heuristic {
	return heuristic.NewSimpleHeuristic(nil, nil, 1)
}

func TestSolveNoLandmarksMatchesPlainSipp(t *testing.T) {
	g := gridworld.NewGrid(10, 10)
	w := gridworld.NewWorld(g)
	solver := lsipp.NewSolver(w)

	task := tsys.Task{Initial: gridworld.State{V: 0}, Goal: gridworld.State{V: 99}}
	cfg := lsipp.NewConfig(task, constraint.NewSet(), nil, zeroHeuristic(), 0.5)

	sol, ok := solver.Solve(&cfg)
	require.True(t, ok)
	assert.Equal(t, tsys.Cost(18), sol.Cost)
}

func TestSolveThroughOrderedLandmarks(t *testing.T) {
	g := gridworld.NewGrid(10, 10)
	w := gridworld.NewWorld(g)
	solver := lsipp.NewSolver(w)

	task := tsys.Task{Initial: gridworld.State{V: 0}, Goal: gridworld.State{V: 99}}
	landmarks := constraint.LandmarkSet{
		constraint.NewStateConstraint(0, gridworld.State{V: 9}, tsys.DefaultInterval()),
		constraint.NewStateConstraint(0, gridworld.State{V: 90}, tsys.DefaultInterval()),
	}
	cfg := lsipp.NewConfig(task, constraint.NewSet(), landmarks, zeroHeuristic(), 0.5)

	sol, ok := solver.Solve(&cfg)
	require.True(t, ok)
	assert.Equal(t, tsys.Cost(36), sol.Cost)

	assert.Equal(t, gridworld.State{V: 0}, sol.States[0].Internal)
	assert.Equal(t, gridworld.State{V: 99}, sol.States[len(sol.States)-1].Internal)
	assert.Contains(t, internalStates(sol), tsys.State(gridworld.State{V: 9}))
	assert.Contains(t, internalStates(sol), tsys.State(gridworld.State{V: 90}))
}

func TestSolveInfeasibleWhenLandmarkUnreachable(t *testing.T) {
	g := gridworld.NewGraph()
	g.AddBidirectionalEdge(0, 1, 1)
	w := gridworld.NewWorld(g)
	solver := lsipp.NewSolver(w)

	task := tsys.Task{Initial: gridworld.State{V: 0}, Goal: gridworld.State{V: 1}}
	landmarks := constraint.LandmarkSet{
		constraint.NewStateConstraint(0, gridworld.State{V: 2}, tsys.DefaultInterval()),
	}
	cfg := lsipp.NewConfig(task, constraint.NewSet(), landmarks, zeroHeuristic(), 0.5)

	_, ok := solver.Solve(&cfg)
	assert.False(t, ok)
}
