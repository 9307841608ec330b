package heuristic_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/cbs-sipp/internal/gridworld"
	"github.com/elektrokombinacija/cbs-sipp/internal/heuristic"
	"github.com/elektrokombinacija/cbs-sipp/internal/metrics"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

func newRRA(width, height int, initial, goal gridworld.VertexID) (*heuristic.ReverseResumableAStar, *gridworld.World) {
	g := gridworld.NewGrid(width, height)
	w := gridworld.NewWorld(g)
	task := tsys.Task{Initial: gridworld.State{V: initial}, Goal: gridworld.State{V: goal}}
	base := heuristic.NewSimpleHeuristic(task.Initial, gridworld.Position(width), 1)
	return heuristic.NewReverseResumableAStar(w.Reverse(), task, base, nil), w
}

func TestRRAStarMatchesManhattanDistance(t *testing.T) {
	r, _ := newRRA(10, 10, 0, 99)

	d, ok := r.GetHeuristic(gridworld.State{V: 0})
	require.True(t, ok)
	assert.Equal(t, tsys.Duration(18), d)
}

func TestRRAStarIsResumableAcrossQueries(t *testing.T) {
	r, _ := newRRA(5, 5, 0, 24)

	d1, ok1 := r.GetHeuristic(gridworld.State{V: 12})
	require.True(t, ok1)
	d2, ok2 := r.GetHeuristic(gridworld.State{V: 0})
	require.True(t, ok2)

	assert.Equal(t, tsys.Duration(4), d1)
	assert.Equal(t, tsys.Duration(8), d2)
}

// reentrantBase calls back into the outer RRA* instance from within a base
// heuristic lookup, simulating what a concurrent caller would trigger.
// The constructor queries the base before outer is wired up, so a nil
// outer answers with a plain zero.
type reentrantBase struct {
	outer *heuristic.ReverseResumableAStar
}

func (b *reentrantBase) GetHeuristic(state tsys.State) (tsys.Duration, bool) {
	if b.outer == nil {
		return 0, true
	}
	return b.outer.GetHeuristic(state)
}

func TestRRAStarPanicsOnReentrantUse(t *testing.T) {
	g := gridworld.NewGrid(5, 5)
	w := gridworld.NewWorld(g)
	task := tsys.Task{Initial: gridworld.State{V: 0}, Goal: gridworld.State{V: 24}}

	reentrant := &reentrantBase{}
	r := heuristic.NewReverseResumableAStar(w.Reverse(), task, reentrant, nil)
	reentrant.outer = r

	assert.Panics(t, func() {
		r.GetHeuristic(gridworld.State{V: 12})
	})
}

func TestRRAStarRecordsExpansionsToMetrics(t *testing.T) {
	g := gridworld.NewGrid(5, 5)
	w := gridworld.NewWorld(g)
	task := tsys.Task{Initial: gridworld.State{V: 0}, Goal: gridworld.State{V: 24}}
	base := heuristic.NewSimpleHeuristic(task.Initial, gridworld.Position(5), 1)

	reg := prometheus.NewRegistry()
	r := heuristic.NewReverseResumableAStar(w.Reverse(), task, base, metrics.New(reg))

	_, ok := r.GetHeuristic(gridworld.State{V: 0})
	require.True(t, ok)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "mapf_heuristic_rra_expansions_total" {
			continue
		}
		found = true
		assert.Greater(t, mf.GetMetric()[0].GetCounter().GetValue(), float64(0))
	}
	assert.True(t, found, "expected the rra_expansions_total counter to be registered")
}

func TestDifferentialHeuristicAdmissible(t *testing.T) {
	goal := gridworld.State{V: 99}
	pivotTask := tsys.Task{Initial: gridworld.State{V: 0}, Goal: goal}
	g := gridworld.NewGrid(10, 10)
	w := gridworld.NewWorld(g)
	base := heuristic.NewSimpleHeuristic(pivotTask.Initial, gridworld.Position(10), 1)
	rra := heuristic.NewReverseResumableAStar(w.Reverse(), pivotTask, base, nil)

	dh := heuristic.NewDifferentialHeuristic(goal, []tsys.State{goal}, []heuristic.Heuristic{rra})

	d, ok := dh.GetHeuristic(gridworld.State{V: 0})
	require.True(t, ok)
	assert.Equal(t, tsys.Duration(18), d, "pivot equals goal: exact distance")
}

func TestDifferentialHeuristicNoneWhenAllPivotsFail(t *testing.T) {
	goal := gridworld.State{V: 99}
	dh := heuristic.NewDifferentialHeuristic(goal, nil, nil)

	_, ok := dh.GetHeuristic(gridworld.State{V: 0})
	assert.False(t, ok)
}
