package gridworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

func TestGridConnectivity(t *testing.T) {
	g := NewGrid(3, 3)
	w := NewWorld(g)

	actions := w.ActionsFrom(State{V: 4}) // center of the 3x3 grid
	assert.Len(t, actions, 4)
}

func TestGridCornerHasTwoNeighbors(t *testing.T) {
	g := NewGrid(3, 3)
	w := NewWorld(g)

	assert.Len(t, w.ActionsFrom(State{V: 0}), 2)
}

func TestTransitionCostIsUnit(t *testing.T) {
	g := NewGrid(3, 3)
	w := NewWorld(g)

	cost := w.TransitionCost(State{V: 0}, Action{To: 1})
	assert.Equal(t, tsys.Duration(1), cost)
}

func TestReverseFlipsEdges(t *testing.T) {
	g := NewGraph()
	g.AddEdge(0, 1, 2)

	w := NewWorld(g)
	require.Len(t, w.ActionsFrom(State{V: 0}), 1)
	assert.Empty(t, w.ActionsFrom(State{V: 1}))

	rev := w.Reverse()
	assert.Empty(t, rev.ActionsFrom(State{V: 0}))
	require.Len(t, rev.ActionsFrom(State{V: 1}), 1)
	assert.Equal(t, State{V: 0}, rev.Transition(State{V: 1}, Action{To: 0}))
}

func TestInstanceTagsRunID(t *testing.T) {
	a := NewInstance(4, 4)
	b := NewInstance(4, 4)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPositionDecodesVertex(t *testing.T) {
	pos := Position(10)
	x, y, ok := pos(State{V: 23})
	require.True(t, ok)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 2.0, y)
}
