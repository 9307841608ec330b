// Package gridworld is a minimal reference transition system: a weighted
// directed graph over integer vertex IDs, with a convenience constructor
// for 4-connected grids. It exists to exercise and test internal/tsys,
// internal/sipp, internal/lsipp and internal/cbs against something
// concrete; it is test scaffolding, not a core search component. It
// implements tsys.TransitionSystem and tsys.Reversible directly, with no
// per-agent-type or per-task bookkeeping of its own.
package gridworld

import "github.com/elektrokombinacija/cbs-sipp/internal/tsys"

// VertexID identifies a vertex in the graph.
type VertexID int

// State wraps a VertexID as a tsys.State.
type State struct{ V VertexID }

func (s State) IsEquivalent(other tsys.State) bool {
	o, ok := other.(State)
	return ok && o.V == s.V
}

// Action moves to the vertex To. A graph never carries more than one edge
// between a given ordered pair of vertices, so the destination alone
// identifies the action.
type Action struct{ To VertexID }

type edge struct {
	To   VertexID
	Cost tsys.Duration
}

// Graph is a weighted directed graph, with its reverse adjacency
// maintained alongside the forward one so Reverse() is O(1).
type Graph struct {
	adj  map[VertexID][]edge
	radj map[VertexID][]edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{adj: map[VertexID][]edge{}, radj: map[VertexID][]edge{}}
}

// AddVertex registers v with no edges, if not already present.
func (g *Graph) AddVertex(v VertexID) {
	if _, ok := g.adj[v]; !ok {
		g.adj[v] = nil
	}
	if _, ok := g.radj[v]; !ok {
		g.radj[v] = nil
	}
}

// AddEdge adds a directed edge from -> to with the given cost.
func (g *Graph) AddEdge(from, to VertexID, cost tsys.Duration) {
	g.AddVertex(from)
	g.AddVertex(to)
	g.adj[from] = append(g.adj[from], edge{To: to, Cost: cost})
	g.radj[to] = append(g.radj[to], edge{To: from, Cost: cost})
}

// AddBidirectionalEdge adds edges in both directions between a and b.
func (g *Graph) AddBidirectionalEdge(a, b VertexID, cost tsys.Duration) {
	g.AddEdge(a, b, cost)
	g.AddEdge(b, a, cost)
}

// NewGrid builds a width x height 4-connected grid with unit edge costs,
// vertex (x, y) numbered y*width + x.
func NewGrid(width, height int) *Graph {
	g := NewGraph()
	id := func(x, y int) VertexID { return VertexID(y*width + x) }
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.AddVertex(id(x, y))
			if x+1 < width {
				g.AddBidirectionalEdge(id(x, y), id(x+1, y), 1)
			}
			if y+1 < height {
				g.AddBidirectionalEdge(id(x, y), id(x, y+1), 1)
			}
		}
	}
	return g
}

// World is a tsys.TransitionSystem/tsys.Reversible over a Graph.
type World struct {
	g        *Graph
	reversed bool
}

// NewWorld returns a World over g, in its forward orientation.
func NewWorld(g *Graph) *World {
	return &World{g: g}
}

func (w *World) adjacency() map[VertexID][]edge {
	if w.reversed {
		return w.g.radj
	}
	return w.g.adj
}

func (w *World) ActionsFrom(s tsys.State) []tsys.Action {
	gs := s.(State)
	edges := w.adjacency()[gs.V]
	out := make([]tsys.Action, len(edges))
	for i, e := range edges {
		out[i] = Action{To: e.To}
	}
	return out
}

func (w *World) Transition(_ tsys.State, a tsys.Action) tsys.State {
	return State{V: a.(Action).To}
}

func (w *World) TransitionCost(s tsys.State, a tsys.Action) tsys.Duration {
	gs := s.(State)
	act := a.(Action)
	for _, e := range w.adjacency()[gs.V] {
		if e.To == act.To {
			return e.Cost
		}
	}
	return 1
}

// Reverse returns the same graph with every edge flipped.
func (w *World) Reverse() tsys.TransitionSystem {
	return &World{g: w.g, reversed: !w.reversed}
}
