package heuristic

import (
	"container/heap"

	"github.com/elektrokombinacija/cbs-sipp/internal/metrics"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// ReverseResumableAStar computes exact shortest-path distances to task.Goal
// lazily: it runs a single backward A* over the reversed transition system,
// rooted at the goal, and resumes the same open/closed state across calls
// instead of restarting from scratch each time a new distance is needed.
// Once a state is popped and closed its distance is final (the reversed
// graph carries the same non-negative costs as the forward one).
//
// base guides the backward expansion toward task.Initial — the region the
// forward low-level search is actually going to query — rather than toward
// no particular target; this is what makes the resumable search converge
// quickly instead of degenerating into a full backward Dijkstra on the
// first call.
type ReverseResumableAStar struct {
	reverseTS tsys.TransitionSystem
	goal      tsys.State
	base      Heuristic
	metrics   *metrics.Recorder

	open   rraQueue
	dist   map[tsys.State]tsys.Cost
	closed map[tsys.State]bool

	inUse bool
}

// NewReverseResumableAStar builds an RRA* instance rooted at task.Goal, over
// reverseTS (the reversed transition system), guided by base. rec may be nil.
func NewReverseResumableAStar(reverseTS tsys.TransitionSystem, task tsys.Task, base Heuristic, rec *metrics.Recorder) *ReverseResumableAStar {
	// The backward search is rooted at the task's own goal and guided
	// toward its initial state — exactly the (initial, goal) pair with
	// the roles swapped, which Task.Reversed expresses directly.
	seed := task.Reversed()

	r := &ReverseResumableAStar{
		reverseTS: reverseTS,
		goal:      seed.Initial,
		base:      base,
		metrics:   rec,
		dist:      map[tsys.State]tsys.Cost{},
		closed:    map[tsys.State]bool{},
	}
	h0, _ := base.GetHeuristic(seed.Initial)
	r.dist[seed.Initial] = 0
	heap.Push(&r.open, &rraItem{node: rraNode{state: seed.Initial, g: 0, f: h0}})
	return r
}

// GetHeuristic returns the exact distance from state to the RRA*'s goal,
// resuming the backward search as far as needed to settle it. Not safe for
// concurrent use by design — a second call while one is in flight panics
// rather than racing the shared open/closed state, matching the
// single-threaded reentrancy the backward search was built around.
func (r *ReverseResumableAStar) GetHeuristic(state tsys.State) (tsys.Duration, bool) {
	if r.inUse {
		panic("heuristic: concurrent GetHeuristic call on a shared ReverseResumableAStar instance")
	}
	r.inUse = true
	defer func() { r.inUse = false }()

	if r.closed[state] {
		return r.dist[state], true
	}

	for r.open.Len() > 0 {
		item := heap.Pop(&r.open).(*rraItem)
		r.metrics.RecordRRAExpansion()
		cur := item.node
		if r.closed[cur.state] {
			continue
		}
		if d, ok := r.dist[cur.state]; ok && cur.g > d {
			continue // stale queue entry
		}
		r.closed[cur.state] = true

		if cur.state == state {
			return cur.g, true
		}

		for _, a := range r.reverseTS.ActionsFrom(cur.state) {
			next := r.reverseTS.Transition(cur.state, a)
			if r.closed[next] {
				continue
			}
			g2 := cur.g + r.reverseTS.TransitionCost(cur.state, a)
			if old, ok := r.dist[next]; ok && g2 >= old {
				continue
			}
			r.dist[next] = g2
			h, ok := r.base.GetHeuristic(next)
			if !ok {
				continue
			}
			heap.Push(&r.open, &rraItem{node: rraNode{state: next, g: g2, f: g2 + h}})
		}
	}
	if r.closed[state] {
		return r.dist[state], true
	}
	return 0, false
}

type rraNode struct {
	state tsys.State
	g, f  tsys.Cost
}

type rraItem struct {
	node  rraNode
	index int
}

type rraQueue []*rraItem

func (q rraQueue) Len() int            { return len(q) }
func (q rraQueue) Less(i, j int) bool  { return q[i].node.f < q[j].node.f }
func (q rraQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *rraQueue) Push(x interface{}) {
	item := x.(*rraItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *rraQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
