package sipp

import "github.com/elektrokombinacija/cbs-sipp/internal/tsys"

// SearchNode is a single open-list entry: a landing SIPP state reached at
// Cost, with an admissible remaining-cost estimate Heuristic. Ordering is
// primarily by Cost+Heuristic ascending (standard A*); ties are broken in
// favor of the LARGER Cost — the more-committed, deeper node — on the
// reasoning that a node closer to the goal is more likely to be on the
// eventual solution path and is cheaper to have already expanded toward.
type SearchNode struct {
	State     State
	Cost      tsys.Cost
	Heuristic tsys.Duration
}

func less(a, b SearchNode) bool {
	fa, fb := a.Cost+a.Heuristic, b.Cost+b.Heuristic
	if fa != fb {
		return fa < fb
	}
	return a.Cost > b.Cost
}

type searchItem struct {
	node  SearchNode
	index int
}

// searchQueue is a container/heap min-heap over SearchNode's custom order.
type searchQueue []*searchItem

func (q searchQueue) Len() int           { return len(q) }
func (q searchQueue) Less(i, j int) bool { return less(q[i].node, q[j].node) }
func (q searchQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *searchQueue) Push(x interface{}) {
	item := x.(*searchItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *searchQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
