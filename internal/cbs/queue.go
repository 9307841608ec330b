package cbs

// nodeQueue is a container/heap min-heap over the constraint tree's open
// list: primarily by total cost ascending, then by conflict count (fewer
// first), then by the severity of the most pressing remaining conflict.
type nodeQueue []*Node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.totalCost != b.totalCost {
		return a.totalCost < b.totalCost
	}
	if len(a.conflicts) != len(b.conflicts) {
		return len(a.conflicts) < len(b.conflicts)
	}
	if len(a.conflicts) == 0 {
		return false
	}
	return lessConflict(a.conflicts[0], b.conflicts[0])
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x interface{}) {
	*q = append(*q, x.(*Node))
}

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
