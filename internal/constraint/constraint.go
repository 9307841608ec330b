// Package constraint models the forbidden state/action windows the CBS
// high-level search accumulates per agent, plus the ordered landmark
// sequences LSIPP must route a path through.
package constraint

import (
	"sort"

	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// Kind distinguishes a state constraint (agent may not occupy State during
// Interval) from an action constraint (agent may not depart State for Next
// during Interval).
type Kind int

const (
	KindState Kind = iota
	KindAction
)

// Constraint is a single forbidden window. Landmark reuses the same shape
// to express a required (positive) window instead of a forbidden one; the
// two are kept as distinct names at the call site even though the struct
// underneath is identical.
type Constraint struct {
	Agent    int
	State    tsys.State
	Next     tsys.State // populated only when Kind == KindAction
	Interval tsys.Interval
	Kind     Kind
}

// NewStateConstraint forbids State during Interval.
func NewStateConstraint(agent int, state tsys.State, iv tsys.Interval) Constraint {
	return Constraint{Agent: agent, State: state, Interval: iv, Kind: KindState}
}

// NewActionConstraint forbids departing from, bound for to, during Interval.
func NewActionConstraint(agent int, from, to tsys.State, iv tsys.Interval) Constraint {
	return Constraint{Agent: agent, State: from, Next: to, Interval: iv, Kind: KindAction}
}

// Landmark is a positive constraint: the agent must occupy State within
// Interval. A LandmarkSet is the ordered sequence of such waypoints a task
// must be routed through, in order.
type Landmark = Constraint
type LandmarkSet []Landmark

type edgeKey struct{ From, To tsys.State }

// Set indexes constraints by the state (or edge) they forbid, each bucket
// kept sorted by interval start so lookups can scan in temporal order.
type Set struct {
	state  map[tsys.State][]Constraint
	action map[edgeKey][]Constraint
}

// NewSet returns an empty constraint set.
func NewSet() *Set {
	return &Set{state: map[tsys.State][]Constraint{}, action: map[edgeKey][]Constraint{}}
}

// Add inserts c into its bucket, keeping the bucket sorted by Interval.Start.
func (s *Set) Add(c Constraint) {
	switch c.Kind {
	case KindState:
		bucket := append(s.state[c.State], c)
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Interval.Start < bucket[j].Interval.Start })
		s.state[c.State] = bucket
	case KindAction:
		k := edgeKey{c.State, c.Next}
		bucket := append(s.action[k], c)
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Interval.Start < bucket[j].Interval.Start })
		s.action[k] = bucket
	}
}

// StateConstraints returns the forbidden windows on state, sorted by start.
func (s *Set) StateConstraints(state tsys.State) []Constraint {
	return s.state[state]
}

// ActionConstraints returns the forbidden departure windows on edge
// (from, to), sorted by start.
func (s *Set) ActionConstraints(from, to tsys.State) []Constraint {
	return s.action[edgeKey{from, to}]
}

// Clone returns a deep-enough copy safe to mutate independently of s: used
// when probing a hypothetical extra constraint during conflict
// classification without disturbing the node's own materialized set.
func (s *Set) Clone() *Set {
	c := NewSet()
	for k, v := range s.state {
		cp := make([]Constraint, len(v))
		copy(cp, v)
		c.state[k] = cp
	}
	for k, v := range s.action {
		cp := make([]Constraint, len(v))
		copy(cp, v)
		c.action[k] = cp
	}
	return c
}
