package tsys

// TransitionSystem exposes the successor relation a search walks: the
// actions available from a state, where each leads, and at what cost.
type TransitionSystem interface {
	ActionsFrom(s State) []Action
	Transition(s State, a Action) State
	TransitionCost(s State, a Action) Duration
}

// Reversible is implemented by transition systems that can hand back a
// second TransitionSystem over the reversed graph (every edge flipped,
// same costs). RRA* runs its backward search over that reversed view
// rather than requiring every transition system to expose a literal
// reverse(s, a) primitive.
type Reversible interface {
	TransitionSystem
	Reverse() TransitionSystem
}
