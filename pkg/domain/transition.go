package domain

// forward lists the single legal successor of each state.
var forward = map[WizardState]WizardState{
	StateInitial:             StateObjectiveEntered,
	StateObjectiveEntered:    StateObjectiveDecomposed,
	StateObjectiveDecomposed: StateAgentReviewed,
	StateAgentReviewed:       StateCompleted,
}

// CanTransition reports whether a session may move from one state to another.
//
// ERROR is reachable from every state. OBJECTIVE_ENTERED is also reachable from
// every state because submitting an objective restarts decomposition, overwriting
// any previous plan.
func CanTransition(from, to WizardState) bool {
	if to == StateFailed || to == StateObjectiveEntered {
		return true
	}
	return forward[from] == to
}

// Next returns the forward successor of s, if any.
func Next(s WizardState) (WizardState, bool) {
	n, ok := forward[s]
	return n, ok
}

// IsTerminal reports whether no forward step exists from s.
func IsTerminal(s WizardState) bool {
	return s == StateCompleted || s == StateFailed
}
