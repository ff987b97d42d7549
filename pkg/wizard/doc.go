/*
Package wizard implements the session state machine for plan creation.

A session advances INITIAL -> OBJECTIVE_ENTERED -> OBJECTIVE_DECOMPOSED ->
AGENT_REVIEWED -> COMPLETED, and drops to ERROR when decomposition fails.
Submitting an objective is accepted in any state and restarts decomposition.
Out-of-order calls fail with *domain.StateError and leave the session unchanged.
*/
package wizard
