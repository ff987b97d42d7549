package domain

import "time"

// WizardState is a step of the plan-creation wizard.
type WizardState string

const (
	StateInitial             WizardState = "INITIAL"
	StateObjectiveEntered    WizardState = "OBJECTIVE_ENTERED"
	StateObjectiveDecomposed WizardState = "OBJECTIVE_DECOMPOSED"
	StateAgentReviewed       WizardState = "AGENT_REVIEWED"
	StateCompleted           WizardState = "COMPLETED"
	StateFailed              WizardState = "ERROR" // Side exit, reachable from anywhere
)

// ParseWizardState converts wire text into a WizardState.
// The second return value is false for unknown names.
func ParseWizardState(s string) (WizardState, bool) {
	switch st := WizardState(s); st {
	case StateInitial, StateObjectiveEntered, StateObjectiveDecomposed,
		StateAgentReviewed, StateCompleted, StateFailed:
		return st, true
	}
	return "", false
}

// WizardSession tracks one caller's progress through the wizard.
type WizardSession struct {
	SessionID string      `json:"sessionId"`
	State     WizardState `json:"state"`

	// Plan is nil until decomposition succeeds.
	Plan *Plan `json:"agent,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`

	// ErrorMessage is only set while State == StateFailed.
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// NewWizardSession creates a session in StateInitial.
func NewWizardSession(id string, now time.Time) *WizardSession {
	return &WizardSession{
		SessionID:     id,
		State:         StateInitial,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

// Snapshot returns a shallow copy. The Plan pointer is shared: plans are
// replaced on a session, never mutated in place.
func (s *WizardSession) Snapshot() *WizardSession {
	cp := *s
	return &cp
}
