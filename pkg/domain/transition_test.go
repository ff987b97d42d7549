package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
)

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.WizardState
		want     bool
	}{
		{domain.StateInitial, domain.StateObjectiveEntered, true},
		{domain.StateObjectiveEntered, domain.StateObjectiveDecomposed, true},
		{domain.StateObjectiveDecomposed, domain.StateAgentReviewed, true},
		{domain.StateAgentReviewed, domain.StateCompleted, true},
		{domain.StateObjectiveDecomposed, domain.StateCompleted, false},
		{domain.StateInitial, domain.StateAgentReviewed, false},
		{domain.StateAgentReviewed, domain.StateAgentReviewed, false},
		{domain.StateCompleted, domain.StateAgentReviewed, false},
		{domain.StateCompleted, domain.StateFailed, true},
		{domain.StateInitial, domain.StateFailed, true},
		{domain.StateObjectiveDecomposed, domain.StateObjectiveEntered, true},
		{domain.StateFailed, domain.StateObjectiveEntered, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseWizardState(t *testing.T) {
	st, ok := domain.ParseWizardState("AGENT_REVIEWED")
	assert.True(t, ok)
	assert.Equal(t, domain.StateAgentReviewed, st)

	_, ok = domain.ParseWizardState("agent_reviewed")
	assert.False(t, ok)
}

func TestStateError_Unwrap(t *testing.T) {
	notFound := &domain.StateError{SessionID: "x", Err: domain.ErrSessionNotFound}
	assert.ErrorIs(t, notFound, domain.ErrSessionNotFound)
	assert.Contains(t, notFound.Error(), "session not found")

	illegal := &domain.StateError{SessionID: "x", From: domain.StateInitial, To: domain.StateCompleted, Err: domain.ErrIllegalTransition}
	assert.ErrorIs(t, illegal, domain.ErrIllegalTransition)
	assert.NotErrorIs(t, illegal, domain.ErrSessionNotFound)
}

func TestIsRetryable(t *testing.T) {
	api := &domain.APIError{Type: "invalid_request_error", Message: "bad", Status: 400}
	assert.False(t, domain.IsRetryable(api))
	assert.True(t, domain.IsRetryable(&domain.RateLimitError{Status: 429, Err: api}))
	assert.True(t, domain.IsRetryable(&domain.TransportError{Op: "send", Err: errors.New("reset")}))
	assert.False(t, domain.IsRetryable(&domain.ParseError{Raw: "x", Err: errors.New("bad")}))
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "b") },
		OnRetry:      func(context.Context, *domain.RetryEvent) { calls = append(calls, "retry") },
	}

	merged := domain.MergeHooks(a, domain.LifecycleHooks{}, b)
	merged.OnTransition(context.Background(), &domain.TransitionEvent{})
	merged.OnRetry(context.Background(), &domain.RetryEvent{})

	assert.Equal(t, []string{"a", "b", "retry"}, calls)
	assert.Nil(t, merged.OnAttempt)
}
