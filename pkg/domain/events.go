package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventAttempt    EventType = "llm_attempt"
	EventRetry      EventType = "llm_retry"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TransitionEvent is emitted after a session changes state.
type TransitionEvent struct {
	EventBase
	SessionID string      `json:"session_id"`
	From      WizardState `json:"from"`
	To        WizardState `json:"to"`
}

// AttemptEvent is emitted after each request to the completion service.
type AttemptEvent struct {
	EventBase
	Attempt  int           `json:"attempt"`
	Status   int           `json:"status,omitempty"` // zero when no response arrived
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// RetryEvent is emitted before the client waits to retry.
type RetryEvent struct {
	EventBase
	Attempt int           `json:"attempt"`
	Reason  string        `json:"reason"`
	Delay   time.Duration `json:"delay"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnAttempt    func(context.Context, *AttemptEvent)
	OnRetry      func(context.Context, *RetryEvent)
}

// MergeHooks returns hooks that call every non-nil callback of each input in order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range all {
		if h.OnTransition != nil {
			prev := merged.OnTransition
			merged.OnTransition = func(ctx context.Context, e *TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTransition(ctx, e)
			}
		}
		if h.OnAttempt != nil {
			prev := merged.OnAttempt
			merged.OnAttempt = func(ctx context.Context, e *AttemptEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnAttempt(ctx, e)
			}
		}
		if h.OnRetry != nil {
			prev := merged.OnRetry
			merged.OnRetry = func(ctx context.Context, e *RetryEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRetry(ctx, e)
			}
		}
	}
	return merged
}
