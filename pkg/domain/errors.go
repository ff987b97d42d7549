package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrIllegalTransition is wrapped by StateError when a session is in the wrong state.
var ErrIllegalTransition = errors.New("illegal state transition")

// ErrCanceled is returned when a call is interrupted while waiting to retry.
var ErrCanceled = errors.New("request canceled")

// ErrEmptyPrompt is returned when the user prompt is blank.
var ErrEmptyPrompt = errors.New("user prompt must not be empty")

// ErrEmptyObjective is returned when the objective is blank.
var ErrEmptyObjective = errors.New("objective must not be empty")

// ConfigurationError reports a required secret or setting that could not be resolved.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s not found in initialization, .env file, or environment variables", e.Key)
}

// TransportError is a network or IO failure before a usable response was obtained.
// A response body that cannot be decoded also counts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a structured error returned by the remote service.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.Status, e.Type, e.Message)
}

// RateLimitError marks a throttled call. It wraps the APIError or TransportError
// that was observed, so exhausting retries can surface the underlying kind.
type RateLimitError struct {
	Status     int
	RetryAfter time.Duration // zero when the server sent no hint
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("rate limited (status %d)", e.Status)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// ParseError reports model output that could not be decoded as JSON.
// Raw holds the full text the model returned.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StateError is returned when a wizard operation is invalid for the session.
// Err is ErrSessionNotFound for unknown keys and ErrIllegalTransition otherwise.
type StateError struct {
	SessionID string
	From      WizardState
	To        WizardState
	Err       error
}

func (e *StateError) Error() string {
	if errors.Is(e.Err, ErrSessionNotFound) {
		return fmt.Sprintf("session not found: %s", e.SessionID)
	}
	return fmt.Sprintf("session %s cannot move from %s to %s", e.SessionID, e.From, e.To)
}

func (e *StateError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a rate limit or a transport failure.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var te *TransportError
	return errors.As(err, &te)
}
