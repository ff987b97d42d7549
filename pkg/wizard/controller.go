package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/agentwizard/internal/logging"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/aretw0/agentwizard/pkg/ports"
)

// Controller drives wizard sessions through their states.
//
// Session updates are read-modify-write against the store. Without a
// SessionLocker two concurrent operations on one key race and the last write
// wins.
type Controller struct {
	store      ports.SessionStore
	decomposer ports.Decomposer
	locker     ports.SessionLocker
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	now        func() time.Time
	newID      func() string
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers transition callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithClock overrides the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator overrides how session keys are allocated.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// WithSessionLocker serializes operations on the same session key.
func WithSessionLocker(locker ports.SessionLocker) Option {
	return func(c *Controller) {
		c.locker = locker
	}
}

// NewController creates a Controller over an explicitly constructed store.
func NewController(store ports.SessionStore, decomposer ports.Decomposer, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		decomposer: decomposer,
		locker:     unlocked{},
		logger:     logging.NewNop(),
		now:        time.Now,
		newID:      domain.NewID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSession stores a new session in INITIAL and returns its key.
func (c *Controller) StartSession(ctx context.Context) (string, error) {
	id := c.newID()
	if err := c.store.Save(ctx, domain.NewWizardSession(id, c.now())); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	c.logger.Debug("Session started", "session_id", id)
	return id, nil
}

// Session returns the session for the key, or a StateError wrapping
// domain.ErrSessionNotFound.
func (c *Controller) Session(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	s, err := c.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, &domain.StateError{SessionID: sessionID, Err: domain.ErrSessionNotFound}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// ProcessObjective decomposes the objective and attaches the resulting plan.
//
// The session moves to OBJECTIVE_ENTERED, then to OBJECTIVE_DECOMPOSED on
// success. Any failure moves it to ERROR and is returned. Calling it again
// replaces the plan.
func (c *Controller) ProcessObjective(ctx context.Context, sessionID, objective string) (*domain.WizardSession, error) {
	var s *domain.WizardSession
	err := c.locker.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = c.processObjective(ctx, sessionID, objective)
		return err
	})
	return s, err
}

func (c *Controller) processObjective(ctx context.Context, sessionID, objective string) (*domain.WizardSession, error) {
	s, err := c.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.advance(ctx, s, domain.StateObjectiveEntered); err != nil {
		return nil, err
	}

	plan, err := c.decomposer.Decompose(ctx, objective)
	if err == nil && plan == nil {
		err = errors.New("decomposer returned no plan")
	}
	if err != nil {
		c.fail(ctx, s, err)
		return nil, err
	}

	// Plan identity follows the session key.
	plan.ID = sessionID
	s.Plan = plan
	if err := c.advance(ctx, s, domain.StateObjectiveDecomposed); err != nil {
		return nil, err
	}
	return s, nil
}

// ReviewAgent marks a decomposed plan as reviewed.
func (c *Controller) ReviewAgent(ctx context.Context, sessionID string) (*domain.WizardSession, error) {
	var s *domain.WizardSession
	err := c.locker.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = c.step(ctx, sessionID, domain.StateObjectiveDecomposed, domain.StateAgentReviewed)
		return err
	})
	return s, err
}

// CompleteCreation finishes a reviewed session and returns its plan.
func (c *Controller) CompleteCreation(ctx context.Context, sessionID string) (*domain.Plan, error) {
	var s *domain.WizardSession
	err := c.locker.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = c.step(ctx, sessionID, domain.StateAgentReviewed, domain.StateCompleted)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Plan, nil
}

// RemoveSession deletes the session and reports whether it existed.
func (c *Controller) RemoveSession(ctx context.Context, sessionID string) (bool, error) {
	var existed bool
	err := c.locker.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		existed, err = c.store.Delete(ctx, sessionID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	if existed {
		c.logger.Debug("Session removed", "session_id", sessionID)
	}
	return existed, nil
}

// ListSessions returns the keys of live sessions.
func (c *Controller) ListSessions(ctx context.Context) ([]string, error) {
	return c.store.List(ctx)
}

// ActiveSessionCount returns the number of live sessions.
func (c *Controller) ActiveSessionCount(ctx context.Context) (int, error) {
	ids, err := c.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// step moves a session from want to to.
func (c *Controller) step(ctx context.Context, sessionID string, want, to domain.WizardState) (*domain.WizardSession, error) {
	s, err := c.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.require(s, want, to); err != nil {
		return nil, err
	}
	if err := c.advance(ctx, s, to); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Controller) require(s *domain.WizardSession, want, to domain.WizardState) error {
	if s.State != want {
		return &domain.StateError{SessionID: s.SessionID, From: s.State, To: to, Err: domain.ErrIllegalTransition}
	}
	return nil
}

// advance moves s to the target state and saves it.
func (c *Controller) advance(ctx context.Context, s *domain.WizardSession, to domain.WizardState) error {
	from := s.State
	if !domain.CanTransition(from, to) {
		return &domain.StateError{SessionID: s.SessionID, From: from, To: to, Err: domain.ErrIllegalTransition}
	}

	s.State = to
	s.ErrorMessage = ""
	s.LastUpdatedAt = c.now()
	if err := c.store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.logger.Debug("Session transition", "session_id", s.SessionID, "from", from, "to", to)
	c.emit(ctx, s.SessionID, from, to)
	return nil
}

// fail records err on the session. A failing save is logged, not returned,
// so the caller still sees the original error.
func (c *Controller) fail(ctx context.Context, s *domain.WizardSession, cause error) {
	from := s.State
	s.State = domain.StateFailed
	s.ErrorMessage = "Error processing objective: " + cause.Error()
	s.LastUpdatedAt = c.now()

	c.logger.Error("Objective processing failed", "session_id", s.SessionID, "error", cause)
	if err := c.store.Save(ctx, s); err != nil {
		c.logger.Error("Failed to save session error state", "session_id", s.SessionID, "error", err)
		return
	}
	c.emit(ctx, s.SessionID, from, domain.StateFailed)
}

func (c *Controller) emit(ctx context.Context, sessionID string, from, to domain.WizardState) {
	if c.hooks.OnTransition == nil {
		return
	}
	c.hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: c.now(), Type: domain.EventTransition},
		SessionID: sessionID,
		From:      from,
		To:        to,
	})
}

// unlocked runs fn without any locking.
type unlocked struct{}

func (unlocked) WithLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}
