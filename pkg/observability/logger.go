package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/agentwizard/pkg/domain"
)

// LoggingHooks returns hooks that write one Info line per transition.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "Session transition",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
			)
		},
		OnRetry: func(ctx context.Context, e *domain.RetryEvent) {
			logger.InfoContext(ctx, "Completion retry scheduled",
				"attempt", e.Attempt,
				"reason", e.Reason,
				"delay", e.Delay,
			)
		},
	}
}
