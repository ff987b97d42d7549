package ports

import (
	"context"

	"github.com/aretw0/agentwizard/pkg/domain"
)

// Completer sends a prompt to a text-completion service and returns the extracted text.
// systemPrompt may be empty; userPrompt may not.
type Completer interface {
	Send(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Decomposer turns an objective into a plan.
type Decomposer interface {
	Decompose(ctx context.Context, objective string) (*domain.Plan, error)
}
