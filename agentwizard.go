package agentwizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/agentwizard/internal/config"
	"github.com/aretw0/agentwizard/internal/logging"
	"github.com/aretw0/agentwizard/pkg/adapters/memory"
	"github.com/aretw0/agentwizard/pkg/decompose"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/aretw0/agentwizard/pkg/llm"
	"github.com/aretw0/agentwizard/pkg/ports"
	"github.com/aretw0/agentwizard/pkg/wizard"
)

// ErrClosed is returned by Close when the Wizard was already closed.
var ErrClosed = errors.New("wizard closed")

// Wizard is the high-level entry point of the library.
// It wires a completion client, the decomposition pipeline and the session
// controller over one explicitly owned session store.
type Wizard struct {
	*wizard.Controller

	store     ports.SessionStore
	locker    ports.SessionLocker
	completer ports.Completer
	client    *llm.Client
	pipeline  *decompose.Pipeline

	llmConfig  llm.Config
	key        llm.KeySource
	templates  *decompose.Templates
	hooks      domain.LifecycleHooks
	httpClient *http.Client
	logger     *slog.Logger

	closeOnce sync.Once
}

// Option defines a functional option for configuring the Wizard.
type Option func(*Wizard)

// WithLLMConfig replaces the completion client configuration.
func WithLLMConfig(cfg llm.Config) Option {
	return func(w *Wizard) {
		w.llmConfig = cfg
	}
}

// WithAPIKey sets the Anthropic key explicitly.
func WithAPIKey(key string) Option {
	return func(w *Wizard) {
		w.key = llm.StaticKey(key)
	}
}

// WithKeySource sets how the Anthropic key is resolved on first use.
func WithKeySource(src llm.KeySource) Option {
	return func(w *Wizard) {
		w.key = src
	}
}

// WithCompleter bypasses the built-in client, e.g. for tests or other providers.
func WithCompleter(c ports.Completer) Option {
	return func(w *Wizard) {
		w.completer = c
	}
}

// WithStore injects the session store. The default is an in-memory store.
func WithStore(s ports.SessionStore) Option {
	return func(w *Wizard) {
		w.store = s
	}
}

// WithTemplates replaces the decomposition prompts.
func WithTemplates(t decompose.Templates) Option {
	return func(w *Wizard) {
		w.templates = &t
	}
}

// WithSessionLocker serializes wizard operations on the same session key.
func WithSessionLocker(l ports.SessionLocker) Option {
	return func(w *Wizard) {
		w.locker = l
	}
}

// WithLifecycleHooks registers observability hooks on the client and controller.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = hooks
	}
}

// WithHTTPClient sets the transport used by the built-in client.
func WithHTTPClient(hc *http.Client) Option {
	return func(w *Wizard) {
		w.httpClient = hc
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// New builds a Wizard. Without options it talks to the Anthropic API with the
// key from CLAUDE_API_KEY (explicit, .env file or environment), resolved on the
// first decomposition.
func New(opts ...Option) (*Wizard, error) {
	cfg := llm.DefaultConfig()
	cfg.Temperature = decompose.DefaultTemperature
	w := &Wizard{llmConfig: cfg}
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	if w.store == nil {
		w.store = memory.NewStore()
	}
	if w.completer == nil {
		if w.key == nil {
			w.key = config.NewSecrets().ClaudeKey
		}
		clientOpts := []llm.Option{
			llm.WithLogger(w.logger.With("component", "llm")),
			llm.WithLifecycleHooks(w.hooks),
		}
		if w.httpClient != nil {
			clientOpts = append(clientOpts, llm.WithHTTPClient(w.httpClient))
		}
		w.client = llm.NewClient(w.llmConfig, w.key, clientOpts...)
		w.completer = w.client
	}

	pipeOpts := []decompose.Option{decompose.WithLogger(w.logger.With("component", "decompose"))}
	if w.templates != nil {
		if err := w.templates.Validate(); err != nil {
			return nil, fmt.Errorf("invalid prompt templates: %w", err)
		}
		pipeOpts = append(pipeOpts, decompose.WithTemplates(*w.templates))
	}
	w.pipeline = decompose.New(w.completer, pipeOpts...)

	ctrlOpts := []wizard.Option{
		wizard.WithLogger(w.logger.With("component", "wizard")),
		wizard.WithLifecycleHooks(w.hooks),
	}
	if w.locker != nil {
		ctrlOpts = append(ctrlOpts, wizard.WithSessionLocker(w.locker))
	}
	w.Controller = wizard.NewController(w.store, w.pipeline, ctrlOpts...)
	return w, nil
}

// Pipeline returns the decomposition pipeline.
func (w *Wizard) Pipeline() *decompose.Pipeline {
	return w.pipeline
}

// Store returns the session store owned by the Wizard.
func (w *Wizard) Store() ports.SessionStore {
	return w.store
}

// Client returns the built-in completion client, or nil when a custom
// completer was injected.
func (w *Wizard) Client() *llm.Client {
	return w.client
}

// Close removes every session from the store. It is meant for process
// shutdown; the Wizard must not be used afterwards.
func (w *Wizard) Close(ctx context.Context) error {
	err := ErrClosed
	w.closeOnce.Do(func() {
		err = nil
		ids, listErr := w.store.List(ctx)
		if listErr != nil {
			err = fmt.Errorf("failed to list sessions: %w", listErr)
			return
		}
		for _, id := range ids {
			if _, delErr := w.store.Delete(ctx, id); delErr != nil {
				err = errors.Join(err, delErr)
			}
		}
		w.logger.Debug("Wizard closed", "sessions", len(ids))
	})
	return err
}
