package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/agentwizard/internal/logging"
	"github.com/aretw0/agentwizard/pkg/domain"
	"golang.org/x/time/rate"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 64 << 20

// KeySource resolves the API key on first use.
type KeySource func() (string, error)

// StaticKey returns a KeySource for a fixed key.
func StaticKey(key string) KeySource {
	return func() (string, error) {
		if key == "" {
			return "", &domain.ConfigurationError{Key: "CLAUDE_API_KEY"}
		}
		return key, nil
	}
}

// Client talks to the Anthropic messages API, retrying throttled and
// transient failures. A Client is safe for concurrent use.
type Client struct {
	cfg        Config
	key        KeySource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	jitter     func() float64
	now        func() time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the transport built from the config timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers attempt and retry callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = hooks
	}
}

// WithJitter replaces the random source used for backoff jitter.
// The function must return values in [0, 1).
func WithJitter(fn func() float64) Option {
	return func(c *Client) {
		c.jitter = fn
	}
}

// NewClient creates a Client. The key is resolved lazily on the first call.
func NewClient(cfg Config, key KeySource, opts ...Option) *Client {
	cfg = cfg.normalized()
	c := &Client{
		cfg:    cfg,
		key:    key,
		logger: logging.NewNop(),
		jitter: rand.Float64,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				Proxy:       http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
			},
		}
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Send returns the extracted completion text for the prompts.
// An empty systemPrompt falls back to Config.SystemPrompt.
func (c *Client) Send(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Complete sends the prompts and returns the decoded response.
//
// It blocks until a response succeeds, a failure is not retryable, retries
// are exhausted, or ctx is cancelled while waiting between attempts.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (*Response, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if c.key == nil {
		return nil, &domain.ConfigurationError{Key: "CLAUDE_API_KEY"}
	}
	apiKey, err := c.key()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(c.buildRequest(systemPrompt, userPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, canceled(ctx, err)
			}
		}

		start := c.now()
		resp, status, err := c.do(ctx, apiKey, body)
		if c.hooks.OnAttempt != nil {
			c.hooks.OnAttempt(ctx, &domain.AttemptEvent{
				EventBase: domain.EventBase{Timestamp: c.now(), Type: domain.EventAttempt},
				Attempt:   attempt + 1,
				Status:    status,
				Duration:  c.now().Sub(start),
				Err:       err,
			})
		}
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, canceled(ctx, err)
		}
		if !domain.IsRetryable(err) {
			c.logger.Error("Completion request failed", "error", err, "status", status)
			return nil, err
		}

		lastErr = err
		if attempt == c.cfg.MaxRetries {
			break
		}

		delay := c.retryDelay(attempt, err)
		reason := retryReason(err)
		c.logger.Warn("Completion request failed, retrying",
			"reason", reason,
			"delay", delay,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"error", err,
		)
		if c.hooks.OnRetry != nil {
			c.hooks.OnRetry(ctx, &domain.RetryEvent{
				EventBase: domain.EventBase{Timestamp: c.now(), Type: domain.EventRetry},
				Attempt:   attempt + 1,
				Reason:    reason,
				Delay:     delay,
			})
		}

		select {
		case <-ctx.Done():
			return nil, canceled(ctx, errors.New("interrupted during retry delay"))
		case <-time.After(delay):
		}
	}

	c.logger.Error("Completion retries exhausted", "error", lastErr, "max_retries", c.cfg.MaxRetries)
	return nil, surface(lastErr)
}

func (c *Client) buildRequest(systemPrompt, userPrompt string) request {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = c.cfg.SystemPrompt
	}
	messages := make([]Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userPrompt})

	return request{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages:    messages,
	}
}

// do performs a single attempt. status is zero when no response arrived.
func (c *Client) do(ctx context.Context, apiKey string, body []byte) (*Response, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", APIVersion)
	req.Header.Set("anthropic-beta", BetaOutput128k)
	req.Header.Set("content-type", "application/json")

	if c.cfg.Debug {
		c.logger.Debug("Completion request", "url", c.cfg.BaseURL, "model", c.cfg.Model)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &domain.TransportError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, &domain.TransportError{Op: "read response", Err: err}
	}
	if c.cfg.Debug {
		c.logger.Debug("Completion response", "status", resp.StatusCode, "body", string(raw))
	}

	var decoded Response
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || (decodeErr == nil && decoded.Error != nil) {
		return nil, resp.StatusCode, classify(resp, raw, decoded.Error)
	}
	if decodeErr != nil {
		return nil, resp.StatusCode, &domain.TransportError{Op: "decode response", Err: decodeErr}
	}
	return &decoded, resp.StatusCode, nil
}

// classify maps a failed response to APIError, TransportError or RateLimitError.
func classify(resp *http.Response, raw []byte, apiErr *apiError) error {
	if apiErr == nil {
		var env struct {
			Error *apiError `json:"error"`
		}
		if json.Unmarshal(raw, &env) == nil {
			apiErr = env.Error
		}
	}

	var base error
	if apiErr != nil && (apiErr.Type != "" || apiErr.Message != "") {
		base = &domain.APIError{Type: apiErr.Type, Message: apiErr.Message, Status: resp.StatusCode}
	} else {
		apiErr = nil
		base = &domain.TransportError{
			Op:  "read response",
			Err: fmt.Errorf("API call failed: %s: %s", resp.Status, truncate(string(raw), 512)),
		}
	}

	if isRateLimited(resp.StatusCode, resp.Header, apiErr) {
		return &domain.RateLimitError{
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Err:        base,
		}
	}
	return base
}

func canceled(ctx context.Context, cause error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w: %w", domain.ErrCanceled, err, cause)
	}
	return fmt.Errorf("%w: %w", domain.ErrCanceled, cause)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
