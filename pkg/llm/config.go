package llm

import "time"

const (
	DefaultBaseURL    = "https://api.anthropic.com/v1/messages"
	DefaultModel      = "claude-3-7-sonnet-latest"
	APIVersion        = "2023-06-01"
	BetaOutput128k    = "output-128k-2025-02-19"
	DefaultMaxTokens  = 81920
	DefaultTemp       = 0.9
	DefaultMaxRetries = 5

	DefaultInitialRetryDelay = 10 * time.Second
	DefaultMaxRetryDelay     = 120 * time.Second
	DefaultTimeout           = 18000 * time.Second
)

// Config is the immutable configuration of a Client.
// Build it once, usually from DefaultConfig, and pass it to NewClient.
type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64

	// SystemPrompt is sent when Send is called without one.
	SystemPrompt string

	// Debug logs every request and response at debug level.
	Debug bool

	// ConnectTimeout bounds dialing; RequestTimeout bounds a whole attempt.
	ConnectTimeout time.Duration
	RequestTimeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries        int
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration

	// RequestsPerSecond paces attempts on this client. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Model:             DefaultModel,
		MaxTokens:         DefaultMaxTokens,
		Temperature:       DefaultTemp,
		ConnectTimeout:    DefaultTimeout,
		RequestTimeout:    DefaultTimeout,
		MaxRetries:        DefaultMaxRetries,
		InitialRetryDelay: DefaultInitialRetryDelay,
		MaxRetryDelay:     DefaultMaxRetryDelay,
		Burst:             1,
	}
}

// normalized fills zero values with defaults.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialRetryDelay <= 0 {
		c.InitialRetryDelay = d.InitialRetryDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = d.MaxRetryDelay
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return c
}
