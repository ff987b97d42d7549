package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/subosito/gotenv"
)

const (
	ClaudeKeyName = "CLAUDE_API_KEY"
	OpenAIKeyName = "OPENAI_API_KEY"
)

// Secrets resolves service credentials on first use.
//
// Lookup order: values passed to Init, then the dotenv file, then the process
// environment. Safe for concurrent use.
type Secrets struct {
	mu       sync.Mutex
	explicit map[string]string
	envFile  string
	lookup   func(string) (string, bool)

	loaded bool
	dotenv gotenv.Env
}

// SecretsOption configures Secrets.
type SecretsOption func(*Secrets)

// WithEnvFile sets the dotenv path. An empty path disables the file.
func WithEnvFile(path string) SecretsOption {
	return func(s *Secrets) {
		s.envFile = path
	}
}

// WithLookup replaces os.LookupEnv.
func WithLookup(fn func(string) (string, bool)) SecretsOption {
	return func(s *Secrets) {
		s.lookup = fn
	}
}

// NewSecrets creates a resolver reading ".env" by default.
func NewSecrets(opts ...SecretsOption) *Secrets {
	s := &Secrets{
		explicit: make(map[string]string),
		envFile:  ".env",
		lookup:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init sets explicit values, which take precedence over every other source.
// Empty arguments are ignored.
func (s *Secrets) Init(claudeKey, openAIKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if claudeKey != "" {
		s.explicit[ClaudeKeyName] = claudeKey
	}
	if openAIKey != "" {
		s.explicit[OpenAIKeyName] = openAIKey
	}
}

// ClaudeKey returns the Anthropic credential.
func (s *Secrets) ClaudeKey() (string, error) {
	return s.Get(ClaudeKeyName)
}

// OpenAIKey returns the OpenAI credential.
func (s *Secrets) OpenAIKey() (string, error) {
	return s.Get(OpenAIKeyName)
}

// Get resolves a named secret or fails with *domain.ConfigurationError.
func (s *Secrets) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v := s.explicit[name]; v != "" {
		return v, nil
	}
	if err := s.loadDotenv(); err != nil {
		return "", err
	}
	if v := strings.TrimSpace(s.dotenv[name]); v != "" {
		return v, nil
	}
	if v, ok := s.lookup(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return "", &domain.ConfigurationError{Key: name}
}

// loadDotenv reads the file once. A missing file counts as empty.
func (s *Secrets) loadDotenv() error {
	if s.loaded || s.envFile == "" {
		return nil
	}
	env, err := gotenv.Read(s.envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", s.envFile, err)
	}
	s.dotenv = env
	s.loaded = true
	return nil
}
