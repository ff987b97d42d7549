package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/agentwizard/pkg/decompose"
	"github.com/aretw0/agentwizard/pkg/llm"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. AGENTWIZARD_MODEL.
const EnvPrefix = "AGENTWIZARD"

// Settings is the resolved runtime configuration.
type Settings struct {
	Model             string        `mapstructure:"model"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Temperature       float64       `mapstructure:"temperature"`
	SystemPrompt      string        `mapstructure:"system_prompt"`
	Debug             bool          `mapstructure:"debug"`
	BaseURL           string        `mapstructure:"base_url"`
	MaxRetries        int           `mapstructure:"max_retries"`
	InitialRetryDelay time.Duration `mapstructure:"initial_retry_delay"`
	MaxRetryDelay     time.Duration `mapstructure:"max_retry_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Port              string        `mapstructure:"port"`
	PromptsFile       string        `mapstructure:"prompts_file"`
	EnvFile           string        `mapstructure:"env_file"`
	LogLevel          string        `mapstructure:"log_level"`
	SerializeSessions bool          `mapstructure:"serialize_sessions"`
}

// SetDefaults registers every key with its default value. Keys must be known
// to viper for AutomaticEnv to apply during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()
	v.SetDefault("model", d.Model)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("temperature", decompose.DefaultTemperature)
	v.SetDefault("system_prompt", "")
	v.SetDefault("debug", false)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("initial_retry_delay", d.InitialRetryDelay)
	v.SetDefault("max_retry_delay", d.MaxRetryDelay)
	v.SetDefault("requests_per_second", 0.0)
	v.SetDefault("timeout", d.RequestTimeout)
	v.SetDefault("port", "8080")
	v.SetDefault("prompts_file", "")
	v.SetDefault("env_file", ".env")
	v.SetDefault("log_level", "info")
	v.SetDefault("serialize_sessions", false)
}

// NewViper returns a viper instance with defaults and environment overrides.
// configFile is optional; when set it must exist.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load decodes settings from v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// LLMConfig converts the settings into a client configuration.
func (s Settings) LLMConfig() llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Model = s.Model
	cfg.MaxTokens = s.MaxTokens
	cfg.Temperature = s.Temperature
	cfg.SystemPrompt = s.SystemPrompt
	cfg.Debug = s.Debug
	cfg.BaseURL = s.BaseURL
	cfg.MaxRetries = s.MaxRetries
	cfg.InitialRetryDelay = s.InitialRetryDelay
	cfg.MaxRetryDelay = s.MaxRetryDelay
	cfg.RequestsPerSecond = s.RequestsPerSecond
	if s.Timeout > 0 {
		cfg.ConnectTimeout = s.Timeout
		cfg.RequestTimeout = s.Timeout
	}
	return cfg
}

// Level maps LogLevel to a slog level. Debug forces slog.LevelDebug.
func (s Settings) Level() slog.Level {
	if s.Debug {
		return slog.LevelDebug
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
