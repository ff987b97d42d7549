package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/agentwizard"
	"github.com/aretw0/agentwizard/internal/config"
	"github.com/aretw0/agentwizard/internal/logging"
	"github.com/aretw0/agentwizard/pkg/decompose"
	"github.com/aretw0/agentwizard/pkg/domain"
	"github.com/aretw0/agentwizard/pkg/observability"
	"github.com/aretw0/agentwizard/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "agentwizard",
	Short: "Agent Wizard turns an objective into a plan of goals, subgoals and actions",
	Long: `Agent Wizard asks a language model how an objective is conventionally carried out,
then decomposes it into goals, subgoals and actions through a step-by-step wizard.

Configuration is read from an optional config file, AGENTWIZARD_* environment
variables and flags. The API key is read from CLAUDE_API_KEY (environment or .env).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging of model calls")
	rootCmd.PersistentFlags().String("model", "", "Model identifier")
	rootCmd.PersistentFlags().String("prompts", "", "YAML file overriding the prompt templates")
	rootCmd.PersistentFlags().String("env-file", "", "Dotenv file holding API keys")
	rootCmd.PersistentFlags().Bool("serialize-sessions", false, "Serialize concurrent operations on the same session")
}

// flagKeys maps command-line flags onto settings keys.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"debug":     "debug",
	"model":     "model",
	"prompts":   "prompts_file",
	"env-file":  "env_file",
	"port":      "port",

	"serialize-sessions": "serialize_sessions",
}

// runtimeDeps is everything a command needs to drive the wizard.
type runtimeDeps struct {
	settings config.Settings
	logger   *slog.Logger
	registry *prometheus.Registry
	wizard   *agentwizard.Wizard
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(configFile)
	if err != nil {
		return config.Settings{}, err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return config.Settings{}, fmt.Errorf("failed to bind flags: %w", bindErr)
	}
	return config.Load(v)
}

// setup resolves settings and builds a fully wired Wizard.
func setup(cmd *cobra.Command) (*runtimeDeps, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.New(settings.Level())
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	secrets := config.NewSecrets(config.WithEnvFile(settings.EnvFile))
	opts := []agentwizard.Option{
		agentwizard.WithLLMConfig(settings.LLMConfig()),
		agentwizard.WithKeySource(secrets.ClaudeKey),
		agentwizard.WithLogger(logger),
		agentwizard.WithLifecycleHooks(domain.MergeHooks(metrics.Hooks(), observability.LoggingHooks(logger))),
	}
	if settings.SerializeSessions {
		opts = append(opts, agentwizard.WithSessionLocker(session.NewLocks(session.WithLogger(logger))))
	}
	if settings.PromptsFile != "" {
		templates, err := decompose.LoadTemplates(settings.PromptsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, agentwizard.WithTemplates(templates))
	}

	wiz, err := agentwizard.New(opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("Wizard configured",
		"model", settings.Model,
		"temperature", settings.Temperature,
		"max_retries", settings.MaxRetries,
	)
	return &runtimeDeps{
		settings: settings,
		logger:   logger,
		registry: registry,
		wizard:   wiz,
	}, nil
}
