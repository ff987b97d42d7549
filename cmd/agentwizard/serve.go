package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/agentwizard/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves the agent creation wizard as a JSON API over HTTP, with /health, /info, /openapi.yaml and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := setup(cmd)
		if err != nil {
			return err
		}
		logger := deps.logger

		if _, err := httpAdapter.LoadSpec(cmd.Context()); err != nil {
			return err
		}

		handler := httpAdapter.NewHandler(deps.wizard,
			httpAdapter.WithLogger(logger.With("component", "http")),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{})),
		)

		srv := &http.Server{
			Addr:              ":" + deps.settings.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting Agent Wizard Server", "address", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "error", err)
				}
			}
			if err := deps.wizard.Close(ctx); err != nil {
				logger.Warn("Failed to clear sessions", "error", err)
			}
			logger.Info("Agent Wizard Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
