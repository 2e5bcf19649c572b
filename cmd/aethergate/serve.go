package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aetheriusmc/aethergate"
	"github.com/aetheriusmc/aethergate/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// loadConfig loads the config file from the --config flag, falling back to
// an all-defaults config when the flag is unset.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return config.Parse(nil)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// serveCmd starts the gateway server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	Long: `Start the AetherGate gateway server.

The server will:
  - Load configuration from the specified YAML file (or use defaults)
  - Serve the REST API under /api/v1 and /health
  - Serve websocket channels at /ws/console, /ws/status and /ws/dashboard
  - Push status, dashboard and console frames at the configured intervals

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  aethergate serve
  aethergate serve -c config.yaml
  aethergate serve --config /etc/aethergate/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"status_interval", cfg.Realtime.StatusInterval.Duration().String(),
		"dashboard_interval", cfg.Realtime.DashboardInterval.Duration().String(),
	)

	opts := append(config.BuildGatewayOptions(cfg), aethergate.WithLogger(logger))
	gw, err := aethergate.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- gw.Start(ctx)
	}()

	// wait for server to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
