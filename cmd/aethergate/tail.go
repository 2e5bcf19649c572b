package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/aetheriusmc/aethergate/client"
	"github.com/aetheriusmc/aethergate/config"
	"github.com/aetheriusmc/aethergate/protocol"
	"github.com/spf13/cobra"
)

// tailCmd streams console output from a running gateway.
var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Stream console output from a running gateway",
	Long: `Connect to a running gateway's console channel and print every
console line as it arrives.

The connection reconnects automatically with exponential backoff if the
gateway goes away, and exits once the retry budget is exhausted. Press
Ctrl+C to stop.

Example:
  aethergate tail
  aethergate tail --url ws://gateway.internal:8080
  aethergate tail -c config.yaml`,
	RunE: runTail,
}

func init() {
	rootCmd.AddCommand(tailCmd)

	tailCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
	tailCmd.Flags().String("url", "", "websocket base URL, e.g. ws://localhost:8080 (overrides config)")
}

func runTail(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	baseURL := cfg.Client.WSURL
	if flagURL, _ := cmd.Flags().GetString("url"); flagURL != "" {
		baseURL = flagURL
	}

	sockOpts := append(config.BuildSocketOptions(cfg), client.WithLogger(logger))
	sock, err := client.NewSocket(baseURL+protocol.ChannelConsole.Path(), sockOpts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	consoleOpts := append(config.BuildConsoleOptions(cfg), client.WithConsoleLogger(logger))
	console, err := client.NewConsoleStore(sock, consoleOpts...)
	if err != nil {
		return fmt.Errorf("failed to create console store: %w", err)
	}
	defer console.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// terminal status (not connected, not reconnecting, with an error) means
	// the retry budget is exhausted; stop tailing
	gaveUp := make(chan struct{})
	sock.OnConnectionChange(func(status client.ConnectionStatus) {
		switch {
		case status.Connected:
			logger.Info("connected", "url", sock.URL())
		case status.Reconnecting:
			logger.Warn("reconnecting", "error", status.Error)
		case status.Error != "":
			logger.Error("connection lost", "error", status.Error)
			close(gaveUp)
		}
	})

	lines := console.Subscribe()
	defer console.Unsubscribe(lines)

	if err := sock.Connect(ctx); err != nil {
		// reconnection is already scheduled, keep waiting for lines
		logger.Warn("initial connection failed", "error", err)
	}
	defer sock.Disconnect()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-gaveUp:
			return fmt.Errorf("gave up reconnecting to %s", sock.URL())
		case line := <-lines:
			fmt.Printf("[%s] [%s] %s\n", line.Timestamp, line.Level, line.Message)
		}
	}
}
