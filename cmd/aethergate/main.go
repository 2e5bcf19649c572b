// Package main is the entry point for the aethergate CLI.
//
// AetherGate can be embedded as a library (SDK) or run as a standalone
// binary with YAML configuration. This CLI provides the standalone binary
// approach, plus a console tail client for a running gateway.
//
// Usage:
//
//	aethergate serve -c config.yaml    # Start the gateway
//	aethergate validate -c config.yaml # Validate configuration
//	aethergate tail -c config.yaml     # Stream console output
//	aethergate version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "aethergate",
	Short: "A realtime management gateway for game servers",
	Long: `AetherGate is a realtime management gateway for game servers.

It serves a REST API plus websocket channels that stream console output,
status snapshots and dashboard metrics to connected frontends. The bundled
server core is simulated, so the gateway is self-contained for demos and
frontend development.

Quick start:
  1. Run: aethergate serve
  2. Point a dashboard at http://localhost:8080/api/v1
     and ws://localhost:8080/ws/console
  3. Or stream the console here: aethergate tail

Example config:
  listen_addr: ":8080"
  server:
    version: "1.20.1"
    max_players: 20
  realtime:
    status_interval: 5s`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this aethergate binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aethergate %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
