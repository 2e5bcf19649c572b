package main

import (
	"fmt"

	"github.com/aetheriusmc/aethergate/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an AetherGate configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  aethergate validate -c config.yaml
  aethergate validate --config /etc/aethergate/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Listen address:     %s\n", cfg.ListenAddr)
	fmt.Printf("  Server version:     %s\n", cfg.Server.Version)
	fmt.Printf("  Max players:        %d\n", cfg.Server.MaxPlayers)
	fmt.Printf("  Status interval:    %s\n", cfg.Realtime.StatusInterval.Duration())
	fmt.Printf("  Dashboard interval: %s\n", cfg.Realtime.DashboardInterval.Duration())
	fmt.Printf("  Console feed:       %t\n", *cfg.Realtime.ConsoleFeed)

	return nil
}
