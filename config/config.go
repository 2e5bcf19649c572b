// Package config provides YAML configuration parsing for AetherGate.
//
// This package enables running the gateway and its command line tools from a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	listen_addr: ":8080"
//
//	server:
//	  version: "1.20.1"
//	  max_players: 20
//
//	realtime:
//	  status_interval: 5s
//	  dashboard_interval: 10s
//	  console_feed: true
//
//	client:
//	  api_url: http://localhost:8080
//	  ws_url: ws://localhost:8080
//	  max_reconnect_attempts: 5
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// minInterval is the minimum allowed broadcast or heartbeat interval.
	// This prevents accidental hot loops from an overly aggressive config.
	minInterval = 1 * time.Second

	// maxInterval caps broadcast intervals; beyond this the frontend data
	// is too stale to be useful.
	maxInterval = 1 * time.Hour

	// maxReconnectAttempts caps the client retry budget.
	maxReconnectAttempts = 100
)

// Config is the root configuration structure for AetherGate.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// ListenAddr is the address the gateway's HTTP server binds to.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}.
	// Defaults to ":8080".
	ListenAddr string `yaml:"listen_addr"`

	// Server configures the simulated server core.
	Server ServerConfig `yaml:"server"`

	// Realtime configures the websocket push loops.
	Realtime RealtimeConfig `yaml:"realtime"`

	// Client configures the SDK client used by the command line tools.
	Client ClientConfig `yaml:"client"`
}

// ServerConfig configures the simulated server core.
type ServerConfig struct {
	// Version is the version string reported in status updates.
	// Defaults to "1.20.1".
	Version string `yaml:"version"`

	// MaxPlayers is the reported player capacity. Defaults to 20.
	MaxPlayers int `yaml:"max_players"`
}

// RealtimeConfig configures the gateway's periodic broadcasts.
type RealtimeConfig struct {
	// StatusInterval is the time between status snapshots on the status
	// channel. Accepts duration strings like "5s", "1m". Defaults to 5s.
	StatusInterval Duration `yaml:"status_interval"`

	// DashboardInterval is the time between dashboard summaries and
	// performance samples on the dashboard channel. Defaults to 10s.
	DashboardInterval Duration `yaml:"dashboard_interval"`

	// ConsoleFeed enables the simulated console log feed. Defaults to
	// true when omitted.
	ConsoleFeed *bool `yaml:"console_feed"`
}

// ClientConfig configures the SDK client used by the gateway's command line
// tools (tail, status and friends).
type ClientConfig struct {
	// APIURL is the base URL of the gateway's REST API.
	// Supports environment variable substitution.
	// Defaults to "http://localhost:8080".
	APIURL string `yaml:"api_url"`

	// WSURL is the base URL of the gateway's websocket endpoints; the
	// channel path (/ws/console etc.) is appended by the client.
	// Supports environment variable substitution.
	// Defaults to "ws://localhost:8080".
	WSURL string `yaml:"ws_url"`

	// HeartbeatInterval is the time between client pings. Defaults to 30s.
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`

	// ReconnectBaseDelay is the delay before the first reconnection
	// attempt; subsequent attempts back off exponentially. Defaults to 1s.
	ReconnectBaseDelay Duration `yaml:"reconnect_base_delay"`

	// MaxReconnectAttempts is the number of reconnection attempts before
	// the client gives up. Defaults to 5.
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts"`

	// RequestTimeout is the per-request timeout for REST calls.
	// Defaults to 10s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// ConsoleHistoryLimit is how many console lines the client retains.
	// Defaults to 1000.
	ConsoleHistoryLimit int `yaml:"console_history_limit"`

	// ConsoleDisplayLimit caps how many of the retained lines Recent()
	// returns. Independent of the history limit. Defaults to 500.
	ConsoleDisplayLimit int `yaml:"console_display_limit"`

	// CommandHistoryLimit is how many sent commands the client retains.
	// Defaults to 50.
	CommandHistoryLimit int `yaml:"command_history_limit"`

	// PerformanceSeriesLimit is how many performance samples the client
	// retains for charting. Defaults to 50.
	PerformanceSeriesLimit int `yaml:"performance_series_limit"`

	// PollInterval is the time between periodic overview fetches.
	// Defaults to 30s.
	PollInterval Duration `yaml:"poll_interval"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in ListenAddr, APIURL and WSURL.
// Defaults are applied for every omitted field, so an empty document is a
// valid configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in every omitted field.
func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Server.Version == "" {
		c.Server.Version = "1.20.1"
	}
	if c.Server.MaxPlayers == 0 {
		c.Server.MaxPlayers = 20
	}
	if c.Realtime.StatusInterval == 0 {
		c.Realtime.StatusInterval = Duration(5 * time.Second)
	}
	if c.Realtime.DashboardInterval == 0 {
		c.Realtime.DashboardInterval = Duration(10 * time.Second)
	}
	if c.Realtime.ConsoleFeed == nil {
		enabled := true
		c.Realtime.ConsoleFeed = &enabled
	}
	if c.Client.APIURL == "" {
		c.Client.APIURL = "http://localhost:8080"
	}
	if c.Client.WSURL == "" {
		c.Client.WSURL = "ws://localhost:8080"
	}
	if c.Client.HeartbeatInterval == 0 {
		c.Client.HeartbeatInterval = Duration(30 * time.Second)
	}
	if c.Client.ReconnectBaseDelay == 0 {
		c.Client.ReconnectBaseDelay = Duration(1 * time.Second)
	}
	if c.Client.MaxReconnectAttempts == 0 {
		c.Client.MaxReconnectAttempts = 5
	}
	if c.Client.RequestTimeout == 0 {
		c.Client.RequestTimeout = Duration(10 * time.Second)
	}
	if c.Client.ConsoleHistoryLimit == 0 {
		c.Client.ConsoleHistoryLimit = 1000
	}
	if c.Client.ConsoleDisplayLimit == 0 {
		c.Client.ConsoleDisplayLimit = 500
	}
	if c.Client.CommandHistoryLimit == 0 {
		c.Client.CommandHistoryLimit = 50
	}
	if c.Client.PerformanceSeriesLimit == 0 {
		c.Client.PerformanceSeriesLimit = 50
	}
	if c.Client.PollInterval == 0 {
		c.Client.PollInterval = Duration(30 * time.Second)
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	expanded, err := expandEnvVars(c.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen_addr: %w", err)
	}
	c.ListenAddr = expanded
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}

	if c.Server.MaxPlayers < 0 {
		return fmt.Errorf("server: max_players cannot be negative, got %d", c.Server.MaxPlayers)
	}

	if err := validateInterval("realtime: status_interval", c.Realtime.StatusInterval); err != nil {
		return err
	}
	if err := validateInterval("realtime: dashboard_interval", c.Realtime.DashboardInterval); err != nil {
		return err
	}

	expanded, err = expandEnvVars(c.Client.APIURL)
	if err != nil {
		return fmt.Errorf("client: api_url: %w", err)
	}
	c.Client.APIURL = expanded
	if err := validateURLScheme("client: api_url", c.Client.APIURL, "http", "https"); err != nil {
		return err
	}

	expanded, err = expandEnvVars(c.Client.WSURL)
	if err != nil {
		return fmt.Errorf("client: ws_url: %w", err)
	}
	c.Client.WSURL = expanded
	if err := validateURLScheme("client: ws_url", c.Client.WSURL, "ws", "wss"); err != nil {
		return err
	}

	if err := validateInterval("client: heartbeat_interval", c.Client.HeartbeatInterval); err != nil {
		return err
	}
	if c.Client.ReconnectBaseDelay.Duration() < 100*time.Millisecond {
		return fmt.Errorf("client: reconnect_base_delay must be at least 100ms, got %s",
			c.Client.ReconnectBaseDelay.Duration())
	}
	if c.Client.MaxReconnectAttempts < 1 || c.Client.MaxReconnectAttempts > maxReconnectAttempts {
		return fmt.Errorf("client: max_reconnect_attempts must be between 1 and %d, got %d",
			maxReconnectAttempts, c.Client.MaxReconnectAttempts)
	}
	if c.Client.RequestTimeout.Duration() < time.Second {
		return fmt.Errorf("client: request_timeout must be at least 1s, got %s",
			c.Client.RequestTimeout.Duration())
	}

	limits := []struct {
		field string
		value int
	}{
		{"console_history_limit", c.Client.ConsoleHistoryLimit},
		{"console_display_limit", c.Client.ConsoleDisplayLimit},
		{"command_history_limit", c.Client.CommandHistoryLimit},
		{"performance_series_limit", c.Client.PerformanceSeriesLimit},
	}
	for _, l := range limits {
		if l.value < 0 {
			return fmt.Errorf("client: %s cannot be negative, got %d", l.field, l.value)
		}
	}
	if err := validateInterval("client: poll_interval", c.Client.PollInterval); err != nil {
		return err
	}

	return nil
}

// validateInterval enforces the shared interval bounds.
func validateInterval(field string, d Duration) error {
	if d.Duration() < minInterval {
		return fmt.Errorf("%s must be at least %s, got %s", field, minInterval, d.Duration())
	}
	if d.Duration() > maxInterval {
		return fmt.Errorf("%s must not exceed %s, got %s", field, maxInterval, d.Duration())
	}
	return nil
}

// validateURLScheme checks that the URL parses and uses one of the allowed schemes.
func validateURLScheme(field, raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("%s: url must have a scheme (e.g. %s://)", field, schemes[0])
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s: url scheme must be one of %v, got %q", field, schemes, parsed.Scheme)
}
