package aethergate

import (
	"errors"
	"log/slog"
	"time"
)

// gwConfig holds mutable state during Gateway construction.
type gwConfig struct {
	listenAddr        string
	version           string
	maxPlayers        int
	statusInterval    time.Duration
	dashboardInterval time.Duration
	consoleFeed       bool
	logger            *slog.Logger
}

// Option is a function that configures a [Gateway] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithListenAddr], [WithServerVersion], [WithMaxPlayers],
// [WithStatusInterval], [WithDashboardInterval], [WithConsoleFeed],
// [WithLogger].
type Option func(*gwConfig) error

// WithListenAddr sets the address the HTTP server binds to.
//
// Accepts any address understood by net.Listen, such as ":8080" or
// "127.0.0.1:9090". Defaults to ":8080" if not specified.
//
// Example:
//
//	gw, err := aethergate.New(
//	    aethergate.WithListenAddr(":9090"),
//	)
//
// Returns an error if the address is empty.
func WithListenAddr(addr string) Option {
	return func(cfg *gwConfig) error {
		if addr == "" {
			return errors.New("listen address cannot be empty")
		}
		cfg.listenAddr = addr
		return nil
	}
}

// WithServerVersion sets the version string the simulated server reports
// in status updates. Defaults to "1.20.1" if not specified.
//
// Example:
//
//	gw, err := aethergate.New(
//	    aethergate.WithServerVersion("1.21.4"),
//	)
//
// Returns an error if the version is empty.
func WithServerVersion(version string) Option {
	return func(cfg *gwConfig) error {
		if version == "" {
			return errors.New("server version cannot be empty")
		}
		cfg.version = version
		return nil
	}
}

// WithMaxPlayers sets the player capacity the simulated server reports.
// Defaults to 20 if not specified.
//
// Example:
//
//	gw, err := aethergate.New(
//	    aethergate.WithMaxPlayers(100),
//	)
//
// Returns an error if the value is zero or negative.
func WithMaxPlayers(n int) Option {
	return func(cfg *gwConfig) error {
		if n <= 0 {
			return errors.New("max players must be positive")
		}
		cfg.maxPlayers = n
		return nil
	}
}

// WithStatusInterval sets how often the gateway broadcasts a status snapshot
// to websocket subscribers on the status channel. Defaults to 5 seconds if
// not specified.
//
// Example:
//
//	gw, err := aethergate.New(
//	    aethergate.WithStatusInterval(10 * time.Second),
//	)
//
// Returns an error if the duration is zero or negative.
func WithStatusInterval(d time.Duration) Option {
	return func(cfg *gwConfig) error {
		if d <= 0 {
			return errors.New("status interval must be positive")
		}
		cfg.statusInterval = d
		return nil
	}
}

// WithDashboardInterval sets how often the gateway broadcasts a dashboard
// summary and a performance sample to websocket subscribers on the dashboard
// channel. Defaults to 10 seconds if not specified.
//
// Example:
//
//	gw, err := aethergate.New(
//	    aethergate.WithDashboardInterval(30 * time.Second),
//	)
//
// Returns an error if the duration is zero or negative.
func WithDashboardInterval(d time.Duration) Option {
	return func(cfg *gwConfig) error {
		if d <= 0 {
			return errors.New("dashboard interval must be positive")
		}
		cfg.dashboardInterval = d
		return nil
	}
}

// WithConsoleFeed enables or disables the simulated console log feed.
//
// When enabled, the gateway periodically emits synthetic server log lines
// to console subscribers, which is useful for demos and frontend work
// against a gateway with no real traffic. Enabled by default.
//
// Example:
//
//	gw, err := aethergate.New(
//	    aethergate.WithConsoleFeed(false),
//	)
func WithConsoleFeed(enabled bool) Option {
	return func(cfg *gwConfig) error {
		cfg.consoleFeed = enabled
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Gateway instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	gw, err := aethergate.New(
//	    aethergate.WithLogger(logger),
//	)
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *gwConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
