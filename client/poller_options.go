package client

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type pollerConfig struct {
	interval time.Duration
	logger   *slog.Logger
}

// PollerOption configures an [OverviewPoller].
type PollerOption func(*pollerConfig) error

// WithPollInterval sets the time between periodic overview fetches.
//
// Defaults to 30 seconds.
func WithPollInterval(d time.Duration) PollerOption {
	return func(c *pollerConfig) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %v", d)
		}
		c.interval = d
		return nil
	}
}

// WithPollLogger sets the logger used by the poller.
//
// Defaults to slog.Default() if not set.
func WithPollLogger(logger *slog.Logger) PollerOption {
	return func(c *pollerConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
