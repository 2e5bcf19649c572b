package client

import (
	"errors"
	"fmt"
	"log/slog"
)

type statusConfig struct {
	eventLimit int
	logger     *slog.Logger
}

// StatusOption configures a [StatusStore].
type StatusOption func(*statusConfig) error

// WithEventLimit sets how many player events the store retains.
//
// Defaults to 100.
func WithEventLimit(n int) StatusOption {
	return func(c *statusConfig) error {
		if n <= 0 {
			return fmt.Errorf("event limit must be positive, got %d", n)
		}
		c.eventLimit = n
		return nil
	}
}

// WithStatusLogger sets the logger used by the status store.
//
// Defaults to slog.Default() if not set.
func WithStatusLogger(logger *slog.Logger) StatusOption {
	return func(c *statusConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
