package client

import (
	"errors"
	"fmt"
	"log/slog"
)

type consoleConfig struct {
	historyLimit int
	displayLimit int
	cmdLimit     int
	logger       *slog.Logger
}

// ConsoleOption configures a [ConsoleStore].
type ConsoleOption func(*consoleConfig) error

// WithHistoryLimit sets how many console lines the store retains.
//
// Defaults to 1000.
func WithHistoryLimit(n int) ConsoleOption {
	return func(c *consoleConfig) error {
		if n <= 0 {
			return fmt.Errorf("history limit must be positive, got %d", n)
		}
		c.historyLimit = n
		return nil
	}
}

// WithDisplayLimit caps how many lines [ConsoleStore.Recent] returns.
//
// The display limit is independent of the history limit; it may be smaller
// or larger. Defaults to 500.
func WithDisplayLimit(n int) ConsoleOption {
	return func(c *consoleConfig) error {
		if n <= 0 {
			return fmt.Errorf("display limit must be positive, got %d", n)
		}
		c.displayLimit = n
		return nil
	}
}

// WithCommandHistoryLimit sets how many sent commands the store retains.
//
// Defaults to 50.
func WithCommandHistoryLimit(n int) ConsoleOption {
	return func(c *consoleConfig) error {
		if n <= 0 {
			return fmt.Errorf("command history limit must be positive, got %d", n)
		}
		c.cmdLimit = n
		return nil
	}
}

// WithConsoleLogger sets the logger used by the console store.
//
// Defaults to slog.Default() if not set.
func WithConsoleLogger(logger *slog.Logger) ConsoleOption {
	return func(c *consoleConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
