package client

import (
	"errors"
	"fmt"
	"log/slog"
)

type dashboardConfig struct {
	seriesLimit int
	logger      *slog.Logger
}

// DashboardOption configures a [DashboardStore].
type DashboardOption func(*dashboardConfig) error

// WithSeriesLimit sets how many performance samples the store retains.
//
// Defaults to 50.
func WithSeriesLimit(n int) DashboardOption {
	return func(c *dashboardConfig) error {
		if n <= 0 {
			return fmt.Errorf("series limit must be positive, got %d", n)
		}
		c.seriesLimit = n
		return nil
	}
}

// WithDashboardLogger sets the logger used by the dashboard store.
//
// Defaults to slog.Default() if not set.
func WithDashboardLogger(logger *slog.Logger) DashboardOption {
	return func(c *dashboardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
