package client

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

type socketConfig struct {
	dialer      *websocket.Dialer
	baseDelay   time.Duration
	maxAttempts int
	beatEvery   time.Duration
	logger      *slog.Logger
}

// Option configures a [Socket].
type Option func(*socketConfig) error

// WithLogger sets the logger used by the socket.
//
// Defaults to slog.Default() if not set.
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	sock, err := client.NewSocket(url, client.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *socketConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithDialer sets the websocket dialer, allowing custom handshake timeouts,
// TLS configuration, or proxies.
//
// Defaults to websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *socketConfig) error {
		if d == nil {
			return errors.New("dialer cannot be nil")
		}
		c.dialer = d
		return nil
	}
}

// WithReconnectBaseDelay sets the delay before the first reconnect attempt.
// Each subsequent attempt doubles the previous delay.
//
// Defaults to 1 second.
func WithReconnectBaseDelay(d time.Duration) Option {
	return func(c *socketConfig) error {
		if d <= 0 {
			return fmt.Errorf("reconnect base delay must be positive, got %v", d)
		}
		c.baseDelay = d
		return nil
	}
}

// WithMaxReconnectAttempts sets how many consecutive reconnect attempts are
// made before the socket gives up and reports a terminal error.
//
// Defaults to 5.
func WithMaxReconnectAttempts(n int) Option {
	return func(c *socketConfig) error {
		if n <= 0 {
			return fmt.Errorf("max reconnect attempts must be positive, got %d", n)
		}
		c.maxAttempts = n
		return nil
	}
}

// WithHeartbeatInterval sets how often a ping frame is sent while connected.
//
// Defaults to 30 seconds.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *socketConfig) error {
		if d <= 0 {
			return fmt.Errorf("heartbeat interval must be positive, got %v", d)
		}
		c.beatEvery = d
		return nil
	}
}
