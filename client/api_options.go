package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type apiConfig struct {
	timeout    time.Duration
	httpClient *http.Client
}

// APIOption configures an [API].
type APIOption func(*apiConfig) error

// WithTimeout sets the per-request timeout applied to every API call.
//
// Defaults to 10 seconds.
func WithTimeout(d time.Duration) APIOption {
	return func(c *apiConfig) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		c.timeout = d
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client, bypassing the default
// pooled transport. Useful for tests and custom TLS setups.
func WithHTTPClient(client *http.Client) APIOption {
	return func(c *apiConfig) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}
