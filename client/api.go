package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aetheriusmc/aethergate/protocol"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits shared by all API instances
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
	defaultRequestTimeout      = 10 * time.Second
)

// API is a typed HTTP client for the gateway's REST endpoints.
//
// Each call applies a per-request timeout via context on top of whatever
// deadline the caller's context carries. Response bodies are limited to 1MB.
type API struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewAPI creates an [API] rooted at baseURL (e.g. "http://localhost:8080").
//
// The client is configured with connection pooling limits:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
func NewAPI(baseURL string, opts ...APIOption) (*API, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme must be http or https, got %q", u.Scheme)
	}

	cfg := &apiConfig{timeout: defaultRequestTimeout}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			// no global timeout, deadlines are applied per request
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		}
	}

	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    cfg.timeout,
	}, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (a *API) Close() {
	if a == nil || a.httpClient == nil {
		return
	}
	if transport, ok := a.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// Health fetches /health.
func (a *API) Health(ctx context.Context) (protocol.HealthResponse, error) {
	var out protocol.HealthResponse
	err := a.get(ctx, "/health", &out)
	return out, err
}

// Overview fetches the aggregate dashboard snapshot.
func (a *API) Overview(ctx context.Context) (protocol.Overview, error) {
	var out protocol.Overview
	err := a.get(ctx, "/api/v1/dashboard/overview", &out)
	return out, err
}

// ServerStatus fetches the current server status.
func (a *API) ServerStatus(ctx context.Context) (protocol.ServerStatus, error) {
	var out protocol.ServerStatus
	err := a.get(ctx, "/api/v1/server/status", &out)
	return out, err
}

// Players fetches the list of online players.
func (a *API) Players(ctx context.Context) ([]protocol.Player, error) {
	var out []protocol.Player
	err := a.get(ctx, "/api/v1/players", &out)
	return out, err
}

// Metrics fetches the performance series covering the trailing window of
// hours (the gateway clamps the range it supports).
func (a *API) Metrics(ctx context.Context, hours int) (protocol.MetricsResponse, error) {
	var out protocol.MetricsResponse
	err := a.get(ctx, "/api/v1/server/metrics?hours="+strconv.Itoa(hours), &out)
	return out, err
}

// StartServer asks the gateway to start the managed server.
func (a *API) StartServer(ctx context.Context) (protocol.ControlResult, error) {
	var out protocol.ControlResult
	err := a.post(ctx, "/api/v1/server/start", nil, &out)
	return out, err
}

// StopServer asks the gateway to stop the managed server.
func (a *API) StopServer(ctx context.Context) (protocol.ControlResult, error) {
	var out protocol.ControlResult
	err := a.post(ctx, "/api/v1/server/stop", nil, &out)
	return out, err
}

// RestartServer asks the gateway to restart the managed server.
func (a *API) RestartServer(ctx context.Context) (protocol.ControlResult, error) {
	var out protocol.ControlResult
	err := a.post(ctx, "/api/v1/server/restart", nil, &out)
	return out, err
}

// ExecuteCommand runs a console command through the REST interface rather
// than a console channel socket.
func (a *API) ExecuteCommand(ctx context.Context, command string) (protocol.ControlResult, error) {
	var out protocol.ControlResult
	err := a.post(ctx, "/api/v1/console/command", map[string]string{"command": command}, &out)
	return out, err
}

// ConsoleHistory fetches up to limit recent console lines, oldest first.
func (a *API) ConsoleHistory(ctx context.Context, limit int) (protocol.ConsoleHistoryResponse, error) {
	var out protocol.ConsoleHistoryResponse
	err := a.get(ctx, "/api/v1/console/history?limit="+strconv.Itoa(limit), &out)
	return out, err
}

// KickPlayer kicks a player. An empty reason uses the gateway default.
func (a *API) KickPlayer(ctx context.Context, name, reason string) (protocol.ControlResult, error) {
	return a.playerAction(ctx, name, "kick", reason)
}

// BanPlayer bans a player. An empty reason uses the gateway default.
func (a *API) BanPlayer(ctx context.Context, name, reason string) (protocol.ControlResult, error) {
	return a.playerAction(ctx, name, "ban", reason)
}

// OpPlayer grants operator status to a player.
func (a *API) OpPlayer(ctx context.Context, name string) (protocol.ControlResult, error) {
	return a.playerAction(ctx, name, "op", "")
}

// DeopPlayer revokes operator status from a player.
func (a *API) DeopPlayer(ctx context.Context, name string) (protocol.ControlResult, error) {
	return a.playerAction(ctx, name, "deop", "")
}

func (a *API) playerAction(ctx context.Context, name, action, reason string) (protocol.ControlResult, error) {
	var out protocol.ControlResult
	if name == "" {
		return out, fmt.Errorf("player name is required")
	}
	var body any
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	err := a.post(ctx, "/api/v1/players/"+url.PathEscape(name)+"/"+action, body, &out)
	return out, err
}

func (a *API) get(ctx context.Context, path string, out any) error {
	return a.do(ctx, http.MethodGet, path, nil, out)
}

func (a *API) post(ctx context.Context, path string, in, out any) error {
	return a.do(ctx, http.MethodPost, path, in, out)
}

// apiError is the gateway's JSON error body.
type apiError struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if jerr := json.Unmarshal(data, &apiErr); jerr == nil && apiErr.Error != "" {
			if apiErr.Detail != "" {
				return fmt.Errorf("%s %s: %s: %s", method, path, apiErr.Error, apiErr.Detail)
			}
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
