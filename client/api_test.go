package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aetheriusmc/aethergate/protocol"
)

func TestNewAPI_Validation(t *testing.T) {
	tests := []struct {
		name string
		url  string
		opts []APIOption
	}{
		{name: "empty url", url: ""},
		{name: "bad scheme", url: "ws://localhost:8080"},
		{name: "unparseable url", url: "http://local host"},
		{name: "zero timeout", url: "http://localhost:8080", opts: []APIOption{WithTimeout(0)}},
		{name: "nil http client", url: "http://localhost:8080", opts: []APIOption{WithHTTPClient(nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAPI(tt.url, tt.opts...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAPI_Health(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/health" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(protocol.HealthResponse{
			Status:               "healthy",
			CoreConnected:        true,
			WebSocketConnections: 2,
		})
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	health, err := api.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Status != "healthy" || !health.CoreConnected || health.WebSocketConnections != 2 {
		t.Errorf("unexpected response: %+v", health)
	}
}

func TestAPI_Overview(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/dashboard/overview" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(protocol.Overview{
			ServerStatus: protocol.ServerStatus{IsRunning: true, PlayerCount: 3},
			Statistics:   protocol.Statistics{TotalPlayers: 3},
			Timestamp:    protocol.Now(),
		})
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	overview, err := api.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if overview.ServerStatus.PlayerCount != 3 || overview.Statistics.TotalPlayers != 3 {
		t.Errorf("unexpected overview: %+v", overview)
	}
}

func TestAPI_Players(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/players" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]protocol.Player{
			{UUID: "u-1", Name: "Alice", Online: true},
			{UUID: "u-2", Name: "Bob", Online: true},
		})
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	players, err := api.Players(context.Background())
	if err != nil {
		t.Fatalf("Players failed: %v", err)
	}
	if len(players) != 2 || players[0].Name != "Alice" || players[1].Name != "Bob" {
		t.Errorf("unexpected players: %+v", players)
	}
}

func TestAPI_Metrics(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/server/metrics" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("hours"); got != "6" {
			t.Errorf("expected hours=6, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(protocol.MetricsResponse{
			Metrics:         []protocol.MetricPoint{{TPS: 20.0}},
			IntervalMinutes: 1,
			Hours:           6,
		})
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	metrics, err := api.Metrics(context.Background(), 6)
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}
	if len(metrics.Metrics) != 1 || metrics.Hours != 6 {
		t.Errorf("unexpected metrics: %+v", metrics)
	}
}

func TestAPI_ExecuteCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/console/command" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if req["command"] != "say hi" {
			t.Errorf("unexpected command: %q", req["command"])
		}
		_ = json.NewEncoder(w).Encode(protocol.ControlResult{Success: true, Message: "Broadcasted: hi"})
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	res, err := api.ExecuteCommand(context.Background(), "say hi")
	if err != nil {
		t.Fatalf("ExecuteCommand failed: %v", err)
	}
	if !res.Success || res.Message != "Broadcasted: hi" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestAPI_ConsoleHistory(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("expected limit=50, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(protocol.ConsoleHistoryResponse{
			History: []protocol.ConsoleLine{{Message: "one"}},
			Total:   1,
			Limit:   50,
		})
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	history, err := api.ConsoleHistory(context.Background(), 50)
	if err != nil {
		t.Fatalf("ConsoleHistory failed: %v", err)
	}
	if len(history.History) != 1 || history.Total != 1 {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestAPI_ServerControl(t *testing.T) {
	var path atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		path.Store(r.URL.Path)
		_ = json.NewEncoder(w).Encode(protocol.ControlResult{Success: true})
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	calls := []struct {
		name string
		call func(context.Context) (protocol.ControlResult, error)
		path string
	}{
		{"start", api.StartServer, "/api/v1/server/start"},
		{"stop", api.StopServer, "/api/v1/server/stop"},
		{"restart", api.RestartServer, "/api/v1/server/restart"},
	}
	for _, c := range calls {
		t.Run(c.name, func(t *testing.T) {
			res, err := c.call(context.Background())
			if err != nil {
				t.Fatalf("%s failed: %v", c.name, err)
			}
			if !res.Success {
				t.Errorf("expected success")
			}
			if got := path.Load(); got != c.path {
				t.Errorf("expected path %q, got %q", c.path, got)
			}
		})
	}
}

func TestAPI_PlayerActions(t *testing.T) {
	type seen struct {
		path string
		body string
	}
	requests := make(chan seen, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/players/{name}/{action}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- seen{path: r.URL.Path, body: string(body)}
		_ = json.NewEncoder(w).Encode(protocol.ControlResult{Success: true})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	ctx := context.Background()

	if _, err := api.KickPlayer(ctx, "Steve", "griefing"); err != nil {
		t.Fatalf("KickPlayer failed: %v", err)
	}
	got := <-requests
	if got.path != "/api/v1/players/Steve/kick" {
		t.Errorf("unexpected path: %q", got.path)
	}
	if !strings.Contains(got.body, `"reason":"griefing"`) {
		t.Errorf("expected the reason in the body, got %q", got.body)
	}

	// an empty reason sends no body at all, the gateway applies its default
	if _, err := api.BanPlayer(ctx, "Steve", ""); err != nil {
		t.Fatalf("BanPlayer failed: %v", err)
	}
	got = <-requests
	if got.path != "/api/v1/players/Steve/ban" {
		t.Errorf("unexpected path: %q", got.path)
	}
	if got.body != "" {
		t.Errorf("expected an empty body, got %q", got.body)
	}

	if _, err := api.OpPlayer(ctx, "Steve"); err != nil {
		t.Fatalf("OpPlayer failed: %v", err)
	}
	if got = <-requests; got.path != "/api/v1/players/Steve/op" {
		t.Errorf("unexpected path: %q", got.path)
	}

	if _, err := api.DeopPlayer(ctx, "Steve"); err != nil {
		t.Fatalf("DeopPlayer failed: %v", err)
	}
	if got = <-requests; got.path != "/api/v1/players/Steve/deop" {
		t.Errorf("unexpected path: %q", got.path)
	}
}

func TestAPI_PlayerActionEscapesName(t *testing.T) {
	mux := http.NewServeMux()
	names := make(chan string, 1)
	mux.HandleFunc("POST /api/v1/players/{name}/kick", func(w http.ResponseWriter, r *http.Request) {
		names <- r.PathValue("name")
		_ = json.NewEncoder(w).Encode(protocol.ControlResult{Success: true})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	if _, err := api.KickPlayer(context.Background(), "Señor X", ""); err != nil {
		t.Fatalf("KickPlayer failed: %v", err)
	}
	if got := <-names; got != "Señor X" {
		t.Errorf("name did not round-trip, got %q", got)
	}
}

func TestAPI_PlayerActionEmptyName(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	if _, err := api.KickPlayer(context.Background(), "", "x"); err == nil {
		t.Error("expected an error for an empty name")
	}
	if hits.Load() != 0 {
		t.Errorf("expected no request, server saw %d", hits.Load())
	}
}

func TestAPI_ErrorResponses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/server/status":
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Core is not available"}`))
		case "/api/v1/console/command":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Command cannot be empty","detail":"whitespace only"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("not json"))
		}
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL)
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	ctx := context.Background()

	_, err = api.ServerStatus(ctx)
	if err == nil || !strings.Contains(err.Error(), "Core is not available") {
		t.Errorf("expected the gateway error message, got %v", err)
	}

	_, err = api.ExecuteCommand(ctx, "  ")
	if err == nil || !strings.Contains(err.Error(), "Command cannot be empty") || !strings.Contains(err.Error(), "whitespace only") {
		t.Errorf("expected error and detail, got %v", err)
	}

	// a non-JSON error body falls back to the status code
	_, err = api.Health(ctx)
	if err == nil || !strings.Contains(err.Error(), "unexpected status 404") {
		t.Errorf("expected a status fallback, got %v", err)
	}
}

func TestAPI_RequestTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	start := time.Now()
	if _, err := api.Health(context.Background()); err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestAPI_TrailingSlashBaseURL(t *testing.T) {
	paths := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		_ = json.NewEncoder(w).Encode(protocol.HealthResponse{Status: "healthy"})
	}))
	defer ts.Close()

	api, err := NewAPI(ts.URL + "/")
	if err != nil {
		t.Fatalf("failed to create api: %v", err)
	}
	defer api.Close()

	if _, err := api.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if got := <-paths; got != "/health" {
		t.Errorf("expected /health, got %q", got)
	}
}
