package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aetheriusmc/aethergate/internal/backend"
	"github.com/aetheriusmc/aethergate/internal/store"
	"github.com/aetheriusmc/aethergate/protocol"
)

const (
	// defaults and bounds for query parameters
	defaultHistoryLimit = 100
	defaultMetricsHours = 1
	maxMetricsHours     = 24

	// overviewLogLines caps the recent_logs section of the overview.
	overviewLogLines = 10

	// fallback status served when the core cannot answer, so dashboard
	// consumers keep rendering
	fallbackMaxPlayers = 20
	fallbackMemoryMax  = 4096
)

// ConnectionCounter reports how many WebSocket connections are registered.
type ConnectionCounter interface {
	Count() int
}

// Handler serves the gateway's REST endpoints.
//
// All routes sit under /api/v1 except /health. Errors are returned as JSON
// objects with an "error" message and an optional "detail".
type Handler struct {
	api     *backend.API
	history store.Store
	conns   ConnectionCounter
	logger  *slog.Logger
}

// New creates a [Handler]. A nil logger defaults to slog.Default().
func New(api *backend.API, history store.Store, conns ConnectionCounter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		api:     api,
		history: history,
		conns:   conns,
		logger:  logger,
	}
}

// Register mounts every REST route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /api/v1/dashboard/overview", h.handleOverview)
	mux.HandleFunc("GET /api/v1/server/status", h.handleServerStatus)
	mux.HandleFunc("POST /api/v1/server/start", h.handleServerStart)
	mux.HandleFunc("POST /api/v1/server/stop", h.handleServerStop)
	mux.HandleFunc("POST /api/v1/server/restart", h.handleServerRestart)
	mux.HandleFunc("GET /api/v1/server/metrics", h.handleMetrics)
	mux.HandleFunc("GET /api/v1/players", h.handlePlayers)
	mux.HandleFunc("POST /api/v1/players/{name}/kick", h.handlePlayerKick)
	mux.HandleFunc("POST /api/v1/players/{name}/ban", h.handlePlayerBan)
	mux.HandleFunc("POST /api/v1/players/{name}/op", h.handlePlayerOp)
	mux.HandleFunc("POST /api/v1/players/{name}/deop", h.handlePlayerDeop)
	mux.HandleFunc("POST /api/v1/console/command", h.handleConsoleCommand)
	mux.HandleFunc("GET /api/v1/console/history", h.handleConsoleHistory)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, protocol.HealthResponse{
		Status:               "healthy",
		CoreConnected:        h.api.Connected(),
		WebSocketConnections: h.conns.Count(),
	})
}

// handleOverview aggregates the dashboard snapshot. A failing core degrades
// the server_status section rather than failing the whole response.
func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.api.ServerStatus(ctx)
	if err != nil {
		h.logger.Error("failed to get server status", "error", err)
		status = protocol.ServerStatus{
			MaxPlayers:  fallbackMaxPlayers,
			MemoryUsage: protocol.MemoryUsage{Max: fallbackMemoryMax},
			Timestamp:   protocol.Now(),
		}
	}

	players, err := h.api.OnlinePlayers(ctx)
	if err != nil {
		h.logger.Error("failed to get online players", "error", err)
		players = []protocol.Player{}
	}

	recent, _ := h.history.ConsoleHistory(overviewLogLines)

	h.writeJSON(w, http.StatusOK, protocol.Overview{
		ServerStatus:  status,
		OnlinePlayers: players,
		RecentLogs:    recent,
		Statistics:    backend.BuildStatistics(status, players),
		Timestamp:     protocol.Now(),
	})
}

func (h *Handler) handleServerStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireCore(w) {
		return
	}

	status, err := h.api.ServerStatus(r.Context())
	if err != nil {
		h.logger.Error("failed to get server status", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to get server status", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) handleServerStart(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "start", h.api.StartServer)
}

func (h *Handler) handleServerStop(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "stop", h.api.StopServer)
}

func (h *Handler) handleServerRestart(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, "restart", h.api.RestartServer)
}

func (h *Handler) handlePlayers(w http.ResponseWriter, r *http.Request) {
	if !h.requireCore(w) {
		return
	}

	players, err := h.api.OnlinePlayers(r.Context())
	if err != nil {
		h.logger.Error("failed to get online players", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to get players", err.Error())
		return
	}
	if players == nil {
		players = []protocol.Player{}
	}
	h.writeJSON(w, http.StatusOK, players)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	hours := defaultMetricsHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid hours parameter", "hours must be a positive integer")
			return
		}
		hours = parsed
	}
	if hours > maxMetricsHours {
		hours = maxMetricsHours
	}

	points := h.history.Metrics(time.Duration(hours) * time.Hour)
	if points == nil {
		points = []protocol.MetricPoint{}
	}
	h.writeJSON(w, http.StatusOK, protocol.MetricsResponse{
		Metrics:         points,
		IntervalMinutes: 1,
		Hours:           hours,
		Timestamp:       protocol.Now(),
	})
}

func (h *Handler) handleConsoleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if !h.requireCore(w) {
		return
	}

	res, err := h.api.SendConsoleCommand(r.Context(), req.Command)
	if err != nil {
		if errors.Is(err, backend.ErrEmptyCommand) {
			h.writeError(w, http.StatusBadRequest, "Command cannot be empty", "")
			return
		}
		h.logger.Error("command execution failed", "command", req.Command, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Command execution failed", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleConsoleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit parameter", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	lines, total := h.history.ConsoleHistory(limit)
	if lines == nil {
		lines = []protocol.ConsoleLine{}
	}
	h.writeJSON(w, http.StatusOK, protocol.ConsoleHistoryResponse{
		History: lines,
		Total:   total,
		Limit:   limit,
	})
}

func (h *Handler) handlePlayerKick(w http.ResponseWriter, r *http.Request) {
	h.playerAction(w, r, func(name, reason string) (protocol.ControlResult, error) {
		return h.api.KickPlayer(r.Context(), name, reason)
	})
}

func (h *Handler) handlePlayerBan(w http.ResponseWriter, r *http.Request) {
	h.playerAction(w, r, func(name, reason string) (protocol.ControlResult, error) {
		return h.api.BanPlayer(r.Context(), name, reason)
	})
}

func (h *Handler) handlePlayerOp(w http.ResponseWriter, r *http.Request) {
	h.playerAction(w, r, func(name, _ string) (protocol.ControlResult, error) {
		return h.api.OpPlayer(r.Context(), name)
	})
}

func (h *Handler) handlePlayerDeop(w http.ResponseWriter, r *http.Request) {
	h.playerAction(w, r, func(name, _ string) (protocol.ControlResult, error) {
		return h.api.DeopPlayer(r.Context(), name)
	})
}

// playerAction runs one moderation action against the player named in the
// path. The optional JSON body may carry a reason.
func (h *Handler) playerAction(w http.ResponseWriter, r *http.Request, action func(name, reason string) (protocol.ControlResult, error)) {
	name := r.PathValue("name")

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if !h.requireCore(w) {
		return
	}

	res, err := action(name, req.Reason)
	if err != nil {
		h.logger.Error("player action failed", "player", name, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Player action failed", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// control runs one server control action and returns its result. A result
// with success=false is still a 200; only transport and core failures map
// to error statuses.
func (h *Handler) control(w http.ResponseWriter, r *http.Request, label string, action func(context.Context) (protocol.ControlResult, error)) {
	if !h.requireCore(w) {
		return
	}

	res, err := action(r.Context())
	if err != nil {
		h.logger.Error("server control failed", "action", label, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to "+label+" server", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// requireCore answers 503 when the core is unreachable and reports whether
// the caller may proceed.
func (h *Handler) requireCore(w http.ResponseWriter) bool {
	if !h.api.Connected() {
		h.writeError(w, http.StatusServiceUnavailable, "Core is not available", "")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg, detail string) {
	body := map[string]string{"error": msg}
	if detail != "" {
		body["detail"] = detail
	}
	h.writeJSON(w, status, body)
}
