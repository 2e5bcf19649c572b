package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aetheriusmc/aethergate/internal/backend"
	"github.com/aetheriusmc/aethergate/internal/store"
	"github.com/aetheriusmc/aethergate/protocol"
)

// commandTimeout bounds one console command execution.
const commandTimeout = 5 * time.Second

// Hub owns every WebSocket connection of the gateway.
//
// Connections register per channel (console, status, dashboard). The hub
// fans gateway frames out to a channel's connections, pruning any that fail
// to take a write, and pumps inbound frames from console connections into
// the backend API.
type Hub struct {
	logger   *slog.Logger
	api      *backend.API
	history  store.Store
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*Conn
}

// New creates a [Hub] executing console commands through api and recording
// command activity in history. A nil logger defaults to slog.Default().
func New(api *backend.API, history store.Store, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		api:     api,
		history: history,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origin enforcement is left to the fronting proxy
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[string]*Conn),
	}
}

// Handler returns the upgrade handler for one channel endpoint.
//
// The handler upgrades the request, registers the connection, greets console
// connections with a connection_established frame, and then pumps inbound
// frames until the connection drops.
func (h *Hub) Handler(ch protocol.Channel) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "channel", ch, "error", err)
			return
		}

		conn := &Conn{ID: uuid.NewString(), Channel: ch, ws: ws}
		h.add(conn)
		h.logger.Info("websocket connected", "connection_id", conn.ID, "channel", ch)

		if ch == protocol.ChannelConsole {
			h.greet(conn)
		}

		h.readPump(r.Context(), conn)
	})
}

// Broadcast fans env out to every connection of the channel. Connections
// whose write fails are pruned.
func (h *Hub) Broadcast(ch protocol.Channel, env protocol.Envelope) {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		if c.Channel == ch {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(env); err != nil {
			h.logger.Warn("pruning dead connection", "connection_id", c.ID, "error", err)
			h.remove(c.ID)
			c.close(websocket.CloseGoingAway, "")
		}
	}
}

// Count returns the number of registered connections across all channels.
// It feeds the health endpoint.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll disconnects every registered connection. Called on gateway
// shutdown; clients treat the going-away close as abnormal and reconnect
// once the gateway is back.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[string]*Conn)
	h.mu.Unlock()

	for _, c := range conns {
		c.close(websocket.CloseGoingAway, "Server shutting down")
	}
}

func (h *Hub) add(c *Conn) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

// greet sends the connection_established frame carrying the connection id.
func (h *Hub) greet(c *Conn) {
	env, err := protocol.NewEnvelope(protocol.TypeConnectionEstablished, protocol.ConnectionEstablishedPayload{
		ConnectionID: c.ID,
		Channel:      c.Channel,
	})
	if err != nil {
		h.logger.Error("failed to build greeting", "error", err)
		return
	}
	if err := c.Send(env); err != nil {
		h.logger.Warn("failed to send greeting", "connection_id", c.ID, "error", err)
	}
}

// readPump delivers inbound frames until the connection errors out, then
// unregisters it.
func (h *Hub) readPump(ctx context.Context, c *Conn) {
	defer func() {
		h.remove(c.ID)
		_ = c.ws.Close()
		h.logger.Info("websocket disconnected", "connection_id", c.ID, "channel", c.Channel)
	}()

	c.ws.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("connection read failed", "connection_id", c.ID, "error", err)
			}
			return
		}

		var frame protocol.ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.logger.Warn("dropping malformed frame", "connection_id", c.ID, "error", err)
			continue
		}
		h.handleFrame(ctx, c, frame)
	}
}

func (h *Hub) handleFrame(ctx context.Context, c *Conn, frame protocol.ClientFrame) {
	switch frame.Type {
	case protocol.TypeCommand:
		if c.Channel != protocol.ChannelConsole {
			h.logger.Warn("command on non-console channel", "connection_id", c.ID, "channel", c.Channel)
			return
		}
		h.handleCommand(ctx, c, frame)
	case protocol.TypePing:
		if c.Channel != protocol.ChannelConsole {
			h.logger.Debug("ping received", "connection_id", c.ID, "channel", c.Channel)
			return
		}
		// the pong echoes the ping's timestamp so the client can measure
		// round trips
		pong := protocol.Envelope{Type: protocol.TypePong, Timestamp: frame.Timestamp}
		if err := c.Send(pong); err != nil {
			h.logger.Warn("failed to send pong", "connection_id", c.ID, "error", err)
		}
	default:
		h.logger.Warn("unknown message type", "connection_id", c.ID, "message_type", frame.Type.String())
		if c.Channel == protocol.ChannelConsole {
			h.sendConsole(c, "WARN", "Unknown message type: "+frame.Type.String())
		}
	}
}

// handleCommand executes one console command. The echo and the result go
// only to the issuing connection, and both are recorded in the history
// store; validation errors stay on the connection.
func (h *Hub) handleCommand(ctx context.Context, c *Conn, frame protocol.ClientFrame) {
	command := strings.TrimSpace(frame.Command)
	if command == "" {
		h.sendConsole(c, "ERROR", "Empty command received")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	res, err := h.api.SendConsoleCommand(ctx, command)
	if err != nil {
		h.logger.Error("command execution failed", "connection_id", c.ID, "command", command, "error", err)
		h.sendConsole(c, "ERROR", "Command failed: "+err.Error())
		return
	}

	echo := protocol.ConsoleLine{
		Timestamp: protocol.Now(),
		Level:     "COMMAND",
		Source:    "Server",
		Message:   "> " + command,
	}
	h.history.AppendConsole(echo)
	h.sendLine(c, echo)

	level := "INFO"
	if !res.Success {
		level = "ERROR"
	}
	line := protocol.ConsoleLine{
		Timestamp: protocol.Now(),
		Level:     level,
		Source:    "Server",
		Message:   res.Message,
	}
	h.history.AppendConsole(line)
	h.sendLine(c, line)
}

// sendConsole sends a console_log frame built from level and message to one
// connection.
func (h *Hub) sendConsole(c *Conn, level, message string) {
	h.sendLine(c, protocol.ConsoleLine{
		Timestamp: protocol.Now(),
		Level:     level,
		Source:    "Server",
		Message:   message,
	})
}

// sendLine sends one console line as a console_log frame, keeping the
// line's own timestamp on the envelope.
func (h *Hub) sendLine(c *Conn, line protocol.ConsoleLine) {
	env, err := ConsoleEnvelope(line)
	if err != nil {
		h.logger.Error("failed to build console frame", "error", err)
		return
	}
	if err := c.Send(env); err != nil {
		h.logger.Warn("failed to send console frame", "connection_id", c.ID, "error", err)
	}
}

// ConsoleEnvelope wraps a console line in a console_log envelope stamped
// with the line's timestamp.
func ConsoleEnvelope(line protocol.ConsoleLine) (protocol.Envelope, error) {
	data, err := json.Marshal(protocol.ConsolePayload{
		Level:   line.Level,
		Source:  line.Source,
		Message: line.Message,
	})
	if err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.Envelope{
		Type:      protocol.TypeConsoleLog,
		Timestamp: line.Timestamp,
		Data:      data,
	}, nil
}
