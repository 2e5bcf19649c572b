package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aetheriusmc/aethergate/protocol"
)

const (
	defaultBaseDelay         = 1 * time.Second
	defaultMaxAttempts       = 5
	defaultHeartbeatInterval = 30 * time.Second

	// writeWait bounds a single frame write so a dead peer cannot block Send.
	writeWait = 10 * time.Second
)

// ErrNotConnected is returned by [Socket.Send] when no live connection
// exists. The message is dropped, never queued.
var ErrNotConnected = errors.New("socket is not connected")

// Socket maintains at most one live WebSocket connection to a fixed URL and
// recovers from unexpected drops.
//
// After an abnormal closure, Socket retries with exponential backoff: the
// k-th attempt waits base_delay * 2^(k-1). Once the configured maximum number
// of consecutive attempts fails, the socket reports a terminal error status
// and stays down until [Socket.Connect] is called again. A manual
// [Socket.Disconnect] (close code 1000, reason "Manual disconnect") never
// triggers reconnection.
//
// While connected, a heartbeat goroutine sends a ping frame at the configured
// interval. The heartbeat is cancelled before any disconnect proceeds and is
// restarted only after a reconnect succeeds.
//
// Inbound frames and status transitions are delivered through handler
// registries; see [Socket.OnMessage] and [Socket.OnConnectionChange].
//
// The typical lifecycle is:
//
//	sock, err := client.NewSocket("ws://localhost:8080/ws/console")
//	if err != nil {
//	    slog.Error("failed to create socket", "error", err)
//	    os.Exit(1)
//	}
//
//	sock.OnMessage(func(env protocol.Envelope) { ... })
//	if err := sock.Connect(ctx); err != nil { ... }
//	defer sock.Disconnect()
type Socket struct {
	url         string
	dialer      *websocket.Dialer
	baseDelay   time.Duration
	maxAttempts int
	beatEvery   time.Duration
	logger      *slog.Logger

	msgHandlers    *messageRegistry
	statusHandlers *statusRegistry

	writeMu sync.Mutex // serializes frame writes to the connection

	mu         sync.Mutex
	conn       *websocket.Conn
	status     ConnectionStatus
	attempts   int
	connecting bool
	manual     bool // intent flag: set by Disconnect, checked before any retry
	gen        int  // connection generation; stale readers check it and bail
	retry      *time.Timer
	beat       *heartbeat
}

// NewSocket creates a [Socket] for the given ws:// or wss:// URL.
//
// The socket does not connect until [Socket.Connect] is called. Options have
// sensible defaults:
//   - Reconnect base delay: 1 second
//   - Max reconnect attempts: 5
//   - Heartbeat interval: 30 seconds
//
// Returns an error if the URL is empty, unparseable, or not a WebSocket URL,
// or if any option is invalid.
func NewSocket(rawURL string, opts ...Option) (*Socket, error) {
	if rawURL == "" {
		return nil, errors.New("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("url scheme must be ws or wss, got %q", u.Scheme)
	}

	cfg := &socketConfig{
		dialer:      websocket.DefaultDialer,
		baseDelay:   defaultBaseDelay,
		maxAttempts: defaultMaxAttempts,
		beatEvery:   defaultHeartbeatInterval,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Socket{
		url:            rawURL,
		dialer:         cfg.dialer,
		baseDelay:      cfg.baseDelay,
		maxAttempts:    cfg.maxAttempts,
		beatEvery:      cfg.beatEvery,
		logger:         logger,
		msgHandlers:    newMessageRegistry(),
		statusHandlers: newStatusRegistry(),
	}, nil
}

// URL returns the socket's target URL.
func (s *Socket) URL() string {
	return s.url
}

// Connect establishes the connection.
//
// Connect is idempotent while an attempt is in flight or a connection is
// live: concurrent or repeated calls return nil without dialing again. A
// fresh call resets the reconnect attempt counter, so it is also the way to
// recover after the socket reports a terminal error.
//
// The context bounds only this dial. If the dial fails, Connect returns the
// error and the socket keeps retrying in the background with exponential
// backoff until an attempt succeeds, the attempts are exhausted, or
// [Socket.Disconnect] is called.
func (s *Socket) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.connecting || s.status.Connected {
		s.mu.Unlock()
		return nil
	}
	s.manual = false
	s.attempts = 0
	if s.retry != nil {
		// an explicit call supersedes any pending automatic retry
		s.retry.Stop()
		s.retry = nil
	}
	s.mu.Unlock()

	return s.dial(ctx)
}

// dial performs one connection attempt. Both Connect and the reconnect timer
// funnel through here.
func (s *Socket) dial(ctx context.Context) error {
	s.mu.Lock()
	if s.connecting || s.status.Connected || s.manual {
		s.mu.Unlock()
		return nil
	}
	s.connecting = true
	st, changed := s.setStatusLocked(ConnectionStatus{Reconnecting: true})
	s.mu.Unlock()
	s.notifyStatus(st, changed)

	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	s.mu.Lock()
	s.connecting = false
	if s.manual {
		// Disconnect won the race; drop whatever the dial produced.
		s.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return nil
	}
	if err != nil {
		st, changed := s.scheduleReconnectLocked(err.Error())
		s.mu.Unlock()
		s.notifyStatus(st, changed)
		s.logger.Warn("connection attempt failed", "url", s.url, "error", err)
		return fmt.Errorf("dial %s: %w", s.url, err)
	}

	s.conn = conn
	s.gen++
	gen := s.gen
	s.attempts = 0
	st, changed = s.setStatusLocked(ConnectionStatus{Connected: true})
	s.startHeartbeatLocked()
	s.mu.Unlock()

	s.notifyStatus(st, changed)
	s.logger.Info("connected", "url", s.url)
	go s.readLoop(conn, gen)
	return nil
}

// Disconnect closes the connection intentionally.
//
// The close frame carries code 1000 and reason "Manual disconnect", so the
// gateway can tell it apart from a dropped connection. Disconnect cancels
// the heartbeat and any pending reconnect timer before the transport close
// proceeds; no retry or ping fires afterwards. Safe to call when already
// disconnected.
func (s *Socket) Disconnect() {
	s.mu.Lock()
	s.manual = true
	s.gen++
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	s.stopHeartbeatLocked()
	conn := s.conn
	s.conn = nil
	st, changed := s.setStatusLocked(ConnectionStatus{})
	s.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, protocol.ManualCloseReason)
		s.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		s.writeMu.Unlock()
		_ = conn.Close()
		s.logger.Info("disconnected", "url", s.url)
	}
	s.notifyStatus(st, changed)
}

// Send marshals v to JSON and writes it as a text frame.
//
// When the socket is not connected, Send logs a warning, drops the message,
// and returns [ErrNotConnected]. Messages are never queued.
func (s *Socket) Send(v any) error {
	s.mu.Lock()
	conn := s.conn
	connected := s.status.Connected
	s.mu.Unlock()

	if !connected || conn == nil {
		s.logger.Warn("dropping message, socket not connected", "url", s.url)
		return ErrNotConnected
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Connected reports whether a live connection exists.
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Connected
}

// Status returns the current [ConnectionStatus].
func (s *Socket) Status() ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// OnMessage registers a handler for inbound frames and returns an id for
// [Socket.OffMessage]. Handlers run synchronously in registration order.
func (s *Socket) OnMessage(h MessageHandler) int {
	return s.msgHandlers.add(h)
}

// OffMessage removes a handler registered with [Socket.OnMessage].
// Unknown ids are ignored.
func (s *Socket) OffMessage(id int) {
	s.msgHandlers.remove(id)
}

// OnConnectionChange registers a handler for status transitions and returns
// an id for [Socket.OffConnectionChange].
func (s *Socket) OnConnectionChange(h StatusHandler) int {
	return s.statusHandlers.add(h)
}

// OffConnectionChange removes a handler registered with
// [Socket.OnConnectionChange]. Unknown ids are ignored.
func (s *Socket) OffConnectionChange(id int) {
	s.statusHandlers.remove(id)
}

// setStatusLocked replaces the status. Caller must hold s.mu. The second
// return value reports whether the status actually changed.
func (s *Socket) setStatusLocked(st ConnectionStatus) (ConnectionStatus, bool) {
	changed := st != s.status
	s.status = st
	return st, changed
}

// notifyStatus delivers a status transition to registered handlers.
// Must be called without s.mu held: handlers may call back into the socket.
func (s *Socket) notifyStatus(st ConnectionStatus, changed bool) {
	if !changed {
		return
	}
	s.statusHandlers.invoke(st, s.logger)
}

// scheduleReconnectLocked arms the backoff timer for the next attempt, or
// reports a terminal status once attempts are exhausted. Caller must hold
// s.mu. Returns the status to notify after unlocking.
func (s *Socket) scheduleReconnectLocked(cause string) (ConnectionStatus, bool) {
	if s.manual {
		return s.setStatusLocked(ConnectionStatus{})
	}
	if s.attempts >= s.maxAttempts {
		s.logger.Error("reconnect attempts exhausted", "url", s.url, "attempts", s.attempts)
		return s.setStatusLocked(ConnectionStatus{Error: "max reconnection attempts reached"})
	}

	s.attempts++
	delay := s.baseDelay * time.Duration(1<<(s.attempts-1))
	s.logger.Info("scheduling reconnect",
		"url", s.url,
		"attempt", s.attempts,
		"delay", delay.String(),
	)
	s.retry = time.AfterFunc(delay, func() {
		s.mu.Lock()
		s.retry = nil
		manual := s.manual
		s.mu.Unlock()
		if manual {
			return
		}
		_ = s.dial(context.Background())
	})
	return s.setStatusLocked(ConnectionStatus{Reconnecting: true, Error: cause})
}

// readLoop delivers inbound frames until the connection errors out.
// Malformed frames are logged and dropped; the loop never stops for them.
func (s *Socket) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.handleClose(gen, err)
			return
		}

		var env protocol.Envelope
		if uerr := json.Unmarshal(data, &env); uerr != nil {
			s.logger.Warn("dropping malformed frame", "url", s.url, "error", uerr)
			continue
		}
		s.msgHandlers.invoke(env, s.logger)
	}
}

// handleClose reacts to the read loop terminating.
func (s *Socket) handleClose(gen int, cause error) {
	s.mu.Lock()
	if gen != s.gen {
		// a newer connection owns the socket; this reader is stale
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.stopHeartbeatLocked()
	if s.manual {
		// Disconnect already updated the status
		s.mu.Unlock()
		return
	}

	if websocket.IsCloseError(cause, websocket.CloseNormalClosure) {
		// clean close from the peer: report disconnected, do not retry
		st, changed := s.setStatusLocked(ConnectionStatus{})
		s.mu.Unlock()
		s.logger.Info("connection closed by peer", "url", s.url)
		s.notifyStatus(st, changed)
		return
	}

	st, changed := s.scheduleReconnectLocked(cause.Error())
	s.mu.Unlock()
	s.logger.Warn("connection lost", "url", s.url, "error", cause)
	s.notifyStatus(st, changed)
}
