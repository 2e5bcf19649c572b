package hub

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aetheriusmc/aethergate/internal/backend"
	"github.com/aetheriusmc/aethergate/internal/store"
	"github.com/aetheriusmc/aethergate/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub(t *testing.T) (*Hub, store.Store) {
	t.Helper()
	core := backend.NewSimCore("1.20.1", 20)
	api := backend.NewAPI(core, testLogger())
	history := store.NewMemoryStore(100, 100, time.Minute)
	return New(api, history, testLogger()), history
}

// dial upgrades a client connection against an httptest server fronting the
// hub's handler for the given channel.
func dial(t *testing.T, h *Hub, ch protocol.Channel) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(h.Handler(ch))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEnvelope(t *testing.T, ws *websocket.Conn) protocol.Envelope {
	t.Helper()

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env protocol.Envelope
	if err := ws.ReadJSON(&env); err != nil {
		t.Fatalf("failed to read envelope: %v", err)
	}
	return env
}

func readConsoleLine(t *testing.T, ws *websocket.Conn) protocol.ConsolePayload {
	t.Helper()

	env := readEnvelope(t, ws)
	if env.Type != protocol.TypeConsoleLog {
		t.Fatalf("expected console_log frame, got %q", env.Type)
	}
	var payload protocol.ConsolePayload
	if err := env.Decode(&payload); err != nil {
		t.Fatalf("failed to decode console payload: %v", err)
	}
	return payload
}

// waitForCount polls until the hub reports n registered connections.
func waitForCount(t *testing.T, h *Hub, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Count() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d connections, have %d", n, h.Count())
}

func TestHub_ConsoleGreeting(t *testing.T) {
	h, _ := newTestHub(t)
	ws := dial(t, h, protocol.ChannelConsole)

	env := readEnvelope(t, ws)
	if env.Type != protocol.TypeConnectionEstablished {
		t.Fatalf("expected connection_established, got %q", env.Type)
	}

	var payload protocol.ConnectionEstablishedPayload
	if err := env.Decode(&payload); err != nil {
		t.Fatalf("failed to decode greeting: %v", err)
	}
	if payload.ConnectionID == "" {
		t.Error("expected a connection id in the greeting")
	}
	if payload.Channel != protocol.ChannelConsole {
		t.Errorf("expected channel console, got %q", payload.Channel)
	}

	if h.Count() != 1 {
		t.Errorf("expected 1 registered connection, got %d", h.Count())
	}
}

func TestHub_StatusChannelHasNoGreeting(t *testing.T) {
	h, _ := newTestHub(t)
	ws := dial(t, h, protocol.ChannelStatus)
	waitForCount(t, h, 1)

	env, err := protocol.NewEnvelope(protocol.TypeStatusUpdate, protocol.ServerStatus{IsRunning: true})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	h.Broadcast(protocol.ChannelStatus, env)

	// the first frame must be the broadcast, not a greeting
	got := readEnvelope(t, ws)
	if got.Type != protocol.TypeStatusUpdate {
		t.Fatalf("expected status_update as first frame, got %q", got.Type)
	}
}

func TestHub_CommandEchoThenResult(t *testing.T) {
	h, history := newTestHub(t)
	ws := dial(t, h, protocol.ChannelConsole)
	readEnvelope(t, ws) // greeting

	if err := ws.WriteJSON(protocol.NewCommandFrame("say hello")); err != nil {
		t.Fatalf("failed to send command: %v", err)
	}

	echo := readConsoleLine(t, ws)
	if echo.Message != "> say hello" {
		t.Errorf("expected echo %q, got %q", "> say hello", echo.Message)
	}
	if echo.Level != "COMMAND" {
		t.Errorf("expected echo level COMMAND, got %q", echo.Level)
	}
	if echo.Source != "Server" {
		t.Errorf("expected echo source Server, got %q", echo.Source)
	}

	result := readConsoleLine(t, ws)
	if result.Level != "INFO" {
		t.Errorf("expected result level INFO, got %q", result.Level)
	}
	if result.Message != "Broadcasted: hello" {
		t.Errorf("expected result %q, got %q", "Broadcasted: hello", result.Message)
	}

	lines, total := history.ConsoleHistory(0)
	if total != 2 {
		t.Fatalf("expected 2 recorded lines, got %d", total)
	}
	if lines[0].Message != "> say hello" || lines[1].Message != "Broadcasted: hello" {
		t.Errorf("unexpected recorded history: %q, %q", lines[0].Message, lines[1].Message)
	}
}

func TestHub_CommandFailure(t *testing.T) {
	h, _ := newTestHub(t)
	ws := dial(t, h, protocol.ChannelConsole)
	readEnvelope(t, ws) // greeting

	if err := ws.WriteJSON(protocol.NewCommandFrame("fly")); err != nil {
		t.Fatalf("failed to send command: %v", err)
	}

	echo := readConsoleLine(t, ws)
	if echo.Message != "> fly" {
		t.Errorf("expected echo %q, got %q", "> fly", echo.Message)
	}

	result := readConsoleLine(t, ws)
	if result.Level != "ERROR" {
		t.Errorf("expected result level ERROR, got %q", result.Level)
	}
	if result.Message != "Unknown command: fly" {
		t.Errorf("expected result %q, got %q", "Unknown command: fly", result.Message)
	}
}

func TestHub_EmptyCommand(t *testing.T) {
	h, history := newTestHub(t)
	ws := dial(t, h, protocol.ChannelConsole)
	readEnvelope(t, ws) // greeting

	if err := ws.WriteJSON(protocol.NewCommandFrame("   ")); err != nil {
		t.Fatalf("failed to send command: %v", err)
	}

	line := readConsoleLine(t, ws)
	if line.Level != "ERROR" {
		t.Errorf("expected level ERROR, got %q", line.Level)
	}
	if line.Message != "Empty command received" {
		t.Errorf("expected %q, got %q", "Empty command received", line.Message)
	}

	// validation failures never reach the history store
	if _, total := history.ConsoleHistory(0); total != 0 {
		t.Errorf("expected empty history, got %d lines", total)
	}
}

func TestHub_PingPong(t *testing.T) {
	h, _ := newTestHub(t)
	ws := dial(t, h, protocol.ChannelConsole)
	readEnvelope(t, ws) // greeting

	sent := protocol.ClientFrame{Type: protocol.TypePing, Timestamp: "2026-01-02T15:04:05Z"}
	if err := ws.WriteJSON(sent); err != nil {
		t.Fatalf("failed to send ping: %v", err)
	}

	pong := readEnvelope(t, ws)
	if pong.Type != protocol.TypePong {
		t.Fatalf("expected pong, got %q", pong.Type)
	}
	if pong.Timestamp != sent.Timestamp {
		t.Errorf("expected pong to echo timestamp %q, got %q", sent.Timestamp, pong.Timestamp)
	}
	if len(pong.Data) != 0 {
		t.Errorf("expected pong without data, got %s", pong.Data)
	}
}

func TestHub_UnknownMessageType(t *testing.T) {
	h, _ := newTestHub(t)
	ws := dial(t, h, protocol.ChannelConsole)
	readEnvelope(t, ws) // greeting

	frame := protocol.ClientFrame{Type: "subscribe", Timestamp: protocol.Now()}
	if err := ws.WriteJSON(frame); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}

	line := readConsoleLine(t, ws)
	if line.Level != "WARN" {
		t.Errorf("expected level WARN, got %q", line.Level)
	}
	if line.Message != "Unknown message type: subscribe" {
		t.Errorf("unexpected message: %q", line.Message)
	}
}

func TestHub_CommandIgnoredOffConsole(t *testing.T) {
	h, history := newTestHub(t)
	ws := dial(t, h, protocol.ChannelStatus)
	waitForCount(t, h, 1)

	if err := ws.WriteJSON(protocol.NewCommandFrame("say hi")); err != nil {
		t.Fatalf("failed to send command: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if _, total := history.ConsoleHistory(0); total != 0 {
		t.Errorf("expected no command execution on status channel, history has %d lines", total)
	}
	if h.Count() != 1 {
		t.Errorf("expected connection to stay registered, count is %d", h.Count())
	}
}

func TestHub_MalformedFrameKeepsConnection(t *testing.T) {
	h, _ := newTestHub(t)
	ws := dial(t, h, protocol.ChannelConsole)
	readEnvelope(t, ws) // greeting

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("failed to send garbage: %v", err)
	}

	// the connection survives and still answers pings
	if err := ws.WriteJSON(protocol.NewPingFrame()); err != nil {
		t.Fatalf("failed to send ping: %v", err)
	}
	if env := readEnvelope(t, ws); env.Type != protocol.TypePong {
		t.Fatalf("expected pong after malformed frame, got %q", env.Type)
	}
}

func TestHub_BroadcastFanout(t *testing.T) {
	h, _ := newTestHub(t)
	first := dial(t, h, protocol.ChannelConsole)
	second := dial(t, h, protocol.ChannelConsole)
	status := dial(t, h, protocol.ChannelStatus)
	readEnvelope(t, first)  // greeting
	readEnvelope(t, second) // greeting
	waitForCount(t, h, 3)

	env, err := ConsoleEnvelope(protocol.ConsoleLine{
		Timestamp: protocol.Now(),
		Level:     "INFO",
		Source:    "Server",
		Message:   "broadcast line",
	})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	h.Broadcast(protocol.ChannelConsole, env)

	for i, ws := range []*websocket.Conn{first, second} {
		line := readConsoleLine(t, ws)
		if line.Message != "broadcast line" {
			t.Errorf("client %d: expected broadcast line, got %q", i, line.Message)
		}
	}

	// the status connection only sees status traffic
	statusEnv, err := protocol.NewEnvelope(protocol.TypeStatusUpdate, protocol.ServerStatus{IsRunning: true})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	h.Broadcast(protocol.ChannelStatus, statusEnv)
	if env := readEnvelope(t, status); env.Type != protocol.TypeStatusUpdate {
		t.Fatalf("expected status_update on status channel, got %q", env.Type)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	h, _ := newTestHub(t)
	ws := dial(t, h, protocol.ChannelConsole)
	readEnvelope(t, ws) // greeting
	waitForCount(t, h, 1)

	ws.Close()
	waitForCount(t, h, 0)
}

func TestHub_CloseAll(t *testing.T) {
	h, _ := newTestHub(t)
	console := dial(t, h, protocol.ChannelConsole)
	status := dial(t, h, protocol.ChannelStatus)
	readEnvelope(t, console) // greeting
	waitForCount(t, h, 2)

	h.CloseAll()

	if h.Count() != 0 {
		t.Errorf("expected 0 connections after CloseAll, got %d", h.Count())
	}

	for i, ws := range []*websocket.Conn{console, status} {
		_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := ws.ReadMessage()
		if err == nil {
			t.Errorf("client %d: expected read to fail after CloseAll", i)
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Errorf("client %d: expected going-away close, got %v", i, err)
		}
	}
}

func TestConsoleEnvelope(t *testing.T) {
	line := protocol.ConsoleLine{
		Timestamp: "2026-01-02T15:04:05Z",
		Level:     "INFO",
		Source:    "Server",
		Message:   "hello",
	}

	env, err := ConsoleEnvelope(line)
	if err != nil {
		t.Fatalf("ConsoleEnvelope failed: %v", err)
	}
	if env.Type != protocol.TypeConsoleLog {
		t.Errorf("expected console_log, got %q", env.Type)
	}
	if env.Timestamp != line.Timestamp {
		t.Errorf("expected envelope to carry the line timestamp, got %q", env.Timestamp)
	}

	var payload protocol.ConsolePayload
	if err := env.Decode(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.Message != "hello" || payload.Level != "INFO" || payload.Source != "Server" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}
