package client

import (
	"log/slog"
	"sync"

	"github.com/aetheriusmc/aethergate/protocol"
)

const (
	defaultHistoryLimit = 1000
	defaultDisplayLimit = 500
	defaultCommandLimit = 50
)

// ConsoleStore accumulates console output arriving on a console channel
// socket and sends commands back over it.
//
// ConsoleStore provides thread-safe storage with a publish-subscribe
// mechanism for real-time updates. Lines are kept in arrival order in a
// bounded buffer; when the buffer exceeds its limit the oldest excess is
// dropped in one batch.
//
// Subscribers receive appended lines via buffered channels (buffer size 100).
// Updates are sent non-blocking; if a subscriber's buffer is full, the line
// is dropped for that subscriber to prevent blocking the dispatch path.
type ConsoleStore struct {
	sock   *Socket
	logger *slog.Logger

	historyLimit int
	displayLimit int
	cmdLimit     int

	mu       sync.RWMutex
	lines    []protocol.ConsoleLine
	commands []string

	subMu       sync.RWMutex
	subscribers map[chan protocol.ConsoleLine]struct{}

	handlerID int
}

// NewConsoleStore creates a [ConsoleStore] attached to the given socket.
//
// The store registers a message handler on the socket and starts classifying
// inbound frames immediately. Defaults: 1000 retained lines, 500 returned by
// [ConsoleStore.Recent], 50 retained commands. Call [ConsoleStore.Close] to
// detach from the socket.
func NewConsoleStore(sock *Socket, opts ...ConsoleOption) (*ConsoleStore, error) {
	cfg := &consoleConfig{
		historyLimit: defaultHistoryLimit,
		displayLimit: defaultDisplayLimit,
		cmdLimit:     defaultCommandLimit,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &ConsoleStore{
		sock:         sock,
		logger:       logger,
		historyLimit: cfg.historyLimit,
		displayLimit: cfg.displayLimit,
		cmdLimit:     cfg.cmdLimit,
		subscribers:  make(map[chan protocol.ConsoleLine]struct{}),
	}
	s.handlerID = sock.OnMessage(s.handle)
	return s, nil
}

// Close detaches the store from its socket. Retained lines and command
// history remain readable.
func (s *ConsoleStore) Close() {
	s.sock.OffMessage(s.handlerID)
}

// handle classifies one inbound frame by its type tag.
func (s *ConsoleStore) handle(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeConsoleLog:
		var p protocol.ConsolePayload
		if err := env.Decode(&p); err != nil {
			s.logger.Warn("dropping malformed console_log payload", "error", err)
			return
		}
		s.append(protocol.ConsoleLine{
			Timestamp: env.Timestamp,
			Level:     p.Level,
			Source:    p.Source,
			Message:   p.Message,
		})
	case protocol.TypeConnectionEstablished:
		var p protocol.ConnectionEstablishedPayload
		if err := env.Decode(&p); err != nil {
			s.logger.Warn("dropping malformed connection_established payload", "error", err)
			return
		}
		s.logger.Info("console channel established", "connection_id", p.ConnectionID)
	case protocol.TypePong:
		s.logger.Debug("pong received", "timestamp", env.Timestamp)
	default:
		s.logger.Warn("dropping unrecognized console message", "type", string(env.Type))
	}
}

// SendCommand submits a command over the console channel and reports whether
// it was handed to the connection.
//
// On success the command is recorded in the command history and a synthetic
// local echo line ("> text") is appended to the console buffer for immediate
// feedback. When the socket is not connected, SendCommand returns false and
// neither happens.
func (s *ConsoleStore) SendCommand(text string) bool {
	if !s.sock.Connected() {
		s.logger.Warn("cannot send command, console channel not connected")
		return false
	}
	if err := s.sock.Send(protocol.NewCommandFrame(text)); err != nil {
		s.logger.Warn("command send failed", "error", err)
		return false
	}

	s.recordCommand(text)
	s.append(protocol.ConsoleLine{
		Timestamp: protocol.Now(),
		Level:     "COMMAND",
		Source:    "Client",
		Message:   "> " + text,
	})
	return true
}

// Lines returns a snapshot of every retained console line, oldest first.
//
// The returned slice is a copy; modifications do not affect the store.
func (s *ConsoleStore) Lines() []protocol.ConsoleLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]protocol.ConsoleLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Recent returns a snapshot of the newest retained lines, capped at the
// display limit, oldest first.
func (s *ConsoleStore) Recent() []protocol.ConsoleLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.lines)
	if n > s.displayLimit {
		n = s.displayLimit
	}
	out := make([]protocol.ConsoleLine, n)
	copy(out, s.lines[len(s.lines)-n:])
	return out
}

// CommandHistory returns a snapshot of sent commands, oldest first.
// Consecutive duplicates are collapsed; repeats separated by other commands
// are kept.
func (s *ConsoleStore) CommandHistory() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// Subscribe creates a new subscription and returns a channel receiving every
// line appended after this call.
//
// The returned channel has a buffer of 100 lines. If the buffer fills (slow
// consumer), new lines are dropped for this subscriber.
//
// Caller must call [ConsoleStore.Unsubscribe] when done to prevent resource
// leaks.
func (s *ConsoleStore) Subscribe() <-chan protocol.ConsoleLine {
	ch := make(chan protocol.ConsoleLine, 100)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (s *ConsoleStore) Unsubscribe(ch <-chan protocol.ConsoleLine) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for subCh := range s.subscribers {
		if subCh == ch {
			delete(s.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// append stores one line, trims the buffer, and notifies subscribers.
func (s *ConsoleStore) append(line protocol.ConsoleLine) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	if len(s.lines) > s.historyLimit {
		s.lines = s.lines[len(s.lines)-s.historyLimit:]
	}
	s.mu.Unlock()

	s.notifySubscribers(line)
}

// recordCommand appends to the command history, collapsing consecutive
// duplicates and dropping the oldest excess past the limit.
func (s *ConsoleStore) recordCommand(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.commands); n > 0 && s.commands[n-1] == text {
		return
	}
	s.commands = append(s.commands, text)
	if len(s.commands) > s.cmdLimit {
		s.commands = s.commands[len(s.commands)-s.cmdLimit:]
	}
}

// notifySubscribers sends the line to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the line is
// dropped for that subscriber rather than blocking the dispatch path.
func (s *ConsoleStore) notifySubscribers(line protocol.ConsoleLine) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- line:
		default:
			// subscriber is slow, drop the line
		}
	}
}
