package client

import (
	"log/slog"
	"sync"

	"github.com/aetheriusmc/aethergate/protocol"
)

const defaultEventLimit = 100

// PlayerEvent is one join/leave notification with its arrival timestamp.
type PlayerEvent struct {
	Timestamp string
	Event     string
	Name      string
	UUID      string
}

// StatusStore tracks the live server state arriving on a status channel
// socket.
//
// A status_update frame replaces the retained snapshot wholesale; a
// player_event frame is appended to a bounded event list. Subscribers
// receive each new snapshot via buffered channels with non-blocking fanout.
type StatusStore struct {
	sock   *Socket
	logger *slog.Logger

	eventLimit int

	mu       sync.RWMutex
	latest   protocol.ServerStatus
	haveSnap bool
	events   []PlayerEvent

	subMu       sync.RWMutex
	subscribers map[chan protocol.ServerStatus]struct{}

	handlerID int
}

// NewStatusStore creates a [StatusStore] attached to the given socket.
//
// The store registers a message handler on the socket and starts classifying
// inbound frames immediately. Call [StatusStore.Close] to detach.
func NewStatusStore(sock *Socket, opts ...StatusOption) (*StatusStore, error) {
	cfg := &statusConfig{eventLimit: defaultEventLimit}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &StatusStore{
		sock:        sock,
		logger:      logger,
		eventLimit:  cfg.eventLimit,
		subscribers: make(map[chan protocol.ServerStatus]struct{}),
	}
	s.handlerID = sock.OnMessage(s.handle)
	return s, nil
}

// Close detaches the store from its socket.
func (s *StatusStore) Close() {
	s.sock.OffMessage(s.handlerID)
}

func (s *StatusStore) handle(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeStatusUpdate:
		var st protocol.ServerStatus
		if err := env.Decode(&st); err != nil {
			s.logger.Warn("dropping malformed status_update payload", "error", err)
			return
		}
		s.mu.Lock()
		s.latest = st
		s.haveSnap = true
		s.mu.Unlock()
		s.notifySubscribers(st)
	case protocol.TypePlayerEvent:
		var p protocol.PlayerEventPayload
		if err := env.Decode(&p); err != nil {
			s.logger.Warn("dropping malformed player_event payload", "error", err)
			return
		}
		s.mu.Lock()
		s.events = append(s.events, PlayerEvent{
			Timestamp: env.Timestamp,
			Event:     p.Event,
			Name:      p.Name,
			UUID:      p.UUID,
		})
		if len(s.events) > s.eventLimit {
			s.events = s.events[len(s.events)-s.eventLimit:]
		}
		s.mu.Unlock()
	default:
		s.logger.Warn("dropping unrecognized status message", "type", string(env.Type))
	}
}

// Latest returns the most recent status snapshot. The second return value is
// false until the first status_update arrives.
func (s *StatusStore) Latest() (protocol.ServerStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.haveSnap
}

// Events returns a snapshot of retained player events, oldest first.
func (s *StatusStore) Events() []PlayerEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PlayerEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Subscribe creates a new subscription and returns a channel receiving every
// status snapshot stored after this call.
//
// The returned channel has a buffer of 100 snapshots, sent non-blocking.
// Caller must call [StatusStore.Unsubscribe] when done.
func (s *StatusStore) Subscribe() <-chan protocol.ServerStatus {
	ch := make(chan protocol.ServerStatus, 100)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (s *StatusStore) Unsubscribe(ch <-chan protocol.ServerStatus) {
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

func (s *StatusStore) notifySubscribers(st protocol.ServerStatus) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- st:
		default:
			// subscriber is slow, drop the update
		}
	}
}
