package client

import (
	"log/slog"
	"sync"

	"github.com/aetheriusmc/aethergate/protocol"
)

// MessageHandler receives every inbound frame delivered by a [Socket].
//
// Handlers run synchronously on the socket's read goroutine, in registration
// order. A handler that panics is recovered and logged; it never affects
// other handlers or the connection.
type MessageHandler func(protocol.Envelope)

// StatusHandler receives [ConnectionStatus] transitions from a [Socket].
//
// The same ordering and panic-isolation rules as [MessageHandler] apply.
type StatusHandler func(ConnectionStatus)

// messageRegistry is an ordered list of message handlers keyed by
// registration id.
type messageRegistry struct {
	mu     sync.Mutex
	nextID int
	ids    []int
	byID   map[int]MessageHandler
}

func newMessageRegistry() *messageRegistry {
	return &messageRegistry{byID: make(map[int]MessageHandler)}
}

func (r *messageRegistry) add(h MessageHandler) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.ids = append(r.ids, id)
	r.byID[id] = h
	return id
}

func (r *messageRegistry) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
}

// invoke calls every registered handler in registration order.
func (r *messageRegistry) invoke(env protocol.Envelope, logger *slog.Logger) {
	r.mu.Lock()
	handlers := make([]MessageHandler, 0, len(r.ids))
	for _, id := range r.ids {
		handlers = append(handlers, r.byID[id])
	}
	r.mu.Unlock()

	for _, h := range handlers {
		invokeMessageSafe(h, env, logger)
	}
}

// invokeMessageSafe calls a message handler with panic recovery.
// Panics are logged but do not propagate.
func invokeMessageSafe(h MessageHandler, env protocol.Envelope, logger *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("message handler panicked",
				"panic", rec,
				"message_type", env.Type,
			)
		}
	}()
	h(env)
}

// statusRegistry is an ordered list of status handlers keyed by
// registration id.
type statusRegistry struct {
	mu     sync.Mutex
	nextID int
	ids    []int
	byID   map[int]StatusHandler
}

func newStatusRegistry() *statusRegistry {
	return &statusRegistry{byID: make(map[int]StatusHandler)}
}

func (r *statusRegistry) add(h StatusHandler) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.ids = append(r.ids, id)
	r.byID[id] = h
	return id
}

func (r *statusRegistry) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, existing := range r.ids {
		if existing == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
}

func (r *statusRegistry) invoke(st ConnectionStatus, logger *slog.Logger) {
	r.mu.Lock()
	handlers := make([]StatusHandler, 0, len(r.ids))
	for _, id := range r.ids {
		handlers = append(handlers, r.byID[id])
	}
	r.mu.Unlock()

	for _, h := range handlers {
		invokeStatusSafe(h, st, logger)
	}
}

// invokeStatusSafe calls a status handler with panic recovery.
func invokeStatusSafe(h StatusHandler, st ConnectionStatus, logger *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("status handler panicked", "panic", rec)
		}
	}()
	h(st)
}
