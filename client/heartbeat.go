package client

import (
	"sync"
	"time"

	"github.com/aetheriusmc/aethergate/protocol"
)

// heartbeat is the cancellation handle for one ping goroutine. A new
// heartbeat is created per connection so a stop never races a restart.
type heartbeat struct {
	stop chan struct{}
	once sync.Once
}

func (h *heartbeat) cancel() {
	h.once.Do(func() { close(h.stop) })
}

// startHeartbeatLocked launches the ping goroutine for the current
// connection. Caller must hold s.mu.
func (s *Socket) startHeartbeatLocked() {
	if s.beat != nil {
		s.beat.cancel()
	}
	hb := &heartbeat{stop: make(chan struct{})}
	s.beat = hb
	go s.runHeartbeat(hb)
}

// stopHeartbeatLocked cancels the ping goroutine, if any. Caller must hold
// s.mu.
func (s *Socket) stopHeartbeatLocked() {
	if s.beat != nil {
		s.beat.cancel()
		s.beat = nil
	}
}

// runHeartbeat sends a ping frame every beatEvery until cancelled. Pings are
// only attempted while the socket reports connected, so a tick that races a
// disconnect is a no-op rather than an error.
func (s *Socket) runHeartbeat(hb *heartbeat) {
	ticker := time.NewTicker(s.beatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-hb.stop:
			return
		case <-ticker.C:
			if !s.Connected() {
				continue
			}
			if err := s.Send(protocol.NewPingFrame()); err != nil {
				s.logger.Warn("heartbeat ping failed", "url", s.url, "error", err)
			}
		}
	}
}
