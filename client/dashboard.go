package client

import (
	"log/slog"
	"sync"

	"github.com/aetheriusmc/aethergate/protocol"
)

const defaultSeriesLimit = 50

// DashboardStore tracks the aggregate view arriving on a dashboard channel
// socket.
//
// A dashboard_summary frame replaces the retained summary wholesale; a
// performance_update frame is pushed into a bounded sample series, dropping
// the oldest sample once the limit is reached; a server_control_result frame
// records the outcome of the most recent control action. Subscribers receive
// each new performance sample via buffered channels with non-blocking fanout.
type DashboardStore struct {
	sock   *Socket
	logger *slog.Logger

	seriesLimit int

	mu          sync.RWMutex
	summary     protocol.SummaryPayload
	haveSummary bool
	series      []protocol.PerformanceSample
	lastResult  protocol.ControlResult
	haveResult  bool

	subMu       sync.RWMutex
	subscribers map[chan protocol.PerformanceSample]struct{}

	handlerID int
}

// NewDashboardStore creates a [DashboardStore] attached to the given socket.
//
// The store registers a message handler on the socket and starts classifying
// inbound frames immediately. Call [DashboardStore.Close] to detach.
func NewDashboardStore(sock *Socket, opts ...DashboardOption) (*DashboardStore, error) {
	cfg := &dashboardConfig{seriesLimit: defaultSeriesLimit}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &DashboardStore{
		sock:        sock,
		logger:      logger,
		seriesLimit: cfg.seriesLimit,
		subscribers: make(map[chan protocol.PerformanceSample]struct{}),
	}
	s.handlerID = sock.OnMessage(s.handle)
	return s, nil
}

// Close detaches the store from its socket.
func (s *DashboardStore) Close() {
	s.sock.OffMessage(s.handlerID)
}

func (s *DashboardStore) handle(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeDashboardSummary:
		var p protocol.SummaryPayload
		if err := env.Decode(&p); err != nil {
			s.logger.Warn("dropping malformed dashboard_summary payload", "error", err)
			return
		}
		s.mu.Lock()
		s.summary = p
		s.haveSummary = true
		s.mu.Unlock()
	case protocol.TypePerformanceUpdate:
		var p protocol.PerformanceSample
		if err := env.Decode(&p); err != nil {
			s.logger.Warn("dropping malformed performance_update payload", "error", err)
			return
		}
		if p.Timestamp == "" {
			p.Timestamp = env.Timestamp
		}
		s.mu.Lock()
		s.series = append(s.series, p)
		if len(s.series) > s.seriesLimit {
			s.series = s.series[len(s.series)-s.seriesLimit:]
		}
		s.mu.Unlock()
		s.notifySubscribers(p)
	case protocol.TypeServerControlResult:
		var p protocol.ControlResult
		if err := env.Decode(&p); err != nil {
			s.logger.Warn("dropping malformed server_control_result payload", "error", err)
			return
		}
		s.mu.Lock()
		s.lastResult = p
		s.haveResult = true
		s.mu.Unlock()
		if !p.Success {
			s.logger.Warn("server control action failed", "message", p.Message)
		}
	default:
		s.logger.Warn("dropping unrecognized dashboard message", "type", string(env.Type))
	}
}

// Summary returns the most recent dashboard summary. The second return value
// is false until the first dashboard_summary arrives.
func (s *DashboardStore) Summary() (protocol.SummaryPayload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary, s.haveSummary
}

// Performance returns a snapshot of the retained sample series, oldest
// first. The series holds at most the configured limit; older samples are
// dropped as new ones arrive.
func (s *DashboardStore) Performance() []protocol.PerformanceSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]protocol.PerformanceSample, len(s.series))
	copy(out, s.series)
	return out
}

// LastControlResult returns the outcome of the most recent control action.
// The second return value is false until the first server_control_result
// arrives.
func (s *DashboardStore) LastControlResult() (protocol.ControlResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult, s.haveResult
}

// Subscribe creates a new subscription and returns a channel receiving every
// performance sample stored after this call.
//
// The returned channel has a buffer of 100 samples, sent non-blocking.
// Caller must call [DashboardStore.Unsubscribe] when done.
func (s *DashboardStore) Subscribe() <-chan protocol.PerformanceSample {
	ch := make(chan protocol.PerformanceSample, 100)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (s *DashboardStore) Unsubscribe(ch <-chan protocol.PerformanceSample) {
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

func (s *DashboardStore) notifySubscribers(sample protocol.PerformanceSample) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- sample:
		default:
			// subscriber is slow, drop the sample
		}
	}
}
