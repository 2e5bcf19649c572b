package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aetheriusmc/aethergate/protocol"
)

const defaultPollInterval = 30 * time.Second

// OverviewPoller periodically fetches the gateway's dashboard overview over
// REST and retains the latest snapshot.
//
// The poller complements the socket-driven stores: it covers state the push
// channels do not carry (recent logs, statistics) and keeps working when no
// socket is connected. Snapshots are last-write-wins; an on-demand
// [OverviewPoller.Refresh] and the periodic loop share the same store.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type OverviewPoller struct {
	api      *API
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lifeMu  sync.Mutex
	started bool
	stopped bool

	mu       sync.RWMutex
	latest   protocol.Overview
	haveSnap bool

	subMu       sync.RWMutex
	subscribers map[chan protocol.Overview]struct{}
}

// NewOverviewPoller creates an [OverviewPoller] backed by the given API
// client.
//
// The poller must be started with [OverviewPoller.Start] and stopped with
// [OverviewPoller.Stop]. Defaults to polling every 30 seconds.
func NewOverviewPoller(api *API, opts ...PollerOption) (*OverviewPoller, error) {
	cfg := &pollerConfig{interval: defaultPollInterval}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OverviewPoller{
		api:         api,
		interval:    cfg.interval,
		logger:      logger,
		subscribers: make(map[chan protocol.Overview]struct{}),
	}, nil
}

// Start begins the polling loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The poller fetches once
// right away, then on every interval tick until [OverviewPoller.Stop] is
// called or the context is cancelled. Fetch failures are logged and the next
// tick tries again; the retained snapshot is left untouched.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (p *OverviewPoller) Start(ctx context.Context) {
	p.lifeMu.Lock()
	if p.started || p.stopped {
		p.lifeMu.Unlock()
		return
	}
	p.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	pollCtx := p.ctx // capture under lock to avoid race
	p.wg.Add(1)
	p.lifeMu.Unlock()

	go func() {
		defer p.wg.Done()

		if _, err := p.Refresh(pollCtx); err != nil {
			p.logger.Warn("initial overview fetch failed", "error", err)
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if _, err := p.Refresh(pollCtx); err != nil {
					p.logger.Warn("overview fetch failed", "error", err)
				}
			}
		}
	}()
}

// Stop halts the polling loop and waits for it to exit.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (p *OverviewPoller) Stop() {
	p.lifeMu.Lock()
	if !p.stopped {
		p.stopped = true
		if p.cancel != nil {
			p.cancel()
		}
	}
	p.lifeMu.Unlock()

	p.wg.Wait()
}

// Refresh fetches the overview once, stores it, and notifies subscribers.
// It can be called at any time, including while the periodic loop runs.
func (p *OverviewPoller) Refresh(ctx context.Context) (protocol.Overview, error) {
	ov, err := p.api.Overview(ctx)
	if err != nil {
		return protocol.Overview{}, err
	}

	p.mu.Lock()
	p.latest = ov
	p.haveSnap = true
	p.mu.Unlock()

	p.notifySubscribers(ov)
	return ov, nil
}

// Latest returns the most recent snapshot. The second return value is false
// until the first successful fetch.
func (p *OverviewPoller) Latest() (protocol.Overview, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.haveSnap
}

// Subscribe creates a new subscription and returns a channel receiving every
// snapshot stored after this call.
//
// The returned channel has a buffer of 100 snapshots, sent non-blocking.
// Caller must call [OverviewPoller.Unsubscribe] when done.
func (p *OverviewPoller) Subscribe() <-chan protocol.Overview {
	ch := make(chan protocol.Overview, 100)

	p.subMu.Lock()
	p.subscribers[ch] = struct{}{}
	p.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (p *OverviewPoller) Unsubscribe(ch <-chan protocol.Overview) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	for subCh := range p.subscribers {
		if subCh == ch {
			delete(p.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (p *OverviewPoller) notifySubscribers(ov protocol.Overview) {
	p.subMu.RLock()
	defer p.subMu.RUnlock()

	for ch := range p.subscribers {
		select {
		case ch <- ov:
		default:
			// subscriber is slow, drop the snapshot
		}
	}
}
