package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aetheriusmc/aethergate/internal/backend"
	"github.com/aetheriusmc/aethergate/internal/hub"
	"github.com/aetheriusmc/aethergate/internal/store"
	"github.com/aetheriusmc/aethergate/protocol"
)

const (
	defaultStatusInterval    = 5 * time.Second
	defaultDashboardInterval = 10 * time.Second
	defaultFeedInterval      = 2 * time.Second

	// tickTimeout bounds the backend calls made by one tick.
	tickTimeout = 5 * time.Second
)

// FeedSource produces simulated console lines for the console feed.
type FeedSource interface {
	NextFeedLine() protocol.ConsoleLine
}

// Config carries the dependencies and intervals for a [Service].
type Config struct {
	API     *backend.API
	Sampler *backend.HostSampler
	Hub     *hub.Hub
	History store.Store

	// Feed enables the console feed when non-nil.
	Feed FeedSource

	// Zero intervals fall back to 5s status, 10s dashboard, 2s feed.
	StatusInterval    time.Duration
	DashboardInterval time.Duration
	FeedInterval      time.Duration

	Logger *slog.Logger
}

// Service pushes periodic frames to the hub's channels.
//
// A status loop broadcasts status_update snapshots and player join/quit
// events, a dashboard loop broadcasts dashboard_summary and
// performance_update frames (recording each sample into the metrics
// history), and an optional feed loop broadcasts simulated console lines.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Service struct {
	api     *backend.API
	sampler *backend.HostSampler
	hub     *hub.Hub
	history store.Store
	feed    FeedSource
	logger  *slog.Logger

	statusEvery    time.Duration
	dashboardEvery time.Duration
	feedEvery      time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool

	// roster of online players as of the previous status tick, keyed by
	// uuid; join and quit events are the diff between ticks
	lastRoster map[string]protocol.Player
}

// New creates a [Service] from cfg, applying interval defaults.
//
// The service must be started with [Service.Start] and stopped with
// [Service.Stop].
func New(cfg Config) *Service {
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = defaultStatusInterval
	}
	if cfg.DashboardInterval <= 0 {
		cfg.DashboardInterval = defaultDashboardInterval
	}
	if cfg.FeedInterval <= 0 {
		cfg.FeedInterval = defaultFeedInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:            cfg.API,
		sampler:        cfg.Sampler,
		hub:            cfg.Hub,
		history:        cfg.History,
		feed:           cfg.Feed,
		logger:         logger,
		statusEvery:    cfg.StatusInterval,
		dashboardEvery: cfg.DashboardInterval,
		feedEvery:      cfg.FeedInterval,
	}
}

// Start launches the push loops in background goroutines.
//
// Start is non-blocking. The status and dashboard loops push immediately,
// then on every interval tick; the feed loop waits one interval before its
// first line. If ctx is nil, context.Background() is used as the parent
// context. Start is idempotent; if Stop was called before Start, Start is a
// no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.lastRoster = make(map[string]protocol.Player)

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(2)
	if s.feed != nil {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	go s.loop(runCtx, s.statusEvery, true, s.statusTick)
	go s.loop(runCtx, s.dashboardEvery, true, s.dashboardTick)
	if s.feed != nil {
		go s.loop(runCtx, s.feedEvery, false, s.feedTick)
	}
	s.logger.Info("realtime service started",
		"status_interval", s.statusEvery.String(),
		"dashboard_interval", s.dashboardEvery.String(),
		"console_feed", s.feed != nil,
	)
}

// Stop halts the push loops and waits for them to exit.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// loop runs tick on every interval until the context is cancelled. With
// immediate set, tick also runs once up front.
func (s *Service) loop(ctx context.Context, every time.Duration, immediate bool, tick func(context.Context)) {
	defer s.wg.Done()

	if immediate {
		tick(ctx)
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// statusTick broadcasts one status snapshot and any player join or quit
// events since the previous tick.
func (s *Service) statusTick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	status, err := s.api.ServerStatus(ctx)
	if err != nil {
		s.logger.Warn("status tick failed", "error", err)
		return
	}

	env, err := protocol.NewEnvelope(protocol.TypeStatusUpdate, status)
	if err != nil {
		s.logger.Error("failed to build status_update", "error", err)
		return
	}
	s.hub.Broadcast(protocol.ChannelStatus, env)

	players, err := s.api.OnlinePlayers(ctx)
	if err != nil {
		s.logger.Warn("player roster fetch failed", "error", err)
		return
	}
	s.broadcastRosterChanges(players)
}

// broadcastRosterChanges diffs the roster against the previous tick and
// emits player_event frames for joins and quits.
func (s *Service) broadcastRosterChanges(players []protocol.Player) {
	roster := make(map[string]protocol.Player, len(players))
	for _, p := range players {
		roster[p.UUID] = p
	}

	s.mu.Lock()
	prev := s.lastRoster
	s.lastRoster = roster
	s.mu.Unlock()

	for id, p := range roster {
		if _, ok := prev[id]; !ok {
			s.playerEvent("join", p)
		}
	}
	for id, p := range prev {
		if _, ok := roster[id]; !ok {
			s.playerEvent("quit", p)
		}
	}
}

func (s *Service) playerEvent(event string, p protocol.Player) {
	env, err := protocol.NewEnvelope(protocol.TypePlayerEvent, protocol.PlayerEventPayload{
		Event: event,
		Name:  p.Name,
		UUID:  p.UUID,
	})
	if err != nil {
		s.logger.Error("failed to build player_event", "error", err)
		return
	}
	s.logger.Info("player event", "event", event, "player", p.Name)
	s.hub.Broadcast(protocol.ChannelStatus, env)
}

// dashboardTick broadcasts one summary and one performance sample, and
// records the sample into the metrics history.
func (s *Service) dashboardTick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	status, err := s.api.ServerStatus(ctx)
	if err != nil {
		s.logger.Warn("dashboard tick failed", "error", err)
		return
	}
	players, err := s.api.OnlinePlayers(ctx)
	if err != nil {
		s.logger.Warn("player roster fetch failed", "error", err)
		players = nil
	}

	summary := protocol.SummaryPayload{
		ServerStatus:  status,
		OnlinePlayers: players,
		Statistics:    backend.BuildStatistics(status, players),
	}
	if env, err := protocol.NewEnvelope(protocol.TypeDashboardSummary, summary); err != nil {
		s.logger.Error("failed to build dashboard_summary", "error", err)
	} else {
		s.hub.Broadcast(protocol.ChannelDashboard, env)
	}

	sample, err := s.sampler.Sample(ctx)
	if err != nil {
		s.logger.Warn("performance sample failed", "error", err)
		return
	}
	if env, err := protocol.NewEnvelope(protocol.TypePerformanceUpdate, sample); err != nil {
		s.logger.Error("failed to build performance_update", "error", err)
	} else {
		s.hub.Broadcast(protocol.ChannelDashboard, env)
	}

	s.history.RecordMetric(protocol.MetricPoint{
		Timestamp:   sample.Timestamp,
		TPS:         sample.TPS,
		CPUUsage:    sample.CPUUsage,
		MemoryUsage: sample.MemoryUsage,
		PlayerCount: status.PlayerCount,
	})
}

// feedTick appends one simulated console line to the history and broadcasts
// it to console connections.
func (s *Service) feedTick(context.Context) {
	line := s.feed.NextFeedLine()
	s.history.AppendConsole(line)

	env, err := hub.ConsoleEnvelope(line)
	if err != nil {
		s.logger.Error("failed to build console_log", "error", err)
		return
	}
	s.hub.Broadcast(protocol.ChannelConsole, env)
}
