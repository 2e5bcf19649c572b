package aethergate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aetheriusmc/aethergate/internal/backend"
	"github.com/aetheriusmc/aethergate/internal/httpapi"
	"github.com/aetheriusmc/aethergate/internal/hub"
	"github.com/aetheriusmc/aethergate/internal/realtime"
	"github.com/aetheriusmc/aethergate/internal/server"
	"github.com/aetheriusmc/aethergate/internal/store"
	"github.com/aetheriusmc/aethergate/protocol"
)

const (
	defaultListenAddr        = ":8080"
	defaultServerVersion     = "1.20.1"
	defaultMaxPlayers        = 20
	defaultStatusInterval    = 5 * time.Second
	defaultDashboardInterval = 10 * time.Second

	// retention for the REST-facing history buffers
	consoleHistoryLimit = 1000
	metricHistoryLimit  = 1440
	metricRecordEvery   = time.Minute
)

// Gateway is the main orchestrator for the management gateway.
//
// Gateway wires the simulated server core, the websocket hub, the realtime
// push loops, and the REST API together and serves them over a single HTTP
// listener. It is created using [New] with functional options and started
// with [Gateway.Start].
//
// The typical lifecycle is:
//
//	gw, err := aethergate.New(aethergate.WithListenAddr(":8080"))
//	if err != nil {
//	    slog.Error("failed to create gateway", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	gw.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown.
type Gateway struct {
	listenAddr        string
	version           string
	maxPlayers        int
	statusInterval    time.Duration
	dashboardInterval time.Duration
	consoleFeed       bool
	logger            *slog.Logger
}

// New creates a new [Gateway] instance with the given options.
//
// All options have sensible defaults:
//   - Listen address: ":8080"
//   - Server version: "1.20.1"
//   - Max players: 20
//   - Status interval: 5 seconds
//   - Dashboard interval: 10 seconds
//   - Console feed: enabled
//
// Returns an error if any option is invalid.
//
// Example:
//
//	gw, err := aethergate.New(
//	    aethergate.WithListenAddr(":9090"),
//	    aethergate.WithStatusInterval(10 * time.Second),
//	)
func New(opts ...Option) (*Gateway, error) {
	cfg := &gwConfig{
		listenAddr:        defaultListenAddr,
		version:           defaultServerVersion,
		maxPlayers:        defaultMaxPlayers,
		statusInterval:    defaultStatusInterval,
		dashboardInterval: defaultDashboardInterval,
		consoleFeed:       true,
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

	return &Gateway{
		listenAddr:        cfg.listenAddr,
		version:           cfg.version,
		maxPlayers:        cfg.maxPlayers,
		statusInterval:    cfg.statusInterval,
		dashboardInterval: cfg.dashboardInterval,
		consoleFeed:       cfg.consoleFeed,
		logger:            logger,
	}, nil
}

// Start begins serving the gateway.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The REST API is served under /api/v1 (plus /health)
//   - Websocket channels are served at /ws/console, /ws/status and /ws/dashboard
//   - Status and dashboard frames are pushed at the configured intervals
//   - When the console feed is enabled, simulated log lines are pushed too
//
// The caller controls the lifecycle via context cancellation. For signal
// handling, use [signal.NotifyContext]:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	gw.Start(ctx)
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start.
func (gw *Gateway) Start(ctx context.Context) error {
	gw.logger.Info("aethergate starting",
		"addr", gw.listenAddr,
		"server_version", gw.version,
		"max_players", gw.maxPlayers,
	)

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	core := backend.NewSimCore(gw.version, gw.maxPlayers)
	api := backend.NewAPI(core, gw.logger)
	sampler := backend.NewHostSampler(core)
	history := store.NewMemoryStore(consoleHistoryLimit, metricHistoryLimit, metricRecordEvery)
	sockets := hub.New(api, history, gw.logger)

	var feed realtime.FeedSource
	if gw.consoleFeed {
		feed = core
	}

	pusher := realtime.New(realtime.Config{
		API:               api,
		Sampler:           sampler,
		Hub:               sockets,
		History:           history,
		Feed:              feed,
		StatusInterval:    gw.statusInterval,
		DashboardInterval: gw.dashboardInterval,
		Logger:            gw.logger,
	})
	pusher.Start(ctx)

	// cleanup function ensures push loops are drained before the hub closes
	// its connections
	cleanup := func() {
		pusher.Stop()
		sockets.CloseAll()
	}

	mux := gw.buildMux(api, history, sockets)

	httpServer := server.New(gw.listenAddr, mux, gw.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	gw.logger.Info("aethergate stopped")
	return nil
}

// buildMux assembles the gateway's routing table: REST routes behind the
// request logger, websocket routes mounted directly. The upgrade paths are
// not wrapped because the logging middleware does not implement
// http.Hijacker.
func (gw *Gateway) buildMux(api *backend.API, history store.Store, sockets *hub.Hub) *http.ServeMux {
	rest := http.NewServeMux()
	httpapi.New(api, history, sockets, gw.logger).Register(rest)

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.RequestLogger(gw.logger, rest))
	for _, ch := range []protocol.Channel{
		protocol.ChannelConsole,
		protocol.ChannelStatus,
		protocol.ChannelDashboard,
	} {
		mux.Handle(ch.Path(), sockets.Handler(ch))
	}
	return mux
}

// ListenAddr returns the configured HTTP listen address.
func (gw *Gateway) ListenAddr() string {
	return gw.listenAddr
}

// StatusInterval returns the configured interval between status broadcasts.
func (gw *Gateway) StatusInterval() time.Duration {
	return gw.statusInterval
}

// DashboardInterval returns the configured interval between dashboard broadcasts.
func (gw *Gateway) DashboardInterval() time.Duration {
	return gw.dashboardInterval
}
