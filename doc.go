// Package aethergate provides an embeddable management gateway for a game
// server: a REST API plus websocket channels that stream console output,
// status snapshots and dashboard metrics to connected frontends.
//
// AetherGate is designed as an SDK-first library, allowing developers to
// embed the gateway in their own binaries and configure it programmatically
// via the functional options pattern. The bundled server core is simulated,
// which makes the gateway self-contained for demos, frontend development and
// integration tests.
//
// # Quick Start
//
// Create a gateway and serve it with graceful shutdown:
//
//	gw, _ := aethergate.New(aethergate.WithListenAddr(":8080"))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	gw.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// AetherGate uses the functional options pattern for configuration:
//
//	gw, err := aethergate.New(
//	    aethergate.WithListenAddr(":9090"),
//	    aethergate.WithServerVersion("1.21.4"),
//	    aethergate.WithMaxPlayers(100),
//	    aethergate.WithStatusInterval(10 * time.Second),
//	    aethergate.WithConsoleFeed(false),
//	)
//
// # Surfaces
//
// The gateway serves three websocket channels plus a REST API:
//
//   - /ws/console: live console lines, command submission and command results
//   - /ws/status: periodic status snapshots and player join/quit events
//   - /ws/dashboard: dashboard summaries and performance samples
//   - /api/v1: server control, player actions, console history and metrics
//
// The client for all of these lives in the client package; see
// [github.com/aetheriusmc/aethergate/client].
//
// # Architecture
//
// AetherGate consists of several internal packages (under internal/):
//
//   - internal/backend: the server core, command API and host sampler
//   - internal/store: in-memory console history and metric retention
//   - internal/hub: websocket connection registry and frame routing
//   - internal/realtime: periodic status, dashboard and feed broadcasts
//   - internal/httpapi: REST handlers
//   - internal/server: HTTP server lifecycle
//
// The internal packages are not part of the public API and may change
// without notice. The wire types shared between the gateway and its clients
// live in the protocol package.
package aethergate
