// Package client connects to an AetherGate gateway over WebSocket and REST.
//
// The package is built around [Socket], a reconnecting WebSocket connection
// for one channel (console, status, or dashboard). A socket recovers from
// unexpected drops with exponential backoff, sends periodic heartbeat pings,
// and delivers inbound frames to registered handlers. A manual disconnect
// never triggers reconnection.
//
// # Quick Start
//
// Dial the console channel and mirror its output:
//
//	sock, _ := client.NewSocket("ws://localhost:8080/ws/console")
//	console, _ := client.NewConsoleStore(sock)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := sock.Connect(ctx); err != nil {
//	    slog.Warn("initial connect failed, retrying in background", "error", err)
//	}
//	defer sock.Disconnect()
//
//	lines := console.Subscribe()
//	defer console.Unsubscribe(lines)
//	for line := range lines {
//	    fmt.Printf("[%s] %s\n", line.Level, line.Message)
//	}
//
// # Stores
//
// Each channel has a store that classifies inbound frames by their type tag
// and keeps bounded state:
//
//   - [ConsoleStore]: console lines, command history, local command echo
//   - [StatusStore]: latest server status snapshot, player events
//   - [DashboardStore]: dashboard summary, performance series, control results
//
// Frames with an unrecognized type are logged and dropped; a malformed frame
// never stops dispatch.
//
// # REST
//
// [API] is a typed client for the gateway's HTTP endpoints, and
// [OverviewPoller] keeps a periodically refreshed copy of the dashboard
// overview for consumers that want polled state instead of push frames.
package client
