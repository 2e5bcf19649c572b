// Package backend adapts a managed game server core to the gateway.
//
// The [Core] interface is the seam between the gateway and whatever actually
// runs the game server. [SimCore] is the built-in simulated implementation
// used for development and tests; [HostSampler] contributes real host CPU
// and memory readings to performance samples.
package backend

import (
	"context"

	"github.com/aetheriusmc/aethergate/protocol"
)

// Core is the gateway's view of a managed game server.
//
// Implementations must be safe for concurrent use; the REST API, the
// WebSocket hub, and the realtime push service all call into the core from
// their own goroutines.
type Core interface {
	// Status returns a point-in-time snapshot of the server.
	Status(ctx context.Context) (protocol.ServerStatus, error)

	// Execute runs one console command and returns its outcome. The
	// command is assumed non-empty; validation happens in [API].
	Execute(ctx context.Context, command string) (protocol.ControlResult, error)

	// Players returns the currently online players.
	Players(ctx context.Context) ([]protocol.Player, error)

	// Start brings the server up. Starting an already running server
	// fails with success=false rather than an error.
	Start(ctx context.Context) (protocol.ControlResult, error)

	// Stop shuts the server down. Stopping a stopped server fails with
	// success=false rather than an error.
	Stop(ctx context.Context) (protocol.ControlResult, error)

	// Restart stops and immediately starts the server.
	Restart(ctx context.Context) (protocol.ControlResult, error)

	// Connected reports whether the core is reachable. It feeds the
	// health endpoint.
	Connected() bool
}
