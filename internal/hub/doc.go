// Package hub manages the gateway's WebSocket connections.
//
// This package is internal to AetherGate. Each real-time channel (console,
// status, dashboard) gets an upgrade handler from [Hub.Handler]; registered
// connections are tracked by uuid and written to through a per-connection
// mutex, so broadcasts and direct replies never interleave frames.
//
// Console connections are bidirectional: inbound command frames are executed
// through the backend API with the echo and result sent back to the issuing
// connection only, and inbound pings are answered with pongs. Status and
// dashboard connections are push-only.
//
// Users of the aethergate library should not need to interact with this
// package directly.
package hub
