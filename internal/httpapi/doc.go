// Package httpapi serves the gateway's REST endpoints.
//
// This package is internal to AetherGate. The [Handler] mounts every route
// under /api/v1 plus the /health probe: dashboard overview, server status
// and control, player listing and moderation, console command execution,
// console history, and the performance metrics series.
//
// Error responses are JSON objects with an "error" message and an optional
// "detail" field. A core that cannot answer degrades the overview and turns
// other core-backed routes into 503s.
//
// Users of the aethergate library should not need to interact with this
// package directly.
package httpapi
