// Package realtime drives the gateway's periodic WebSocket pushes.
//
// This package is internal to AetherGate. The [Service] runs one goroutine
// per push loop: server status to the status channel, dashboard summaries
// and performance samples to the dashboard channel, and (when enabled)
// simulated console lines to the console channel. Performance samples are
// also recorded into the metrics history serving the REST series.
//
// Users of the aethergate library should not need to interact with this
// package directly.
package realtime
