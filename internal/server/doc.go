// Package server provides the HTTP listener for the AetherGate gateway.
//
// This package is internal to AetherGate. It owns only the listener
// lifecycle: binding, serving the composed handler, and graceful shutdown
// via context cancellation with a 5-second timeout for in-flight requests.
// Routing lives in the httpapi and hub packages.
//
// Users of the aethergate library should not need to interact with this
// package directly. The server is started automatically by
// [aethergate.Gateway.Start].
package server
