// Package store provides the gateway's bounded history storage.
//
// This package is internal to AetherGate and manages the in-memory buffers
// behind the console history and server metrics endpoints. Both buffers are
// bounded; the oldest entries are dropped as new ones arrive.
//
// The main components are:
//
//   - [Store]: Interface defining the history operations
//   - [MemoryStore]: In-memory implementation of Store
//
// The store is designed for concurrent access with proper synchronization.
// Live fanout to WebSocket clients is handled by the hub, not the store;
// the store only answers REST reads.
//
// Users of the aethergate library should not need to interact with this
// package directly. Storage is managed internally by the gateway.
package store
