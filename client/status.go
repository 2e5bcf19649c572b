package client

// ConnectionStatus is a snapshot of a channel's transport state.
//
// Exactly one status exists per [Socket]. It is replaced wholesale on every
// transition, so Connected and Reconnecting are never both true. Error holds
// a human-readable description of the last transport failure; it is empty
// while the connection is healthy.
type ConnectionStatus struct {
	// Connected reports whether a live connection exists.
	Connected bool `json:"connected"`

	// Reconnecting reports whether a connection attempt is in flight or
	// scheduled. A terminal failure (attempts exhausted) leaves this false
	// with Error set.
	Reconnecting bool `json:"reconnecting"`

	// Error is the last transport error, empty when none.
	Error string `json:"error,omitempty"`
}
