package store

import (
	"time"

	"github.com/aetheriusmc/aethergate/protocol"
)

// Store defines the gateway's history storage: console lines backing the
// console history endpoint and metric points backing the metrics endpoint.
//
// Store implementations must be safe for concurrent access. Writers are the
// realtime push service and the WebSocket hub; readers are the REST
// handlers.
type Store interface {
	// AppendConsole stores one console line, dropping the oldest excess
	// past the retention limit.
	AppendConsole(line protocol.ConsoleLine)

	// ConsoleHistory returns up to limit of the newest retained lines,
	// oldest first, along with the total retained count. A non-positive
	// limit returns everything.
	ConsoleHistory(limit int) ([]protocol.ConsoleLine, int)

	// RecordMetric stores one metric point. Points arriving faster than
	// the recording interval are dropped, keeping the series at its
	// declared cadence.
	RecordMetric(point protocol.MetricPoint)

	// Metrics returns the retained points within the trailing window,
	// oldest first.
	Metrics(window time.Duration) []protocol.MetricPoint
}
