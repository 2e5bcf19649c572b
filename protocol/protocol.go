// Package protocol defines the wire format shared by the aethergate server
// and its clients.
//
// Every frame pushed by the gateway is an [Envelope]: a type tag, an ISO-8601
// timestamp, and a type-specific JSON payload. Frames sent by clients use the
// flatter [ClientFrame] shape, which carries the command text at the top
// level.
//
// The package also defines the payload structs for each message type and the
// REST response types served under /api/v1, so that both halves of the module
// agree on field names without duplicating struct tags.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MessageType tags a frame with its payload shape.
//
// Each real-time channel recognizes a subset of types; frames with tags a
// channel does not recognize are logged and dropped, never treated as errors.
type MessageType string

const (
	// TypeConsoleLog carries a single console line ([ConsolePayload]).
	TypeConsoleLog MessageType = "console_log"

	// TypeConnectionEstablished is sent once by the gateway when a
	// connection is registered ([ConnectionEstablishedPayload]).
	TypeConnectionEstablished MessageType = "connection_established"

	// TypePong answers a client ping. Its timestamp echoes the ping's.
	TypePong MessageType = "pong"

	// TypeStatusUpdate carries a full [ServerStatus] snapshot.
	TypeStatusUpdate MessageType = "status_update"

	// TypePlayerEvent announces a player joining or leaving
	// ([PlayerEventPayload]).
	TypePlayerEvent MessageType = "player_event"

	// TypeDashboardSummary carries an aggregated [SummaryPayload].
	TypeDashboardSummary MessageType = "dashboard_summary"

	// TypePerformanceUpdate carries one [PerformanceSample].
	TypePerformanceUpdate MessageType = "performance_update"

	// TypeServerControlResult reports the outcome of a start, stop, or
	// restart action ([ControlResult]).
	TypeServerControlResult MessageType = "server_control_result"

	// TypeCommand is a client-to-gateway console command ([ClientFrame]).
	TypeCommand MessageType = "command"

	// TypePing is a client-to-gateway keepalive ([ClientFrame]).
	TypePing MessageType = "ping"
)

// String returns the string representation of the message type.
func (t MessageType) String() string {
	return string(t)
}

// Channel identifies one logical real-time connection purpose. Each channel
// has its own WebSocket endpoint, connection lifecycle, and message taxonomy.
type Channel string

const (
	// ChannelConsole streams console output and accepts commands.
	ChannelConsole Channel = "console"

	// ChannelStatus streams server status snapshots and player events.
	ChannelStatus Channel = "status"

	// ChannelDashboard streams aggregated summaries and performance samples.
	ChannelDashboard Channel = "dashboard"
)

// String returns the string representation of the channel.
func (c Channel) String() string {
	return string(c)
}

// Path returns the WebSocket endpoint path for the channel, e.g. "/ws/console".
func (c Channel) Path() string {
	return "/ws/" + string(c)
}

// ManualCloseReason is the close reason a client sends with close code 1000
// to mark an intentional disconnect. Any other closure is treated as abnormal
// and triggers the client's reconnection logic.
const ManualCloseReason = "Manual disconnect"

// Envelope is a gateway-to-client frame.
//
// Data holds the raw payload bytes; use [Envelope.Decode] to unmarshal them
// into the payload struct matching Type.
type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope builds an [Envelope] with the current timestamp, marshalling
// payload into the Data field. A nil payload produces an envelope without
// data.
func NewEnvelope(t MessageType, payload any) (Envelope, error) {
	env := Envelope{Type: t, Timestamp: Now()}
	if payload == nil {
		return env, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	env.Data = data
	return env, nil
}

// Decode unmarshals the envelope's payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return errors.New("envelope has no data")
	}
	return json.Unmarshal(e.Data, v)
}

// ClientFrame is a client-to-gateway frame. Unlike [Envelope], the command
// text sits at the top level rather than inside a data object.
type ClientFrame struct {
	Type      MessageType `json:"type"`
	Command   string      `json:"command,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewCommandFrame builds the frame for submitting a console command.
func NewCommandFrame(command string) ClientFrame {
	return ClientFrame{Type: TypeCommand, Command: command, Timestamp: Now()}
}

// NewPingFrame builds a keepalive frame. The gateway answers with a pong
// echoing the frame's timestamp.
func NewPingFrame() ClientFrame {
	return ClientFrame{Type: TypePing, Timestamp: Now()}
}

// Now returns the current UTC time in the wire timestamp format (RFC 3339).
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
