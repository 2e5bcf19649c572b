package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aetheriusmc/aethergate/protocol"
)

const (
	// writeWait bounds a single frame write so one dead client cannot
	// stall a broadcast.
	writeWait = 10 * time.Second

	// maxMessageSize caps inbound frames; commands are small.
	maxMessageSize = 64 << 10
)

// Conn is one registered WebSocket connection.
type Conn struct {
	// ID is the connection's uuid, echoed in the greeting frame and
	// carried through logs.
	ID string

	// Channel is the purpose this connection subscribed to.
	Channel protocol.Channel

	ws *websocket.Conn
	mu sync.Mutex // serializes frame writes
}

// Send marshals env and writes it as one text frame.
func (c *Conn) Send(env protocol.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// close sends a close frame and tears the connection down. Safe to call
// multiple times.
func (c *Conn) close(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.mu.Unlock()
	_ = c.ws.Close()
}
