package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aetheriusmc/aethergate/protocol"
)

const (
	defaultVersion    = "1.20.1"
	defaultMaxPlayers = 20
)

// fixed identities so tests and demos see stable data
var simPlayers = []protocol.Player{
	{UUID: "123e4567-e89b-12d3-a456-426614174000", Name: "TestPlayer1", Online: true},
	{UUID: "123e4567-e89b-12d3-a456-426614174001", Name: "TestPlayer2", Online: false},
}

// simFeed is the rotation of log lines the simulated core produces for the
// console feed.
var simFeed = []struct {
	level   string
	message string
}{
	{"INFO", "Server started successfully"},
	{"INFO", "Loading world 'world'..."},
	{"INFO", "World loaded successfully"},
	{"INFO", "Server is ready for connections"},
	{"INFO", "Player TestPlayer1 joined the game"},
	{"WARN", "Can't keep up! Is the server overloaded?"},
	{"INFO", "Player TestPlayer1 left the game"},
	{"INFO", "Saving world data..."},
	{"INFO", "World saved successfully"},
}

// SimCore is a simulated [Core] for development and tests.
//
// It tracks a running flag and an uptime origin, serves a fixed player
// roster, and answers a small command vocabulary (say, list, stop).
// Performance numbers in [SimCore.Status] are canned; real host readings
// come from [HostSampler].
type SimCore struct {
	version    string
	maxPlayers int

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	feedIdx   int
}

// NewSimCore creates a running [SimCore].
//
// An empty version defaults to "1.20.1"; a non-positive maxPlayers defaults
// to 20.
func NewSimCore(version string, maxPlayers int) *SimCore {
	if version == "" {
		version = defaultVersion
	}
	if maxPlayers <= 0 {
		maxPlayers = defaultMaxPlayers
	}
	return &SimCore{
		version:    version,
		maxPlayers: maxPlayers,
		running:    true,
		startedAt:  time.Now(),
	}
}

// Status implements [Core].
func (c *SimCore) Status(ctx context.Context) (protocol.ServerStatus, error) {
	c.mu.Lock()
	running := c.running
	var uptime int64
	if running {
		uptime = int64(time.Since(c.startedAt).Seconds())
	}
	c.mu.Unlock()

	online, _ := c.Players(ctx)
	return protocol.ServerStatus{
		IsRunning:   running,
		Uptime:      uptime,
		Version:     c.version,
		PlayerCount: len(online),
		MaxPlayers:  c.maxPlayers,
		TPS:         20.0,
		CPUUsage:    45.2,
		MemoryUsage: protocol.MemoryUsage{Used: 2048, Max: 4096, Percentage: 50.0},
		Timestamp:   protocol.Now(),
	}, nil
}

// Execute implements [Core]. Recognized commands:
//
//	say <message>   broadcast a chat message
//	list            list online players
//	stop            stop the server
//
// Anything else fails with "Unknown command: <cmd>".
func (c *SimCore) Execute(_ context.Context, command string) (protocol.ControlResult, error) {
	switch {
	case strings.HasPrefix(command, "say "):
		return result(true, "Broadcasted: "+command[4:]), nil
	case command == "list":
		names := make([]string, 0, len(simPlayers))
		for _, p := range simPlayers {
			if p.Online {
				names = append(names, p.Name)
			}
		}
		msg := fmt.Sprintf("Online players (%d): %s", len(names), strings.Join(names, ", "))
		return result(true, msg), nil
	case command == "stop":
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return result(true, "Server stopping..."), nil
	default:
		return result(false, "Unknown command: "+command), nil
	}
}

// Players implements [Core], returning only online players.
func (c *SimCore) Players(_ context.Context) ([]protocol.Player, error) {
	online := make([]protocol.Player, 0, len(simPlayers))
	for _, p := range simPlayers {
		if p.Online {
			online = append(online, p)
		}
	}
	return online, nil
}

// Start implements [Core].
func (c *SimCore) Start(_ context.Context) (protocol.ControlResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return result(false, "Server is already running"), nil
	}
	c.running = true
	c.startedAt = time.Now()
	return result(true, "Server starting..."), nil
}

// Stop implements [Core].
func (c *SimCore) Stop(_ context.Context) (protocol.ControlResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return result(false, "Server is not running"), nil
	}
	c.running = false
	return result(true, "Server stopping..."), nil
}

// Restart implements [Core]. The server comes back up with a fresh uptime
// origin whether or not it was running.
func (c *SimCore) Restart(_ context.Context) (protocol.ControlResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.running = true
	c.startedAt = time.Now()
	return result(true, "Server restarting..."), nil
}

// Connected implements [Core]. The simulated core is always reachable.
func (c *SimCore) Connected() bool {
	return true
}

// NextFeedLine returns the next simulated console line, cycling through a
// fixed rotation. Lines are numbered so repeats are distinguishable.
func (c *SimCore) NextFeedLine() protocol.ConsoleLine {
	c.mu.Lock()
	idx := c.feedIdx
	c.feedIdx = (c.feedIdx + 1) % len(simFeed)
	c.mu.Unlock()

	entry := simFeed[idx]
	return protocol.ConsoleLine{
		Timestamp: protocol.Now(),
		Level:     entry.level,
		Source:    "Server",
		Message:   fmt.Sprintf("[%02d] %s", idx+1, entry.message),
	}
}

func result(success bool, message string) protocol.ControlResult {
	return protocol.ControlResult{
		Success:   success,
		Message:   message,
		Timestamp: protocol.Now(),
	}
}
