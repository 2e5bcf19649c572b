package aethergate

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Defaults(t *testing.T) {
	gw, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if gw.ListenAddr() != ":8080" {
		t.Errorf("expected default listen addr :8080, got %q", gw.ListenAddr())
	}
	if gw.StatusInterval() != 5*time.Second {
		t.Errorf("expected default status interval 5s, got %v", gw.StatusInterval())
	}
	if gw.DashboardInterval() != 10*time.Second {
		t.Errorf("expected default dashboard interval 10s, got %v", gw.DashboardInterval())
	}
}

func TestNew_WithOptions(t *testing.T) {
	gw, err := New(
		WithListenAddr("127.0.0.1:9090"),
		WithServerVersion("1.21.0"),
		WithMaxPlayers(50),
		WithStatusInterval(2*time.Second),
		WithDashboardInterval(30*time.Second),
		WithConsoleFeed(false),
		WithLogger(testLogger()),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if gw.ListenAddr() != "127.0.0.1:9090" {
		t.Errorf("unexpected listen addr: %q", gw.ListenAddr())
	}
	if gw.StatusInterval() != 2*time.Second {
		t.Errorf("unexpected status interval: %v", gw.StatusInterval())
	}
	if gw.DashboardInterval() != 30*time.Second {
		t.Errorf("unexpected dashboard interval: %v", gw.DashboardInterval())
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "empty listen addr", opt: WithListenAddr("")},
		{name: "empty version", opt: WithServerVersion("")},
		{name: "zero max players", opt: WithMaxPlayers(0)},
		{name: "negative max players", opt: WithMaxPlayers(-5)},
		{name: "zero status interval", opt: WithStatusInterval(0)},
		{name: "negative dashboard interval", opt: WithDashboardInterval(-time.Second)},
		{name: "nil logger", opt: WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
