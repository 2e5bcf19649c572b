package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aetheriusmc/aethergate"
	"github.com/aetheriusmc/aethergate/client"
)

func main() {
	// keep gateway internals quiet so the console lines stand out
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	gw, err := aethergate.New(
		aethergate.WithListenAddr(":8080"),
		aethergate.WithStatusInterval(5*time.Second),
		aethergate.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create gateway", "error", err)
		os.Exit(1)
	}

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the gateway in the background; the rest of this example is a
	// client talking to it over real HTTP and websocket connections
	go func() {
		if err := gw.Start(ctx); err != nil {
			slog.Error("gateway error", "error", err)
			os.Exit(1)
		}
	}()
	time.Sleep(200 * time.Millisecond)

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   AetherGate Demo                                     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   REST API:  http://localhost:8080/api/v1             ║")
	fmt.Println("  ║   Console:   ws://localhost:8080/ws/console           ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   This demo tails the console channel and sends       ║")
	fmt.Println("  ║   a command through it                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// one-shot REST call to show the dashboard overview
	api, err := client.NewAPI("http://localhost:8080")
	if err != nil {
		slog.Error("failed to create API client", "error", err)
		os.Exit(1)
	}
	defer api.Close()

	overview, err := api.Overview(ctx)
	if err != nil {
		slog.Error("failed to fetch overview", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Server %s: %d/%d players online, TPS %.1f\n\n",
		overview.ServerStatus.Version,
		overview.ServerStatus.PlayerCount,
		overview.ServerStatus.MaxPlayers,
		overview.ServerStatus.TPS,
	)

	// live console over websocket
	sock, err := client.NewSocket("ws://localhost:8080/ws/console",
		client.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create socket", "error", err)
		os.Exit(1)
	}
	defer sock.Disconnect()

	console, err := client.NewConsoleStore(sock)
	if err != nil {
		slog.Error("failed to create console store", "error", err)
		os.Exit(1)
	}
	defer console.Close()

	lines := console.Subscribe()
	defer console.Unsubscribe(lines)

	if err := sock.Connect(ctx); err != nil {
		slog.Error("failed to connect", "error", err)
		os.Exit(1)
	}

	// give the connection a moment, then drive a command through the socket
	go func() {
		time.Sleep(500 * time.Millisecond)
		console.SendCommand("say Hello from the AetherGate example")
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("bye")
			return
		case line := <-lines:
			fmt.Printf("[%s] [%s] %s\n", line.Timestamp, line.Level, line.Message)
		}
	}
}
