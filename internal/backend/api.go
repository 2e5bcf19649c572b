package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aetheriusmc/aethergate/protocol"
)

// default reasons applied when a moderation action gives none
const (
	defaultKickReason = "Kicked by admin"
	defaultBanReason  = "Banned by admin"
)

// ErrEmptyCommand is returned when a console command is empty or whitespace.
var ErrEmptyCommand = errors.New("command cannot be empty")

// API wraps a [Core] with validation, command building, and logging. The
// HTTP handlers and the WebSocket hub go through API rather than talking to
// the core directly.
type API struct {
	core   Core
	logger *slog.Logger
}

// NewAPI creates an [API] around the given core. A nil logger defaults to
// slog.Default().
func NewAPI(core Core, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{core: core, logger: logger}
}

// Core returns the wrapped core.
func (a *API) Core() Core {
	return a.core
}

// SendConsoleCommand validates and executes one console command.
//
// The command is trimmed; an empty result returns [ErrEmptyCommand] without
// touching the core.
func (a *API) SendConsoleCommand(ctx context.Context, command string) (protocol.ControlResult, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return protocol.ControlResult{}, ErrEmptyCommand
	}

	a.logger.Info("sending console command", "command", command)
	res, err := a.core.Execute(ctx, command)
	if err != nil {
		return protocol.ControlResult{}, fmt.Errorf("execute command: %w", err)
	}

	a.logger.Info("console command executed",
		"command", command,
		"success", res.Success,
		"message", res.Message,
	)
	return res, nil
}

// ServerStatus returns the core's current status snapshot.
func (a *API) ServerStatus(ctx context.Context) (protocol.ServerStatus, error) {
	return a.core.Status(ctx)
}

// OnlinePlayers returns the currently online players.
func (a *API) OnlinePlayers(ctx context.Context) ([]protocol.Player, error) {
	return a.core.Players(ctx)
}

// StartServer starts the managed server.
func (a *API) StartServer(ctx context.Context) (protocol.ControlResult, error) {
	a.logger.Info("starting server")
	return a.core.Start(ctx)
}

// StopServer stops the managed server.
func (a *API) StopServer(ctx context.Context) (protocol.ControlResult, error) {
	a.logger.Info("stopping server")
	return a.core.Stop(ctx)
}

// RestartServer restarts the managed server.
func (a *API) RestartServer(ctx context.Context) (protocol.ControlResult, error) {
	a.logger.Info("restarting server")
	return a.core.Restart(ctx)
}

// KickPlayer kicks a player, defaulting the reason when empty.
func (a *API) KickPlayer(ctx context.Context, name, reason string) (protocol.ControlResult, error) {
	if reason == "" {
		reason = defaultKickReason
	}
	return a.playerCommand(ctx, fmt.Sprintf("kick %s %s", name, reason), name)
}

// BanPlayer bans a player, defaulting the reason when empty.
func (a *API) BanPlayer(ctx context.Context, name, reason string) (protocol.ControlResult, error) {
	if reason == "" {
		reason = defaultBanReason
	}
	return a.playerCommand(ctx, fmt.Sprintf("ban %s %s", name, reason), name)
}

// OpPlayer grants operator status to a player.
func (a *API) OpPlayer(ctx context.Context, name string) (protocol.ControlResult, error) {
	return a.playerCommand(ctx, "op "+name, name)
}

// DeopPlayer revokes operator status from a player.
func (a *API) DeopPlayer(ctx context.Context, name string) (protocol.ControlResult, error) {
	return a.playerCommand(ctx, "deop "+name, name)
}

// Connected reports whether the core is reachable.
func (a *API) Connected() bool {
	return a.core.Connected()
}

func (a *API) playerCommand(ctx context.Context, command, name string) (protocol.ControlResult, error) {
	if strings.TrimSpace(name) == "" {
		return protocol.ControlResult{}, errors.New("player name cannot be empty")
	}
	return a.SendConsoleCommand(ctx, command)
}

// BuildStatistics derives the headline dashboard numbers from a status
// snapshot and the online player list.
func BuildStatistics(status protocol.ServerStatus, players []protocol.Player) protocol.Statistics {
	return protocol.Statistics{
		TotalPlayers:    len(players),
		ServerUptime:    status.Uptime,
		MemoryUsageMB:   status.MemoryUsage.Used,
		CPUUsagePercent: status.CPUUsage,
	}
}
