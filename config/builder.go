package config

import (
	"github.com/aetheriusmc/aethergate"
	"github.com/aetheriusmc/aethergate/client"
)

// BuildGatewayOptions converts parsed configuration into SDK options for
// [aethergate.New].
//
// The config must come from [Load] or [Parse], which apply defaults and
// validate every field; the returned options therefore never fail
// construction on their own.
func BuildGatewayOptions(cfg *Config) []aethergate.Option {
	return []aethergate.Option{
		aethergate.WithListenAddr(cfg.ListenAddr),
		aethergate.WithServerVersion(cfg.Server.Version),
		aethergate.WithMaxPlayers(cfg.Server.MaxPlayers),
		aethergate.WithStatusInterval(cfg.Realtime.StatusInterval.Duration()),
		aethergate.WithDashboardInterval(cfg.Realtime.DashboardInterval.Duration()),
		aethergate.WithConsoleFeed(*cfg.Realtime.ConsoleFeed),
	}
}

// BuildSocketOptions converts parsed configuration into options for
// [client.NewSocket].
func BuildSocketOptions(cfg *Config) []client.Option {
	return []client.Option{
		client.WithHeartbeatInterval(cfg.Client.HeartbeatInterval.Duration()),
		client.WithReconnectBaseDelay(cfg.Client.ReconnectBaseDelay.Duration()),
		client.WithMaxReconnectAttempts(cfg.Client.MaxReconnectAttempts),
	}
}

// BuildAPIOptions converts parsed configuration into options for
// [client.NewAPI].
func BuildAPIOptions(cfg *Config) []client.APIOption {
	return []client.APIOption{
		client.WithTimeout(cfg.Client.RequestTimeout.Duration()),
	}
}

// BuildConsoleOptions converts parsed configuration into options for
// [client.NewConsoleStore].
func BuildConsoleOptions(cfg *Config) []client.ConsoleOption {
	return []client.ConsoleOption{
		client.WithHistoryLimit(cfg.Client.ConsoleHistoryLimit),
		client.WithDisplayLimit(cfg.Client.ConsoleDisplayLimit),
		client.WithCommandHistoryLimit(cfg.Client.CommandHistoryLimit),
	}
}

// BuildDashboardOptions converts parsed configuration into options for
// [client.NewDashboardStore].
func BuildDashboardOptions(cfg *Config) []client.DashboardOption {
	return []client.DashboardOption{
		client.WithSeriesLimit(cfg.Client.PerformanceSeriesLimit),
	}
}

// BuildPollerOptions converts parsed configuration into options for
// [client.NewOverviewPoller].
func BuildPollerOptions(cfg *Config) []client.PollerOption {
	return []client.PollerOption{
		client.WithPollInterval(cfg.Client.PollInterval.Duration()),
	}
}
