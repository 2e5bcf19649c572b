package protocol

// ConsolePayload is the data of a [TypeConsoleLog] frame.
type ConsolePayload struct {
	Level   string `json:"level"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

// ConsoleLine is a console entry with its arrival timestamp. It is the unit
// stored in console history buffers and returned by the history endpoint.
type ConsoleLine struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Source    string `json:"source"`
	Message   string `json:"message"`
}

// ConnectionEstablishedPayload is the data of the greeting frame the gateway
// sends when a connection is registered.
type ConnectionEstablishedPayload struct {
	ConnectionID string  `json:"connection_id"`
	Channel      Channel `json:"channel"`
}

// PlayerEventPayload is the data of a [TypePlayerEvent] frame.
// Event is "join" or "quit".
type PlayerEventPayload struct {
	Event string `json:"event"`
	Name  string `json:"name"`
	UUID  string `json:"uuid,omitempty"`
}

// MemoryUsage describes heap usage in megabytes.
type MemoryUsage struct {
	Used       int64   `json:"used"`
	Max        int64   `json:"max"`
	Percentage float64 `json:"percentage"`
}

// ServerStatus is a point-in-time snapshot of the managed game server.
// It is the data of [TypeStatusUpdate] frames and the body of the
// /api/v1/server/status response.
type ServerStatus struct {
	IsRunning   bool        `json:"is_running"`
	Uptime      int64       `json:"uptime"`
	Version     string      `json:"version"`
	PlayerCount int         `json:"player_count"`
	MaxPlayers  int         `json:"max_players"`
	TPS         float64     `json:"tps"`
	CPUUsage    float64     `json:"cpu_usage"`
	MemoryUsage MemoryUsage `json:"memory_usage"`
	Timestamp   string      `json:"timestamp"`
}

// Player describes one known player.
type Player struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Online   bool   `json:"online"`
	GameMode string `json:"game_mode,omitempty"`
	Level    int    `json:"level,omitempty"`
}

// PerformanceSample is one point of the live performance series, the data of
// a [TypePerformanceUpdate] frame. Memory values are megabytes; MemoryUsage
// is a percentage of MemoryTotal.
type PerformanceSample struct {
	TPS         float64 `json:"tps"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	MemoryTotal int64   `json:"memory_total"`
	MemoryUsed  int64   `json:"memory_used"`
	Timestamp   string  `json:"timestamp"`
}

// ControlResult reports the outcome of a command or server control action.
// It is the data of [TypeServerControlResult] frames and the body of the
// control endpoints' responses.
type ControlResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Statistics summarizes headline numbers for the dashboard overview.
type Statistics struct {
	TotalPlayers    int     `json:"total_players"`
	ServerUptime    int64   `json:"server_uptime"`
	MemoryUsageMB   int64   `json:"memory_usage_mb"`
	CPUUsagePercent float64 `json:"cpu_usage_percent"`
}

// SummaryPayload is the data of a [TypeDashboardSummary] frame.
type SummaryPayload struct {
	ServerStatus  ServerStatus `json:"server_status"`
	OnlinePlayers []Player     `json:"online_players"`
	Statistics    Statistics   `json:"statistics"`
}

// Overview is the body of the /api/v1/dashboard/overview response.
type Overview struct {
	ServerStatus  ServerStatus  `json:"server_status"`
	OnlinePlayers []Player      `json:"online_players"`
	RecentLogs    []ConsoleLine `json:"recent_logs"`
	Statistics    Statistics    `json:"statistics"`
	Timestamp     string        `json:"timestamp"`
}

// ConsoleHistoryResponse is the body of the /api/v1/console/history response.
type ConsoleHistoryResponse struct {
	History []ConsoleLine `json:"history"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
}

// MetricPoint is one entry of the /api/v1/server/metrics time series.
type MetricPoint struct {
	Timestamp   string  `json:"timestamp"`
	TPS         float64 `json:"tps"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	PlayerCount int     `json:"player_count"`
}

// MetricsResponse is the body of the /api/v1/server/metrics response.
type MetricsResponse struct {
	Metrics         []MetricPoint `json:"metrics"`
	IntervalMinutes int           `json:"interval_minutes"`
	Hours           int           `json:"hours"`
	Timestamp       string        `json:"timestamp"`
}

// HealthResponse is the body of the /health response.
type HealthResponse struct {
	Status               string `json:"status"`
	CoreConnected        bool   `json:"core_connected"`
	WebSocketConnections int    `json:"websocket_connections"`
}
