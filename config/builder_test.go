package config

import (
	"testing"
	"time"

	"github.com/aetheriusmc/aethergate"
	"github.com/aetheriusmc/aethergate/client"
)

func TestBuildGatewayOptions(t *testing.T) {
	yaml := `
listen_addr: ":9090"
server:
  version: "1.21.4"
  max_players: 50
realtime:
  status_interval: 15s
  dashboard_interval: 45s
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	gw, err := aethergate.New(BuildGatewayOptions(cfg)...)
	if err != nil {
		t.Fatalf("aethergate.New() error = %v", err)
	}

	if gw.ListenAddr() != ":9090" {
		t.Errorf("ListenAddr() = %q, want %q", gw.ListenAddr(), ":9090")
	}
	if gw.StatusInterval() != 15*time.Second {
		t.Errorf("StatusInterval() = %v, want 15s", gw.StatusInterval())
	}
	if gw.DashboardInterval() != 45*time.Second {
		t.Errorf("DashboardInterval() = %v, want 45s", gw.DashboardInterval())
	}
}

func TestBuildGatewayOptions_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	gw, err := aethergate.New(BuildGatewayOptions(cfg)...)
	if err != nil {
		t.Fatalf("aethergate.New() error = %v", err)
	}

	if gw.ListenAddr() != ":8080" {
		t.Errorf("ListenAddr() = %q, want %q", gw.ListenAddr(), ":8080")
	}
	if gw.StatusInterval() != 5*time.Second {
		t.Errorf("StatusInterval() = %v, want 5s", gw.StatusInterval())
	}
}

func TestBuildSocketOptions(t *testing.T) {
	yaml := `
client:
  ws_url: ws://localhost:9090
  heartbeat_interval: 5s
  reconnect_base_delay: 200ms
  max_reconnect_attempts: 3
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// options must construct a socket without error
	sock, err := client.NewSocket(cfg.Client.WSURL+"/ws/console", BuildSocketOptions(cfg)...)
	if err != nil {
		t.Fatalf("client.NewSocket() error = %v", err)
	}
	if sock == nil {
		t.Fatal("client.NewSocket() returned nil socket")
	}
}

func TestBuildStoreOptions(t *testing.T) {
	yaml := `
client:
  ws_url: ws://localhost:9090
  console_history_limit: 200
  console_display_limit: 100
  command_history_limit: 10
  performance_series_limit: 25
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	sock, err := client.NewSocket(cfg.Client.WSURL + "/ws/console")
	if err != nil {
		t.Fatalf("client.NewSocket() error = %v", err)
	}

	console, err := client.NewConsoleStore(sock, BuildConsoleOptions(cfg)...)
	if err != nil {
		t.Fatalf("client.NewConsoleStore() error = %v", err)
	}
	console.Close()

	dashboard, err := client.NewDashboardStore(sock, BuildDashboardOptions(cfg)...)
	if err != nil {
		t.Fatalf("client.NewDashboardStore() error = %v", err)
	}
	dashboard.Close()
}

func TestBuildPollerOptions(t *testing.T) {
	yaml := `
client:
  api_url: http://localhost:9090
  poll_interval: 5s
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	api, err := client.NewAPI(cfg.Client.APIURL, BuildAPIOptions(cfg)...)
	if err != nil {
		t.Fatalf("client.NewAPI() error = %v", err)
	}
	defer api.Close()

	poller, err := client.NewOverviewPoller(api, BuildPollerOptions(cfg)...)
	if err != nil {
		t.Fatalf("client.NewOverviewPoller() error = %v", err)
	}
	poller.Stop()
}

func TestBuildAPIOptions(t *testing.T) {
	yaml := `
client:
  api_url: http://localhost:9090
  request_timeout: 3s
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	api, err := client.NewAPI(cfg.Client.APIURL, BuildAPIOptions(cfg)...)
	if err != nil {
		t.Fatalf("client.NewAPI() error = %v", err)
	}
	if api == nil {
		t.Fatal("client.NewAPI() returned nil API")
	}
	api.Close()
}
