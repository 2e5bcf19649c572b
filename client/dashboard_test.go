package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aetheriusmc/aethergate/protocol"
)

func sendSample(t *testing.T, server *websocket.Conn, tps float64) {
	t.Helper()

	env, err := protocol.NewEnvelope(protocol.TypePerformanceUpdate, protocol.PerformanceSample{
		TPS:       tps,
		Timestamp: protocol.Now(),
	})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}
	if err := server.WriteJSON(env); err != nil {
		t.Fatalf("server write failed: %v", err)
	}
}

func TestDashboardStore_Summary(t *testing.T) {
	sock, server, _ := newConnectedSocket(t)
	store, err := NewDashboardStore(sock, WithDashboardLogger(testLogger()))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	if _, ok := store.Summary(); ok {
		t.Error("expected no summary before the first frame")
	}

	for _, count := range []int{2, 9} {
		env, err := protocol.NewEnvelope(protocol.TypeDashboardSummary, protocol.SummaryPayload{
			ServerStatus: protocol.ServerStatus{IsRunning: true, PlayerCount: count},
			Statistics:   protocol.Statistics{TotalPlayers: count},
		})
		if err != nil {
			t.Fatalf("failed to build envelope: %v", err)
		}
		if err := server.WriteJSON(env); err != nil {
			t.Fatalf("server write failed: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if summary, ok := store.Summary(); ok && summary.Statistics.TotalPlayers == 9 {
			if summary.ServerStatus.PlayerCount != 9 {
				t.Errorf("unexpected summary: %+v", summary)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	summary, _ := store.Summary()
	t.Fatalf("summary never replaced: %+v", summary)
}

func TestDashboardStore_PerformanceSeries(t *testing.T) {
	sock, server, _ := newConnectedSocket(t)
	store, err := NewDashboardStore(sock,
		WithDashboardLogger(testLogger()),
		WithSeriesLimit(3),
	)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	samples := store.Subscribe()
	defer store.Unsubscribe(samples)

	for i := 1; i <= 4; i++ {
		sendSample(t, server, float64(i))
	}

	// the subscriber sees every sample, including the one later trimmed
	for i := 1; i <= 4; i++ {
		select {
		case sample := <-samples:
			if sample.TPS != float64(i) {
				t.Errorf("sample %d: expected tps %d, got %v", i, i, sample.TPS)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("never received sample %d", i)
		}
	}

	// the retained series keeps only the newest three
	series := store.Performance()
	if len(series) != 3 {
		t.Fatalf("expected 3 retained samples, got %d", len(series))
	}
	for i, want := range []float64{2, 3, 4} {
		if series[i].TPS != want {
			t.Errorf("series[%d]: expected tps %v, got %v", i, want, series[i].TPS)
		}
	}
}

func TestDashboardStore_SampleTimestampBackfill(t *testing.T) {
	sock, server, _ := newConnectedSocket(t)
	store, err := NewDashboardStore(sock, WithDashboardLogger(testLogger()))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	// hand-build a sample without its own timestamp
	data, err := json.Marshal(protocol.PerformanceSample{TPS: 19.5})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	env := protocol.Envelope{
		Type:      protocol.TypePerformanceUpdate,
		Timestamp: "2026-01-02T15:04:05Z",
		Data:      data,
	}
	if err := server.WriteJSON(env); err != nil {
		t.Fatalf("server write failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if series := store.Performance(); len(series) == 1 {
			if series[0].Timestamp != "2026-01-02T15:04:05Z" {
				t.Errorf("expected the envelope timestamp, got %q", series[0].Timestamp)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sample never arrived")
}

func TestDashboardStore_ControlResult(t *testing.T) {
	sock, server, _ := newConnectedSocket(t)
	store, err := NewDashboardStore(sock, WithDashboardLogger(testLogger()))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	if _, ok := store.LastControlResult(); ok {
		t.Error("expected no result before the first frame")
	}

	for _, msg := range []string{"Server stopping...", "Server starting..."} {
		env, err := protocol.NewEnvelope(protocol.TypeServerControlResult, protocol.ControlResult{
			Success: true,
			Message: msg,
		})
		if err != nil {
			t.Fatalf("failed to build envelope: %v", err)
		}
		if err := server.WriteJSON(env); err != nil {
			t.Fatalf("server write failed: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if res, ok := store.LastControlResult(); ok && res.Message == "Server starting..." {
			if !res.Success {
				t.Errorf("unexpected result: %+v", res)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	res, _ := store.LastControlResult()
	t.Fatalf("result never replaced: %+v", res)
}

func TestDashboardStore_IgnoresOtherFrameTypes(t *testing.T) {
	sock, server, _ := newConnectedSocket(t)
	store, err := NewDashboardStore(sock, WithDashboardLogger(testLogger()))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	sendStatusUpdate(t, server, protocol.ServerStatus{IsRunning: true})
	sendSample(t, server, 20.0)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(store.Performance()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := len(store.Performance()); got != 1 {
		t.Fatalf("expected 1 sample, got %d", got)
	}
	if _, ok := store.Summary(); ok {
		t.Error("a status_update must not populate the summary")
	}
}

func TestDashboardStore_SeriesLimitOption(t *testing.T) {
	sock, _, _ := newConnectedSocket(t)

	if _, err := NewDashboardStore(sock, WithSeriesLimit(0)); err == nil {
		t.Error("expected an error for a zero series limit")
	}
	if _, err := NewDashboardStore(sock, WithDashboardLogger(nil)); err == nil {
		t.Error("expected an error for a nil logger")
	}
}
