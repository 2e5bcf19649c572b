package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/aetheriusmc/aethergate/protocol"
)

const bytesPerMB = 1024 * 1024

// HostSampler builds performance samples from real host readings.
//
// CPU and memory come from the host via gopsutil; TPS comes from the core.
// With interval 0, gopsutil computes CPU usage since the previous call, so
// periodic sampling yields per-interval averages.
type HostSampler struct {
	core Core
}

// NewHostSampler creates a [HostSampler] reading TPS from the given core.
func NewHostSampler(core Core) *HostSampler {
	return &HostSampler{core: core}
}

// Sample produces one [protocol.PerformanceSample] with the current host CPU
// and memory readings.
func (s *HostSampler) Sample(ctx context.Context) (protocol.PerformanceSample, error) {
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return protocol.PerformanceSample{}, fmt.Errorf("failed to get cpu percent: %w", err)
	}
	if len(total) == 0 {
		return protocol.PerformanceSample{}, errors.New("cpu percent returned no readings")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return protocol.PerformanceSample{}, fmt.Errorf("failed to get virtual memory: %w", err)
	}

	status, err := s.core.Status(ctx)
	if err != nil {
		return protocol.PerformanceSample{}, fmt.Errorf("failed to get core status: %w", err)
	}

	return protocol.PerformanceSample{
		TPS:         status.TPS,
		CPUUsage:    total[0],
		MemoryUsage: vm.UsedPercent,
		MemoryTotal: int64(vm.Total / bytesPerMB),
		MemoryUsed:  int64(vm.Used / bytesPerMB),
		Timestamp:   protocol.Now(),
	}, nil
}
