package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HubStats reports the registry size at sampling time.
type HubStats func() (identities, connections int)

// HealthMonitoringWorker periodically logs the hub process vitals together
// with registry gauges. Purely observational: it never touches the
// registry beyond the stats callback.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
	stats          HubStats
}

func NewHealthMonitoringWorker(log *slog.Logger, metricInterval time.Duration, stats HubStats) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{log: log, metricInterval: metricInterval, stats: stats}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			cpu, err := proc.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := proc.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}
			identities, connections := w.stats()
			w.log.Info("hub health",
				"cpu_percent", cpu,
				"ram_percent", ram,
				"goroutines", runtime.NumGoroutine(),
				"online_identities", identities,
				"live_connections", connections,
			)
		}
	}
}
