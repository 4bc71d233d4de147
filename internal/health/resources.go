package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Resource thresholds for a process that does nothing but blit frames.
// Sustained usage above these points to a leak or a runaway compose path.
const (
	cpuDegradedPercent  = 50.0
	cpuUnhealthyPercent = 90.0
	rssDegradedMB       = 512
	rssUnhealthyMB      = 1024
)

// ResourceWatcher samples this process's CPU and memory usage and feeds
// the results into a Monitor under the "resources" component.
type ResourceWatcher struct {
	monitor  *Monitor
	interval time.Duration
	proc     *process.Process
}

// NewResourceWatcher creates a watcher reporting into monitor every
// interval.
func NewResourceWatcher(monitor *Monitor, interval time.Duration) (*ResourceWatcher, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open own process: %w", err)
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ResourceWatcher{
		monitor:  monitor,
		interval: interval,
		proc:     proc,
	}, nil
}

// Run samples until the context is cancelled. Intended to be launched on
// its own goroutine.
func (w *ResourceWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *ResourceWatcher) sample() {
	cpuPercent, err := w.proc.CPUPercent()
	if err != nil {
		w.monitor.Update("resources", Unknown, fmt.Sprintf("cpu sample failed: %v", err))
		return
	}

	var rssMB uint64
	if memInfo, err := w.proc.MemoryInfo(); err == nil && memInfo != nil {
		rssMB = memInfo.RSS / 1024 / 1024
	}

	status := Healthy
	message := ""
	switch {
	case cpuPercent >= cpuUnhealthyPercent || rssMB >= rssUnhealthyMB:
		status = Unhealthy
		message = fmt.Sprintf("cpu %.1f%%, rss %dMB", cpuPercent, rssMB)
	case cpuPercent >= cpuDegradedPercent || rssMB >= rssDegradedMB:
		status = Degraded
		message = fmt.Sprintf("cpu %.1f%%, rss %dMB", cpuPercent, rssMB)
	}

	w.monitor.Update("resources", status, message)
}
