package health

import (
	"context"
	"fmt"
	"time"
)

// PipelineSample carries the capture pipeline counters a watcher tick
// compares against the previous tick. The caller maps its own metrics
// into this shape so the health package stays decoupled from them.
type PipelineSample struct {
	FramesCaptured  uint64
	FramesPresented uint64
	Timeouts        uint64
	Recoveries      uint64
	ComposeMs       float64
	PresentMs       float64
}

// PipelineWatcher derives capture/compose/present health checks from
// periodic metric samples and feeds them into a Monitor.
type PipelineWatcher struct {
	monitor  *Monitor
	sample   func() PipelineSample
	interval time.Duration

	// Per-stage latency budget; a stage that exceeds it cannot hold the
	// frame rate.
	budgetMs float64

	prev PipelineSample
}

// NewPipelineWatcher wires a watcher. budgetMs is the frame interval in
// milliseconds; compose or present running past it degrades the check.
func NewPipelineWatcher(monitor *Monitor, sample func() PipelineSample, interval time.Duration, budgetMs float64) *PipelineWatcher {
	return &PipelineWatcher{
		monitor:  monitor,
		sample:   sample,
		interval: interval,
		budgetMs: budgetMs,
	}
}

// Run samples the pipeline on a fixed interval until the context is
// cancelled.
func (w *PipelineWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.observe(w.sample())
		}
	}
}

// observe updates the three pipeline checks from the delta between the
// previous sample and cur.
func (w *PipelineWatcher) observe(cur PipelineSample) {
	captured := cur.FramesCaptured - w.prev.FramesCaptured
	presented := cur.FramesPresented - w.prev.FramesPresented
	timeouts := cur.Timeouts - w.prev.Timeouts
	recoveries := cur.Recoveries - w.prev.Recoveries
	w.prev = cur

	switch {
	case recoveries > 0:
		w.monitor.Update("capture", Degraded,
			fmt.Sprintf("%d duplication recoveries in the last interval", recoveries))
	case captured == 0 && timeouts == 0:
		// No polls completed at all: the loop is stuck, not idle.
		w.monitor.Update("capture", Unhealthy, "no acquire activity")
	default:
		w.monitor.Update("capture", Healthy, "")
	}

	if cur.ComposeMs > w.budgetMs {
		w.monitor.Update("compose", Degraded,
			fmt.Sprintf("compose took %.1fms, budget %.1fms", cur.ComposeMs, w.budgetMs))
	} else {
		w.monitor.Update("compose", Healthy, "")
	}

	switch {
	case presented == 0:
		w.monitor.Update("present", Unhealthy, "no frames presented")
	case cur.PresentMs > w.budgetMs:
		w.monitor.Update("present", Degraded,
			fmt.Sprintf("present took %.1fms, budget %.1fms", cur.PresentMs, w.budgetMs))
	default:
		w.monitor.Update("present", Healthy, "")
	}
}
