package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/glasspane/mirror/internal/config"
	"github.com/glasspane/mirror/internal/health"
	"github.com/glasspane/mirror/internal/logging"
	"github.com/glasspane/mirror/internal/mirror"
	"github.com/glasspane/mirror/internal/win32"
)

func runMirror() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Validate()

	var logOut io.Writer
	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, 0, 0)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer rw.Close()
		logOut = rw
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, logOut)
	log := logging.L("main")
	log.Info("glasspane starting", "version", version)

	// DPI awareness must be set before any window exists so all
	// coordinates below are physical pixels.
	win32.EnableDPIAwareness()

	// The window, its message pump, and GDI blitting all live on this
	// thread.
	runtime.LockOSThread()

	monitors, err := mirror.ListMonitors()
	if err != nil {
		return fmt.Errorf("enumerate displays: %w", err)
	}
	if cfg.MonitorIndex >= len(monitors) {
		return fmt.Errorf("monitor_index %d out of range, %d display(s) attached", cfg.MonitorIndex, len(monitors))
	}
	mon := monitors[cfg.MonitorIndex]
	log.Info("mirroring display", "monitor", mon.Index, "name", mon.Name,
		"size", fmt.Sprintf("%dx%d", mon.Width, mon.Height))

	channel, err := mirror.NewDuplicationChannel(mirror.ChannelConfig{OutputIndex: cfg.MonitorIndex})
	if err != nil {
		return fmt.Errorf("create duplication channel: %w", err)
	}
	defer channel.Close()
	if err := channel.Init(); err != nil {
		return fmt.Errorf("initialize duplication: %w", err)
	}

	view := mirror.View{
		SourceW:   channel.Width(),
		SourceH:   channel.Height(),
		RenderW:   cfg.RenderWidth,
		RenderH:   cfg.RenderHeight,
		OutputW:   cfg.OutputWidth,
		OutputH:   cfg.OutputHeight,
		TargetFPS: cfg.TargetFPS,
	}
	if err := view.Validate(); err != nil {
		return err
	}

	compositor, err := mirror.NewCompositor(view)
	if err != nil {
		return err
	}

	window, err := win32.NewWindow(win32.WindowConfig{
		Title:              "Glasspane",
		X:                  mon.X,
		Y:                  mon.Y,
		Width:              view.OutputW,
		Height:             view.OutputH,
		ExcludeFromCapture: cfg.ExcludeFromCapture,
	})
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Close()

	presenter, err := win32.NewGDIPresenter(window, view.OutputW, view.OutputH)
	if err != nil {
		return fmt.Errorf("create presenter: %w", err)
	}
	defer presenter.Close()

	if vk, ok := cfg.ExitHotkeyCode(); ok {
		if err := window.RegisterExitHotkey(vk); err != nil {
			log.Warn("exit hotkey unavailable", "error", err)
		}
	}

	var timer win32.TimerResolution
	timer.Begin()
	defer timer.End()

	var shell win32.ShellConcealer
	if cfg.HideShell {
		shell.Hide()
		defer shell.Restore()
	}

	metrics := mirror.NewMetrics()
	healthMon := health.NewMonitor()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsInterval := time.Duration(cfg.MetricsIntervalSeconds) * time.Second
	if watcher, err := health.NewResourceWatcher(healthMon, metricsInterval); err != nil {
		log.Warn("resource watcher unavailable", "error", err)
	} else {
		go watcher.Run(ctx)
	}

	budgetMs := float64(view.FrameInterval().Microseconds()) / 1000.0
	pipeline := health.NewPipelineWatcher(healthMon, func() health.PipelineSample {
		snap := metrics.Snapshot()
		return health.PipelineSample{
			FramesCaptured:  snap.FramesCaptured,
			FramesPresented: snap.FramesPresented,
			Timeouts:        snap.Timeouts,
			Recoveries:      snap.Recoveries,
			ComposeMs:       snap.ComposeMs,
			PresentMs:       snap.PresentMs,
		}
	}, metricsInterval, budgetMs)
	go pipeline.Run(ctx)

	go reportStatus(ctx, metrics, healthMon, metricsInterval)

	scheduler, err := mirror.NewScheduler(mirror.SchedulerConfig{
		View:       view,
		Channel:    channel,
		Compositor: compositor,
		Presenter:  presenter,
		Signals:    window,
		Cursor:     win32.NewCursorTracker(mon.X, mon.Y),
		Metrics:    metrics,
	})
	if err != nil {
		return err
	}

	window.Show()
	err = scheduler.Run(ctx)

	log.Info("glasspane stopped", "framesCaptured", metrics.Snapshot().FramesCaptured)
	return err
}

// reportStatus periodically logs a metrics snapshot and the overall
// health summary.
func reportStatus(ctx context.Context, metrics *mirror.Metrics, mon *health.Monitor, interval time.Duration) {
	log := logging.L("status")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := metrics.Snapshot()
			log.Info("session status",
				"captured", snap.FramesCaptured,
				"presented", snap.FramesPresented,
				"timeouts", snap.Timeouts,
				"recoveries", snap.Recoveries,
				"fps", fmt.Sprintf("%.1f", snap.CaptureFPS),
				"acquireMs", snap.AcquireMs,
				"composeMs", snap.ComposeMs,
				"presentMs", snap.PresentMs,
				"health", mon.Overall())
		}
	}
}
