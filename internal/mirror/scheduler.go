package mirror

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/glasspane/mirror/internal/logging"
)

// Presenter displays a composed canvas. Present is called once per tick
// from the scheduler goroutine with a buffer the scheduler reuses, so
// implementations must finish with it before returning.
type Presenter interface {
	Present(canvas *image.RGBA) error
}

// InputSignals reports user requests to stop the session. Poll is called
// once per tick.
type InputSignals interface {
	// Poll returns quit=true when the session should end (window closed
	// or exit hotkey pressed).
	Poll() (quit bool)
}

// CursorSource reports the pointer position in source coordinates.
type CursorSource interface {
	Position() (x, y int, visible bool)
}

// SchedulerConfig wires a Scheduler's collaborators. Now and Sleep
// default to the real clock and exist for tests.
type SchedulerConfig struct {
	View       View
	Channel    DuplicationChannel
	Compositor *Compositor
	Presenter  Presenter
	Signals    InputSignals
	Cursor     CursorSource
	Metrics    *Metrics

	// Consecutive Reinit failures tolerated before giving up.
	ReinitAttempts int
	// Base delay between Reinit attempts; attempt n waits n*ReinitBackoff.
	ReinitBackoff time.Duration

	Now   func() time.Time
	Sleep func(time.Duration)
}

// Scheduler runs the fixed-rate capture/compose/present loop. All
// per-tick work happens on the goroutine that calls Run.
type Scheduler struct {
	cfg    SchedulerConfig
	log    *slog.Logger
	cursor *CursorBitmap
}

// NewScheduler validates the wiring and returns a ready scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Channel == nil {
		return nil, fmt.Errorf("scheduler requires a duplication channel")
	}
	if cfg.Compositor == nil {
		return nil, fmt.Errorf("scheduler requires a compositor")
	}
	if cfg.Presenter == nil {
		return nil, fmt.Errorf("scheduler requires a presenter")
	}
	if err := cfg.View.Validate(); err != nil {
		return nil, fmt.Errorf("invalid view: %w", err)
	}
	if cfg.ReinitAttempts <= 0 {
		cfg.ReinitAttempts = 5
	}
	if cfg.ReinitBackoff <= 0 {
		cfg.ReinitBackoff = 200 * time.Millisecond
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Scheduler{
		cfg: cfg,
		log: logging.L("scheduler"),
	}, nil
}

// Run drives the loop until the context is cancelled, the input signals
// request quit, or an unrecoverable error occurs. Each tick acquires at
// most one frame, recomposes the canvas, presents it, then sleeps off
// the remainder of the frame interval.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.cfg.View.FrameInterval()
	reinitFailures := 0

	s.log.Info("capture loop started",
		"intervalMs", interval.Milliseconds(),
		"source", fmt.Sprintf("%dx%d", s.cfg.View.SourceW, s.cfg.View.SourceH),
		"render", fmt.Sprintf("%dx%d", s.cfg.View.RenderW, s.cfg.View.RenderH),
		"output", fmt.Sprintf("%dx%d", s.cfg.View.OutputW, s.cfg.View.OutputH))

	for {
		tickStart := s.cfg.Now()

		if ctx.Err() != nil {
			s.log.Info("capture loop stopped", "reason", "context cancelled")
			return nil
		}
		if s.cfg.Signals != nil && s.cfg.Signals.Poll() {
			s.log.Info("capture loop stopped", "reason", "quit requested")
			return nil
		}

		result, err := s.cfg.Channel.AcquireFrame(0)
		if err != nil {
			return fmt.Errorf("acquire frame: %w", err)
		}
		s.cfg.Metrics.RecordAcquire(s.cfg.Now().Sub(tickStart))

		switch result.Status {
		case FrameAccessLost:
			if err := s.cfg.Channel.Reinit(); err != nil {
				reinitFailures++
				if reinitFailures >= s.cfg.ReinitAttempts {
					return fmt.Errorf("duplication reinit failed %d times: %w", reinitFailures, err)
				}
				s.log.Warn("duplication reinit failed",
					"attempt", reinitFailures, "error", err)
				s.cfg.Sleep(time.Duration(reinitFailures) * s.cfg.ReinitBackoff)
			} else {
				reinitFailures = 0
				s.cfg.Metrics.RecordRecovery()
			}
			// No compose or present this tick; the previous canvas stays
			// on screen. The tick still falls through to the pacing sleep
			// below, so a run of lost frames (lock screen, display mode
			// switch) cannot spin the reinit path at full speed.

		case FrameReady:
			reinitFailures = 0
			s.cfg.Metrics.RecordCapture()
			if result.Shape != nil {
				if bmp, err := DecodeShape(*result.Shape); err != nil {
					s.cfg.Metrics.RecordDecodeError()
					s.log.Warn("cursor shape decode failed", "error", err)
				} else {
					s.cursor = bmp
					s.cfg.Metrics.RecordShapeUpdate()
				}
			}
			s.composeTick(result.Pixels)
			if err := s.cfg.Channel.ReleaseFrame(); err != nil {
				return fmt.Errorf("release frame: %w", err)
			}

		case FrameTimeout:
			s.cfg.Metrics.RecordTimeout()
			s.composeTick(nil)
		}

		if result.Status != FrameAccessLost {
			presentStart := s.cfg.Now()
			if err := s.cfg.Presenter.Present(s.cfg.Compositor.Canvas()); err != nil {
				return fmt.Errorf("present: %w", err)
			}
			s.cfg.Metrics.RecordPresent(s.cfg.Now().Sub(presentStart))
		}

		if remaining := interval - s.cfg.Now().Sub(tickStart); remaining > 0 {
			s.cfg.Sleep(remaining)
		}
	}
}

// composeTick rebuilds the canvas from the given frame (nil reuses the
// last scaled image) and the current cursor state.
func (s *Scheduler) composeTick(src *image.RGBA) {
	start := s.cfg.Now()

	// The cursor is re-queried and redrawn every tick, timeout ticks
	// included, so it keeps moving while the desktop image is static.
	// Without a cursor source there is no position to draw at, so the
	// cursor stays off the canvas entirely.
	cursor := s.cursor
	pos := image.Point{}
	if s.cfg.Cursor != nil {
		x, y, visible := s.cfg.Cursor.Position()
		if !visible {
			cursor = nil
		}
		pos = image.Point{X: x, Y: y}
	} else {
		cursor = nil
	}

	s.cfg.Compositor.Compose(src, cursor, pos)
	s.cfg.Metrics.RecordCompose(s.cfg.Now().Sub(start))
}
