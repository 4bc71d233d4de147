// Package mirror implements the capture-and-compose pipeline: it acquires
// frames from a desktop-duplication channel, decodes pointer-shape updates
// into a canonical cursor bitmap, composites a scaled, letterboxed canvas
// with the cursor overlaid, and paces presentation at a fixed frame rate.
//
// The pipeline is single-threaded by contract. One Scheduler tick acquires,
// composes, and presents before the next tick begins; the only suspension
// point is the end-of-tick sleep.
package mirror

import (
	"fmt"
	"time"
)

// View describes the fixed geometry of one mirroring session: the captured
// source monitor, the scaled render region, and the presented output canvas.
// Dimensions never change for the lifetime of a session.
type View struct {
	SourceW int // captured monitor width
	SourceH int // captured monitor height
	RenderW int // width of the scaled region on the canvas
	RenderH int // height of the scaled region on the canvas
	OutputW int // presented canvas width
	OutputH int // presented canvas height

	TargetFPS int
}

// DefaultView mirrors a 1920x1080 monitor into the left 1440 columns of a
// 1920x1080 canvas at 60 FPS, leaving a 480-column black band on the right.
func DefaultView() View {
	return View{
		SourceW:   1920,
		SourceH:   1080,
		RenderW:   1440,
		RenderH:   1080,
		OutputW:   1920,
		OutputH:   1080,
		TargetFPS: 60,
	}
}

// FrameInterval returns the target tick duration.
func (v View) FrameInterval() time.Duration {
	return time.Second / time.Duration(v.TargetFPS)
}

// Validate rejects geometry the compositor cannot hold.
func (v View) Validate() error {
	if v.SourceW <= 0 || v.SourceH <= 0 {
		return fmt.Errorf("invalid source dimensions: %dx%d", v.SourceW, v.SourceH)
	}
	if v.RenderW <= 0 || v.RenderH <= 0 {
		return fmt.Errorf("invalid render dimensions: %dx%d", v.RenderW, v.RenderH)
	}
	if v.OutputW < v.RenderW || v.OutputH < v.RenderH {
		return fmt.Errorf("output %dx%d smaller than render region %dx%d",
			v.OutputW, v.OutputH, v.RenderW, v.RenderH)
	}
	if v.TargetFPS <= 0 {
		return fmt.Errorf("invalid target fps: %d", v.TargetFPS)
	}
	return nil
}
