package mirror

import (
	"errors"
	"image"
	"time"
)

// ErrNotSupported is returned when desktop duplication is not available on
// the platform.
var ErrNotSupported = errors.New("desktop duplication not supported on this platform")

// ErrDisplayNotFound is returned when the configured output index does not
// exist.
var ErrDisplayNotFound = errors.New("display not found")

// DuplicationState tracks the capture channel lifecycle:
// Uninitialized -> Active on Init success, Active -> Lost when an acquire
// loses access, Lost -> Active on Reinit success.
type DuplicationState int32

const (
	StateUninitialized DuplicationState = iota
	StateActive
	StateLost
)

func (s DuplicationState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateLost:
		return "lost"
	default:
		return "invalid"
	}
}

// FrameStatus classifies a successful AcquireFrame call.
type FrameStatus int

const (
	// FrameTimeout means no new content arrived within the timeout. The
	// caller keeps presenting the previous composite. This is the expected
	// steady state on an idle desktop, not an error.
	FrameTimeout FrameStatus = iota

	// FrameReady means new content is in Pixels. The caller must call
	// ReleaseFrame exactly once before the next AcquireFrame.
	FrameReady

	// FrameAccessLost means the duplication handle was invalidated (desktop
	// switch, resolution change, lock screen). The caller must Reinit.
	FrameAccessLost
)

// FrameResult is the outcome of one AcquireFrame call.
type FrameResult struct {
	Status FrameStatus

	// Pixels is the captured frame in RGBA order, set only for FrameReady.
	// The buffer is owned by the channel and valid until ReleaseFrame.
	Pixels *image.RGBA

	// Shape is non-nil only when the platform reported a pointer shape
	// change with this frame.
	Shape *ShapeUpdate
}

// DuplicationChannel owns the lifecycle of the platform's frame-duplication
// handle. Unrecoverable platform failures surface as non-nil errors from
// AcquireFrame; everything transient is expressed through FrameStatus.
//
// The channel is call-and-response from a single goroutine. It must never be
// used concurrently from two call sites.
type DuplicationChannel interface {
	// Init acquires the duplication handle for the configured output.
	// Failure is fatal to the session; there is no retry loop inside the
	// channel.
	Init() error

	// AcquireFrame polls for the next frame, waiting at most timeout.
	AcquireFrame(timeout time.Duration) (FrameResult, error)

	// ReleaseFrame releases the frame returned by the last FrameReady
	// result. Skipping it deadlocks subsequent acquisitions against the
	// platform's internal buffer.
	ReleaseFrame() error

	// Reinit tears down the current handle and runs Init again. Callers
	// decide the retry budget and must back off between attempts; access
	// loss can recur every tick until the desktop stabilizes.
	Reinit() error

	// State reports the channel lifecycle state.
	State() DuplicationState

	// Width and Height report the captured output's dimensions, valid
	// after a successful Init.
	Width() int
	Height() int

	Close() error
}

// ChannelConfig selects the output to duplicate. The output index is fixed
// for the session; the channel does not enumerate or follow monitors.
type ChannelConfig struct {
	OutputIndex int
}

// NewDuplicationChannel creates the platform duplication channel. The
// returned channel is Uninitialized; call Init before the first acquire.
func NewDuplicationChannel(cfg ChannelConfig) (DuplicationChannel, error) {
	return newPlatformChannel(cfg)
}
