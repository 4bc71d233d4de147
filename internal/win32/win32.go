// Package win32 provides the presentation-side platform glue: the
// borderless topmost window, the GDI canvas presenter, cursor position
// tracking, shell concealment, and multimedia timer resolution. Every
// entry point has a non-Windows stub returning ErrNotSupported so the
// rest of the program cross-compiles.
package win32

import "errors"

// ErrNotSupported is returned by all constructors on non-Windows
// platforms.
var ErrNotSupported = errors.New("win32 presentation not supported on this platform")

// WindowConfig describes the output window: position and size in screen
// coordinates, typically matching the mirrored monitor's bounds.
type WindowConfig struct {
	Title  string
	X      int
	Y      int
	Width  int
	Height int

	// ExcludeFromCapture asks the compositor to hide the window from
	// screen capture, so the mirror does not capture itself.
	ExcludeFromCapture bool
}
