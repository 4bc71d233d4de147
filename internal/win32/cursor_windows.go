//go:build windows

package win32

import (
	"unsafe"
)

var procGetCursorInfo = user32.NewProc("GetCursorInfo")

const cursorShowing = 0x00000001

type cursorInfoW struct {
	CbSize      uint32
	Flags       uint32
	HCursor     uintptr
	PtScreenPos struct{ X, Y int32 }
}

// CursorTracker reports the pointer position relative to one monitor's
// origin. It uses GetCursorInfo rather than duplication frame metadata,
// so the position stays fresh even when capture times out on a static
// desktop.
type CursorTracker struct {
	originX int
	originY int
}

// NewCursorTracker returns a tracker for the monitor whose top-left
// corner sits at (originX, originY) in virtual-screen coordinates.
func NewCursorTracker(originX, originY int) *CursorTracker {
	return &CursorTracker{originX: originX, originY: originY}
}

// Position returns the cursor location in monitor-local coordinates and
// whether the cursor is currently shown.
func (t *CursorTracker) Position() (x, y int, visible bool) {
	var ci cursorInfoW
	ci.CbSize = uint32(unsafe.Sizeof(ci))
	ret, _, _ := procGetCursorInfo.Call(uintptr(unsafe.Pointer(&ci)))
	if ret == 0 {
		return 0, 0, false
	}
	return int(ci.PtScreenPos.X) - t.originX,
		int(ci.PtScreenPos.Y) - t.originY,
		ci.Flags&cursorShowing != 0
}
