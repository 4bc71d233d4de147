//go:build windows

package win32

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procFindWindowW   = user32.NewProc("FindWindowW")
	procFindWindowExW = user32.NewProc("FindWindowExW")
)

const (
	swHide       = 0
	swShowNormal = 1
)

// ShellConcealer hides the taskbar and Start button while the mirror
// runs and restores them on exit. Only windows it actually hid are
// restored.
type ShellConcealer struct {
	taskbar uintptr
	start   uintptr
}

func findWindow(class string) uintptr {
	p, err := windows.UTF16PtrFromString(class)
	if err != nil {
		return 0
	}
	hwnd, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(p)), 0)
	return hwnd
}

// Hide conceals the shell surfaces. Missing windows (already hidden,
// third-party shells) are skipped silently.
func (s *ShellConcealer) Hide() {
	if s.taskbar = findWindow("Shell_TrayWnd"); s.taskbar != 0 {
		procShowWindow.Call(s.taskbar, swHide)
	}

	// The Start button is a separate top-level window on older builds.
	p, err := windows.UTF16PtrFromString("Button")
	if err == nil {
		hwnd, _, _ := procFindWindowExW.Call(0, 0, uintptr(unsafe.Pointer(p)), 0)
		if hwnd != 0 {
			s.start = hwnd
			procShowWindow.Call(s.start, swHide)
		}
	}
}

// Restore shows everything Hide concealed.
func (s *ShellConcealer) Restore() {
	if s.taskbar != 0 {
		procShowWindow.Call(s.taskbar, swShowNormal)
		s.taskbar = 0
	}
	if s.start != 0 {
		procShowWindow.Call(s.start, swShowNormal)
		s.start = 0
	}
}
