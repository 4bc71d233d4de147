//go:build windows

package win32

import (
	"syscall"
)

var (
	shcore = syscall.NewLazyDLL("shcore.dll")

	procSetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")
	procSetProcessDpiAwareness        = shcore.NewProc("SetProcessDpiAwareness")
	procSetProcessDPIAware            = user32.NewProc("SetProcessDPIAware")
)

const (
	dpiAwarenessContextPerMonitorV2 = ^uintptr(3) // DPI_AWARENESS_CONTEXT(-4)
	processPerMonitorDpiAware       = 2
)

// EnableDPIAwareness opts the process out of DPI virtualization so window
// and capture coordinates are physical pixels. Tries the newest API first
// and falls back down the chain; must run before any window is created.
func EnableDPIAwareness() {
	if procSetProcessDpiAwarenessContext.Find() == nil {
		if ret, _, _ := procSetProcessDpiAwarenessContext.Call(dpiAwarenessContextPerMonitorV2); ret != 0 {
			return
		}
	}
	if procSetProcessDpiAwareness.Find() == nil {
		if hr, _, _ := procSetProcessDpiAwareness.Call(processPerMonitorDpiAware); int32(hr) >= 0 {
			return
		}
	}
	if procSetProcessDPIAware.Find() == nil {
		procSetProcessDPIAware.Call()
	}
}
