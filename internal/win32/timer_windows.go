//go:build windows

package win32

import (
	"syscall"
)

var (
	winmm = syscall.NewLazyDLL("winmm.dll")

	procTimeBeginPeriod = winmm.NewProc("timeBeginPeriod")
	procTimeEndPeriod   = winmm.NewProc("timeEndPeriod")
)

// TimerResolution raises the system timer granularity to 1ms so frame
// sleeps land close to their deadline. End must be called for every
// successful Begin.
type TimerResolution struct {
	active bool
}

func (t *TimerResolution) Begin() {
	if ret, _, _ := procTimeBeginPeriod.Call(1); ret == 0 { // TIMERR_NOERROR
		t.active = true
	}
}

func (t *TimerResolution) End() {
	if t.active {
		procTimeEndPeriod.Call(1)
		t.active = false
	}
}
