//go:build !windows

package win32

import "image"

// Window is a stub on non-Windows platforms.
type Window struct{}

func NewWindow(cfg WindowConfig) (*Window, error) { return nil, ErrNotSupported }

func (w *Window) Show()                              {}
func (w *Window) ReassertTopmost()                   {}
func (w *Window) RegisterExitHotkey(vk uint32) error { return ErrNotSupported }
func (w *Window) Poll() bool                         { return false }
func (w *Window) Handle() uintptr                    { return 0 }
func (w *Window) Close() error                       { return nil }

// GDIPresenter is a stub on non-Windows platforms.
type GDIPresenter struct{}

func NewGDIPresenter(w *Window, width, height int) (*GDIPresenter, error) {
	return nil, ErrNotSupported
}

func (p *GDIPresenter) Present(*image.RGBA) error { return ErrNotSupported }
func (p *GDIPresenter) Close() error              { return nil }

// CursorTracker is a stub on non-Windows platforms.
type CursorTracker struct{}

func NewCursorTracker(originX, originY int) *CursorTracker { return &CursorTracker{} }

func (t *CursorTracker) Position() (x, y int, visible bool) { return 0, 0, false }

// ShellConcealer is a stub on non-Windows platforms.
type ShellConcealer struct{}

func (s *ShellConcealer) Hide()    {}
func (s *ShellConcealer) Restore() {}

// TimerResolution is a stub on non-Windows platforms.
type TimerResolution struct{}

func (t *TimerResolution) Begin() {}
func (t *TimerResolution) End()   {}

// EnableDPIAwareness is a no-op on non-Windows platforms.
func EnableDPIAwareness() {}
