//go:build windows

package win32

import (
	"fmt"
	"log/slog"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/glasspane/mirror/internal/logging"
)

var (
	user32   = syscall.NewLazyDLL("user32.dll")
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procRegisterClassExW         = user32.NewProc("RegisterClassExW")
	procCreateWindowExW          = user32.NewProc("CreateWindowExW")
	procCreateWindowInBand       = user32.NewProc("CreateWindowInBand")
	procSetWindowBand            = user32.NewProc("SetWindowBand")
	procDefWindowProcW           = user32.NewProc("DefWindowProcW")
	procDestroyWindow            = user32.NewProc("DestroyWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procUpdateWindow             = user32.NewProc("UpdateWindow")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procPeekMessageW             = user32.NewProc("PeekMessageW")
	procTranslateMessage         = user32.NewProc("TranslateMessage")
	procDispatchMessageW         = user32.NewProc("DispatchMessageW")
	procPostQuitMessage          = user32.NewProc("PostQuitMessage")
	procRegisterHotKey           = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey         = user32.NewProc("UnregisterHotKey")
	procSetLayeredWindowAttrs    = user32.NewProc("SetLayeredWindowAttributes")
	procSetWindowDisplayAffinity = user32.NewProc("SetWindowDisplayAffinity")
	procGetModuleHandleW         = kernel32.NewProc("GetModuleHandleW")
)

const (
	wsPopup   = 0x80000000
	wsVisible = 0x10000000

	wsExTopmost     = 0x00000008
	wsExLayered     = 0x00080000
	wsExTransparent = 0x00000020
	wsExToolWindow  = 0x00000080
	wsExNoActivate  = 0x08000000

	swShow = 5

	wmDestroy = 0x0002
	wmClose   = 0x0010
	wmQuit    = 0x0012
	wmHotkey  = 0x0312

	pmRemove = 0x0001

	lwaAlpha = 0x02

	hwndTopmost   = ^uintptr(0) // (HWND)-1
	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoActivate = 0x0010
	swpShowWindow = 0x0040

	// Undocumented window bands. ABOVELOCK_UX windows stay visible over
	// the lock screen; SYSTEM_TOOLS is the fallback accepted on more
	// builds.
	zbidSystemTools = 16
	zbidAboveLockUX = 18

	// WDA_EXCLUDEFROMCAPTURE, Windows 10 2004+.
	wdaExcludeFromCapture = 0x00000011

	exitHotkeyID = 1
)

type wndClassExW struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     uintptr
	HIcon         uintptr
	HCursor       uintptr
	HbrBackground uintptr
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       uintptr
}

type msgW struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Window is the borderless, topmost, click-through output surface. It is
// created and polled from a single OS thread; callers must LockOSThread
// before NewWindow and keep pumping from the same goroutine.
type Window struct {
	hwnd         uintptr
	className    *uint16
	hotkeyBound  bool
	quitReceived bool
	log          *slog.Logger
}

func wndProc(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	switch msg {
	case wmClose:
		procDestroyWindow.Call(hwnd)
		return 0
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	}
	ret, _, _ := procDefWindowProcW.Call(hwnd, uintptr(msg), wparam, lparam)
	return ret
}

// NewWindow registers the window class and creates the output window,
// preferring CreateWindowInBand so the mirror stays visible above the
// lock screen.
func NewWindow(cfg WindowConfig) (*Window, error) {
	log := logging.L("window")

	hinstance, _, _ := procGetModuleHandleW.Call(0)
	className, err := windows.UTF16PtrFromString("GlasspaneMirror")
	if err != nil {
		return nil, err
	}
	title, err := windows.UTF16PtrFromString(cfg.Title)
	if err != nil {
		return nil, err
	}

	wc := wndClassExW{
		Style:         0,
		LpfnWndProc:   windows.NewCallback(wndProc),
		HInstance:     hinstance,
		LpszClassName: className,
	}
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	if atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		return nil, fmt.Errorf("RegisterClassExW: %v", err)
	}

	exStyle := uintptr(wsExTopmost | wsExLayered | wsExTransparent | wsExToolWindow | wsExNoActivate)
	style := uintptr(wsPopup)

	w := &Window{className: className, log: log}

	// Try the banded creation path first so the window outlives desktop
	// transitions like Win+L.
	for _, band := range []uintptr{zbidAboveLockUX, zbidSystemTools} {
		if procCreateWindowInBand.Find() != nil {
			break
		}
		hwnd, _, _ := procCreateWindowInBand.Call(
			exStyle,
			uintptr(unsafe.Pointer(className)),
			uintptr(unsafe.Pointer(title)),
			style,
			uintptr(cfg.X), uintptr(cfg.Y),
			uintptr(cfg.Width), uintptr(cfg.Height),
			0, 0, hinstance, 0,
			band,
		)
		if hwnd != 0 {
			w.hwnd = hwnd
			log.Info("window created in band", "band", band)
			break
		}
	}

	if w.hwnd == 0 {
		hwnd, _, err := procCreateWindowExW.Call(
			exStyle,
			uintptr(unsafe.Pointer(className)),
			uintptr(unsafe.Pointer(title)),
			style,
			uintptr(cfg.X), uintptr(cfg.Y),
			uintptr(cfg.Width), uintptr(cfg.Height),
			0, 0, hinstance, 0,
		)
		if hwnd == 0 {
			return nil, fmt.Errorf("CreateWindowExW: %v", err)
		}
		w.hwnd = hwnd
		log.Info("window created without band")

		// Banded windows already sit above everything; the plain path
		// still benefits from an explicit band request where available.
		if procSetWindowBand.Find() == nil {
			for _, band := range []uintptr{zbidAboveLockUX, zbidSystemTools} {
				if ret, _, _ := procSetWindowBand.Call(w.hwnd, 0, band); ret != 0 {
					log.Debug("window band set", "band", band)
					break
				}
			}
		}
	}

	// Fully opaque layered window; layering is only used for the
	// transparent hit-test behavior.
	procSetLayeredWindowAttrs.Call(w.hwnd, 0, 255, lwaAlpha)

	if cfg.ExcludeFromCapture {
		if ret, _, _ := procSetWindowDisplayAffinity.Call(w.hwnd, wdaExcludeFromCapture); ret == 0 {
			log.Warn("SetWindowDisplayAffinity failed; window may appear in its own capture")
		}
	}

	return w, nil
}

// Show makes the window visible and pins it topmost.
func (w *Window) Show() {
	procShowWindow.Call(w.hwnd, swShow)
	procUpdateWindow.Call(w.hwnd)
	w.ReassertTopmost()
}

// ReassertTopmost re-pins the window above newly created topmost windows.
// Called once per presented frame; the call is cheap when nothing changed.
func (w *Window) ReassertTopmost() {
	procSetWindowPos.Call(w.hwnd, hwndTopmost, 0, 0, 0, 0,
		swpNoSize|swpNoMove|swpNoActivate|swpShowWindow)
}

// RegisterExitHotkey binds a global hotkey that quits the session.
// vk is a virtual-key code, e.g. 0x2D for VK_INSERT.
func (w *Window) RegisterExitHotkey(vk uint32) error {
	ret, _, err := procRegisterHotKey.Call(w.hwnd, exitHotkeyID, 0, uintptr(vk))
	if ret == 0 {
		return fmt.Errorf("RegisterHotKey vk=0x%02X: %v", vk, err)
	}
	w.hotkeyBound = true
	return nil
}

// Poll drains the message queue and reports whether a quit was requested
// via window destruction or the exit hotkey. Must be called regularly
// from the creating thread.
func (w *Window) Poll() bool {
	var msg msgW
	for {
		ret, _, _ := procPeekMessageW.Call(
			uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmRemove)
		if ret == 0 {
			return w.quitReceived
		}
		switch msg.Message {
		case wmQuit:
			w.quitReceived = true
		case wmHotkey:
			if msg.WParam == exitHotkeyID {
				w.log.Info("exit hotkey pressed")
				w.quitReceived = true
			}
		default:
			procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
		}
	}
}

// Handle exposes the native window handle for the presenter.
func (w *Window) Handle() uintptr {
	return w.hwnd
}

// Close unbinds the hotkey and destroys the window.
func (w *Window) Close() error {
	if w.hotkeyBound {
		procUnregisterHotKey.Call(w.hwnd, exitHotkeyID)
		w.hotkeyBound = false
	}
	if w.hwnd != 0 {
		procDestroyWindow.Call(w.hwnd)
		w.hwnd = 0
	}
	return nil
}
