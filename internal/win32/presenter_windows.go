//go:build windows

package win32

import (
	"fmt"
	"image"
	"syscall"
	"unsafe"
)

var (
	gdi32 = syscall.NewLazyDLL("gdi32.dll")

	procGetDC              = user32.NewProc("GetDC")
	procReleaseDC          = user32.NewProc("ReleaseDC")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procBitBlt             = gdi32.NewProc("BitBlt")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
)

const (
	srcCopy      = 0x00CC0020
	biRGB        = 0
	dibRGBColors = 0
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	BmiHeader bitmapInfoHeader
	BmiColors [1]uint32
}

// GDIPresenter blits composed canvases into a window through a DIB
// section. GDI handles are created once and reused across frames.
type GDIPresenter struct {
	window *Window

	windowDC  uintptr
	memDC     uintptr
	hBitmap   uintptr
	oldBitmap uintptr
	bits      unsafe.Pointer

	width  int
	height int
}

// NewGDIPresenter allocates the drawing surface for the given window and
// canvas dimensions.
func NewGDIPresenter(w *Window, width, height int) (*GDIPresenter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid presenter dimensions: %dx%d", width, height)
	}

	windowDC, _, err := procGetDC.Call(w.Handle())
	if windowDC == 0 {
		return nil, fmt.Errorf("GetDC: %v", err)
	}

	memDC, _, err := procCreateCompatibleDC.Call(windowDC)
	if memDC == 0 {
		procReleaseDC.Call(w.Handle(), windowDC)
		return nil, fmt.Errorf("CreateCompatibleDC: %v", err)
	}

	// Top-down 32bpp DIB: negative height, rows in memory match rows on
	// screen.
	bi := bitmapInfo{
		BmiHeader: bitmapInfoHeader{
			BiWidth:       int32(width),
			BiHeight:      -int32(height),
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: biRGB,
		},
	}
	bi.BmiHeader.BiSize = uint32(unsafe.Sizeof(bi.BmiHeader))

	var bits unsafe.Pointer
	hBitmap, _, err := procCreateDIBSection.Call(
		memDC,
		uintptr(unsafe.Pointer(&bi)),
		dibRGBColors,
		uintptr(unsafe.Pointer(&bits)),
		0, 0,
	)
	if hBitmap == 0 || bits == nil {
		procDeleteDC.Call(memDC)
		procReleaseDC.Call(w.Handle(), windowDC)
		return nil, fmt.Errorf("CreateDIBSection %dx%d: %v", width, height, err)
	}

	oldBitmap, _, _ := procSelectObject.Call(memDC, hBitmap)

	return &GDIPresenter{
		window:    w,
		windowDC:  windowDC,
		memDC:     memDC,
		hBitmap:   hBitmap,
		oldBitmap: oldBitmap,
		bits:      bits,
		width:     width,
		height:    height,
	}, nil
}

// Present converts the RGBA canvas into the DIB's BGRA layout and blits
// it to the window, then re-pins the window topmost.
func (p *GDIPresenter) Present(canvas *image.RGBA) error {
	if canvas.Rect.Dx() != p.width || canvas.Rect.Dy() != p.height {
		return fmt.Errorf("canvas %dx%d does not match presenter %dx%d",
			canvas.Rect.Dx(), canvas.Rect.Dy(), p.width, p.height)
	}

	dst := unsafe.Slice((*byte)(p.bits), p.width*p.height*4)
	for y := 0; y < p.height; y++ {
		srcRow := canvas.Pix[y*canvas.Stride:]
		dstRow := dst[y*p.width*4:]
		for x := 0; x < p.width; x++ {
			i := x * 4
			dstRow[i] = srcRow[i+2]
			dstRow[i+1] = srcRow[i+1]
			dstRow[i+2] = srcRow[i]
			dstRow[i+3] = 255
		}
	}

	ret, _, err := procBitBlt.Call(
		p.windowDC, 0, 0,
		uintptr(p.width), uintptr(p.height),
		p.memDC, 0, 0,
		srcCopy,
	)
	if ret == 0 {
		return fmt.Errorf("BitBlt: %v", err)
	}

	p.window.ReassertTopmost()
	return nil
}

// Close releases the GDI handles. The window itself is closed separately.
func (p *GDIPresenter) Close() error {
	if p.oldBitmap != 0 {
		procSelectObject.Call(p.memDC, p.oldBitmap)
		p.oldBitmap = 0
	}
	if p.hBitmap != 0 {
		procDeleteObject.Call(p.hBitmap)
		p.hBitmap = 0
	}
	if p.memDC != 0 {
		procDeleteDC.Call(p.memDC)
		p.memDC = 0
	}
	if p.windowDC != 0 {
		procReleaseDC.Call(p.window.Handle(), p.windowDC)
		p.windowDC = 0
	}
	return nil
}
