//go:build windows

package mirror

import (
	"fmt"
	"image"
	"log/slog"
	"syscall"
	"time"
	"unsafe"

	"github.com/glasspane/mirror/internal/logging"
)

// dxgiChannel implements DuplicationChannel on DXGI Desktop Duplication
// (Windows 8+), pure Go with no CGO. One channel owns one
// IDXGIOutputDuplication plus the D3D11 device and staging texture behind
// it.
type dxgiChannel struct {
	cfg ChannelConfig
	log *slog.Logger

	// D3D11/DXGI COM objects.
	device      uintptr // ID3D11Device
	context     uintptr // ID3D11DeviceContext
	duplication uintptr // IDXGIOutputDuplication
	staging     uintptr // ID3D11Texture2D, CPU-readable

	width  int
	height int
	state  DuplicationState

	// True between a FrameReady result and the matching ReleaseFrame.
	frameAcquired bool

	// Reused CPU-side buffers: the RGBA frame handed to callers and the
	// pointer-shape readback scratch.
	frame    *image.RGBA
	shapeBuf []byte
	shape    ShapeUpdate
}

func newPlatformChannel(cfg ChannelConfig) (DuplicationChannel, error) {
	return &dxgiChannel{
		cfg: cfg,
		log: logging.L("duplication"),
	}, nil
}

// Init creates the D3D11 device, duplicates the configured output, and
// allocates the staging texture. Failure is fatal to the session: it means
// duplication is unavailable (pre-Windows-8 class systems) or the output
// index does not exist.
func (c *dxgiChannel) Init() error {
	if c.state == StateActive {
		return fmt.Errorf("duplication channel already active")
	}

	var device, context uintptr
	featureLevel := uint32(d3dFeatureLevel11_0)
	var actualLevel uint32

	hr, _, _ := procD3D11CreateDevice.Call(
		0,                                     // pAdapter (NULL = default)
		uintptr(d3dDriverTypeHardware),        // DriverType
		0,                                     // Software
		uintptr(d3d11CreateDeviceBGRASupport), // Flags
		uintptr(unsafe.Pointer(&featureLevel)),
		1, // FeatureLevels count
		uintptr(d3d11SDKVersion),
		uintptr(unsafe.Pointer(&device)),
		uintptr(unsafe.Pointer(&actualLevel)),
		uintptr(unsafe.Pointer(&context)),
	)
	if int32(hr) < 0 {
		return fmt.Errorf("D3D11CreateDevice failed: 0x%08X", uint32(hr))
	}

	// QueryInterface -> IDXGIDevice
	var dxgiDevice uintptr
	_, err := comCall(device, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidIDXGIDevice)),
		uintptr(unsafe.Pointer(&dxgiDevice)),
	)
	if err != nil {
		comRelease(context)
		comRelease(device)
		return fmt.Errorf("QueryInterface IDXGIDevice: %w", err)
	}
	defer comRelease(dxgiDevice)

	// GetAdapter
	var adapter uintptr
	_, err = comCall(dxgiDevice, dxgiDeviceGetAdapter, uintptr(unsafe.Pointer(&adapter)))
	if err != nil {
		comRelease(context)
		comRelease(device)
		return fmt.Errorf("IDXGIDevice::GetAdapter: %w", err)
	}
	defer comRelease(adapter)

	// EnumOutputs at the fixed index
	var output uintptr
	hrEnum, _, _ := syscall.SyscallN(
		comVtblFn(adapter, dxgiAdapterEnumOutputs),
		adapter,
		uintptr(c.cfg.OutputIndex),
		uintptr(unsafe.Pointer(&output)),
	)
	if int32(hrEnum) < 0 {
		comRelease(context)
		comRelease(device)
		if uint32(hrEnum) == dxgiErrNotFound {
			return fmt.Errorf("%w: output index %d", ErrDisplayNotFound, c.cfg.OutputIndex)
		}
		return fmt.Errorf("IDXGIAdapter::EnumOutputs(%d): 0x%08X", c.cfg.OutputIndex, uint32(hrEnum))
	}

	// QueryInterface -> IDXGIOutput1
	var output1 uintptr
	_, err = comCall(output, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidIDXGIOutput1)),
		uintptr(unsafe.Pointer(&output1)),
	)
	comRelease(output)
	if err != nil {
		comRelease(context)
		comRelease(device)
		return fmt.Errorf("%w: IDXGIOutput1 unavailable: %v", ErrNotSupported, err)
	}
	defer comRelease(output1)

	// DuplicateOutput
	var duplication uintptr
	hrDup, _, _ := syscall.SyscallN(
		comVtblFn(output1, dxgiOutput1DuplicateOutput),
		output1,
		device,
		uintptr(unsafe.Pointer(&duplication)),
	)
	if int32(hrDup) < 0 {
		comRelease(context)
		comRelease(device)
		if uint32(hrDup) == dxgiErrUnsupported {
			return fmt.Errorf("%w: DuplicateOutput: 0x%08X", ErrNotSupported, uint32(hrDup))
		}
		return fmt.Errorf("IDXGIOutput1::DuplicateOutput: 0x%08X", uint32(hrDup))
	}

	// Dimensions come from GetDesc, not from acquire probing: AcquireNextFrame
	// can time out during init when the desktop is static.
	var duplDesc dxgiOutDuplDesc
	hrDesc, _, _ := syscall.SyscallN(
		comVtblFn(duplication, dxgiDuplGetDesc),
		duplication,
		uintptr(unsafe.Pointer(&duplDesc)),
	)
	if int32(hrDesc) < 0 {
		comRelease(duplication)
		comRelease(context)
		comRelease(device)
		return fmt.Errorf("IDXGIOutputDuplication::GetDesc: 0x%08X", uint32(hrDesc))
	}
	width := int(duplDesc.ModeDesc.Width)
	height := int(duplDesc.ModeDesc.Height)
	if width <= 0 || height <= 0 {
		comRelease(duplication)
		comRelease(context)
		comRelease(device)
		return fmt.Errorf("invalid duplication dimensions: %dx%d", width, height)
	}

	// Persistent staging texture for CPU readback.
	stagingDesc := d3d11Texture2DDesc{
		Width:          uint32(width),
		Height:         uint32(height),
		MipLevels:      1,
		ArraySize:      1,
		Format:         dxgiFormatB8G8R8A8,
		SampleCount:    1,
		Usage:          d3d11UsageStaging,
		CPUAccessFlags: d3d11CPUAccessRead,
	}
	var staging uintptr
	_, err = comCall(device, d3d11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&stagingDesc)),
		0, // pInitialData
		uintptr(unsafe.Pointer(&staging)),
	)
	if err != nil {
		comRelease(duplication)
		comRelease(context)
		comRelease(device)
		return fmt.Errorf("CreateTexture2D staging: %w", err)
	}

	c.device = device
	c.context = context
	c.duplication = duplication
	c.staging = staging
	c.width = width
	c.height = height
	c.frameAcquired = false
	if c.frame == nil || c.frame.Rect.Dx() != width || c.frame.Rect.Dy() != height {
		c.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	c.state = StateActive

	c.log.Info("desktop duplication initialized",
		"output", c.cfg.OutputIndex, "width", width, "height", height)
	return nil
}

// AcquireFrame polls the duplication for the next frame. On FrameReady the
// desktop image has been copied and converted into the channel's RGBA
// buffer, and the platform frame stays acquired until ReleaseFrame.
func (c *dxgiChannel) AcquireFrame(timeout time.Duration) (FrameResult, error) {
	if c.state != StateActive {
		return FrameResult{}, fmt.Errorf("acquire on %s duplication channel", c.state)
	}
	if c.frameAcquired {
		return FrameResult{}, fmt.Errorf("previous frame not released")
	}

	var frameInfo dxgiOutDuplFrameInfo
	var resource uintptr
	hr, _, _ := syscall.SyscallN(
		comVtblFn(c.duplication, dxgiDuplAcquireNextFrame),
		c.duplication,
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&frameInfo)),
		uintptr(unsafe.Pointer(&resource)),
	)

	switch uint32(hr) {
	case dxgiErrWaitTimeout:
		return FrameResult{Status: FrameTimeout}, nil
	case dxgiErrAccessLost, dxgiErrDeviceRemoved, dxgiErrDeviceReset:
		c.state = StateLost
		c.log.Warn("duplication access lost", "hresult", fmt.Sprintf("0x%08X", uint32(hr)))
		return FrameResult{Status: FrameAccessLost}, nil
	}
	if int32(hr) < 0 {
		return FrameResult{}, fmt.Errorf("AcquireNextFrame: 0x%08X", uint32(hr))
	}

	// The frame is acquired from here on; every early return must release it.
	release := func() {
		syscall.SyscallN(comVtblFn(c.duplication, dxgiDuplReleaseFrame), c.duplication)
	}

	// Read the pointer shape before the image so a shape failure doesn't
	// leave a half-built result.
	var shape *ShapeUpdate
	if frameInfo.PointerShapeBufferSize > 0 {
		s, err := c.readPointerShape(frameInfo.PointerShapeBufferSize)
		if err != nil {
			// Non-fatal: the previous cursor bitmap stays in use.
			c.log.Warn("pointer shape readback failed", "error", err)
		} else {
			shape = s
		}
	}

	// QueryInterface -> ID3D11Texture2D
	var texture uintptr
	if _, err := comCall(resource, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidID3D11Texture2D)),
		uintptr(unsafe.Pointer(&texture)),
	); err != nil {
		comRelease(resource)
		release()
		return FrameResult{}, fmt.Errorf("QueryInterface ID3D11Texture2D: %w", err)
	}
	comRelease(resource)

	// GPU-to-GPU copy into the staging texture, then map for CPU readback.
	hrCopy, _, _ := syscall.SyscallN(
		comVtblFn(c.context, d3d11CtxCopyResource),
		c.context,
		c.staging,
		texture,
	)
	comRelease(texture)
	if int32(hrCopy) < 0 {
		release()
		return FrameResult{}, fmt.Errorf("CopyResource: 0x%08X", uint32(hrCopy))
	}

	var mapped d3d11MappedSubresource
	hrMap, _, _ := syscall.SyscallN(
		comVtblFn(c.context, d3d11CtxMap),
		c.context,
		c.staging,
		0, // Subresource
		1, // D3D11_MAP_READ
		0, // Flags
		uintptr(unsafe.Pointer(&mapped)),
	)
	if int32(hrMap) < 0 {
		release()
		return FrameResult{}, fmt.Errorf("Map staging texture: 0x%08X", uint32(hrMap))
	}

	// Convert BGRA rows (with possible RowPitch padding) into the RGBA
	// frame buffer.
	rowPitch := int(mapped.RowPitch)
	src := unsafe.Slice((*byte)(unsafe.Pointer(mapped.PData)), c.height*rowPitch)
	for y := 0; y < c.height; y++ {
		bgraRowToRGBA(c.frame.Pix[y*c.frame.Stride:(y+1)*c.frame.Stride], src[y*rowPitch:])
	}

	syscall.SyscallN(comVtblFn(c.context, d3d11CtxUnmap), c.context, c.staging, 0)

	c.frameAcquired = true
	return FrameResult{Status: FrameReady, Pixels: c.frame, Shape: shape}, nil
}

// readPointerShape pulls the changed pointer bitmap out of the acquired
// frame's metadata. The returned update references the channel's scratch
// buffer, valid until the next AcquireFrame.
func (c *dxgiChannel) readPointerShape(size uint32) (*ShapeUpdate, error) {
	if int(size) > len(c.shapeBuf) {
		c.shapeBuf = make([]byte, size)
	}

	var required uint32
	var info dxgiOutDuplPointerShapeInfo
	hr, _, _ := syscall.SyscallN(
		comVtblFn(c.duplication, dxgiDuplGetFramePointerShape),
		c.duplication,
		uintptr(size),
		uintptr(unsafe.Pointer(&c.shapeBuf[0])),
		uintptr(unsafe.Pointer(&required)),
		uintptr(unsafe.Pointer(&info)),
	)
	if int32(hr) < 0 {
		return nil, fmt.Errorf("GetFramePointerShape: 0x%08X", uint32(hr))
	}

	c.shape = ShapeUpdate{
		Kind:     ShapeKind(info.Type),
		Width:    int(info.Width),
		Height:   int(info.Height),
		Pitch:    int(info.Pitch),
		HotspotX: int(info.HotSpotX),
		HotspotY: int(info.HotSpotY),
		Data:     c.shapeBuf[:size],
	}
	return &c.shape, nil
}

// ReleaseFrame returns the acquired frame to the duplication's internal
// buffer. Must be called exactly once per FrameReady result.
func (c *dxgiChannel) ReleaseFrame() error {
	if !c.frameAcquired {
		return fmt.Errorf("no acquired frame to release")
	}
	c.frameAcquired = false
	hr, _, _ := syscall.SyscallN(comVtblFn(c.duplication, dxgiDuplReleaseFrame), c.duplication)
	if int32(hr) < 0 && uint32(hr) != dxgiErrAccessLost {
		return fmt.Errorf("ReleaseFrame: 0x%08X", uint32(hr))
	}
	return nil
}

// Reinit tears down the dead handle and builds a fresh one. Called by the
// scheduler after FrameAccessLost; backoff between attempts is the
// scheduler's job.
func (c *dxgiChannel) Reinit() error {
	c.teardown()
	if err := c.Init(); err != nil {
		return err
	}
	c.log.Info("duplication channel recovered")
	return nil
}

func (c *dxgiChannel) State() DuplicationState { return c.state }
func (c *dxgiChannel) Width() int              { return c.width }
func (c *dxgiChannel) Height() int             { return c.height }

func (c *dxgiChannel) Close() error {
	c.teardown()
	return nil
}

func (c *dxgiChannel) teardown() {
	// Best-effort: never leave an acquired frame hanging across a rebuild.
	if c.frameAcquired && c.duplication != 0 {
		syscall.SyscallN(comVtblFn(c.duplication, dxgiDuplReleaseFrame), c.duplication)
	}
	c.frameAcquired = false
	if c.staging != 0 {
		comRelease(c.staging)
		c.staging = 0
	}
	if c.duplication != 0 {
		comRelease(c.duplication)
		c.duplication = 0
	}
	if c.context != 0 {
		comRelease(c.context)
		c.context = 0
	}
	if c.device != 0 {
		comRelease(c.device)
		c.device = 0
	}
	c.state = StateUninitialized
}

// bgraRowToRGBA converts one row of BGRA texels into RGBA. dst length
// bounds the conversion; src may carry pitch padding past the row.
func bgraRowToRGBA(dst, src []byte) {
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
		dst[i+3] = 255
	}
}

var _ DuplicationChannel = (*dxgiChannel)(nil)
