//go:build windows

package mirror

import (
	"golang.org/x/sys/windows"
)

// D3D11/DXGI DLL procs shared by the duplication channel and monitor
// enumeration.
var (
	d3d11DLL              = windows.NewLazySystemDLL("d3d11.dll")
	procD3D11CreateDevice = d3d11DLL.NewProc("D3D11CreateDevice")
)

// D3D11/DXGI constants.
const (
	d3dDriverTypeHardware = 1
	d3dFeatureLevel11_0   = 0xb000
	d3d11SDKVersion       = 7

	d3d11CreateDeviceBGRASupport = 0x20

	d3d11UsageStaging  = 3
	d3d11CPUAccessRead = 0x20000
	dxgiFormatB8G8R8A8 = 87

	dxgiErrNotFound      = 0x887A0002
	dxgiErrWaitTimeout   = 0x887A0027
	dxgiErrAccessLost    = 0x887A0026
	dxgiErrDeviceRemoved = 0x887A0005
	dxgiErrDeviceReset   = 0x887A0007
	dxgiErrUnsupported   = 0x887A0004

	// DXGI/D3D11 COM vtable indices.
	dxgiDeviceGetAdapter         = 7  // IDXGIDevice
	dxgiAdapterEnumOutputs       = 7  // IDXGIAdapter
	dxgiOutputGetDesc            = 7  // IDXGIOutput
	dxgiOutput1DuplicateOutput   = 22 // IDXGIOutput1
	dxgiDuplGetDesc              = 7  // IDXGIOutputDuplication
	dxgiDuplAcquireNextFrame     = 8  // IDXGIOutputDuplication
	dxgiDuplGetFramePointerShape = 11 // IDXGIOutputDuplication
	dxgiDuplReleaseFrame         = 14 // IDXGIOutputDuplication
	d3d11DeviceCreateTexture2D   = 5  // ID3D11Device
	d3d11CtxMap                  = 14 // ID3D11DeviceContext
	d3d11CtxUnmap                = 15 // ID3D11DeviceContext
	d3d11CtxCopyResource         = 47 // ID3D11DeviceContext
)

// COM GUIDs for the DXGI interfaces we query.
var (
	iidIDXGIDevice     = comGUID{0x54ec77fa, 0x1377, 0x44e6, [8]byte{0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}}
	iidID3D11Texture2D = comGUID{0x6f15aaf2, 0xd208, 0x4e89, [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
	iidIDXGIOutput1    = comGUID{0x00cddea8, 0x939b, 0x4b83, [8]byte{0xa3, 0x40, 0xa6, 0x85, 0x22, 0x66, 0x66, 0xcc}}
)

// d3d11Texture2DDesc matches D3D11_TEXTURE2D_DESC.
type d3d11Texture2DDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleCount    uint32 // DXGI_SAMPLE_DESC.Count
	SampleQuality  uint32 // DXGI_SAMPLE_DESC.Quality
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

// d3d11MappedSubresource matches D3D11_MAPPED_SUBRESOURCE.
type d3d11MappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

type dxgiRational struct {
	Numerator   uint32
	Denominator uint32
}

// dxgiModeDesc matches DXGI_MODE_DESC.
type dxgiModeDesc struct {
	Width            uint32
	Height           uint32
	RefreshRate      dxgiRational
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

// dxgiOutDuplDesc matches DXGI_OUTDUPL_DESC.
type dxgiOutDuplDesc struct {
	ModeDesc                   dxgiModeDesc
	Rotation                   uint32
	DesktopImageInSystemMemory int32 // BOOL
}

// dxgiOutDuplFrameInfo matches DXGI_OUTDUPL_FRAME_INFO.
type dxgiOutDuplFrameInfo struct {
	LastPresentTime           int64
	LastMouseUpdateTime       int64
	AccumulatedFrames         uint32
	RectsCoalesced            int32
	ProtectedContentMaskedOut int32
	PointerPositionX          int32
	PointerPositionY          int32
	PointerVisible            int32
	TotalMetadataBufferSize   uint32
	PointerShapeBufferSize    uint32
}

// dxgiOutDuplPointerShapeInfo matches DXGI_OUTDUPL_POINTER_SHAPE_INFO.
type dxgiOutDuplPointerShapeInfo struct {
	Type     uint32
	Width    uint32
	Height   uint32
	Pitch    uint32
	HotSpotX int32
	HotSpotY int32
}

// dxgiOutputDesc matches DXGI_OUTPUT_DESC:
//
//	WCHAR DeviceName[32], RECT DesktopCoordinates, BOOL AttachedToDesktop,
//	DXGI_MODE_ROTATION, HMONITOR.
type dxgiOutputDesc struct {
	DeviceName        [32]uint16
	Left              int32
	Top               int32
	Right             int32
	Bottom            int32
	AttachedToDesktop int32
	Rotation          uint32
	Monitor           uintptr
}
