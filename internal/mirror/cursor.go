package mirror

import (
	"errors"
	"fmt"
)

// ShapeKind identifies the pointer bitmap encoding reported by the
// duplication channel (DXGI_OUTDUPL_POINTER_SHAPE_TYPE values).
type ShapeKind uint32

const (
	ShapeMonochrome  ShapeKind = 0x1
	ShapeColor       ShapeKind = 0x2
	ShapeMaskedColor ShapeKind = 0x4
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeMonochrome:
		return "monochrome"
	case ShapeColor:
		return "color"
	case ShapeMaskedColor:
		return "masked-color"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(k))
	}
}

// ErrInvalidShape is returned when a pointer-shape payload is malformed.
// The caller keeps its previous cursor bitmap and continues.
var ErrInvalidShape = errors.New("invalid pointer shape payload")

// ShapeUpdate is a raw pointer-shape change notification from the
// duplication channel. Updates arrive only when the platform reports a
// shape change; absence of an update means the previous bitmap still
// applies. Data is valid until the next AcquireFrame.
type ShapeUpdate struct {
	Kind     ShapeKind
	Width    int
	Height   int // Monochrome: 2x the visible height (AND plane + XOR plane)
	Pitch    int // bytes per input row
	HotspotX int
	HotspotY int
	Data     []byte
}

// CursorBitmap is the canonical decoded cursor: row-major RGBA texels with
// the hotspot anchor. Mask-derived texels carry alpha 0, 128, or 255; color
// cursors carry the source alpha channel through. A bitmap is replaced
// wholesale on each shape update, never mutated in place.
type CursorBitmap struct {
	Width    int
	Height   int
	HotspotX int
	HotspotY int
	Pix      []byte // Width*Height*4, RGBA order
}

// DecodeShape converts a ShapeUpdate into a CursorBitmap. It is a pure
// function of its input; on success the caller replaces its previous bitmap
// with the result.
func DecodeShape(u ShapeUpdate) (*CursorBitmap, error) {
	if u.Width <= 0 || u.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidShape, u.Width, u.Height)
	}
	switch u.Kind {
	case ShapeMonochrome:
		return decodeMonochrome(u)
	case ShapeColor:
		return decodeColor(u)
	case ShapeMaskedColor:
		return decodeMaskedColor(u)
	default:
		return nil, fmt.Errorf("%w: encoding %d", ErrInvalidShape, uint32(u.Kind))
	}
}

// decodeMonochrome expands the two 1-bit planes (AND mask, then XOR mask,
// each rows of Pitch bytes) into RGBA. The and=1,xor=1 case is true
// screen-XOR ink; it is rendered as semi-transparent white rather than
// inverting the pixels underneath.
func decodeMonochrome(u ShapeUpdate) (*CursorBitmap, error) {
	height := u.Height / 2
	if height == 0 {
		return nil, fmt.Errorf("%w: monochrome height %d", ErrInvalidShape, u.Height)
	}
	if u.Pitch < (u.Width+7)/8 {
		return nil, fmt.Errorf("%w: pitch %d for width %d", ErrInvalidShape, u.Pitch, u.Width)
	}
	if len(u.Data) < 2*height*u.Pitch {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d monochrome planes",
			ErrInvalidShape, len(u.Data), u.Width, u.Height)
	}

	bm := newCursorBitmap(u, u.Width, height)
	for y := 0; y < height; y++ {
		andRow := u.Data[y*u.Pitch:]
		xorRow := u.Data[(height+y)*u.Pitch:]
		for x := 0; x < u.Width; x++ {
			bit := uint(7 - x%8)
			andBit := andRow[x/8] >> bit & 1
			xorBit := xorRow[x/8] >> bit & 1

			di := (y*u.Width + x) * 4
			switch {
			case andBit == 0 && xorBit == 0: // opaque black
				bm.Pix[di+3] = 255
			case andBit == 0 && xorBit == 1: // opaque white
				bm.Pix[di] = 255
				bm.Pix[di+1] = 255
				bm.Pix[di+2] = 255
				bm.Pix[di+3] = 255
			case andBit == 1 && xorBit == 0:
				// transparent: leave zeroed
			default: // inverse ink
				bm.Pix[di] = 255
				bm.Pix[di+1] = 255
				bm.Pix[di+2] = 255
				bm.Pix[di+3] = 128
			}
		}
	}
	return bm, nil
}

// decodeColor copies packed BGRA rows into RGBA, swapping B and R. The
// source alpha channel is carried through unchanged.
func decodeColor(u ShapeUpdate) (*CursorBitmap, error) {
	if u.Pitch < u.Width*4 {
		return nil, fmt.Errorf("%w: pitch %d for width %d", ErrInvalidShape, u.Pitch, u.Width)
	}
	if len(u.Data) < u.Height*u.Pitch {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d color bitmap",
			ErrInvalidShape, len(u.Data), u.Width, u.Height)
	}

	bm := newCursorBitmap(u, u.Width, u.Height)
	for y := 0; y < u.Height; y++ {
		src := u.Data[y*u.Pitch:]
		dst := bm.Pix[y*u.Width*4:]
		for x := 0; x < u.Width; x++ {
			si := x * 4
			dst[si] = src[si+2]
			dst[si+1] = src[si+1]
			dst[si+2] = src[si]
			dst[si+3] = src[si+3]
		}
	}
	return bm, nil
}

// decodeMaskedColor treats the alpha byte of each BGRA texel as an XOR-mask
// flag: nonzero means the color XORs with the screen, approximated here as
// the color at half alpha; zero means a plain opaque color texel.
func decodeMaskedColor(u ShapeUpdate) (*CursorBitmap, error) {
	if u.Pitch < u.Width*4 {
		return nil, fmt.Errorf("%w: pitch %d for width %d", ErrInvalidShape, u.Pitch, u.Width)
	}
	if len(u.Data) < u.Height*u.Pitch {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d masked-color bitmap",
			ErrInvalidShape, len(u.Data), u.Width, u.Height)
	}

	bm := newCursorBitmap(u, u.Width, u.Height)
	for y := 0; y < u.Height; y++ {
		src := u.Data[y*u.Pitch:]
		dst := bm.Pix[y*u.Width*4:]
		for x := 0; x < u.Width; x++ {
			si := x * 4
			dst[si] = src[si+2]
			dst[si+1] = src[si+1]
			dst[si+2] = src[si]
			if src[si+3] != 0 {
				dst[si+3] = 128
			} else {
				dst[si+3] = 255
			}
		}
	}
	return bm, nil
}

func newCursorBitmap(u ShapeUpdate, width, height int) *CursorBitmap {
	return &CursorBitmap{
		Width:    width,
		Height:   height,
		HotspotX: u.HotspotX,
		HotspotY: u.HotspotY,
		Pix:      make([]byte, width*height*4),
	}
}
