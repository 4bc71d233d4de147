package mirror

import (
	"bytes"
	"image"
	"testing"
)

func testView() View {
	return DefaultView()
}

func solidSource(v View, r, g, b uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, v.SourceW, v.SourceH))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = 255
	}
	return img
}

func texelAt(img *image.RGBA, x, y int) [4]byte {
	i := y*img.Stride + x*4
	return [4]byte{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

func opaqueCursor(w, h int, r, g, b uint8) *CursorBitmap {
	c := &CursorBitmap{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for i := 0; i < len(c.Pix); i += 4 {
		c.Pix[i] = r
		c.Pix[i+1] = g
		c.Pix[i+2] = b
		c.Pix[i+3] = 255
	}
	return c
}

func TestNewCompositorCanvasIsOpaqueBlack(t *testing.T) {
	c, err := NewCompositor(testView())
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}

	canvas := c.Canvas()
	for i := 0; i < len(canvas.Pix); i += 4 {
		if canvas.Pix[i] != 0 || canvas.Pix[i+1] != 0 || canvas.Pix[i+2] != 0 || canvas.Pix[i+3] != 255 {
			t.Fatalf("texel %d = %v, want opaque black", i/4, canvas.Pix[i:i+4])
		}
	}
}

func TestNewCompositorRejectsInvalidView(t *testing.T) {
	v := testView()
	v.RenderW = v.OutputW + 1
	if _, err := NewCompositor(v); err == nil {
		t.Fatal("expected error for render region wider than output")
	}
}

func TestComposePaddingStaysOpaqueBlack(t *testing.T) {
	v := testView()
	c, err := NewCompositor(v)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}

	// A bright frame and a cursor positioned at the right edge of the
	// source, where a naive blit would spill into the padding band.
	src := solidSource(v, 255, 255, 255)
	cur := opaqueCursor(32, 32, 255, 0, 0)
	c.Compose(src, cur, image.Point{X: v.SourceW - 1, Y: 100})

	canvas := c.Canvas()
	for y := 0; y < v.OutputH; y++ {
		for x := v.RenderW; x < v.OutputW; x++ {
			if got := texelAt(canvas, x, y); got != [4]byte{0, 0, 0, 255} {
				t.Fatalf("padding texel (%d,%d) = %v, want opaque black", x, y, got)
			}
		}
	}
}

func TestComposeWithoutFrameIsIdempotent(t *testing.T) {
	v := testView()
	c, err := NewCompositor(v)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}

	// Semi-transparent cursor: repeated blending over its own output
	// would visibly accumulate if the scaled image were not retained
	// cursor-free.
	cur := &CursorBitmap{Width: 8, Height: 8, Pix: make([]byte, 8*8*4)}
	for i := 0; i < len(cur.Pix); i += 4 {
		cur.Pix[i] = 255
		cur.Pix[i+1] = 255
		cur.Pix[i+2] = 255
		cur.Pix[i+3] = 128
	}

	pos := image.Point{X: 200, Y: 200}
	c.Compose(solidSource(v, 40, 80, 120), cur, pos)
	first := make([]byte, len(c.Canvas().Pix))
	copy(first, c.Canvas().Pix)

	for i := 0; i < 3; i++ {
		c.Compose(nil, cur, pos)
	}

	if !bytes.Equal(first, c.Canvas().Pix) {
		t.Fatal("recomposing without a new frame changed the canvas")
	}
}

func TestComposeCursorOutsideSourceIsSkipped(t *testing.T) {
	v := testView()
	c, err := NewCompositor(v)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}

	src := solidSource(v, 10, 20, 30)
	c.Compose(src, nil, image.Point{})
	want := make([]byte, len(c.Canvas().Pix))
	copy(want, c.Canvas().Pix)

	cur := opaqueCursor(16, 16, 255, 0, 0)
	positions := []image.Point{
		{X: -1, Y: 100},
		{X: 100, Y: -1},
		{X: v.SourceW, Y: 100},
		{X: 100, Y: v.SourceH},
	}
	for _, pos := range positions {
		c.Compose(src, cur, pos)
		if !bytes.Equal(want, c.Canvas().Pix) {
			t.Fatalf("cursor at %v mutated the canvas", pos)
		}
	}
}

func TestComposeCursorPositionScaling(t *testing.T) {
	v := testView()
	c, err := NewCompositor(v)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}

	cur := opaqueCursor(1, 1, 255, 0, 0)
	c.Compose(solidSource(v, 0, 0, 0), cur, image.Point{X: 100, Y: 50})

	// 100 * 1440/1920 = 75 horizontally, vertical scale is identity.
	if got := texelAt(c.Canvas(), 75, 50); got != [4]byte{255, 0, 0, 255} {
		t.Fatalf("texel (75,50) = %v, want red cursor texel", got)
	}
	if got := texelAt(c.Canvas(), 76, 50); got != [4]byte{0, 0, 0, 255} {
		t.Fatalf("texel (76,50) = %v, want untouched background", got)
	}
}

func TestComposeCursorHotspotScaledSeparately(t *testing.T) {
	v := testView()
	c, err := NewCompositor(v)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}

	cur := opaqueCursor(1, 1, 0, 255, 0)
	cur.HotspotX = 4
	c.Compose(solidSource(v, 0, 0, 0), cur, image.Point{X: 100, Y: 50})

	// Position and hotspot truncate independently: 100*3/4 - 4*3/4 = 72.
	if got := texelAt(c.Canvas(), 72, 50); got != [4]byte{0, 255, 0, 255} {
		t.Fatalf("texel (72,50) = %v, want cursor texel", got)
	}
}

func TestComposeCursorAlphaBlend(t *testing.T) {
	v := testView()
	c, err := NewCompositor(v)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}

	cur := &CursorBitmap{Width: 1, Height: 1, Pix: []byte{255, 255, 255, 128}}
	c.Compose(solidSource(v, 0, 0, 0), cur, image.Point{X: 0, Y: 0})

	// (255*128 + 0*127) / 255 = 128 per channel, alpha forced opaque.
	if got := texelAt(c.Canvas(), 0, 0); got != [4]byte{128, 128, 128, 255} {
		t.Fatalf("blended texel = %v, want (128,128,128,255)", got)
	}
}

func TestComposeCursorClippedAtRenderEdge(t *testing.T) {
	v := testView()
	c, err := NewCompositor(v)
	if err != nil {
		t.Fatalf("NewCompositor: %v", err)
	}

	cur := opaqueCursor(8, 8, 255, 0, 0)
	c.Compose(solidSource(v, 0, 0, 0), cur, image.Point{X: v.SourceW - 1, Y: 0})

	// drawX = 1919*1440/1920 = 1439: only one cursor column fits.
	if got := texelAt(c.Canvas(), v.RenderW-1, 0); got != [4]byte{255, 0, 0, 255} {
		t.Fatalf("texel at render edge = %v, want cursor texel", got)
	}
	if got := texelAt(c.Canvas(), v.RenderW, 0); got != [4]byte{0, 0, 0, 255} {
		t.Fatalf("first padding texel = %v, want opaque black", got)
	}
}

func TestViewValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*View)
		ok     bool
	}{
		{"default", func(*View) {}, true},
		{"zero source", func(v *View) { v.SourceW = 0 }, false},
		{"negative render", func(v *View) { v.RenderH = -1 }, false},
		{"output narrower than render", func(v *View) { v.OutputW = v.RenderW - 1 }, false},
		{"zero fps", func(v *View) { v.TargetFPS = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DefaultView()
			tt.mutate(&v)
			err := v.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestFrameInterval(t *testing.T) {
	v := DefaultView()
	if got := v.FrameInterval().Microseconds(); got != 16666 {
		t.Fatalf("FrameInterval = %dus, want 16666us", got)
	}
}
