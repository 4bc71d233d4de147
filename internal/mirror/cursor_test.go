package mirror

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeMonochromeTruthTable(t *testing.T) {
	// One visible row of 8 texels, both planes one byte wide. The first
	// four bits exercise every and/xor combination.
	u := ShapeUpdate{
		Kind:   ShapeMonochrome,
		Width:  8,
		Height: 2, // AND plane + XOR plane
		Pitch:  1,
		Data: []byte{
			0x30, // AND: bits x2,x3 set
			0x50, // XOR: bits x1,x3 set
		},
	}

	bm, err := DecodeShape(u)
	if err != nil {
		t.Fatalf("DecodeShape: %v", err)
	}
	if bm.Width != 8 || bm.Height != 1 {
		t.Fatalf("decoded dimensions %dx%d, want 8x1", bm.Width, bm.Height)
	}

	want := [][4]byte{
		{0, 0, 0, 255},       // and=0 xor=0: opaque black
		{255, 255, 255, 255}, // and=0 xor=1: opaque white
		{0, 0, 0, 0},         // and=1 xor=0: transparent
		{255, 255, 255, 128}, // and=1 xor=1: inverse ink
	}
	for x, w := range want {
		got := bm.Pix[x*4 : x*4+4]
		if !bytes.Equal(got, w[:]) {
			t.Errorf("texel %d = %v, want %v", x, got, w)
		}
	}
}

func TestDecodeColorSwapsChannelsKeepsAlpha(t *testing.T) {
	u := ShapeUpdate{
		Kind:     ShapeColor,
		Width:    2,
		Height:   1,
		Pitch:    8,
		HotspotX: 3,
		HotspotY: 5,
		Data: []byte{
			1, 2, 3, 200, // BGRA
			10, 20, 30, 0,
		},
	}

	bm, err := DecodeShape(u)
	if err != nil {
		t.Fatalf("DecodeShape: %v", err)
	}
	if bm.HotspotX != 3 || bm.HotspotY != 5 {
		t.Errorf("hotspot (%d,%d), want (3,5)", bm.HotspotX, bm.HotspotY)
	}

	want := []byte{3, 2, 1, 200, 30, 20, 10, 0}
	if !bytes.Equal(bm.Pix, want) {
		t.Errorf("pixels %v, want %v", bm.Pix, want)
	}
}

func TestDecodeColorSkipsPitchPadding(t *testing.T) {
	u := ShapeUpdate{
		Kind:   ShapeColor,
		Width:  1,
		Height: 2,
		Pitch:  8, // 4 payload bytes + 4 padding per row
		Data: []byte{
			0, 0, 255, 255, 0xEE, 0xEE, 0xEE, 0xEE,
			255, 0, 0, 255, 0xEE, 0xEE, 0xEE, 0xEE,
		},
	}

	bm, err := DecodeShape(u)
	if err != nil {
		t.Fatalf("DecodeShape: %v", err)
	}

	want := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	if !bytes.Equal(bm.Pix, want) {
		t.Errorf("pixels %v, want %v", bm.Pix, want)
	}
}

func TestDecodeMaskedColorAlphaFlag(t *testing.T) {
	u := ShapeUpdate{
		Kind:   ShapeMaskedColor,
		Width:  2,
		Height: 1,
		Pitch:  8,
		Data: []byte{
			1, 2, 3, 0, // plain texel
			4, 5, 6, 0xFF, // XOR-flagged texel
		},
	}

	bm, err := DecodeShape(u)
	if err != nil {
		t.Fatalf("DecodeShape: %v", err)
	}

	want := []byte{3, 2, 1, 255, 6, 5, 4, 128}
	if !bytes.Equal(bm.Pix, want) {
		t.Errorf("pixels %v, want %v", bm.Pix, want)
	}
}

func TestDecodeShapeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		u    ShapeUpdate
	}{
		{"zero width", ShapeUpdate{Kind: ShapeColor, Width: 0, Height: 4, Pitch: 16, Data: make([]byte, 64)}},
		{"zero height", ShapeUpdate{Kind: ShapeColor, Width: 4, Height: 0, Pitch: 16, Data: make([]byte, 64)}},
		{"unknown encoding", ShapeUpdate{Kind: 0x8, Width: 4, Height: 4, Pitch: 16, Data: make([]byte, 64)}},
		{"color short buffer", ShapeUpdate{Kind: ShapeColor, Width: 4, Height: 4, Pitch: 16, Data: make([]byte, 32)}},
		{"color pitch too small", ShapeUpdate{Kind: ShapeColor, Width: 4, Height: 4, Pitch: 8, Data: make([]byte, 64)}},
		{"masked short buffer", ShapeUpdate{Kind: ShapeMaskedColor, Width: 4, Height: 4, Pitch: 16, Data: make([]byte, 32)}},
		{"mono short buffer", ShapeUpdate{Kind: ShapeMonochrome, Width: 8, Height: 4, Pitch: 1, Data: make([]byte, 2)}},
		{"mono pitch too small", ShapeUpdate{Kind: ShapeMonochrome, Width: 16, Height: 4, Pitch: 1, Data: make([]byte, 8)}},
		{"mono single plane", ShapeUpdate{Kind: ShapeMonochrome, Width: 8, Height: 1, Pitch: 1, Data: make([]byte, 8)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeShape(tt.u); !errors.Is(err, ErrInvalidShape) {
				t.Fatalf("DecodeShape = %v, want ErrInvalidShape", err)
			}
		})
	}
}

func TestDecodeShapeMaskAlphaValues(t *testing.T) {
	// Mask-derived texels only ever carry one of three alpha levels.
	mono := ShapeUpdate{
		Kind:   ShapeMonochrome,
		Width:  8,
		Height: 4,
		Pitch:  1,
		Data:   []byte{0xA5, 0x3C, 0x96, 0x0F},
	}
	bm, err := DecodeShape(mono)
	if err != nil {
		t.Fatalf("DecodeShape: %v", err)
	}
	for i := 3; i < len(bm.Pix); i += 4 {
		switch bm.Pix[i] {
		case 0, 128, 255:
		default:
			t.Fatalf("texel %d alpha %d, want 0, 128, or 255", i/4, bm.Pix[i])
		}
	}
}

func TestShapeKindString(t *testing.T) {
	tests := []struct {
		kind ShapeKind
		want string
	}{
		{ShapeMonochrome, "monochrome"},
		{ShapeColor, "color"},
		{ShapeMaskedColor, "masked-color"},
		{ShapeKind(0x8), "unknown(8)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ShapeKind(%#x).String() = %q, want %q", uint32(tt.kind), got, tt.want)
		}
	}
}
