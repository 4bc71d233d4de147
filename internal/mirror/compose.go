package mirror

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Compositor assembles the output canvas for one view: the captured
// desktop scaled bilinearly into the left render region, the cursor
// alpha-blended on top, and opaque black padding on the right.
//
// The scaled desktop is retained in a separate buffer so that ticks
// without a new frame (capture timeouts) can recompose the canvas from
// the last image. Compose is not safe for concurrent use.
type Compositor struct {
	view   View
	scaler xdraw.Scaler

	// Last scaled desktop, RenderW x RenderH, no cursor baked in.
	scaled *image.RGBA

	// Output canvas, OutputW x OutputH, fully opaque at all times.
	canvas *image.RGBA
}

// NewCompositor allocates the canvas and scaled buffers, both opaque
// black until the first frame arrives.
func NewCompositor(view View) (*Compositor, error) {
	if err := view.Validate(); err != nil {
		return nil, fmt.Errorf("invalid view: %w", err)
	}

	c := &Compositor{
		view:   view,
		scaler: xdraw.BiLinear.NewScaler(view.RenderW, view.RenderH, view.SourceW, view.SourceH),
		scaled: image.NewRGBA(image.Rect(0, 0, view.RenderW, view.RenderH)),
		canvas: image.NewRGBA(image.Rect(0, 0, view.OutputW, view.OutputH)),
	}
	fillOpaqueBlack(c.scaled)
	fillOpaqueBlack(c.canvas)
	return c, nil
}

// Canvas returns the output image. The same buffer is reused across
// Compose calls.
func (c *Compositor) Canvas() *image.RGBA {
	return c.canvas
}

// Compose rebuilds the canvas. src is the latest captured desktop at
// source resolution, or nil to reuse the previous scaled image. cursor
// is the current cursor bitmap (nil when hidden), pos its hotspot-less
// position in source coordinates.
//
// Composing twice with src == nil yields an identical canvas.
func (c *Compositor) Compose(src *image.RGBA, cursor *CursorBitmap, pos image.Point) {
	if src != nil {
		c.scaler.Scale(c.scaled, c.scaled.Rect, src, src.Rect, xdraw.Src, nil)
	}
	c.blitScaled()
	if cursor != nil {
		c.drawCursor(cursor, pos)
	}
}

// blitScaled copies the scaled desktop into the left columns of the
// canvas, forcing alpha opaque. The padding columns to the right are
// never written after construction, so they stay opaque black.
func (c *Compositor) blitScaled() {
	rowBytes := c.view.RenderW * 4
	for y := 0; y < c.view.RenderH; y++ {
		row := c.canvas.Pix[y*c.canvas.Stride : y*c.canvas.Stride+rowBytes]
		copy(row, c.scaled.Pix[y*c.scaled.Stride:y*c.scaled.Stride+rowBytes])
		for i := 3; i < len(row); i += 4 {
			row[i] = 255
		}
	}
}

// drawCursor alpha-blends the cursor bitmap over the render region. The
// position and hotspot are given in source coordinates and mapped into
// render coordinates with the same truncating scale as the desktop
// image; the bitmap itself is not scaled. Texels falling outside the
// render region are clipped so the padding band stays untouched.
func (c *Compositor) drawCursor(cur *CursorBitmap, pos image.Point) {
	if pos.X < 0 || pos.X >= c.view.SourceW || pos.Y < 0 || pos.Y >= c.view.SourceH {
		return
	}

	drawX := pos.X*c.view.RenderW/c.view.SourceW - cur.HotspotX*c.view.RenderW/c.view.SourceW
	drawY := pos.Y*c.view.RenderH/c.view.SourceH - cur.HotspotY*c.view.RenderH/c.view.SourceH

	for cy := 0; cy < cur.Height; cy++ {
		dy := drawY + cy
		if dy < 0 || dy >= c.view.RenderH {
			continue
		}
		for cx := 0; cx < cur.Width; cx++ {
			dx := drawX + cx
			if dx < 0 || dx >= c.view.RenderW {
				continue
			}

			si := (cy*cur.Width + cx) * 4
			a := uint32(cur.Pix[si+3])
			if a == 0 {
				continue
			}

			di := dy*c.canvas.Stride + dx*4
			if a == 255 {
				c.canvas.Pix[di] = cur.Pix[si]
				c.canvas.Pix[di+1] = cur.Pix[si+1]
				c.canvas.Pix[di+2] = cur.Pix[si+2]
				c.canvas.Pix[di+3] = 255
				continue
			}

			inv := 255 - a
			c.canvas.Pix[di] = uint8((uint32(cur.Pix[si])*a + uint32(c.canvas.Pix[di])*inv) / 255)
			c.canvas.Pix[di+1] = uint8((uint32(cur.Pix[si+1])*a + uint32(c.canvas.Pix[di+1])*inv) / 255)
			c.canvas.Pix[di+2] = uint8((uint32(cur.Pix[si+2])*a + uint32(c.canvas.Pix[di+2])*inv) / 255)
			c.canvas.Pix[di+3] = 255
		}
	}
}

func fillOpaqueBlack(img *image.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0
		img.Pix[i+1] = 0
		img.Pix[i+2] = 0
		img.Pix[i+3] = 255
	}
}
