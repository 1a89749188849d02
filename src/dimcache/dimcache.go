// Package dimcache keeps a darkened copy of a captured frame so the overlay can
// repaint its background without recomputing it.
package dimcache

import (
	"snip-pin/src/pixel"
	"snip-pin/src/screenshot"
)

// DefaultFactor is how much of each color channel survives dimming.
const DefaultFactor float32 = 0.6

// Build returns a copy of frame with every RGB channel scaled by factor
// (clamped to [0,1]) and alpha untouched. It has no side effects.
func Build(frame *screenshot.Frame, factor float32) *pixel.Buffer {
	factor = min(max(factor, 0), 1)
	src := frame.Buffer
	dim := &pixel.Buffer{
		Width:  src.Width,
		Height: src.Height,
		Pix:    make([]byte, len(src.Pix)),
		Format: src.Format,
	}
	for i := 0; i+3 < len(src.Pix); i += pixel.BytesPerPixel {
		dim.Pix[i] = byte(float32(src.Pix[i]) * factor)
		dim.Pix[i+1] = byte(float32(src.Pix[i+1]) * factor)
		dim.Pix[i+2] = byte(float32(src.Pix[i+2]) * factor)
		dim.Pix[i+3] = src.Pix[i+3]
	}
	return dim
}

// Cache holds the dim buffer for one frame together with packed words of both the
// dim and the original pixels, so a redraw is just row copies.
type Cache struct {
	frame    *screenshot.Frame
	dim      *pixel.Buffer
	dimWords []uint32
	srcWords []uint32
}

// New builds the cache for frame. The cache belongs to that frame only;
// a newer capture needs a new Cache.
func New(frame *screenshot.Frame, factor float32) *Cache {
	dim := Build(frame, factor)
	if dim.Width != frame.Buffer.Width || dim.Height != frame.Buffer.Height {
		panic("dimcache: dim buffer does not match frame")
	}
	return &Cache{
		frame:    frame,
		dim:      dim,
		dimWords: pixel.PackedBGRAWords(dim),
		srcWords: pixel.PackedBGRAWords(frame.Buffer),
	}
}

// Valid reports whether the cache was built from this exact frame.
func (c *Cache) Valid(frame *screenshot.Frame) bool {
	return c != nil && c.frame == frame
}

func (c *Cache) Frame() *screenshot.Frame { return c.frame }

func (c *Cache) Dim() *pixel.Buffer { return c.dim }

// Composite paints the background into dst, a w×h surface of packed words: dim
// pixels everywhere, original pixels inside sel when hasSel is set. Only the
// overlap of dst and the frame is written. It does not allocate.
func (c *Cache) Composite(dst []uint32, w, h int, sel pixel.Rect, hasSel bool) {
	fw, fh := c.dim.Width, c.dim.Height
	cw, ch := min(w, fw), min(h, fh)
	if cw <= 0 || ch <= 0 || len(dst) < w*h {
		return
	}

	if hasSel {
		sel = sel.Clamp(cw, ch)
		hasSel = !sel.Empty()
	}

	for y := 0; y < ch; y++ {
		d := dst[y*w : y*w+cw]
		src := c.dimWords[y*fw : y*fw+cw]
		if !hasSel || y < sel.Y || y >= sel.Bottom() {
			copy(d, src)
			continue
		}
		copy(d[:sel.X], src[:sel.X])
		copy(d[sel.X:sel.Right()], c.srcWords[y*fw+sel.X:y*fw+sel.Right()])
		copy(d[sel.Right():], src[sel.Right():])
	}
}
