package pastewin

import "snip-pin/src/pixel"

// DefaultBorder is the frame width around pinned content, in pixels.
const DefaultBorder = 2

const (
	colorOuter        uint32 = 0xFF202020
	colorInnerFocus   uint32 = 0xFF3DA5F4
	colorInnerUnfocus uint32 = 0xFF888888
	colorBackground   uint32 = 0xFF1E1E1E
)

// renderFrames composes content into two (w+2*border)×(h+2*border) buffers that
// differ only in the accent color of the inner ring.
func renderFrames(content *pixel.Buffer, border int) (focused, unfocused *pixel.Buffer) {
	focused = renderFrame(content, border, colorInnerFocus)
	unfocused = renderFrame(content, border, colorInnerUnfocus)
	return focused, unfocused
}

func renderFrame(content *pixel.Buffer, border int, accent uint32) *pixel.Buffer {
	fw, fh := content.Width+2*border, content.Height+2*border
	out := pixel.NewBuffer(fw, fh, pixel.FormatRGBA)
	fill(out, 0, 0, fw, fh, colorBackground)

	for ring := 0; ring < border; ring++ {
		c := accent
		if ring == 0 && border > 1 {
			c = colorOuter
		}
		fill(out, ring, ring, fw-ring, ring+1, c)
		fill(out, ring, fh-ring-1, fw-ring, fh-ring, c)
		fill(out, ring, ring, ring+1, fh-ring, c)
		fill(out, fw-ring-1, ring, fw-ring, fh-ring, c)
	}

	rowLen := content.Width * pixel.BytesPerPixel
	for y := 0; y < content.Height; y++ {
		dst := out.Offset(border, border+y)
		copy(out.Pix[dst:dst+rowLen], content.Pix[y*rowLen:(y+1)*rowLen])
	}
	return out
}

// fill paints [x0,x1)×[y0,y1) with a packed 0xAARRGGBB color.
func fill(b *pixel.Buffer, x0, y0, x1, y1 int, c uint32) {
	r, g, bl, a := pixel.UnpackBGRA(c)
	for y := max(y0, 0); y < min(y1, b.Height); y++ {
		for x := max(x0, 0); x < min(x1, b.Width); x++ {
			i := b.Offset(x, y)
			b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
		}
	}
}
