package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"snip-pin/src/pixel"
)

const (
	colorOutline     uint32 = 0xFFFFFFFF
	colorHandleFill  uint32 = 0xFFFFFFFF
	colorHandleEdge  uint32 = 0xFF202020
	colorBar         uint32 = 0xFF202020
	colorBarEdge     uint32 = 0xFFFFFFFF
	colorButton      uint32 = 0xFF333333
	colorButtonHover uint32 = 0xFF4A4A4A
	colorButtonEdge  uint32 = 0xFFCCCCCC
	colorHintBack    uint32 = 0xFF101010

	hintText = "Drag to select   Enter save   P pin   Esc cancel"
)

var (
	labelColor = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	hoverColor = color.RGBA{R: 0xFF, G: 0xD2, B: 0x4D, A: 0xFF}
	hintColor  = color.RGBA{R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF}
)

// sprite is pre-rendered text in packed words; zero words are transparent.
type sprite struct {
	w, h  int
	words []uint32
}

type labelSet struct {
	hint   sprite
	normal map[toolbarButton]sprite
	hover  map[toolbarButton]sprite
}

// newLabelSet renders every string the overlay shows, once.
func newLabelSet() *labelSet {
	ls := &labelSet{
		hint:   renderText(hintText, hintColor),
		normal: map[toolbarButton]sprite{},
		hover:  map[toolbarButton]sprite{},
	}
	for _, b := range toolbarButtons {
		ls.normal[b] = renderText(b.label(), labelColor)
		ls.hover[b] = renderText(b.label(), hoverColor)
	}
	return ls
}

func renderText(s string, c color.RGBA) sprite {
	face := basicfont.Face7x13
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	h := m.Height.Ceil()
	if w <= 0 || h <= 0 {
		return sprite{}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(s)

	words := make([]uint32, w*h)
	for i := range words {
		p := img.Pix[i*4 : i*4+4]
		if p[3] == 0 {
			continue
		}
		words[i] = pixel.PackBGRA(p[0], p[1], p[2], 0xFF)
	}
	return sprite{w: w, h: h, words: words}
}

// Render paints the overlay into dst, a w×h surface of packed BGRA words.
// It does not allocate.
func (c *Controller) Render(dst []uint32, w, h int) {
	if c.dim == nil || len(dst) < w*h {
		return
	}
	sel, hasSel := c.visibleSelection()
	c.dim.Composite(dst, w, h, sel, hasSel)

	if hasSel {
		strokeRect(dst, w, h, sel.Image(), colorOutline)
	}
	if _, settled := c.Selection(); settled {
		for _, p := range handlePoints(sel) {
			r := image.Rect(p.x-handleSize/2, p.y-handleSize/2, p.x+handleSize/2, p.y+handleSize/2)
			fillRect(dst, w, h, r, colorHandleFill)
			strokeRect(dst, w, h, r, colorHandleEdge)
		}
		c.renderToolbar(dst, w, h)
	}
	if c.showHints && c.state == Showing {
		hs := c.labels.hint
		fillRect(dst, w, h, image.Rect(8, 8, 24+hs.w, 24+hs.h), colorHintBack)
		blit(dst, w, h, hs, 16, 16)
	}
}

func (c *Controller) renderToolbar(dst []uint32, w, h int) {
	bar, ok := c.toolbar()
	if !ok {
		return
	}
	fillRect(dst, w, h, bar, colorBar)
	strokeRect(dst, w, h, bar, colorBarEdge)
	for i, r := range buttonRects(bar) {
		b := toolbarButtons[i]
		bg, edge, label := colorButton, colorButtonEdge, c.labels.normal[b]
		if b == c.hover {
			bg, edge, label = colorButtonHover, colorOutline, c.labels.hover[b]
		}
		fillRect(dst, w, h, r, bg)
		strokeRect(dst, w, h, r, edge)
		blit(dst, w, h, label, r.Min.X+(r.Dx()-label.w)/2, r.Min.Y+(r.Dy()-label.h)/2)
	}
}

func (c *Controller) visibleSelection() (pixel.Rect, bool) {
	switch c.state {
	case Dragging:
		r := c.dragRect()
		return r, !r.Empty()
	case Selected, Moving, Resizing:
		return c.rect, true
	}
	return pixel.Rect{}, false
}

func fillRect(dst []uint32, w, h int, r image.Rectangle, col uint32) {
	r = r.Intersect(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := dst[y*w+r.Min.X : y*w+r.Max.X]
		for i := range row {
			row[i] = col
		}
	}
}

func strokeRect(dst []uint32, w, h int, r image.Rectangle, col uint32) {
	if r.Empty() {
		return
	}
	fillRect(dst, w, h, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	fillRect(dst, w, h, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	fillRect(dst, w, h, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	fillRect(dst, w, h, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

func blit(dst []uint32, w, h int, s sprite, x, y int) {
	for sy := 0; sy < s.h; sy++ {
		dy := y + sy
		if dy < 0 || dy >= h {
			continue
		}
		for sx := 0; sx < s.w; sx++ {
			dx := x + sx
			if dx < 0 || dx >= w {
				continue
			}
			if v := s.words[sy*s.w+sx]; v != 0 {
				dst[dy*w+dx] = v
			}
		}
	}
}
