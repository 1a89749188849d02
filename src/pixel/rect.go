package pixel

import (
	"fmt"
	"image"
	"math"
)

// Rect is an axis-aligned rectangle. Width and Height are never negative;
// a zero-area Rect means "no selection".
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether (x, y) lies inside r, edges inclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Translate shifts r by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Clamp intersects r with [0,w)x[0,h) using saturating arithmetic.
func (r Rect) Clamp(w, h int) Rect {
	x := max(r.X, 0)
	y := max(r.Y, 0)
	right := min(r.X+max(r.Width, 0), w)
	bottom := min(r.Y+max(r.Height, 0), h)
	if right <= x || bottom <= y {
		return Rect{X: min(x, w), Y: min(y, h)}
	}
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

// RectFromImage converts an image.Rectangle, canonicalizing it first.
func RectFromImage(ir image.Rectangle) Rect {
	ir = ir.Canon()
	return Rect{X: ir.Min.X, Y: ir.Min.Y, Width: ir.Dx(), Height: ir.Dy()}
}

// Normalize builds a Rect from two drag corners in any order. Coordinates are
// truncated toward zero after ordering, so A→B and B→A give the same result.
func Normalize(x0, y0, x1, y1 float64) Rect {
	left, right := math.Min(x0, x1), math.Max(x0, x1)
	top, bottom := math.Min(y0, y1), math.Max(y0, y1)
	x, y := int(left), int(top)
	return Rect{X: x, Y: y, Width: int(right) - x, Height: int(bottom) - y}
}
