package overlay

import "snip-pin/src/pixel"

// Handle is one of the eight resize grips around a selection.
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
)

const (
	handleHitRadius = 5
	handleSize      = 6
	minSelection    = 4
)

type handlePoint struct {
	x, y int
	h    Handle
}

func handlePoints(r pixel.Rect) [8]handlePoint {
	right, bottom := r.Right()-1, r.Bottom()-1
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	return [8]handlePoint{
		{r.X, r.Y, HandleTopLeft},
		{cx, r.Y, HandleTop},
		{right, r.Y, HandleTopRight},
		{right, cy, HandleRight},
		{right, bottom, HandleBottomRight},
		{cx, bottom, HandleBottom},
		{r.X, bottom, HandleBottomLeft},
		{r.X, cy, HandleLeft},
	}
}

// hitHandle returns the grip within handleHitRadius of (x, y), checked in
// clockwise order from the top-left corner.
func hitHandle(x, y int, r pixel.Rect) Handle {
	if r.Empty() {
		return HandleNone
	}
	for _, p := range handlePoints(r) {
		if abs(x-p.x) <= handleHitRadius && abs(y-p.y) <= handleHitRadius {
			return p.h
		}
	}
	return HandleNone
}

// resize moves the edges attached to h toward (x, y). Edges stay inside the
// w×h frame and the selection never shrinks below minSelection.
func resize(r pixel.Rect, h Handle, x, y, fw, fh int) pixel.Rect {
	left, top, right, bottom := r.X, r.Y, r.Right(), r.Bottom()
	moveLeft := h == HandleTopLeft || h == HandleLeft || h == HandleBottomLeft
	moveRight := h == HandleTopRight || h == HandleRight || h == HandleBottomRight
	moveTop := h == HandleTopLeft || h == HandleTop || h == HandleTopRight
	moveBottom := h == HandleBottomLeft || h == HandleBottom || h == HandleBottomRight

	if moveLeft {
		left = clamp(x, 0, right-minSelection)
	}
	if moveRight {
		right = clamp(x+1, left+minSelection, fw)
	}
	if moveTop {
		top = clamp(y, 0, bottom-minSelection)
	}
	if moveBottom {
		bottom = clamp(y+1, top+minSelection, fh)
	}
	return pixel.Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
