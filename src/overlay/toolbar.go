package overlay

import (
	"image"

	"snip-pin/src/pixel"
)

type toolbarButton int

const (
	buttonNone toolbarButton = iota
	buttonExit
	buttonPin
	buttonSave
)

var toolbarButtons = [...]toolbarButton{buttonExit, buttonPin, buttonSave}

func (b toolbarButton) label() string {
	switch b {
	case buttonExit:
		return "Exit"
	case buttonPin:
		return "Pin"
	case buttonSave:
		return "Save"
	}
	return ""
}

const (
	tbButtonW = 48
	tbButtonH = 26
	tbPadX    = 6
	tbGap     = 4
	tbMargin  = 6
	tbInset   = 4
)

// toolbarRect places the toolbar centered below the selection, above it when
// there is no room below, and inside its bottom-right corner otherwise.
// The result is always kept on screen.
func toolbarRect(sel pixel.Rect, sw, sh int) (image.Rectangle, bool) {
	if sel.Empty() || sw <= 0 || sh <= 0 {
		return image.Rectangle{}, false
	}
	n := len(toolbarButtons)
	w := tbPadX*2 + n*tbButtonW + (n-1)*tbGap
	h := tbButtonH + 2

	centerX := clamp(sel.X+sel.Width/2-w/2, 0, sw-w)
	switch {
	case sh-sel.Bottom() >= h+tbMargin:
		y := sel.Bottom() + tbMargin
		return image.Rect(centerX, y, centerX+w, y+h), true
	case sel.Y >= h+tbMargin:
		y := sel.Y - tbMargin - h
		return image.Rect(centerX, y, centerX+w, y+h), true
	}
	x := clamp(sel.Right()-w-tbInset, 0, sw-w)
	y := clamp(sel.Bottom()-h-tbInset, 0, sh-h)
	return image.Rect(x, y, x+w, y+h), true
}

// buttonRects lays the buttons out left to right inside bar.
func buttonRects(bar image.Rectangle) [len(toolbarButtons)]image.Rectangle {
	var out [len(toolbarButtons)]image.Rectangle
	x := bar.Min.X + tbPadX
	y := bar.Min.Y + (bar.Dy()-tbButtonH)/2
	for i := range toolbarButtons {
		out[i] = image.Rect(x, y, x+tbButtonW, y+tbButtonH)
		x += tbButtonW + tbGap
	}
	return out
}

func (c *Controller) toolbar() (image.Rectangle, bool) {
	if c.frame == nil {
		return image.Rectangle{}, false
	}
	sel, ok := c.Selection()
	if !ok {
		return image.Rectangle{}, false
	}
	return toolbarRect(sel, c.frame.Buffer.Width, c.frame.Buffer.Height)
}

func (c *Controller) toolbarHit(x, y int) toolbarButton {
	bar, ok := c.toolbar()
	if !ok {
		return buttonNone
	}
	p := image.Pt(x, y)
	if !p.In(bar) {
		return buttonNone
	}
	for i, r := range buttonRects(bar) {
		if p.In(r) {
			return toolbarButtons[i]
		}
	}
	return buttonNone
}
