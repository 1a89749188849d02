package overlay

import (
	"fmt"
	"image"
	"log"

	"snip-pin/src/dimcache"
	"snip-pin/src/input"
	"snip-pin/src/pixel"
	"snip-pin/src/screenshot"
)

// State is the controller's current mode.
type State int

const (
	Idle State = iota
	Showing
	Dragging
	Selected
	// Moving and Resizing adjust an existing selection.
	Moving
	Resizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Showing:
		return "Showing"
	case Dragging:
		return "Dragging"
	case Selected:
		return "Selected"
	case Moving:
		return "Moving"
	case Resizing:
		return "Resizing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Capturer supplies a fresh frame when the overlay opens.
type Capturer interface {
	CaptureFullscreenWithOrigin() (screenshot.Frame, error)
}

type Options struct {
	// DimFactor scales the background outside the selection. Zero means dimcache.DefaultFactor.
	DimFactor float32
	// HideHints suppresses the help text in the top-left corner.
	HideHints bool
}

type point struct{ X, Y float64 }

// Controller is the selection state machine. It is not safe for concurrent use;
// the driver loop owns it.
type Controller struct {
	capturer  Capturer
	dimFactor float32
	showHints bool
	encode    func(*pixel.Buffer) ([]byte, error)

	state   State
	frame   *screenshot.Frame
	dim     *dimcache.Cache
	start   point
	current point
	rect    pixel.Rect

	grab    image.Point
	handle  Handle
	hover   toolbarButton
	pressed toolbarButton

	redraw bool
	labels *labelSet
}

func NewController(c Capturer, opts Options) *Controller {
	factor := opts.DimFactor
	if factor <= 0 {
		factor = dimcache.DefaultFactor
	}
	return &Controller{
		capturer:  c,
		dimFactor: factor,
		showHints: !opts.HideHints,
		encode:    pixel.EncodePNG,
		labels:    newLabelSet(),
	}
}

func (c *Controller) State() State { return c.state }

// Visible reports whether an overlay session is in progress.
func (c *Controller) Visible() bool { return c.state != Idle }

// Frame returns the frame of the current session, or nil when idle.
func (c *Controller) Frame() *screenshot.Frame { return c.frame }

// Selection returns the selection in frame-local coordinates, if one is settled.
func (c *Controller) Selection() (pixel.Rect, bool) {
	switch c.state {
	case Selected, Moving, Resizing:
		return c.rect, true
	}
	return pixel.Rect{}, false
}

// NeedsRedraw reports and clears a pending redraw request.
func (c *Controller) NeedsRedraw() bool {
	r := c.redraw
	c.redraw = false
	return r
}

// Trigger opens the overlay on a fresh capture. Triggers while a session is
// already open are ignored. A capture failure ends the session and is returned.
func (c *Controller) Trigger() error {
	if c.state != Idle {
		log.Printf("Overlay: trigger ignored, already %v", c.state)
		return nil
	}
	frame, err := c.capturer.CaptureFullscreenWithOrigin()
	if err != nil {
		c.reset()
		return fmt.Errorf("overlay session aborted: %w", err)
	}
	c.frame = &frame
	c.dim = dimcache.New(c.frame, c.dimFactor)
	log.Printf("Overlay: captured %dx%d at %v", frame.Buffer.Width, frame.Buffer.Height, frame.Origin)
	c.enter(Showing)
	return nil
}

// Cancel ends any open session.
func (c *Controller) Cancel() Action {
	if c.state == Idle {
		return None{}
	}
	log.Printf("Overlay: cancelled from %v", c.state)
	c.reset()
	return Canceled{}
}

// Handle feeds one input event through the state machine.
func (c *Controller) Handle(ev input.Event) (Action, error) {
	if c.state == Idle {
		return None{}, nil
	}
	if k, ok := ev.(input.KeyPress); ok && k.Key == input.KeyEscape {
		return c.Cancel(), nil
	}
	if _, ok := ev.(input.Closed); ok {
		return c.Cancel(), nil
	}

	switch c.state {
	case Showing:
		return c.handleShowing(ev), nil
	case Dragging:
		return c.handleDragging(ev), nil
	case Selected:
		return c.handleSelected(ev)
	case Moving:
		c.handleMoving(ev)
	case Resizing:
		c.handleResizing(ev)
	}
	return None{}, nil
}

func (c *Controller) handleShowing(ev input.Event) Action {
	e, ok := ev.(input.PointerDown)
	if !ok {
		return None{}
	}
	switch e.Button {
	case input.ButtonLeft:
		c.start = point{e.X, e.Y}
		c.current = c.start
		c.enter(Dragging)
	case input.ButtonRight:
		return c.Cancel()
	}
	return None{}
}

func (c *Controller) handleDragging(ev input.Event) Action {
	switch e := ev.(type) {
	case input.PointerMove:
		c.current = point{e.X, e.Y}
		c.redraw = true
	case input.PointerDown:
		if e.Button == input.ButtonRight {
			return c.Cancel()
		}
	case input.PointerUp:
		if e.Button != input.ButtonLeft {
			return None{}
		}
		c.current = point{e.X, e.Y}
		r := c.dragRect()
		if r.Empty() {
			log.Printf("Overlay: zero-area selection, cancelling")
			return c.Cancel()
		}
		c.rect = r
		log.Printf("Overlay: selected %v", r)
		c.enter(Selected)
	}
	return None{}
}

func (c *Controller) handleSelected(ev input.Event) (Action, error) {
	switch e := ev.(type) {
	case input.KeyPress:
		switch e.Key {
		case input.KeyEnter, input.KeySave:
			return c.confirm()
		case input.KeyPin:
			return c.pin()
		}
	case input.PointerMove:
		c.setHover(c.toolbarHit(int(e.X), int(e.Y)))
	case input.PointerDown:
		x, y := int(e.X), int(e.Y)
		if e.Button == input.ButtonRight {
			log.Printf("Overlay: selection cleared")
			c.rect = pixel.Rect{}
			c.enter(Showing)
			return None{}, nil
		}
		if e.Button != input.ButtonLeft {
			return None{}, nil
		}
		if b := c.toolbarHit(x, y); b != buttonNone {
			c.pressed = b
			return None{}, nil
		}
		if h := hitHandle(x, y, c.rect); h != HandleNone {
			c.handle = h
			c.enter(Resizing)
			return None{}, nil
		}
		if c.rect.Contains(x, y) {
			c.grab = image.Pt(x-c.rect.X, y-c.rect.Y)
			c.enter(Moving)
		}
	case input.PointerUp:
		pressed := c.pressed
		c.pressed = buttonNone
		if e.Button != input.ButtonLeft || pressed == buttonNone {
			return None{}, nil
		}
		if c.toolbarHit(int(e.X), int(e.Y)) != pressed {
			return None{}, nil
		}
		switch pressed {
		case buttonExit:
			return c.Cancel(), nil
		case buttonPin:
			return c.pin()
		case buttonSave:
			return c.confirm()
		}
	}
	return None{}, nil
}

func (c *Controller) handleMoving(ev input.Event) {
	switch e := ev.(type) {
	case input.PointerMove:
		fw, fh := c.frame.Buffer.Width, c.frame.Buffer.Height
		nx := clamp(int(e.X)-c.grab.X, 0, fw-c.rect.Width)
		ny := clamp(int(e.Y)-c.grab.Y, 0, fh-c.rect.Height)
		if nx != c.rect.X || ny != c.rect.Y {
			c.rect.X, c.rect.Y = nx, ny
			c.redraw = true
		}
	case input.PointerUp:
		if e.Button == input.ButtonLeft {
			c.enter(Selected)
		}
	}
}

func (c *Controller) handleResizing(ev input.Event) {
	switch e := ev.(type) {
	case input.PointerMove:
		r := resize(c.rect, c.handle, int(e.X), int(e.Y), c.frame.Buffer.Width, c.frame.Buffer.Height)
		if r != c.rect {
			c.rect = r
			c.redraw = true
		}
	case input.PointerUp:
		if e.Button == input.ButtonLeft {
			c.handle = HandleNone
			c.enter(Selected)
		}
	}
}

// confirm crops and encodes the selection, then closes the session.
func (c *Controller) confirm() (Action, error) {
	data, err := c.encodeSelection()
	if err != nil {
		return None{}, err
	}
	rect := c.rect.Translate(c.frame.Origin.X, c.frame.Origin.Y)
	log.Printf("Overlay: selection finished %v (%d bytes)", rect, len(data))
	c.reset()
	return SelectionFinished{PNG: data, Rect: rect}, nil
}

// pin crops and encodes the selection and keeps the session open.
func (c *Controller) pin() (Action, error) {
	data, err := c.encodeSelection()
	if err != nil {
		return None{}, err
	}
	a := PasteSelection{
		PNG:     data,
		Width:   c.rect.Width,
		Height:  c.rect.Height,
		ScreenX: c.frame.Origin.X + c.rect.X,
		ScreenY: c.frame.Origin.Y + c.rect.Y,
	}
	log.Printf("Overlay: pin %dx%d at (%d,%d)", a.Width, a.Height, a.ScreenX, a.ScreenY)
	return a, nil
}

// encodeSelection is the single PNG boundary. On failure the selection is
// dropped and the overlay goes back to Showing on the same frame.
func (c *Controller) encodeSelection() ([]byte, error) {
	crop := pixel.Crop(c.frame.Buffer, c.rect)
	data, err := c.encode(crop)
	if err != nil {
		log.Printf("Overlay: encode failed, selection discarded: %v", err)
		c.rect = pixel.Rect{}
		c.pressed = buttonNone
		c.enter(Showing)
		return nil, fmt.Errorf("crop %dx%d: %w", crop.Width, crop.Height, err)
	}
	return data, nil
}

func (c *Controller) dragRect() pixel.Rect {
	r := pixel.Normalize(c.start.X, c.start.Y, c.current.X, c.current.Y)
	return r.Clamp(c.frame.Buffer.Width, c.frame.Buffer.Height)
}

func (c *Controller) setHover(b toolbarButton) {
	if b != c.hover {
		c.hover = b
		c.redraw = true
	}
}

func (c *Controller) enter(s State) {
	c.state = s
	c.redraw = true
	if s == Showing || s == Dragging {
		c.hover = buttonNone
	}
}

// reset drops the frame and dim cache and returns to Idle.
func (c *Controller) reset() {
	c.state = Idle
	c.frame = nil
	c.dim = nil
	c.start, c.current = point{}, point{}
	c.rect = pixel.Rect{}
	c.handle = HandleNone
	c.hover, c.pressed = buttonNone, buttonNone
	c.redraw = false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
