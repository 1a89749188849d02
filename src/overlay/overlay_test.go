package overlay

import (
	"errors"
	"image"
	"testing"

	"snip-pin/src/input"
	"snip-pin/src/pixel"
	"snip-pin/src/screenshot"
)

type fakeCapturer struct {
	w, h   int
	origin image.Point
	err    error
	calls  int
}

func (f *fakeCapturer) CaptureFullscreenWithOrigin() (screenshot.Frame, error) {
	f.calls++
	if f.err != nil {
		return screenshot.Frame{}, f.err
	}
	buf := pixel.NewBuffer(f.w, f.h, pixel.FormatRGBA)
	for i := 0; i < len(buf.Pix); i += pixel.BytesPerPixel {
		buf.Pix[i], buf.Pix[i+3] = 255, 255
	}
	return screenshot.Frame{Buffer: buf, Origin: f.origin}, nil
}

func newTestController(w, h int) (*Controller, *fakeCapturer) {
	fc := &fakeCapturer{w: w, h: h}
	return NewController(fc, Options{}), fc
}

func mustHandle(t *testing.T, c *Controller, ev input.Event) Action {
	t.Helper()
	a, err := c.Handle(ev)
	if err != nil {
		t.Fatalf("Handle(%T) failed: %v", ev, err)
	}
	return a
}

func drag(t *testing.T, c *Controller, x0, y0, x1, y1 float64) Action {
	t.Helper()
	mustHandle(t, c, input.PointerDown{X: x0, Y: y0, Button: input.ButtonLeft})
	mustHandle(t, c, input.PointerMove{X: x1, Y: y1})
	return mustHandle(t, c, input.PointerUp{X: x1, Y: y1, Button: input.ButtonLeft})
}

func TestTriggerEntersShowing(t *testing.T) {
	c, fc := newTestController(8, 6)
	if c.State() != Idle {
		t.Fatalf("Expected Idle, got %v", c.State())
	}
	if err := c.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if c.State() != Showing {
		t.Errorf("Expected Showing, got %v", c.State())
	}
	if !c.NeedsRedraw() {
		t.Error("Expected redraw on entering Showing")
	}
	if c.NeedsRedraw() {
		t.Error("Expected redraw flag to clear after reading")
	}
	if c.dim == nil || !c.dim.Valid(c.Frame()) {
		t.Error("Expected dim cache built for the captured frame")
	}

	if err := c.Trigger(); err != nil {
		t.Fatalf("Second trigger failed: %v", err)
	}
	if fc.calls != 1 {
		t.Errorf("Expected trigger ignored while visible, captures=%d", fc.calls)
	}
}

func TestTriggerCaptureFailure(t *testing.T) {
	fc := &fakeCapturer{err: screenshot.ErrCapture}
	c := NewController(fc, Options{})
	err := c.Trigger()
	if !errors.Is(err, screenshot.ErrCapture) {
		t.Fatalf("Expected ErrCapture, got %v", err)
	}
	if c.State() != Idle || c.Frame() != nil {
		t.Error("Expected Idle with no frame after capture failure")
	}
}

func TestDragSelects(t *testing.T) {
	c, _ := newTestController(100, 80)
	_ = c.Trigger()
	c.NeedsRedraw()

	mustHandle(t, c, input.PointerDown{X: 40, Y: 30, Button: input.ButtonLeft})
	if c.State() != Dragging {
		t.Fatalf("Expected Dragging, got %v", c.State())
	}
	c.NeedsRedraw()
	mustHandle(t, c, input.PointerMove{X: 10, Y: 5})
	if !c.NeedsRedraw() {
		t.Error("Expected redraw on drag move")
	}
	mustHandle(t, c, input.PointerUp{X: 10, Y: 5, Button: input.ButtonLeft})
	if c.State() != Selected {
		t.Fatalf("Expected Selected, got %v", c.State())
	}
	r, ok := c.Selection()
	if !ok || r != (pixel.Rect{X: 10, Y: 5, Width: 30, Height: 25}) {
		t.Errorf("Expected normalized rect 30x25+10+5, got %v", r)
	}
}

func TestReversedDragSameRect(t *testing.T) {
	a, _ := newTestController(50, 50)
	_ = a.Trigger()
	drag(t, a, 5, 7, 30, 20)

	b, _ := newTestController(50, 50)
	_ = b.Trigger()
	drag(t, b, 30, 20, 5, 7)

	ra, _ := a.Selection()
	rb, _ := b.Selection()
	if ra != rb {
		t.Errorf("Expected identical rects, got %v and %v", ra, rb)
	}
}

func TestClickWithoutMoveCancels(t *testing.T) {
	c, _ := newTestController(20, 20)
	_ = c.Trigger()
	mustHandle(t, c, input.PointerDown{X: 5, Y: 5, Button: input.ButtonLeft})
	a := mustHandle(t, c, input.PointerUp{X: 5, Y: 5, Button: input.ButtonLeft})
	if _, ok := a.(Canceled); !ok {
		t.Errorf("Expected Canceled, got %T", a)
	}
	if c.State() != Idle || c.Frame() != nil {
		t.Errorf("Expected Idle with frame dropped, got %v", c.State())
	}
}

func TestMoveWithoutDragIsNoRedraw(t *testing.T) {
	c, _ := newTestController(20, 20)
	_ = c.Trigger()
	c.NeedsRedraw()
	mustHandle(t, c, input.PointerMove{X: 3, Y: 3})
	if c.NeedsRedraw() {
		t.Error("Expected no redraw for pointer move while Showing")
	}
}

func TestConfirmReturnsPNGAndResets(t *testing.T) {
	fc := &fakeCapturer{w: 4, h: 4, origin: image.Pt(100, 200)}
	c := NewController(fc, Options{})
	_ = c.Trigger()
	drag(t, c, 1, 1, 3, 3)

	a := mustHandle(t, c, input.KeyPress{Key: input.KeyEnter})
	fin, ok := a.(SelectionFinished)
	if !ok {
		t.Fatalf("Expected SelectionFinished, got %T", a)
	}
	if fin.Rect != (pixel.Rect{X: 101, Y: 201, Width: 2, Height: 2}) {
		t.Errorf("Expected screen-space rect, got %v", fin.Rect)
	}
	img, err := pixel.DecodePNG(fin.PNG)
	if err != nil {
		t.Fatalf("DecodePNG failed: %v", err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("Expected 2x2, got %dx%d", img.Width, img.Height)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := img.At(x, y); got != [4]byte{255, 0, 0, 255} {
				t.Errorf("pixel (%d,%d) = %v", x, y, got)
			}
		}
	}
	if c.State() != Idle || c.Frame() != nil {
		t.Error("Expected reset to Idle after confirm")
	}
}

func TestPinKeepsSelection(t *testing.T) {
	fc := &fakeCapturer{w: 40, h: 40, origin: image.Pt(-1920, 0)}
	c := NewController(fc, Options{})
	_ = c.Trigger()
	drag(t, c, 10, 12, 20, 30)

	a := mustHandle(t, c, input.KeyPress{Key: input.KeyPin})
	p, ok := a.(PasteSelection)
	if !ok {
		t.Fatalf("Expected PasteSelection, got %T", a)
	}
	if p.Width != 10 || p.Height != 18 || p.ScreenX != -1910 || p.ScreenY != 12 {
		t.Errorf("Unexpected pin payload %+v", p)
	}
	if len(p.PNG) == 0 {
		t.Error("Expected PNG bytes")
	}
	if c.State() != Selected {
		t.Errorf("Expected Selected after pin, got %v", c.State())
	}
}

func TestEncodeFailureDiscardsSelection(t *testing.T) {
	c, _ := newTestController(20, 20)
	c.encode = func(*pixel.Buffer) ([]byte, error) { return nil, pixel.ErrEncode }
	_ = c.Trigger()
	frame := c.Frame()
	drag(t, c, 2, 2, 10, 10)

	_, err := c.Handle(input.KeyPress{Key: input.KeyEnter})
	if !errors.Is(err, pixel.ErrEncode) {
		t.Fatalf("Expected ErrEncode, got %v", err)
	}
	if c.State() != Showing {
		t.Errorf("Expected Showing after encode failure, got %v", c.State())
	}
	if c.Frame() != frame {
		t.Error("Expected the same frame kept for a retry")
	}
	if _, ok := c.Selection(); ok {
		t.Error("Expected selection discarded")
	}
}

func TestCancelFromEveryState(t *testing.T) {
	setups := map[string]func(t *testing.T, c *Controller){
		"showing":  func(t *testing.T, c *Controller) {},
		"dragging": func(t *testing.T, c *Controller) { mustHandle(t, c, input.PointerDown{X: 1, Y: 1, Button: input.ButtonLeft}) },
		"selected": func(t *testing.T, c *Controller) { drag(t, c, 1, 1, 9, 9) },
	}
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestController(30, 30)
			_ = c.Trigger()
			setup(t, c)
			a := mustHandle(t, c, input.KeyPress{Key: input.KeyEscape})
			if _, ok := a.(Canceled); !ok {
				t.Errorf("Expected Canceled, got %T", a)
			}
			if c.State() != Idle || c.dim != nil || c.Frame() != nil {
				t.Error("Expected frame and dim cache discarded")
			}
		})
	}
}

func TestIdleIgnoresEvents(t *testing.T) {
	c, _ := newTestController(10, 10)
	a := mustHandle(t, c, input.PointerDown{X: 1, Y: 1, Button: input.ButtonLeft})
	if _, ok := a.(None); !ok {
		t.Errorf("Expected None, got %T", a)
	}
	if c.State() != Idle {
		t.Errorf("Expected Idle, got %v", c.State())
	}
}

func TestRightClick(t *testing.T) {
	c, _ := newTestController(30, 30)
	_ = c.Trigger()
	drag(t, c, 2, 2, 12, 12)

	mustHandle(t, c, input.PointerDown{X: 5, Y: 5, Button: input.ButtonRight})
	if c.State() != Showing {
		t.Fatalf("Expected right-click to clear selection, got %v", c.State())
	}
	a := mustHandle(t, c, input.PointerDown{X: 5, Y: 5, Button: input.ButtonRight})
	if _, ok := a.(Canceled); !ok || c.State() != Idle {
		t.Errorf("Expected second right-click to cancel, got %T in %v", a, c.State())
	}
}

func TestMoveSelection(t *testing.T) {
	c, _ := newTestController(400, 300)
	_ = c.Trigger()
	drag(t, c, 10, 10, 40, 40)

	mustHandle(t, c, input.PointerDown{X: 25, Y: 25, Button: input.ButtonLeft})
	if c.State() != Moving {
		t.Fatalf("Expected Moving, got %v", c.State())
	}
	mustHandle(t, c, input.PointerMove{X: 35, Y: 28})
	mustHandle(t, c, input.PointerUp{X: 35, Y: 28, Button: input.ButtonLeft})
	r, _ := c.Selection()
	if r != (pixel.Rect{X: 20, Y: 13, Width: 30, Height: 30}) {
		t.Errorf("Expected moved rect, got %v", r)
	}

	// Clamped at the frame edge.
	mustHandle(t, c, input.PointerDown{X: 30, Y: 25, Button: input.ButtonLeft})
	mustHandle(t, c, input.PointerMove{X: 1000, Y: -100})
	mustHandle(t, c, input.PointerUp{X: 1000, Y: -100, Button: input.ButtonLeft})
	r, _ = c.Selection()
	if r != (pixel.Rect{X: 370, Y: 0, Width: 30, Height: 30}) {
		t.Errorf("Expected rect clamped to frame, got %v", r)
	}
}

func TestResizeSelection(t *testing.T) {
	c, _ := newTestController(400, 300)
	_ = c.Trigger()
	drag(t, c, 10, 10, 30, 30)

	// Bottom-right grip sits at (29, 29).
	mustHandle(t, c, input.PointerDown{X: 29, Y: 29, Button: input.ButtonLeft})
	if c.State() != Resizing {
		t.Fatalf("Expected Resizing, got %v", c.State())
	}
	mustHandle(t, c, input.PointerMove{X: 39, Y: 34})
	mustHandle(t, c, input.PointerUp{X: 39, Y: 34, Button: input.ButtonLeft})
	r, _ := c.Selection()
	if r != (pixel.Rect{X: 10, Y: 10, Width: 30, Height: 25}) {
		t.Errorf("Expected resized rect, got %v", r)
	}
}

func TestResizeKeepsMinimum(t *testing.T) {
	r := resize(pixel.Rect{X: 10, Y: 10, Width: 20, Height: 20}, HandleLeft, 100, 0, 50, 50)
	if r.Width != minSelection || r.Right() != 30 {
		t.Errorf("Expected width clamped to %d, got %v", minSelection, r)
	}
	r = resize(pixel.Rect{X: 10, Y: 10, Width: 20, Height: 20}, HandleTopLeft, -5, -5, 50, 50)
	if r != (pixel.Rect{X: 0, Y: 0, Width: 30, Height: 30}) {
		t.Errorf("Expected clamp to frame origin, got %v", r)
	}
}

func TestHitHandle(t *testing.T) {
	r := pixel.Rect{X: 10, Y: 10, Width: 40, Height: 20}
	tests := []struct {
		x, y int
		want Handle
	}{
		{10, 10, HandleTopLeft},
		{30, 12, HandleTop},
		{49, 10, HandleTopRight},
		{52, 20, HandleRight},
		{49, 29, HandleBottomRight},
		{30, 29, HandleBottom},
		{8, 31, HandleBottomLeft},
		{10, 20, HandleLeft},
		{30, 20, HandleNone},
	}
	for _, tt := range tests {
		if got := hitHandle(tt.x, tt.y, r); got != tt.want {
			t.Errorf("hitHandle(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestToolbarButtons(t *testing.T) {
	c, _ := newTestController(400, 300)
	_ = c.Trigger()
	drag(t, c, 100, 50, 300, 150)

	bar, ok := c.toolbar()
	if !ok {
		t.Fatal("Expected toolbar for settled selection")
	}
	if bar.Min.Y != 150+tbMargin {
		t.Errorf("Expected toolbar below selection, got %v", bar)
	}
	rects := buttonRects(bar)
	pin := rects[1].Min.Add(image.Pt(5, 5))

	c.NeedsRedraw()
	mustHandle(t, c, input.PointerMove{X: float64(pin.X), Y: float64(pin.Y)})
	if !c.NeedsRedraw() {
		t.Error("Expected redraw on hover change")
	}
	mustHandle(t, c, input.PointerMove{X: float64(pin.X + 1), Y: float64(pin.Y)})
	if c.NeedsRedraw() {
		t.Error("Expected no redraw when hover is unchanged")
	}

	mustHandle(t, c, input.PointerDown{X: float64(pin.X), Y: float64(pin.Y), Button: input.ButtonLeft})
	a := mustHandle(t, c, input.PointerUp{X: float64(pin.X), Y: float64(pin.Y), Button: input.ButtonLeft})
	if _, ok := a.(PasteSelection); !ok {
		t.Fatalf("Expected PasteSelection from Pin button, got %T", a)
	}

	exit := rects[0].Min.Add(image.Pt(5, 5))
	mustHandle(t, c, input.PointerDown{X: float64(exit.X), Y: float64(exit.Y), Button: input.ButtonLeft})
	a = mustHandle(t, c, input.PointerUp{X: float64(exit.X), Y: float64(exit.Y), Button: input.ButtonLeft})
	if _, ok := a.(Canceled); !ok {
		t.Errorf("Expected Canceled from Exit button, got %T", a)
	}
}

func TestToolbarPlacement(t *testing.T) {
	tests := []struct {
		name string
		sel  pixel.Rect
		want func(bar image.Rectangle, sel pixel.Rect) bool
	}{
		{"below", pixel.Rect{X: 100, Y: 10, Width: 200, Height: 50}, func(b image.Rectangle, s pixel.Rect) bool {
			return b.Min.Y == s.Bottom()+tbMargin
		}},
		{"above", pixel.Rect{X: 100, Y: 200, Width: 200, Height: 95}, func(b image.Rectangle, s pixel.Rect) bool {
			return b.Max.Y == s.Y-tbMargin
		}},
		{"inset", pixel.Rect{X: 0, Y: 0, Width: 400, Height: 300}, func(b image.Rectangle, s pixel.Rect) bool {
			return b.Max.X == s.Right()-tbInset && b.Max.Y == s.Bottom()-tbInset
		}},
		{"clamped left", pixel.Rect{X: 0, Y: 10, Width: 10, Height: 10}, func(b image.Rectangle, s pixel.Rect) bool {
			return b.Min.X == 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar, ok := toolbarRect(tt.sel, 400, 300)
			if !ok {
				t.Fatal("Expected a toolbar")
			}
			if !tt.want(bar, tt.sel) {
				t.Errorf("Unexpected toolbar %v for selection %v", bar, tt.sel)
			}
			if !bar.In(image.Rect(0, 0, 400, 300)) {
				t.Errorf("Toolbar %v leaves the screen", bar)
			}
		})
	}
}

func TestRender(t *testing.T) {
	c, _ := newTestController(400, 300)
	_ = c.Trigger()
	dst := make([]uint32, 400*300)

	c.Render(dst, 400, 300)
	dimRed := pixel.PackBGRA(153, 0, 0, 255)
	if dst[0] != dimRed {
		t.Errorf("Expected dimmed background, got %#x", dst[0])
	}

	drag(t, c, 50, 50, 100, 100)
	c.Render(dst, 400, 300)
	if got := dst[70*400+70]; got != pixel.PackBGRA(255, 0, 0, 255) {
		t.Errorf("Expected original pixel inside selection, got %#x", got)
	}
	if got := dst[50*400+60]; got != colorOutline {
		t.Errorf("Expected outline on selection edge, got %#x", got)
	}
	if got := dst[200*400+300]; got != dimRed {
		t.Errorf("Expected dim outside selection, got %#x", got)
	}

	allocs := testing.AllocsPerRun(5, func() { c.Render(dst, 400, 300) })
	if allocs != 0 {
		t.Errorf("Expected Render not to allocate, got %v", allocs)
	}
}

func TestRenderTextSprite(t *testing.T) {
	s := renderText("Pin", labelColor)
	if s.w == 0 || s.h != 13 {
		t.Fatalf("Unexpected sprite size %dx%d", s.w, s.h)
	}
	lit := 0
	for _, w := range s.words {
		if w != 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("Expected some glyph pixels")
	}
}
