package pastewin

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sort"

	"snip-pin/src/input"
	"snip-pin/src/pixel"
	"snip-pin/src/surface"
)

// ErrUnknownWindow is returned for ids that are not (or no longer) tracked.
var ErrUnknownWindow = errors.New("unknown pinned window")

// SurfaceFactory opens a native window of the given size at pos and returns its surface.
type SurfaceFactory interface {
	NewSurface(id surface.WindowID, width, height int, pos image.Point) (surface.Surface, error)
}

// Window is one pinned image. Its frames are rendered once at creation.
type Window struct {
	id       surface.WindowID
	position image.Point
	content  *pixel.Buffer

	focusedFrame   *pixel.Buffer
	unfocusedFrame *pixel.Buffer
	focusedWords   []uint32
	unfocusedWords []uint32

	owner   *surface.Owner
	focused bool

	dragging bool
	anchor   image.Point
	last     image.Point
}

func (w *Window) ID() surface.WindowID          { return w.id }
func (w *Window) Position() image.Point         { return w.position }
func (w *Window) Content() *pixel.Buffer        { return w.content }
func (w *Window) FocusedFrame() *pixel.Buffer   { return w.focusedFrame }
func (w *Window) UnfocusedFrame() *pixel.Buffer { return w.unfocusedFrame }
func (w *Window) Focused() bool                 { return w.focused }
func (w *Window) Dragging() bool                { return w.dragging }

// Size is the outer size including the border.
func (w *Window) Size() (int, int) { return w.focusedFrame.Width, w.focusedFrame.Height }

func (w *Window) words() []uint32 {
	if w.focused {
		return w.focusedWords
	}
	return w.unfocusedWords
}

// Manager tracks every pinned window by id. Like the overlay it is driven from
// a single goroutine and takes no locks.
type Manager struct {
	factory SurfaceFactory
	border  int
	windows map[surface.WindowID]*Window
}

type Option func(*Manager)

// WithBorder sets the frame width. Values below 1 fall back to DefaultBorder.
func WithBorder(px int) Option {
	return func(m *Manager) {
		if px >= 1 {
			m.border = px
		}
	}
}

func NewManager(f SurfaceFactory, opts ...Option) *Manager {
	m := &Manager{
		factory: f,
		border:  DefaultBorder,
		windows: make(map[surface.WindowID]*Window),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Border() int { return m.border }

// Create pins content with the window's outer top-left at pos. The manager takes
// ownership of content. If the surface cannot be set up no window is tracked.
func (m *Manager) Create(content *pixel.Buffer, pos image.Point) (*Window, error) {
	if content.Empty() {
		return nil, fmt.Errorf("pin: empty content")
	}
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("pin: %w", err)
	}
	if content.Format == pixel.FormatBGRA {
		pixel.MaybeConvertBGRA(content, true)
	}

	focused, unfocused := renderFrames(content, m.border)
	w := &Window{
		id:             surface.NewWindowID(),
		position:       pos,
		content:        content,
		focusedFrame:   focused,
		unfocusedFrame: unfocused,
		focusedWords:   pixel.PackedBGRAWords(focused),
		unfocusedWords: pixel.PackedBGRAWords(unfocused),
		focused:        true,
	}

	fw, fh := w.Size()
	s, err := m.factory.NewSurface(w.id, fw, fh, pos)
	if err != nil {
		return nil, fmt.Errorf("pin %d: %w: %v", w.id, surface.ErrSurface, err)
	}
	owner, err := surface.NewOwner(w.id, s, fw, fh)
	if err != nil {
		return nil, err
	}
	w.owner = owner
	if err := owner.Present(w.words()); err != nil {
		owner.Release()
		return nil, err
	}

	m.windows[w.id] = w
	log.Printf("Pin: created window %d (%dx%d) at %v", w.id, fw, fh, pos)
	return w, nil
}

// CreateFromPNG decodes data once and pins it so the image itself (not the
// border) lands on pos. A nil pos places the window at the origin.
func (m *Manager) CreateFromPNG(data []byte, pos *image.Point) (*Window, error) {
	content, err := pixel.DecodePNG(data)
	if err != nil {
		return nil, fmt.Errorf("pin: %w", err)
	}
	at := image.Point{}
	if pos != nil {
		at = pos.Sub(image.Pt(m.border, m.border))
	}
	return m.Create(content, at)
}

// Get returns the window for id.
func (m *Manager) Get(id surface.WindowID) (*Window, bool) {
	w, ok := m.windows[id]
	return w, ok
}

func (m *Manager) Len() int { return len(m.windows) }

// IDs lists live windows in creation order.
func (m *Manager) IDs() []surface.WindowID {
	ids := make([]surface.WindowID, 0, len(m.windows))
	for id := range m.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// OnDrag shifts the window by delta. Frames and content are left alone.
func (m *Manager) OnDrag(id surface.WindowID, delta image.Point) error {
	w, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownWindow, id)
	}
	w.position = w.position.Add(delta)
	if err := w.owner.Move(w.position); err != nil {
		log.Printf("Pin: move window %d failed: %v", id, err)
		return err
	}
	return nil
}

// OnFocusChange presents the matching pre-rendered frame. A window whose
// surface fails is closed; others are not affected.
func (m *Manager) OnFocusChange(id surface.WindowID, focused bool) error {
	w, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownWindow, id)
	}
	if w.focused == focused {
		return nil
	}
	w.focused = focused
	if !focused {
		w.dragging = false
	}
	return m.present(w)
}

// Redraw presents the current frame again.
func (m *Manager) Redraw(id surface.WindowID) error {
	w, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownWindow, id)
	}
	return m.present(w)
}

func (m *Manager) present(w *Window) error {
	if err := w.owner.Present(w.words()); err != nil {
		log.Printf("Pin: window %d failed to present, closing: %v", w.id, err)
		_ = m.Close(w.id)
		return err
	}
	return nil
}

// Close releases the window's surface and forgets it.
func (m *Manager) Close(id surface.WindowID) error {
	w, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownWindow, id)
	}
	w.owner.Release()
	delete(m.windows, id)
	log.Printf("Pin: closed window %d (%d left)", id, len(m.windows))
	return nil
}

// CloseAll releases every window.
func (m *Manager) CloseAll() {
	for _, id := range m.IDs() {
		_ = m.Close(id)
	}
}

// HandleEvent applies one input event delivered to a pinned window: left-drag
// moves it, right-click or Escape closes it, focus swaps the border.
func (m *Manager) HandleEvent(id surface.WindowID, ev input.Event) error {
	w, ok := m.windows[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownWindow, id)
	}
	switch e := ev.(type) {
	case input.PointerDown:
		switch e.Button {
		case input.ButtonLeft:
			p := image.Pt(int(e.X), int(e.Y))
			w.dragging, w.anchor, w.last = true, p, p
			return m.OnFocusChange(id, true)
		case input.ButtonRight:
			return m.Close(id)
		}
	case input.PointerMove:
		if !w.dragging {
			return nil
		}
		p := image.Pt(int(e.X), int(e.Y))
		// A window that follows the pointer reports it at the anchor again after
		// each move; one that cannot move sees the pointer run away from it.
		delta := p.Sub(w.anchor)
		if !w.owner.CanMove() {
			delta = p.Sub(w.last)
			w.last = p
		}
		if delta == (image.Point{}) {
			return nil
		}
		return m.OnDrag(id, delta)
	case input.PointerUp:
		if e.Button == input.ButtonLeft {
			w.dragging = false
		}
	case input.KeyPress:
		if e.Key == input.KeyEscape {
			return m.Close(id)
		}
	case input.Focus:
		return m.OnFocusChange(id, e.Focused)
	case input.Paint:
		return m.Redraw(id)
	case input.Closed:
		return m.Close(id)
	}
	return nil
}
