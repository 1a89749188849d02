// Package platform backs surfaces with shiny windows and turns their events
// into input envelopes for the driver loop.
package platform

import (
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/lifecycle"

	"snip-pin/src/input"
	"snip-pin/src/surface"
	"snip-pin/src/winutil"
)

// Platform creates native windows on one shiny screen. All window events are
// multiplexed onto Events().
type Platform struct {
	s      screen.Screen
	events chan input.Envelope
	done   chan struct{}
	once   sync.Once
}

func New(s screen.Screen) *Platform {
	return &Platform{
		s:      s,
		events: make(chan input.Envelope, 64),
		done:   make(chan struct{}),
	}
}

func (p *Platform) Events() <-chan input.Envelope { return p.events }

// Close stops every pump from delivering further events.
func (p *Platform) Close() {
	p.once.Do(func() { close(p.done) })
}

// NewSurface opens a pinned-image window.
func (p *Platform) NewSurface(id surface.WindowID, width, height int, pos image.Point) (surface.Surface, error) {
	return p.open(id, fmt.Sprintf("snip-pin pin %d", id), image.Rectangle{Min: pos, Max: pos.Add(image.Pt(width, height))})
}

// NewOverlaySurface opens the full-screen selection window covering bounds.
func (p *Platform) NewOverlaySurface(id surface.WindowID, bounds image.Rectangle) (surface.Surface, error) {
	return p.open(id, fmt.Sprintf("snip-pin overlay %d", id), bounds)
}

func (p *Platform) open(id surface.WindowID, title string, bounds image.Rectangle) (surface.Surface, error) {
	w, h := bounds.Dx(), bounds.Dy()
	nw, err := p.s.NewWindow(&screen.NewWindowOptions{Width: w, Height: h, Title: title})
	if err != nil {
		return nil, fmt.Errorf("new window %q: %w", title, err)
	}
	win := &window{id: id, title: title, s: p.s, w: nw}
	if err := winutil.MakePopup(title, bounds.Min, w, h); err != nil {
		log.Printf("Platform: %q placed by window manager: %v", title, err)
	}
	go p.pump(win)
	if winutil.Supported() {
		return &movableWindow{window: win}, nil
	}
	return win, nil
}

// pump forwards one window's events until it dies. It never touches loop state.
func (p *Platform) pump(win *window) {
	for {
		e := win.w.NextEvent()
		ev, ok, dead := translate(e)
		if dead && win.closing.Load() {
			return
		}
		if ok {
			select {
			case p.events <- input.Envelope{Window: win.id, Event: ev}:
			case <-p.done:
				return
			}
		}
		if dead {
			return
		}
	}
}

// window implements surface.Surface on a shiny window and one upload buffer.
type window struct {
	id      surface.WindowID
	title   string
	s       screen.Screen
	w       screen.Window
	buf     screen.Buffer
	closing atomic.Bool
}

func (win *window) Resize(width, height int) error {
	if win.buf != nil {
		if sz := win.buf.Size(); sz.X == width && sz.Y == height {
			return nil
		}
		win.buf.Release()
		win.buf = nil
	}
	buf, err := win.s.NewBuffer(image.Pt(width, height))
	if err != nil {
		return err
	}
	win.buf = buf
	return nil
}

// Present unpacks BGRA words into the upload buffer and publishes it.
func (win *window) Present(words []uint32) error {
	if win.buf == nil {
		return fmt.Errorf("window %q has no buffer", win.title)
	}
	rgba := win.buf.RGBA()
	sz := win.buf.Size()
	if len(words) < sz.X*sz.Y {
		return fmt.Errorf("window %q: %d words for %v", win.title, len(words), sz)
	}
	for y := 0; y < sz.Y; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+sz.X*4]
		src := words[y*sz.X : (y+1)*sz.X]
		for x, v := range src {
			row[x*4] = byte(v >> 16)
			row[x*4+1] = byte(v >> 8)
			row[x*4+2] = byte(v)
			row[x*4+3] = byte(v >> 24)
		}
	}
	win.w.Upload(image.Point{}, win.buf, win.buf.Bounds())
	win.w.Publish()
	return nil
}

func (win *window) Release() {
	if win.closing.Swap(true) {
		return
	}
	// Wake the pump so it can observe closing and exit quietly.
	win.w.Send(lifecycle.Event{To: lifecycle.StageDead})
	if win.buf != nil {
		win.buf.Release()
		win.buf = nil
	}
	win.w.Release()
}

type movableWindow struct {
	*window
}

func (m *movableWindow) Move(pos image.Point) error {
	return winutil.Move(m.title, pos)
}
