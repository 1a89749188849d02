package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"snip-pin/src/input"
	"snip-pin/src/overlay"
	"snip-pin/src/pastewin"
	"snip-pin/src/session"
	"snip-pin/src/singleinstance"
	"snip-pin/src/surface"
	"snip-pin/src/tray"
	"snip-pin/src/worker"
)

// Platform opens native windows and delivers their input.
type Platform interface {
	pastewin.SurfaceFactory
	NewOverlaySurface(id surface.WindowID, bounds image.Rectangle) (surface.Surface, error)
	Events() <-chan input.Envelope
}

type Config struct {
	Capturer overlay.Capturer
	Platform Platform
	// Target receives confirmed snips. Defaults to a FileTarget in the working directory.
	Target    session.ResultTarget
	DimFactor float32
	PinBorder int
	// Hotkey delivers capture triggers; nil disables it.
	Hotkey <-chan struct{}
	// Server accepts delegated run-once requests; nil disables delegation.
	Server singleinstance.Server
	// ExitAfterSession stops Run once the first session is over and no pins remain.
	ExitAfterSession bool
	Deadline         time.Duration
}

// Loop is the single-threaded coordinator for hotkey triggers, window input,
// deliveries and delegated run-once requests. Every overlay and pin mutation
// happens on the goroutine running Run.
type Loop struct {
	ctrl   *overlay.Controller
	pins   *pastewin.Manager
	plat   Platform
	pool   *worker.Pool
	target session.ResultTarget
	srv    singleinstance.Server

	hotkeyCh <-chan struct{}
	triggers chan struct{}
	results  chan result
	quit     chan struct{}

	overlay *surface.Owner
	words   []uint32

	pending    singleinstance.Conn
	delivering bool
	sessions   int
	exitAfter  bool
	// sessionErr is the last capture, surface or delivery failure. Run
	// returns it when ExitAfterSession is set.
	sessionErr error

	defaultTooltip string
	deadline       time.Duration
}

type result struct {
	res  session.Result
	err  error
	conn singleinstance.Conn
}

func New(cfg Config) (*Loop, error) {
	if cfg.Capturer == nil || cfg.Platform == nil {
		return nil, errors.New("eventloop: Capturer and Platform are required")
	}
	target := cfg.Target
	if target == nil {
		target = session.FileTarget{Dir: "."}
	}
	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = 20 * time.Second
	}
	return &Loop{
		ctrl:           overlay.NewController(cfg.Capturer, overlay.Options{DimFactor: cfg.DimFactor}),
		pins:           pastewin.NewManager(cfg.Platform, pastewin.WithBorder(cfg.PinBorder)),
		plat:           cfg.Platform,
		pool:           worker.New(1),
		target:         target,
		srv:            cfg.Server,
		hotkeyCh:       cfg.Hotkey,
		triggers:       make(chan struct{}, 1),
		results:        make(chan result, 1),
		quit:           make(chan struct{}),
		exitAfter:      cfg.ExitAfterSession,
		defaultTooltip: "Snip Pin",
		deadline:       deadline,
	}, nil
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// Trigger requests a capture from any goroutine. Extra requests are dropped.
func (l *Loop) Trigger() {
	select {
	case l.triggers <- struct{}{}:
	default:
	}
}

// Pins exposes the pinned window manager. Only the Run goroutine may use it
// while the loop is running.
func (l *Loop) Pins() *pastewin.Manager { return l.pins }

func (l *Loop) setBusy(b bool) {
	l.delivering = b
	if b {
		tray.UpdateTooltip("Snip Pin: saving...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// Run processes triggers and window events until ctx is cancelled or, with
// ExitAfterSession, the session is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()

	reqCh := make(chan singleinstance.Conn, 4)
	if l.srv != nil {
		if err := l.srv.Start(ctx); err != nil {
			return err
		}
		if p := l.srv.Port(); p > 0 {
			log.Printf("Resident listening on 127.0.0.1:%d", p)
		}
		// Accept loop in background to avoid blocking event handling
		go func() {
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				select {
				case reqCh <- conn:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}
		}()
	}

	if l.exitAfter {
		l.Trigger()
	}

	events := l.plat.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleTrigger()
		case <-l.triggers:
			l.handleTrigger()
		case conn := <-reqCh:
			l.handleConn(conn)
		case env, ok := <-events:
			if !ok {
				return nil
			}
			l.dispatch(env)
		case res := <-l.results:
			l.handleResult(res)
		}
		if l.done() {
			log.Printf("Loop: session complete, exiting")
			return l.sessionErr
		}
	}
}

func (l *Loop) done() bool {
	return l.exitAfter && l.sessions > 0 && !l.ctrl.Visible() && !l.delivering && l.pins.Len() == 0
}

func (l *Loop) shutdown() {
	close(l.quit)
	l.closeOverlay()
	l.pins.CloseAll()
	if l.pending != nil {
		_ = l.pending.RespondError("resident shutting down")
		_ = l.pending.Close()
		l.pending = nil
	}
	l.pool.Close()
	if l.srv != nil {
		_ = l.srv.Close()
	}
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	if l.ctrl.Visible() || l.pending != nil || l.delivering {
		log.Printf("Loop: delegated request while busy")
		_ = conn.RespondError("Busy, please retry")
		_ = conn.Close()
		return
	}
	l.pending = conn
	l.handleTrigger()
}

func (l *Loop) handleTrigger() {
	if l.ctrl.Visible() {
		log.Printf("Loop: trigger ignored, overlay already open")
		return
	}
	l.sessions++
	if err := l.ctrl.Trigger(); err != nil {
		log.Printf("Loop: capture failed: %v", err)
		tray.UpdateTooltip("Snip Pin: capture failed")
		l.fail(err)
		return
	}

	frame := l.ctrl.Frame()
	bounds := frame.Bounds()
	id := surface.NewWindowID()
	s, err := l.plat.NewOverlaySurface(id, bounds)
	if err == nil {
		l.overlay, err = surface.NewOwner(id, s, bounds.Dx(), bounds.Dy())
	}
	if err != nil {
		log.Printf("Loop: overlay surface failed: %v", err)
		l.ctrl.Cancel()
		l.fail(fmt.Errorf("open overlay: %w", err))
		return
	}
	if n := bounds.Dx() * bounds.Dy(); cap(l.words) < n {
		l.words = make([]uint32, n)
	} else {
		l.words = l.words[:n]
	}
	l.ctrl.NeedsRedraw()
	l.present()
}

// fail records a session failure and answers a pending delegated request.
func (l *Loop) fail(err error) {
	l.sessionErr = err
	l.failPending(err)
}

func (l *Loop) failPending(err error) {
	if l.pending == nil {
		return
	}
	_ = l.pending.RespondError(err.Error())
	_ = l.pending.Close()
	l.pending = nil
}

func (l *Loop) present() {
	if l.overlay == nil {
		return
	}
	w, h := l.overlay.Size()
	l.ctrl.Render(l.words, w, h)
	if err := l.overlay.Present(l.words); err != nil {
		log.Printf("Loop: overlay present failed, cancelling: %v", err)
		l.ctrl.Cancel()
		l.closeOverlay()
		l.fail(err)
	}
}

func (l *Loop) closeOverlay() {
	if l.overlay != nil {
		l.overlay.Release()
		l.overlay = nil
	}
}

// dispatch routes one window event to the overlay or to a pinned window.
func (l *Loop) dispatch(env input.Envelope) {
	if l.overlay != nil && env.Window == l.overlay.ID() {
		l.handleOverlayEvent(env.Event)
		return
	}
	if err := l.pins.HandleEvent(env.Window, env.Event); err != nil && !errors.Is(err, pastewin.ErrUnknownWindow) {
		log.Printf("Loop: pin %d: %v", env.Window, err)
	}
}

func (l *Loop) handleOverlayEvent(ev input.Event) {
	act, err := l.ctrl.Handle(ev)
	if err != nil {
		log.Printf("Loop: overlay: %v", err)
	}

	switch a := act.(type) {
	case overlay.Canceled:
		l.closeOverlay()
		l.failPending(session.ErrSelectionCancelled)
		return
	case overlay.PasteSelection:
		pos := image.Pt(a.ScreenX, a.ScreenY)
		if _, err := l.pins.CreateFromPNG(a.PNG, &pos); err != nil {
			log.Printf("Loop: pin failed: %v", err)
		}
	case overlay.SelectionFinished:
		l.closeOverlay()
		l.deliver(session.Snip{PNG: a.PNG, Rect: a.Rect, Taken: time.Now()})
		return
	}

	if _, paint := ev.(input.Paint); paint || l.ctrl.NeedsRedraw() {
		l.present()
	}
}

// deliver answers a stdout delegation directly and hands everything else to
// the worker pool.
func (l *Loop) deliver(snip session.Snip) {
	conn := l.pending
	l.pending = nil
	if conn != nil && conn.Request().OutputToStdout {
		if err := conn.RespondSuccess(snip.PNG); err != nil {
			log.Printf("Loop: delegated response failed: %v", err)
		}
		_ = conn.Close()
		return
	}

	jobCtx, cancel := context.WithTimeout(context.Background(), l.deadline)
	l.setBusy(true)
	submitted := l.pool.Submit(jobCtx, snip, session.Options{Target: l.target}, func(res session.Result, err error) {
		cancel()
		select {
		case l.results <- result{res: res, err: err, conn: conn}:
		case <-l.quit:
			if conn != nil {
				_ = conn.Close()
			}
		}
	})
	if !submitted {
		cancel()
		l.setBusy(false)
		err := errors.New("Busy, please retry")
		log.Printf("Loop: delivery dropped: %v", err)
		l.sessionErr = err
		if conn != nil {
			_ = conn.RespondError(err.Error())
			_ = conn.Close()
		}
	}
}

func (l *Loop) handleResult(res result) {
	l.setBusy(false)
	if res.err != nil {
		log.Printf("Loop: delivery failed: %v", res.err)
		tray.UpdateTooltip("Snip Pin: save failed")
		l.sessionErr = res.err
	} else {
		log.Printf("Loop: snip delivered to %s", res.res.Location)
		tray.UpdateTooltip(fmt.Sprintf("Snip Pin: saved %s", res.res.Location))
	}
	if res.conn == nil {
		return
	}
	if res.err != nil {
		_ = res.conn.RespondError(res.err.Error())
	} else {
		_ = res.conn.RespondSuccess([]byte(res.res.Location))
	}
	_ = res.conn.Close()
}
