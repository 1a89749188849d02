package tray

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/getlantern/systray"
)

// Config describes the tray icon. Callbacks run on the tray goroutine and must
// not block.
type Config struct {
	Title     string
	Tooltip   string
	OnCapture func()
	OnExit    func()
}

type Tray struct {
	cfg  Config
	once sync.Once
}

var (
	ready   atomic.Bool
	pending atomic.Value // string
)

func New(cfg Config) *Tray {
	if cfg.Title == "" {
		cfg.Title = "Snip Pin"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg}
}

// Run blocks until the tray is torn down.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle(t.cfg.Title)
	tooltip := t.cfg.Tooltip
	if s, ok := pending.Load().(string); ok && s != "" {
		tooltip = s
	}
	systray.SetTooltip(tooltip)
	ready.Store(true)

	mCapture := systray.AddMenuItem("Capture", "Capture the screen")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if t.cfg.OnCapture != nil {
					t.cfg.OnCapture()
				}
			case <-mQuit.ClickedCh:
				log.Printf("Tray: quit requested")
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	ready.Store(false)
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// Destroy removes the icon. Safe to call more than once.
func (t *Tray) Destroy() {
	t.once.Do(func() {
		if ready.Load() {
			systray.Quit()
		}
	})
}

// UpdateTooltip changes the tooltip, or remembers it until the tray is ready.
func UpdateTooltip(text string) {
	pending.Store(text)
	if ready.Load() {
		systray.SetTooltip(text)
	}
}
