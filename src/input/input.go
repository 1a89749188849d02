// Package input defines the platform-neutral events the driver loop dispatches
// to the overlay and to pinned windows.
package input

import "snip-pin/src/surface"

type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeyPin  // P
	KeySave // S
)

// Event is one input notification. Coordinates are window-local pixels.
type Event interface{ isEvent() }

type PointerDown struct {
	X, Y   float64
	Button Button
}

type PointerMove struct{ X, Y float64 }

type PointerUp struct {
	X, Y   float64
	Button Button
}

type KeyPress struct{ Key Key }

// Focus reports the window gaining or losing keyboard focus.
type Focus struct{ Focused bool }

// Paint asks for the current contents to be presented again.
type Paint struct{}

// Closed reports that the user or the system closed the window.
type Closed struct{}

func (PointerDown) isEvent() {}
func (PointerMove) isEvent() {}
func (PointerUp) isEvent()   {}
func (KeyPress) isEvent()    {}
func (Focus) isEvent()       {}
func (Paint) isEvent()       {}
func (Closed) isEvent()      {}

// Envelope routes an event to the window it was delivered to.
type Envelope struct {
	Window surface.WindowID
	Event  Event
}
