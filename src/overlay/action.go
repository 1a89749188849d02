package overlay

import "snip-pin/src/pixel"

// Action is what the controller asks its caller to do after an event.
// The set of variants is closed.
type Action interface{ isAction() }

// None means nothing for the caller to do.
type None struct{}

// Canceled means the session ended without a result.
type Canceled struct{}

// SelectionFinished carries the confirmed selection as PNG. Rect is in
// virtual-desktop coordinates.
type SelectionFinished struct {
	PNG  []byte
	Rect pixel.Rect
}

// PasteSelection asks for a pinned window showing PNG whose top-left sits at
// (ScreenX, ScreenY), exactly over the selected area.
type PasteSelection struct {
	PNG     []byte
	Width   int
	Height  int
	ScreenX int
	ScreenY int
}

func (None) isAction()              {}
func (Canceled) isAction()          {}
func (SelectionFinished) isAction() {}
func (PasteSelection) isAction()    {}
