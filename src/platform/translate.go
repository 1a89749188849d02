package platform

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"snip-pin/src/input"
)

// translate maps one shiny event to an input event. dead reports that the
// window is gone and its pump should stop.
func translate(e interface{}) (ev input.Event, ok, dead bool) {
	switch e := e.(type) {
	case mouse.Event:
		x, y := float64(e.X), float64(e.Y)
		switch e.Direction {
		case mouse.DirPress:
			return input.PointerDown{X: x, Y: y, Button: button(e.Button)}, true, false
		case mouse.DirRelease:
			return input.PointerUp{X: x, Y: y, Button: button(e.Button)}, true, false
		case mouse.DirNone:
			return input.PointerMove{X: x, Y: y}, true, false
		}
	case key.Event:
		if e.Direction != key.DirPress {
			return nil, false, false
		}
		if k := keyOf(e); k != input.KeyUnknown {
			return input.KeyPress{Key: k}, true, false
		}
	case lifecycle.Event:
		if e.To == lifecycle.StageDead {
			return input.Closed{}, true, true
		}
		switch e.Crosses(lifecycle.StageFocused) {
		case lifecycle.CrossOn:
			return input.Focus{Focused: true}, true, false
		case lifecycle.CrossOff:
			return input.Focus{Focused: false}, true, false
		}
	case paint.Event:
		return input.Paint{}, true, false
	case size.Event:
		return input.Paint{}, true, false
	}
	return nil, false, false
}

func button(b mouse.Button) input.Button {
	switch b {
	case mouse.ButtonLeft:
		return input.ButtonLeft
	case mouse.ButtonRight:
		return input.ButtonRight
	case mouse.ButtonMiddle:
		return input.ButtonMiddle
	}
	return input.ButtonNone
}

func keyOf(e key.Event) input.Key {
	switch e.Code {
	case key.CodeEscape:
		return input.KeyEscape
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		return input.KeyEnter
	case key.CodeP:
		return input.KeyPin
	case key.CodeS:
		return input.KeySave
	}
	switch e.Rune {
	case 'p', 'P':
		return input.KeyPin
	case 's', 'S':
		return input.KeySave
	}
	return input.KeyUnknown
}
