package platform

import (
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"

	"snip-pin/src/input"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want input.Event
		ok   bool
		dead bool
	}{
		{"left press", mouse.Event{X: 3, Y: 4, Button: mouse.ButtonLeft, Direction: mouse.DirPress}, input.PointerDown{X: 3, Y: 4, Button: input.ButtonLeft}, true, false},
		{"right release", mouse.Event{X: 1, Y: 2, Button: mouse.ButtonRight, Direction: mouse.DirRelease}, input.PointerUp{X: 1, Y: 2, Button: input.ButtonRight}, true, false},
		{"move", mouse.Event{X: 7.5, Y: 8, Direction: mouse.DirNone}, input.PointerMove{X: 7.5, Y: 8}, true, false},
		{"escape", key.Event{Code: key.CodeEscape, Direction: key.DirPress}, input.KeyPress{Key: input.KeyEscape}, true, false},
		{"enter", key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress}, input.KeyPress{Key: input.KeyEnter}, true, false},
		{"pin by rune", key.Event{Rune: 'P', Direction: key.DirPress}, input.KeyPress{Key: input.KeyPin}, true, false},
		{"save by code", key.Event{Code: key.CodeS, Direction: key.DirPress}, input.KeyPress{Key: input.KeySave}, true, false},
		{"key release ignored", key.Event{Code: key.CodeEscape, Direction: key.DirRelease}, nil, false, false},
		{"unknown key", key.Event{Code: key.CodeQ, Rune: 'q', Direction: key.DirPress}, nil, false, false},
		{"focus on", lifecycle.Event{From: lifecycle.StageVisible, To: lifecycle.StageFocused}, input.Focus{Focused: true}, true, false},
		{"focus off", lifecycle.Event{From: lifecycle.StageFocused, To: lifecycle.StageVisible}, input.Focus{Focused: false}, true, false},
		{"dead", lifecycle.Event{From: lifecycle.StageVisible, To: lifecycle.StageDead}, input.Closed{}, true, true},
		{"paint", paint.Event{}, input.Paint{}, true, false},
		{"other", struct{}{}, nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, dead := translate(tt.in)
			if ok != tt.ok || dead != tt.dead {
				t.Fatalf("ok=%v dead=%v, want ok=%v dead=%v", ok, dead, tt.ok, tt.dead)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}
