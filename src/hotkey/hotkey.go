package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

var (
	// ErrAlreadyRegistered is returned while another Registration is open.
	ErrAlreadyRegistered = errors.New("hotkey already registered")
	ErrInvalidHotkey     = errors.New("invalid hotkey")
)

// DefaultCombo is used when no hotkey is configured.
const DefaultCombo = "F4"

var (
	regMu  sync.Mutex
	active *Registration
)

// Registration owns the process-wide keyboard hook. Triggers arrive on C().
type Registration struct {
	combo string
	ch    chan struct{}
	done  chan struct{}
	once  sync.Once
}

// Register parses combo and installs the global hook. Only one registration
// may be open at a time.
func Register(combo string) (*Registration, error) {
	if strings.TrimSpace(combo) == "" {
		combo = DefaultCombo
	}
	m, err := newMatcher(combo)
	if err != nil {
		return nil, err
	}

	regMu.Lock()
	defer regMu.Unlock()
	if active != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, active.combo)
	}

	r := &Registration{
		combo: combo,
		ch:    make(chan struct{}, 4),
		done:  make(chan struct{}),
	}
	evChan := gohook.Start()
	if evChan == nil {
		return nil, fmt.Errorf("hotkey: gohook.Start() returned nil channel")
	}
	active = r
	log.Printf("Hotkey listener configured for: %s", combo)

	go r.listen(evChan, m)
	return r, nil
}

func (r *Registration) listen(evChan chan gohook.Event, m *matcher) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("PANIC in hotkey goroutine: %v", p)
		}
	}()
	for {
		select {
		case <-r.done:
			return
		case ev, ok := <-evChan:
			if !ok {
				log.Printf("Hotkey: event channel closed")
				return
			}
			if !m.feed(ev.Kind, ev.Rawcode) {
				continue
			}
			log.Printf("Hotkey: %s activated", r.combo)
			select {
			case r.ch <- struct{}{}:
			default:
			}
		}
	}
}

// C delivers one value per detected key combination. Extra presses are
// dropped while the buffer is full.
func (r *Registration) C() <-chan struct{} { return r.ch }

func (r *Registration) Combo() string { return r.combo }

// Close removes the hook. It is safe to call more than once.
func (r *Registration) Close() {
	r.once.Do(func() {
		close(r.done)
		gohook.End()
		regMu.Lock()
		if active == r {
			active = nil
		}
		regMu.Unlock()
		log.Printf("Hotkey: %s unregistered", r.combo)
	})
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// matcher tracks which keys of a combination are held down.
type matcher struct {
	keys []keyState
}

func newMatcher(combo string) (*matcher, error) {
	m := &matcher{}
	for _, name := range parseHotkey(combo) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("%w: cannot map key %q in %q", ErrInvalidHotkey, name, combo)
		}
		m.keys = append(m.keys, keyState{name: name, rawcodes: codes})
	}
	if len(m.keys) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHotkey, combo)
	}
	return m, nil
}

// feed applies one key event and reports whether the full combination is now held.
// State resets after a match so holding the keys fires once.
func (m *matcher) feed(kind uint8, rawcode uint16) bool {
	if kind != gohook.KeyDown && kind != gohook.KeyUp {
		return false
	}
	down := kind == gohook.KeyDown
	for i := range m.keys {
		for _, rc := range m.keys[i].rawcodes {
			if rc == rawcode {
				m.keys[i].pressed = down
				break
			}
		}
	}
	if !down {
		return false
	}
	for i := range m.keys {
		if !m.keys[i].pressed {
			return false
		}
	}
	for i := range m.keys {
		m.keys[i].pressed = false
	}
	return true
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

var modifierCodes = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN
}

var specialCodes = map[string]uint16{
	"space":     32,
	"enter":     13,
	"return":    13,
	"esc":       27,
	"escape":    27,
	"tab":       9,
	"backspace": 8,
	"delete":    46,
	"del":       46,
	"insert":    45,
	"ins":       45,
	"home":      36,
	"end":       35,
	"pageup":    33,
	"pgup":      33,
	"pagedown":  34,
	"pgdn":      34,
	"left":      37,
	"up":        38,
	"right":     39,
	"down":      40,
	"print":     44, // VK_SNAPSHOT
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes.
// Modifiers return both left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if keyName == "win" || keyName == "super" {
		keyName = "cmd"
	}
	if codes, ok := modifierCodes[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		switch c := keyName[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	if strings.HasPrefix(keyName, "f") {
		if n, err := strconv.Atoi(keyName[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 = 112
		}
	}
	if code, ok := specialCodes[keyName]; ok {
		return []uint16{code}
	}
	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
