package surface

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"
)

// ErrSurface marks a presentation surface that could not be created, resized or drawn.
var ErrSurface = errors.New("surface error")

// WindowID identifies a native window for its whole life. IDs are never reused.
type WindowID uint64

var lastID atomic.Uint64

// NewWindowID returns a fresh identifier.
func NewWindowID() WindowID {
	return WindowID(lastID.Add(1))
}

// Surface is a platform presentation target that accepts packed BGRA words.
type Surface interface {
	Resize(width, height int) error
	Present(words []uint32) error
	Release()
}

// Mover is implemented by surfaces whose window can be repositioned.
type Mover interface {
	Move(pos image.Point) error
}

// Owner binds one Surface to one window for as long as that window exists.
type Owner struct {
	id       WindowID
	surface  Surface
	width    int
	height   int
	released bool
}

// NewOwner sizes s and takes ownership of it. On failure s is released.
func NewOwner(id WindowID, s Surface, width, height int) (*Owner, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: window %d has no surface", ErrSurface, id)
	}
	if width <= 0 || height <= 0 {
		s.Release()
		return nil, fmt.Errorf("%w: window %d invalid size %dx%d", ErrSurface, id, width, height)
	}
	if err := s.Resize(width, height); err != nil {
		s.Release()
		return nil, fmt.Errorf("%w: resize window %d: %v", ErrSurface, id, err)
	}
	return &Owner{id: id, surface: s, width: width, height: height}, nil
}

func (o *Owner) ID() WindowID { return o.id }

func (o *Owner) Size() (int, int) { return o.width, o.height }

func (o *Owner) Released() bool { return o.released }

// Present uploads one full frame of packed words.
func (o *Owner) Present(words []uint32) error {
	if o.released {
		return fmt.Errorf("%w: window %d already released", ErrSurface, o.id)
	}
	if len(words) != o.width*o.height {
		return fmt.Errorf("%w: window %d got %d words, want %d", ErrSurface, o.id, len(words), o.width*o.height)
	}
	if err := o.surface.Present(words); err != nil {
		return fmt.Errorf("%w: present window %d: %v", ErrSurface, o.id, err)
	}
	return nil
}

// CanMove reports whether Move actually repositions the native window.
func (o *Owner) CanMove() bool {
	_, ok := o.surface.(Mover)
	return ok
}

// Move repositions the window when the surface supports it.
func (o *Owner) Move(pos image.Point) error {
	if o.released {
		return fmt.Errorf("%w: window %d already released", ErrSurface, o.id)
	}
	m, ok := o.surface.(Mover)
	if !ok {
		return nil
	}
	if err := m.Move(pos); err != nil {
		return fmt.Errorf("%w: move window %d: %v", ErrSurface, o.id, err)
	}
	return nil
}

// Release frees the surface. Calling it again is a no-op.
func (o *Owner) Release() {
	if o.released {
		return
	}
	o.released = true
	o.surface.Release()
}
