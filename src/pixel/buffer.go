package pixel

import (
	"fmt"
	"image"
)

// BytesPerPixel is fixed for every buffer in the pipeline.
const BytesPerPixel = 4

// Format tags the channel order currently stored in a Buffer.
type Format int

const (
	FormatRGBA Format = iota
	FormatBGRA
)

func (f Format) String() string {
	switch f {
	case FormatRGBA:
		return "RGBA"
	case FormatBGRA:
		return "BGRA"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Buffer is a row-major image with 4 bytes per pixel and no row padding.
// A Buffer has a single owner at a time; components hand it over rather than share it.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte
	Format Format
}

// NewBuffer allocates a zeroed buffer. Negative sizes are treated as zero.
func NewBuffer(width, height int, format Format) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
		Format: format,
	}
}

// FromRGBA copies img into a tightly packed RGBA buffer, dropping any stride padding
// and rebasing the bounds to (0,0).
func FromRGBA(img *image.RGBA) *Buffer {
	if img == nil {
		return NewBuffer(0, 0, FormatRGBA)
	}
	b := img.Bounds()
	out := NewBuffer(b.Dx(), b.Dy(), FormatRGBA)
	rowLen := out.Width * BytesPerPixel
	for y := 0; y < out.Height; y++ {
		src := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*rowLen:(y+1)*rowLen], img.Pix[src:src+rowLen])
	}
	return out
}

// Validate checks the length invariant.
func (b *Buffer) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("negative dimensions %dx%d", b.Width, b.Height)
	}
	if want := b.Width * b.Height * BytesPerPixel; len(b.Pix) != want {
		return fmt.Errorf("pixel length %d does not match %dx%d (want %d)", len(b.Pix), b.Width, b.Height, want)
	}
	return nil
}

// Empty reports whether the buffer holds no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width == 0 || b.Height == 0
}

// Bounds returns the buffer-local rectangle covering every pixel.
func (b *Buffer) Bounds() Rect {
	return Rect{Width: b.Width, Height: b.Height}
}

// Offset returns the byte index of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * BytesPerPixel
}

// At returns the four stored bytes of pixel (x, y) in storage order.
func (b *Buffer) At(x, y int) [4]byte {
	i := b.Offset(x, y)
	return [4]byte{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}

func (b *Buffer) Clone() *Buffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix, Format: b.Format}
}

// ToRGBA returns an image.RGBA copy, swapping channels back if the buffer is stored as BGRA.
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	if b.Format == FormatBGRA {
		SwapRB(img.Pix)
	}
	return img
}

// Crop copies r out of b. r is clamped to the buffer first; a rectangle that clamps
// to nothing yields an empty buffer rather than an error.
func Crop(b *Buffer, r Rect) *Buffer {
	r = r.Clamp(b.Width, b.Height)
	out := NewBuffer(r.Width, r.Height, b.Format)
	if r.Empty() {
		return out
	}
	rowLen := r.Width * BytesPerPixel
	for y := 0; y < r.Height; y++ {
		src := b.Offset(r.X, r.Y+y)
		copy(out.Pix[y*rowLen:(y+1)*rowLen], b.Pix[src:src+rowLen])
	}
	return out
}
