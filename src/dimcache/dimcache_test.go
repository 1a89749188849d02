package dimcache

import (
	"bytes"
	"image"
	"testing"

	"snip-pin/src/pixel"
	"snip-pin/src/screenshot"
)

func testFrame(w, h int) *screenshot.Frame {
	buf := pixel.NewBuffer(w, h, pixel.FormatRGBA)
	for i := 0; i < len(buf.Pix); i += pixel.BytesPerPixel {
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = 200, 100, 50, 255
	}
	return &screenshot.Frame{Buffer: buf, Origin: image.Pt(10, 20)}
}

func TestBuild(t *testing.T) {
	frame := testFrame(3, 2)
	dim := Build(frame, DefaultFactor)
	if dim.Width != 3 || dim.Height != 2 {
		t.Fatalf("Expected 3x2, got %dx%d", dim.Width, dim.Height)
	}
	if got := dim.At(2, 1); got != [4]byte{120, 60, 30, 255} {
		t.Errorf("Expected (120,60,30,255), got %v", got)
	}
	if frame.Buffer.At(0, 0) != [4]byte{200, 100, 50, 255} {
		t.Error("Expected source frame untouched")
	}
}

func TestBuildIsPure(t *testing.T) {
	frame := testFrame(5, 5)
	a := Build(frame, 0.37)
	b := Build(frame, 0.37)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("Expected identical output for identical input")
	}
}

func TestBuildClampsFactor(t *testing.T) {
	frame := testFrame(1, 1)
	if got := Build(frame, 2).At(0, 0); got != [4]byte{200, 100, 50, 255} {
		t.Errorf("Expected factor clamped to 1, got %v", got)
	}
	if got := Build(frame, -1).At(0, 0); got != [4]byte{0, 0, 0, 255} {
		t.Errorf("Expected factor clamped to 0, got %v", got)
	}
}

func TestCacheValidity(t *testing.T) {
	first := testFrame(2, 2)
	c := New(first, DefaultFactor)
	if !c.Valid(first) {
		t.Error("Expected cache valid for its own frame")
	}
	second := testFrame(2, 2)
	if c.Valid(second) {
		t.Error("Expected cache invalid for a newer frame")
	}
	var nilCache *Cache
	if nilCache.Valid(first) {
		t.Error("Expected nil cache to be invalid")
	}
}

func TestComposite(t *testing.T) {
	frame := testFrame(4, 3)
	c := New(frame, DefaultFactor)
	dimWord := pixel.PackBGRA(120, 60, 30, 255)
	srcWord := pixel.PackBGRA(200, 100, 50, 255)

	dst := make([]uint32, 4*3)
	c.Composite(dst, 4, 3, pixel.Rect{}, false)
	for i, w := range dst {
		if w != dimWord {
			t.Fatalf("word %d: expected dim %#x, got %#x", i, dimWord, w)
		}
	}

	sel := pixel.Rect{X: 1, Y: 1, Width: 2, Height: 1}
	c.Composite(dst, 4, 3, sel, true)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := dimWord
			if x >= 1 && x < 3 && y == 1 {
				want = srcWord
			}
			if got := dst[y*4+x]; got != want {
				t.Errorf("(%d,%d): expected %#x, got %#x", x, y, want, got)
			}
		}
	}
}

func TestCompositeClipsToSurface(t *testing.T) {
	frame := testFrame(4, 4)
	c := New(frame, DefaultFactor)

	// Wider surface than frame: columns beyond the frame stay untouched.
	dst := make([]uint32, 6*2)
	c.Composite(dst, 6, 2, pixel.Rect{X: 3, Y: 0, Width: 10, Height: 10}, true)
	if dst[4] != 0 || dst[5] != 0 {
		t.Error("Expected columns outside the frame untouched")
	}
	if dst[3] != pixel.PackBGRA(200, 100, 50, 255) {
		t.Errorf("Expected clamped selection to show source, got %#x", dst[3])
	}
}

func TestCompositeDoesNotAllocate(t *testing.T) {
	frame := testFrame(64, 64)
	c := New(frame, DefaultFactor)
	dst := make([]uint32, 64*64)
	sel := pixel.Rect{X: 10, Y: 10, Width: 20, Height: 20}
	allocs := testing.AllocsPerRun(10, func() {
		c.Composite(dst, 64, 64, sel, true)
	})
	if allocs != 0 {
		t.Errorf("Expected zero allocations, got %v", allocs)
	}
}
