package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

var (
	ErrEncode = errors.New("png encode failed")
	ErrDecode = errors.New("png decode failed")
)

// EncodePNG encodes b as PNG. BGRA-tagged buffers are converted back to RGBA first.
func EncodePNG(b *Buffer) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrEncode)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrEncode)
	}
	// Pixels are straight alpha, so hand the encoder an NRGBA view.
	rgba := b.ToRGBA()
	img := &image.NRGBA{Pix: rgba.Pix, Stride: rgba.Stride, Rect: rgba.Rect}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes PNG bytes into a non-premultiplied RGBA buffer.
func DecodePNG(data []byte) (*Buffer, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	switch m := img.(type) {
	case *image.NRGBA:
		return FromRGBA(&image.RGBA{Pix: m.Pix, Stride: m.Stride, Rect: m.Rect}), nil
	case *image.RGBA:
		return FromRGBA(m), nil
	}
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	return FromRGBA(&image.RGBA{Pix: nrgba.Pix, Stride: nrgba.Stride, Rect: nrgba.Rect}), nil
}
