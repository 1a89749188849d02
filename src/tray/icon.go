package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 16

// iconImage draws a dashed selection frame with a solid pin in its corner.
func iconImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	frame := color.NRGBA{R: 0x3D, G: 0xA5, B: 0xF4, A: 0xFF}
	pin := color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}

	for i := 1; i < iconSize-1; i++ {
		if i%3 == 2 {
			continue
		}
		img.SetNRGBA(i, 1, frame)
		img.SetNRGBA(i, iconSize-2, frame)
		img.SetNRGBA(1, i, frame)
		img.SetNRGBA(iconSize-2, i, frame)
	}
	for y := 8; y < 13; y++ {
		for x := 8; x < 13; x++ {
			img.SetNRGBA(x, y, pin)
		}
	}
	return img
}

func iconPNG() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, iconImage()); err != nil {
		return nil
	}
	return buf.Bytes()
}

// wrapICO embeds a PNG in a single-entry ICO container, which the Windows
// tray requires.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1}) // reserved, type icon, count
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	_ = binary.Write(&buf, le, uint16(1))  // planes
	_ = binary.Write(&buf, le, uint16(32)) // bpp
	_ = binary.Write(&buf, le, uint32(len(pngData)))
	_ = binary.Write(&buf, le, uint32(6+16)) // data offset
	buf.Write(pngData)
	return buf.Bytes()
}

// Icon returns the tray icon in the format the current platform expects.
func Icon() []byte {
	data := iconPNG()
	if runtime.GOOS == "windows" {
		return wrapICO(data, iconSize)
	}
	return data
}
