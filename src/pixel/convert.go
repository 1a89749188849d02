package pixel

// MaybeConvertBGRA swaps the red and blue channels of b in place when forced is true
// and toggles its Format tag. Otherwise b is returned untouched.
//
// The conversion is deliberately not idempotent: forcing twice restores the original
// byte order. There is no auto-detection; callers decide via the FORCE_BGRA toggle.
func MaybeConvertBGRA(b *Buffer, forced bool) *Buffer {
	if !forced || b == nil {
		return b
	}
	SwapRB(b.Pix)
	if b.Format == FormatBGRA {
		b.Format = FormatRGBA
	} else {
		b.Format = FormatBGRA
	}
	return b
}

// SwapRB exchanges bytes 0 and 2 of every 4-byte pixel.
func SwapRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += BytesPerPixel {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// PackBGRA packs one pixel into the word layout presentation surfaces expect:
// little-endian bytes [b, g, r, a].
func PackBGRA(r, g, b, a byte) uint32 {
	return uint32(b) | uint32(g)<<8 | uint32(r)<<16 | uint32(a)<<24
}

// UnpackBGRA is the inverse of PackBGRA.
func UnpackBGRA(w uint32) (r, g, b, a byte) {
	return byte(w >> 16), byte(w >> 8), byte(w), byte(w >> 24)
}

// PackedBGRAWords converts b into packed BGRA words, one per pixel.
// The bytes are always read as R,G,B,A regardless of b.Format; every surface
// upload goes through this conversion (or PackInto).
func PackedBGRAWords(b *Buffer) []uint32 {
	words := make([]uint32, b.Width*b.Height)
	PackInto(words, b.Pix)
	return words
}

// PackInto is the allocation-free form of PackedBGRAWords. It converts as many
// whole pixels as fit in both dst and pix.
func PackInto(dst []uint32, pix []byte) {
	n := min(len(dst), len(pix)/BytesPerPixel)
	for i := 0; i < n; i++ {
		p := pix[i*BytesPerPixel : i*BytesPerPixel+4 : i*BytesPerPixel+4]
		dst[i] = PackBGRA(p[0], p[1], p[2], p[3])
	}
}
