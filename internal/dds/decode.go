package dds

import (
	"fmt"
)

const maxPayload = int(^uint32(0) >> 1)

// Decode parses a whole DDS file held in memory.
func Decode(data []byte) (*Image, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	return DecodePixels(data[FileHeaderSize:], h)
}

// DecodePixels interprets raw as the uncompressed payload described by h.
//
// A short payload is zero-padded to the expected size; bytes past it (mip
// levels and the like) are ignored. 32-bit surfaces decode to 4 channels and
// 24-bit surfaces to 3.
func DecodePixels(raw []byte, h *Header) (*Image, error) {
	pf := h.PixelFormat
	switch h.Kind() {
	case KindCompressed:
		return nil, &FormatError{Kind: ErrCompressed, FourCC: h.FourCCString(), Flags: pf.Flags}
	case KindUnsupported:
		return nil, &FormatError{Kind: ErrUnsupportedFormat, Flags: pf.Flags}
	}
	if pf.RGBBitCount != 24 && pf.RGBBitCount != 32 {
		return nil, &FormatError{Kind: ErrUnsupportedBitDepth, Flags: pf.Flags, BitCount: pf.RGBBitCount}
	}

	bytesPerPixel := int(pf.RGBBitCount / 8)
	expected, err := payloadSize(h.Width, h.Height, bytesPerPixel)
	if err != nil {
		return nil, err
	}

	if len(raw) < expected {
		padded := make([]byte, expected)
		copy(padded, raw)
		raw = padded
	}
	raw = raw[:expected]

	order, _ := h.ChannelOrder()
	out := &Image{
		Width:    int(h.Width),
		Height:   int(h.Height),
		Channels: bytesPerPixel,
		Pix:      make([]byte, expected),
	}
	for i := 0; i < expected; i += bytesPerPixel {
		px := raw[i : i+bytesPerPixel]
		for c, src := range order {
			out.Pix[i+c] = px[src]
		}
	}
	return out, nil
}

// ChannelOrder maps each output channel (R,G,B[,A]) to the byte of a stored
// pixel that holds it, derived from the bit masks. exact is false when the
// masks are not distinct whole bytes; the order is then the identity and the
// bytes pass through as stored.
//
// A 32-bit surface without an alpha mask keeps its spare byte as alpha.
func (h *Header) ChannelOrder() (order []int, exact bool) {
	pf := h.PixelFormat
	bytesPerPixel := int(pf.RGBBitCount / 8)
	if bytesPerPixel != 3 && bytesPerPixel != 4 {
		return nil, false
	}

	identity := make([]int, bytesPerPixel)
	for i := range identity {
		identity[i] = i
	}

	masks := []uint32{pf.RBitMask, pf.GBitMask, pf.BBitMask}
	if bytesPerPixel == 4 {
		masks = append(masks, pf.ABitMask)
	}

	order = make([]int, bytesPerPixel)
	used := make([]bool, bytesPerPixel)
	spare := -1
	for c, mask := range masks {
		if c == 3 && mask == 0 {
			spare = c
			continue
		}
		idx, ok := maskByte(mask, bytesPerPixel)
		if !ok || used[idx] {
			return identity, false
		}
		used[idx] = true
		order[c] = idx
	}
	if spare >= 0 {
		for i, u := range used {
			if !u {
				order[spare] = i
			}
		}
	}
	return order, true
}

// maskByte returns the byte index selected by a mask covering exactly one
// whole byte of a little-endian pixel.
func maskByte(mask uint32, bytesPerPixel int) (int, bool) {
	for i := 0; i < bytesPerPixel; i++ {
		if mask == 0xFF<<(8*i) {
			return i, true
		}
	}
	return 0, false
}

func payloadSize(width, height uint32, bytesPerPixel int) (int, error) {
	n := uint64(width) * uint64(height) * uint64(bytesPerPixel)
	if n > uint64(maxPayload) {
		return 0, fmt.Errorf("%w: %dx%d at %d bytes per pixel", ErrSizeOverflow, width, height, bytesPerPixel)
	}
	return int(n), nil
}
