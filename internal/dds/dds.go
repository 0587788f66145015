// Package dds reads and writes uncompressed DirectDraw Surface files.
//
// Only single-surface 24-bit and 32-bit RGB(A) payloads are handled here.
// Block-compressed (FourCC) surfaces are reported with ErrCompressed so a
// caller can hand them to a more capable backend.
package dds

import (
	"encoding/binary"
	"fmt"
)

const (
	Magic = "DDS "

	// headerSize is the size of the header body that follows the magic.
	headerSize = 124
	pfSize     = 32
	// FileHeaderSize is magic plus header body.
	FileHeaderSize = 4 + headerSize

	// DDSD flags
	DDSD_CAPS        = 0x1
	DDSD_HEIGHT      = 0x2
	DDSD_WIDTH       = 0x4
	DDSD_PITCH       = 0x8
	DDSD_PIXELFORMAT = 0x1000
	DDSD_MIPMAPCOUNT = 0x20000
	DDSD_LINEARSIZE  = 0x80000

	// Pixel format flags
	DDPF_ALPHAPIXELS = 0x1
	DDPF_FOURCC      = 0x4
	DDPF_RGB         = 0x40

	// Caps
	DDSCAPS_TEXTURE = 0x1000

	// Masks written by the encoder: B,G,R,A byte order on disk.
	RMaskBGRA = 0x00FF0000
	GMaskBGRA = 0x0000FF00
	BMaskBGRA = 0x000000FF
	AMaskBGRA = 0xFF000000
)

// Offsets inside the 124-byte header body.
const (
	offSize        = 0
	offFlags       = 4
	offHeight      = 8
	offWidth       = 12
	offPitch       = 16
	offDepth       = 20
	offMipMapCount = 24
	offReserved1   = 28
	offPixelFormat = 72
	offPFFlags     = 76
	offFourCC      = 80
	offBitCount    = 84
	offRMask       = 88
	offGMask       = 92
	offBMask       = 96
	offAMask       = 100
	offCaps        = 104
	offCaps2       = 108
	offCaps3       = 112
	offCaps4       = 116
	offReserved2   = 120
)

type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// Header is the 124-byte DDS_HEADER that follows the magic.
type Header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       PixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// Kind classifies a surface by its pixel-format flags.
type Kind int

const (
	KindUnsupported Kind = iota
	KindCompressed
	KindUncompressed
)

func (k Kind) String() string {
	switch k {
	case KindCompressed:
		return "compressed"
	case KindUncompressed:
		return "uncompressed"
	default:
		return "unsupported"
	}
}

// ParseHeader parses magic plus header body from the start of b.
// Bytes past the first 128 are ignored.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) >= 4 && string(b[:4]) != Magic {
		return nil, ErrBadMagic
	}
	if len(b) < FileHeaderSize {
		return nil, fmt.Errorf("%w: %d < %d bytes", ErrTruncatedHeader, len(b), FileHeaderSize)
	}

	hdr := b[4:FileHeaderSize]
	get := func(off int) uint32 {
		return binary.LittleEndian.Uint32(hdr[off:])
	}

	h := &Header{
		Size:              get(offSize),
		Flags:             get(offFlags),
		Height:            get(offHeight),
		Width:             get(offWidth),
		PitchOrLinearSize: get(offPitch),
		Depth:             get(offDepth),
		MipMapCount:       get(offMipMapCount),
		PixelFormat: PixelFormat{
			Size:        get(offPixelFormat),
			Flags:       get(offPFFlags),
			RGBBitCount: get(offBitCount),
			RBitMask:    get(offRMask),
			GBitMask:    get(offGMask),
			BBitMask:    get(offBMask),
			ABitMask:    get(offAMask),
		},
		Caps:      get(offCaps),
		Caps2:     get(offCaps2),
		Caps3:     get(offCaps3),
		Caps4:     get(offCaps4),
		Reserved2: get(offReserved2),
	}
	copy(h.PixelFormat.FourCC[:], hdr[offFourCC:offFourCC+4])
	for i := range h.Reserved1 {
		h.Reserved1[i] = get(offReserved1 + 4*i)
	}

	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, h.Width, h.Height)
	}
	return h, nil
}

// MarshalBinary returns magic plus header body.
func (h *Header) MarshalBinary() ([]byte, error) {
	out := make([]byte, FileHeaderSize)
	copy(out, Magic)
	hdr := out[4:]
	put := func(off int, v uint32) {
		binary.LittleEndian.PutUint32(hdr[off:], v)
	}

	put(offSize, h.Size)
	put(offFlags, h.Flags)
	put(offHeight, h.Height)
	put(offWidth, h.Width)
	put(offPitch, h.PitchOrLinearSize)
	put(offDepth, h.Depth)
	put(offMipMapCount, h.MipMapCount)
	for i, v := range h.Reserved1 {
		put(offReserved1+4*i, v)
	}

	// PixelFormat section
	pf := h.PixelFormat
	put(offPixelFormat, pf.Size)
	put(offPFFlags, pf.Flags)
	copy(hdr[offFourCC:], pf.FourCC[:])
	put(offBitCount, pf.RGBBitCount)
	put(offRMask, pf.RBitMask)
	put(offGMask, pf.GBitMask)
	put(offBMask, pf.BBitMask)
	put(offAMask, pf.ABitMask)

	put(offCaps, h.Caps)
	put(offCaps2, h.Caps2)
	put(offCaps3, h.Caps3)
	put(offCaps4, h.Caps4)
	put(offReserved2, h.Reserved2)
	return out, nil
}

// NewHeader describes a single uncompressed 32-bit BGRA surface.
func NewHeader(width, height uint32) *Header {
	return &Header{
		Size:              headerSize,
		Flags:             DDSD_CAPS | DDSD_HEIGHT | DDSD_WIDTH | DDSD_PIXELFORMAT | DDSD_PITCH,
		Height:            height,
		Width:             width,
		PitchOrLinearSize: width * 4,
		Depth:             1,
		MipMapCount:       1,
		PixelFormat: PixelFormat{
			Size:        pfSize,
			Flags:       DDPF_RGB | DDPF_ALPHAPIXELS,
			RGBBitCount: 32,
			RBitMask:    RMaskBGRA,
			GBitMask:    GMaskBGRA,
			BBitMask:    BMaskBGRA,
			ABitMask:    AMaskBGRA,
		},
		Caps: DDSCAPS_TEXTURE,
	}
}

// BuildHeader returns the 128 header bytes the encoder writes for a
// width x height surface.
func BuildHeader(width, height uint32) [FileHeaderSize]byte {
	var out [FileHeaderSize]byte
	b, _ := NewHeader(width, height).MarshalBinary()
	copy(out[:], b)
	return out
}

// Kind reports whether the surface is FourCC-compressed, uncompressed RGB(A),
// or something else. FourCC wins when both flags are set.
func (h *Header) Kind() Kind {
	switch flags := h.PixelFormat.Flags; {
	case flags&DDPF_FOURCC != 0:
		return KindCompressed
	case flags&DDPF_RGB != 0:
		return KindUncompressed
	default:
		return KindUnsupported
	}
}

// FourCCString returns the raw four-character code.
func (h *Header) FourCCString() string {
	return string(h.PixelFormat.FourCC[:])
}
