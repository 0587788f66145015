package dds

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is the parent of every malformed-header error.
	ErrParse = errors.New("dds: malformed header")
	// ErrBadMagic indicates the first four bytes are not "DDS ".
	ErrBadMagic = fmt.Errorf("%w: missing magic %q", ErrParse, Magic)
	// ErrTruncatedHeader indicates fewer than 128 header bytes were available.
	ErrTruncatedHeader = fmt.Errorf("%w: truncated header", ErrParse)
	// ErrInvalidDimensions indicates a zero width or height.
	ErrInvalidDimensions = fmt.Errorf("%w: invalid dimensions", ErrParse)
	// ErrSizeOverflow indicates the surface is too large to hold in memory.
	ErrSizeOverflow = fmt.Errorf("%w: size overflow", ErrParse)

	// ErrCodec is the parent of every "this codec cannot handle the payload" error.
	ErrCodec = errors.New("dds: unsupported by built-in codec")
	// ErrCompressed indicates a FourCC (block-compressed) surface.
	ErrCompressed = fmt.Errorf("%w: compressed format", ErrCodec)
	// ErrUnsupportedFormat indicates neither FourCC nor RGB pixel-format flags.
	ErrUnsupportedFormat = fmt.Errorf("%w: pixel format", ErrCodec)
	// ErrUnsupportedBitDepth indicates an RGB bit count other than 24 or 32.
	ErrUnsupportedBitDepth = fmt.Errorf("%w: bit depth", ErrCodec)

	// ErrInvalidImage indicates a canonical image whose buffer does not match its size.
	ErrInvalidImage = errors.New("dds: invalid image")
)

// FormatError reports why the built-in codec refused a surface. Kind is one of
// ErrCompressed, ErrUnsupportedFormat or ErrUnsupportedBitDepth.
type FormatError struct {
	Kind     error
	FourCC   string
	Flags    uint32
	BitCount uint32
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case ErrCompressed:
		return fmt.Sprintf("dds: compressed format %q requires a block-compression backend", e.FourCC)
	case ErrUnsupportedBitDepth:
		return fmt.Sprintf("dds: unsupported bit count %d", e.BitCount)
	default:
		return fmt.Sprintf("dds: unsupported pixel format flags %#x", e.Flags)
	}
}

func (e *FormatError) Unwrap() error { return e.Kind }
