package backend

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/mauserzjeh/dxt"

	"github.com/erinpentecost/ddsconvert/internal/dds"
)

// DXT decodes DXT1, DXT3 and DXT5 surfaces. It only reads DDS.
type DXT struct {
	opts Options
}

func NewDXT(opts Options) *DXT {
	return &DXT{opts: opts}
}

func (b *DXT) Name() string { return NameDXT }

func (b *DXT) Supports(d Direction) bool { return d == DDSToPNG }

func (b *DXT) Convert(ctx context.Context, d Direction, src, dst string) error {
	if d != DDSToPNG {
		return fmt.Errorf("%w: %s", ErrUnsupported, d)
	}
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	h, err := dds.ParseHeader(raw)
	if err != nil {
		return err
	}
	if h.Kind() != dds.KindCompressed {
		return fmt.Errorf("%w: %s surface", ErrUnsupported, h.Kind())
	}

	data := raw[dds.FileHeaderSize:]
	width, height := uint(h.Width), uint(h.Height)

	var rgba []byte
	switch fourCC := h.FourCCString(); fourCC {
	case "DXT1":
		rgba, err = dxt.DecodeDXT1(data, width, height)
	case "DXT3":
		rgba, err = dxt.DecodeDXT3(data, width, height)
	case "DXT5":
		rgba, err = dxt.DecodeDXT5(data, width, height)
	default:
		return fmt.Errorf("%w: FourCC %q", ErrUnsupported, fourCC)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", h.FourCCString(), err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	if len(rgba) != len(img.Pix) {
		return fmt.Errorf("decoded %d bytes, want %d", len(rgba), len(img.Pix))
	}
	copy(img.Pix, rgba)
	return writePNG(dst, img, b.opts.PNGCompression)
}
