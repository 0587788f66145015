package backend

import (
	"context"
	"fmt"

	"github.com/erinpentecost/ddsconvert/internal/dds"
)

// Builtin uses the package's own uncompressed DDS codec. It is the last
// resort in both directions.
type Builtin struct {
	opts Options
}

func NewBuiltin(opts Options) *Builtin {
	return &Builtin{opts: opts}
}

func (b *Builtin) Name() string { return NameBuiltin }

func (b *Builtin) Supports(d Direction) bool { return d == PNGToDDS || d == DDSToPNG }

func (b *Builtin) Convert(ctx context.Context, d Direction, src, dst string) error {
	switch d {
	case PNGToDDS:
		img, _, err := readImage(src)
		if err != nil {
			return err
		}
		return dds.WriteFile(dds.FromImage(img), dst)
	case DDSToPNG:
		m, h, err := dds.ReadFile(src)
		if err != nil {
			return err
		}
		if _, exact := h.ChannelOrder(); !exact {
			pf := h.PixelFormat
			b.opts.logger().WarnContext(ctx, "channel masks are not whole bytes, keeping stored byte order",
				"src", src,
				"r_mask", fmt.Sprintf("%#08x", pf.RBitMask),
				"g_mask", fmt.Sprintf("%#08x", pf.GBitMask),
				"b_mask", fmt.Sprintf("%#08x", pf.BBitMask),
				"a_mask", fmt.Sprintf("%#08x", pf.ABitMask))
		}
		return writePNG(dst, m.NRGBA(), b.opts.PNGCompression)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, d)
	}
}
