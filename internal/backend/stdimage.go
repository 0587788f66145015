package backend

import (
	"context"
	"fmt"
)

// StdImage opens the source with whatever decoder image.Decode recognizes
// from the file's magic bytes and saves it as PNG. It catches sources whose
// extension lies about their content.
type StdImage struct {
	opts Options
}

func NewStdImage(opts Options) *StdImage {
	return &StdImage{opts: opts}
}

func (b *StdImage) Name() string { return NameImage }

func (b *StdImage) Supports(d Direction) bool { return d == DDSToPNG }

func (b *StdImage) Convert(ctx context.Context, d Direction, src, dst string) error {
	if d != DDSToPNG {
		return fmt.Errorf("%w: %s", ErrUnsupported, d)
	}
	img, format, err := readImage(src)
	if err != nil {
		return err
	}
	b.opts.logger().DebugContext(ctx, "opened by sniffed format", "src", src, "format", format)
	return writePNG(dst, img, b.opts.PNGCompression)
}
