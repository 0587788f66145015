package backend

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/erinpentecost/ddsconvert/internal/fileutil"

	// Decoders available to image.Decode; sniffing picks by magic, not extension.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// readImage decodes any registered raster format from path.
func readImage(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %q: %w", path, err)
	}
	return img, format, nil
}

func writePNG(path string, img image.Image, level png.CompressionLevel) error {
	enc := &png.Encoder{CompressionLevel: level}
	err := fileutil.WriteWith(path, func(w io.Writer) error {
		return enc.Encode(w, img)
	})
	if err != nil {
		return fmt.Errorf("write png %q: %w", path, err)
	}
	return nil
}
