package dds

import (
	"fmt"
	"os"

	"github.com/erinpentecost/ddsconvert/internal/fileutil"
)

// ReadFile reads and decodes an uncompressed DDS file. The parsed header is
// returned alongside the image, and also when only the payload was rejected.
func ReadFile(path string) (*Image, *Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	h, err := ParseHeader(data)
	if err != nil {
		return nil, nil, err
	}
	m, err := DecodePixels(data[FileHeaderSize:], h)
	if err != nil {
		return nil, h, err
	}
	return m, h, nil
}

// WriteFile encodes m and writes it to path. The file is written only after
// the whole buffer is assembled, and atomically, so a failure leaves nothing
// behind.
func WriteFile(m *Image, path string) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
