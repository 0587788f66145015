package dds

// Encode returns a complete DDS file (header and payload) for m as an
// uncompressed 32-bit BGRA surface.
func Encode(m *Image) ([]byte, error) {
	payload, err := EncodePixels(m)
	if err != nil {
		return nil, err
	}
	header := BuildHeader(uint32(m.Width), uint32(m.Height))

	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header[:]...)
	out = append(out, payload...)
	return out, nil
}

// EncodePixels writes m as B,G,R,A bytes per pixel, rows packed with no
// padding. RGB images gain an opaque alpha channel.
func EncodePixels(m *Image) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if _, err := payloadSize(uint32(m.Width), uint32(m.Height), 4); err != nil {
		return nil, err
	}

	src := m.RGBA()
	out := make([]byte, len(src.Pix))
	for i := 0; i < len(src.Pix); i += 4 {
		out[i+0] = src.Pix[i+2]
		out[i+1] = src.Pix[i+1]
		out[i+2] = src.Pix[i+0]
		out[i+3] = src.Pix[i+3]
	}
	return out, nil
}
