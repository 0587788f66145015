package dds

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Image is the in-memory interchange form between decoders and encoders:
// row-major, top row first, Channels bytes per pixel in R,G,B[,A] order,
// no padding between rows. Alpha is straight, not premultiplied.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewImage allocates a zeroed 4-channel image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: 4,
		Pix:      make([]byte, width*height*4),
	}
}

// Validate checks that the buffer matches the dimensions.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil", ErrInvalidImage)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImage, m.Width, m.Height)
	}
	if m.Channels != 3 && m.Channels != 4 {
		return fmt.Errorf("%w: %d channels", ErrInvalidImage, m.Channels)
	}
	if want := m.Width * m.Height * m.Channels; len(m.Pix) != want {
		return fmt.Errorf("%w: %d pixel bytes, want %d", ErrInvalidImage, len(m.Pix), want)
	}
	return nil
}

// RGBA returns m with four channels, adding opaque alpha to RGB images.
// A 4-channel image is returned as is.
func (m *Image) RGBA() *Image {
	if m.Channels == 4 {
		return m
	}
	out := NewImage(m.Width, m.Height)
	for i, j := 0, 0; i < len(m.Pix); i, j = i+3, j+4 {
		out.Pix[j+0] = m.Pix[i+0]
		out.Pix[j+1] = m.Pix[i+1]
		out.Pix[j+2] = m.Pix[i+2]
		out.Pix[j+3] = 0xFF
	}
	return out
}

// NRGBA converts m to a standard library image.
func (m *Image) NRGBA() *image.NRGBA {
	src := m.RGBA()
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	copy(out.Pix, src.Pix)
	return out
}

// FromImage normalizes any image to 8-bit straight RGBA.
func FromImage(m image.Image) *Image {
	b := m.Bounds()
	out := NewImage(b.Dx(), b.Dy())

	if nrgba, ok := m.(*image.NRGBA); ok {
		row := 4 * out.Width
		for y := 0; y < out.Height; y++ {
			off := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*row:(y+1)*row], nrgba.Pix[off:off+row])
		}
		return out
	}

	dst := &image.NRGBA{
		Pix:    out.Pix,
		Stride: 4 * out.Width,
		Rect:   image.Rect(0, 0, out.Width, out.Height),
	}
	draw.Draw(dst, dst.Rect, m, b.Min, draw.Src)
	return out
}
