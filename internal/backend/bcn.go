package backend

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/bcn"

	"github.com/erinpentecost/ddsconvert/internal/fileutil"
)

// BCn is the full-capability backend: it reads block-compressed and
// uncompressed DDS surfaces (including DX10 headers) and writes BGRA8 DDS.
type BCn struct {
	opts Options
}

func NewBCn(opts Options) *BCn {
	return &BCn{opts: opts}
}

func (b *BCn) Name() string { return NameBCn }

func (b *BCn) Supports(d Direction) bool { return d == PNGToDDS || d == DDSToPNG }

func (b *BCn) Convert(ctx context.Context, d Direction, src, dst string) error {
	switch d {
	case PNGToDDS:
		return b.encode(src, dst)
	case DDSToPNG:
		return b.decode(src, dst)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, d)
	}
}

func (b *BCn) decode(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	r := bytes.NewReader(raw)

	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		return fmt.Errorf("read dds header: %w", err)
	}
	dx10, err := bcn.ReadDDSHeaderDX10(r, header)
	if err != nil {
		return fmt.Errorf("read dx10 header: %w", err)
	}

	surf, err := lookupSurface(header, dx10)
	if err != nil {
		return err
	}
	width, height := int(header.Width), int(header.Height)
	size := surf.payloadSize(width, height)

	offset := 4 + int(bcn.DDSHeaderSize)
	if dx10 != nil {
		offset += dx10HeaderSize
	}
	if len(raw)-offset < size {
		return fmt.Errorf("read %s payload: %w", surf.name, io.ErrUnexpectedEOF)
	}
	data := raw[offset : offset+size]

	var decOpts *bcn.DecodeOptions
	if b.opts.DecodeWorkers > 0 {
		decOpts = &bcn.DecodeOptions{Workers: b.opts.DecodeWorkers}
	}
	img, err := bcn.DecodeImageWithOptions(data, width, height, surf.format, decOpts)
	if err != nil {
		return fmt.Errorf("decode %s: %w", surf.name, err)
	}
	return writePNG(dst, img, b.opts.PNGCompression)
}

func (b *BCn) encode(src, dst string) error {
	img, _, err := readImage(src)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("%w: empty image", ErrUnsupported)
	}

	data, _, _, err := bcn.EncodeImageWithOptions(img, bcn.FormatBGRA8, nil)
	if err != nil {
		return fmt.Errorf("encode BGRA8: %w", err)
	}

	var buf bytes.Buffer
	if err := bcn.WriteDDSMagic(&buf); err != nil {
		return fmt.Errorf("write dds magic: %w", err)
	}
	if err := bcn.WriteDDSHeader(&buf, bgra8Header(uint32(bounds.Dx()), uint32(bounds.Dy()))); err != nil {
		return fmt.Errorf("write dds header: %w", err)
	}
	buf.Write(data)

	return fileutil.WriteFile(dst, buf.Bytes())
}

// dx10HeaderSize is the size of the DX10 extension header.
const dx10HeaderSize = 20

func bgra8Header(width, height uint32) *bcn.DDSHeader {
	hdr := &bcn.DDSHeader{
		Size:              bcn.DDSHeaderSize,
		Flags:             uint32(bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat | bcn.DDSFlagPitch),
		Height:            height,
		Width:             width,
		PitchOrLinearSize: width * 4,
		Depth:             1,
		MipMapCount:       1,
		Caps:              uint32(bcn.DDSCapsTexture),
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize
	hdr.PixelFormat.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
	hdr.PixelFormat.RGBBitCount = 32
	hdr.PixelFormat.RBitMask = 0x00ff0000
	hdr.PixelFormat.GBitMask = 0x0000ff00
	hdr.PixelFormat.BBitMask = 0x000000ff
	hdr.PixelFormat.ABitMask = 0xff000000
	return hdr
}

// surface is a payload layout this backend hands to bcn. blockBytes is the
// size of one 4x4 block; zero means plain 32-bit pixels.
type surface struct {
	name       string
	format     bcn.Format
	blockBytes int
}

func (s surface) payloadSize(width, height int) int {
	if s.blockBytes == 0 {
		return width * height * 4
	}
	return ((width + 3) / 4) * ((height + 3) / 4) * s.blockBytes
}

var (
	surfaceDXT1  = surface{"DXT1", bcn.FormatDXT1, 8}
	surfaceDXT3  = surface{"DXT3", bcn.FormatDXT3, 16}
	surfaceDXT5  = surface{"DXT5", bcn.FormatDXT5, 16}
	surfaceBC4   = surface{"BC4", bcn.FormatBC4, 8}
	surfaceBC5   = surface{"BC5", bcn.FormatBC5, 16}
	surfaceRGBA8 = surface{"RGBA8", bcn.FormatRGBA8, 0}
	surfaceBGRA8 = surface{"BGRA8", bcn.FormatBGRA8, 0}
)

var fourCCSurfaces = map[[4]byte]surface{
	{'D', 'X', 'T', '1'}: surfaceDXT1,
	{'D', 'X', 'T', '3'}: surfaceDXT3,
	{'D', 'X', 'T', '5'}: surfaceDXT5,
	{'A', 'T', 'I', '1'}: surfaceBC4,
	{'B', 'C', '4', 'U'}: surfaceBC4,
	{'A', 'T', 'I', '2'}: surfaceBC5,
	{'B', 'C', '5', 'U'}: surfaceBC5,
}

// DXGI_FORMAT values of the UNORM variants.
var dxgiSurfaces = map[uint32]surface{
	71: surfaceDXT1,
	74: surfaceDXT3,
	77: surfaceDXT5,
	80: surfaceBC4,
	83: surfaceBC5,
	28: surfaceRGBA8,
	87: surfaceBGRA8,
}

func lookupSurface(header *bcn.DDSHeader, dx10 *bcn.DDSHeaderDX10) (surface, error) {
	if dx10 != nil {
		if s, ok := dxgiSurfaces[dx10.DXGIFormat]; ok {
			return s, nil
		}
		return surface{}, fmt.Errorf("%w: DXGI format %d", ErrUnsupported, dx10.DXGIFormat)
	}

	pf := header.PixelFormat
	if pf.Flags&bcn.DDSPFFourCC != 0 {
		var code [4]byte
		binary.LittleEndian.PutUint32(code[:], pf.FourCC)
		if s, ok := fourCCSurfaces[code]; ok {
			return s, nil
		}
		return surface{}, fmt.Errorf("%w: fourCC %q", ErrUnsupported, code[:])
	}

	if pf.Flags&bcn.DDSPFRGB != 0 && pf.RGBBitCount == 32 && pf.ABitMask == 0xff000000 && pf.GBitMask == 0x0000ff00 {
		switch {
		case pf.RBitMask == 0x000000ff && pf.BBitMask == 0x00ff0000:
			return surfaceRGBA8, nil
		case pf.RBitMask == 0x00ff0000 && pf.BBitMask == 0x000000ff:
			return surfaceBGRA8, nil
		}
	}
	return surface{}, fmt.Errorf("%w: flags %#x, %d bits", ErrUnsupported, pf.Flags, pf.RGBBitCount)
}
