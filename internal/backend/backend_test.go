package backend

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/woozymasta/bcn"

	"github.com/erinpentecost/ddsconvert/internal/dds"
	"github.com/erinpentecost/ddsconvert/internal/logging"
)

func gradient(w, h int, alpha bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if alpha {
				a = uint8(40 + 50*x)
			}
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(60 * x), G: uint8(60 * y), B: uint8(10 + x + y), A: a})
		}
	}
	return img
}

func writePNGFixture(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func readPNGFixture(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func requireSamePixels(t *testing.T, want, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size())
	wb, gb := want.Bounds(), got.Bounds()
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			w := color.NRGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y))
			g := color.NRGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y))
			require.Equal(t, w, g, "pixel %d,%d", x, y)
		}
	}
}

// dxt1Fixture writes a 4x4 DXT1 surface whose single block is solid red.
func dxt1Fixture(t *testing.T, path string) {
	t.Helper()
	h := dds.NewHeader(4, 4)
	h.Flags = dds.DDSD_CAPS | dds.DDSD_HEIGHT | dds.DDSD_WIDTH | dds.DDSD_PIXELFORMAT | dds.DDSD_LINEARSIZE
	h.PitchOrLinearSize = 8
	h.PixelFormat.Flags = dds.DDPF_FOURCC
	h.PixelFormat.FourCC = [4]byte{'D', 'X', 'T', '1'}
	h.PixelFormat.RGBBitCount = 0
	h.PixelFormat.RBitMask, h.PixelFormat.GBitMask, h.PixelFormat.BBitMask, h.PixelFormat.ABitMask = 0, 0, 0, 0

	head, err := h.MarshalBinary()
	require.NoError(t, err)

	block := make([]byte, 8)
	binary.LittleEndian.PutUint16(block[0:], 0xF800)
	binary.LittleEndian.PutUint16(block[2:], 0x001F)
	require.NoError(t, os.WriteFile(path, append(head, block...), 0o644))
}

func TestBuiltinRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := gradient(4, 3, true)
	pngIn := filepath.Join(dir, "in.png")
	ddsOut := filepath.Join(dir, "out.dds")
	pngOut := filepath.Join(dir, "back.png")
	writePNGFixture(t, pngIn, src)

	b := NewBuiltin(Options{})
	require.NoError(t, b.Convert(context.Background(), PNGToDDS, pngIn, ddsOut))

	raw, err := os.ReadFile(ddsOut)
	require.NoError(t, err)
	require.Len(t, raw, dds.FileHeaderSize+4*3*4)
	require.Equal(t, dds.Magic, string(raw[:4]))

	require.NoError(t, b.Convert(context.Background(), DDSToPNG, ddsOut, pngOut))
	requireSamePixels(t, src, readPNGFixture(t, pngOut))
}

func TestBuiltinRejectsCompressed(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "block.dds")
	dst := filepath.Join(dir, "block.png")
	dxt1Fixture(t, src)

	err := NewBuiltin(Options{}).Convert(context.Background(), DDSToPNG, src, dst)
	require.ErrorIs(t, err, dds.ErrCompressed)
	require.NoFileExists(t, dst)
}

func TestBuiltinRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))

	err := NewBuiltin(Options{}).Convert(context.Background(), PNGToDDS, src, filepath.Join(dir, "notes.dds"))
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(dir, "notes.dds"))
}

func TestDXTDecodesBlock(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "block.dds")
	dst := filepath.Join(dir, "block.png")
	dxt1Fixture(t, src)

	require.NoError(t, NewDXT(Options{}).Convert(context.Background(), DDSToPNG, src, dst))

	img := readPNGFixture(t, dst)
	require.Equal(t, image.Pt(4, 4), img.Bounds().Size())
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			require.GreaterOrEqual(t, c.R, uint8(248))
			require.Zero(t, c.G)
			require.Zero(t, c.B)
			require.Equal(t, uint8(255), c.A)
		}
	}
}

func TestDXTRejectsUncompressed(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.dds")
	require.NoError(t, dds.WriteFile(dds.FromImage(gradient(2, 2, false)), src))

	err := NewDXT(Options{}).Convert(context.Background(), DDSToPNG, src, filepath.Join(dir, "plain.png"))
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestSelectorFallsBackToDXT(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "block.dds")
	dst := filepath.Join(dir, "block.png")
	dxt1Fixture(t, src)

	s := NewSelector(map[Direction][]Backend{
		DDSToPNG: {NewBuiltin(Options{}), NewDXT(Options{})},
	}, nil)
	require.NoError(t, s.Convert(context.Background(), DDSToPNG, src, dst))
	require.FileExists(t, dst)
}

func TestSelectorLastErrorFromBuiltin(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "block.dds")
	dxt1Fixture(t, src)

	s := NewSelector(map[Direction][]Backend{DDSToPNG: {NewStdImage(Options{}), NewBuiltin(Options{})}}, nil)
	err := s.Convert(context.Background(), DDSToPNG, src, filepath.Join(dir, "block.png"))

	var be *Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, NameBuiltin, be.Backend)
	require.ErrorIs(t, err, dds.ErrCompressed)
}

func TestSelectorPanicFallsBackToBuiltin(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.dds")
	img := gradient(2, 2, true)
	writePNGFixture(t, src, img)

	var calls []string
	s := NewSelector(map[Direction][]Backend{
		PNGToDDS: {
			&fakeBackend{name: "crashy", directions: []Direction{PNGToDDS}, panicWith: "boom", calls: &calls},
			NewBuiltin(Options{}),
		},
	}, nil)
	require.NoError(t, s.Convert(context.Background(), PNGToDDS, src, dst))
	require.Equal(t, []string{"crashy"}, calls)

	got, _, err := dds.ReadFile(dst)
	require.NoError(t, err)
	requireSamePixels(t, img, got.NRGBA())
}

func TestSelectorLogsBackendName(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var calls []string
	s := NewSelector(map[Direction][]Backend{
		DDSToPNG: {
			&fakeBackend{name: "first", directions: []Direction{DDSToPNG}, err: ErrUnsupported, calls: &calls},
			&fakeBackend{name: "second", directions: []Direction{DDSToPNG}, calls: &calls},
		},
	}, logger)
	require.NoError(t, s.Convert(context.Background(), DDSToPNG, "in.dds", "out.png"))

	require.Contains(t, logs.String(), logging.FieldBackend+"=first")
	require.Contains(t, logs.String(), logging.FieldBackend+"=second")
}

func TestBuiltinWarnsOnOddMasks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "odd.dds")
	dst := filepath.Join(dir, "odd.png")

	h := dds.NewHeader(1, 1)
	h.PixelFormat.RBitMask = 0x7C00
	h.PixelFormat.GBitMask = 0x03E0
	h.PixelFormat.BBitMask = 0x001F
	h.PixelFormat.ABitMask = 0x8000
	head, err := h.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, append(head, 1, 2, 3, 4), 0o644))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	require.NoError(t, NewBuiltin(Options{Logger: logger}).Convert(context.Background(), DDSToPNG, src, dst))

	require.Contains(t, logs.String(), "channel masks are not whole bytes")
	require.Contains(t, logs.String(), "r_mask=")
	c := color.NRGBAModel.Convert(readPNGFixture(t, dst).At(0, 0))
	require.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, c)
}

func TestStdImageSniffsContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "actually_png.dds")
	dst := filepath.Join(dir, "actually_png.png")
	img := gradient(3, 2, false)
	writePNGFixture(t, src, img)

	require.NoError(t, NewStdImage(Options{}).Convert(context.Background(), DDSToPNG, src, dst))
	requireSamePixels(t, img, readPNGFixture(t, dst))
}

func TestStdImageOnlyReads(t *testing.T) {
	b := NewStdImage(Options{})
	require.False(t, b.Supports(PNGToDDS))
	require.ErrorIs(t, b.Convert(context.Background(), PNGToDDS, "a.png", "a.dds"), ErrUnsupported)
}

func TestBCnWritesBGRA8(t *testing.T) {
	dir := t.TempDir()
	src := gradient(4, 4, false)
	pngIn := filepath.Join(dir, "in.png")
	ddsOut := filepath.Join(dir, "out.dds")
	writePNGFixture(t, pngIn, src)

	require.NoError(t, NewBCn(Options{}).Convert(context.Background(), PNGToDDS, pngIn, ddsOut))

	got, _, err := dds.ReadFile(ddsOut)
	require.NoError(t, err)
	requireSamePixels(t, src, got.NRGBA())
}

func TestBCnReadsBuiltinOutput(t *testing.T) {
	dir := t.TempDir()
	src := gradient(4, 4, false)
	ddsIn := filepath.Join(dir, "in.dds")
	pngOut := filepath.Join(dir, "out.png")
	require.NoError(t, dds.WriteFile(dds.FromImage(src), ddsIn))

	require.NoError(t, NewBCn(Options{DecodeWorkers: 2}).Convert(context.Background(), DDSToPNG, ddsIn, pngOut))
	requireSamePixels(t, src, readPNGFixture(t, pngOut))
}

func TestBCnRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "junk.dds")
	require.NoError(t, os.WriteFile(src, []byte("junk"), 0o644))

	err := NewBCn(Options{}).Convert(context.Background(), DDSToPNG, src, filepath.Join(dir, "junk.png"))
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(dir, "junk.png"))
}

func TestSurfacePayloadSize(t *testing.T) {
	tests := []struct {
		name string
		surf surface
		w, h int
		want int
	}{
		{name: "dxt1 partial blocks", surf: surfaceDXT1, w: 5, h: 5, want: 4 * 8},
		{name: "dxt5 one block", surf: surfaceDXT5, w: 4, h: 4, want: 16},
		{name: "bc5", surf: surfaceBC5, w: 8, h: 4, want: 32},
		{name: "bgra8", surf: surfaceBGRA8, w: 3, h: 2, want: 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.surf.payloadSize(tt.w, tt.h))
		})
	}
}

func TestLookupSurface(t *testing.T) {
	fourCC := func(s string) uint32 { return binary.LittleEndian.Uint32([]byte(s)) }

	dxt5 := &bcn.DDSHeader{}
	dxt5.PixelFormat.Flags = bcn.DDSPFFourCC
	dxt5.PixelFormat.FourCC = fourCC("DXT5")
	surf, err := lookupSurface(dxt5, nil)
	require.NoError(t, err)
	require.Equal(t, bcn.FormatDXT5, surf.format)
	require.Equal(t, "DXT5", surf.name)

	surf, err = lookupSurface(bgra8Header(2, 2), nil)
	require.NoError(t, err)
	require.Equal(t, bcn.FormatBGRA8, surf.format)

	surf, err = lookupSurface(dxt5, &bcn.DDSHeaderDX10{DXGIFormat: 71})
	require.NoError(t, err)
	require.Equal(t, bcn.FormatDXT1, surf.format)

	rgb24 := &bcn.DDSHeader{}
	rgb24.PixelFormat.Flags = bcn.DDSPFRGB
	rgb24.PixelFormat.RGBBitCount = 24
	_, err = lookupSurface(rgb24, nil)
	require.ErrorIs(t, err, ErrUnsupported)

	bc6 := &bcn.DDSHeader{}
	bc6.PixelFormat.Flags = bcn.DDSPFFourCC
	bc6.PixelFormat.FourCC = fourCC("DX10")
	_, err = lookupSurface(bc6, &bcn.DDSHeaderDX10{DXGIFormat: 95})
	require.ErrorContains(t, err, "DXGI format 95")

	dxt2 := &bcn.DDSHeader{}
	dxt2.PixelFormat.Flags = bcn.DDSPFFourCC
	dxt2.PixelFormat.FourCC = fourCC("DXT2")
	_, err = lookupSurface(dxt2, nil)
	require.ErrorContains(t, err, `fourCC "DXT2"`)
}
