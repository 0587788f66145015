package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"
	"go.coder.com/cli"
	"golang.org/x/sync/errgroup"

	"github.com/erinpentecost/ddsconvert/internal/dds"
)

type infoCmd struct{}

func (c *infoCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "info",
		Usage: "<file.dds>...",
		Desc:  "Print the header fields of DDS files.",
	}
}

func (c *infoCmd) Run(fl *pflag.FlagSet) {
	if fl.NArg() == 0 {
		fl.Usage()
		os.Exit(2)
	}
	if failed := runInfo(fl.Args(), os.Stdout); failed > 0 {
		os.Exit(1)
	}
}

type headerInfo struct {
	path     string
	fileSize int64
	header   *dds.Header
	err      error
}

// runInfo prints one table row per file, in argument order, and returns
// how many files could not be read.
func runInfo(paths []string, w io.Writer) int {
	infos := make([]headerInfo, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			infos[i] = readHeaderInfo(path)
			return nil
		})
	}
	_ = g.Wait()

	tw := newTable(table.Row{"File", "Size", "Dimensions", "Format", "Mips", "Masks R/G/B/A", "Payload"}, 2, 3, 5, 7)
	failed := 0
	for _, in := range infos {
		if in.err != nil {
			failed++
			tw.AppendRow(table.Row{in.path, "", "", in.err.Error(), "", "", ""})
			continue
		}
		h := in.header
		tw.AppendRow(table.Row{
			in.path,
			humanize.IBytes(uint64(in.fileSize)),
			fmt.Sprintf("%dx%d", h.Width, h.Height),
			describeFormat(h),
			h.MipMapCount,
			describeMasks(h),
			humanize.IBytes(uint64(max(in.fileSize-dds.FileHeaderSize, 0))),
		})
	}
	fmt.Fprintln(w, tw.Render())
	return failed
}

func readHeaderInfo(path string) headerInfo {
	in := headerInfo{path: path}
	f, err := os.Open(path)
	if err != nil {
		in.err = err
		return in
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		in.err = err
		return in
	}
	in.fileSize = st.Size()

	buf := make([]byte, dds.FileHeaderSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		in.err = err
		return in
	}
	in.header, in.err = dds.ParseHeader(buf[:n])
	return in
}

func describeFormat(h *dds.Header) string {
	switch h.Kind() {
	case dds.KindCompressed:
		return fmt.Sprintf("compressed %s", h.FourCCString())
	case dds.KindUncompressed:
		return fmt.Sprintf("%d-bit %s", h.PixelFormat.RGBBitCount, storageLayout(h))
	default:
		return fmt.Sprintf("unsupported (flags %#x)", h.PixelFormat.Flags)
	}
}

// storageLayout names the stored byte order, e.g. BGRA, or "custom" when
// the masks are not whole bytes.
func storageLayout(h *dds.Header) string {
	order, exact := h.ChannelOrder()
	if !exact {
		return "custom"
	}
	letters := make([]byte, len(order))
	for c, idx := range order {
		letters[idx] = "RGBA"[c]
	}
	if len(order) == 4 && h.PixelFormat.ABitMask == 0 {
		letters[order[3]] = 'X'
	}
	return string(letters)
}

func describeMasks(h *dds.Header) string {
	pf := h.PixelFormat
	if h.Kind() != dds.KindUncompressed {
		return "-"
	}
	return fmt.Sprintf("%08x/%08x/%08x/%08x", pf.RBitMask, pf.GBitMask, pf.BBitMask, pf.ABitMask)
}
