package batch

import (
	"fmt"
	"strings"

	"github.com/erinpentecost/ddsconvert/internal/backend"
)

// Mode selects which direction a batch converts in.
type Mode int

const (
	PngToDds Mode = iota + 1
	DdsToPng
	// Auto picks the direction per file from its extension.
	Auto
)

func (m Mode) String() string {
	switch m {
	case PngToDds:
		return "png_to_dds"
	case DdsToPng:
		return "dds_to_png"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names printed by String, case-insensitively, with
// either '_' or '-' as separator.
func ParseMode(s string) (Mode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "png_to_dds":
		return PngToDds, nil
	case "dds_to_png":
		return DdsToPng, nil
	case "auto", "":
		return Auto, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want png_to_dds, dds_to_png or auto)", s)
	}
}

func (m Mode) valid() bool { return m >= PngToDds && m <= Auto }

// Directions lists the conversion directions a batch in this mode may use.
func (m Mode) Directions() []backend.Direction {
	switch m {
	case PngToDds:
		return []backend.Direction{backend.PNGToDDS}
	case DdsToPng:
		return []backend.Direction{backend.DDSToPNG}
	case Auto:
		return []backend.Direction{backend.PNGToDDS, backend.DDSToPNG}
	default:
		return nil
	}
}

// SourceExts lists the input extensions the mode accepts.
func (m Mode) SourceExts() []string {
	var exts []string
	for _, d := range m.Directions() {
		exts = append(exts, d.SourceExt())
	}
	return exts
}

// resolve picks the direction for one file. ext must already be lower case.
func (m Mode) resolve(ext string) (backend.Direction, error) {
	switch m {
	case Auto:
		switch ext {
		case backend.PNGToDDS.SourceExt():
			return backend.PNGToDDS, nil
		case backend.DDSToPNG.SourceExt():
			return backend.DDSToPNG, nil
		}
		return 0, &ValidationError{Kind: ErrUnsupportedExtension, Ext: ext}
	case PngToDds, DdsToPng:
		d := m.Directions()[0]
		if ext != d.SourceExt() {
			return 0, &ValidationError{Kind: ErrExtensionMismatch, Ext: ext, Want: d.SourceExt()}
		}
		return d, nil
	default:
		return 0, fmt.Errorf("invalid mode %s", m)
	}
}
