package config

import "github.com/erinpentecost/ddsconvert/internal/backend"

const (
	defaultMode            = "auto"
	defaultOutputDir       = "converted"
	defaultTimestampFormat = "2006-01-02_15-04-05"
	defaultCompression     = "default"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	chains := backend.DefaultChains()
	return Config{
		Mode:            defaultMode,
		OutputDir:       defaultOutputDir,
		TimestampFormat: defaultTimestampFormat,
		Recursive:       true,
		Backends: Backends{
			PNGToDDS: chains[backend.PNGToDDS],
			DDSToPNG: chains[backend.DDSToPNG],
		},
		PNG: PNG{Compression: defaultCompression},
		Log: Logging{Level: defaultLogLevel, Format: defaultLogFormat},
	}
}
