package config

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erinpentecost/ddsconvert/internal/backend"
)

// Backends lists backend names per direction, most capable first.
type Backends struct {
	PNGToDDS []string `yaml:"png_to_dds"`
	DDSToPNG []string `yaml:"dds_to_png"`
}

// PNG contains PNG writer settings.
type PNG struct {
	Compression string `yaml:"compression"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds every tunable of a conversion run.
type Config struct {
	Mode            string   `yaml:"mode"`
	OutputDir       string   `yaml:"output_dir"`
	TimestampFormat string   `yaml:"timestamp_format"`
	Recursive       bool     `yaml:"recursive"`
	DecodeWorkers   int      `yaml:"decode_workers"`
	Backends        Backends `yaml:"backends"`
	PNG             PNG      `yaml:"png"`
	Log             Logging  `yaml:"log"`
}

// Load reads the YAML file at path over the defaults, then normalizes and
// validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) normalize() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.PNG.Compression = strings.ToLower(strings.TrimSpace(c.PNG.Compression))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	out, err := expandPath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("output_dir: %w", err)
	}
	c.OutputDir = out

	for _, list := range [][]string{c.Backends.PNGToDDS, c.Backends.DDSToPNG} {
		for i := range list {
			list[i] = strings.ToLower(strings.TrimSpace(list[i]))
		}
	}
	return nil
}

// Chains returns the configured backend names keyed by direction.
func (c *Config) Chains() map[backend.Direction][]string {
	return map[backend.Direction][]string{
		backend.PNGToDDS: append([]string(nil), c.Backends.PNGToDDS...),
		backend.DDSToPNG: append([]string(nil), c.Backends.DDSToPNG...),
	}
}

// PNGCompression maps the configured name to an encoder level. Unknown names
// are rejected by Validate, so they fall back to the default here.
func (c *Config) PNGCompression() png.CompressionLevel {
	level, ok := compressionLevels[c.PNG.Compression]
	if !ok {
		return png.DefaultCompression
	}
	return level
}

// BackendOptions builds the options every backend is constructed with.
func (c *Config) BackendOptions(logger *slog.Logger) backend.Options {
	return backend.Options{
		PNGCompression: c.PNGCompression(),
		DecodeWorkers:  c.DecodeWorkers,
		Logger:         logger,
	}
}

var compressionLevels = map[string]png.CompressionLevel{
	"default": png.DefaultCompression,
	"none":    png.NoCompression,
	"fast":    png.BestSpeed,
	"best":    png.BestCompression,
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules to the CLI, which applies them
// to flag values.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
