package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erinpentecost/ddsconvert/internal/backend"
	"github.com/erinpentecost/ddsconvert/internal/batch"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, err := batch.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output_dir must be set")
	}
	if err := c.validateTimestamp(); err != nil {
		return err
	}
	if err := c.validateBackends(); err != nil {
		return err
	}
	if _, ok := compressionLevels[c.PNG.Compression]; !ok {
		return fmt.Errorf("png.compression must be one of default, none, fast, best (got %q)", c.PNG.Compression)
	}
	if c.DecodeWorkers < 0 {
		return errors.New("decode_workers must be >= 0")
	}
	return c.validateLogging()
}

func (c *Config) validateTimestamp() error {
	if c.TimestampFormat == "" {
		return errors.New("timestamp_format must be set")
	}
	ref := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	formatted := ref.Format(c.TimestampFormat)
	if formatted == c.TimestampFormat {
		return fmt.Errorf("timestamp_format %q contains no time fields", c.TimestampFormat)
	}
	if strings.ContainsAny(formatted, `/\`) {
		return fmt.Errorf("timestamp_format %q must not produce path separators", c.TimestampFormat)
	}
	return nil
}

func (c *Config) validateBackends() error {
	for d, names := range c.Chains() {
		if len(names) == 0 {
			return fmt.Errorf("backends.%s must list at least one backend", d)
		}
		for _, name := range names {
			b, err := backend.New(name, backend.Options{})
			if err != nil {
				return fmt.Errorf("backends.%s: %w (known: %s)", d, err, strings.Join(backend.Names(), ", "))
			}
			if !b.Supports(d) {
				return fmt.Errorf("backends.%s: %q cannot convert in this direction", d, name)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	return nil
}
