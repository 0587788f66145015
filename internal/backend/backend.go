// Package backend converts single files between PNG and DDS.
//
// A Backend is one conversion implementation. The Selector holds an ordered
// chain of backends per Direction and walks it until one succeeds, so the most
// capable library is tried first and the built-in uncompressed codec last.
package backend

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
)

// Direction is the conversion a job performs.
type Direction int

const (
	PNGToDDS Direction = iota + 1
	DDSToPNG
)

func (d Direction) String() string {
	switch d {
	case PNGToDDS:
		return "png_to_dds"
	case DDSToPNG:
		return "dds_to_png"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// SourceExt is the file extension a job in this direction reads.
func (d Direction) SourceExt() string {
	if d == DDSToPNG {
		return ".dds"
	}
	return ".png"
}

// TargetExt is the file extension a job in this direction writes.
func (d Direction) TargetExt() string {
	if d == DDSToPNG {
		return ".png"
	}
	return ".dds"
}

// Backend converts src to dst for the directions it supports. A backend must
// not leave a partial file at dst when it fails.
type Backend interface {
	Name() string
	Supports(d Direction) bool
	Convert(ctx context.Context, d Direction, src, dst string) error
}

var (
	// ErrNoBackend is returned when a direction has no usable backend.
	ErrNoBackend = errors.New("no backend available")
	// ErrUnknownBackend is returned for a backend name that is not registered.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrUnsupported is returned by a backend that cannot handle a particular file.
	ErrUnsupported = errors.New("unsupported by backend")
)

// Error is the failure of the last backend in an exhausted chain.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options tune the backends built by New.
type Options struct {
	// PNGCompression is used for every PNG written.
	PNGCompression png.CompressionLevel
	// DecodeWorkers is passed to the BCn decoder; 0 uses its default.
	DecodeWorkers int
	Logger        *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
