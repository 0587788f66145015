package batch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks a file rejected before any backend ran.
	ErrValidation           = errors.New("validation failed")
	ErrUnsupportedExtension = errors.New("unsupported format")
	ErrExtensionMismatch    = errors.New("extension does not match mode")

	// ErrPrepare means the batch could not start; no file was attempted.
	ErrPrepare     = errors.New("prepare batch")
	ErrBatchLocked = fmt.Errorf("%w: output directory is in use by another batch", ErrPrepare)
)

// ValidationError reports a file whose extension the batch mode cannot
// handle. It matches both ErrValidation and its Kind.
type ValidationError struct {
	Kind error
	Ext  string
	// Want is the expected extension for a mismatch.
	Want string
}

func (e *ValidationError) Error() string {
	if e.Kind == ErrExtensionMismatch {
		return fmt.Sprintf("Expected %s file, got %s", extName(e.Want), extLabel(e.Ext))
	}
	return fmt.Sprintf("Unsupported format: %s", extLabel(e.Ext))
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Kind} }

func extName(ext string) string {
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

func extLabel(ext string) string {
	if ext == "" {
		return "no extension"
	}
	return ext
}
