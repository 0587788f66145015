package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erinpentecost/ddsconvert/internal/logging"
)

// Selector runs a file through the backend chain for its direction.
type Selector struct {
	chains map[Direction][]Backend
	logger *slog.Logger
}

func NewSelector(chains map[Direction][]Backend, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	cp := make(map[Direction][]Backend, len(chains))
	for d, chain := range chains {
		cp[d] = append([]Backend(nil), chain...)
	}
	return &Selector{chains: cp, logger: logger}
}

// Chain returns the backends tried for d, in order.
func (s *Selector) Chain(d Direction) []Backend {
	return append([]Backend(nil), s.chains[d]...)
}

// Convert tries each backend for d in order and stops at the first success.
// Failures are logged and swallowed; when every backend fails, the returned
// *Error carries the last backend's error only.
func (s *Selector) Convert(ctx context.Context, d Direction, src, dst string) error {
	var (
		lastErr  error
		lastName string
	)
	for _, b := range s.chains[d] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !b.Supports(d) {
			continue
		}
		err := tryConvert(ctx, b, d, src, dst)
		if err == nil {
			s.logger.DebugContext(ctx, "converted", logging.FieldBackend, b.Name(), "direction", d, "src", src, "dst", dst)
			return nil
		}
		s.logger.DebugContext(ctx, "backend failed, falling back",
			logging.FieldBackend, b.Name(), "direction", d, "src", src, "error", err)
		lastErr, lastName = err, b.Name()
	}
	if lastErr == nil {
		return fmt.Errorf("%w for %s", ErrNoBackend, d)
	}
	return &Error{Backend: lastName, Err: lastErr}
}

// tryConvert runs one backend, turning a panic into that backend's error so
// the chain can move on.
func tryConvert(ctx context.Context, b Backend, d Direction, src, dst string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", b.Name(), r)
		}
	}()
	return b.Convert(ctx, d, src, dst)
}
