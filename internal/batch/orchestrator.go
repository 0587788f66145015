// Package batch converts lists of files one at a time, routing each through a
// backend chain and collecting a per-file tally that a single failure never
// cuts short.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erinpentecost/ddsconvert/internal/backend"
	"github.com/erinpentecost/ddsconvert/internal/logging"
)

// Converter turns one source file into one output file. backend.Selector
// satisfies it.
type Converter interface {
	Convert(ctx context.Context, d backend.Direction, src, dst string) error
}

// Request is one batch: files in the order they are converted, the mode, and
// the base output directory.
type Request struct {
	Files     []string
	Mode      Mode
	OutputDir string
}

type Options struct {
	Logger          *slog.Logger
	TimestampLayout string
	// Now defaults to time.Now.
	Now func() time.Time
}

type Orchestrator struct {
	conv   Converter
	logger *slog.Logger
	layout string
	now    func() time.Time
}

func New(conv Converter, opts Options) *Orchestrator {
	o := &Orchestrator{
		conv:   conv,
		logger: opts.Logger,
		layout: opts.TimestampLayout,
		now:    opts.Now,
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Start prepares the output directories on the calling goroutine, then runs
// the batch on its own goroutine. The returned channel carries one Progress
// per file and a final Complete, then closes. A preparation failure is
// returned directly and no file is attempted.
func (o *Orchestrator) Start(ctx context.Context, req Request) (<-chan Event, error) {
	planner, err := o.prepare(req)
	if err != nil {
		return nil, err
	}

	events := make(chan Event, len(req.Files)+1)
	go func() {
		defer close(events)
		defer o.release(planner)
		res := o.run(ctx, req, planner, func(e Event) { events <- e })
		events <- Complete{Result: res}
	}()
	return events, nil
}

// Run is the synchronous form of Start. emit may be nil.
func (o *Orchestrator) Run(ctx context.Context, req Request, emit func(Event)) (Result, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	planner, err := o.prepare(req)
	if err != nil {
		return Result{}, err
	}
	defer o.release(planner)

	res := o.run(ctx, req, planner, emit)
	emit(Complete{Result: res})
	return res, nil
}

func (o *Orchestrator) prepare(req Request) (*Planner, error) {
	if !req.Mode.valid() {
		return nil, fmt.Errorf("%w: invalid mode %s", ErrPrepare, req.Mode)
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return nil, fmt.Errorf("%w: output directory not set", ErrPrepare)
	}
	planner := NewPlanner(req.OutputDir, o.now(), o.layout)
	if err := planner.Prepare(req.Mode); err != nil {
		return nil, err
	}
	return planner, nil
}

func (o *Orchestrator) release(p *Planner) {
	if err := p.Release(); err != nil {
		o.logger.Warn("failed to release output lock", "dir", p.Base(), "error", err)
	}
}

func (o *Orchestrator) run(ctx context.Context, req Request, planner *Planner, emit func(Event)) Result {
	start := time.Now()
	res := Result{
		BatchID:   uuid.NewString(),
		Mode:      req.Mode,
		Total:     len(req.Files),
		OutputDir: planner.OutputDir(req.Mode),
	}
	logger := o.logger.With(logging.FieldBatchID, res.BatchID)

	roots := make([]string, 0, 2)
	for _, d := range req.Mode.Directions() {
		roots = append(roots, planner.Root(d))
	}
	logger.Info("batch started", "mode", req.Mode, "files", res.Total, "roots", roots)

	for i, path := range req.Files {
		if err := ctx.Err(); err != nil {
			for _, rest := range req.Files[i:] {
				res.fail(rest, err)
			}
			res.Cancelled = true
			logger.Warn("batch cancelled", "remaining", len(req.Files)-i, "error", err)
			break
		}

		emit(Progress{
			Index:   i,
			Total:   res.Total,
			Path:    path,
			Message: "Converting: " + filepath.Base(path),
		})

		if err := o.convertOne(ctx, req.Mode, planner, path); err != nil {
			res.fail(path, err)
			level := slog.LevelWarn
			if errors.Is(err, ErrValidation) {
				level = slog.LevelInfo
			}
			logger.Log(ctx, level, "file failed", logging.FieldIndex, i, logging.FieldFile, path, "error", err)
			continue
		}
		res.succeed()
		logger.Debug("file converted", logging.FieldIndex, i, logging.FieldFile, path)
	}

	res.Duration = time.Since(start)
	logger.Info("batch finished",
		"succeeded", res.Succeeded,
		"failed", len(res.Failures),
		"total", res.Total,
		"output_dir", res.OutputDir,
		"duration", res.Duration)
	return res
}

// convertOne never panics: a decoder panic on a malformed file becomes that
// file's error.
func (o *Orchestrator) convertOne(ctx context.Context, mode Mode, planner *Planner, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion panicked: %v", r)
		}
	}()

	d, err := mode.resolve(strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return err
	}
	return o.conv.Convert(ctx, d, path, planner.OutputPath(d, path))
}
