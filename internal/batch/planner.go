package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/erinpentecost/ddsconvert/internal/backend"
)

// DefaultTimestampLayout names the per-batch output directories.
const DefaultTimestampLayout = "2006-01-02_15-04-05"

// Planner decides where a batch writes. The timestamp is fixed when the
// planner is built, so every file of a batch lands under the same one.
type Planner struct {
	base  string
	stamp string
	lock  *flock.Flock
}

func NewPlanner(base string, now time.Time, layout string) *Planner {
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	return &Planner{base: base, stamp: now.Format(layout)}
}

// Base is the directory every root lives under.
func (p *Planner) Base() string { return p.base }

// Root is the output directory for one direction: {base}/DDS/{ts} for
// PNG to DDS, {base}/PNG/{ts} for DDS to PNG.
func (p *Planner) Root(d backend.Direction) string {
	sub := strings.ToUpper(strings.TrimPrefix(d.TargetExt(), "."))
	return filepath.Join(p.base, sub, p.stamp)
}

// Prepare locks the base directory and creates the roots mode needs.
// Existing directories are fine. Any failure is fatal for the batch.
func (p *Planner) Prepare(mode Mode) error {
	if err := os.MkdirAll(p.base, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrPrepare, err)
	}
	lock, err := acquireLock(p.base)
	if err != nil {
		return err
	}
	for _, d := range mode.Directions() {
		if err := os.MkdirAll(p.Root(d), 0o755); err != nil {
			_ = releaseLock(lock)
			return fmt.Errorf("%w: %w", ErrPrepare, err)
		}
	}
	p.lock = lock
	return nil
}

// Release drops the output lock taken by Prepare and deletes its file.
func (p *Planner) Release() error {
	if p.lock == nil {
		return nil
	}
	err := releaseLock(p.lock)
	p.lock = nil
	return err
}

// OutputPath is the root for d plus the source's base name with the target
// extension.
func (p *Planner) OutputPath(d backend.Direction, src string) string {
	name := filepath.Base(src)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(p.Root(d), name+d.TargetExt())
}

// OutputDir is the directory reported to the caller: the single root for
// a fixed mode, the base for Auto since files may land under either root.
func (p *Planner) OutputDir(mode Mode) string {
	if dirs := mode.Directions(); len(dirs) == 1 {
		return p.Root(dirs[0])
	}
	return p.base
}
