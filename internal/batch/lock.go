package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created in the output base directory while a batch runs
// and removed when it finishes.
const LockFileName = ".ddsconvert.lock"

func acquireLock(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock: %w", ErrPrepare, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBatchLocked, dir)
	}
	return lock, nil
}

// releaseLock deletes the lock file while still holding it, then unlocks. A
// competing batch that opened the old file fails its TryLock until then.
func releaseLock(lock *flock.Flock) error {
	var rmErr error
	if err := os.Remove(lock.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		rmErr = fmt.Errorf("remove lock file: %w", err)
	}
	return errors.Join(rmErr, lock.Unlock())
}
