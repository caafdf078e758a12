package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	apperrors "segdesk/internal/platform/errors"
)

// Instance guards the state directory against a second editor writing the
// same anchor.
type Instance struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock without blocking. ErrInstanceLocked means another
// process holds it.
func Acquire(path string) (*Instance, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInstanceLocked, path)
	}
	return &Instance{path: path, lock: fl}, nil
}

func (i *Instance) Path() string { return i.path }

func (i *Instance) Release() error {
	if i == nil || i.lock == nil {
		return nil
	}
	if err := i.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
