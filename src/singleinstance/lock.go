package singleinstance

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrAlreadyRunning is returned by Acquire when another resident holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

const lockName = "snip-pin.lock"

// Lock is process-wide ownership of the resident role. It is released on exit
// even if Release is never called.
type Lock struct {
	release func() error
}

// Acquire takes the resident lock or fails with ErrAlreadyRunning.
func Acquire() (*Lock, error) {
	return acquireAt(filepath.Join(os.TempDir(), lockName))
}

func (l *Lock) Release() error {
	if l == nil || l.release == nil {
		return nil
	}
	err := l.release()
	l.release = nil
	return err
}
