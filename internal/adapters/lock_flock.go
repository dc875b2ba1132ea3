package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gofrs/flock"

	"avular-upgrade/internal/ports"
)

// FlockTransitionLock enforces the single-writer invariant: at most one
// transition mutates the repository configuration at a time. The lock is
// advisory and released on process exit.
type FlockTransitionLock struct {
	lock *flock.Flock
}

func NewFlockTransitionLock(path string) *FlockTransitionLock {
	return &FlockTransitionLock{lock: flock.New(path)}
}

func (l *FlockTransitionLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create lock directory").
			WithCause(err)
	}
	locked, err := l.lock.TryLock()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to acquire transition lock").
			WithCause(err)
	}
	if !locked {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("precondition failed: another upgrade is already running")
	}
	return nil
}

func (l *FlockTransitionLock) Release() error {
	return l.lock.Unlock()
}

var _ ports.TransitionLockPort = (*FlockTransitionLock)(nil)
