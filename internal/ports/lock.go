package ports

// TransitionLockPort serializes transitions: at most one runs per host.
// The lock is advisory and process-level.
type TransitionLockPort interface {
	Acquire() error
	Release() error
}
