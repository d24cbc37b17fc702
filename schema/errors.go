package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a session name or host ref rejected at
	// the CLI boundary.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionNotFound indicates the named session does not exist in
	// the store.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoSessions indicates the store holds no sessions at all.
	ErrNoSessions = errors.New("no sessions found")
	// ErrWorkspaceNotBound indicates the focused workspace has not been
	// activated.
	ErrWorkspaceNotBound = errors.New("workspace is not bound to wsmux")
	// ErrLocalDetach indicates a detach attempt on a local session,
	// which has no durable host to move the live processes to.
	ErrLocalDetach = errors.New("local sessions cannot be detached")
	// ErrNoTerminals indicates a layout capture found no managed
	// terminals, so there is nothing to save.
	ErrNoTerminals = errors.New("no managed terminals in workspace")
	// ErrWorkspaceOccupied indicates the attach target workspace
	// already contains managed windows.
	ErrWorkspaceOccupied = errors.New("workspace already contains managed windows")
	// ErrLockAcquire indicates the lock-holder process could not be
	// confirmed on the remote side.
	ErrLockAcquire = errors.New("failed to acquire session lock")
)

// LockedError reports contention on a valid lock. It is an expected
// outcome, not a fault: callers display the owner and suggest --force.
type LockedError struct {
	Session  SessionName
	Owner    string
	LockedAt string
}

func (e *LockedError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("session %q is locked (use --force to break the lock)", e.Session)
	}
	return fmt.Sprintf("session %q is locked by %s (acquired %s); use --force to break the lock", e.Session, e.Owner, e.LockedAt)
}
