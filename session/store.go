// Package session persists detached sessions and coordinates exclusive
// access to them. A Store works against one target: local files with
// local process checks, or a remote host over an SSH transport with
// remote process checks. The lock protocol is deliberately not a lock
// server: a lock is valid exactly while its holder process is alive,
// so a crashed owner leaves a stale record that the next caller
// reclaims without force.
package session

import (
	"context"
	"os"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/transport"
)

// LockHandle is the local grip on a background lock-holder process.
// Terminating it releases the lock as a side effect of the holder's
// exit trap. Local locks need no holder and return a nil handle.
type LockHandle interface {
	PID() int
	Terminate() error
}

// Store is the capability surface for one session target.
type Store interface {
	// Save persists a session record, overwriting any previous one.
	Save(ctx context.Context, s schema.Session) error
	// Load retrieves a session record; schema.ErrSessionNotFound when
	// absent.
	Load(ctx context.Context, name schema.SessionName) (schema.Session, error)
	// List returns the stored session names.
	List(ctx context.Context) ([]string, error)
	// Delete removes a session record. Deleting a nonexistent session
	// is a no-op.
	Delete(ctx context.Context, name schema.SessionName) error

	// AcquireLock takes the session lock. A present, valid lock fails
	// with *schema.LockedError unless force is set; a stale lock (dead
	// holder) is reclaimed without force.
	AcquireLock(ctx context.Context, name schema.SessionName, force bool) (schema.Lock, LockHandle, error)
	// IsLockValid probes the holder process. A missing process is the
	// expected stale case and yields false, not an error.
	IsLockValid(ctx context.Context, lock schema.Lock) (bool, error)
	// ReleaseLock removes the lock artifacts, best-effort.
	ReleaseLock(ctx context.Context, name schema.SessionName) error
}

// Config carries the store settings shared by both implementations.
type Config struct {
	// BaseDir roots the session and lock files (same layout locally
	// and remotely).
	BaseDir string
	// SSH configures the remote transport.
	SSH transport.Options
	// LockWait is how long remote acquisition waits before reading the
	// holder pid back.
	LockWait time.Duration
	// HeartbeatInterval spaces the remote holder's heartbeat writes.
	HeartbeatInterval time.Duration
}

// NewStore selects the implementation for a host: local files when the
// ref addresses this machine, the SSH-backed store otherwise.
func NewStore(host schema.HostRef, cfg Config, logger pslog.Logger) (Store, error) {
	if host.IsLocal() {
		return newLocalStore(cfg, logger)
	}
	client, err := transport.NewClient(string(host), cfg.SSH, logger)
	if err != nil {
		return nil, err
	}
	return newRemoteStore(sshTransport{client}, cfg, logger), nil
}

// hostname is replaceable in tests.
var hostname = func() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

// sshTransport adapts transport.Client to the Transport interface
// (Start's concrete return type needs widening to LockHandle).
type sshTransport struct {
	*transport.Client
}

func (s sshTransport) Start(command string) (LockHandle, error) {
	return s.Client.Start(command)
}
