package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/transport"
)

// Transport is the remote execution surface the store needs. It is
// satisfied by the SSH client; tests substitute a scripted fake.
type Transport interface {
	Run(ctx context.Context, command string) (string, error)
	Check(ctx context.Context, command string) (bool, error)
	RunStdin(ctx context.Context, command string, stdin io.Reader) error
	Start(command string) (LockHandle, error)
	Host() string
}

// lockSleep is replaceable in tests.
var lockSleep = time.Sleep

// remoteStore keeps sessions and locks as files on a remote host,
// reached through the transport. The lock is held by a background
// remote process started over the same transport; its liveness is the
// lock's validity.
type remoteStore struct {
	tr       Transport
	baseDir  string
	lockWait time.Duration
	hbEvery  time.Duration
	log      pslog.Logger
}

func newRemoteStore(tr Transport, cfg Config, logger pslog.Logger) *remoteStore {
	if logger != nil {
		logger = logger.With("store", "remote", "host", tr.Host())
	}
	lockWait := cfg.LockWait
	if lockWait <= 0 {
		lockWait = 500 * time.Millisecond
	}
	hbEvery := cfg.HeartbeatInterval
	if hbEvery <= 0 {
		hbEvery = 30 * time.Second
	}
	return &remoteStore{tr: tr, baseDir: cfg.BaseDir, lockWait: lockWait, hbEvery: hbEvery, log: logger}
}

func (s *remoteStore) sessionPath(name schema.SessionName) string {
	return s.baseDir + "/sessions/" + string(name) + ".json"
}

func (s *remoteStore) lockPath(name schema.SessionName) string {
	return s.baseDir + "/locks/" + string(name) + ".lock"
}

func (s *remoteStore) pidPath(name schema.SessionName) string {
	return s.lockPath(name) + ".pid"
}

func (s *remoteStore) Save(ctx context.Context, sess schema.Session) error {
	data, err := schema.EncodeSession(sess)
	if err != nil {
		return err
	}
	if _, err := s.tr.Run(ctx, fmt.Sprintf("mkdir -p %s/sessions", s.baseDir)); err != nil {
		return fmt.Errorf("prepare session dir on %s: %w", s.tr.Host(), err)
	}
	if err := s.tr.RunStdin(ctx, fmt.Sprintf("cat > '%s'", s.sessionPath(sess.Name)), strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("write session %q on %s: %w", sess.Name, s.tr.Host(), err)
	}
	if s.log != nil {
		s.log.Debug("session saved", "session", sess.Name)
	}
	return nil
}

func (s *remoteStore) Load(ctx context.Context, name schema.SessionName) (schema.Session, error) {
	out, err := s.tr.Run(ctx, fmt.Sprintf("cat '%s'", s.sessionPath(name)))
	if err != nil {
		var exitErr *transport.ExitError
		if errors.As(err, &exitErr) {
			return schema.Session{}, fmt.Errorf("%w: %q on %s", schema.ErrSessionNotFound, name, s.tr.Host())
		}
		return schema.Session{}, err
	}
	return schema.DecodeSession([]byte(out))
}

func (s *remoteStore) List(ctx context.Context) ([]string, error) {
	out, err := s.tr.Run(ctx, fmt.Sprintf("ls %s/sessions/*.json 2>/dev/null | xargs -rn1 basename -s .json || true", s.baseDir))
	if err != nil {
		return nil, fmt.Errorf("list sessions on %s: %w", s.tr.Host(), err)
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *remoteStore) Delete(ctx context.Context, name schema.SessionName) error {
	if _, err := s.tr.Run(ctx, fmt.Sprintf("rm -f '%s'", s.sessionPath(name))); err != nil {
		return fmt.Errorf("delete session %q on %s: %w", name, s.tr.Host(), err)
	}
	return nil
}

// AcquireLock starts a detached remote process that writes its pid to
// a side file, installs an exit trap deleting the lock artifacts,
// writes the lock file and then heartbeats forever. The returned
// handle keeps the remote lock alive; terminating it locally
// propagates to the remote loop, whose trap releases the lock.
func (s *remoteStore) AcquireLock(ctx context.Context, name schema.SessionName, force bool) (schema.Lock, LockHandle, error) {
	if !force {
		if err := s.failIfHeld(ctx, name); err != nil {
			return schema.Lock{}, nil, err
		}
	}

	if _, err := s.tr.Run(ctx, fmt.Sprintf("mkdir -p %s/locks", s.baseDir)); err != nil {
		return schema.Lock{}, nil, fmt.Errorf("prepare lock dir on %s: %w", s.tr.Host(), err)
	}

	handle, err := s.tr.Start(lockHolderScript(s.lockPath(name), s.pidPath(name), hostname(), s.hbEvery))
	if err != nil {
		return schema.Lock{}, nil, err
	}

	// The remote pid only exists once the holder has started up; wait
	// briefly, then read it back.
	lockSleep(s.lockWait)
	pid, err := s.readHolderPID(ctx, name)
	if err != nil || pid == 0 {
		_ = handle.Terminate()
		if err == nil {
			err = fmt.Errorf("%w: no holder pid on %s", schema.ErrLockAcquire, s.tr.Host())
		}
		return schema.Lock{}, nil, err
	}

	lock := schema.NewLock(hostname(), pid)
	if s.log != nil {
		s.log.Info("lock acquired", "session", name, "remote_pid", pid, "local_pid", handle.PID())
	}
	return lock, handle, nil
}

func (s *remoteStore) failIfHeld(ctx context.Context, name schema.SessionName) error {
	pid, err := s.readHolderPID(ctx, name)
	if err != nil {
		return err
	}
	if pid == 0 {
		return nil
	}
	alive, err := s.tr.Check(ctx, fmt.Sprintf("kill -0 %d 2>/dev/null", pid))
	if err != nil {
		return err
	}
	if !alive {
		// Stale lock: the holder died without its trap firing.
		// Staleness alone is enough to reclaim.
		if s.log != nil {
			s.log.Info("reclaiming stale lock", "session", name, "dead_pid", pid)
		}
		return nil
	}
	lockedErr := &schema.LockedError{Session: name}
	// Best-effort: the session's own record names the owner for a
	// friendlier message. Failing to load it must not mask the Locked
	// outcome.
	if sess, err := s.Load(ctx, name); err == nil && sess.Lock != nil {
		lockedErr.Owner = sess.Lock.LockedBy
		lockedErr.LockedAt = sess.Lock.LockedAt
	}
	return lockedErr
}

func (s *remoteStore) readHolderPID(ctx context.Context, name schema.SessionName) (int, error) {
	out, err := s.tr.Run(ctx, fmt.Sprintf("cat '%s' 2>/dev/null || echo ''", s.pidPath(name)))
	if err != nil {
		return 0, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(out)
	if err != nil {
		return 0, nil
	}
	return pid, nil
}

func (s *remoteStore) IsLockValid(ctx context.Context, lock schema.Lock) (bool, error) {
	return s.tr.Check(ctx, fmt.Sprintf("kill -0 %d 2>/dev/null", lock.RemotePID))
}

func (s *remoteStore) ReleaseLock(ctx context.Context, name schema.SessionName) error {
	_, err := s.tr.Run(ctx, fmt.Sprintf(
		"test -f '%[1]s' && kill $(cat '%[1]s') 2>/dev/null; rm -f '%[2]s' '%[1]s'",
		s.pidPath(name), s.lockPath(name)))
	if err != nil {
		return fmt.Errorf("release lock for %q on %s: %w", name, s.tr.Host(), err)
	}
	return nil
}

func lockHolderScript(lockFile, pidFile, owner string, heartbeat time.Duration) string {
	return fmt.Sprintf(`set -e
LOCKFILE='%s'
PIDFILE='%s'
echo $$ > "$PIDFILE"
trap 'rm -f "$LOCKFILE" "$PIDFILE"' EXIT
echo 'lock held by %s' > "$LOCKFILE"
while true; do
  sleep %d
  echo "heartbeat $(date +%%s)" >> "$LOCKFILE"
done
`, lockFile, pidFile, owner, int(heartbeat.Seconds()))
}

func encodeLock(lock schema.Lock) ([]byte, error) {
	return json.Marshal(lock)
}

func decodeLock(data []byte) (schema.Lock, error) {
	var lock schema.Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return schema.Lock{}, err
	}
	return lock, nil
}
