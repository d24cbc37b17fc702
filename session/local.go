package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/schema"
)

// localStore keeps sessions and locks as files on this machine. Lock
// validity is a local signal-0 probe, so no background holder process
// is needed: the checking side and the holder share a kernel.
type localStore struct {
	baseDir string
	log     pslog.Logger
	alive   func(pid int) bool
}

func newLocalStore(cfg Config, logger pslog.Logger) (*localStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, errors.New("session base directory is required")
	}
	if logger != nil {
		logger = logger.With("store", "local")
	}
	return &localStore{baseDir: cfg.BaseDir, log: logger, alive: processAlive}, nil
}

func (s *localStore) sessionPath(name schema.SessionName) string {
	return filepath.Join(s.baseDir, "sessions", string(name)+".json")
}

func (s *localStore) lockPath(name schema.SessionName) string {
	return filepath.Join(s.baseDir, "locks", string(name)+".lock")
}

func (s *localStore) Save(ctx context.Context, sess schema.Session) error {
	data, err := schema.EncodeSession(sess)
	if err != nil {
		return err
	}
	path := s.sessionPath(sess.Name)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write session file %s: %w", path, err)
	}
	if s.log != nil {
		s.log.Debug("session saved", "session", sess.Name)
	}
	return nil
}

func (s *localStore) Load(ctx context.Context, name schema.SessionName) (schema.Session, error) {
	data, err := os.ReadFile(s.sessionPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return schema.Session{}, fmt.Errorf("%w: %q", schema.ErrSessionNotFound, name)
		}
		return schema.Session{}, fmt.Errorf("load session %q: %w", name, err)
	}
	return schema.DecodeSession(data)
}

func (s *localStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "sessions"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".json"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *localStore) Delete(ctx context.Context, name schema.SessionName) error {
	err := os.Remove(s.sessionPath(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	return nil
}

func (s *localStore) AcquireLock(ctx context.Context, name schema.SessionName, force bool) (schema.Lock, LockHandle, error) {
	lockPath := s.lockPath(name)
	if !force {
		if existing, ok := s.readLock(lockPath); ok {
			valid, err := s.IsLockValid(ctx, existing)
			if err != nil {
				return schema.Lock{}, nil, err
			}
			if valid {
				return schema.Lock{}, nil, &schema.LockedError{Session: name, Owner: existing.LockedBy, LockedAt: existing.LockedAt}
			}
			if s.log != nil {
				s.log.Info("reclaiming stale lock", "session", name, "previous_owner", existing.LockedBy)
			}
		}
	}

	// The current process is the holder; its pid is what later
	// validity probes check.
	lock := schema.NewLock(hostname(), os.Getpid())
	data, err := encodeLock(lock)
	if err != nil {
		return schema.Lock{}, nil, err
	}
	if err := writeFileAtomic(lockPath, data); err != nil {
		return schema.Lock{}, nil, fmt.Errorf("write lock file %s: %w", lockPath, err)
	}
	return lock, nil, nil
}

func (s *localStore) IsLockValid(ctx context.Context, lock schema.Lock) (bool, error) {
	return s.alive(lock.RemotePID), nil
}

func (s *localStore) ReleaseLock(ctx context.Context, name schema.SessionName) error {
	err := os.Remove(s.lockPath(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock for %q: %w", name, err)
	}
	return nil
}

func (s *localStore) readLock(path string) (schema.Lock, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Lock{}, false
	}
	lock, err := decodeLock(data)
	if err != nil {
		// An unreadable lock record is treated as absent; the acquire
		// overwrites it.
		if s.log != nil {
			s.log.Warn("discarding unreadable lock record", "path", path, "err", err)
		}
		return schema.Lock{}, false
	}
	return lock, true
}

// processAlive reports whether a pid names a live local process.
// Signal 0 delivers nothing but still performs the existence check;
// EPERM means the process exists under another user.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".wsmux-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
