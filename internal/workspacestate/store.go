// Package workspacestate tracks which workspaces are managed and what
// they carry. The record is the bridge between CLI invocations: socket
// counters, the bound session, and the local pid of the lock-holder
// process all live here, since each command runs as a fresh process.
package workspacestate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/schema"
)

// Entry is the managed state of one workspace.
type Entry struct {
	// Host the workspace's terminals run on.
	Host schema.HostRef `json:"host"`
	// Session bound by attach; empty for a workspace that was only
	// activated.
	Session schema.SessionName `json:"session,omitempty"`
	// Sockets allocated on this workspace, in allocation order.
	Sockets []string `json:"sockets,omitempty"`
	// LockHolderPID is the local pid of the detached lock-holder
	// process, recorded so a later invocation can stop it.
	LockHolderPID int `json:"lock_holder_pid,omitempty"`
}

// NextSocket returns the next socket identifier for a workspace. The
// counter continues past previously allocated sockets so identifiers
// stay unique within the workspace's lifetime.
func (e Entry) NextSocket(label schema.WorkspaceLabel) string {
	return fmt.Sprintf("ws%s-%03d", label, len(e.Sockets)+1)
}

// Store persists workspace entries as one JSON file per workspace.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a store rooted at the given directory.
func NewStore(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Get reads a workspace entry. The second return is false when the
// workspace is not managed.
func (s *Store) Get(label schema.WorkspaceLabel) (Entry, bool, error) {
	path := s.pathFor(label)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, false, nil
		}
		if s.log != nil {
			s.log.Warn("state load failed", "workspace", label, "err", err)
		}
		return Entry{}, false, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		if s.log != nil {
			s.log.Warn("state load failed", "workspace", label, "err", err)
		}
		return Entry{}, false, err
	}
	return entry, true, nil
}

// Put writes a workspace entry atomically.
func (s *Store) Put(label schema.WorkspaceLabel, entry Entry) error {
	path := s.pathFor(label)
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "state-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
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
	if err := os.Rename(tmp.Name(), path); err != nil {
		if s.log != nil {
			s.log.Warn("state save failed", "workspace", label, "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("state save ok", "workspace", label, "sockets", len(entry.Sockets))
	}
	return nil
}

// Delete removes a workspace entry. Deleting an unmanaged workspace is
// a no-op.
func (s *Store) Delete(label schema.WorkspaceLabel) error {
	err := os.Remove(s.pathFor(label))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) pathFor(label schema.WorkspaceLabel) string {
	name := sanitize(string(label))
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(s.dir, name+".json")
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}
