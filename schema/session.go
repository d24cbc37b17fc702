package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pkt.systems/wsmux/layout"
)

// Session is the durable record of a detached workspace, persisted on
// the host named by Host and addressed by (Host, Name). The JSON field
// names are a versioned contract: a session detached by one wsmux
// version must load under another.
type Session struct {
	Name      SessionName    `json:"name"`
	Workspace WorkspaceLabel `json:"workspace"`
	Host      HostRef        `json:"host"`
	Layout    layout.Tree    `json:"layout"`
	Lock      *Lock          `json:"lock,omitempty"`
}

// Lock records who currently owns a session. Its truth value is not in
// the record: a lock is valid only while RemotePID names a live process
// on the owning side, so a crashed holder leaves a stale, reclaimable
// record behind.
type Lock struct {
	LockedBy  string `json:"locked_by"`
	LockedAt  string `json:"locked_at"`
	Nonce     string `json:"nonce"`
	RemotePID int    `json:"remote_pid"`
}

// NewLock builds a lock record for a holder process.
func NewLock(hostname string, pid int) Lock {
	return Lock{
		LockedBy:  hostname,
		LockedAt:  time.Now().UTC().Format(time.RFC3339),
		Nonce:     uuid.NewString(),
		RemotePID: pid,
	}
}

// EncodeSession renders the wire form of a session record.
func EncodeSession(s Session) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// DecodeSession parses a persisted session record. Unknown layout node
// types are rejected rather than defaulted, so format drift between
// versions surfaces as an error instead of a silently rearranged tree.
func DecodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parse session record: %w", err)
	}
	if s.Layout.Root == nil {
		return Session{}, fmt.Errorf("parse session record: missing layout")
	}
	return s, nil
}
