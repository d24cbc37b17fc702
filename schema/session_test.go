package schema

import (
	"strings"
	"testing"

	"pkt.systems/wsmux/layout"
)

func half() *float64 {
	v := 0.5
	return &v
}

func TestSessionEncodeDecodeRoundTrip(t *testing.T) {
	sess := Session{
		Name:      "proj",
		Workspace: "3",
		Host:      "deepthought",
		Layout: layout.Tree{Root: &layout.Container{
			Kind: layout.HSplit,
			Children: []layout.Node{
				&layout.Terminal{Socket: "ws3-001", Percent: half()},
				&layout.Terminal{Socket: "ws3-002", Percent: half()},
			},
		}},
		Lock: &Lock{LockedBy: "laptop", LockedAt: "2026-01-02T03:04:05Z", Nonce: "n", RemotePID: 42},
	}
	data, err := EncodeSession(sess)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSession(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != sess.Name || got.Workspace != sess.Workspace || got.Host != sess.Host {
		t.Fatalf("header mismatch: %+v", got)
	}
	if got.Lock == nil || got.Lock.RemotePID != 42 || got.Lock.LockedBy != "laptop" {
		t.Fatalf("lock mismatch: %+v", got.Lock)
	}
	sockets := got.Layout.Root.Sockets()
	if len(sockets) != 2 || sockets[0] != "ws3-001" || sockets[1] != "ws3-002" {
		t.Fatalf("layout mismatch: %v", sockets)
	}
}

func TestDecodeSessionFieldNames(t *testing.T) {
	data := []byte(`{
  "name": "proj",
  "workspace": "3",
  "host": "deepthought",
  "layout": {"type": "terminal", "socket": "ws3-001"},
  "lock": {"locked_by": "laptop", "locked_at": "2026-01-02T03:04:05Z", "nonce": "n", "remote_pid": 42}
}`)
	sess, err := DecodeSession(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.Lock.LockedBy != "laptop" || sess.Lock.RemotePID != 42 {
		t.Fatalf("lock fields not mapped: %+v", sess.Lock)
	}
}

func TestDecodeSessionMissingLayout(t *testing.T) {
	if _, err := DecodeSession([]byte(`{"name": "proj", "workspace": "3", "host": "h"}`)); err == nil {
		t.Fatalf("expected error for missing layout")
	}
}

func TestDecodeSessionUnknownLayoutKind(t *testing.T) {
	data := []byte(`{"name": "p", "workspace": "1", "host": "h", "layout": {"type": "spiral", "children": [{"type": "terminal", "socket": "s"}]}}`)
	_, err := DecodeSession(data)
	if err == nil || !strings.Contains(err.Error(), "unknown node type") {
		t.Fatalf("expected unknown node type error, got %v", err)
	}
}

func TestNewLockFields(t *testing.T) {
	lock := NewLock("laptop", 123)
	if lock.LockedBy != "laptop" || lock.RemotePID != 123 {
		t.Fatalf("unexpected lock: %+v", lock)
	}
	if lock.Nonce == "" {
		t.Fatalf("expected a nonce")
	}
	if lock.LockedAt == "" || !strings.HasSuffix(lock.LockedAt, "Z") {
		t.Fatalf("expected UTC RFC3339 timestamp, got %q", lock.LockedAt)
	}
}
