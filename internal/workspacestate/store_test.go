package workspacestate

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStoreGetMissing(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, ok, err := store.Get("3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected unmanaged workspace")
	}
}

func TestStorePutGetRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	entry := Entry{
		Host:          "devbox",
		Session:       "proj",
		Sockets:       []string{"ws3-001", "ws3-002"},
		LockHolderPID: 4242,
	}
	if err := store.Put("3", entry); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.Get("3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected entry to exist")
	}
	if !reflect.DeepEqual(entry, got) {
		t.Fatalf("entry mismatch:\nwant: %+v\ngot:  %+v", entry, got)
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Put("5", Entry{Host: "localhost"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete("5"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete("5"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, ok, _ := store.Get("5"); ok {
		t.Fatalf("expected entry to be gone")
	}
}

func TestStoreGetInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "7.json"), []byte("{not-json"), 0o600); err != nil {
		t.Fatalf("write bad json: %v", err)
	}
	if _, _, err := store.Get("7"); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestEntryNextSocket(t *testing.T) {
	var entry Entry
	if got := entry.NextSocket("3"); got != "ws3-001" {
		t.Fatalf("first socket: got %q", got)
	}
	entry.Sockets = []string{"ws3-001", "ws3-002"}
	if got := entry.NextSocket("3"); got != "ws3-003" {
		t.Fatalf("third socket: got %q", got)
	}
}
