package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/transport"
)

type fakeHandle struct {
	pid        int
	terminated bool
}

func (h *fakeHandle) PID() int { return h.pid }
func (h *fakeHandle) Terminate() error {
	h.terminated = true
	return nil
}

type fakeTransport struct {
	runFn    func(command string) (string, error)
	checkFn  func(command string) (bool, error)
	stdin    map[string]string
	started  []string
	handle   *fakeHandle
	startErr error
	runCalls []string
}

func (f *fakeTransport) Run(ctx context.Context, command string) (string, error) {
	f.runCalls = append(f.runCalls, command)
	if f.runFn != nil {
		return f.runFn(command)
	}
	return "", nil
}

func (f *fakeTransport) Check(ctx context.Context, command string) (bool, error) {
	if f.checkFn != nil {
		return f.checkFn(command)
	}
	return false, nil
}

func (f *fakeTransport) RunStdin(ctx context.Context, command string, stdin io.Reader) error {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return err
	}
	if f.stdin == nil {
		f.stdin = map[string]string{}
	}
	f.stdin[command] = string(data)
	return nil
}

func (f *fakeTransport) Start(command string) (LockHandle, error) {
	f.started = append(f.started, command)
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.handle, nil
}

func (f *fakeTransport) Host() string { return "deepthought" }

func newTestRemoteStore(tr Transport) *remoteStore {
	return newRemoteStore(tr, Config{
		BaseDir:           ".wsmux",
		LockWait:          time.Millisecond,
		HeartbeatInterval: time.Second,
	}, nil)
}

func TestRemoteStoreSaveWritesRecord(t *testing.T) {
	tr := &fakeTransport{}
	store := newTestRemoteStore(tr)
	if err := store.Save(context.Background(), testSession("proj")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(tr.runCalls) == 0 || !strings.Contains(tr.runCalls[0], "mkdir -p .wsmux/sessions") {
		t.Fatalf("expected session dir creation, got %v", tr.runCalls)
	}
	data, ok := tr.stdin["cat > '.wsmux/sessions/proj.json'"]
	if !ok {
		t.Fatalf("expected session write, got %v", tr.stdin)
	}
	if !strings.Contains(data, `"name": "proj"`) {
		t.Fatalf("unexpected record: %s", data)
	}
}

func TestRemoteStoreLoadMissingSession(t *testing.T) {
	tr := &fakeTransport{runFn: func(command string) (string, error) {
		return "", &transport.ExitError{Command: command, Code: 1, Stderr: "No such file"}
	}}
	store := newTestRemoteStore(tr)
	_, err := store.Load(context.Background(), "nope")
	if !errors.Is(err, schema.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRemoteStoreList(t *testing.T) {
	tr := &fakeTransport{runFn: func(command string) (string, error) {
		return "zeta\nalpha\n\n", nil
	}}
	store := newTestRemoteStore(tr)
	names, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "zeta"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("list: got %v, want %v", names, want)
	}
}

func TestRemoteStoreAcquireLockStartsHolder(t *testing.T) {
	oldSleep := lockSleep
	lockSleep = func(time.Duration) {}
	t.Cleanup(func() { lockSleep = oldSleep })
	oldHostname := hostname
	hostname = func() string { return "laptop" }
	t.Cleanup(func() { hostname = oldHostname })

	pidAvailable := false
	tr := &fakeTransport{
		handle: &fakeHandle{pid: 1111},
		runFn: func(command string) (string, error) {
			if strings.Contains(command, "proj.lock.pid") {
				if pidAvailable {
					return "4242\n", nil
				}
				return "", nil
			}
			return "", nil
		},
	}
	// The pid file becomes readable only after the holder has started.
	wrapped := &startFlipTransport{fakeTransport: tr, flip: &pidAvailable}
	store := newTestRemoteStore(wrapped)

	lock, handle, err := store.AcquireLock(context.Background(), "proj", false)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if lock.RemotePID != 4242 || lock.LockedBy != "laptop" {
		t.Fatalf("unexpected lock %+v", lock)
	}
	if handle == nil || handle.PID() != 1111 {
		t.Fatalf("expected holder handle, got %+v", handle)
	}
	if len(tr.started) != 1 {
		t.Fatalf("expected one holder start, got %d", len(tr.started))
	}
	script := tr.started[0]
	for _, fragment := range []string{
		"echo $$ >",
		`trap 'rm -f "$LOCKFILE" "$PIDFILE"' EXIT`,
		".wsmux/locks/proj.lock",
		"while true; do",
	} {
		if !strings.Contains(script, fragment) {
			t.Fatalf("holder script missing %q:\n%s", fragment, script)
		}
	}
}

// startFlipTransport makes the holder pid file visible once Start has
// been called, like a real holder would.
type startFlipTransport struct {
	*fakeTransport
	flip *bool
}

func (s *startFlipTransport) Start(command string) (LockHandle, error) {
	handle, err := s.fakeTransport.Start(command)
	if err == nil {
		*s.flip = true
	}
	return handle, err
}

func TestRemoteStoreAcquireLockContention(t *testing.T) {
	oldSleep := lockSleep
	lockSleep = func(time.Duration) {}
	t.Cleanup(func() { lockSleep = oldSleep })

	tr := &fakeTransport{
		runFn: func(command string) (string, error) {
			if strings.Contains(command, "proj.lock.pid") {
				return "99\n", nil
			}
			return "", fmt.Errorf("unscripted %q", command)
		},
		checkFn: func(command string) (bool, error) {
			return strings.Contains(command, "kill -0 99"), nil
		},
	}
	store := newTestRemoteStore(tr)
	_, _, err := store.AcquireLock(context.Background(), "proj", false)
	var lockedErr *schema.LockedError
	if !errors.As(err, &lockedErr) {
		t.Fatalf("expected LockedError, got %v", err)
	}
	if len(tr.started) != 0 {
		t.Fatalf("holder must not start on contention")
	}
}

func TestRemoteStoreAcquireLockReclaimsStale(t *testing.T) {
	oldSleep := lockSleep
	lockSleep = func(time.Duration) {}
	t.Cleanup(func() { lockSleep = oldSleep })

	started := false
	tr := &fakeTransport{handle: &fakeHandle{pid: 1}}
	tr.runFn = func(command string) (string, error) {
		if strings.Contains(command, "proj.lock.pid") {
			if started {
				return "500", nil
			}
			return "99", nil
		}
		return "", nil
	}
	tr.checkFn = func(command string) (bool, error) { return false, nil }
	wrapped := &startFlipTransport{fakeTransport: tr, flip: &started}
	store := newTestRemoteStore(wrapped)

	lock, _, err := store.AcquireLock(context.Background(), "proj", false)
	if err != nil {
		t.Fatalf("stale reclaim: %v", err)
	}
	if lock.RemotePID != 500 {
		t.Fatalf("expected new holder pid, got %d", lock.RemotePID)
	}
}

func TestRemoteStoreAcquireLockNoHolderPid(t *testing.T) {
	oldSleep := lockSleep
	lockSleep = func(time.Duration) {}
	t.Cleanup(func() { lockSleep = oldSleep })

	handle := &fakeHandle{pid: 1}
	tr := &fakeTransport{handle: handle}
	store := newTestRemoteStore(tr)

	_, _, err := store.AcquireLock(context.Background(), "proj", false)
	if !errors.Is(err, schema.ErrLockAcquire) {
		t.Fatalf("expected ErrLockAcquire, got %v", err)
	}
	if !handle.terminated {
		t.Fatalf("expected failed holder to be terminated")
	}
}

func TestRemoteStoreIsLockValid(t *testing.T) {
	tr := &fakeTransport{checkFn: func(command string) (bool, error) {
		return strings.Contains(command, "kill -0 4242"), nil
	}}
	store := newTestRemoteStore(tr)
	valid, err := store.IsLockValid(context.Background(), schema.Lock{RemotePID: 4242})
	if err != nil || !valid {
		t.Fatalf("expected valid lock, got %v %v", valid, err)
	}
	valid, err = store.IsLockValid(context.Background(), schema.Lock{RemotePID: 1})
	if err != nil || valid {
		t.Fatalf("expected invalid lock, got %v %v", valid, err)
	}
}

func TestRemoteStoreReleaseLock(t *testing.T) {
	tr := &fakeTransport{}
	store := newTestRemoteStore(tr)
	if err := store.ReleaseLock(context.Background(), "proj"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(tr.runCalls) != 1 {
		t.Fatalf("expected one command, got %v", tr.runCalls)
	}
	cmd := tr.runCalls[0]
	if !strings.Contains(cmd, "kill $(cat") || !strings.Contains(cmd, "rm -f") {
		t.Fatalf("unexpected release command %q", cmd)
	}
}
