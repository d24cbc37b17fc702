package wm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrWindowTimeout indicates the window-appearance polling budget was
// exhausted before the spawned terminal's window showed up.
var ErrWindowTimeout = errors.New("timed out waiting for window")

// waitSleep is replaceable in tests.
var waitSleep = time.Sleep

// ApplyMark marks a window as managed. Re-applying an existing mark is
// harmless.
func (b *Backend) ApplyMark(ctx context.Context, id WindowIdentity) error {
	return b.RunCommand(ctx, fmt.Sprintf("[id=\"%d\"] mark --add %s", id.Window, id.Mark()))
}

// WaitAndMark polls the tree until a window with the given WM_CLASS
// instance appears, marks it and returns its window id. Window
// creation is asynchronous (terminal startup, and for remote sessions
// a full SSH handshake), so this rendezvous is mandatory: the caller
// must not issue the next structural command until the previous window
// exists and is focused.
func (b *Backend) WaitAndMark(ctx context.Context, instance, host, socket string, maxAttempts int, interval time.Duration) (int64, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		waitSleep(interval)
		tree, err := b.Tree(ctx)
		if err != nil {
			return 0, err
		}
		if node := FindByInstance(tree, instance); node != nil {
			id := WindowIdentity{Window: node.Window, Host: host, Socket: socket}
			if err := b.ApplyMark(ctx, id); err != nil {
				return 0, err
			}
			return node.Window, nil
		}
		if attempt%10 == 0 && b.log != nil {
			b.log.Debug("still waiting for window", "instance", instance, "attempt", attempt, "max_attempts", maxAttempts)
		}
	}
	return 0, fmt.Errorf("%w: instance %q after %d attempts", ErrWindowTimeout, instance, maxAttempts)
}

// CollectMarkedIn returns the managed windows in a workspace, in tree
// order. A missing workspace yields an empty slice.
func (b *Backend) CollectMarkedIn(ctx context.Context, workspaceNum int) ([]WindowIdentity, error) {
	tree, err := b.Tree(ctx)
	if err != nil {
		return nil, err
	}
	ws := FindWorkspace(tree, workspaceNum)
	if ws == nil {
		return nil, nil
	}
	return CollectMarked(ws), nil
}

// KillMarkedIn closes every managed window in a workspace. Individual
// kill failures are logged and skipped: teardown must finish even when
// a window disappears mid-way.
func (b *Backend) KillMarkedIn(ctx context.Context, workspaceNum int) (int, error) {
	windows, err := b.CollectMarkedIn(ctx, workspaceNum)
	if err != nil {
		return 0, err
	}
	killed := 0
	for _, id := range windows {
		if err := b.RunCommand(ctx, fmt.Sprintf("[id=\"%d\"] kill", id.Window)); err != nil {
			if b.log != nil {
				b.log.Warn("failed to kill managed window", "window", id.Window, "socket", id.Socket, "err", err)
			}
			continue
		}
		killed++
	}
	return killed, nil
}
