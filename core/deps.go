package core

import (
	"context"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/internal/workspacestate"
	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/session"
	"pkt.systems/wsmux/wm"
)

// WindowManager is the window-manager surface the service drives.
type WindowManager interface {
	FocusedWorkspace(ctx context.Context) (wm.Workspace, error)
	Tree(ctx context.Context) (*wm.TreeNode, error)
	RunCommand(ctx context.Context, command string) error
	WaitAndMark(ctx context.Context, instance, host, socket string, maxAttempts int, interval time.Duration) (int64, error)
	CollectMarkedIn(ctx context.Context, workspaceNum int) ([]wm.WindowIdentity, error)
	KillMarkedIn(ctx context.Context, workspaceNum int) (int, error)
}

// StoreProvider opens the session store for a host.
type StoreProvider func(host schema.HostRef) (session.Store, error)

// TerminalSpawner launches terminal emulator windows.
type TerminalSpawner interface {
	// Spawn opens a terminal whose window reports the given WM_CLASS
	// instance and runs the shell command inside it.
	Spawn(ctx context.Context, instance, command string) error
	// SpawnPlain opens a terminal with no wrapper command.
	SpawnPlain(ctx context.Context) error
}

// ServiceDeps captures the dependencies of the core service.
type ServiceDeps struct {
	WM      WindowManager
	Stores  StoreProvider
	State   *workspacestate.Store
	Spawner TerminalSpawner
	Logger  pslog.Logger
}
