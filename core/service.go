package core

import (
	"context"
	"errors"
	"strconv"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/internal/workspacestate"
	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/session"
	"pkt.systems/wsmux/transport"
)

// Config carries the service settings.
type Config struct {
	// WaitAttempts bounds window-appearance polling after a spawn.
	WaitAttempts int
	// WaitInterval spaces the polls.
	WaitInterval time.Duration
	// SSH configures the interactive ssh invocations embedded in
	// spawned terminals.
	SSH transport.Options
}

// service implements the core service behavior.
type service struct {
	cfg     Config
	wm      WindowManager
	stores  StoreProvider
	state   *workspacestate.Store
	spawner TerminalSpawner
	logger  pslog.Logger
}

// terminateHolder is replaceable in tests.
var terminateHolder = transport.TerminatePID

// NewService constructs the core service implementation.
func NewService(cfg Config, deps ServiceDeps) (Service, error) {
	if deps.WM == nil {
		return nil, errors.New("window manager dependency is required")
	}
	if deps.Stores == nil {
		return nil, errors.New("store provider dependency is required")
	}
	if deps.State == nil {
		return nil, errors.New("workspace state dependency is required")
	}
	if deps.Spawner == nil {
		return nil, errors.New("terminal spawner dependency is required")
	}
	if cfg.WaitAttempts <= 0 {
		cfg.WaitAttempts = 50
	}
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = 100 * time.Millisecond
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &service{
		cfg:     cfg,
		wm:      deps.WM,
		stores:  deps.Stores,
		state:   deps.State,
		spawner: deps.Spawner,
		logger:  logger,
	}, nil
}

// focusedWorkspace resolves the focused workspace into the label used
// as state key and its number used for tree lookups.
func (s *service) focusedWorkspace(ctx context.Context) (schema.WorkspaceLabel, int, error) {
	ws, err := s.wm.FocusedWorkspace(ctx)
	if err != nil {
		return "", 0, err
	}
	return schema.WorkspaceLabel(strconv.Itoa(ws.Num)), ws.Num, nil
}

// markHost is the host portion of a window mark: the literal "local"
// for local sessions so the mark format stays two-part.
func markHost(host schema.HostRef) string {
	if host.IsLocal() {
		return string(schema.LocalHost)
	}
	return string(host)
}

func normalizeHost(host schema.HostRef) schema.HostRef {
	if host.IsLocal() {
		return schema.LocalHost
	}
	return host
}

func (s *service) openStore(host schema.HostRef) (session.Store, error) {
	return s.stores(host)
}
