package main

import (
	"context"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/core"
	"pkt.systems/wsmux/internal/appconfig"
	"pkt.systems/wsmux/internal/workspacestate"
	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/session"
	"pkt.systems/wsmux/transport"
	"pkt.systems/wsmux/wm"
)

// buildService wires the core service from configuration: the live
// window manager backend, a per-host session store provider and the
// exec-backed terminal spawner.
func buildService(ctx context.Context, cfgPath string) (core.Service, error) {
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger := pslog.Ctx(ctx)

	backend, err := wm.Connect(logger)
	if err != nil {
		return nil, err
	}
	state, err := workspacestate.NewStore(cfg.StateDir, logger)
	if err != nil {
		return nil, err
	}

	sshOpts := transport.Options{
		ControlPath:    cfg.SSH.ControlPath,
		ControlPersist: cfg.SSH.ControlPersist,
		ConnectTimeout: time.Duration(cfg.SSH.ConnectTimeoutSeconds) * time.Second,
	}
	stores := func(host schema.HostRef) (session.Store, error) {
		storeCfg := session.Config{
			BaseDir:           cfg.BaseDir,
			SSH:               sshOpts,
			LockWait:          time.Duration(cfg.Lock.AcquireWaitMS) * time.Millisecond,
			HeartbeatInterval: time.Duration(cfg.Lock.HeartbeatIntervalSeconds) * time.Second,
		}
		if !host.IsLocal() {
			storeCfg.BaseDir = cfg.RemoteBaseDir
		}
		return session.NewStore(host, storeCfg, logger)
	}

	return core.NewService(core.Config{
		WaitAttempts: cfg.Terminal.WaitAttempts,
		WaitInterval: time.Duration(cfg.Terminal.WaitIntervalMS) * time.Millisecond,
		SSH:          sshOpts,
	}, core.ServiceDeps{
		WM:      backend,
		Stores:  stores,
		State:   state,
		Spawner: core.NewSpawner(cfg.Terminal.Command, logger),
		Logger:  logger,
	})
}

// parseHostFlag turns an optional --remote value into a host ref; empty
// means local.
func parseHostFlag(remote string) (schema.HostRef, error) {
	if remote == "" {
		return "", nil
	}
	return schema.ParseHostRef(remote)
}

// parseSessionFlag turns an optional --session value into a session
// name; empty stays empty.
func parseSessionFlag(name string) (schema.SessionName, error) {
	if name == "" {
		return "", nil
	}
	return schema.ParseSessionName(name)
}
