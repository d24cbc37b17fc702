package core

import (
	"context"
	"fmt"

	"pkt.systems/wsmux/internal/logx"
	"pkt.systems/wsmux/layout"
	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/wm"
)

// Detach captures the focused workspace's managed layout, persists it
// as a session on the workspace's host, then tears the local windows
// down. The live shells stay alive inside their abduco sockets on the
// host; only the local terminal windows die.
func (s *service) Detach(ctx context.Context, req schema.DetachRequest) (schema.DetachResponse, error) {
	label, num, err := s.focusedWorkspace(ctx)
	if err != nil {
		return schema.DetachResponse{}, err
	}
	entry, ok, err := s.state.Get(label)
	if err != nil {
		return schema.DetachResponse{}, err
	}
	if !ok {
		return schema.DetachResponse{}, fmt.Errorf("%w: workspace %s", schema.ErrWorkspaceNotBound, label)
	}
	if entry.Host.IsLocal() {
		return schema.DetachResponse{}, schema.ErrLocalDetach
	}

	tree, err := s.wm.Tree(ctx)
	if err != nil {
		return schema.DetachResponse{}, err
	}
	wsNode := wm.FindWorkspace(tree, num)
	if wsNode == nil {
		return schema.DetachResponse{}, fmt.Errorf("workspace %s not present in window manager tree", label)
	}
	root := layout.CaptureWorkspace(wsNode)
	if root == nil {
		return schema.DetachResponse{}, fmt.Errorf("%w: workspace %s", schema.ErrNoTerminals, label)
	}

	name := req.Session
	if name == "" {
		name = entry.Session
	}
	if name == "" {
		name, err = schema.ParseSessionName("ws" + string(label))
		if err != nil {
			return schema.DetachResponse{}, err
		}
	}

	sess := schema.Session{
		Name:      name,
		Workspace: label,
		Host:      entry.Host,
		Layout:    layout.Tree{Root: root},
	}
	store, err := s.openStore(entry.Host)
	if err != nil {
		return schema.DetachResponse{}, err
	}
	if err := store.Save(ctx, sess); err != nil {
		return schema.DetachResponse{}, err
	}
	terminals := len(root.Sockets())

	log := logx.WithSessionWorkspace(ctx, name, label)
	log.Info("session saved", "host", entry.Host, "terminals", terminals)

	// Teardown is best-effort: the session record is already durable,
	// so a window or lock that refuses to die must not fail the detach.
	killed, err := s.wm.KillMarkedIn(ctx, num)
	if err != nil {
		log.Warn("failed to close managed windows", "err", err)
	}
	if entry.LockHolderPID != 0 {
		if err := terminateHolder(entry.LockHolderPID); err != nil {
			log.Warn("failed to stop lock holder", "pid", entry.LockHolderPID, "err", err)
		}
	}
	if err := store.ReleaseLock(ctx, name); err != nil {
		log.Warn("failed to release session lock", "err", err)
	}
	if err := s.state.Delete(label); err != nil {
		log.Warn("failed to clear workspace state", "err", err)
	}
	log.Info("workspace detached", "windows_closed", killed)

	return schema.DetachResponse{
		Session:   name,
		Host:      entry.Host,
		Workspace: label,
		Terminals: terminals,
	}, nil
}
