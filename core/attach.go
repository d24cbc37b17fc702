package core

import (
	"context"
	"fmt"
	"slices"

	"pkt.systems/wsmux/internal/logx"
	"pkt.systems/wsmux/internal/workspacestate"
	"pkt.systems/wsmux/layout"
	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/session"
	"pkt.systems/wsmux/wm"
)

// Attach restores a saved session into the focused workspace: it takes
// the session lock, replays the layout by interleaving terminal spawns
// with structural directives, then records the binding. When the
// request names no session and several exist, the response carries the
// candidates instead and nothing is touched.
func (s *service) Attach(ctx context.Context, req schema.AttachRequest) (schema.AttachResponse, error) {
	host := normalizeHost(req.Host)
	store, err := s.openStore(host)
	if err != nil {
		return schema.AttachResponse{}, err
	}

	names, err := store.List(ctx)
	if err != nil {
		return schema.AttachResponse{}, err
	}
	if len(names) == 0 {
		return schema.AttachResponse{}, fmt.Errorf("%w on %s", schema.ErrNoSessions, host)
	}

	var name schema.SessionName
	switch {
	case req.Session != "":
		if !slices.Contains(names, string(req.Session)) {
			return schema.AttachResponse{}, fmt.Errorf("%w: %q on %s", schema.ErrSessionNotFound, req.Session, host)
		}
		name = req.Session
	case len(names) == 1:
		name, err = schema.ParseSessionName(names[0])
		if err != nil {
			return schema.AttachResponse{}, err
		}
	default:
		return schema.AttachResponse{Candidates: names}, nil
	}

	sess, err := store.Load(ctx, name)
	if err != nil {
		return schema.AttachResponse{}, err
	}

	label, num, err := s.focusedWorkspace(ctx)
	if err != nil {
		return schema.AttachResponse{}, err
	}
	managed, err := s.wm.CollectMarkedIn(ctx, num)
	if err != nil {
		return schema.AttachResponse{}, err
	}
	if len(managed) > 0 {
		return schema.AttachResponse{}, fmt.Errorf("%w: workspace %s", schema.ErrWorkspaceOccupied, label)
	}

	lock, handle, err := store.AcquireLock(ctx, name, req.Force)
	if err != nil {
		return schema.AttachResponse{}, err
	}

	log := logx.WithSessionWorkspace(ctx, name, label)
	log.Info("lock acquired", "host", host, "owner", lock.LockedBy)

	sockets := sess.Layout.Root.Sockets()
	commands := layout.Commands(sess.Layout.Root)
	mh := markHost(host)
	for i, socket := range sockets {
		instance := wm.Mark(mh, socket)
		if err := s.spawner.Spawn(ctx, instance, s.attachCommand(host, socket)); err != nil {
			s.abortAttach(ctx, store, name, handle)
			return schema.AttachResponse{}, err
		}
		if _, err := s.wm.WaitAndMark(ctx, instance, mh, socket, s.cfg.WaitAttempts, s.cfg.WaitInterval); err != nil {
			s.abortAttach(ctx, store, name, handle)
			return schema.AttachResponse{}, err
		}
		if i < len(commands) {
			if err := s.wm.RunCommand(ctx, commands[i]); err != nil {
				s.abortAttach(ctx, store, name, handle)
				return schema.AttachResponse{}, err
			}
		}
	}

	sess.Lock = &lock
	if err := store.Save(ctx, sess); err != nil {
		s.abortAttach(ctx, store, name, handle)
		return schema.AttachResponse{}, err
	}

	entry := workspacestate.Entry{
		Host:    host,
		Session: name,
		Sockets: sockets,
	}
	if handle != nil {
		entry.LockHolderPID = handle.PID()
	}
	if err := s.state.Put(label, entry); err != nil {
		return schema.AttachResponse{}, err
	}
	log.Info("session attached", "terminals", len(sockets))

	return schema.AttachResponse{
		Session:   name,
		Workspace: label,
		Terminals: len(sockets),
	}, nil
}

// abortAttach releases a lock taken for an attach that failed midway.
// The spawned windows are left alone: their shells are already attached
// to live sockets and killing them could lose work.
func (s *service) abortAttach(ctx context.Context, store session.Store, name schema.SessionName, handle session.LockHandle) {
	if handle != nil {
		if err := handle.Terminate(); err != nil && s.logger != nil {
			s.logger.Warn("failed to stop lock holder", "session", name, "err", err)
		}
	}
	if err := store.ReleaseLock(ctx, name); err != nil && s.logger != nil {
		s.logger.Warn("failed to release session lock", "session", name, "err", err)
	}
}
