package core

import (
	"context"

	"pkt.systems/wsmux/internal/logx"
	"pkt.systems/wsmux/internal/workspacestate"
	"pkt.systems/wsmux/schema"
)

// Activate binds the focused workspace to a session target and opens
// its first terminal. Re-activating a bound workspace rebinds it and
// resets the socket bookkeeping.
func (s *service) Activate(ctx context.Context, req schema.ActivateRequest) (schema.ActivateResponse, error) {
	label, _, err := s.focusedWorkspace(ctx)
	if err != nil {
		return schema.ActivateResponse{}, err
	}
	host := normalizeHost(req.Host)
	entry := workspacestate.Entry{Host: host, Session: req.Session}
	if err := s.state.Put(label, entry); err != nil {
		return schema.ActivateResponse{}, err
	}
	log := logx.WithSessionWorkspace(ctx, req.Session, label)
	log.Info("workspace activated", "host", host)

	if _, err := s.SpawnTerminal(ctx, schema.SpawnTerminalRequest{}); err != nil {
		return schema.ActivateResponse{}, err
	}
	return schema.ActivateResponse{Workspace: label, Host: host}, nil
}
