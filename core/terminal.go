package core

import (
	"context"

	"pkt.systems/wsmux/internal/logx"
	"pkt.systems/wsmux/schema"
	"pkt.systems/wsmux/wm"
)

// SpawnTerminal opens one more terminal in the focused workspace. On a
// bound workspace the terminal attaches to a freshly allocated socket
// and its window is marked; on an unbound one a plain terminal is
// launched and nothing is tracked.
func (s *service) SpawnTerminal(ctx context.Context, req schema.SpawnTerminalRequest) (schema.SpawnTerminalResponse, error) {
	label, _, err := s.focusedWorkspace(ctx)
	if err != nil {
		return schema.SpawnTerminalResponse{}, err
	}
	entry, ok, err := s.state.Get(label)
	if err != nil {
		return schema.SpawnTerminalResponse{}, err
	}
	if !ok {
		if err := s.spawner.SpawnPlain(ctx); err != nil {
			return schema.SpawnTerminalResponse{}, err
		}
		return schema.SpawnTerminalResponse{}, nil
	}

	// The allocation is recorded before the spawn so a crash cannot
	// reuse a socket id.
	socket := entry.NextSocket(label)
	entry.Sockets = append(entry.Sockets, socket)
	if err := s.state.Put(label, entry); err != nil {
		return schema.SpawnTerminalResponse{}, err
	}

	mh := markHost(entry.Host)
	instance := wm.Mark(mh, socket)
	if err := s.spawner.Spawn(ctx, instance, s.attachCommand(entry.Host, socket)); err != nil {
		return schema.SpawnTerminalResponse{}, err
	}
	window, err := s.wm.WaitAndMark(ctx, instance, mh, socket, s.cfg.WaitAttempts, s.cfg.WaitInterval)
	if err != nil {
		return schema.SpawnTerminalResponse{}, err
	}

	log := logx.WithSessionWorkspace(ctx, entry.Session, label)
	log.Info("terminal spawned", "socket", socket, "window", window)
	return schema.SpawnTerminalResponse{Socket: socket, Window: window}, nil
}
