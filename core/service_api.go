package core

import (
	"context"

	"pkt.systems/wsmux/schema"
)

// Service is the transport-agnostic API for managing workspace sessions.
type Service interface {
	Activate(ctx context.Context, req schema.ActivateRequest) (schema.ActivateResponse, error)
	Detach(ctx context.Context, req schema.DetachRequest) (schema.DetachResponse, error)
	Attach(ctx context.Context, req schema.AttachRequest) (schema.AttachResponse, error)
	Sessions(ctx context.Context, req schema.SessionsRequest) (schema.SessionsResponse, error)
	Kill(ctx context.Context, req schema.KillRequest) (schema.KillResponse, error)
	SpawnTerminal(ctx context.Context, req schema.SpawnTerminalRequest) (schema.SpawnTerminalResponse, error)
}
