package core

import (
	"context"

	"pkt.systems/wsmux/internal/logx"
	"pkt.systems/wsmux/schema"
)

// Kill deletes a session's durable record. It never touches live
// windows or running shells, and deleting a session that is already
// gone succeeds.
func (s *service) Kill(ctx context.Context, req schema.KillRequest) (schema.KillResponse, error) {
	host := normalizeHost(req.Host)
	store, err := s.openStore(host)
	if err != nil {
		return schema.KillResponse{}, err
	}
	if err := store.Delete(ctx, req.Session); err != nil {
		return schema.KillResponse{}, err
	}
	log := logx.WithSession(ctx, req.Session)
	log.Info("session deleted", "host", host)
	return schema.KillResponse{Session: req.Session}, nil
}
