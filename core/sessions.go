package core

import (
	"context"

	"pkt.systems/wsmux/internal/logx"
	"pkt.systems/wsmux/schema"
)

// Sessions lists the sessions stored on a host with their lock status.
// Records that cannot be read are skipped with a warning rather than
// failing the whole listing.
func (s *service) Sessions(ctx context.Context, req schema.SessionsRequest) (schema.SessionsResponse, error) {
	host := normalizeHost(req.Host)
	store, err := s.openStore(host)
	if err != nil {
		return schema.SessionsResponse{}, err
	}
	names, err := store.List(ctx)
	if err != nil {
		return schema.SessionsResponse{}, err
	}

	log := logx.Ctx(ctx)
	infos := make([]schema.SessionInfo, 0, len(names))
	for _, raw := range names {
		name, err := schema.ParseSessionName(raw)
		if err != nil {
			log.Warn("skipping session with unusable name", "name", raw, "err", err)
			continue
		}
		sess, err := store.Load(ctx, name)
		if err != nil {
			log.Warn("skipping unreadable session record", "session", name, "err", err)
			continue
		}
		info := schema.SessionInfo{
			Name:      name,
			Terminals: len(sess.Layout.Root.Sockets()),
		}
		if sess.Lock != nil {
			valid, err := store.IsLockValid(ctx, *sess.Lock)
			if err != nil {
				log.Warn("could not probe session lock", "session", name, "err", err)
			} else {
				info.Locked = valid
				info.Stale = !valid
				info.LockedBy = sess.Lock.LockedBy
			}
		}
		infos = append(infos, info)
	}
	return schema.SessionsResponse{Host: host, Sessions: infos}, nil
}
