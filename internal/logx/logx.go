package logx

import (
	"context"

	"pkt.systems/pslog"

	"pkt.systems/wsmux/schema"
)

type contextKey int

const (
	sessionKey contextKey = iota
	workspaceKey
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSession annotates the logger with the session name if present.
func WithSession(ctx context.Context, name schema.SessionName) pslog.Logger {
	log := pslog.Ctx(ctx)
	if name != "" {
		if current, ok := ctx.Value(sessionKey).(schema.SessionName); ok && current == name {
			return log
		}
		log = log.With("session", name)
	}
	return log
}

// WithSessionWorkspace annotates the logger with session and workspace identifiers.
func WithSessionWorkspace(ctx context.Context, name schema.SessionName, label schema.WorkspaceLabel) pslog.Logger {
	log := WithSession(ctx, name)
	if label != "" {
		if current, ok := ctx.Value(workspaceKey).(schema.WorkspaceLabel); ok && current == label {
			return log
		}
		log = log.With("workspace", label)
	}
	return log
}

// WithHost annotates the logger with a host ref when available.
func WithHost(log pslog.Logger, host schema.HostRef) pslog.Logger {
	if host != "" {
		log = log.With("host", host)
	}
	return log
}

// ContextWithSession stores the session marker on the context for log de-duplication.
func ContextWithSession(ctx context.Context, name schema.SessionName) context.Context {
	if ctx == nil || name == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, name)
}

// ContextWithWorkspace stores the workspace marker on the context for log de-duplication.
func ContextWithWorkspace(ctx context.Context, label schema.WorkspaceLabel) context.Context {
	if ctx == nil || label == "" {
		return ctx
	}
	return context.WithValue(ctx, workspaceKey, label)
}

// ContextWithSessionLogger attaches the logger and session marker to the context.
func ContextWithSessionLogger(ctx context.Context, log pslog.Logger, name schema.SessionName) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithSession(ctx, name)
}
