package schema

import (
	"fmt"
	"strings"
)

// SessionName identifies a durable session on a host.
type SessionName string

// WorkspaceLabel identifies a local window-manager workspace.
type WorkspaceLabel string

// HostRef identifies a remote host, optionally as user@host. The empty
// string means localhost.
type HostRef string

// LocalHost is the host value recorded for sessions that never leave
// the local machine.
const LocalHost HostRef = "local"

// IsLocal reports whether the ref addresses the local machine.
func (h HostRef) IsLocal() bool {
	return h == "" || h == LocalHost
}

// ParseSessionName validates a session name at the CLI boundary.
// Validated names are safe to interpolate into shell commands.
func ParseSessionName(name string) (SessionName, error) {
	if name == "" {
		return "", fmt.Errorf("%w: session name cannot be empty", ErrInvalidInput)
	}
	for _, r := range name {
		if !isWordRune(r) {
			return "", fmt.Errorf("%w: session name %q: only alphanumerics, hyphens and underscores are allowed", ErrInvalidInput, name)
		}
	}
	return SessionName(name), nil
}

// ParseHostRef validates a host or user@host string at the CLI
// boundary. Validated refs are safe to interpolate into ssh commands.
func ParseHostRef(host string) (HostRef, error) {
	if host == "" {
		return "", fmt.Errorf("%w: host cannot be empty", ErrInvalidInput)
	}
	user, hostname, hasUser := strings.Cut(host, "@")
	if !hasUser {
		hostname = host
		user = ""
	}
	if hasUser {
		if user == "" {
			return "", fmt.Errorf("%w: empty username in %q", ErrInvalidInput, host)
		}
		for _, r := range user {
			if !isWordRune(r) {
				return "", fmt.Errorf("%w: username in %q: only alphanumerics, hyphens and underscores are allowed", ErrInvalidInput, host)
			}
		}
	}
	if hostname == "" {
		return "", fmt.Errorf("%w: empty hostname in %q", ErrInvalidInput, host)
	}
	for _, r := range hostname {
		if !isWordRune(r) && r != '.' {
			return "", fmt.Errorf("%w: hostname in %q: only alphanumerics, hyphens, dots and underscores are allowed", ErrInvalidInput, host)
		}
	}
	return HostRef(host), nil
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
