package schema

// Lifecycle operations.

// ActivateRequest binds the focused workspace to a new session.
type ActivateRequest struct {
	Host    HostRef
	Session SessionName
}

// ActivateResponse reports the bound workspace.
type ActivateResponse struct {
	Workspace WorkspaceLabel
	Host      HostRef
}

// DetachRequest captures and persists the focused workspace, then
// tears its managed windows down.
type DetachRequest struct {
	Session SessionName
}

// DetachResponse reports what was saved.
type DetachResponse struct {
	Session   SessionName
	Host      HostRef
	Workspace WorkspaceLabel
	Terminals int
}

// AttachRequest restores a saved session into the focused workspace.
type AttachRequest struct {
	Host    HostRef
	Session SessionName
	Force   bool
}

// AttachResponse reports the restored session. When the request named
// no session and several exist, Candidates carries their names and no
// attach has happened; the caller disambiguates (exit code 2 on the
// CLI so pickers can special-case it).
type AttachResponse struct {
	Session    SessionName
	Workspace  WorkspaceLabel
	Terminals  int
	Candidates []string
}

// KillRequest deletes a session's durable record. It does not touch
// live windows.
type KillRequest struct {
	Host    HostRef
	Session SessionName
}

// KillResponse acknowledges the deletion.
type KillResponse struct {
	Session SessionName
}

// SessionsRequest lists sessions stored on a host.
type SessionsRequest struct {
	Host HostRef
}

// SessionInfo describes one stored session for display.
type SessionInfo struct {
	Name      SessionName
	Terminals int
	Locked    bool
	Stale     bool
	LockedBy  string
}

// SessionsResponse reports stored sessions.
type SessionsResponse struct {
	Host     HostRef
	Sessions []SessionInfo
}

// SpawnTerminalRequest opens one more terminal in the focused
// workspace, allocating the next socket id when the workspace is
// bound.
type SpawnTerminalRequest struct{}

// SpawnTerminalResponse reports the spawned terminal. Socket is empty
// when the workspace was unbound and a plain terminal was launched.
type SpawnTerminalResponse struct {
	Socket string
	Window int64
}
