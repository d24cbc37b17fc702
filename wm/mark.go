// Package wm drives an i3 or Sway window manager through its msg
// client and identifies the windows wsmux manages.
//
// Managed windows carry a mark of the form
//
//	_wsmux:{host}:{socket}
//
// The leading underscore keeps the mark out of the title bar. The same
// string doubles as the window's WM_CLASS instance, set at spawn time,
// so a freshly created window can be found before it has been marked.
package wm

import "strings"

// MarkPrefix starts every mark applied to a managed window.
const MarkPrefix = "_wsmux:"

// WindowIdentity ties a window-manager window to the terminal socket
// it hosts.
type WindowIdentity struct {
	Window int64
	Host   string
	Socket string
}

// Mark renders the mark/instance string for a host and socket. It is
// deterministic: the instance set at spawn and the mark applied after
// must be byte-identical for later discovery to work.
func Mark(host, socket string) string {
	return MarkPrefix + host + ":" + socket
}

// Mark renders the identity's mark string.
func (w WindowIdentity) Mark() string {
	return Mark(w.Host, w.Socket)
}

// ParseMark decodes a mark string. It reports false for anything that
// does not start with the exact prefix or whose body is not exactly
// host:socket (the host may contain '@' for user@host, never ':').
func ParseMark(mark string) (WindowIdentity, bool) {
	body, ok := strings.CutPrefix(mark, MarkPrefix)
	if !ok {
		return WindowIdentity{}, false
	}
	parts := strings.Split(body, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return WindowIdentity{}, false
	}
	return WindowIdentity{Host: parts[0], Socket: parts[1]}, true
}
