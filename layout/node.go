// Package layout models a workspace's split/tab/stack arrangement of
// managed terminals as a serializable tree and derives the ordered
// window-manager commands that reproduce it.
package layout

// Kind names a container arrangement. The values double as the JSON
// discriminant, so they are part of the persisted wire format.
type Kind string

const (
	HSplit  Kind = "hsplit"
	VSplit  Kind = "vsplit"
	Tabbed  Kind = "tabbed"
	Stacked Kind = "stacked"
)

// Node is one node of a layout tree: a Container or a Terminal.
type Node interface {
	// Sockets flattens the terminal socket ids below the node in
	// depth-first, left-to-right order. That order is load-bearing: it
	// drives sequential restoration.
	Sockets() []string

	appendSockets(out []string) []string
	appendCommands(depth int, out []string) []string
}

// Container groups child nodes. Child order reproduces the window
// manager's left-to-right / top-to-bottom / tab order. A container
// always has at least one child; capture never constructs an empty
// one.
type Container struct {
	Kind     Kind
	Children []Node
	Percent  *float64
}

// Terminal is a leaf: one managed terminal, identified by its socket
// id, the only identity that survives detach and attach.
type Terminal struct {
	Socket  string
	Percent *float64
}

func (c *Container) Sockets() []string { return c.appendSockets(nil) }
func (t *Terminal) Sockets() []string  { return t.appendSockets(nil) }

func (c *Container) appendSockets(out []string) []string {
	for _, child := range c.Children {
		out = child.appendSockets(out)
	}
	return out
}

func (t *Terminal) appendSockets(out []string) []string {
	return append(out, t.Socket)
}

// Commands derives the ordered directives that rebuild the tree. The
// caller interleaves them with terminal spawns positionally: spawn
// terminal i, then apply directive i (when one exists) before spawning
// terminal i+1. Splits are emitted before every child after the first;
// tabbed/stacked containers emit a single layout directive before
// their children, and only below the root, since the workspace
// container picks its arrangement up implicitly.
func Commands(root Node) []string {
	return root.appendCommands(0, nil)
}

func (c *Container) appendCommands(depth int, out []string) []string {
	switch c.Kind {
	case HSplit, VSplit:
		directive := "split v"
		if c.Kind == HSplit {
			directive = "split h"
		}
		for i, child := range c.Children {
			if i > 0 {
				out = append(out, directive)
			}
			out = child.appendCommands(depth+1, out)
		}
	case Tabbed, Stacked:
		if depth > 0 {
			directive := "layout tabbed"
			if c.Kind == Stacked {
				directive = "layout stacking"
			}
			out = append(out, directive)
		}
		for _, child := range c.Children {
			out = child.appendCommands(depth+1, out)
		}
	}
	return out
}

func (t *Terminal) appendCommands(depth int, out []string) []string {
	// Spawning is the caller's job; a leaf contributes no directive.
	return out
}
