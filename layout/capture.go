package layout

import "pkt.systems/wsmux/wm"

// CaptureWorkspace converts a window manager workspace node into a
// layout tree. Only windows carrying a wsmux mark become leaves;
// everything else is pruned, and containers left with no surviving
// children vanish with their subtree, so foreign windows interleaved
// with managed ones at any depth never reach the persisted record.
// Returns nil when the workspace holds no managed terminals.
func CaptureWorkspace(ws *wm.TreeNode) Node {
	if ws == nil {
		return nil
	}
	return captureNode(ws)
}

func captureNode(n *wm.TreeNode) Node {
	if id, ok := n.Identity(); ok {
		return &Terminal{Socket: id.Socket, Percent: n.Percent}
	}

	var children []Node
	// Floating children join the same ordered sequence as tiled ones.
	for _, child := range n.Nodes {
		if captured := captureNode(child); captured != nil {
			children = append(children, captured)
		}
	}
	for _, child := range n.FloatingNodes {
		if captured := captureNode(child); captured != nil {
			children = append(children, captured)
		}
	}
	if len(children) == 0 {
		return nil
	}

	c := &Container{Kind: kindFromWM(n.Layout), Children: children}
	switch c.Kind {
	case HSplit, VSplit:
		c.Percent = n.Percent
	}
	return c
}

// kindFromWM maps the window manager's layout designator. Live state
// may carry designators wsmux does not reproduce ("output",
// "dockarea"); those default to a vertical split. The persistence
// decoder is stricter — see Tree.UnmarshalJSON.
func kindFromWM(layout string) Kind {
	switch layout {
	case "splith":
		return HSplit
	case "splitv":
		return VSplit
	case "tabbed":
		return Tabbed
	case "stacked":
		return Stacked
	default:
		return VSplit
	}
}
