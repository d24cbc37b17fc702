package wm

// TreeNode is one node of the window manager's container tree, as
// returned by `i3-msg -t get_tree` / `swaymsg -t get_tree`. Only the
// fields wsmux reads are declared.
type TreeNode struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	Layout           string            `json:"layout"`
	Percent          *float64          `json:"percent"`
	Num              int               `json:"num"`
	Marks            []string          `json:"marks"`
	Window           int64             `json:"window"`
	WindowProperties *WindowProperties `json:"window_properties"`
	Focused          bool              `json:"focused"`
	Nodes            []*TreeNode       `json:"nodes"`
	FloatingNodes    []*TreeNode       `json:"floating_nodes"`
}

// WindowProperties carries the X11 class hints of a window node.
type WindowProperties struct {
	Class    string `json:"class"`
	Instance string `json:"instance"`
}

// Workspace is one entry of `get_workspaces`.
type Workspace struct {
	Num     int    `json:"num"`
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
}

// Identity returns the managed identity of this node, if one of its
// marks parses as a wsmux mark.
func (n *TreeNode) Identity() (WindowIdentity, bool) {
	for _, mark := range n.Marks {
		if id, ok := ParseMark(mark); ok {
			id.Window = n.Window
			return id, true
		}
	}
	return WindowIdentity{}, false
}

// Each visits the node and all descendants depth-first, tiled children
// before floating ones, until visit returns false.
func (n *TreeNode) Each(visit func(*TreeNode) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, child := range n.Nodes {
		if !child.Each(visit) {
			return false
		}
	}
	for _, child := range n.FloatingNodes {
		if !child.Each(visit) {
			return false
		}
	}
	return true
}

// FindWorkspace locates the workspace node with the given number.
func FindWorkspace(root *TreeNode, num int) *TreeNode {
	var found *TreeNode
	root.Each(func(n *TreeNode) bool {
		if n.Type == "workspace" && n.Num == num {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByInstance locates a window whose WM_CLASS instance matches.
func FindByInstance(root *TreeNode, instance string) *TreeNode {
	var found *TreeNode
	root.Each(func(n *TreeNode) bool {
		if n.Window != 0 && n.WindowProperties != nil && n.WindowProperties.Instance == instance {
			found = n
			return false
		}
		return true
	})
	return found
}

// CollectMarked gathers the managed windows under a node, in tree
// order.
func CollectMarked(root *TreeNode) []WindowIdentity {
	var out []WindowIdentity
	root.Each(func(n *TreeNode) bool {
		if n.Window != 0 {
			if id, ok := n.Identity(); ok {
				out = append(out, id)
			}
		}
		return true
	})
	return out
}
