package layout

import (
	"reflect"
	"testing"

	"pkt.systems/wsmux/wm"
)

func managedWindow(window int64, socket string, percent *float64) *wm.TreeNode {
	return &wm.TreeNode{
		Window:  window,
		Percent: percent,
		Marks:   []string{wm.Mark("deepthought", socket)},
	}
}

func TestCaptureWorkspaceSimpleSplit(t *testing.T) {
	ws := &wm.TreeNode{
		Type:   "workspace",
		Layout: "splith",
		Nodes: []*wm.TreeNode{
			managedWindow(1, "ws1-001", pct(0.5)),
			managedWindow(2, "ws1-002", pct(0.5)),
		},
	}
	root := CaptureWorkspace(ws)
	container, ok := root.(*Container)
	if !ok {
		t.Fatalf("expected container root, got %T", root)
	}
	if container.Kind != HSplit {
		t.Fatalf("expected hsplit, got %s", container.Kind)
	}
	want := []string{"ws1-001", "ws1-002"}
	if got := root.Sockets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sockets: got %v, want %v", got, want)
	}
}

func TestCaptureWorkspacePrunesForeignWindows(t *testing.T) {
	ws := &wm.TreeNode{
		Type:   "workspace",
		Layout: "splitv",
		Nodes: []*wm.TreeNode{
			{Window: 10, Name: "firefox"},
			managedWindow(1, "ws1-001", nil),
			{
				Layout: "splith",
				Nodes: []*wm.TreeNode{
					{Window: 11, Name: "gimp"},
				},
			},
			managedWindow(2, "ws1-002", nil),
		},
	}
	root := CaptureWorkspace(ws)
	if root == nil {
		t.Fatalf("expected captured layout")
	}
	want := []string{"ws1-001", "ws1-002"}
	if got := root.Sockets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sockets: got %v, want %v", got, want)
	}
	// The foreign-only subtree must vanish entirely.
	container := root.(*Container)
	if len(container.Children) != 2 {
		t.Fatalf("expected 2 children after pruning, got %d", len(container.Children))
	}
}

func TestCaptureWorkspaceNoManagedTerminals(t *testing.T) {
	ws := &wm.TreeNode{
		Type:   "workspace",
		Layout: "splith",
		Nodes: []*wm.TreeNode{
			{Window: 10, Name: "firefox"},
		},
	}
	if root := CaptureWorkspace(ws); root != nil {
		t.Fatalf("expected nil for workspace without managed terminals, got %v", root.Sockets())
	}
	if root := CaptureWorkspace(nil); root != nil {
		t.Fatalf("expected nil for nil workspace")
	}
}

func TestCaptureWorkspaceIncludesFloating(t *testing.T) {
	ws := &wm.TreeNode{
		Type:   "workspace",
		Layout: "splith",
		Nodes: []*wm.TreeNode{
			managedWindow(1, "ws1-001", nil),
		},
		FloatingNodes: []*wm.TreeNode{
			managedWindow(2, "ws1-002", nil),
		},
	}
	root := CaptureWorkspace(ws)
	want := []string{"ws1-001", "ws1-002"}
	if got := root.Sockets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sockets: got %v, want %v", got, want)
	}
}

func TestCaptureWorkspaceTabbedAndUnknownLayouts(t *testing.T) {
	ws := &wm.TreeNode{
		Type:   "workspace",
		Layout: "splitv",
		Nodes: []*wm.TreeNode{
			{
				Layout: "tabbed",
				Nodes: []*wm.TreeNode{
					managedWindow(1, "ws1-001", nil),
					managedWindow(2, "ws1-002", nil),
				},
			},
			{
				Layout: "dockarea",
				Nodes: []*wm.TreeNode{
					managedWindow(3, "ws1-003", nil),
				},
			},
		},
	}
	root := CaptureWorkspace(ws).(*Container)
	tab, ok := root.Children[0].(*Container)
	if !ok || tab.Kind != Tabbed {
		t.Fatalf("expected tabbed child, got %+v", root.Children[0])
	}
	unknown, ok := root.Children[1].(*Container)
	if !ok || unknown.Kind != VSplit {
		t.Fatalf("expected unknown layout to default to vsplit, got %+v", root.Children[1])
	}
}
