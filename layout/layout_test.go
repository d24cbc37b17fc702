package layout

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func pct(v float64) *float64 { return &v }

func TestSocketsDepthFirstOrder(t *testing.T) {
	root := &Container{
		Kind: VSplit,
		Children: []Node{
			&Terminal{Socket: "ws1-001"},
			&Container{
				Kind: HSplit,
				Children: []Node{
					&Terminal{Socket: "ws1-002"},
					&Terminal{Socket: "ws1-003"},
				},
			},
			&Terminal{Socket: "ws1-004"},
		},
	}
	want := []string{"ws1-001", "ws1-002", "ws1-003", "ws1-004"}
	if got := root.Sockets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sockets: got %v, want %v", got, want)
	}
}

func TestCommandsTwoTerminalHSplit(t *testing.T) {
	root := &Container{
		Kind: HSplit,
		Children: []Node{
			&Terminal{Socket: "a"},
			&Terminal{Socket: "b"},
		},
	}
	want := []string{"split h"}
	if got := Commands(root); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands: got %v, want %v", got, want)
	}
}

func TestCommandsNestedSplits(t *testing.T) {
	root := &Container{
		Kind: VSplit,
		Children: []Node{
			&Terminal{Socket: "a"},
			&Container{
				Kind: HSplit,
				Children: []Node{
					&Terminal{Socket: "b"},
					&Terminal{Socket: "c"},
				},
			},
		},
	}
	// The split directive precedes every child after the first.
	want := []string{"split v", "split h"}
	if got := Commands(root); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands: got %v, want %v", got, want)
	}
}

func TestCommandsTabbedAtRootEmitsNoLayout(t *testing.T) {
	root := &Container{
		Kind: Tabbed,
		Children: []Node{
			&Terminal{Socket: "a"},
			&Terminal{Socket: "b"},
		},
	}
	if got := Commands(root); len(got) != 0 {
		t.Fatalf("expected no directives for root tabbed container, got %v", got)
	}
}

func TestCommandsTabbedBelowRoot(t *testing.T) {
	root := &Container{
		Kind: VSplit,
		Children: []Node{
			&Terminal{Socket: "a"},
			&Container{
				Kind: Tabbed,
				Children: []Node{
					&Terminal{Socket: "b"},
					&Terminal{Socket: "c"},
				},
			},
		},
	}
	want := []string{"split v", "layout tabbed"}
	if got := Commands(root); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands: got %v, want %v", got, want)
	}
}

func TestCommandsStackedBelowRoot(t *testing.T) {
	root := &Container{
		Kind: HSplit,
		Children: []Node{
			&Terminal{Socket: "a"},
			&Container{
				Kind: Stacked,
				Children: []Node{
					&Terminal{Socket: "b"},
				},
			},
		},
	}
	want := []string{"split h", "layout stacking"}
	if got := Commands(root); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands: got %v, want %v", got, want)
	}
}

func TestTreeJSONRoundTrip(t *testing.T) {
	tree := Tree{Root: &Container{
		Kind:    VSplit,
		Percent: pct(1.0),
		Children: []Node{
			&Terminal{Socket: "ws1-001", Percent: pct(0.5)},
			&Container{
				Kind: Tabbed,
				Children: []Node{
					&Terminal{Socket: "ws1-002"},
					&Terminal{Socket: "ws1-003"},
				},
			},
		},
	}}
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Tree
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(tree.Root.Sockets(), got.Root.Sockets()) {
		t.Fatalf("socket order changed: %v vs %v", tree.Root.Sockets(), got.Root.Sockets())
	}
	if !reflect.DeepEqual(Commands(tree.Root), Commands(got.Root)) {
		t.Fatalf("directives changed across round trip")
	}
}

func TestTreeMarshalOmitsPercentForTabbed(t *testing.T) {
	tree := Tree{Root: &Container{
		Kind:    Tabbed,
		Percent: pct(0.7),
		Children: []Node{
			&Terminal{Socket: "a"},
		},
	}}
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "percent") {
		t.Fatalf("tabbed container should not carry percent: %s", data)
	}
}

func TestTreeUnmarshalRejections(t *testing.T) {
	cases := map[string]string{
		"unknown type":       `{"type": "spiral", "children": [{"type": "terminal", "socket": "a"}]}`,
		"missing type":       `{"socket": "a"}`,
		"terminal no socket": `{"type": "terminal"}`,
		"empty container":    `{"type": "hsplit"}`,
	}
	for name, input := range cases {
		var tree Tree
		if err := json.Unmarshal([]byte(input), &tree); err == nil {
			t.Fatalf("%s: expected error for %s", name, input)
		}
	}
}

func TestTreeMarshalEmpty(t *testing.T) {
	if _, err := json.Marshal(Tree{}); err == nil {
		t.Fatalf("expected error for empty tree")
	}
}
