package layout

import (
	"encoding/json"
	"fmt"
)

// Tree wraps a root node so the union can live inside other JSON
// documents. It marshals transparently as the node itself.
type Tree struct {
	Root Node
}

type nodeEnvelope struct {
	Type     string            `json:"type"`
	Children []json.RawMessage `json:"children,omitempty"`
	Socket   string            `json:"socket,omitempty"`
	Percent  *float64          `json:"percent,omitempty"`
}

// MarshalJSON encodes the tree with an explicit "type" discriminant
// per node.
func (t Tree) MarshalJSON() ([]byte, error) {
	if t.Root == nil {
		return nil, fmt.Errorf("layout: cannot encode empty tree")
	}
	return encodeNode(t.Root)
}

// UnmarshalJSON decodes a persisted tree. Unknown discriminants are
// rejected: defaulting them would mask format drift between versions.
func (t *Tree) UnmarshalJSON(data []byte) error {
	root, err := decodeNode(data)
	if err != nil {
		return err
	}
	t.Root = root
	return nil
}

func encodeNode(n Node) ([]byte, error) {
	switch node := n.(type) {
	case *Terminal:
		return json.Marshal(nodeEnvelope{Type: "terminal", Socket: node.Socket, Percent: node.Percent})
	case *Container:
		env := nodeEnvelope{Type: string(node.Kind)}
		switch node.Kind {
		case HSplit, VSplit:
			env.Percent = node.Percent
		case Tabbed, Stacked:
			// Tabbed and stacked containers carry no percent on the
			// wire.
		default:
			return nil, fmt.Errorf("layout: unknown container kind %q", node.Kind)
		}
		for _, child := range node.Children {
			raw, err := encodeNode(child)
			if err != nil {
				return nil, err
			}
			env.Children = append(env.Children, raw)
		}
		return json.Marshal(env)
	default:
		return nil, fmt.Errorf("layout: unknown node %T", n)
	}
}

func decodeNode(data []byte) (Node, error) {
	var env nodeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	switch env.Type {
	case "terminal":
		if env.Socket == "" {
			return nil, fmt.Errorf("layout: terminal node without socket")
		}
		return &Terminal{Socket: env.Socket, Percent: env.Percent}, nil
	case string(HSplit), string(VSplit), string(Tabbed), string(Stacked):
		if len(env.Children) == 0 {
			return nil, fmt.Errorf("layout: %s container without children", env.Type)
		}
		c := &Container{Kind: Kind(env.Type), Percent: env.Percent}
		for _, raw := range env.Children {
			child, err := decodeNode(raw)
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, child)
		}
		return c, nil
	case "":
		return nil, fmt.Errorf("layout: node without type discriminant")
	default:
		return nil, fmt.Errorf("layout: unknown node type %q", env.Type)
	}
}
