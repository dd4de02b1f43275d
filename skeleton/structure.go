package skeleton

import "github.com/quenby/xskel/xmltree"

// Structure is the report-facing JSON shape of a tree: element name,
// attribute keys as a mapping to null, children recursively. Empty
// sections are omitted. encoding/json sorts map keys, so serialization
// is deterministic.
type Structure struct {
	Name       string                 `json:"name" yaml:"name"`
	Attributes map[string]interface{} `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Children   []*Structure           `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewStructure converts a tree into its report shape.
func NewStructure(n *xmltree.Node) *Structure {
	if n == nil {
		return nil
	}

	s := &Structure{Name: n.Name}

	if len(n.AttrKeys) > 0 {
		s.Attributes = make(map[string]interface{}, len(n.AttrKeys))
		for _, key := range n.AttrKeys {
			s.Attributes[key] = nil
		}
	}

	if len(n.Children) > 0 {
		s.Children = make([]*Structure, len(n.Children))
		for i, child := range n.Children {
			s.Children[i] = NewStructure(child)
		}
	}

	return s
}
