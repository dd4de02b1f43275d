// Package xmltree parses XML documents into structural skeletons.
//
// A skeleton keeps element names, attribute KEYS, and child order.
// Attribute values, text content, comments, and processing
// instructions are discarded at parse time: two documents that differ
// only in content produce identical trees.
package xmltree

// Node is one element in a structural skeleton.
type Node struct {
	// Name is the element name. With the default options this is the
	// local name; with KeepNamespace set it is "namespaceURI:local".
	Name string

	// AttrKeys holds the element's attribute keys, sorted
	// lexicographically and deduplicated. Values are never retained.
	AttrKeys []string

	// Children holds child elements in document order. Sibling order
	// is structurally significant.
	Children []*Node
}

// Count returns the number of elements in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Depth returns the height of the subtree rooted at n. A leaf has
// depth 1.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	max := 0
	for _, c := range n.Children {
		if d := c.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}
