package xmltree

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"unicode"

	"github.com/quenby/xskel/errors"
)

// DefaultMaxDepth bounds element nesting. Canonicalization recurses
// over the tree, so the bound is enforced here, before any tree exists.
const DefaultMaxDepth = 512

// Options control how documents are reduced to skeletons.
type Options struct {
	// KeepNamespace keys element and attribute names by
	// "namespaceURI:local" instead of collapsing to the local name.
	// The resolved namespace URI is used rather than the prefix, so
	// documents that bind different prefixes to the same namespace
	// stay structurally equal.
	KeepNamespace bool

	// MaxDepth caps element nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Parse builds the structural skeleton of an XML document.
//
// The decoder walks the token stream with an explicit element stack.
// Character data, comments, processing instructions, and directives
// are skipped. Self-closing elements and explicitly closed empty
// elements yield the same tokens and therefore the same skeleton.
//
// All failures wrap errors.ErrParse: malformed markup, an empty
// document, content after the root element, and nesting beyond
// Options.MaxDepth.
func Parse(data []byte, opts Options) (*Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var stack []*Node
	var root *Node
	rootClosed := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse(err, "decode token")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, errors.NewParseError("unexpected element %q after document end", t.Name.Local)
			}
			if len(stack) >= opts.maxDepth() {
				return nil, errors.NewParseError("element nesting exceeds depth limit %d", opts.maxDepth())
			}
			node := &Node{
				Name:     elementName(t.Name, opts),
				AttrKeys: attrKeys(t.Attr, opts),
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else {
				root = node
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 && root != nil {
					rootClosed = true
				}
			}

		case xml.CharData:
			// Text never contributes to the skeleton, but non-whitespace
			// content outside the root element means the input is not a
			// single well-formed document.
			if len(stack) == 0 && !isIgnorableOutsideRoot(string(t)) {
				return nil, errors.NewParseError("unexpected character data outside root element")
			}
		}
	}

	if root == nil {
		return nil, errors.NewParseError("no root element")
	}

	return root, nil
}

// isIgnorableOutsideRoot accepts whitespace and a UTF-8 BOM between
// the prolog, the root element, and EOF.
func isIgnorableOutsideRoot(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func elementName(name xml.Name, opts Options) string {
	if opts.KeepNamespace && name.Space != "" {
		return name.Space + ":" + name.Local
	}
	return name.Local
}

// attrKeys extracts sorted, deduplicated attribute keys.
//
// Namespace declarations stay distinguishable after collapsing:
// xmlns:tei keeps its "xmlns:" prefix so it cannot collide with an
// ordinary attribute named "tei".
func attrKeys(attrs []xml.Attr, opts Options) []string {
	if len(attrs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			keys = append(keys, "xmlns:"+a.Name.Local)
		case a.Name.Space == "" || !opts.KeepNamespace:
			keys = append(keys, a.Name.Local)
		default:
			keys = append(keys, a.Name.Space+":"+a.Name.Local)
		}
	}

	sort.Strings(keys)

	// Collapsing namespaces can fold distinct attributes onto one key.
	out := keys[:1]
	for _, k := range keys[1:] {
		if k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return out
}
