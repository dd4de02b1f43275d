// Package skeleton turns structural trees into canonical signatures.
//
// The canonical form is the ground truth for structural equivalence:
// two documents belong to the same group exactly when their canonical
// strings are byte-identical. The hash derived from the string is a
// cheap candidate filter, never an equality proof.
package skeleton

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/quenby/xskel/xmltree"
)

// Signature is the canonical structural identity of one document.
type Signature struct {
	// Canonical is the rendered form, e.g. "book[id,type]{title,year}".
	Canonical string

	// Hash is xxhash64 of Canonical. Seedless and stable across runs,
	// processes, and platforms, so reruns on unchanged input reproduce
	// identical hashes.
	Hash uint64
}

// New canonicalizes and hashes a tree in one step.
func New(root *xmltree.Node) Signature {
	canonical := Canonical(root)
	return Signature{
		Canonical: canonical,
		Hash:      Hash(canonical),
	}
}

// Canonical renders a tree as name[attr1,attr2]{child1,child2}.
//
// Attribute keys arrive pre-sorted from the adapter, so attribute
// order in the source document never affects the rendering. Children
// keep document order: sibling order is structurally significant.
// An element without attributes renders no bracket section and an
// element without children renders no brace section, which makes
// self-closing and explicitly closed empty elements identical.
func Canonical(root *xmltree.Node) string {
	var sb strings.Builder
	writeCanonical(&sb, root)
	return sb.String()
}

func writeCanonical(sb *strings.Builder, n *xmltree.Node) {
	sb.WriteString(n.Name)

	if len(n.AttrKeys) > 0 {
		sb.WriteByte('[')
		for i, key := range n.AttrKeys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(key)
		}
		sb.WriteByte(']')
	}

	if len(n.Children) > 0 {
		sb.WriteByte('{')
		for i, child := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, child)
		}
		sb.WriteByte('}')
	}
}

// Hash computes the structural hash of a canonical string.
func Hash(canonical string) uint64 {
	return xxhash.Sum64String(canonical)
}
