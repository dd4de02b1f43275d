package skeleton

import (
	"encoding/json"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/quenby/xskel/xmltree"
)

// Merged is a compact skeleton that collapses repeated child elements
// by name. A chapter list of 40 structurally identical <div> elements
// becomes one "div" entry, which keeps report output readable for
// large repetitive documents. Attribute keys across merged instances
// are unioned under "@attributes".
type Merged struct {
	// Root element name.
	Root string `json:"root" yaml:"root"`

	// Skeleton maps child names (and "@attributes") to merged
	// sub-skeletons. Values are either []string (attribute lists) or
	// nested map[string]interface{}.
	Skeleton map[string]interface{} `json:"skeleton" yaml:"skeleton"`

	// Hash is xxhash64 over the canonical JSON serialization of
	// Skeleton.
	Hash uint64 `json:"hash" yaml:"hash"`
}

// NewMerged builds the merged skeleton of a tree.
func NewMerged(root *xmltree.Node) *Merged {
	skel := buildMergedSkeleton(root)

	return &Merged{
		Root:     root.Name,
		Skeleton: skel,
		Hash:     hashSkeleton(skel),
	}
}

// CompactString renders "root:{json}" for single-line display.
func (m *Merged) CompactString() string {
	data, err := json.Marshal(m.Skeleton)
	if err != nil {
		return m.Root + ":{}"
	}
	return m.Root + ":" + string(data)
}

func buildMergedSkeleton(n *xmltree.Node) map[string]interface{} {
	skel := make(map[string]interface{})

	if len(n.AttrKeys) > 0 {
		skel["@attributes"] = append([]string(nil), n.AttrKeys...)
	}

	// Group children by name, then merge all instances of each name.
	byName := make(map[string][]*xmltree.Node)
	for _, child := range n.Children {
		byName[child.Name] = append(byName[child.Name], child)
	}

	for name, instances := range byName {
		merged := buildMergedSkeleton(instances[0])
		for _, instance := range instances[1:] {
			mergeSkeletons(merged, buildMergedSkeleton(instance))
		}
		skel[name] = merged
	}

	return skel
}

// mergeSkeletons folds src into dst. "@attributes" lists are unioned
// and re-sorted; child entries merge recursively; keys present only in
// src are adopted.
func mergeSkeletons(dst, src map[string]interface{}) {
	for key, value := range src {
		if key == "@attributes" {
			srcAttrs, _ := value.([]string)
			dstAttrs, _ := dst[key].([]string)
			dst[key] = unionSorted(dstAttrs, srcAttrs)
			continue
		}

		srcChild, _ := value.(map[string]interface{})
		if dstChild, ok := dst[key].(map[string]interface{}); ok {
			mergeSkeletons(dstChild, srcChild)
		} else {
			dst[key] = srcChild
		}
	}
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// hashSkeleton hashes the canonical JSON form. encoding/json sorts map
// keys, so equal skeletons always serialize identically.
func hashSkeleton(skel map[string]interface{}) uint64 {
	data, err := json.Marshal(skel)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}
