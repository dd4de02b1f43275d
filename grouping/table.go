// Package grouping accumulates structural signatures into equivalence
// classes. Files whose XML trees share a canonical signature land in the
// same Group; the table is safe for concurrent use by parser workers.
//
// Hashes are a fast filter, never the identity. Membership is decided by
// comparing canonical strings, so a 64-bit collision produces two separate
// groups in the same hash bucket rather than a merged one.
package grouping

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/quenby/xskel/errors"
	"github.com/quenby/xskel/logger"
	"github.com/quenby/xskel/skeleton"
	"github.com/quenby/xskel/xmltree"
)

// shardCount trades lock contention against memory. Workers hash to a
// shard by signature, so unrelated structures never contend.
const shardCount = 64

// Group is one structural equivalence class: every file whose skeleton
// renders to the same canonical signature.
type Group struct {
	Signature skeleton.Signature

	// Root is the parse tree of the first file added to the group. All
	// members share the same skeleton, so any member's tree represents
	// the class.
	Root *xmltree.Node

	Files []string
}

// Count returns the number of files in the group.
func (g *Group) Count() int {
	return len(g.Files)
}

type shard struct {
	mu sync.Mutex

	// buckets keys on the signature hash. The slice is almost always
	// length 1; a second entry means a genuine hash collision between
	// distinct canonical strings.
	buckets map[uint64][]*Group
}

// Table is a sharded, mutex-guarded signature index. Add is safe from
// any number of goroutines; Snapshot produces the finalized groups.
type Table struct {
	shards     [shardCount]shard
	collisions atomic.Int64
}

// NewTable returns an empty table ready for concurrent Add calls.
func NewTable() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].buckets = make(map[uint64][]*Group)
	}
	return t
}

// Add records path under the given signature. The first file to carry a
// signature creates the group and donates its parse tree as the
// representative; later files only append their path.
func (t *Table) Add(path string, sig skeleton.Signature, root *xmltree.Node) {
	s := &t.shards[sig.Hash%shardCount]

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[sig.Hash]
	for _, g := range bucket {
		if g.Signature.Canonical == sig.Canonical {
			g.Files = append(g.Files, path)
			return
		}
	}

	if len(bucket) > 0 {
		t.collisions.Add(1)
		logger.Warnw("signature hash collision, keeping groups separate",
			logger.FieldHash, sig.Hash,
			logger.FieldSignature, sig.Canonical,
			logger.FieldFile, path,
		)
	}

	s.buckets[sig.Hash] = append(bucket, &Group{
		Signature: sig,
		Root:      root,
		Files:     []string{path},
	})
}

// Len returns the number of distinct structural groups.
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for _, bucket := range s.buckets {
			n += len(bucket)
		}
		s.mu.Unlock()
	}
	return n
}

// FileCount returns the total number of files across all groups.
func (t *Table) FileCount() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for _, bucket := range s.buckets {
			for _, g := range bucket {
				n += len(g.Files)
			}
		}
		s.mu.Unlock()
	}
	return n
}

// Collisions returns how many times a hash bucket had to hold a second
// group because two distinct canonical signatures shared a 64-bit hash.
func (t *Table) Collisions() int64 {
	return t.collisions.Load()
}

// CollisionError returns an error wrapping ErrCollision describing the
// collision count, or nil when every hash mapped to a single canonical
// signature. Collisions are handled (groups stay separate) but callers
// surface them so they are never silently absorbed.
func (t *Table) CollisionError() error {
	if n := t.collisions.Load(); n > 0 {
		return errors.Wrapf(errors.ErrCollision, "%d hash collision(s) kept as separate groups", n)
	}
	return nil
}

// Snapshot finalizes the table into a deterministic slice of groups:
// file lists sorted ascending, groups ordered by descending count and
// then ascending canonical signature. The returned groups copy their
// file slices, so the snapshot stays stable if the table keeps growing.
func (t *Table) Snapshot() []*Group {
	out := make([]*Group, 0, t.Len())

	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for _, bucket := range s.buckets {
			for _, g := range bucket {
				files := make([]string, len(g.Files))
				copy(files, g.Files)
				sort.Strings(files)
				out = append(out, &Group{
					Signature: g.Signature,
					Root:      g.Root,
					Files:     files,
				})
			}
		}
		s.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Files) != len(out[j].Files) {
			return len(out[i].Files) > len(out[j].Files)
		}
		return out[i].Signature.Canonical < out[j].Signature.Canonical
	})

	return out
}
