package simnet

import (
	"iter"
	"math/rand"
	"slices"

	"github.com/spikenet/antientropy/types"
)

// ReplicaSet is one shard's local copy of the dataset, modeled as a set of
// digests. Reconciliation and consolidation only ever add items, so the set
// grows monotonically: no operation removes an item.
type ReplicaSet struct {
	items map[types.Digest]struct{}
}

// NewReplicaSet creates an empty replica set.
func NewReplicaSet() *ReplicaSet {
	return &ReplicaSet{items: make(map[types.Digest]struct{})}
}

// GenerateReplicaSet creates a replica set seeded with dataCount random
// digests drawn from the given source.
func GenerateReplicaSet(rng *rand.Rand, dataCount int) *ReplicaSet {
	rs := &ReplicaSet{items: make(map[types.Digest]struct{}, dataCount)}
	for range dataCount {
		rs.Add(types.RandomDigest(rng))
	}
	return rs
}

// Add inserts the digest into the set. Adding an already present digest is a
// no-op.
func (rs *ReplicaSet) Add(d types.Digest) {
	rs.items[d] = struct{}{}
}

// Has reports whether the digest is present in the set.
func (rs *ReplicaSet) Has(d types.Digest) bool {
	_, ok := rs.items[d]
	return ok
}

// Len returns the number of digests in the set.
func (rs *ReplicaSet) Len() int {
	return len(rs.items)
}

// All returns an iterator over the digests in the set, in unspecified order.
func (rs *ReplicaSet) All() iter.Seq[types.Digest] {
	return func(yield func(types.Digest) bool) {
		for d := range rs.items {
			if !yield(d) {
				return
			}
		}
	}
}

// Sorted returns the digests in the set in canonical (lexicographic) order.
func (rs *ReplicaSet) Sorted() []types.Digest {
	out := make([]types.Digest, 0, len(rs.items))
	for d := range rs.items {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b types.Digest) int {
		return a.Compare(b)
	})
	return out
}

// Merge inserts every digest of other into the set.
func (rs *ReplicaSet) Merge(other *ReplicaSet) {
	for d := range other.items {
		rs.items[d] = struct{}{}
	}
}

// Clone returns an independent copy of the set.
func (rs *ReplicaSet) Clone() *ReplicaSet {
	c := &ReplicaSet{items: make(map[types.Digest]struct{}, len(rs.items))}
	for d := range rs.items {
		c.items[d] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold exactly the same digests.
func (rs *ReplicaSet) Equal(other *ReplicaSet) bool {
	if len(rs.items) != len(other.items) {
		return false
	}
	for d := range rs.items {
		if _, ok := other.items[d]; !ok {
			return false
		}
	}
	return true
}
