// Package reconcile implements the two inter-node set-reconciliation
// strategies under evaluation, plus the star pairing protocol that applies a
// strategy across the whole simulated network.
package reconcile

import (
	"github.com/spikenet/antientropy/simnet"
	"github.com/spikenet/antientropy/types"
)

// digestSize is the simulated wire size of one transmitted item.
const digestSize = types.DigestLength

// PairSyncer reconciles a pair of replica sets in place, inserting into each
// side the items it is missing from the other, and returns the number of
// bytes a real exchange would have transferred. Implementations never remove
// items, so the union of the pair is preserved.
type PairSyncer interface {
	// Name identifies the strategy in reports.
	Name() string
	// SyncPair reconciles a against b. The hub set is always passed as b.
	SyncPair(a, b *simnet.ReplicaSet) int
}

// SyncFirstToOthers runs one round of the hub pairing protocol: the first
// node is detached as the hub, its first replica set is reconciled against
// the first replica set of every remaining node, and the hub is reattached at
// the tail. Which node is the hub varies round to round via shuffling rather
// than by explicit rotation. Returns the summed byte cost of all pairs.
func SyncFirstToOthers(s PairSyncer, network simnet.Network) int {
	byteTx := 0

	hub := network[0]
	hubSet := hub[0]
	for _, node := range network[1:] {
		byteTx += s.SyncPair(node[0], hubSet)
	}

	copy(network, network[1:])
	network[len(network)-1] = hub

	return byteTx
}
