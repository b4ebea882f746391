// Package simnet models a simulated cluster as nested in-process collections:
// a Network of Nodes, each Node holding several ReplicaSets. There is no
// transport and no serialization; reconciliation strategies mutate the model
// in place and report the bytes a real exchange would have cost.
package simnet

import "math/rand"

// Node is a cluster member: a fixed-size ordered sequence of replica sets
// co-located on one host.
type Node []*ReplicaSet

// Network is the whole simulated cluster: a fixed-size ordered sequence of
// nodes.
type Network []Node

// GenerateNode creates a node with netFact independently seeded replica sets.
func GenerateNode(rng *rand.Rand, dataCount, netFact int) Node {
	node := make(Node, netFact)
	for i := range node {
		node[i] = GenerateReplicaSet(rng, dataCount)
	}
	return node
}

// Generate creates a network of netFact nodes, each with netFact replica sets
// of dataCount random digests. With 256-bit random digests no two sets are
// expected to share content, so a fresh network is almost surely inconsistent
// at both the node and the network level.
func Generate(rng *rand.Rand, dataCount, netFact int) Network {
	network := make(Network, netFact)
	for i := range network {
		network[i] = GenerateNode(rng, dataCount, netFact)
	}
	return network
}

// IsNodeConsistent reports whether every replica set in the node equals the
// first one.
func IsNodeConsistent(node Node) bool {
	first := node[0]
	for _, rs := range node[1:] {
		if !first.Equal(rs) {
			return false
		}
	}
	return true
}

// IsNetworkConsistent reports whether every replica set of every node equals
// the first replica set of the first node.
func IsNetworkConsistent(network Network) bool {
	first := network[0][0]
	for _, node := range network {
		for _, rs := range node {
			if !first.Equal(rs) {
				return false
			}
		}
	}
	return true
}

// Shuffle applies a uniform random permutation to the replica sets within
// each node and then to the nodes themselves. The reconcilers always address
// the first replica set of each node and treat the first node as the hub, so
// shuffling decides which shard and which node play those roles each round.
func Shuffle(rng *rand.Rand, network Network) {
	for _, node := range network {
		rng.Shuffle(len(node), func(i, j int) {
			node[i], node[j] = node[j], node[i]
		})
	}
	rng.Shuffle(len(network), func(i, j int) {
		network[i], network[j] = network[j], network[i]
	})
}

// SyncNode replaces every replica set in the node with the union of them all.
// Shards on one host share a trust boundary, so this step is charged no
// transfer cost. Node consistency holds afterwards.
func SyncNode(node Node) {
	union := NewReplicaSet()
	for _, rs := range node {
		union.Merge(rs)
	}
	for i := range node {
		node[i] = union.Clone()
	}
}

// SyncNetwork consolidates every node of the network independently.
func SyncNetwork(network Network) {
	for _, node := range network {
		SyncNode(node)
	}
}
