package reconcile

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spikenet/antientropy/simnet"
)

type recordedPair struct {
	a, b *simnet.ReplicaSet
}

// recordingSyncer captures the pairs it is asked to reconcile.
type recordingSyncer struct {
	pairs   []recordedPair
	perPair int
}

func (s *recordingSyncer) Name() string { return "recording" }

func (s *recordingSyncer) SyncPair(a, b *simnet.ReplicaSet) int {
	s.pairs = append(s.pairs, recordedPair{a: a, b: b})
	return s.perPair
}

func TestSyncFirstToOthers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	network := simnet.Generate(rng, 3, 3)
	hub := network[0]
	second, third := network[1], network[2]

	s := &recordingSyncer{perPair: 7}
	byteTx := SyncFirstToOthers(s, network)
	require.Equal(t, 14, byteTx)

	// every other node's first set is paired against the hub's first set,
	// hub on the right-hand side
	require.Equal(t, []recordedPair{
		{a: second[0], b: hub[0]},
		{a: third[0], b: hub[0]},
	}, s.pairs)

	// the hub is reattached at the tail
	require.Equal(t, simnet.Network{second, third, hub}, network)
}

func uniteAll(network simnet.Network) *simnet.ReplicaSet {
	union := simnet.NewReplicaSet()
	for _, node := range network {
		for _, rs := range node {
			union.Merge(rs)
		}
	}
	return union
}

// The post-call union of a reconciled pair must equal the pre-call union:
// items move, but are never lost.
func TestMonotonicGrowth(t *testing.T) {
	for _, syncer := range []PairSyncer{NewBloomSyncer(), NewRehashSyncer()} {
		t.Run(syncer.Name(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			a := simnet.GenerateReplicaSet(rng, 30)
			b := simnet.GenerateReplicaSet(rng, 30)
			// some shared content
			shared := simnet.GenerateReplicaSet(rng, 10)
			a.Merge(shared)
			b.Merge(shared)

			union := a.Clone()
			union.Merge(b)
			beforeA := a.Clone()
			beforeB := b.Clone()

			byteTx := syncer.SyncPair(a, b)
			require.Positive(t, byteTx)

			after := a.Clone()
			after.Merge(b)
			require.True(t, union.Equal(after))
			for d := range beforeA.All() {
				require.True(t, a.Has(d))
			}
			for d := range beforeB.All() {
				require.True(t, b.Has(d))
			}
		})
	}
}

func TestEndToEndConvergence(t *testing.T) {
	const (
		dataCount = 5
		netFact   = 2
		maxRounds = 50
	)
	for _, syncer := range []PairSyncer{NewBloomSyncer(), NewRehashSyncer()} {
		t.Run(syncer.Name(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(99))
			network := simnet.Generate(rng, dataCount, netFact)
			want := uniteAll(network)
			simnet.SyncNetwork(network)

			converged := false
			for range maxRounds {
				simnet.Shuffle(rng, network)
				SyncFirstToOthers(syncer, network)
				simnet.SyncNetwork(network)
				if simnet.IsNetworkConsistent(network) {
					converged = true
					break
				}
			}
			require.True(t, converged)

			// the final common set is the union of all originally
			// generated sets
			final := network[0][0]
			require.True(t, want.Equal(final))
			require.GreaterOrEqual(t, final.Len(), dataCount)
			require.LessOrEqual(t, final.Len(), dataCount*netFact*netFact)
		})
	}
}
