package reconcile

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spikenet/antientropy/simnet"
)

func TestBloomSyncPairEqualSets(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := simnet.GenerateReplicaSet(rng, 20)
	b := a.Clone()

	s := NewBloomSyncer(WithBloomLogger(zaptest.NewLogger(t)))
	byteTx := s.SyncPair(a, b)

	// the filters have no false negatives, so no item of an identical peer
	// is ever transmitted; only the filters themselves are charged
	require.GreaterOrEqual(t, byteTx, 2*filterOverhead)
	require.Equal(t, 20, a.Len())
	require.Equal(t, 20, b.Len())
	require.True(t, a.Equal(b))
}

func TestBloomSyncPairDisjointSets(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := simnet.GenerateReplicaSet(rng, 25)
	b := simnet.GenerateReplicaSet(rng, 25)
	union := a.Clone()
	union.Merge(b)

	s := NewBloomSyncer()
	converged := false
	for range 50 {
		s.SyncPair(a, b)
		if a.Equal(b) {
			converged = true
			break
		}
	}
	require.True(t, converged)
	require.True(t, union.Equal(a))
	require.True(t, union.Equal(b))
}

// An undersized filter (high false-positive rate) delays items but never
// loses them: convergence still happens, only later.
func TestBloomSyncPairElevatedFalsePositives(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := simnet.GenerateReplicaSet(rng, 30)
	b := simnet.GenerateReplicaSet(rng, 30)
	union := a.Clone()
	union.Merge(b)

	s := NewBloomSyncer(WithFalsePositiveRate(0.5))
	converged := false
	for range 200 {
		s.SyncPair(a, b)
		if a.Equal(b) {
			converged = true
			break
		}
	}
	require.True(t, converged)
	require.True(t, union.Equal(a))
	require.True(t, union.Equal(b))
}

func TestBloomByteAccounting(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	a := simnet.GenerateReplicaSet(rng, 10)
	b := simnet.GenerateReplicaSet(rng, 10)

	s := NewBloomSyncer()
	byteTx := s.SyncPair(a, b)

	// at minimum both filters cross the wire; every transmitted item adds
	// a digest
	transmitted := a.Len() + b.Len() - 20
	require.GreaterOrEqual(t, byteTx, 2*filterOverhead+transmitted*digestSize)
}
