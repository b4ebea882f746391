package reconcile

import (
	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"github.com/spikenet/antientropy/simnet"
)

const (
	// DefaultFalsePositiveRate is the target false-positive rate the
	// per-round filters are sized for. 1 in 100 pretty much guarantees full
	// sync after two communications; 1 in 1000 roughly doubles the filter
	// size for little benefit at this scale.
	DefaultFalsePositiveRate = 0.01

	// filterOverhead models the metadata exchanged alongside a filter's bit
	// array: bit-array length, hash function count, and keying material.
	filterOverhead = 8 + 4 + (8 * 4)
)

// BloomSyncerOpt specifies an option for a BloomSyncer.
type BloomSyncerOpt func(s *BloomSyncer)

// WithFalsePositiveRate overrides the target false-positive rate the filters
// are sized for. A higher rate shrinks the filters but delays items to later
// rounds; it never loses them, as a false positive can only skip an item that
// is then resent once the filters are rebuilt.
func WithFalsePositiveRate(rate float64) BloomSyncerOpt {
	return func(s *BloomSyncer) {
		s.fpRate = rate
	}
}

// WithBloomLogger specifies the logger for the BloomSyncer.
func WithBloomLogger(logger *zap.Logger) BloomSyncerOpt {
	return func(s *BloomSyncer) {
		s.logger = logger
	}
}

// BloomSyncer reconciles a pair of replica sets by exchanging bloom filters.
// Each side builds a filter over its current items and transmits every item
// the peer's filter does not recognize. False negatives are structurally
// impossible, so no item is ever wrongly skipped as missing on both sides
// forever; false positives only push an item's delivery to a later round.
type BloomSyncer struct {
	logger *zap.Logger
	fpRate float64
}

var _ PairSyncer = &BloomSyncer{}

// NewBloomSyncer creates a BloomSyncer with the default false-positive rate.
func NewBloomSyncer(opts ...BloomSyncerOpt) *BloomSyncer {
	s := &BloomSyncer{
		logger: zap.NewNop(),
		fpRate: DefaultFalsePositiveRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements PairSyncer.
func (s *BloomSyncer) Name() string { return "bloom" }

func (s *BloomSyncer) filterFor(rs *simnet.ReplicaSet) *bloom.BloomFilter {
	f := bloom.NewWithEstimates(uint(max(rs.Len(), 1)), s.fpRate)
	for d := range rs.All() {
		f.Add(d.Bytes())
	}
	return f
}

// SyncPair implements PairSyncer. The byte cost charged is one digest per
// item actually transmitted plus, per filter, the fixed metadata overhead and
// the filter's bit array.
func (s *BloomSyncer) SyncPair(a, b *simnet.ReplicaSet) int {
	byteTx := 0

	filterA := s.filterFor(a)
	filterB := s.filterFor(b)

	sent := 0
	for d := range a.All() {
		if !filterB.Test(d.Bytes()) {
			byteTx += digestSize
			sent++
			b.Add(d)
		}
	}
	for d := range b.All() {
		if !filterA.Test(d.Bytes()) {
			byteTx += digestSize
			sent++
			a.Add(d)
		}
	}

	byteTx += filterOverhead + bitmapBytes(filterA)
	byteTx += filterOverhead + bitmapBytes(filterB)

	s.logger.Debug("bloom pair sync",
		zap.Int("sent", sent),
		zap.Int("byteTx", byteTx))
	return byteTx
}

func bitmapBytes(f *bloom.BloomFilter) int {
	return (int(f.Cap()) + 7) / 8
}
