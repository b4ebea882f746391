// Package runner drives a single simulation trial: generate a maximally
// divergent network, then repeat shuffle → reconcile → consolidate rounds
// until the network is fully consistent, counting rounds, bytes, and wall
// time.
package runner

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spikenet/antientropy/reconcile"
	"github.com/spikenet/antientropy/simnet"
)

// DefaultMaxRounds bounds the convergence loop. Both strategies converge
// within a handful of rounds in practice; hitting the ceiling indicates a
// defective reconciler rather than bad luck.
const DefaultMaxRounds = 1000

var (
	// ErrAlreadyConsistent is returned when a freshly generated network is
	// already consistent. Independently random replica sets collide only
	// with negligible probability, so this indicates a broken random source
	// or a logic defect, never a transient condition.
	ErrAlreadyConsistent = errors.New("network consistent before synchronization")

	// ErrNotConverged is returned when the network fails to reach full
	// consistency within the configured round ceiling.
	ErrNotConverged = errors.New("network did not converge")
)

// Opt specifies an option for a Runner.
type Opt func(r *Runner)

// WithLogger specifies the logger for the Runner.
func WithLogger(logger *zap.Logger) Opt {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithClock specifies the clock used to measure elapsed trial time.
func WithClock(clock clockwork.Clock) Opt {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithMaxRounds specifies the round ceiling after which a trial is abandoned
// with ErrNotConverged.
func WithMaxRounds(n int) Opt {
	return func(r *Runner) {
		r.maxRounds = n
	}
}

// WithRand specifies the randomness source for network generation and
// per-round shuffling. Runs with the same source state are reproducible.
func WithRand(rng *rand.Rand) Opt {
	return func(r *Runner) {
		r.rng = rng
	}
}

// Result describes a trial driven to full consistency.
type Result struct {
	// Rounds is the number of reconciliation rounds run.
	Rounds int
	// BytesTransferred is the total simulated inter-node byte cost.
	BytesTransferred int
	// Elapsed is the wall time spent in the convergence loop.
	Elapsed time.Duration
}

// Runner runs simulation trials for one reconciliation strategy. Each trial
// owns a fresh network; no state is carried across trials.
type Runner struct {
	logger    *zap.Logger
	clock     clockwork.Clock
	rng       *rand.Rand
	syncer    reconcile.PairSyncer
	maxRounds int
}

// New creates a Runner for the given strategy.
func New(syncer reconcile.PairSyncer, opts ...Opt) *Runner {
	r := &Runner{
		logger:    zap.NewNop(),
		clock:     clockwork.NewRealClock(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		syncer:    syncer,
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one trial with dataCount items per replica set and netFact
// nodes of netFact replica sets each. It returns ErrAlreadyConsistent if the
// freshly generated network violates the divergence invariants, and
// ErrNotConverged if the round ceiling is exceeded.
func (r *Runner) Run(dataCount, netFact int) (Result, error) {
	network := simnet.Generate(r.rng, dataCount, netFact)

	if simnet.IsNetworkConsistent(network) {
		return Result{}, fmt.Errorf("%w: freshly generated network", ErrAlreadyConsistent)
	}
	for i, node := range network {
		if simnet.IsNodeConsistent(node) {
			return Result{}, fmt.Errorf("%w: node %d before consolidation", ErrAlreadyConsistent, i)
		}
		simnet.SyncNode(node)
		if !simnet.IsNodeConsistent(node) {
			panic("BUG: node inconsistent after consolidation")
		}
	}
	if simnet.IsNetworkConsistent(network) {
		return Result{}, fmt.Errorf("%w: network after node consolidation", ErrAlreadyConsistent)
	}

	start := r.clock.Now()
	var res Result
	for res.Rounds < r.maxRounds {
		res.Rounds++

		// randomize which shards and nodes speak to each other
		simnet.Shuffle(r.rng, network)

		res.BytesTransferred += reconcile.SyncFirstToOthers(r.syncer, network)

		simnet.SyncNetwork(network)

		if simnet.IsNetworkConsistent(network) {
			res.Elapsed = r.clock.Since(start)
			r.logger.Debug("trial converged",
				zap.String("strategy", r.syncer.Name()),
				zap.Int("rounds", res.Rounds),
				zap.Int("byteTx", res.BytesTransferred),
				zap.Duration("elapsed", res.Elapsed))
			return res, nil
		}
	}
	return Result{}, fmt.Errorf("%w within %d rounds", ErrNotConverged, r.maxRounds)
}
