// Package bench aggregates repeated simulation trials into per-strategy
// statistics: mean and sample standard deviation of round count, mebibytes
// transferred, and elapsed seconds.
package bench

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/spikenet/antientropy/reconcile"
	"github.com/spikenet/antientropy/runner"
)

// Phase identifies which stage of an aggregation run a trial belongs to.
type Phase string

const (
	// PhaseWarmup marks discarded warm-up trials.
	PhaseWarmup Phase = "warmup"
	// PhaseMeasure marks measured trials.
	PhaseMeasure Phase = "test"
)

// Config configures a trial aggregation run.
type Config struct {
	// Warmup is the number of discarded warm-up trials.
	Warmup int `mapstructure:"warmup"`
	// Trials is the number of measured trials.
	Trials int `mapstructure:"trials"`
	// MaxRounds bounds the convergence loop of each trial.
	MaxRounds int `mapstructure:"max-rounds"`
	// Seed seeds the aggregator's randomness. Zero means derive a seed from
	// the current time.
	Seed int64 `mapstructure:"seed"`
}

// DefaultConfig returns the default aggregation configuration.
func DefaultConfig() Config {
	return Config{
		Warmup:    3,
		Trials:    20,
		MaxRounds: runner.DefaultMaxRounds,
	}
}

// Opt specifies an option for an Aggregator.
type Opt func(a *Aggregator)

// WithLogger specifies the logger for the Aggregator and its trial runners.
func WithLogger(logger *zap.Logger) Opt {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithClock specifies the clock trials measure elapsed time with.
func WithClock(clock clockwork.Clock) Opt {
	return func(a *Aggregator) {
		a.clock = clock
	}
}

// WithProgress specifies a callback invoked before each trial, for progress
// reporting.
func WithProgress(f func(phase Phase, trial int)) Opt {
	return func(a *Aggregator) {
		a.progress = f
	}
}

// Metric holds the arithmetic mean and sample standard deviation of one
// measurement across the measured trials.
type Metric struct {
	Mean   float64
	StdDev float64
}

// Summary reports the aggregated statistics for one strategy.
type Summary struct {
	// Strategy is the name of the measured reconciliation strategy.
	Strategy string
	// Rounds aggregates per-trial round counts.
	Rounds Metric
	// MiB aggregates per-trial bytes transferred, in mebibytes.
	MiB Metric
	// Seconds aggregates per-trial elapsed wall time, in seconds.
	Seconds Metric
}

// String renders the one-line report consumed by the output layer.
func (s Summary) String() string {
	return fmt.Sprintf("%s rounds: %.1f±%.4f, MiB transferred: %.4f±%.4f in %.4f±%.4f s",
		s.Strategy,
		s.Rounds.Mean, s.Rounds.StdDev,
		s.MiB.Mean, s.MiB.StdDev,
		s.Seconds.Mean, s.Seconds.StdDev)
}

// Aggregator runs warm-up and measured trials of a strategy and aggregates
// the results. Each trial gets an independently seeded randomness source
// derived from the aggregator's seed, so whole runs are reproducible.
type Aggregator struct {
	cfg      Config
	logger   *zap.Logger
	clock    clockwork.Clock
	progress func(phase Phase, trial int)
	rng      *rand.Rand
}

// New creates an Aggregator with the given configuration.
func New(cfg Config, opts ...Opt) *Aggregator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a := &Aggregator{
		cfg:    cfg,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
		rng:    rand.New(rand.NewSource(seed)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run performs the warm-up and measured trials of the given strategy against
// a dataCount×netFact network and returns the aggregated summary. Any trial
// error aborts the run with no partial statistics.
func (a *Aggregator) Run(syncer reconcile.PairSyncer, dataCount, netFact int) (Summary, error) {
	for i := range a.cfg.Warmup {
		a.note(PhaseWarmup, i)
		if _, err := a.trial(syncer, dataCount, netFact); err != nil {
			return Summary{}, fmt.Errorf("warmup trial %d: %w", i, err)
		}
	}

	rounds := make([]float64, 0, a.cfg.Trials)
	mib := make([]float64, 0, a.cfg.Trials)
	secs := make([]float64, 0, a.cfg.Trials)
	for i := range a.cfg.Trials {
		a.note(PhaseMeasure, i)
		res, err := a.trial(syncer, dataCount, netFact)
		if err != nil {
			return Summary{}, fmt.Errorf("trial %d: %w", i, err)
		}
		rounds = append(rounds, float64(res.Rounds))
		mib = append(mib, float64(res.BytesTransferred)/(1<<20))
		secs = append(secs, res.Elapsed.Seconds())
	}

	summary := Summary{
		Strategy: syncer.Name(),
		Rounds:   aggregate(rounds),
		MiB:      aggregate(mib),
		Seconds:  aggregate(secs),
	}
	a.logger.Info("strategy measured",
		zap.String("strategy", summary.Strategy),
		zap.Float64("meanRounds", summary.Rounds.Mean),
		zap.Float64("meanMiB", summary.MiB.Mean),
		zap.Float64("meanSeconds", summary.Seconds.Mean))
	return summary, nil
}

func (a *Aggregator) trial(syncer reconcile.PairSyncer, dataCount, netFact int) (runner.Result, error) {
	r := runner.New(syncer,
		runner.WithLogger(a.logger),
		runner.WithClock(a.clock),
		runner.WithMaxRounds(a.cfg.MaxRounds),
		runner.WithRand(rand.New(rand.NewSource(a.rng.Int63()))),
	)
	return r.Run(dataCount, netFact)
}

func (a *Aggregator) note(phase Phase, trial int) {
	if a.progress != nil {
		a.progress(phase, trial)
	}
}

func aggregate(xs []float64) Metric {
	return Metric{
		Mean:   stat.Mean(xs, nil),
		StdDev: stat.StdDev(xs, nil),
	}
}
