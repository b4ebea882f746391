// antientropy runs the reconciliation-strategy benchmark: it drives a
// simulated cluster to consistency with each strategy in turn and prints the
// aggregated round, byte, and time statistics.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spikenet/antientropy/bench"
	"github.com/spikenet/antientropy/reconcile"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		seed      int64
		maxRounds int
		warmup    int
		trials    int
		debug     bool
	)

	cmd := &cobra.Command{
		Use:   "antientropy <data_count> <net_fact>",
		Short: "benchmark set-reconciliation strategies on a simulated cluster",
		Long: `antientropy seeds a simulated cluster of net_fact nodes, each holding
net_fact replica sets of data_count random items, and measures how many
rounds, bytes and seconds each reconciliation strategy needs to drive it to
full consistency.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataCount, err := strconv.Atoi(args[0])
			if err != nil || dataCount <= 0 {
				return fmt.Errorf("data_count must be a positive integer, got %q", args[0])
			}
			netFact, err := strconv.Atoi(args[1])
			if err != nil || netFact <= 1 {
				return fmt.Errorf("net_fact must be an integer greater than 1, got %q", args[1])
			}

			logger := zap.NewNop()
			if debug {
				logger, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer logger.Sync()
			}

			cfg := bench.DefaultConfig()
			cfg.Seed = seed
			cfg.MaxRounds = maxRounds
			cfg.Warmup = warmup
			cfg.Trials = trials

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "running with %d ops / %dx%d nodes\n", dataCount, netFact, netFact)

			syncers := []reconcile.PairSyncer{
				reconcile.NewBloomSyncer(reconcile.WithBloomLogger(logger)),
				reconcile.NewRehashSyncer(reconcile.WithRehashLogger(logger)),
			}
			for _, syncer := range syncers {
				p := &progressPrinter{out: out, name: syncer.Name()}
				agg := bench.New(cfg,
					bench.WithLogger(logger),
					bench.WithProgress(p.note),
				)
				summary, err := agg.Run(syncer, dataCount, netFact)
				if err != nil {
					return fmt.Errorf("%s run: %w", syncer.Name(), err)
				}
				p.finish()
				fmt.Fprintln(out, summary)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "randomness seed, 0 derives one from the current time")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", bench.DefaultConfig().MaxRounds,
		"abandon a trial that has not converged after this many rounds")
	cmd.Flags().IntVar(&warmup, "warmup", bench.DefaultConfig().Warmup, "discarded warm-up trials per strategy")
	cmd.Flags().IntVar(&trials, "trials", bench.DefaultConfig().Trials, "measured trials per strategy")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

// progressPrinter renders one dot per trial, prefixed with the strategy name
// and phase whenever the phase changes.
type progressPrinter struct {
	out   io.Writer
	name  string
	phase bench.Phase
}

func (p *progressPrinter) note(phase bench.Phase, _ int) {
	if p.phase != phase {
		if p.phase != "" {
			fmt.Fprintln(p.out)
		}
		fmt.Fprintf(p.out, "%s %s ", p.name, phase)
		p.phase = phase
	}
	fmt.Fprint(p.out, ".")
}

func (p *progressPrinter) finish() {
	fmt.Fprintln(p.out, " done.")
}
