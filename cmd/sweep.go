package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/janitor"
	"github.com/etnz/janitor/renderer"
	"github.com/google/subcommands"
)

type sweepCmd struct {
	keypair string
	dryRun  bool
}

func (*sweepCmd) Name() string     { return "sweep" }
func (*sweepCmd) Synopsis() string { return "swap every non kept holding into the output mint" }
func (*sweepCmd) Usage() string {
	return `janitor sweep -k <keypair> [-d]

  Swaps every holding that is not kept nor dust into the output mint, one at a time.
`
}

func (c *sweepCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.keypair, "k", "", "keypair file of the wallet, defaults to $KEYPAIR")
	f.BoolVar(&c.dryRun, "d", false, "dry run, quote but do not swap")
}

func (c *sweepCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	user, err := loadKeypair(c.keypair)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading keypair: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg.Sweep.DryRun = c.dryRun

	logger := newLogger("sweep")
	ledger := newLedger(cfg)
	s := janitor.NewSweeper(ledger, newRouter(cfg), cfg.Sweep)
	s.Fees = newFees(cfg, ledger)
	s.Logger = logger

	logger.Info().Str("wallet", user.PublicKey.ToBase58()).Str("output", cfg.Sweep.OutputMint).Bool("dry_run", c.dryRun).Msg("sweeping")
	report, err := s.Run(ctx, user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sweeping: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.SweepMarkdown(report, outputUnit(ctx, cfg, ledger, logger)))
	return subcommands.ExitSuccess
}
