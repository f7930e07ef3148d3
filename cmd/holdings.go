package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/etnz/janitor"
	"github.com/etnz/janitor/renderer"
	"github.com/google/subcommands"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	owner   string
	keypair string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list the token accounts of a wallet" }
func (*holdingsCmd) Usage() string {
	return `janitor holdings [-o <owner>] [-k <keypair>]

  Lists the token accounts of the owner with their balance.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "o", "", "owner of the token accounts")
	f.StringVar(&c.keypair, "k", "", "keypair file of the owner when -o is not set, defaults to $KEYPAIR")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}

	var owner common.PublicKey
	if c.owner != "" {
		if owner, err = janitor.ParseMint(c.owner); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid owner: %v\n", err)
			return subcommands.ExitUsageError
		}
	} else {
		acc, err := loadKeypair(c.keypair)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading keypair: %v\n", err)
			return subcommands.ExitFailure
		}
		owner = acc.PublicKey
	}

	logger := newLogger("holdings")
	ledger := newLedger(cfg)
	holdings, err := janitor.Scan(ctx, ledger, owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	units := renderer.Units{}
	for mint := range janitor.DistinctMints(holdings) {
		symbol := ""
		if mint == cfg.Sweep.OutputMint {
			symbol = cfg.OutputSymbol
		}
		unit, err := ledger.Unit(ctx, mint, symbol)
		if err != nil {
			logger.Debug().Err(err).Str("mint", mint).Msg("cannot read mint decimals")
			continue
		}
		units[mint] = unit
	}

	printMarkdown(renderer.HoldingsMarkdown(owner, holdings, units))
	return subcommands.ExitSuccess
}
