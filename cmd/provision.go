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

type provisionCmd struct {
	keypair       string
	owner         string
	tokensFromTop int
	dryRun        bool
}

func (*provisionCmd) Name() string { return "provision-accounts" }
func (*provisionCmd) Synopsis() string {
	return "create the missing token accounts of the top tokens"
}
func (*provisionCmd) Usage() string {
	return `janitor provision-accounts -k <keypair> [-o <owner>] [-t 10] [-d]

  Creates an associated token account for every top token the owner does not hold yet.
`
}

func (c *provisionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.keypair, "k", "", "keypair file paying for the accounts, defaults to $KEYPAIR")
	f.StringVar(&c.owner, "o", "", "owner of the accounts, defaults to the payer")
	f.IntVar(&c.tokensFromTop, "t", 10, "number of top tokens to consider")
	f.BoolVar(&c.dryRun, "d", false, "dry run, do not create anything")
}

func (c *provisionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.tokensFromTop < 0 {
		fmt.Fprintf(os.Stderr, "Error: -t must be positive\n")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	payer, err := loadKeypair(c.keypair)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading keypair: %v\n", err)
		return subcommands.ExitFailure
	}
	owner, err := resolveOwner(c.owner, payer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	logger := newLogger("provision")
	logger.Info().Str("owner", owner.ToBase58()).Str("payer", payer.PublicKey.ToBase58()).Bool("dry_run", c.dryRun).Msg("provisioning accounts")

	p := janitor.NewProvisioner(newLedger(cfg))
	p.Logger = logger
	report, err := p.Reconcile(ctx, payer, owner, newRouter(cfg), c.tokensFromTop, c.dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error provisioning accounts: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ProvisionMarkdown(report))
	return subcommands.ExitSuccess
}
