package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/janitor"
	"github.com/etnz/janitor/renderer"
	"github.com/google/subcommands"
)

type quoteCmd struct {
	inputMint  string
	outputMint string
	amount     uint64
	verbose    bool
	keypair    string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "quote a swap, and optionally execute it" }
func (*quoteCmd) Usage() string {
	return `janitor quote -input-mint <mint> [-output-mint <mint>] -amount <base units> [-v] [-k <keypair>]

  Prints the best route for a swap. With -k, asks for confirmation and executes it.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputMint, "input-mint", "", "mint to sell")
	f.StringVar(&c.outputMint, "output-mint", "", "mint to buy, defaults to the configured output mint")
	f.Uint64Var(&c.amount, "amount", 0, "amount to sell, in base units")
	f.BoolVar(&c.verbose, "v", false, "also print the raw quote")
	f.StringVar(&c.keypair, "k", "", "keypair file executing the swap after confirmation")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.outputMint == "" {
		c.outputMint = cfg.Sweep.OutputMint
	}
	for _, m := range []string{c.inputMint, c.outputMint} {
		if err := janitor.ValidateMint(m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.amount == 0 {
		fmt.Fprintf(os.Stderr, "Error: -amount must be positive\n")
		return subcommands.ExitUsageError
	}

	logger := newLogger("quote")
	ledger := newLedger(cfg)
	router := newRouter(cfg)

	q, err := router.Quote(ctx, janitor.QuoteRequest{
		InputMint:   c.inputMint,
		OutputMint:  c.outputMint,
		Amount:      c.amount,
		SlippageBps: cfg.Sweep.SlippageBps,
	})
	if errors.Is(err, janitor.ErrNoRoute) {
		fmt.Fprintf(os.Stderr, "No route available from %s to %s\n", c.inputMint, c.outputMint)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error quoting: %v\n", err)
		return subcommands.ExitFailure
	}

	in, err := ledger.Unit(ctx, c.inputMint, "")
	if err != nil {
		logger.Warn().Err(err).Str("mint", c.inputMint).Msg("cannot read mint decimals")
	}
	symbol := ""
	if c.outputMint == cfg.Sweep.OutputMint {
		symbol = cfg.OutputSymbol
	}
	out, err := ledger.Unit(ctx, c.outputMint, symbol)
	if err != nil {
		logger.Warn().Err(err).Str("mint", c.outputMint).Msg("cannot read mint decimals")
	}
	printMarkdown(renderer.QuoteMarkdown(q, in, out))
	if c.verbose {
		var buf bytes.Buffer
		if err := json.Indent(&buf, q.Raw, "", "  "); err == nil {
			fmt.Println(buf.String())
		}
	}

	if c.keypair == "" {
		return subcommands.ExitSuccess
	}
	user, err := loadKeypair(c.keypair)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading keypair: %v\n", err)
		return subcommands.ExitFailure
	}
	if !confirm(os.Stdin, os.Stdout, "Execute this swap?") {
		fmt.Println("Swap cancelled.")
		return subcommands.ExitSuccess
	}

	fee, err := newFees(cfg, ledger).RecommendedFee(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("keeping the router priority fee")
		fee = 0
	}
	sig, err := janitor.ExecuteSwap(ctx, ledger, router, q, user, fee)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error swapping: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Swap confirmed: %s\n", sig)
	return subcommands.ExitSuccess
}

// confirm asks a y/N question on w and reads the answer from r. Anything but
// yes is a no.
func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
