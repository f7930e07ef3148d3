// Package cmd implements the CLI application to keep a Solana wallet tidy.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/charmbracelet/glamour"
	"github.com/etnz/janitor"
	"github.com/etnz/janitor/jupiter"
	"github.com/etnz/janitor/keypair"
	"github.com/etnz/janitor/logging"
	"github.com/etnz/janitor/solana"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Commands lists every subcommand of the janitor.
var Commands = []subcommands.Command{
	&provisionCmd{},
	&sweepCmd{},
	&quoteCmd{},
	&holdingsCmd{},
	&closeAccountsCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", os.Getenv(EnvConfig), "Path to the TOML configuration file")
var rpcURL = flag.String("rpc", "", "Solana RPC endpoint, overrides rpc_url")
var verbose = flag.Bool("v", false, "debug logs")

// runID tags every log line of this invocation.
var runID = uuid.NewString()

// loadConfig reads the configuration file and applies the global flags.
func loadConfig() (Config, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return Config{}, err
	}
	if *rpcURL != "" {
		cfg.RPCURL = *rpcURL
	}
	return cfg, nil
}

func newLogger(component string) zerolog.Logger {
	return logging.New(component, *verbose).With().Str("run", runID).Logger()
}

func newLedger(cfg Config) *solana.Client {
	c := solana.New(cfg.RPCURL)
	c.Logger = newLogger("solana")
	return c
}

func newRouter(cfg Config) *jupiter.Client {
	c := jupiter.New("", newLogger("jupiter"))
	c.BaseURL = cfg.JupiterURL
	c.TopTokensURL = cfg.TopTokensURL
	return c
}

// fixedFee is a FeeEstimator always recommending the same price.
type fixedFee uint64

func (f fixedFee) RecommendedFee(context.Context) (uint64, error) { return uint64(f), nil }

func newFees(cfg Config, ledger *solana.Client) janitor.FeeEstimator {
	if cfg.PriorityFee > 0 {
		return fixedFee(cfg.PriorityFee)
	}
	return ledger.FeeEstimator(cfg.FeePercentile, cfg.MaxPriorityFee)
}

// loadKeypair loads the keypair at path, or at $KEYPAIR.
func loadKeypair(path string) (types.Account, error) {
	file, err := keypair.Path(path)
	if err != nil {
		return types.Account{}, err
	}
	return keypair.Load(file)
}

// resolveOwner parses owner, defaulting to the key of payer.
func resolveOwner(owner string, payer types.Account) (common.PublicKey, error) {
	if owner == "" {
		return payer.PublicKey, nil
	}
	pk, err := janitor.ParseMint(owner)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("invalid owner: %w", err)
	}
	return pk, nil
}

// outputUnit returns the display unit of the sweep output mint. Decimals
// come from the ledger, a failure falls back to raw units.
func outputUnit(ctx context.Context, cfg Config, ledger *solana.Client, logger zerolog.Logger) janitor.Unit {
	unit, err := ledger.Unit(ctx, cfg.Sweep.OutputMint, cfg.OutputSymbol)
	if err != nil {
		logger.Warn().Err(err).Str("mint", cfg.Sweep.OutputMint).Msg("cannot read output mint decimals")
	}
	return unit
}

// printMarkdown renders md for the terminal on stdout.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
