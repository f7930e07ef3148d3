package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type closeAccountsCmd struct{}

func (*closeAccountsCmd) Name() string     { return "close-accounts" }
func (*closeAccountsCmd) Synopsis() string { return "declared, not implemented" }
func (*closeAccountsCmd) Usage() string {
	return `janitor close-accounts

  Declared but not implemented: prints a notice and does nothing.
`
}

func (*closeAccountsCmd) SetFlags(*flag.FlagSet) {}

func (*closeAccountsCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Println("close-accounts is not implemented, nothing was done.")
	return subcommands.ExitSuccess
}
