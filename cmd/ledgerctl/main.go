// Command ledgerctl administers a portfolio ledger database: it applies
// migrations, manages token keys and inspects prices and portfolios.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&migrateCmd{}, "database")
	commander.Register(&genKeyCmd{}, "auth")
	commander.Register(&tokenCmd{}, "auth")
	commander.Register(&priceCmd{}, "market")
	commander.Register(&portfolioCmd{}, "ledger")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
