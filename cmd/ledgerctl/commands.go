package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/kuberx/portfolio-ledger/internal/config"
	"github.com/kuberx/portfolio-ledger/internal/database"
	"github.com/kuberx/portfolio-ledger/internal/lock"
	"github.com/kuberx/portfolio-ledger/internal/model"
	"github.com/kuberx/portfolio-ledger/internal/oracle"
	"github.com/kuberx/portfolio-ledger/internal/repository"
	"github.com/kuberx/portfolio-ledger/internal/service"
	"github.com/kuberx/portfolio-ledger/internal/token"
)

// openDB loads configuration and opens the migrated database.
func openDB() (*config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return cfg, db, nil
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending schema migrations" }
func (*migrateCmd) Usage() string {
	return `migrate

  Applies every pending migration to the database at DB_PATH and prints the
  resulting schema version.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	v, err := database.Version(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading schema version: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("schema version %d\n", v)
	return subcommands.ExitSuccess
}

type genKeyCmd struct{}

func (*genKeyCmd) Name() string     { return "genkey" }
func (*genKeyCmd) Synopsis() string { return "generate a token signing key" }
func (*genKeyCmd) Usage() string {
	return `genkey

  Prints a new Fernet key. Prepend it to FERNET_KEYS to rotate keys; older
  keys stay valid for verification while they remain in the list.
`
}

func (*genKeyCmd) SetFlags(*flag.FlagSet) {}

func (*genKeyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := token.GenerateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(key)
	return subcommands.ExitSuccess
}

type tokenCmd struct {
	user string
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue a bearer token for a user" }
func (*tokenCmd) Usage() string {
	return `token -user <id>

  Issues a bearer token for the user, signed with the first key in FERNET_KEYS.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User ID the token is issued for (required)")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	authority, err := token.NewAuthority(cfg.Auth.Keys, cfg.Auth.TokenTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	tok, err := authority.Issue(c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(tok)
	return subcommands.ExitSuccess
}

type priceCmd struct{}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "quote symbols through the price oracle" }
func (*priceCmd) Usage() string {
	return `price [SYMBOL...]

  Quotes each symbol through the configured provider, falling back to the
  built-in price table. Without arguments the popular list is quoted.
`
}

func (*priceCmd) SetFlags(*flag.FlagSet) {}

func (*priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	symbols := f.Args()
	if len(symbols) == 0 {
		symbols = oracle.PopularSymbols
	}

	quotes := oracle.NewFromConfig(cfg.Oracle).GetPrices(ctx, symbols)
	ordered := make([]model.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		info, _ := oracle.Lookup(symbol)
		ordered = append(ordered, quotes[info.Symbol])
	}

	printQuotes(os.Stdout, ordered)
	return subcommands.ExitSuccess
}

type portfolioCmd struct {
	user    string
	refresh bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show a user's portfolio" }
func (*portfolioCmd) Usage() string {
	return `portfolio -user <id> [-refresh]

  Prints the user's holdings and totals. With -refresh every holding is
  repriced through the oracle first and the new valuation is saved.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User ID (required)")
	f.BoolVar(&c.refresh, "refresh", false, "Reprice holdings through the oracle before printing")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}

	cfg, db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	ledger := service.NewLedgerService(
		db,
		repository.NewUserRepository(db),
		repository.NewPortfolioRepository(db),
		repository.NewTradeRepository(db),
		repository.NewRealizedGainLossRepository(db),
		oracle.NewFromConfig(cfg.Oracle),
		lock.NewLocalLocker(),
	)

	var p *model.Portfolio
	if c.refresh {
		p, _, err = ledger.RefreshFromOracle(ctx, c.user)
	} else {
		p, err = ledger.GetPortfolio(ctx, c.user)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printPortfolio(os.Stdout, p)
	return subcommands.ExitSuccess
}

func printQuotes(w io.Writer, quotes []model.Quote) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\tSOURCE\t")
	for _, q := range quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", q.Symbol, formatINR(q.Price), q.Source)
	}
	tw.Flush()
}

func printPortfolio(w io.Writer, p *model.Portfolio) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tAMOUNT\tAVG PRICE\tPRICE\tVALUE\tP&L\tP&L %\t")
	for _, h := range p.Holdings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			h.Symbol,
			h.Amount.String(),
			formatINR(h.AverageBuyPrice),
			formatINR(h.CurrentPrice),
			formatINR(h.Value),
			formatINR(h.ProfitLoss),
			h.ProfitLossPct.StringFixed(2),
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nInvested %s  Value %s  P&L %s (%s%%)\n",
		formatINR(p.TotalInvested),
		formatINR(p.TotalValue),
		formatINR(p.TotalProfitLoss),
		p.TotalProfitLossPct.StringFixed(2),
	)
}
