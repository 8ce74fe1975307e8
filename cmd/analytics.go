package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/date"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/google/subcommands"
)

// eventsCmd holds the flags for the 'events' subcommand.
type eventsCmd struct {
	symbol string
	start  string
	end    string
	json   bool
}

func (*eventsCmd) Name() string     { return "events" }
func (*eventsCmd) Synopsis() string { return "display the ledger events of an asset" }
func (*eventsCmd) Usage() string {
	return `cfo events -symbol <symbol> [-s <start_date>] [-d <end_date>] [-json]

  Lists the buys, sells, deposits and withdrawals of an asset in
  chronological order, as the cost basis engine replays them.
`
}

func (c *eventsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Asset symbol, like BTC")
	f.StringVar(&c.start, "s", "", "Start date of the events")
	f.StringVar(&c.end, "d", "", "End date of the events")
	f.BoolVar(&c.json, "json", false, "Print JSON instead of markdown")
}

func (c *eventsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -symbol is required")
		return subcommands.ExitUsageError
	}
	fromMs, toMs, _, err := parseRange("", c.start, c.end, date.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dates: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}

	symbol := cryptofolio.NormalizeSymbol(c.symbol)
	q := cryptofolio.EventQuery{
		Symbol:       symbol,
		Transactions: ds.Transactions,
		Transfers:    ds.Transfers,
		FromMs:       fromMs,
		ToMs:         toMs,
	}
	for _, a := range ds.Assets {
		if cryptofolio.NormalizeSymbol(a.Symbol) == symbol {
			q.DepositBasisPrice = a.Price
		}
	}
	if price, ok := ds.DepositBasisPrices[symbol]; ok {
		q.DepositBasisPrice = price
	}
	events := cryptofolio.BuildLedgerEvents(q)

	if c.json {
		if err := printJSON(events); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing events: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.EventsMarkdown(symbol, events))
	return subcommands.ExitSuccess
}

// assetCmd holds the flags for the 'asset' subcommand.
type assetCmd struct {
	symbol string
	period string
	start  string
	end    string
	json   bool
}

func (*assetCmd) Name() string     { return "asset" }
func (*assetCmd) Synopsis() string { return "display the cost basis and PnL of an asset" }
func (*assetCmd) Usage() string {
	return `cfo asset -symbol <symbol> [-period <period> | -s <start_date> -d <end_date>] [-json]

  Displays the FIFO cost basis, realized and unrealized PnL and DCA signal of
  an asset. Lifetime figures use the whole history; the period or the dates
  only scope the activity column.
`
}

func (c *assetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Asset symbol, like BTC")
	f.StringVar(&c.period, "period", "", "Period to date for the activity column (day, week, month, quarter, year)")
	f.StringVar(&c.start, "s", "", "Start date of the activity column; with -period alone, the period containing it")
	f.StringVar(&c.end, "d", "", "End date of the activity column, overrides -period")
	f.BoolVar(&c.json, "json", false, "Print JSON instead of markdown")
}

func (c *assetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -symbol is required")
		return subcommands.ExitUsageError
	}
	now := time.Now()
	fromMs, toMs, label, err := parseRange(c.period, c.start, c.end, date.FromMillis(now.UnixMilli()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing range: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}

	summary := cryptofolio.CalculatePortfolioAnalytics(ds.Assets, ds.Transactions, portfolioOptions(ds, fromMs, toMs, now.UnixMilli()))
	a, ok := summary.Asset(c.symbol)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: asset %q is not in %s\n", c.symbol, cfg.AssetsFile)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := printJSON(a); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing analytics: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.AssetMarkdown(a, renderer.AssetOptions{Range: label}))
	return subcommands.ExitSuccess
}

// portfolioCmd holds the flags for the 'portfolio' subcommand.
type portfolioCmd struct {
	period string
	start  string
	end    string
	json   bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display the portfolio summary" }
func (*portfolioCmd) Usage() string {
	return `cfo portfolio [-period <period> | -s <start_date> -d <end_date>] [-json]

  Displays the value, cost basis, PnL, fees and win rate of the portfolio,
  and one line per asset.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "", "Period to date for range figures (day, week, month, quarter, year)")
	f.StringVar(&c.start, "s", "", "Start date for range figures; with -period alone, the period containing it")
	f.StringVar(&c.end, "d", "", "End date for range figures, overrides -period")
	f.BoolVar(&c.json, "json", false, "Print JSON instead of markdown")
}

func (c *portfolioCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	now := time.Now()
	fromMs, toMs, _, err := parseRange(c.period, c.start, c.end, date.FromMillis(now.UnixMilli()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing range: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}

	summary := cryptofolio.CalculatePortfolioAnalytics(ds.Assets, ds.Transactions, portfolioOptions(ds, fromMs, toMs, now.UnixMilli()))
	if c.json {
		if err := printJSON(summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing summary: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.PortfolioMarkdown(summary))
	return subcommands.ExitSuccess
}
