// Package cmd implements the cfo command line: crypto portfolio analytics
// over JSONL files of transactions, transfers and assets.
package cmd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/date"
	"github.com/etnz/cryptofolio/server"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile       = flag.String("config", "cfo.toml", "Path to the TOML configuration file")
	transactionsFile = flag.String("transactions", "", "Path to the transactions file (JSONL format), overrides the configuration")
	transfersFile    = flag.String("transfers", "", "Path to the transfers file (JSONL format), overrides the configuration")
	assetsFile       = flag.String("assets", "", "Path to the assets file (JSONL format), overrides the configuration")
	Verbose          = flag.Bool("v", false, "Verbose logging")
)

// stdout receives the command outputs.
var stdout io.Writer = os.Stdout

// commands lists the subcommands by group.
var commands = []struct {
	group string
	cmd   subcommands.Command
}{
	{"analytics", &eventsCmd{}},
	{"analytics", &assetCmd{}},
	{"analytics", &portfolioCmd{}},
	{"data", &importCmd{}},
	{"server", &serveCmd{}},
	{"assistant", &assistCmd{}},
	{"help", &topicCmd{}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, e := range commands {
		c.Register(e.cmd, e.group)
	}
}

// Known reports whether name is a registered subcommand.
func Known(name string) bool {
	for _, e := range commands {
		if e.cmd.Name() == name {
			return true
		}
	}
	return false
}

// loadConfig reads the configuration file, then applies the global flags.
func loadConfig() (*Config, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if *transactionsFile != "" {
		cfg.TransactionsFile = *transactionsFile
	}
	if *transfersFile != "" {
		cfg.TransfersFile = *transfersFile
	}
	if *assetsFile != "" {
		cfg.AssetsFile = *assetsFile
	}
	if *Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger returns the logger configured by cfg.
func newLogger(cfg *Config) zerolog.Logger { return NewLogger(cfg.LogLevel) }

// decodeFile decodes filename with decode. A missing file is empty.
func decodeFile[T any](filename string, decode func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", filename, err)
	}
	defer f.Close()

	records, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", filename, err)
	}
	return records, nil
}

// loadDataset reads the files named by cfg.
func loadDataset(cfg *Config) (server.Dataset, error) {
	txs, err := decodeFile(cfg.TransactionsFile, cryptofolio.DecodeTransactions)
	if err != nil {
		return server.Dataset{}, err
	}
	transfers, err := decodeFile(cfg.TransfersFile, cryptofolio.DecodeTransfers)
	if err != nil {
		return server.Dataset{}, err
	}
	assets, err := decodeFile(cfg.AssetsFile, cryptofolio.DecodeAssets)
	if err != nil {
		return server.Dataset{}, err
	}
	return server.Dataset{
		Transactions:       txs,
		Transfers:          transfers,
		Assets:             assets,
		DepositBasisPrices: cfg.DepositBasisPrices(),
	}, nil
}

// portfolioOptions returns the options to compute ds analytics over
// [fromMs, toMs].
func portfolioOptions(ds server.Dataset, fromMs, toMs, nowMs int64) cryptofolio.PortfolioOptions {
	return cryptofolio.PortfolioOptions{
		Transfers:          ds.Transfers,
		FromMs:             fromMs,
		ToMs:               toMs,
		DepositBasisPrices: ds.DepositBasisPrices,
		NowMs:              nowMs,
	}
}

// parseRange resolves the -period, -s and -d flags. Explicit dates win over
// the period, except that -period with -s alone selects the whole period
// containing the start date. Everything empty is the whole history.
func parseRange(period, start, end string, today date.Date) (fromMs, toMs int64, label string, err error) {
	var p date.Period
	if period != "" {
		if p, err = date.ParsePeriod(period); err != nil {
			return 0, 0, "", err
		}
	}

	if start == "" && end == "" {
		if period == "" {
			return 0, 0, "", nil
		}
		r := p.ToDate(today)
		fromMs, toMs = r.Millis()
		return fromMs, toMs, fmt.Sprintf("%s (%s)", p.ToDateName(), r), nil
	}

	from, to := date.Date{}, today
	if start != "" {
		if from, err = date.ParseFrom(start, today); err != nil {
			return 0, 0, "", fmt.Errorf("invalid start date: %w", err)
		}
	}
	if end != "" {
		if to, err = date.ParseFrom(end, today); err != nil {
			return 0, 0, "", fmt.Errorf("invalid end date: %w", err)
		}
	} else if period != "" {
		r := p.Range(from)
		fromMs, toMs = r.Millis()
		return fromMs, toMs, r.Label(), nil
	}
	if from.IsZero() {
		return 0, to.EndMillis(), "Until " + to.String(), nil
	}
	if to.Before(from) {
		return 0, 0, "", fmt.Errorf("start date %s is after end date %s", from, to)
	}
	r := date.NewRange(from, to)
	fromMs, toMs = r.Millis()
	return fromMs, toMs, r.Label(), nil
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}

// printJSON writes v as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
