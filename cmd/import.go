package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/cryptofolio"
	"github.com/google/subcommands"
	toml "github.com/pelletier/go-toml/v2"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	mapping string
	kind    string
	source  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "append records from an exchange or wallet export" }
func (*importCmd) Usage() string {
	return `cfo import -mapping <name|file.toml> [-kind transactions|transfers] [-source <name>] <file.json>...

  Maps the records of JSON exports to transactions or transfers and appends
  them to the configured JSONL file. Built-in mappings are:
    ` + strings.Join(cryptofolio.BuiltinImporters(), ", ") + `
  A TOML file can define a custom mapping, see 'cfo topic importers'.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.mapping, "mapping", "", "Built-in mapping name or path to a TOML mapping file")
	f.StringVar(&c.kind, "kind", "", "Kind of records to produce (transactions or transfers), overrides the mapping")
	f.StringVar(&c.source, "source", "", "Source recorded on every record, overrides the mapping")
}

// importer resolves the -mapping, -kind and -source flags.
func (c *importCmd) importer() (cryptofolio.Importer, error) {
	im, ok := cryptofolio.BuiltinImporter(c.mapping)
	if !ok {
		data, err := os.ReadFile(c.mapping)
		if err != nil {
			return im, fmt.Errorf("unknown mapping %q: %w", c.mapping, err)
		}
		if err := toml.Unmarshal(data, &im); err != nil {
			return im, fmt.Errorf("failed to parse mapping file %s: %w", c.mapping, err)
		}
	}
	if c.kind != "" {
		im.Kind = cryptofolio.RecordKind(c.kind)
	}
	if c.source != "" {
		im.Source = c.source
	}
	switch im.Kind {
	case cryptofolio.TransactionRecords, cryptofolio.TransferRecords:
		return im, nil
	default:
		return im, fmt.Errorf("invalid record kind %q, want %q or %q", im.Kind, cryptofolio.TransactionRecords, cryptofolio.TransferRecords)
	}
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.mapping == "" || f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: -mapping and at least one file are required")
		return subcommands.ExitUsageError
	}
	im, err := c.importer()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	log := newLogger(cfg)

	var all cryptofolio.Imported
	for _, name := range f.Args() {
		imported, err := importFile(im, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", name, err)
			return subcommands.ExitFailure
		}
		log.Debug().Str("file", name).Int("records", imported.Len()).Msg("imported")
		all.Transactions = append(all.Transactions, imported.Transactions...)
		all.Transfers = append(all.Transfers, imported.Transfers...)
	}

	filename := cfg.TransactionsFile
	if im.Kind == cryptofolio.TransferRecords {
		filename = cfg.TransfersFile
	}
	if err := appendRecords(filename, all); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "Successfully appended %d %s to %s\n", all.Len(), im.Kind, filename)
	return subcommands.ExitSuccess
}

func importFile(im cryptofolio.Importer, name string) (cryptofolio.Imported, error) {
	f, err := os.Open(name)
	if err != nil {
		return cryptofolio.Imported{}, err
	}
	defer f.Close()
	return im.Import(f)
}

// appendRecords appends records to filename, creating it if it doesn't exist.
func appendRecords(filename string, records cryptofolio.Imported) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := encodeRecords(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeRecords(w io.Writer, records cryptofolio.Imported) error {
	for _, tx := range records.Transactions {
		if err := cryptofolio.EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	for _, tr := range records.Transfers {
		if err := cryptofolio.EncodeTransfer(w, tr); err != nil {
			return err
		}
	}
	return nil
}
