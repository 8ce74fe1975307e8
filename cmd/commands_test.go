package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/date"
	"github.com/google/subcommands"
)

// setup writes a small data set in a temporary directory and points the
// global flags at it.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "transactions.jsonl"), `{"id":"1","symbol":"BTCUSDT","side":"buy","quantity":1,"price":100,"fee":1,"timestamp":1700000000000,"source":"binance"}
{"id":"2","symbol":"BTC","side":"sell","quantity":0.5,"price":300,"timestamp":1700086400000,"source":"binance"}
`)
	writeFile(t, filepath.Join(dir, "transfers.jsonl"), `{"id":"3","symbol":"ETH","direction":"deposit","quantity":2,"timestamp":1700000000000,"source":"wallet"}
`)
	writeFile(t, filepath.Join(dir, "assets.jsonl"), `{"symbol":"BTC","name":"Bitcoin","balance":0.5,"price":200}
{"symbol":"ETH","name":"Ether","balance":2,"price":50}
`)
	writeFile(t, filepath.Join(dir, "cfo.toml"), `
[deposit_basis]
ETH = 40
`)
	setFlag(t, configFile, filepath.Join(dir, "cfo.toml"))
	setFlag(t, transactionsFile, filepath.Join(dir, "transactions.jsonl"))
	setFlag(t, transfersFile, filepath.Join(dir, "transfers.jsonl"))
	setFlag(t, assetsFile, filepath.Join(dir, "assets.jsonl"))
	return dir
}

// run executes c with args and returns what it printed.
func run(t *testing.T, c subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatal(err)
	}
	return c.Execute(context.Background(), f), out.String()
}

func TestAssetCmd(t *testing.T) {
	setup(t)
	status, out := run(t, &assetCmd{}, "-symbol", "wbtc", "-json")
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, want success", status)
	}
	var a cryptofolio.AssetAnalytics
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("output is not an asset: %v\n%s", err, out)
	}
	tests := []struct {
		name      string
		got, want cryptofolio.Money
	}{
		{"CostBasis", a.CostBasis, cryptofolio.USD(50)},
		{"RealizedPnl", a.RealizedPnl, cryptofolio.USD(99)},
		{"UnrealizedPnl", a.UnrealizedPnl, cryptofolio.USD(50)},
	}
	for _, test := range tests {
		if !test.got.Equal(test.want) {
			t.Errorf("%s = %v, want %v", test.name, test.got, test.want)
		}
	}
}

func TestAssetCmd_Errors(t *testing.T) {
	setup(t)
	tests := []struct {
		args []string
		want subcommands.ExitStatus
	}{
		{nil, subcommands.ExitUsageError},
		{[]string{"-symbol", "BTC", "-period", "decade"}, subcommands.ExitUsageError},
		{[]string{"-symbol", "DOGE"}, subcommands.ExitFailure},
		{[]string{"-symbol", "BTC", "-period", "year"}, subcommands.ExitSuccess},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args, " "), func(t *testing.T) {
			if got, _ := run(t, &assetCmd{}, test.args...); got != test.want {
				t.Errorf("status = %v, want %v", got, test.want)
			}
		})
	}
}

func TestPortfolioCmd(t *testing.T) {
	setup(t)
	status, out := run(t, &portfolioCmd{}, "-json")
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, want success", status)
	}
	var s cryptofolio.PortfolioAnalyticsSummary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("output is not a summary: %v\n%s", err, out)
	}
	if got, want := len(s.Assets), 2; got != want {
		t.Fatalf("got %d assets, want %d", got, want)
	}
	// BTC: 0.5 at 100, ETH: 2 deposited at 40.
	if got, want := s.TotalCostBasis, cryptofolio.USD(130); !got.Equal(want) {
		t.Errorf("TotalCostBasis = %v, want %v", got, want)
	}
	if got, want := s.TotalValue, cryptofolio.USD(200); !got.Equal(want) {
		t.Errorf("TotalValue = %v, want %v", got, want)
	}
	if got, want := s.EstimatedAssets, 1; got != want {
		t.Errorf("EstimatedAssets = %d, want %d", got, want)
	}
}

func TestEventsCmd(t *testing.T) {
	setup(t)
	status, out := run(t, &eventsCmd{}, "-symbol", "BTC", "-json", "-d", "2023-11-14")
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, want success", status)
	}
	var events []map[string]any
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("output is not a list of events: %v\n%s", err, out)
	}
	// the sell of 2023-11-15 is after -d.
	if got, want := len(events), 1; got != want {
		t.Errorf("got %d events, want %d", got, want)
	}
}

func TestMarkdownOutput(t *testing.T) {
	setup(t)
	tests := []struct {
		cmd  subcommands.Command
		args []string
	}{
		{&assetCmd{}, []string{"-symbol", "ETH"}},
		{&portfolioCmd{}, nil},
		{&eventsCmd{}, []string{"-symbol", "ETH"}},
		{&topicCmd{}, []string{"dates"}},
	}
	for _, test := range tests {
		t.Run(test.cmd.Name(), func(t *testing.T) {
			status, out := run(t, test.cmd, test.args...)
			if status != subcommands.ExitSuccess {
				t.Fatalf("status = %v, want success", status)
			}
			if strings.TrimSpace(out) == "" {
				t.Error("no output")
			}
		})
	}
}

func TestImportCmd(t *testing.T) {
	dir := setup(t)
	export := filepath.Join(dir, "binance.json")
	writeFile(t, export, `[
  {"symbol":"BTCUSDT","id":11,"price":"150","qty":"1","time":1700172800000,"isBuyer":true},
  {"symbol":"BTCUSDT","id":12,"price":"250","qty":"0.5","time":1700259200000,"isBuyer":false}
]`)

	status, out := run(t, &importCmd{}, "-mapping", "binance-trades", export)
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, want success", status)
	}
	if !strings.Contains(out, "Successfully appended 2 transactions") {
		t.Errorf("output = %q", out)
	}

	f, err := os.Open(*transactionsFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	txs, err := cryptofolio.DecodeTransactions(f)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(txs), 4; got != want {
		t.Fatalf("got %d transactions, want %d", got, want)
	}
	if got, want := txs[2].ID+" "+txs[2].Side+" "+txs[2].Source, "11 buy binance"; got != want {
		t.Errorf("imported transaction = %q, want %q", got, want)
	}
}

func TestImportCmd_MappingFile(t *testing.T) {
	dir := setup(t)
	mapping := filepath.Join(dir, "ledger.toml")
	writeFile(t, mapping, `
kind = "transfers"
records = "$.items"
source = "ledger-live"

[fields]
symbol = "$.coin"
direction = "$.type"
quantity = "$.amount"
timestamp = "$.date"
`)
	export := filepath.Join(dir, "ledger.json")
	writeFile(t, export, `{"items":[{"coin":"ETH","type":"withdrawal","amount":"0.5","date":"2023-11-20T10:00:00Z"}]}`)

	status, _ := run(t, &importCmd{}, "-mapping", mapping, export)
	if status != subcommands.ExitSuccess {
		t.Fatalf("status = %v, want success", status)
	}

	f, err := os.Open(*transfersFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	transfers, err := cryptofolio.DecodeTransfers(f)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(transfers), 2; got != want {
		t.Fatalf("got %d transfers, want %d", got, want)
	}
	tr := transfers[1]
	if got, want := tr.Direction+" "+tr.Source, "withdrawal ledger-live"; got != want {
		t.Errorf("imported transfer = %q, want %q", got, want)
	}
	if got, want := tr.Timestamp, time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC).UnixMilli(); got != want {
		t.Errorf("Timestamp = %d, want %d", got, want)
	}
}

func TestImportCmd_Errors(t *testing.T) {
	dir := setup(t)
	export := filepath.Join(dir, "bad.json")
	writeFile(t, export, `[{"symbol":"BTCUSDT","id":1,"price":"1","time":1,"isBuyer":true}]`)

	tests := []struct {
		name string
		args []string
		want subcommands.ExitStatus
	}{
		{"no file", []string{"-mapping", "binance-trades"}, subcommands.ExitUsageError},
		{"unknown mapping", []string{"-mapping", "kraken", export}, subcommands.ExitUsageError},
		{"bad kind", []string{"-mapping", "binance-trades", "-kind", "orders", export}, subcommands.ExitUsageError},
		{"missing quantity", []string{"-mapping", "binance-trades", export}, subcommands.ExitFailure},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got, _ := run(t, &importCmd{}, test.args...); got != test.want {
				t.Errorf("status = %v, want %v", got, test.want)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	today := date.New(2025, 8, 15)
	tests := []struct {
		period, start, end string
		wantFrom, wantTo   date.Date
		wantLabel          string
	}{
		{"", "", "", date.Date{}, date.Date{}, ""},
		{"month", "", "", date.New(2025, 8, 1), today, "Month to Date (2025-08-01..2025-08-15)"},
		{"day", "", "", today, today, "Today (2025-08-15)"},
		{"month", "2025-01-01", "2025-01-31", date.New(2025, 1, 1), date.New(2025, 1, 31), "2025-01"},
		{"", "2025-01-01", "2025-03-31", date.New(2025, 1, 1), date.New(2025, 3, 31), "2025-Q1"},
		{"quarter", "2025-02-10", "", date.New(2025, 1, 1), date.New(2025, 3, 31), "2025-Q1"},
		{"week", "2025-08-06", "", date.New(2025, 8, 4), date.New(2025, 8, 10), "2025-W32"},
		{"", "-1w", "", date.New(2025, 8, 8), today, "2025-08-08..2025-08-15"},
		{"", "", "07-31", date.Date{}, date.New(2025, 7, 31), "Until 2025-07-31"},
	}
	for _, test := range tests {
		t.Run(test.period+"|"+test.start+"|"+test.end, func(t *testing.T) {
			fromMs, toMs, label, err := parseRange(test.period, test.start, test.end, today)
			if err != nil {
				t.Fatal(err)
			}
			var wantFrom, wantTo int64
			if !test.wantFrom.IsZero() {
				wantFrom = test.wantFrom.Millis()
			}
			if !test.wantTo.IsZero() {
				wantTo = test.wantTo.EndMillis()
			}
			if fromMs != wantFrom || toMs != wantTo {
				t.Errorf("bounds = [%d, %d], want [%d, %d]", fromMs, toMs, wantFrom, wantTo)
			}
			if label != test.wantLabel {
				t.Errorf("label = %q, want %q", label, test.wantLabel)
			}
		})
	}

	if _, _, _, err := parseRange("", "2025-02-01", "2025-01-01", today); err == nil {
		t.Error("parseRange() accepted a reversed range")
	}
	if _, _, _, err := parseRange("decade", "2025-02-01", "", today); err == nil {
		t.Error("parseRange() accepted an unknown period")
	}
}

func TestCompletion(t *testing.T) {
	fs := flag.NewFlagSet("cfo", flag.ContinueOnError)
	fs.String("config", "", "")
	fs.Bool("v", false, "")

	c := Completion(fs)
	for _, name := range []string{"events", "asset", "portfolio", "import", "serve", "assist", "topic"} {
		if _, ok := c.Sub[name]; !ok {
			t.Errorf("no completion for %q", name)
		}
	}
	if _, ok := c.Flags["config"]; !ok {
		t.Error("no completion for -config")
	}
	if got := c.Sub["import"].Args; got == nil {
		t.Error("import arguments are not completed")
	}
	if got, want := c.Sub["asset"].Flags["period"].Predict(""), []string{"day", "week", "month", "quarter", "year"}; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("period predictions = %v, want %v", got, want)
	}
}

func TestKnown(t *testing.T) {
	if !Known("portfolio") {
		t.Error(`Known("portfolio") = false`)
	}
	if Known("fetch") {
		t.Error(`Known("fetch") = true`)
	}
}
