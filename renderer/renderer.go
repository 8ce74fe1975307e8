// Package renderer turns analytics into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/date"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"date":     formatDate,
	"distance": formatDistance,
	"cell":     escapeCell,
}).ParseFS(templatesFS, "templates/*.md"))

// formatDate formats an epoch millisecond as a day, "-" when unset.
func formatDate(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return date.FromMillis(ms).String()
}

// formatDistance formats a price distance ratio as a signed percentage.
func formatDistance(d decimal.Decimal) string {
	return cryptofolio.Percent(d.Shift(2).InexactFloat64()).SignedString()
}

// escapeCell makes s safe in a markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// renderTemplate executes one of the embedded templates.
func renderTemplate(name string, data any) string {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}

// assetView adds presentation only fields to AssetAnalytics.
type assetView struct {
	cryptofolio.AssetAnalytics
	RangeLabel string
}

// AssetOptions tune AssetMarkdown.
type AssetOptions struct {
	// Range labels the range-scoped column, "Range" when empty.
	Range string
}

// AssetMarkdown renders the analytics of one asset.
func AssetMarkdown(a cryptofolio.AssetAnalytics, opts AssetOptions) string {
	label := opts.Range
	if label == "" {
		label = "Range"
	}
	return renderTemplate("asset.md", assetView{AssetAnalytics: a, RangeLabel: escapeCell(label)})
}

// PortfolioMarkdown renders a portfolio summary, assets by decreasing value.
func PortfolioMarkdown(s cryptofolio.PortfolioAnalyticsSummary) string {
	assets := make([]cryptofolio.AssetAnalytics, len(s.Assets))
	copy(assets, s.Assets)
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].CurrentValue.GreaterThan(assets[j].CurrentValue)
	})
	s.Assets = assets
	return renderTemplate("portfolio.md", s)
}

// EventsMarkdown renders the ledger events of symbol as a table.
func EventsMarkdown(symbol string, events []cryptofolio.LedgerEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s events\n\n", escapeCell(symbol))
	if len(events) == 0 {
		fmt.Fprintln(&b, "No events.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Time | Kind | Quantity | Unit price | Value | Fee | Source |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|:---|")
	for _, e := range events {
		fee := "-"
		if !e.FeeUSD.IsZero() {
			fee = e.FeeUSD.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			formatTime(e.Timestamp),
			e.Kind,
			e.Quantity,
			e.UnitPrice,
			e.Value(),
			fee,
			escapeCell(e.SourceID),
		)
	}
	return b.String()
}

// formatTime formats an epoch millisecond in UTC to the minute.
func formatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}
