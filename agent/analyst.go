package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/renderer"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-pro"

// SummaryFunc computes the current portfolio analytics.
type SummaryFunc func(ctx context.Context) (cryptofolio.PortfolioAnalyticsSummary, error)

// NewAnalyst returns the expert answering questions about the portfolio,
// backed by the analytics summary returns.
func NewAnalyst(model string, summary SummaryFunc) *Expert {
	if model == "" {
		model = DefaultModel
	}
	lib := AnalystFunctions(summary)
	return &Expert{
		Name: "Analyst",
		Description: `The Analyst reads the user's crypto portfolio: balances, cost basis,
		realized and unrealized PnL, and DCA signals.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a portfolio analyst in charge of the user's crypto holdings.
			Use the available tools to read the figures, never guess them:
			  - list_assets to learn which assets are held
			  - asset_analytics for the cost basis, PnL and DCA signal of one asset
			  - portfolio_summary for the totals

			Amounts are in USD. When the cost basis is estimated, say so.
			Answer in markdown.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// AnalystFunctions returns the functions the Analyst can call.
func AnalystFunctions(summary SummaryFunc) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "list_assets",
				Description: "Lists the assets of the portfolio with their name, balance, price and value.",
				Parameters:  &genai.Schema{Type: genai.TypeObject},
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown table of the assets.",
				},
			},
			Func: func(ctx context.Context, _ map[string]any) (string, error) {
				s, err := summary(ctx)
				if err != nil {
					return "", err
				}
				return assetList(s.Assets), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "asset_analytics",
				Description: "Returns the cost basis, realized and unrealized PnL, days held and DCA signal of one asset.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"symbol": {
							Type:        genai.TypeString,
							Description: "The asset symbol, like BTC. Pairs and wrapped tokens are accepted.",
						},
					},
					Required: []string{"symbol"},
				},
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown report of the asset.",
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				symbol, ok := args["symbol"].(string)
				if !ok {
					return "", fmt.Errorf("argument 'symbol' is not a string as expected but %T", args["symbol"])
				}
				s, err := summary(ctx)
				if err != nil {
					return "", err
				}
				a, ok := s.Asset(symbol)
				if !ok {
					return "", fmt.Errorf("asset %q is not in the portfolio", symbol)
				}
				return renderer.AssetMarkdown(a, renderer.AssetOptions{}), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "portfolio_summary",
				Description: "Returns the portfolio totals: value, cost basis, realized and unrealized PnL, fees and win rate.",
				Parameters:  &genai.Schema{Type: genai.TypeObject},
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown report of the portfolio.",
				},
			},
			Func: func(ctx context.Context, _ map[string]any) (string, error) {
				s, err := summary(ctx)
				if err != nil {
					return "", err
				}
				return renderer.PortfolioMarkdown(s), nil
			},
		},
	}
}

func assetList(assets []cryptofolio.AssetAnalytics) string {
	if len(assets) == 0 {
		return "No assets."
	}
	var b strings.Builder
	fmt.Fprintln(&b, "| Symbol | Name | Balance | Price | Value |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	for _, a := range assets {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", a.Symbol, a.Name, a.Balance, a.Price, a.CurrentValue)
	}
	return b.String()
}
