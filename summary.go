package cryptofolio

// PortfolioOptions are the optional inputs of CalculatePortfolioAnalytics.
type PortfolioOptions struct {
	Transfers    []Transfer
	FromMs, ToMs int64
	// DepositBasisPrices gives the deposit unit cost per symbol. Symbols are
	// normalized. Assets without an entry use their current price.
	DepositBasisPrices map[string]Money
	NowMs              int64
}

// PortfolioAnalyticsSummary folds the analytics of every asset.
type PortfolioAnalyticsSummary struct {
	Assets             []AssetAnalytics `json:"assets"`
	TotalValue         Money            `json:"totalValue"`
	TotalCostBasis     Money            `json:"totalCostBasis"`
	TotalRealizedPnl   Money            `json:"totalRealizedPnl"`
	TotalUnrealizedPnl Money            `json:"totalUnrealizedPnl"`
	TotalFeesUSD       Money            `json:"totalFeesUsd"`
	TotalTrades        int              `json:"totalTrades"`
	WinningTrades      int              `json:"winningTrades"`
	WinRate            Percent          `json:"winRate"`
	EstimatedAssets    int              `json:"estimatedAssets"`
}

// CalculatePortfolioAnalytics computes the analytics of each asset and their
// totals.
//
// WinRate is a coarse approximation: all the sells of an asset count as wins
// when its average sell price is above its lifetime average buy price, and the
// count is divided by the number of buys and sells of the whole portfolio.
func CalculatePortfolioAnalytics(assets []PortfolioAsset, transactions []Transaction, opts PortfolioOptions) PortfolioAnalyticsSummary {
	basisPrices := make(map[string]Money, len(opts.DepositBasisPrices))
	for symbol, price := range opts.DepositBasisPrices {
		basisPrices[NormalizeSymbol(symbol)] = price
	}

	summary := PortfolioAnalyticsSummary{
		Assets: make([]AssetAnalytics, 0, len(assets)),
	}
	for _, asset := range assets {
		assetOpts := AnalyticsOptions{
			Transfers: opts.Transfers,
			FromMs:    opts.FromMs,
			ToMs:      opts.ToMs,
			NowMs:     opts.NowMs,
		}
		if price, ok := basisPrices[NormalizeSymbol(asset.Symbol)]; ok {
			assetOpts.DepositBasisPrice = &price
		}
		a := CalculateAssetAnalytics(asset, transactions, assetOpts)
		summary.Assets = append(summary.Assets, a)

		summary.TotalValue = summary.TotalValue.Add(a.CurrentValue)
		summary.TotalCostBasis = summary.TotalCostBasis.Add(a.CostBasis)
		summary.TotalRealizedPnl = summary.TotalRealizedPnl.Add(a.RealizedPnl)
		summary.TotalUnrealizedPnl = summary.TotalUnrealizedPnl.Add(a.UnrealizedPnl)
		summary.TotalFeesUSD = summary.TotalFeesUSD.Add(a.TotalFeesUSD)
		summary.TotalTrades += a.Trades()
		if a.SellCount > 0 && a.AvgSellPrice.GreaterThan(a.AvgBuyPriceLifetime) {
			summary.WinningTrades += a.SellCount
		}
		if a.BasisConfidence == Estimated {
			summary.EstimatedAssets++
		}
	}

	if summary.TotalTrades > 0 {
		summary.WinRate = Percent(float64(summary.WinningTrades) / float64(summary.TotalTrades) * 100)
	}
	return summary
}

// Asset returns the analytics of symbol, if present.
func (s PortfolioAnalyticsSummary) Asset(symbol string) (AssetAnalytics, bool) {
	symbol = NormalizeSymbol(symbol)
	for _, a := range s.Assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return AssetAnalytics{}, false
}
