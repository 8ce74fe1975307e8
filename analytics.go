package cryptofolio

import "github.com/shopspring/decimal"

const millisPerDay = 24 * 60 * 60 * 1000

// AnalyticsOptions are the optional inputs of CalculateAssetAnalytics.
type AnalyticsOptions struct {
	Transfers []Transfer
	// FromMs and ToMs bound the range-scoped snapshot, zero is unbounded.
	FromMs, ToMs int64
	// DepositBasisPrice overrides the unit cost of deposits. Nil uses the
	// asset's current price.
	DepositBasisPrice *Money
	// NowMs is the reference time for DaysHeld. Zero disables it.
	NowMs int64
}

// AssetAnalytics is the lifetime cost basis snapshot of one asset enriched
// with the figures dashboard widgets display directly.
type AssetAnalytics struct {
	CostBasisSnapshot

	Symbol         string   `json:"symbol"`
	Name           string   `json:"name,omitempty"`
	Price          Money    `json:"price"`
	Balance        Quantity `json:"balance"`
	PriceChange24h *Percent `json:"priceChange24h,omitempty"`

	AvgBuyPrice          Money           `json:"avgBuyPrice"` // same as AvgBuyPriceCurrent
	UnrealizedPnlPercent Percent         `json:"unrealizedPnlPercent"`
	DaysHeld             int             `json:"daysHeld"`
	PriceDistance        decimal.Decimal `json:"priceDistance"`
	DCASignal            DCASignal       `json:"dcaSignal"`

	// Range is the snapshot restricted to the requested period. It equals the
	// lifetime snapshot when no bounds were given.
	Range            CostBasisSnapshot `json:"range"`
	RangeAvgBuyPrice Money             `json:"rangeAvgBuyPrice"`

	// UsedPriceChangeFallback is set when UnrealizedPnl and its percent were
	// approximated from the 24h price change for lack of a cost basis.
	UsedPriceChangeFallback bool `json:"usedPriceChangeFallback,omitempty"`
}

// CalculateAssetAnalytics computes the analytics of one asset.
//
// Lifetime figures always use the full history; opts.FromMs and opts.ToMs only
// scope the Range snapshot. The function is pure: identical inputs give
// identical outputs.
func CalculateAssetAnalytics(asset PortfolioAsset, transactions []Transaction, opts AnalyticsOptions) AssetAnalytics {
	basis := asset.Price
	if opts.DepositBasisPrice != nil {
		basis = *opts.DepositBasisPrice
	}

	query := EventQuery{
		Symbol:            asset.Symbol,
		Transactions:      transactions,
		Transfers:         opts.Transfers,
		DepositBasisPrice: basis,
	}
	lifetime := ComputeCostBasisSnapshot(SnapshotInput{
		Events:         BuildLedgerEvents(query),
		CurrentPrice:   asset.Price,
		CurrentBalance: asset.Balance,
	})

	scoped := lifetime
	if opts.FromMs != 0 || opts.ToMs != 0 {
		query.FromMs, query.ToMs = opts.FromMs, opts.ToMs
		scoped = ComputeCostBasisSnapshot(SnapshotInput{
			Events:         BuildLedgerEvents(query),
			CurrentPrice:   asset.Price,
			CurrentBalance: asset.Balance,
		})
	}

	a := AssetAnalytics{
		CostBasisSnapshot: lifetime,
		Symbol:            NormalizeSymbol(asset.Symbol),
		Name:              asset.Name,
		Price:             asset.Price,
		Balance:           asset.Balance,
		PriceChange24h:    asset.PriceChange24h,
		AvgBuyPrice:       lifetime.AvgBuyPriceCurrent,
		PriceDistance:     decimal.Zero,
		DCASignal:         SignalHold,
		Range:             scoped,
		RangeAvgBuyPrice:  scoped.AvgBuyPriceLifetime,
	}

	if a.AvgBuyPrice.IsPositive() {
		a.PriceDistance = asset.Price.Sub(a.AvgBuyPrice).Ratio(a.AvgBuyPrice)
		if asset.Price.IsPositive() {
			a.DCASignal = ClassifyDCA(a.PriceDistance)
		}
	}

	switch {
	case !a.AvgBuyPrice.IsZero():
		a.UnrealizedPnlPercent = percentOf(lifetime.UnrealizedPnl.Decimal(), lifetime.CostBasis.Decimal())
	case asset.Price.IsPositive() && asset.PriceChange24h != nil:
		// Wallet-only holding: assume the position was worth value/(1+pct)
		// a day ago and report the 24h move as the unrealized PnL.
		pct := decimal.NewFromFloat(float64(*asset.PriceChange24h))
		gain := lifetime.CurrentValue.Decimal().Mul(pct)
		a.UnrealizedPnl = USD(safeDiv(gain, pct.Add(decimal.NewFromInt(100))))
		a.UnrealizedPnlPercent = *asset.PriceChange24h
		a.UsedPriceChangeFallback = true
	}

	a.DaysHeld = DaysHeld(lifetime.FirstBuyDate, opts.NowMs)
	return a
}

// DaysHeld returns the number of whole days from firstBuyMs to nowMs, or 0
// when either is unset or nowMs is earlier.
func DaysHeld(firstBuyMs, nowMs int64) int {
	if firstBuyMs <= 0 || nowMs <= firstBuyMs {
		return 0
	}
	return int((nowMs - firstBuyMs) / millisPerDay)
}
