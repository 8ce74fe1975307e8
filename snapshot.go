package cryptofolio

// BasisConfidence tells whether a cost basis is fully backed by recorded
// trades.
type BasisConfidence string

const (
	// Exact cost basis: every held unit comes from a recorded buy.
	Exact BasisConfidence = "exact"
	// Estimated cost basis: deposits valued at an assumed price, sells with no
	// lot to consume, or a balance the history does not explain.
	Estimated BasisConfidence = "estimated"
)

// CostBasisSnapshot is the accounting state of one asset after replaying its
// ledger events.
//
// Ratio fields are zero, never NaN, when their denominator is zero.
//
// Withdrawals are kept out of TotalSold so that AvgSellPrice only averages
// priced sales. The quantities therefore satisfy
//
//	NetPosition = TotalBought - TotalSold - TotalWithdrawn + UnmatchedQuantity
//
// and not NetPosition = TotalBought - TotalSold.
type CostBasisSnapshot struct {
	AvgBuyPriceCurrent  Money           `json:"avgBuyPriceCurrent"`  // FIFO cost of held units per unit
	AvgBuyPriceLifetime Money           `json:"avgBuyPriceLifetime"` // cost of all acquisitions per unit
	AvgSellPrice        Money           `json:"avgSellPrice"`
	TotalBought         Quantity        `json:"totalBought"` // buys and deposits
	TotalSold           Quantity        `json:"totalSold"`   // sells only, withdrawals excluded
	TotalCost           Money           `json:"totalCost"`
	TotalProceeds       Money           `json:"totalProceeds"`
	RealizedPnl         Money           `json:"realizedPnl"`
	CostBasis           Money           `json:"costBasis"`
	UnrealizedPnl       Money           `json:"unrealizedPnl"`
	NetPosition         Quantity        `json:"netPosition"` // remaining FIFO quantity
	FirstBuyDate        int64           `json:"firstBuyDate"`
	LastBuyDate         int64           `json:"lastBuyDate"`
	LastSellDate        int64           `json:"lastSellDate"`
	BuyCount            int             `json:"buyCount"`
	SellCount           int             `json:"sellCount"`
	BasisConfidence     BasisConfidence `json:"basisConfidence"`
	TotalFeesUSD        Money           `json:"totalFeesUsd"`

	TotalDeposited    Quantity `json:"totalDeposited"`
	TotalWithdrawn    Quantity `json:"totalWithdrawn"`
	DepositCount      int      `json:"depositCount"`
	WithdrawalCount   int      `json:"withdrawalCount"`
	UnmatchedQuantity Quantity `json:"unmatchedQuantity"` // sold or withdrawn with no lot left
	CurrentValue      Money    `json:"currentValue"`
	OpenLots          int      `json:"openLots"`
}

// Trades returns the number of buys and sells.
func (s CostBasisSnapshot) Trades() int { return s.BuyCount + s.SellCount }

// SnapshotInput is what ComputeCostBasisSnapshot needs.
type SnapshotInput struct {
	Events         []LedgerEvent // chronological, as returned by BuildLedgerEvents
	CurrentPrice   Money
	CurrentBalance Quantity // live balance, trusted for valuation only
}

// ComputeCostBasisSnapshot replays events through a FIFO lot queue.
//
// Buys and deposits open lots; sells and withdrawals consume the oldest lots
// first. Only sells realize PnL. Every fee is subtracted from the realized PnL
// of the event carrying it. Units sold with no lot left to consume are
// realized at zero cost and make the basis Estimated.
//
// The cost basis comes from the remaining lots while the market value comes
// from in.CurrentBalance: the two may disagree when the history is partial.
func ComputeCostBasisSnapshot(in SnapshotInput) CostBasisSnapshot {
	var s CostBasisSnapshot
	var held lots

	for _, e := range in.Events {
		s.TotalFeesUSD = s.TotalFeesUSD.Add(e.FeeUSD)
		s.RealizedPnl = s.RealizedPnl.Sub(e.FeeUSD)

		switch e.Kind {
		case Buy, Deposit:
			held = append(held, lot{
				AcquiredAt: e.Timestamp,
				Quantity:   e.Quantity,
				UnitCost:   e.UnitPrice,
				Estimated:  e.Kind == Deposit,
			})
			s.TotalBought = s.TotalBought.Add(e.Quantity)
			s.TotalCost = s.TotalCost.Add(e.Value())

			if e.Kind == Deposit {
				s.DepositCount++
				s.TotalDeposited = s.TotalDeposited.Add(e.Quantity)
				continue
			}
			s.BuyCount++
			if s.FirstBuyDate == 0 || e.Timestamp < s.FirstBuyDate {
				s.FirstBuyDate = e.Timestamp
			}
			if e.Timestamp > s.LastBuyDate {
				s.LastBuyDate = e.Timestamp
			}

		case Sell, Withdrawal:
			cost, unmatched, remaining := held.consume(e.Quantity)
			held = remaining
			s.UnmatchedQuantity = s.UnmatchedQuantity.Add(unmatched)

			if e.Kind == Withdrawal {
				s.WithdrawalCount++
				s.TotalWithdrawn = s.TotalWithdrawn.Add(e.Quantity)
				continue
			}
			proceeds := e.Value()
			s.RealizedPnl = s.RealizedPnl.Add(proceeds.Sub(cost))
			s.SellCount++
			s.TotalSold = s.TotalSold.Add(e.Quantity)
			s.TotalProceeds = s.TotalProceeds.Add(proceeds)
			if e.Timestamp > s.LastSellDate {
				s.LastSellDate = e.Timestamp
			}
		}
	}

	s.CostBasis = held.cost()
	s.NetPosition = held.quantity()
	for _, l := range held {
		if l.Quantity.IsPositive() {
			s.OpenLots++
		}
	}

	s.AvgBuyPriceCurrent = s.CostBasis.Div(s.NetPosition)
	s.AvgBuyPriceLifetime = s.TotalCost.Div(s.TotalBought)
	s.AvgSellPrice = s.TotalProceeds.Div(s.TotalSold)

	s.CurrentValue = in.CurrentPrice.Mul(in.CurrentBalance)
	s.UnrealizedPnl = s.CurrentValue.Sub(s.CostBasis)

	s.BasisConfidence = Exact
	if held.estimated() || s.UnmatchedQuantity.IsPositive() || in.CurrentBalance.GreaterThan(s.NetPosition) {
		s.BasisConfidence = Estimated
	}
	return s
}
