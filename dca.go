package cryptofolio

import "github.com/shopspring/decimal"

// DCASignal is a discrete recommendation derived from the distance between the
// market price and the average cost of held units.
type DCASignal string

const (
	SignalStrongBuy DCASignal = "STRONG_BUY"
	SignalBuy       DCASignal = "BUY"
	SignalHold      DCASignal = "HOLD"
	SignalTrim      DCASignal = "TRIM"
	SignalSell      DCASignal = "SELL"
)

var (
	strongBuyBelow = decimal.RequireFromString("-0.30")
	buyBelow       = decimal.RequireFromString("-0.10")
	holdUpTo       = decimal.RequireFromString("0.25")
	trimUpTo       = decimal.RequireFromString("0.50")
)

// ClassifyDCA maps a price distance, (price-avg)/avg, to a DCASignal.
//
//	d < -0.30          STRONG_BUY
//	-0.30 <= d < -0.10 BUY
//	-0.10 <= d <= 0.25 HOLD
//	0.25 < d <= 0.50   TRIM
//	d > 0.50           SELL
func ClassifyDCA(priceDistance decimal.Decimal) DCASignal {
	switch {
	case priceDistance.LessThan(strongBuyBelow):
		return SignalStrongBuy
	case priceDistance.LessThan(buyBelow):
		return SignalBuy
	case priceDistance.LessThanOrEqual(holdUpTo):
		return SignalHold
	case priceDistance.LessThanOrEqual(trimUpTo):
		return SignalTrim
	default:
		return SignalSell
	}
}
