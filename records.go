package cryptofolio

import "strings"

// Transaction is a trade reported by an exchange or wallet connector.
//
// Side is kept as reported ("BUY", "sell", "Bid", ...) and is only
// interpreted by BuildLedgerEvents.
type Transaction struct {
	ID        string   `json:"id"`
	Symbol    string   `json:"symbol"`
	Side      string   `json:"side"`
	Quantity  Quantity `json:"quantity"`
	Price     Money    `json:"price"`     // USD per unit
	Fee       Money    `json:"fee"`       // USD, zero when unknown
	Timestamp int64    `json:"timestamp"` // epoch milliseconds
	Source    string   `json:"source"`    // connection, exchange or wallet
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", t.ID)
	w.Append("symbol", t.Symbol)
	w.Append("side", t.Side)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price)
	if !t.Fee.IsZero() {
		w.Append("fee", t.Fee)
	}
	w.Append("timestamp", t.Timestamp)
	w.Optional("source", t.Source)
	return w.MarshalJSON()
}

// Transfer is a movement of an asset in or out of a tracked wallet or exchange
// account.
type Transfer struct {
	ID        string   `json:"id"`
	Symbol    string   `json:"symbol"`
	Direction string   `json:"direction"`
	Quantity  Quantity `json:"quantity"`
	Fee       Money    `json:"fee"`       // USD, zero when unknown
	Timestamp int64    `json:"timestamp"` // epoch milliseconds
	Source    string   `json:"source"`
}

// MarshalJSON implements the json.Marshaler interface for Transfer.
func (t Transfer) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", t.ID)
	w.Append("symbol", t.Symbol)
	w.Append("direction", t.Direction)
	w.Append("quantity", t.Quantity)
	if !t.Fee.IsZero() {
		w.Append("fee", t.Fee)
	}
	w.Append("timestamp", t.Timestamp)
	w.Optional("source", t.Source)
	return w.MarshalJSON()
}

// PortfolioAsset is the live state of one holding: balance and market price.
type PortfolioAsset struct {
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name,omitempty"`
	Balance        Quantity `json:"balance"`
	Price          Money    `json:"price"`
	PriceChange24h *Percent `json:"priceChange24h,omitempty"` // nil when unknown
}

// Value returns balance times price.
func (a PortfolioAsset) Value() Money { return a.Price.Mul(a.Balance) }

// parseSide interprets a trade side as reported by connectors.
func parseSide(side string) (EventKind, bool) {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "buy", "b", "bid", "long":
		return Buy, true
	case "sell", "s", "ask", "short":
		return Sell, true
	default:
		return "", false
	}
}

// parseDirection interprets a transfer direction as reported by connectors.
func parseDirection(direction string) (EventKind, bool) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "deposit", "in", "incoming", "receive", "received":
		return Deposit, true
	case "withdrawal", "withdraw", "out", "outgoing", "send", "sent":
		return Withdrawal, true
	default:
		return "", false
	}
}
