package cryptofolio

import "sort"

// EventKind is the type of a LedgerEvent.
type EventKind string

const (
	Buy        EventKind = "buy"
	Sell       EventKind = "sell"
	Deposit    EventKind = "deposit"
	Withdrawal EventKind = "withdrawal"
)

// acquires reports whether the event adds a lot.
func (k EventKind) acquires() bool { return k == Buy || k == Deposit }

// LedgerEvent is a single, atomic movement of one asset.
// It is the lowest-level fact from which a CostBasisSnapshot is derived.
type LedgerEvent struct {
	Kind      EventKind
	Timestamp int64    // epoch milliseconds
	Quantity  Quantity // always positive, direction is given by Kind
	UnitPrice Money    // trade price, or the deposit basis price for transfers
	FeeUSD    Money
	SourceID  string
}

// Value returns quantity times unit price.
func (e LedgerEvent) Value() Money { return e.UnitPrice.Mul(e.Quantity) }

// MarshalJSON implements the json.Marshaler interface for LedgerEvent.
func (e LedgerEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", e.Kind)
	w.Append("timestamp", e.Timestamp)
	w.Append("quantity", e.Quantity)
	w.Append("unitPrice", e.UnitPrice)
	if !e.FeeUSD.IsZero() {
		w.Append("feeUsd", e.FeeUSD)
	}
	w.Optional("sourceId", e.SourceID)
	return w.MarshalJSON()
}

// EventQuery selects the events of one asset.
type EventQuery struct {
	Symbol       string
	Transactions []Transaction
	Transfers    []Transfer
	// FromMs and ToMs restrict events to [FromMs, ToMs], both inclusive.
	// Zero leaves that side unbounded.
	FromMs, ToMs int64
	// DepositBasisPrice is the unit cost assigned to deposited units, usually
	// the current market price when the historical one is unknown.
	DepositBasisPrice Money
}

// contains reports whether ts lies within the query bounds.
func (q EventQuery) contains(ts int64) bool {
	if q.FromMs != 0 && ts < q.FromMs {
		return false
	}
	if q.ToMs != 0 && ts > q.ToMs {
		return false
	}
	return true
}

// BuildLedgerEvents converts transactions and transfers of q.Symbol into a
// chronological sequence of ledger events.
//
// Symbols are compared after NormalizeSymbol. Records with an unknown side or
// direction, or with a zero quantity, are skipped. Events sharing a timestamp
// keep their input order, transactions first. The result is never nil.
func BuildLedgerEvents(q EventQuery) []LedgerEvent {
	symbol := NormalizeSymbol(q.Symbol)
	events := make([]LedgerEvent, 0, len(q.Transactions)+len(q.Transfers))

	for _, tx := range q.Transactions {
		if NormalizeSymbol(tx.Symbol) != symbol || !q.contains(tx.Timestamp) {
			continue
		}
		kind, ok := parseSide(tx.Side)
		if !ok || tx.Quantity.IsZero() {
			continue
		}
		events = append(events, LedgerEvent{
			Kind:      kind,
			Timestamp: tx.Timestamp,
			Quantity:  tx.Quantity.Abs(),
			UnitPrice: tx.Price,
			FeeUSD:    tx.Fee.Abs(),
			SourceID:  tx.Source,
		})
	}

	for _, tr := range q.Transfers {
		if NormalizeSymbol(tr.Symbol) != symbol || !q.contains(tr.Timestamp) {
			continue
		}
		kind, ok := parseDirection(tr.Direction)
		if !ok || tr.Quantity.IsZero() {
			continue
		}
		events = append(events, LedgerEvent{
			Kind:      kind,
			Timestamp: tr.Timestamp,
			Quantity:  tr.Quantity.Abs(),
			UnitPrice: q.DepositBasisPrice,
			FeeUSD:    tr.Fee.Abs(),
			SourceID:  tr.Source,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
	return events
}
