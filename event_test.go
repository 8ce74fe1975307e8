package cryptofolio

import "testing"

// day is one day in epoch milliseconds.
const day = int64(millisPerDay)

func TestBuildLedgerEvents(t *testing.T) {
	txs := []Transaction{
		{ID: "t3", Symbol: "BTCUSDT", Side: "SELL", Quantity: Q(1), Price: USD(300), Timestamp: 3 * day, Source: "binance"},
		{ID: "t1", Symbol: "btc", Side: "buy", Quantity: Q(1), Price: USD(100), Fee: USD(-1), Timestamp: 1 * day},
		{ID: "e1", Symbol: "ETH", Side: "buy", Quantity: Q(5), Price: USD(10), Timestamp: 1 * day},
		{ID: "bad", Symbol: "BTC", Side: "hodl", Quantity: Q(1), Price: USD(1), Timestamp: 1 * day},
		{ID: "zero", Symbol: "BTC", Side: "buy", Quantity: Q(0), Price: USD(1), Timestamp: 1 * day},
		{ID: "t2", Symbol: "WBTC", Side: "Bid", Quantity: Q(-2), Price: USD(200), Timestamp: 2 * day},
	}
	transfers := []Transfer{
		{ID: "d1", Symbol: "BTC", Direction: "in", Quantity: Q(0.5), Timestamp: 2 * day},
		{ID: "w1", Symbol: "btc", Direction: "OUT", Quantity: Q(0.25), Timestamp: 4 * day},
		{ID: "x", Symbol: "BTC", Direction: "sideways", Quantity: Q(1), Timestamp: 4 * day},
	}

	events := BuildLedgerEvents(EventQuery{
		Symbol:            "BTC",
		Transactions:      txs,
		Transfers:         transfers,
		DepositBasisPrice: USD(150),
	})

	want := []struct {
		kind      EventKind
		timestamp int64
		quantity  Quantity
		unitPrice Money
	}{
		{Buy, 1 * day, Q(1), USD(100)},
		{Buy, 2 * day, Q(2), USD(200)},
		{Deposit, 2 * day, Q(0.5), USD(150)},
		{Sell, 3 * day, Q(1), USD(300)},
		{Withdrawal, 4 * day, Q(0.25), USD(150)},
	}
	if len(events) != len(want) {
		t.Fatalf("BuildLedgerEvents() returned %d events, want %d: %v", len(events), len(want), events)
	}
	for i, w := range want {
		got := events[i]
		if got.Kind != w.kind || got.Timestamp != w.timestamp || !got.Quantity.Equal(w.quantity) || !got.UnitPrice.Equal(w.unitPrice) {
			t.Errorf("event[%d] = {%s %d %v %v}, want {%s %d %v %v}", i,
				got.Kind, got.Timestamp, got.Quantity, got.UnitPrice,
				w.kind, w.timestamp, w.quantity, w.unitPrice)
		}
	}

	if got, want := events[0].FeeUSD, USD(1); !got.Equal(want) {
		t.Errorf("fee of first event = %v, want %v", got, want)
	}
	if got, want := events[3].SourceID, "binance"; got != want {
		t.Errorf("source of sell = %q, want %q", got, want)
	}
}

func TestBuildLedgerEvents_Range(t *testing.T) {
	txs := []Transaction{
		{Symbol: "BTC", Side: "buy", Quantity: Q(1), Price: USD(100), Timestamp: 1 * day},
		{Symbol: "BTC", Side: "buy", Quantity: Q(1), Price: USD(200), Timestamp: 2 * day},
		{Symbol: "BTC", Side: "buy", Quantity: Q(1), Price: USD(300), Timestamp: 3 * day},
	}
	tests := []struct {
		name     string
		from, to int64
		want     int
	}{
		{"unbounded", 0, 0, 3},
		{"from is inclusive", 2 * day, 0, 2},
		{"to is inclusive", 0, 2 * day, 2},
		{"single day", 2 * day, 2 * day, 1},
		{"empty window", 4 * day, 5 * day, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := BuildLedgerEvents(EventQuery{Symbol: "BTC", Transactions: txs, FromMs: tt.from, ToMs: tt.to})
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestBuildLedgerEvents_Empty(t *testing.T) {
	events := BuildLedgerEvents(EventQuery{Symbol: "BTC"})
	if events == nil {
		t.Fatal("BuildLedgerEvents() = nil, want an empty slice")
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestLedgerEvent_MarshalJSON(t *testing.T) {
	e := LedgerEvent{Kind: Sell, Timestamp: 42, Quantity: Q(1.5), UnitPrice: USD(10), FeeUSD: USD(0.1), SourceID: "kraken"}
	got, err := e.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	want := `{"kind":"sell","timestamp":42,"quantity":1.5,"unitPrice":10,"feeUsd":0.1,"sourceId":"kraken"}`
	if string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestBuildLedgerEvents_NormalizedQuery(t *testing.T) {
	txs := []Transaction{
		{ID: "a", Symbol: "CRVUSDUSDT", Side: "buy", Quantity: Q(10), Price: USD(1), Timestamp: 1 * day},
		{ID: "b", Symbol: "CRVUSDT", Side: "buy", Quantity: Q(5), Price: USD(0.5), Timestamp: 2 * day},
	}
	tests := []struct {
		symbol string
		want   int
	}{
		{"CRVUSDUSDT", 1},
		{NormalizeSymbol("CRVUSDUSDT"), 1},
		{"crvUSD", 1},
		{"CRV", 1},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			events := BuildLedgerEvents(EventQuery{Symbol: tt.symbol, Transactions: txs})
			if len(events) != tt.want {
				t.Errorf("BuildLedgerEvents(%q) returned %d events, want %d", tt.symbol, len(events), tt.want)
			}
		})
	}
}
