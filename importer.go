package cryptofolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordKind is the kind of record an Importer produces.
type RecordKind string

const (
	TransactionRecords RecordKind = "transactions"
	TransferRecords    RecordKind = "transfers"
)

// FieldMapping holds one JSONPath expression per target field, evaluated
// against each raw record. An empty expression leaves the field unset.
type FieldMapping struct {
	ID        string `toml:"id"`
	Symbol    string `toml:"symbol"`
	Side      string `toml:"side"`      // transactions only
	Direction string `toml:"direction"` // transfers only
	Quantity  string `toml:"quantity"`
	Price     string `toml:"price"` // transactions only
	Fee       string `toml:"fee"`
	Timestamp string `toml:"timestamp"`
}

// Importer turns a JSON export from an exchange or wallet into records.
type Importer struct {
	Kind RecordKind `toml:"kind"`
	// Records selects the list of raw records in the document. Empty means
	// the document itself is the list.
	Records string       `toml:"records"`
	Fields  FieldMapping `toml:"fields"`
	// Source is copied to every record produced.
	Source string `toml:"source"`
}

// Imported is the outcome of Importer.Import. Only the slice matching the
// importer's Kind is filled.
type Imported struct {
	Transactions []Transaction
	Transfers    []Transfer
}

// Len returns the number of records imported.
func (im Imported) Len() int { return len(im.Transactions) + len(im.Transfers) }

var builtinImporters = map[string]Importer{
	// GET /api/v3/myTrades. Commissions are paid in commissionAsset, not USD,
	// so they are not mapped.
	"binance-trades": {
		Kind: TransactionRecords,
		Fields: FieldMapping{
			ID:        "$.id",
			Symbol:    "$.symbol",
			Side:      "$.isBuyer",
			Quantity:  "$.qty",
			Price:     "$.price",
			Timestamp: "$.time",
		},
		Source: "binance",
	},
	// GET /v5/execution/list. execFee is in the settle coin, not USD, so it
	// is not mapped.
	"bybit-executions": {
		Kind:    TransactionRecords,
		Records: "$.result.list",
		Fields: FieldMapping{
			ID:        "$.execId",
			Symbol:    "$.symbol",
			Side:      "$.side",
			Quantity:  "$.execQty",
			Price:     "$.execPrice",
			Timestamp: "$.execTime",
		},
		Source: "bybit",
	},
	// GET /v1/wallets/{address}/transactions, first transfer of each
	// transaction only.
	"zerion-transfers": {
		Kind:    TransferRecords,
		Records: "$.data",
		Fields: FieldMapping{
			ID:        "$.id",
			Symbol:    "$.attributes.transfers[0].fungible_info.symbol",
			Direction: "$.attributes.transfers[0].direction",
			Quantity:  "$.attributes.transfers[0].quantity.numeric",
			Fee:       "$.attributes.fee.value",
			Timestamp: "$.attributes.mined_at",
		},
		Source: "zerion",
	},
}

// BuiltinImporter returns the importer registered under name.
func BuiltinImporter(name string) (Importer, bool) {
	im, ok := builtinImporters[name]
	return im, ok
}

// BuiltinImporters returns the names of the registered importers, sorted.
func BuiltinImporters() []string {
	names := make([]string, 0, len(builtinImporters))
	for name := range builtinImporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Import reads a JSON document from r and maps every selected record.
//
// Missing optional fields default to zero. A record missing a mandatory field
// (symbol, side or direction, quantity, timestamp) is reported with its index;
// all such errors are joined and no record is returned.
func (im Importer) Import(r io.Reader) (Imported, error) {
	var result Imported
	if im.Kind != TransactionRecords && im.Kind != TransferRecords {
		return result, fmt.Errorf("unknown record kind %q", im.Kind)
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return result, fmt.Errorf("cannot parse import document: %w", err)
	}

	records, err := im.records(doc)
	if err != nil {
		return result, err
	}

	var errs []error
	for i, rec := range records {
		switch im.Kind {
		case TransactionRecords:
			tx, err := im.transaction(rec)
			if err != nil {
				errs = append(errs, fmt.Errorf("record %d: %w", i, err))
				continue
			}
			result.Transactions = append(result.Transactions, tx)
		case TransferRecords:
			tr, err := im.transfer(rec)
			if err != nil {
				errs = append(errs, fmt.Errorf("record %d: %w", i, err))
				continue
			}
			result.Transfers = append(result.Transfers, tr)
		}
	}
	if len(errs) > 0 {
		return Imported{}, errors.Join(errs...)
	}
	return result, nil
}

// records selects the list of raw records from doc.
func (im Importer) records(doc any) ([]any, error) {
	if im.Records != "" {
		v, err := jsonpath.Get(im.Records, doc)
		if err != nil {
			return nil, fmt.Errorf("cannot select records with %q: %w", im.Records, err)
		}
		doc = v
	}
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		return []any{v}, nil
	default:
		return nil, fmt.Errorf("records %q: not a list but %T", im.Records, doc)
	}
}

func (im Importer) transaction(rec any) (Transaction, error) {
	var tx Transaction
	var err error
	if tx.Symbol, err = mandatory(rec, "symbol", im.Fields.Symbol, asString); err != nil {
		return tx, err
	}
	if tx.Side, err = mandatory(rec, "side", im.Fields.Side, asSide); err != nil {
		return tx, err
	}
	if tx.Quantity, err = mandatory(rec, "quantity", im.Fields.Quantity, asQuantity); err != nil {
		return tx, err
	}
	if tx.Timestamp, err = mandatory(rec, "timestamp", im.Fields.Timestamp, asMillis); err != nil {
		return tx, err
	}
	if tx.Price, err = optional(rec, "price", im.Fields.Price, asMoney); err != nil {
		return tx, err
	}
	if tx.Fee, err = optional(rec, "fee", im.Fields.Fee, asMoney); err != nil {
		return tx, err
	}
	if tx.ID, err = optional(rec, "id", im.Fields.ID, asString); err != nil {
		return tx, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.Source = im.Source
	return tx, nil
}

func (im Importer) transfer(rec any) (Transfer, error) {
	var tr Transfer
	var err error
	if tr.Symbol, err = mandatory(rec, "symbol", im.Fields.Symbol, asString); err != nil {
		return tr, err
	}
	if tr.Direction, err = mandatory(rec, "direction", im.Fields.Direction, asString); err != nil {
		return tr, err
	}
	if tr.Quantity, err = mandatory(rec, "quantity", im.Fields.Quantity, asQuantity); err != nil {
		return tr, err
	}
	if tr.Timestamp, err = mandatory(rec, "timestamp", im.Fields.Timestamp, asMillis); err != nil {
		return tr, err
	}
	if tr.Fee, err = optional(rec, "fee", im.Fields.Fee, asMoney); err != nil {
		return tr, err
	}
	if tr.ID, err = optional(rec, "id", im.Fields.ID, asString); err != nil {
		return tr, err
	}
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	tr.Source = im.Source
	return tr, nil
}

// lookup evaluates path against rec. It reports false when the path is empty
// or selects nothing.
func lookup(rec any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	v, err := jsonpath.Get(path, rec)
	if err != nil {
		return nil, false
	}
	// jsonpath returns a list for wildcard paths, keep the first answer.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return v, v != nil
}

func mandatory[T any](rec any, name, path string, convert func(any) (T, error)) (T, error) {
	var zero T
	v, ok := lookup(rec, path)
	if !ok {
		return zero, fmt.Errorf("missing %s (%q)", name, path)
	}
	res, err := convert(v)
	if err != nil {
		return zero, fmt.Errorf("invalid %s (%q): %w", name, path, err)
	}
	return res, nil
}

func optional[T any](rec any, name, path string, convert func(any) (T, error)) (T, error) {
	var zero T
	v, ok := lookup(rec, path)
	if !ok {
		return zero, nil
	}
	res, err := convert(v)
	if err != nil {
		return zero, fmt.Errorf("invalid %s (%q): %w", name, path, err)
	}
	return res, nil
}

func asString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unexpected %T", v)
	}
}

// asSide also accepts a boolean "is buyer" flag.
func asSide(v any) (string, error) {
	if b, ok := v.(bool); ok {
		if b {
			return string(Buy), nil
		}
		return string(Sell), nil
	}
	return asString(v)
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch v := v.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unexpected %T", v)
	}
}

func asQuantity(v any) (Quantity, error) {
	d, err := asDecimal(v)
	return Q(d), err
}

func asMoney(v any) (Money, error) {
	d, err := asDecimal(v)
	return USD(d), err
}

// timeLayouts are the textual timestamp formats accepted, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// asMillis reads epoch milliseconds from a number, a numeric string or a
// date string. Dates without a zone are UTC.
func asMillis(v any) (int64, error) {
	s, err := asString(v)
	if err != nil {
		if f, ok := v.(float64); ok {
			return int64(f), nil
		}
		return 0, err
	}
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d.IntPart(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("invalid timestamp %q", s)
}
