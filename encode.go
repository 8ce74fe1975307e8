package cryptofolio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// maxLineSize is the longest JSONL line accepted by the decoders.
const maxLineSize = 1 << 20

// DecodeTransactions reads transactions in JSONL format, one object per line.
// Blank lines are ignored. Every malformed line is reported with its number.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	return decodeLines[Transaction](r)
}

// DecodeTransfers reads transfers in JSONL format.
func DecodeTransfers(r io.Reader) ([]Transfer, error) {
	return decodeLines[Transfer](r)
}

// DecodeAssets reads portfolio assets in JSONL format.
func DecodeAssets(r io.Reader) ([]PortfolioAsset, error) {
	return decodeLines[PortfolioAsset](r)
}

// decodeLines parses r line by line. It keeps going after a bad line so that
// all the errors of a file are reported at once.
func decodeLines[T any](r io.Reader) ([]T, error) {
	list := make([]T, 0)
	var errs []error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	i := 0
	for scanner.Scan() {
		i++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", i, err))
			continue
		}
		list = append(list, v)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("line %d: %w", i+1, err))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return list, nil
}

// EncodeTransaction writes tx to w as a single JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	if err := encodeLine(w, tx); err != nil {
		return fmt.Errorf("failed to write transaction %q: %w", tx.ID, err)
	}
	return nil
}

// EncodeTransfer writes tr to w as a single JSONL line.
func EncodeTransfer(w io.Writer, tr Transfer) error {
	if err := encodeLine(w, tr); err != nil {
		return fmt.Errorf("failed to write transfer %q: %w", tr.ID, err)
	}
	return nil
}

func encodeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
