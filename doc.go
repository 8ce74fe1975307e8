// Package cryptofolio reconstructs the cost basis of crypto holdings from
// the trades and transfers reported by exchange and wallet connectors.
//
// The package is a pure calculation layer:
//   - BuildLedgerEvents normalizes symbols and turns Transaction and Transfer
//     records into a chronological list of LedgerEvent.
//   - ComputeCostBasisSnapshot replays the events through a FIFO lot queue
//     and produces realized and unrealized PnL, averages and counters.
//   - CalculateAssetAnalytics combines a lifetime snapshot with a
//     range-scoped one and derives the DCA signal of an asset.
//   - CalculatePortfolioAnalytics folds the analytics of all assets.
//
// No function reads the clock, the network or the disk. Monetary values are
// USD, backed by exact decimals; every ratio with a zero denominator is zero.
//
// Records can be read from JSONL files (DecodeTransactions, DecodeTransfers,
// DecodeAssets) or mapped from arbitrary JSON exports with an Importer.
package cryptofolio
