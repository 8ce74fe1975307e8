package cryptofolio

import (
	"slices"
	"strings"
)

// quoteAssets are stripped from pair symbols like BTCUSDT or ETH/USDC.
// Longest first so that FDUSD is not read as FD+USD.
var quoteAssets = []string{"FDUSD", "USDT", "USDC", "BUSD", "TUSD", "USD"}

// usdNamedAssets end in a quote suffix but are assets of their own.
var usdNamedAssets = map[string]bool{
	"CRVUSD": true,
	"SUSD":   true,
	"LUSD":   true,
	"PYUSD":  true,
	"GUSD":   true,
	"RLUSD":  true,
	"FRXUSD": true,
	"ZUSD":   true,
}

// wrappedAliases maps wrapped tokens to the asset they track.
var wrappedAliases = map[string]string{
	"WBTC":   "BTC",
	"WETH":   "ETH",
	"WBNB":   "BNB",
	"WSOL":   "SOL",
	"WMATIC": "MATIC",
	"WAVAX":  "AVAX",
}

// NormalizeSymbol returns the canonical asset symbol for s.
//
// It upper-cases, removes perpetual contract markers, keeps the base asset of
// a trading pair and resolves wrapped tokens, so that "wbtc", "BTCUSDT",
// "btc-perp" and "BTC/USDC" all normalize to "BTC". A bare quote asset such as
// "USDT", or a USD-named asset such as "crvUSD", normalizes to itself.
//
// NormalizeSymbol(NormalizeSymbol(s)) == NormalizeSymbol(s) for every s.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	for {
		next := normalizeStep(s)
		if next == s {
			return s
		}
		s = next
	}
}

// normalizeStep removes at most one layer of decoration from an upper-cased
// symbol. Every change shortens s or resolves an alias, so iterating it ends.
func normalizeStep(s string) string {
	if s == "" {
		return ""
	}
	s = strings.TrimSuffix(s, "-PERP")
	s = strings.TrimSuffix(s, "_PERP")
	if len(s) > len("PERP") {
		s = strings.TrimSuffix(s, "PERP")
	}

	// pairs with an explicit separator keep their base.
	if i := strings.IndexAny(s, "/-_"); i > 0 {
		s = s[:i]
	}

	if alias, ok := wrappedAliases[s]; ok {
		return alias
	}
	if isQuoteAsset(s) || usdNamedAssets[s] {
		return s
	}
	for _, quote := range quoteAssets {
		if len(s) > len(quote) && strings.HasSuffix(s, quote) {
			return strings.TrimSuffix(s, quote)
		}
	}
	return s
}

func isQuoteAsset(s string) bool {
	return slices.Contains(quoteAssets, s)
}

// sameSymbol reports whether a and b normalize to the same asset.
func sameSymbol(a, b string) bool {
	return NormalizeSymbol(a) == NormalizeSymbol(b)
}
