package cryptofolio

import "testing"

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"btc", "BTC"},
		{" BTC ", "BTC"},
		{"BTCUSDT", "BTC"},
		{"ETHUSDC", "ETH"},
		{"BNBBUSD", "BNB"},
		{"SOLFDUSD", "SOL"},
		{"BTC/USDC", "BTC"},
		{"eth-usd", "ETH"},
		{"BTC_USDT", "BTC"},
		{"BTC-PERP", "BTC"},
		{"BTCPERP", "BTC"},
		{"BTCUSDTPERP", "BTC"},
		{"wbtc", "BTC"},
		{"WETH", "ETH"},
		{"WBNB", "BNB"},
		{"WSOL", "SOL"},
		{"WMATIC", "MATIC"},
		{"WAVAX", "AVAX"},
		{"WETHUSDT", "ETH"},
		{"USDT", "USDT"},
		{"usdc", "USDC"},
		{"TUSD", "TUSD"},
		{"PERP", "PERP"},
		{"crvUSD", "CRVUSD"},
		{"CRVUSDUSDT", "CRVUSD"},
		{"crvUSD/USDC", "CRVUSD"},
		{"CRVUSDT", "CRV"},
		{"sUSD", "SUSD"},
		{"LUSD", "LUSD"},
		{"PYUSDUSDC", "PYUSD"},
		{"USDCUSDT", "USDC"},
		{"BTCUSDUSDT", "BTC"},
		{"WBTCUSDTPERP", "BTC"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeSymbol(tt.in); got != tt.want {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeSymbol_Idempotent(t *testing.T) {
	for _, s := range []string{"WBTC", "BTCUSDT", "eth/usdc", "BTC-PERP", "USDT", "CRVUSDUSDT", "sUSD", "BTCUSDUSDT", "USDCUSDT"} {
		once := NormalizeSymbol(s)
		if twice := NormalizeSymbol(once); twice != once {
			t.Errorf("NormalizeSymbol(NormalizeSymbol(%q)) = %q, want %q", s, twice, once)
		}
	}
}
