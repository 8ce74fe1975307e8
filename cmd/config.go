package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/agent"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the cfo configuration.
type Config struct {
	TransactionsFile string `toml:"transactions_file"`
	TransfersFile    string `toml:"transfers_file"`
	AssetsFile       string `toml:"assets_file"`
	LogLevel         string `toml:"log_level"`
	// DepositBasis is the USD unit cost of deposited units, per symbol.
	DepositBasis map[string]float64 `toml:"deposit_basis"`
	Server       ServerConfig       `toml:"server"`
	Assist       AssistConfig       `toml:"assist"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AssistConfig holds the assistant configuration.
type AssistConfig struct {
	Model string `toml:"model"`
	// APIKeyEnv names the environment variable holding the Gemini API key.
	APIKeyEnv string `toml:"api_key_env"`
}

// Environment variables overriding the configuration. They are also passed
// to extensions.
const (
	EnvTransactionsFile = "CFO_TRANSACTIONS_FILE"
	EnvTransfersFile    = "CFO_TRANSFERS_FILE"
	EnvAssetsFile       = "CFO_ASSETS_FILE"
	EnvLogLevel         = "CFO_LOG_LEVEL"
	EnvServerAddr       = "CFO_SERVER_ADDR"
	EnvAssistModel      = "CFO_ASSIST_MODEL"
)

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		TransactionsFile: "transactions.jsonl",
		TransfersFile:    "transfers.jsonl",
		AssetsFile:       "assets.jsonl",
		LogLevel:         "info",
		DepositBasis:     map[string]float64{},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Assist: AssistConfig{
			Model:     agent.DefaultModel,
			APIKeyEnv: "GEMINI_API_KEY",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Missing files are skipped, later files override earlier ones.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvTransactionsFile); v != "" {
		config.TransactionsFile = v
	}
	if v := os.Getenv(EnvTransfersFile); v != "" {
		config.TransfersFile = v
	}
	if v := os.Getenv(EnvAssetsFile); v != "" {
		config.AssetsFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv(EnvAssistModel); v != "" {
		config.Assist.Model = v
	}
}

// DepositBasisPrices returns the deposit basis as Money, keyed by normalized
// symbol.
func (c *Config) DepositBasisPrices() map[string]cryptofolio.Money {
	prices := make(map[string]cryptofolio.Money, len(c.DepositBasis))
	for symbol, price := range c.DepositBasis {
		prices[cryptofolio.NormalizeSymbol(symbol)] = cryptofolio.USD(price)
	}
	return prices
}

// Env returns the configuration as environment variables.
func (c *Config) Env() []string {
	return []string{
		EnvTransactionsFile + "=" + c.TransactionsFile,
		EnvTransfersFile + "=" + c.TransfersFile,
		EnvAssetsFile + "=" + c.AssetsFile,
		EnvLogLevel + "=" + c.LogLevel,
		EnvServerAddr + "=" + c.Server.Addr,
		EnvAssistModel + "=" + c.Assist.Model,
	}
}
