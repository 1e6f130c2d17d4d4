// Package config loads the daemon configuration from a YAML or JSON file
// with environment-variable fallback. Precedence per field: file, then
// environment, then built-in default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// InstrumentConfig declares one tradable instrument the feed resolves
// venue asset ids against.
type InstrumentConfig struct {
	AssetID        string `yaml:"asset_id" json:"asset_id"`
	Symbol         string `yaml:"symbol" json:"symbol"`
	PricePrecision int32  `yaml:"price_precision" json:"price_precision"`
	SizePrecision  int32  `yaml:"size_precision" json:"size_precision"`
}

// FeedConfig controls the user-channel connection.
type FeedConfig struct {
	WSURL          string        // override, empty uses the venue default
	ProxyURL       string        // optional, falls back to proxy env vars
	Markets        []string      // condition ids to subscribe; empty means all
	MaxReconnects  int
	ReconnectDelay time.Duration
}

// JournalConfig controls the sqlite report journal.
type JournalConfig struct {
	Path     string
	Disabled bool
}

// OpsConfig controls the ops/debug HTTP server.
type OpsConfig struct {
	Addr     string
	Disabled bool
}

// BinanceConfig wires an optional execution client for the second venue.
type BinanceConfig struct {
	Enabled     bool
	AccountType string
	Testnet     bool
	US          bool
	BaseURLHTTP string
	BaseURLWS   string
}

// Config is the assembled daemon configuration.
type Config struct {
	AccountID   string
	Instruments []InstrumentConfig
	Feed        FeedConfig
	Journal     JournalConfig
	Ops         OpsConfig
	Binance     BinanceConfig

	LogLevel string
	LogFile  string
}

// configFile mirrors Config for YAML/JSON parsing.
type configFile struct {
	AccountID   string             `yaml:"account_id" json:"account_id"`
	Instruments []InstrumentConfig `yaml:"instruments" json:"instruments"`
	Feed        struct {
		WSURL              string   `yaml:"ws_url" json:"ws_url"`
		ProxyURL           string   `yaml:"proxy_url" json:"proxy_url"`
		Markets            []string `yaml:"markets" json:"markets"`
		MaxReconnects      int      `yaml:"max_reconnects" json:"max_reconnects"`
		ReconnectDelaySecs int      `yaml:"reconnect_delay_secs" json:"reconnect_delay_secs"`
	} `yaml:"feed" json:"feed"`
	Journal struct {
		Path     string `yaml:"path" json:"path"`
		Disabled bool   `yaml:"disabled" json:"disabled"`
	} `yaml:"journal" json:"journal"`
	Ops struct {
		Addr     string `yaml:"addr" json:"addr"`
		Disabled bool   `yaml:"disabled" json:"disabled"`
	} `yaml:"ops" json:"ops"`
	Binance struct {
		Enabled     bool   `yaml:"enabled" json:"enabled"`
		AccountType string `yaml:"account_type" json:"account_type"`
		Testnet     bool   `yaml:"testnet" json:"testnet"`
		US          bool   `yaml:"us" json:"us"`
		BaseURLHTTP string `yaml:"base_url_http" json:"base_url_http"`
		BaseURLWS   string `yaml:"base_url_ws" json:"base_url_ws"`
	} `yaml:"binance" json:"binance"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
}

var (
	globalConfig   *Config
	configFilePath string
)

// SetConfigPath sets the file Load reads.
func SetConfigPath(path string) {
	configFilePath = path
	globalConfig = nil
}

// Get returns the last loaded configuration, nil before Load.
func Get() *Config {
	return globalConfig
}

// Load reads the configured file (optional) and assembles the daemon
// configuration.
func Load() (*Config, error) {
	return LoadFromFile(configFilePath)
}

// LoadFromFile assembles configuration from the given file path. An empty
// path builds the configuration from environment and defaults alone.
func LoadFromFile(filePath string) (*Config, error) {
	var cf *configFile
	if filePath != "" {
		var err error
		cf, err = parseConfigFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", filePath, err)
		}
	}
	if cf == nil {
		cf = &configFile{}
	}

	cfg := &Config{
		AccountID:   firstNonEmpty(cf.AccountID, getEnv("ACCOUNT_ID", "")),
		Instruments: cf.Instruments,
		Feed: FeedConfig{
			WSURL:          firstNonEmpty(cf.Feed.WSURL, getEnv("FEED_WS_URL", "")),
			ProxyURL:       firstNonEmpty(cf.Feed.ProxyURL, getEnv("FEED_PROXY_URL", "")),
			Markets:        cf.Feed.Markets,
			MaxReconnects:  firstPositive(cf.Feed.MaxReconnects, parseIntEnv("FEED_MAX_RECONNECTS", 10)),
			ReconnectDelay: time.Duration(firstPositive(cf.Feed.ReconnectDelaySecs, parseIntEnv("FEED_RECONNECT_DELAY_SECS", 5))) * time.Second,
		},
		Journal: JournalConfig{
			Path:     firstNonEmpty(cf.Journal.Path, getEnv("JOURNAL_PATH", "data/reports.db")),
			Disabled: cf.Journal.Disabled || parseBoolEnv("JOURNAL_DISABLED", false),
		},
		Ops: OpsConfig{
			Addr:     firstNonEmpty(cf.Ops.Addr, getEnv("OPS_ADDR", ":8087")),
			Disabled: cf.Ops.Disabled || parseBoolEnv("OPS_DISABLED", false),
		},
		Binance: BinanceConfig{
			Enabled:     cf.Binance.Enabled || parseBoolEnv("BINANCE_ENABLED", false),
			AccountType: firstNonEmpty(cf.Binance.AccountType, getEnv("BINANCE_ACCOUNT_TYPE", "SPOT")),
			Testnet:     cf.Binance.Testnet || parseBoolEnv("BINANCE_TESTNET", false),
			US:          cf.Binance.US || parseBoolEnv("BINANCE_US", false),
			BaseURLHTTP: firstNonEmpty(cf.Binance.BaseURLHTTP, getEnv("BINANCE_BASE_URL_HTTP", "")),
			BaseURLWS:   firstNonEmpty(cf.Binance.BaseURLWS, getEnv("BINANCE_BASE_URL_WS", "")),
		},
		LogLevel: firstNonEmpty(cf.LogLevel, getEnv("LOG_LEVEL", "info")),
		LogFile:  firstNonEmpty(cf.LogFile, getEnv("LOG_FILE", "logs/feedd.log")),
	}

	if len(cfg.Feed.Markets) == 0 {
		cfg.Feed.Markets = parseList(getEnv("FEED_MARKETS", ""))
	}

	globalConfig = cfg
	configFilePath = filePath
	return cfg, nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.AccountID == "" {
		return fmt.Errorf("account_id is required (ACCOUNT_ID)")
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument must be configured")
	}
	seen := make(map[string]struct{}, len(c.Instruments))
	for _, inst := range c.Instruments {
		if inst.AssetID == "" {
			return fmt.Errorf("instrument %q: asset_id is required", inst.Symbol)
		}
		if inst.Symbol == "" {
			return fmt.Errorf("instrument %s: symbol is required", inst.AssetID)
		}
		if inst.PricePrecision < 0 || inst.SizePrecision < 0 {
			return fmt.Errorf("instrument %s: precision cannot be negative", inst.Symbol)
		}
		if _, dup := seen[inst.AssetID]; dup {
			return fmt.Errorf("instrument %s: duplicate asset_id %s", inst.Symbol, inst.AssetID)
		}
		seen[inst.AssetID] = struct{}{}
	}
	if !c.Journal.Disabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required unless the journal is disabled")
	}
	if !c.Ops.Disabled && c.Ops.Addr == "" {
		return fmt.Errorf("ops.addr is required unless the ops server is disabled")
	}
	if c.Feed.MaxReconnects < 0 {
		return fmt.Errorf("feed.max_reconnects cannot be negative")
	}
	return nil
}

func parseConfigFile(filePath string) (*configFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cf configFile
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		if err := json.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return &cf, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return fallback
}

// parseList splits a comma-separated value, dropping empty entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
