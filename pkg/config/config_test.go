package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
account_id: POLYMARKET-001
instruments:
  - asset_id: "71321045679252212594626385532706912750332728571942532289631379312455583992563"
    symbol: BTC-UPDOWN-YES
    price_precision: 2
    size_precision: 2
feed:
  markets:
    - "0xcondition"
  max_reconnects: 4
  reconnect_delay_secs: 2
journal:
  path: data/test.db
ops:
  addr: ":9099"
log_level: debug
`

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := LoadFromFile(writeTempConfig(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.AccountID != "POLYMARKET-001" {
		t.Errorf("AccountID = %q", cfg.AccountID)
	}
	if len(cfg.Instruments) != 1 || cfg.Instruments[0].Symbol != "BTC-UPDOWN-YES" {
		t.Errorf("instruments not parsed: %+v", cfg.Instruments)
	}
	if cfg.Feed.MaxReconnects != 4 {
		t.Errorf("MaxReconnects = %d", cfg.Feed.MaxReconnects)
	}
	if cfg.Feed.ReconnectDelay != 2*time.Second {
		t.Errorf("ReconnectDelay = %v", cfg.Feed.ReconnectDelay)
	}
	if cfg.Journal.Path != "data/test.db" {
		t.Errorf("Journal.Path = %q", cfg.Journal.Path)
	}
	if cfg.Ops.Addr != ":9099" {
		t.Errorf("Ops.Addr = %q", cfg.Ops.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("sample config should validate: %v", err)
	}
}

func TestLoadEnvFallback(t *testing.T) {
	t.Setenv("ACCOUNT_ID", "ENV-ACCOUNT")
	t.Setenv("FEED_MARKETS", "0xa, 0xb")
	t.Setenv("FEED_MAX_RECONNECTS", "7")
	t.Setenv("JOURNAL_DISABLED", "true")

	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AccountID != "ENV-ACCOUNT" {
		t.Errorf("AccountID = %q", cfg.AccountID)
	}
	if len(cfg.Feed.Markets) != 2 || cfg.Feed.Markets[1] != "0xb" {
		t.Errorf("Markets = %v", cfg.Feed.Markets)
	}
	if cfg.Feed.MaxReconnects != 7 {
		t.Errorf("MaxReconnects = %d", cfg.Feed.MaxReconnects)
	}
	if !cfg.Journal.Disabled {
		t.Error("JOURNAL_DISABLED not honored")
	}
	if cfg.Ops.Addr != ":8087" {
		t.Errorf("default ops addr = %q", cfg.Ops.Addr)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AccountID: "A",
			Instruments: []InstrumentConfig{
				{AssetID: "1", Symbol: "S", PricePrecision: 2, SizePrecision: 2},
			},
			Journal: JournalConfig{Path: "x.db"},
			Ops:     OpsConfig{Addr: ":1"},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}

	c := base()
	c.AccountID = ""
	if err := c.Validate(); err == nil {
		t.Error("missing account id accepted")
	}

	c = base()
	c.Instruments = nil
	if err := c.Validate(); err == nil {
		t.Error("empty instruments accepted")
	}

	c = base()
	c.Instruments = append(c.Instruments, InstrumentConfig{AssetID: "1", Symbol: "DUP"})
	if err := c.Validate(); err == nil {
		t.Error("duplicate asset_id accepted")
	}

	c = base()
	c.Instruments[0].PricePrecision = -1
	if err := c.Validate(); err == nil {
		t.Error("negative precision accepted")
	}

	c = base()
	c.Journal.Path = ""
	if err := c.Validate(); err == nil {
		t.Error("missing journal path accepted")
	}
	c.Journal.Disabled = true
	if err := c.Validate(); err != nil {
		t.Errorf("disabled journal should not need a path: %v", err)
	}
}

func TestLoadJSONFile(t *testing.T) {
	cfg, err := LoadFromFile(writeTempConfig(t, "config.json", `{
		"account_id": "JSON-ACCOUNT",
		"instruments": [{"asset_id": "9", "symbol": "X", "price_precision": 1, "size_precision": 1}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AccountID != "JSON-ACCOUNT" {
		t.Errorf("AccountID = %q", cfg.AccountID)
	}
}
