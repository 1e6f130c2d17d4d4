package binance

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/betbot/govenue/pkg/report"
)

// Venue is the canonical venue identifier stamped on instruments.
const Venue = "BINANCE"

// ExchangeInfo is the venue's exchange metadata payload. Spot symbols
// carry precision inside filters; futures symbols carry integer precision
// fields directly.
type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	Symbols    []SymbolInfo `json:"symbols"`
}

type SymbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`

	PricePrecision    int32 `json:"pricePrecision"`
	QuantityPrecision int32 `json:"quantityPrecision"`

	Filters []SymbolFilter `json:"filters"`
}

type SymbolFilter struct {
	FilterType string `json:"filterType"`
	TickSize   string `json:"tickSize"`
	StepSize   string `json:"stepSize"`
}

// InstrumentProvider loads and caches instrument definitions for one
// account type. One provider is shared per account type through the
// registry, so loads from different clients never duplicate work.
type InstrumentProvider struct {
	client      *RESTClient
	accountType AccountType

	mu          sync.RWMutex
	instruments map[string]report.Instrument
}

func NewInstrumentProvider(client *RESTClient, accountType AccountType) *InstrumentProvider {
	accountType.assertKnown()
	return &InstrumentProvider{
		client:      client,
		accountType: accountType,
		instruments: make(map[string]report.Instrument),
	}
}

// AccountType returns the sub-market this provider serves.
func (p *InstrumentProvider) AccountType() AccountType { return p.accountType }

// Load fetches exchange metadata and replaces the cached definitions.
// Only tradable symbols are kept.
func (p *InstrumentProvider) Load(ctx context.Context) error {
	var info ExchangeInfo
	path := apiPrefix(p.accountType) + "/exchangeInfo"
	if err := p.client.Get(ctx, path, nil, &info); err != nil {
		return err
	}

	instruments := make(map[string]report.Instrument, len(info.Symbols))
	for _, sym := range info.Symbols {
		if sym.Status != "TRADING" {
			continue
		}
		inst, err := p.instrumentFor(sym)
		if err != nil {
			return fmt.Errorf("symbol %s: %w", sym.Symbol, err)
		}
		instruments[sym.Symbol] = inst
	}

	p.mu.Lock()
	p.instruments = instruments
	p.mu.Unlock()
	return nil
}

func (p *InstrumentProvider) instrumentFor(sym SymbolInfo) (report.Instrument, error) {
	inst := report.Instrument{
		ID:    sym.Symbol,
		Venue: Venue,
	}

	if p.accountType.IsFuturesFamily() {
		inst.PricePrecision = sym.PricePrecision
		inst.SizePrecision = sym.QuantityPrecision
		return inst, nil
	}

	for _, f := range sym.Filters {
		switch f.FilterType {
		case "PRICE_FILTER":
			prec, err := precisionFromStep(f.TickSize)
			if err != nil {
				return report.Instrument{}, err
			}
			inst.PricePrecision = prec
		case "LOT_SIZE":
			prec, err := precisionFromStep(f.StepSize)
			if err != nil {
				return report.Instrument{}, err
			}
			inst.SizePrecision = prec
		}
	}
	return inst, nil
}

// Instrument returns the cached definition for a symbol.
func (p *InstrumentProvider) Instrument(symbol string) (report.Instrument, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	inst, ok := p.instruments[symbol]
	return inst, ok
}

// Count returns the number of cached definitions.
func (p *InstrumentProvider) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.instruments)
}

// precisionFromStep converts a venue step string such as "0.01000000"
// into a decimal-place count.
func precisionFromStep(step string) (int32, error) {
	d, err := decimal.NewFromString(step)
	if err != nil {
		return 0, fmt.Errorf("malformed step %q: %w", step, err)
	}
	s := d.String()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return int32(len(s) - i - 1), nil
	}
	return 0, nil
}
