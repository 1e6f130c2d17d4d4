package report

import (
	"github.com/shopspring/decimal"

	"github.com/betbot/govenue/pkg/fixed"
)

// Instrument carries the identity and fixed-point scaling of one tradable
// instrument. Precisions come from venue metadata; every numeric on a
// report for this instrument is scaled through them.
type Instrument struct {
	ID             string `json:"id"`
	Venue          string `json:"venue"`
	PricePrecision int32  `json:"price_precision"`
	SizePrecision  int32  `json:"size_precision"`
}

// PriceFromString parses a venue price string at this instrument's price
// precision.
func (i Instrument) PriceFromString(raw string) (decimal.Decimal, error) {
	return fixed.ToFixed(raw, i.PricePrecision)
}

// QtyFromString parses a venue quantity string at this instrument's size
// precision.
func (i Instrument) QtyFromString(raw string) (decimal.Decimal, error) {
	return fixed.ToFixed(raw, i.SizePrecision)
}
