package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatusReport is an immutable snapshot of one venue order's state at
// report time. The venue-assigned order id is the source of truth and is
// never empty. The same venue state may be redelivered; consumers
// de-duplicate by content, this layer does not.
type OrderStatusReport struct {
	AccountID     string `json:"account_id"`
	InstrumentID  string `json:"instrument_id"`
	ClientOrderID string `json:"client_order_id,omitempty"`
	OrderListID   string `json:"order_list_id,omitempty"`
	VenueOrderID  string `json:"venue_order_id"`

	Side        OrderSide       `json:"side"`
	OrderType   OrderType       `json:"order_type"`
	Contingency ContingencyType `json:"contingency"`
	TimeInForce TimeInForce     `json:"time_in_force"`
	Status      OrderStatus     `json:"status"`

	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	FilledQty decimal.Decimal `json:"filled_qty"`

	// ExpireTime is nil when the order carries no expiry.
	ExpireTime *time.Time `json:"expire_time,omitempty"`

	TsAccepted time.Time `json:"ts_accepted"`
	TsLast     time.Time `json:"ts_last"`

	ReportID uuid.UUID `json:"report_id"`
	TsInit   time.Time `json:"ts_init"`
}

// Validate checks the report's structural invariants.
func (r OrderStatusReport) Validate() error {
	if r.VenueOrderID == "" {
		return fmt.Errorf("order status report: empty venue order id")
	}
	if r.FilledQty.IsNegative() {
		return fmt.Errorf("order status report %s: negative filled qty %s", r.VenueOrderID, r.FilledQty)
	}
	if r.FilledQty.GreaterThan(r.Quantity) {
		return fmt.Errorf("order status report %s: filled qty %s exceeds quantity %s",
			r.VenueOrderID, r.FilledQty, r.Quantity)
	}
	return nil
}

// FillReport is an immutable record of one execution. TradeID is unique at
// the venue; consumers detect redelivery by identical trade id.
type FillReport struct {
	AccountID     string `json:"account_id"`
	InstrumentID  string `json:"instrument_id"`
	ClientOrderID string `json:"client_order_id,omitempty"`
	VenueOrderID  string `json:"venue_order_id"`
	TradeID       string `json:"trade_id"`

	Side          OrderSide     `json:"side"`
	LiquiditySide LiquiditySide `json:"liquidity_side"`

	LastQty decimal.Decimal `json:"last_qty"`
	LastPx  decimal.Decimal `json:"last_px"`

	TsEvent time.Time `json:"ts_event"`

	ReportID uuid.UUID `json:"report_id"`
	TsInit   time.Time `json:"ts_init"`
}

// Validate checks the report's structural invariants.
func (r FillReport) Validate() error {
	if r.VenueOrderID == "" {
		return fmt.Errorf("fill report: empty venue order id")
	}
	if r.TradeID == "" {
		return fmt.Errorf("fill report for order %s: empty trade id", r.VenueOrderID)
	}
	if !r.LastQty.IsPositive() {
		return fmt.Errorf("fill report %s: non-positive quantity %s", r.TradeID, r.LastQty)
	}
	return nil
}
