package polymarket

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/betbot/govenue/pkg/fixed"
	"github.com/betbot/govenue/pkg/report"
)

// ErrMakerOrderNotFound indicates a maker-perspective trade whose
// maker_orders list has no entry for the local maker address. Either the
// configured address is wrong or the venue sent inconsistent data; both
// must surface, never be skipped.
var ErrMakerOrderNotFound = errors.New("maker order not found for local address")

// ParseContext carries the caller-supplied context a parser needs to
// complete a canonical report.
type ParseContext struct {
	AccountID     string
	Instrument    report.Instrument
	ClientOrderID string
	TsInit        time.Time
}

// expireTimeFrom interprets the venue expiration field. The venue sends
// "0" (or an empty string) for orders without expiry; only a nonzero
// value yields an expire time.
func expireTimeFrom(expiration string) (*time.Time, error) {
	if expiration == "" {
		return nil, nil
	}
	ms, err := fixed.Int64FromString(expiration)
	if err != nil {
		return nil, fmt.Errorf("expiration: %w", err)
	}
	if ms == 0 {
		return nil, nil
	}
	t, err := fixed.TimeFromMillis(ms)
	if err != nil {
		return nil, fmt.Errorf("expiration: %w", err)
	}
	return &t, nil
}

// OrderStatusReport normalizes this order event into a canonical report.
func (e *UserOrderEvent) OrderStatusReport(pc ParseContext) (report.OrderStatusReport, error) {
	side, err := MapOrderSide(e.Side)
	if err != nil {
		return report.OrderStatusReport{}, err
	}
	tif, err := MapTimeInForce(e.OrderType)
	if err != nil {
		return report.OrderStatusReport{}, err
	}
	status, err := MapOrderStatus(e.Status)
	if err != nil {
		return report.OrderStatusReport{}, err
	}
	price, err := pc.Instrument.PriceFromString(e.Price)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("price: %w", err)
	}
	qty, err := pc.Instrument.QtyFromString(e.OriginalSize)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("original_size: %w", err)
	}
	filled, err := pc.Instrument.QtyFromString(e.SizeMatched)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("size_matched: %w", err)
	}
	expireTime, err := expireTimeFrom(e.Expiration)
	if err != nil {
		return report.OrderStatusReport{}, err
	}
	tsMs, err := fixed.Int64FromString(e.Timestamp)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("timestamp: %w", err)
	}
	ts, err := fixed.TimeFromMillis(tsMs)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("timestamp: %w", err)
	}

	r := report.OrderStatusReport{
		AccountID:     pc.AccountID,
		InstrumentID:  pc.Instrument.ID,
		ClientOrderID: pc.ClientOrderID,
		VenueOrderID:  e.ID,
		Side:          side,
		OrderType:     report.OrderTypeLimit,
		Contingency:   report.ContingencyNone,
		TimeInForce:   tif,
		Status:        status,
		Price:         price,
		Quantity:      qty,
		FilledQty:     filled,
		ExpireTime:    expireTime,
		TsAccepted:    ts,
		TsLast:        ts,
		ReportID:      uuid.New(),
		TsInit:        pc.TsInit,
	}
	if err := r.Validate(); err != nil {
		return report.OrderStatusReport{}, err
	}
	return r, nil
}

// FillReport normalizes this order event into a fill record. Order events
// that arrive already partially matched carry the matched size; the order
// id doubles as the trade id since the venue reports no separate one here.
func (e *UserOrderEvent) FillReport(pc ParseContext, liquidity report.LiquiditySide) (report.FillReport, error) {
	side, err := MapOrderSide(e.Side)
	if err != nil {
		return report.FillReport{}, err
	}
	qty, err := pc.Instrument.QtyFromString(e.SizeMatched)
	if err != nil {
		return report.FillReport{}, fmt.Errorf("size_matched: %w", err)
	}
	px, err := pc.Instrument.PriceFromString(e.Price)
	if err != nil {
		return report.FillReport{}, fmt.Errorf("price: %w", err)
	}
	tsMs, err := fixed.Int64FromString(e.Timestamp)
	if err != nil {
		return report.FillReport{}, fmt.Errorf("timestamp: %w", err)
	}
	tsEvent, err := fixed.TimeFromMillis(tsMs)
	if err != nil {
		return report.FillReport{}, fmt.Errorf("timestamp: %w", err)
	}

	r := report.FillReport{
		AccountID:     pc.AccountID,
		InstrumentID:  pc.Instrument.ID,
		ClientOrderID: pc.ClientOrderID,
		VenueOrderID:  e.ID,
		TradeID:       e.ID,
		Side:          side,
		LiquiditySide: liquidity,
		LastQty:       qty,
		LastPx:        px,
		TsEvent:       tsEvent,
		ReportID:      uuid.New(),
		TsInit:        pc.TsInit,
	}
	if err := r.Validate(); err != nil {
		return report.FillReport{}, err
	}
	return r, nil
}

// LiquiditySide maps the trade's trader_side to the canonical liquidity
// side.
func (e *UserTradeEvent) LiquiditySide() (report.LiquiditySide, error) {
	return MapLiquiditySide(e.TraderSide)
}

// VenueOrderID resolves which of our orders this trade executed against.
// Taker-perspective trades name the order directly. Maker-perspective
// trades carry a list of maker sub-orders; ours is the one whose address
// matches makerAddr. The venue appends amendments, so the scan runs from
// the most recent entry backwards.
func (e *UserTradeEvent) VenueOrderID(makerAddr common.Address) (string, error) {
	if e.TraderSide != LiquiditySideMaker {
		return e.TakerOrderID, nil
	}
	for i := len(e.MakerOrders) - 1; i >= 0; i-- {
		if common.HexToAddress(e.MakerOrders[i].MakerAddress) == makerAddr {
			return e.MakerOrders[i].OrderID, nil
		}
	}
	return "", fmt.Errorf("%w: %s in trade %s", ErrMakerOrderNotFound, makerAddr.Hex(), e.ID)
}

// FillReport normalizes this trade event into a fill record. makerAddr is
// the local node's maker address, used to locate our order when the trade
// is reported from the maker's perspective.
func (e *UserTradeEvent) FillReport(pc ParseContext, makerAddr common.Address) (report.FillReport, error) {
	side, err := MapOrderSide(e.Side)
	if err != nil {
		return report.FillReport{}, err
	}
	liquidity, err := e.LiquiditySide()
	if err != nil {
		return report.FillReport{}, err
	}
	venueOrderID, err := e.VenueOrderID(makerAddr)
	if err != nil {
		return report.FillReport{}, err
	}
	qty, err := pc.Instrument.QtyFromString(e.Size)
	if err != nil {
		return report.FillReport{}, fmt.Errorf("size: %w", err)
	}
	px, err := pc.Instrument.PriceFromString(e.Price)
	if err != nil {
		return report.FillReport{}, fmt.Errorf("price: %w", err)
	}
	matchMs, err := fixed.Int64FromString(e.MatchTime)
	if err != nil {
		return report.FillReport{}, fmt.Errorf("match_time: %w", err)
	}
	tsEvent, err := fixed.TimeFromMillis(matchMs)
	if err != nil {
		return report.FillReport{}, fmt.Errorf("match_time: %w", err)
	}

	r := report.FillReport{
		AccountID:     pc.AccountID,
		InstrumentID:  pc.Instrument.ID,
		ClientOrderID: pc.ClientOrderID,
		VenueOrderID:  venueOrderID,
		TradeID:       e.ID,
		Side:          side,
		LiquiditySide: liquidity,
		LastQty:       qty,
		LastPx:        px,
		TsEvent:       tsEvent,
		ReportID:      uuid.New(),
		TsInit:        pc.TsInit,
	}
	if err := r.Validate(); err != nil {
		return report.FillReport{}, err
	}
	return r, nil
}

// OrderStatusReport normalizes one open-order listing entry. A snapshot
// has no separate update time; created_at serves as both acceptance and
// last-update time.
func (o *OpenOrder) OrderStatusReport(pc ParseContext) (report.OrderStatusReport, error) {
	side, err := MapOrderSide(o.Side)
	if err != nil {
		return report.OrderStatusReport{}, err
	}
	tif, err := MapTimeInForce(o.OrderType)
	if err != nil {
		return report.OrderStatusReport{}, err
	}
	status, err := MapOrderStatus(o.Status)
	if err != nil {
		return report.OrderStatusReport{}, err
	}
	price, err := pc.Instrument.PriceFromString(o.Price)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("price: %w", err)
	}
	qty, err := pc.Instrument.QtyFromString(o.OriginalSize)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("original_size: %w", err)
	}
	filled, err := pc.Instrument.QtyFromString(o.SizeMatched)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("size_matched: %w", err)
	}
	expireTime, err := expireTimeFrom(o.Expiration)
	if err != nil {
		return report.OrderStatusReport{}, err
	}
	createdAt, err := fixed.TimeFromMillis(o.CreatedAt)
	if err != nil {
		return report.OrderStatusReport{}, fmt.Errorf("created_at: %w", err)
	}

	r := report.OrderStatusReport{
		AccountID:     pc.AccountID,
		InstrumentID:  pc.Instrument.ID,
		ClientOrderID: pc.ClientOrderID,
		VenueOrderID:  o.ID,
		Side:          side,
		OrderType:     report.OrderTypeLimit,
		Contingency:   report.ContingencyNone,
		TimeInForce:   tif,
		Status:        status,
		Price:         price,
		Quantity:      qty,
		FilledQty:     filled,
		ExpireTime:    expireTime,
		TsAccepted:    createdAt,
		TsLast:        createdAt,
		ReportID:      uuid.New(),
		TsInit:        pc.TsInit,
	}
	if err := r.Validate(); err != nil {
		return report.OrderStatusReport{}, err
	}
	return r, nil
}
