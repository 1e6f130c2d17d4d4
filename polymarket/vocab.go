// Package polymarket normalizes Polymarket CLOB user-channel payloads into
// canonical execution reports. It owns the venue vocabulary, the payload
// shapes, the strict mappers into the canonical enums, and the user-channel
// websocket feed.
package polymarket

import (
	"errors"
	"fmt"

	"github.com/betbot/govenue/pkg/report"
)

// ErrUnmappedVocabulary indicates a venue enum value outside the known
// vocabulary. Mappers never fall back to a default; an unknown value would
// corrupt order state downstream.
var ErrUnmappedVocabulary = errors.New("unmapped venue vocabulary")

// Side is the venue order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderStatus is the venue order lifecycle vocabulary.
type OrderStatus string

const (
	OrderStatusLive      OrderStatus = "LIVE"
	OrderStatusMatched   OrderStatus = "MATCHED"
	OrderStatusDelayed   OrderStatus = "DELAYED"
	OrderStatusUnmatched OrderStatus = "UNMATCHED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// TradeStatus is the venue trade settlement vocabulary. A trade first
// reports MATCHED, then progresses through on-chain settlement.
type TradeStatus string

const (
	TradeStatusMatched   TradeStatus = "MATCHED"
	TradeStatusMined     TradeStatus = "MINED"
	TradeStatusConfirmed TradeStatus = "CONFIRMED"
	TradeStatusRetrying  TradeStatus = "RETRYING"
	TradeStatusFailed    TradeStatus = "FAILED"
)

// OrderType is the venue order type vocabulary. The venue conflates order
// type and time in force in this one field.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC"
	OrderTypeGTD OrderType = "GTD"
	OrderTypeFOK OrderType = "FOK"
	OrderTypeFAK OrderType = "FAK"
)

// LiquiditySide is the venue maker/taker vocabulary.
type LiquiditySide string

const (
	LiquiditySideMaker LiquiditySide = "MAKER"
	LiquiditySideTaker LiquiditySide = "TAKER"
)

// EventType discriminates user-channel payload variants.
type EventType string

const (
	EventTypeOrder EventType = "order"
	EventTypeTrade EventType = "trade"
)

// MapOrderSide maps the venue order side to the canonical side.
func MapOrderSide(s Side) (report.OrderSide, error) {
	switch s {
	case SideBuy:
		return report.OrderSideBuy, nil
	case SideSell:
		return report.OrderSideSell, nil
	default:
		return "", fmt.Errorf("%w: order side %q", ErrUnmappedVocabulary, s)
	}
}

// MapOrderStatus maps the venue order status to the canonical status.
// MATCHED means the order is fully matched; partially matched orders stay
// LIVE at the venue.
func MapOrderStatus(s OrderStatus) (report.OrderStatus, error) {
	switch s {
	case OrderStatusLive:
		return report.OrderStatusAccepted, nil
	case OrderStatusMatched:
		return report.OrderStatusFilled, nil
	case OrderStatusDelayed:
		return report.OrderStatusSubmitted, nil
	case OrderStatusUnmatched:
		return report.OrderStatusRejected, nil
	case OrderStatusCanceled:
		return report.OrderStatusCanceled, nil
	default:
		return "", fmt.Errorf("%w: order status %q", ErrUnmappedVocabulary, s)
	}
}

// MapTimeInForce derives the canonical time in force from the venue order
// type. FAK is fill-and-kill, immediate-or-cancel in canonical terms.
func MapTimeInForce(ot OrderType) (report.TimeInForce, error) {
	switch ot {
	case OrderTypeGTC:
		return report.TimeInForceGTC, nil
	case OrderTypeGTD:
		return report.TimeInForceGTD, nil
	case OrderTypeFOK:
		return report.TimeInForceFOK, nil
	case OrderTypeFAK:
		return report.TimeInForceIOC, nil
	default:
		return "", fmt.Errorf("%w: order type %q", ErrUnmappedVocabulary, ot)
	}
}

// MapLiquiditySide maps the venue trader side to the canonical liquidity
// side.
func MapLiquiditySide(s LiquiditySide) (report.LiquiditySide, error) {
	switch s {
	case LiquiditySideMaker:
		return report.LiquiditySideMaker, nil
	case LiquiditySideTaker:
		return report.LiquiditySideTaker, nil
	default:
		return "", fmt.Errorf("%w: liquidity side %q", ErrUnmappedVocabulary, s)
	}
}
