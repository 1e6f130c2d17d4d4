package polymarket

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEventType indicates a user-channel payload whose event_type
// discriminator is outside the known set.
var ErrUnknownEventType = errors.New("unknown user event type")

// UserOrderEvent is one order lifecycle update pushed on the user channel.
// All numerics arrive as strings.
type UserOrderEvent struct {
	EventType       EventType   `json:"event_type"`
	AssetID         string      `json:"asset_id"`
	AssociateTrades []string    `json:"associate_trades"`
	CreatedAt       string      `json:"created_at"`
	Expiration      string      `json:"expiration"`
	ID              string      `json:"id"`
	MakerAddress    string      `json:"maker_address"`
	Market          string      `json:"market"`
	OrderOwner      string      `json:"order_owner"`
	OrderType       OrderType   `json:"order_type"`
	OriginalSize    string      `json:"original_size"`
	Outcome         string      `json:"outcome"`
	Owner           string      `json:"owner"`
	Price           string      `json:"price"`
	Side            Side        `json:"side"`
	SizeMatched     string      `json:"size_matched"`
	Status          OrderStatus `json:"status"`
	Timestamp       string      `json:"timestamp"`
	Type            string      `json:"type"` // PLACEMENT | UPDATE | CANCELLATION
}

// MakerOrder is one resting order consumed by a venue trade. A single trade
// may match against several of them.
type MakerOrder struct {
	AssetID       string `json:"asset_id"`
	FeeRateBps    string `json:"fee_rate_bps"`
	MakerAddress  string `json:"maker_address"`
	MatchedAmount string `json:"matched_amount"`
	OrderID       string `json:"order_id"`
	Outcome       string `json:"outcome"`
	Owner         string `json:"owner"`
	Price         string `json:"price"`
}

// UserTradeEvent is one trade update pushed on the user channel. The same
// trade id is redelivered as settlement progresses through TradeStatus.
type UserTradeEvent struct {
	EventType    EventType     `json:"event_type"`
	AssetID      string        `json:"asset_id"`
	BucketIndex  string        `json:"bucket_index"`
	FeeRateBps   string        `json:"fee_rate_bps"`
	ID           string        `json:"id"`
	LastUpdate   string        `json:"last_update"`
	MakerAddress string        `json:"maker_address"`
	MakerOrders  []MakerOrder  `json:"maker_orders"`
	Market       string        `json:"market"`
	MatchTime    string        `json:"match_time"`
	Outcome      string        `json:"outcome"`
	Owner        string        `json:"owner"`
	Price        string        `json:"price"`
	Side         Side          `json:"side"`
	Size         string        `json:"size"`
	Status       TradeStatus   `json:"status"`
	TakerOrderID string        `json:"taker_order_id"`
	Timestamp    string        `json:"timestamp"`
	TradeOwner   string        `json:"trade_owner"`
	TraderSide   LiquiditySide `json:"trader_side"`
	Type         string        `json:"type"` // TRADE
}

// OpenOrder is one entry of the venue's point-in-time open order listing.
// Unlike the push events its created_at is a bare integer.
type OpenOrder struct {
	AssociateTrades []string    `json:"associate_trades"`
	ID              string      `json:"id"`
	Status          OrderStatus `json:"status"`
	Market          string      `json:"market"`
	OriginalSize    string      `json:"original_size"`
	Outcome         string      `json:"outcome"`
	MakerAddress    string      `json:"maker_address"`
	Owner           string      `json:"owner"`
	Price           string      `json:"price"`
	Side            Side        `json:"side"`
	SizeMatched     string      `json:"size_matched"`
	AssetID         string      `json:"asset_id"`
	Expiration      string      `json:"expiration"`
	OrderType       OrderType   `json:"order_type"`
	CreatedAt       int64       `json:"created_at"`
}

// UserEvent is one decoded user-channel payload. Exactly one of Order and
// Trade is set.
type UserEvent struct {
	Order *UserOrderEvent
	Trade *UserTradeEvent
}

// DecodeUserEvent decodes one user-channel message by its event_type
// discriminator. An unknown discriminator is an error; unknown fields
// inside a known variant are ignored so additive venue changes do not
// break decoding.
func DecodeUserEvent(data []byte) (UserEvent, error) {
	var probe struct {
		EventType EventType `json:"event_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return UserEvent{}, fmt.Errorf("decode user event: %w", err)
	}
	switch probe.EventType {
	case EventTypeOrder:
		var ev UserOrderEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return UserEvent{}, fmt.Errorf("decode order event: %w", err)
		}
		return UserEvent{Order: &ev}, nil
	case EventTypeTrade:
		var ev UserTradeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return UserEvent{}, fmt.Errorf("decode trade event: %w", err)
		}
		return UserEvent{Trade: &ev}, nil
	default:
		return UserEvent{}, fmt.Errorf("%w: %q", ErrUnknownEventType, probe.EventType)
	}
}
