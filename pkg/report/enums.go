// Package report defines the venue-agnostic execution reports handed to the
// platform's order-state consumer, plus the enumerations and instrument
// scaling they depend on. Venue adapters translate their own wire formats
// into these types; nothing here knows any venue's protocol.
package report

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderType is the canonical order kind.
type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// OrderStatus is the canonical lifecycle state of a venue order.
type OrderStatus string

const (
	OrderStatusSubmitted       OrderStatus = "SUBMITTED"
	OrderStatusAccepted        OrderStatus = "ACCEPTED"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
	OrderStatusRejected        OrderStatus = "REJECTED"
)

// TimeInForce is how long an order remains working at the venue.
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
	TimeInForceGTD TimeInForce = "GTD"
)

// LiquiditySide records whether an execution rested (maker) or aggressed
// (taker).
type LiquiditySide string

const (
	LiquiditySideMaker LiquiditySide = "MAKER"
	LiquiditySideTaker LiquiditySide = "TAKER"
)

// ContingencyType links an order to a contingent group.
type ContingencyType string

const (
	ContingencyNone ContingencyType = "NO_CONTINGENCY"
	ContingencyOCO  ContingencyType = "OCO"
	ContingencyOTO  ContingencyType = "OTO"
)
